/*
Package feed maintains the long-lived change-data-capture subscription
over three record families and classifies each event's relevance to the
local team.

# State machine

	Disconnected → Connecting → Subscribed
	Subscribed → Reconnecting → Connecting   (on transport error, fixed delay)
	any state  → Disconnected                (on Stop)

Transport errors are logged and retried indefinitely at a fixed interval;
they never surface to the user beyond the staleness a gap in live updates
causes. Stop tears down the connection and the loop fully.

# Classification

	incidents:         new or old snapshot references the local team
	field_reports:     owned by the local actor, or linked to a tracked id
	finalized_reports: references a tracked incident (removal trigger)

The tracked-id set is resolved from live engine state on every dispatch,
never captured at subscription time, so a handler installed before a
refresh still classifies against the refreshed list. Irrelevant events
and events without a usable id are dropped silently.
*/
package feed
