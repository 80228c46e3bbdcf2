/*
Package health provides the connectivity monitor: proactive detection of
whether the backend is reachable before any network I/O is attempted.

Checkers probe a target behind a common interface:

	HTTPChecker: any HTTP response (even 4xx) proves reachability
	TCPChecker:  a successful dial proves reachability

Monitor polls a checker in the background and exposes the latest verdict
through a non-blocking Online() read. A host that already knows its
connectivity state (a mobile shell, a test) can skip the monitor and hand
the engine its own boolean source.
*/
package health
