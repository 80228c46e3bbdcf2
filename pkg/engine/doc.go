/*
Package engine ties the synchronization components into one instance per
(team, session) with an explicit Start/Stop lifecycle.

# Data flow

	            ┌──────────────────┐
	 CDC event →│ feed.Subscriber  │→ relevance filter
	            └────────┬─────────┘
	                     │ relevant event
	        ┌────────────┼──────────────────┐
	        ▼            ▼                  ▼
	  notify.Emitter   instant path    coalesce.Coalescer
	  (always runs)    (ApplyPatch)         │ ≤1 per window
	                        │               ▼
	                        │        reconciler.Refresh
	                        ▼               │
	                  in-memory list ◄──────┘ wholesale replace
	                        │
	                        ▼
	              cache mirror (detached)

Incident-table events that keep the incident assigned to the local team
take the instant path: the row snapshot becomes a patch merged straight
into memory, with the cache mirrored on a detached task. Everything else
(unassignment, field-report and finalized-report changes) collapses
through the coalescer into at most one authoritative refresh per window.

# Concurrency

State is guarded by a single mutex; callbacks fire outside it and may
arrive on engine goroutines. An instant patch may race an in-flight
refresh; last write wins, and the refresh replaces the list wholesale
from backend state, so whatever the patch wrote is superseded once a
refresh lands. Stop bars further state mutation before cancelling
in-flight work, so a late fetch result can never write into a disposed
engine.

There are no package-level mutable refs: the tracked-id set, last-refresh
stamp, and pending timer all live on the instance, and the feed resolves
the tracked-id set through a live accessor at dispatch time rather than a
captured snapshot.
*/
package engine
