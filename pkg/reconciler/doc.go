/*
Package reconciler performs the authoritative refresh of the local team's
assigned-incident list and owns the fallback chain that keeps something
on screen through partial failure.

Each cycle:

 1. Read the connectivity flag. Offline with a cache hit adopts the
    cached list and reports degraded mode; offline with no cache is a
    hard error that leaves state untouched. Zero network calls are made
    either way.
 2. Online, fetch the team-scoped list. On success, drop incidents whose
    field report links to a finalized report, apply the ordering
    invariant, persist the snapshot to cache, and stamp last-refreshed.
 3. On fetch failure, prefer the caller's non-empty in-memory list, then
    the cache, then surface a hard error.

Like the rest of the engine the reconciler is stateless between cycles
apart from the last-refreshed stamp: every successful run re-derives the
list from backend state, superseding whatever the instant path wrote.
*/
package reconciler
