/*
Package cache implements the durable local fallback store for last-known
incident lists, backed by BoltDB.

Entries are namespaced per team and stamped with a save time; Load treats
entries older than the max age as a miss. The cache is strictly advisory:
the reconciler adopts it only when the network is unavailable, and every
I/O failure is logged, counted, and swallowed rather than surfaced to the
caller.
*/
package cache
