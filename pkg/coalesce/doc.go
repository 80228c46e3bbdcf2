/*
Package coalesce bounds the rate of authoritative refreshes under bursty
change traffic.

The algorithm tracks the last execution time. A trigger arriving more
than one window W after the last run executes immediately; a trigger
inside the window cancels any pending execution and schedules a new one
for lastRun+W (trailing edge). Any finite burst therefore collapses to
exactly one execution, bounded between the first trigger and the last
trigger plus W.

Stop cancels pending work so a torn-down engine can never run a refresh
against disposed state.
*/
package coalesce
