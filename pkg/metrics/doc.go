/*
Package metrics provides Prometheus instrumentation and health reporting
for the fieldsync engine.

All metrics are package-level variables registered in init and exported
under the fieldsync_ prefix:

  - feed_events_total{table,relevant}: change-feed classification volume
  - feed_reconnects_total: subscription transport failures
  - coalescer_triggers_total{path}: immediate vs deferred refresh triggers
  - reconcile_cycles_total{outcome}: refreshes by data source or error
  - reconcile_duration_seconds: authoritative refresh latency
  - assigned_incidents: current visible list size
  - instant_patches_total: instant-path mutations
  - notifications_total{kind}, notifications_suppressed_total
  - cache_errors_total: swallowed cache I/O failures

Timer measures operation durations for histogram observation:

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ReconcileDuration)

HealthHandler serves an aggregate JSON health document built from
component reports registered via RegisterComponent/UpdateComponent.
*/
package metrics
