package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Change-feed metrics
	FeedEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldsync_feed_events_total",
			Help: "Total number of change-feed events by table and relevance",
		},
		[]string{"table", "relevant"},
	)

	FeedReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldsync_feed_reconnects_total",
			Help: "Total number of change-feed reconnect attempts",
		},
	)

	// Coalescer metrics
	CoalescerTriggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldsync_coalescer_triggers_total",
			Help: "Total number of refresh triggers by path (immediate or deferred)",
		},
		[]string{"path"},
	)

	// Reconciler metrics
	ReconcileCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldsync_reconcile_cycles_total",
			Help: "Total number of reconcile cycles by outcome",
		},
		[]string{"outcome"},
	)

	ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fieldsync_reconcile_duration_seconds",
			Help:    "Reconcile cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	AssignedIncidents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fieldsync_assigned_incidents",
			Help: "Number of incidents currently in the visible list",
		},
	)

	// Instant-path metrics
	InstantPatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldsync_instant_patches_total",
			Help: "Total number of patches applied on the instant path",
		},
	)

	// Notification metrics
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldsync_notifications_total",
			Help: "Total number of notifications emitted by kind",
		},
		[]string{"kind"},
	)

	NotificationsSuppressedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldsync_notifications_suppressed_total",
			Help: "Total number of notifications suppressed by diff rules",
		},
	)

	// Cache metrics
	CacheErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldsync_cache_errors_total",
			Help: "Total number of swallowed local cache I/O errors",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(FeedEventsTotal)
	prometheus.MustRegister(FeedReconnectsTotal)
	prometheus.MustRegister(CoalescerTriggersTotal)
	prometheus.MustRegister(ReconcileCyclesTotal)
	prometheus.MustRegister(ReconcileDuration)
	prometheus.MustRegister(AssignedIncidents)
	prometheus.MustRegister(InstantPatchesTotal)
	prometheus.MustRegister(NotificationsTotal)
	prometheus.MustRegister(NotificationsSuppressedTotal)
	prometheus.MustRegister(CacheErrorsTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
