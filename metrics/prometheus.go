package metrics

import "github.com/prometheus/client_golang/prometheus"

var NotificationsSentTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "church_notifications_sent_total",
		Help: "Total number of push notifications delivered to the transport",
	},
	[]string{"category", "batched"},
)

var NotificationsFailedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "church_notifications_failed_total",
		Help: "Total number of push sends that failed (not retried)",
	},
	[]string{"category"},
)

var NotificationsSuppressedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "church_notifications_suppressed_total",
		Help: "Total number of notifications dropped during quiet hours",
	},
	[]string{"category"},
)

var BatchesFlushedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "church_notification_batches_flushed_total",
		Help: "Total number of accumulated batches flushed",
	},
)

var BatchesDiscardedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "church_notification_batches_discarded_total",
		Help: "Total number of pending batches discarded after a batch interval change",
	},
)

var BatchSize = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "church_notification_batch_size",
		Help:    "Number of notifications per flushed batch",
		Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
	},
)

var RecurringInstancesCreatedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "church_recurring_instances_created_total",
		Help: "Total number of recurring event instances materialized",
	},
)

var RecurringInstancesDeletedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "church_recurring_instances_deleted_total",
		Help: "Total number of past recurring event instances pruned",
	},
)

var ReconcileFailuresTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "church_reconcile_template_failures_total",
		Help: "Total number of per-template reconciliation batches that were rolled back",
	},
)

var ChangeEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "church_change_events_total",
		Help: "Total number of content-change events received",
	},
	[]string{"resource", "change", "status"},
)

var JobDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "church_job_duration_seconds",
		Help:    "Duration of scheduled maintenance jobs",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"job", "status"},
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		NotificationsSentTotal,
		NotificationsFailedTotal,
		NotificationsSuppressedTotal,
		BatchesFlushedTotal,
		BatchesDiscardedTotal,
		BatchSize,
		RecurringInstancesCreatedTotal,
		RecurringInstancesDeletedTotal,
		ReconcileFailuresTotal,
		ChangeEventsTotal,
		JobDuration,
	)
}
