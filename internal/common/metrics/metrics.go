// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_events_generated_total",
			Help: "Total number of scheduled events generated",
		},
	)

	GenerationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_generation_runs_total",
			Help: "Daily generation runs by outcome",
		},
		[]string{"outcome"},
	)

	StorageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_storage_failures_total",
			Help: "Storage engine failures by operation",
		},
		[]string{"operation"},
	)

	NotificationsScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_notifications_scheduled_total",
			Help: "Total number of reminder notifications scheduled",
		},
	)

	NotificationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_notifications_failed_total",
			Help: "Total number of reminder notifications that failed to schedule",
		},
	)
)
