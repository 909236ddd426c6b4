package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_dispatched_total",
		Help: "Total number of notifications created, by type",
	}, []string{"type"})

	NotificationsSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_suppressed_total",
		Help: "Total number of dispatch calls resolved as idempotent no-ops",
	})

	NotificationDispatchFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_dispatch_failed_total",
		Help: "Total number of failed notification dispatches",
	})

	TransactionsRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_transactions_requested_total",
		Help: "Total number of borrow requests created",
	})

	TransactionsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_transactions_completed_total",
		Help: "Total number of transactions completed",
	})

	InvalidTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exchange_invalid_transitions_total",
		Help: "Total number of rejected state transitions, by operation",
	}, []string{"operation"})

	MonitorRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "return_monitor_runs_total",
		Help: "Total number of return-date monitor runs",
	})

	MonitorRemindersSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "return_monitor_reminders_sent_total",
		Help: "Total number of return reminders sent by the monitor",
	})

	MonitorOverdueSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "return_monitor_overdue_sent_total",
		Help: "Total number of overdue notifications sent by the monitor",
	})

	MonitorFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "return_monitor_failures_total",
		Help: "Total number of per-transaction failures during monitor runs",
	})

	MonitorRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "return_monitor_run_duration_seconds",
		Help:    "Duration of return-date monitor runs",
		Buckets: prometheus.DefBuckets,
	})
)
