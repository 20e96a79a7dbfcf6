package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Login attempt counter, labeled by outcome.
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"}, // result: success, invalid_credentials, error
	)

	// Task status transition counter.
	TaskStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_status_transitions_total",
			Help: "Total number of task status transitions",
		},
		[]string{"from", "to"},
	)

	// Notification counter, labeled by source event.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications created by the worker",
		},
		[]string{"event"},
	)
)

// RecordHTTPRequestDuration records a finished HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementLoginAttempt counts a login attempt by outcome.
func IncrementLoginAttempt(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}

// IncrementTaskStatusTransition counts a task status change.
func IncrementTaskStatusTransition(from, to string) {
	TaskStatusTransitions.WithLabelValues(from, to).Inc()
}

// IncrementNotificationsCreated counts a notification materialized from an event.
func IncrementNotificationsCreated(event string) {
	NotificationsCreated.WithLabelValues(event).Inc()
}
