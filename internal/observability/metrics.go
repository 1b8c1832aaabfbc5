// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// TasksEnqueued counts enqueue attempts by job name and outcome.
	TasksEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_tasks_enqueued_total",
		Help: "Total number of background tasks handed to the broker",
	}, []string{"job", "status"})

	// TasksProcessed counts executed tasks by job name and outcome.
	TasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_tasks_processed_total",
		Help: "Total number of background tasks executed by workers",
	}, []string{"job", "status"})

	// TaskDuration records task execution latency.
	TaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blog_task_duration_seconds",
		Help:    "Background task execution latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})

	// CommentsModerated counts comments touched by admin bulk actions.
	CommentsModerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_comments_moderated_total",
		Help: "Total number of comments approved or rejected by administrators",
	}, []string{"action"})
)

// ObserveTask records the outcome and latency of a task execution.
func ObserveTask(job string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	TasksProcessed.WithLabelValues(job, status).Inc()
	TaskDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
}
