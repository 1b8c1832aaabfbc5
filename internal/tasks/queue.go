// Package tasks hands notification jobs to a background worker.
//
// Producers call Queue.Enqueue and never wait for the job to run. A Worker
// pulls tasks from a Consumer (Redis list, RabbitMQ queue) and runs the
// handler registered for the job name.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lena210296/ProjectBlog/internal/middleware"
	"github.com/lena210296/ProjectBlog/internal/observability"
)

// Job names.
const (
	JobSendAdminMessage    = "send_admin_message"
	JobSendUserMessage     = "send_user_message"
	JobPrintContactMessage = "print_contact_message"
)

// Task is one queued job invocation.
type Task struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Args       []string  `json:"args"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Queue accepts jobs for asynchronous execution.
type Queue interface {
	Enqueue(ctx context.Context, job string, args ...string) (string, error)
}

// Consumer feeds tasks to handle until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, handle func(context.Context, Task) error) error
	Close() error
}

func newTask(job string, args []string) Task {
	if args == nil {
		args = []string{}
	}
	return Task{
		ID:         uuid.NewString(),
		Name:       job,
		Args:       args,
		EnqueuedAt: time.Now().UTC(),
	}
}

func encodeTask(t Task) ([]byte, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}
	return b, nil
}

func decodeTask(b []byte) (Task, error) {
	var t Task
	if err := json.Unmarshal(b, &t); err != nil {
		return Task{}, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	if t.Name == "" {
		return Task{}, fmt.Errorf("task without a name")
	}
	return t, nil
}

// Dispatch enqueues job and only logs failures; callers never see them.
func Dispatch(ctx context.Context, q Queue, job string, args ...string) {
	if q == nil {
		return
	}
	id, err := q.Enqueue(ctx, job, args...)
	if err != nil {
		observability.TasksEnqueued.WithLabelValues(job, "error").Inc()
		middleware.Logger.ErrorContext(ctx, "failed to enqueue task",
			slog.String("job", job),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.TasksEnqueued.WithLabelValues(job, "success").Inc()
	middleware.Logger.DebugContext(ctx, "task enqueued", slog.String("job", job), slog.String("task_id", id))
}
