package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lena210296/ProjectBlog/internal/observability"
)

// HandlerFunc runs one job. args has already been checked against the
// registered arity.
type HandlerFunc func(ctx context.Context, args []string) error

type registration struct {
	arity int
	fn    HandlerFunc
}

// Worker dispatches tasks to registered handlers.
type Worker struct {
	logger   *slog.Logger
	handlers map[string]registration
}

// NewWorker returns a worker with the notification jobs registered.
func NewWorker(logger *slog.Logger) *Worker {
	w := &Worker{logger: logger, handlers: map[string]registration{}}
	n := NewNotifier(logger)
	w.Register(JobSendAdminMessage, 1, n.SendAdminMessage)
	w.Register(JobSendUserMessage, 2, n.SendUserMessage)
	w.Register(JobPrintContactMessage, 3, n.PrintContactMessage)
	return w
}

// Register binds job to fn, replacing any previous handler.
func (w *Worker) Register(job string, arity int, fn HandlerFunc) {
	w.handlers[job] = registration{arity: arity, fn: fn}
}

// Jobs lists the registered job names.
func (w *Worker) Jobs() []string {
	out := make([]string, 0, len(w.handlers))
	for name := range w.handlers {
		out = append(out, name)
	}
	return out
}

// Handle runs t and records its outcome. Panics in handlers become errors.
func (w *Worker) Handle(ctx context.Context, t Task) (err error) {
	ctx, span := observability.StartTaskSpan(ctx, t.Name, t.ID)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.Name, r)
		}
		observability.ObserveTask(t.Name, start, err)
		observability.EndSpan(span, err)
		if err != nil {
			w.logger.ErrorContext(ctx, "task failed",
				slog.String("job", t.Name),
				slog.String("task_id", t.ID),
				slog.String("error", err.Error()),
			)
		}
	}()

	reg, ok := w.handlers[t.Name]
	if !ok {
		return fmt.Errorf("unknown job %q", t.Name)
	}
	if len(t.Args) != reg.arity {
		return fmt.Errorf("job %s expects %d args, got %d", t.Name, reg.arity, len(t.Args))
	}
	return reg.fn(ctx, t.Args)
}

// Run consumes from c until ctx is cancelled.
func (w *Worker) Run(ctx context.Context, c Consumer) error {
	w.logger.InfoContext(ctx, "worker started", slog.Any("jobs", w.Jobs()))
	err := c.Consume(ctx, w.Handle)
	w.logger.InfoContext(context.WithoutCancel(ctx), "worker stopped")
	return err
}
