package tasks

import "context"

// InlineQueue runs each task immediately on the calling goroutine. It is the
// broker for local development and tests.
type InlineQueue struct {
	worker *Worker
}

func NewInlineQueue(w *Worker) *InlineQueue {
	return &InlineQueue{worker: w}
}

// Enqueue never reports handler failures; they are logged by the worker.
func (q *InlineQueue) Enqueue(ctx context.Context, job string, args ...string) (string, error) {
	t := newTask(job, args)
	_ = q.worker.Handle(context.WithoutCancel(ctx), t)
	return t.ID, nil
}
