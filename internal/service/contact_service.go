package service

import (
	"context"

	"github.com/lena210296/ProjectBlog/internal/forms"
	"github.com/lena210296/ProjectBlog/internal/tasks"
)

type ContactService struct {
	queue tasks.Queue
}

func NewContactService(queue tasks.Queue) *ContactService {
	return &ContactService{queue: queue}
}

// Submit hands a validated contact message to the worker. The subject is
// not forwarded.
func (s *ContactService) Submit(ctx context.Context, in forms.Contact) {
	tasks.Dispatch(ctx, s.queue, tasks.JobPrintContactMessage, in.Name, in.Email, in.Message)
}
