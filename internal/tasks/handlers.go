package tasks

import (
	"context"
	"log/slog"
)

// Notifier writes notification lines. There is no mail transport; the log
// line is the delivery.
type Notifier struct {
	logger *slog.Logger
}

func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// SendAdminMessage handles send_admin_message(message).
func (n *Notifier) SendAdminMessage(ctx context.Context, args []string) error {
	n.logger.InfoContext(ctx, "[Admin] "+args[0])
	return nil
}

// SendUserMessage handles send_user_message(username, message).
func (n *Notifier) SendUserMessage(ctx context.Context, args []string) error {
	n.logger.InfoContext(ctx, "[User: "+args[0]+"] "+args[1])
	return nil
}

// PrintContactMessage handles print_contact_message(name, email, message).
func (n *Notifier) PrintContactMessage(ctx context.Context, args []string) error {
	name, email, message := args[0], args[1], args[2]
	n.logger.InfoContext(ctx, "Contact Form Submission from "+name)
	n.logger.InfoContext(ctx, "From: "+email+"\n\n"+message)
	return nil
}
