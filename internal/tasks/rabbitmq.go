package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lena210296/ProjectBlog/internal/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
)

// TaskExchange is the direct exchange tasks are published to.
const TaskExchange = "blog.tasks"

// RabbitMQQueue publishes tasks as persistent JSON messages.
type RabbitMQQueue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	mu      sync.Mutex
}

// NewRabbitMQQueue connects to url and declares the exchange and a durable
// queue bound with the queue name as routing key.
func NewRabbitMQQueue(url, queue string) (*RabbitMQQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(TaskExchange, "direct", true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := channel.QueueBind(queue, queue, TaskExchange, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	middleware.Logger.Info("Connected to RabbitMQ", slog.String("queue", queue))

	return &RabbitMQQueue{conn: conn, channel: channel, queue: queue}, nil
}

func (q *RabbitMQQueue) Enqueue(ctx context.Context, job string, args ...string) (string, error) {
	t := newTask(job, args)
	body, err := encodeTask(t)
	if err != nil {
		return "", err
	}

	// amqp channels are not safe for concurrent publishing.
	q.mu.Lock()
	defer q.mu.Unlock()

	err = q.channel.PublishWithContext(ctx, TaskExchange, q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    t.ID,
		Type:         job,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to publish message: %w", err)
	}
	return t.ID, nil
}

// Consume acks handled tasks. A failed task is requeued once and dropped
// if it fails again on redelivery.
func (q *RabbitMQQueue) Consume(ctx context.Context, handle func(context.Context, Task) error) error {
	if err := q.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}
	msgs, err := q.channel.ConsumeWithContext(ctx, q.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	middleware.Logger.Info("Started consuming tasks", slog.String("queue", q.queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("delivery channel closed")
			}
			q.deliver(ctx, msg, handle)
		}
	}
}

func (q *RabbitMQQueue) deliver(ctx context.Context, msg amqp.Delivery, handle func(context.Context, Task) error) {
	t, err := decodeTask(msg.Body)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "dropping malformed task", slog.String("error", err.Error()))
		_ = msg.Nack(false, false)
		return
	}
	if err := handle(ctx, t); err != nil {
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}
	_ = msg.Ack(false)
}

func (q *RabbitMQQueue) Close() error {
	if q.channel != nil {
		_ = q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}
