package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lena210296/ProjectBlog/internal/middleware"
	"github.com/redis/go-redis/v9"
)

const redisPollTimeout = time.Second

// RedisQueue is a FIFO list: producers LPUSH, workers BRPOP. Tasks whose
// handler fails are moved to "<key>:failed".
type RedisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: "tasks:" + key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job string, args ...string) (string, error) {
	if q.rdb == nil {
		return "", errors.New("redis queue: no client")
	}
	t := newTask(job, args)
	body, err := encodeTask(t)
	if err != nil {
		return "", err
	}
	if err := q.rdb.LPush(ctx, q.key, body).Err(); err != nil {
		return "", fmt.Errorf("failed to push task: %w", err)
	}
	return t.ID, nil
}

// Len returns the number of pending tasks.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}

// FailedKey is the list holding tasks whose handler returned an error.
func (q *RedisQueue) FailedKey() string { return q.key + ":failed" }

func (q *RedisQueue) Consume(ctx context.Context, handle func(context.Context, Task) error) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		res, err := q.rdb.BRPop(ctx, redisPollTimeout, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			middleware.Logger.ErrorContext(ctx, "failed to pop task", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(redisPollTimeout):
			}
			continue
		}

		// BRPOP replies with [key, value].
		raw := res[1]
		t, err := decodeTask([]byte(raw))
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "dropping malformed task", slog.String("error", err.Error()), slog.String("body", raw))
			continue
		}
		if err := handle(ctx, t); err != nil {
			if pushErr := q.rdb.LPush(context.WithoutCancel(ctx), q.FailedKey(), raw).Err(); pushErr != nil {
				middleware.Logger.ErrorContext(ctx, "failed to park task", slog.String("task_id", t.ID), slog.String("error", pushErr.Error()))
			}
		}
	}
}

// Close is a no-op; the Redis client is owned by the caller.
func (q *RedisQueue) Close() error { return nil }
