// Package cache connects the blog to Redis and adapts it to fiber's storage
// interface for the limiter and page cache middleware.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lena210296/ProjectBlog/internal/middleware"
	"github.com/lena210296/ProjectBlog/internal/observability"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

const (
	defaultAddr = "localhost:6379"
	pingTimeout = 3 * time.Second
)

var client *redis.Client

// errorCounter feeds failed commands into the redis error metric.
// redis.Nil is a cache miss, not a failure.
type errorCounter struct{}

func (errorCounter) observe(op string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrorRate.WithLabelValues(op).Inc()
	}
}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		h.observe(cmd.Name(), err)
		return err
	}
}

func (h errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		h.observe("pipeline", err)
		return err
	}
}

// ParseOptions reads REDIS_URL, which may be a bare host:port or a
// redis:// or rediss:// URL carrying credentials and a database number.
func ParseOptions(raw string) (*redis.Options, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = defaultAddr
	}

	opts := &redis.Options{Addr: raw}
	if strings.Contains(raw, "://") {
		parsed, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}
	// Older servers reject the CLIENT MAINT_NOTIFICATIONS handshake.
	opts.MaintNotificationsConfig = &maintnotifications.Config{Mode: maintnotifications.ModeDisabled}
	return opts, nil
}

// NewClient returns a client whose command errors are counted. It does not dial.
func NewClient(opts *redis.Options) *redis.Client {
	rdb := redis.NewClient(opts)
	rdb.AddHook(errorCounter{})
	return rdb
}

// InitRedis connects to raw and remembers the client for GetClient.
// Redis is optional for the web process: when it cannot be reached InitRedis
// returns nil and sessions, rate limits and the page cache fall back.
func InitRedis(raw string) *redis.Client {
	client = nil

	opts, err := ParseOptions(raw)
	if err != nil {
		middleware.Logger.Warn("redis disabled: bad REDIS_URL", "error", err)
		return nil
	}
	rdb := NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis disabled: ping failed", "addr", opts.Addr, "error", err)
		_ = rdb.Close()
		return nil
	}

	middleware.Logger.Info("redis connected", "addr", opts.Addr, "db", opts.DB)
	client = rdb
	return client
}

// GetClient returns the client from the last successful InitRedis, or nil.
func GetClient() *redis.Client {
	return client
}
