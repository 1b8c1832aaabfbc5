package middleware

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what a limited form does when Redis cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the submission through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

var errNoLimiterStore = errors.New("rate limit store unavailable")

// limitsEnforced is false for local development and tests.
func limitsEnforced() bool {
	switch os.Getenv("APP_ENV") {
	case "", "development", "test":
		return false
	}
	return true
}

// CheckRateLimit counts one submission of resource by id in a fixed window
// and reports whether it is still within limit.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	used, err := hit(ctx, rdb, resource, id, window)
	if err != nil {
		return false, err
	}
	return used <= int64(limit), nil
}

func hit(ctx context.Context, rdb *redis.Client, resource, id string, window time.Duration) (int64, error) {
	if !limitsEnforced() {
		return 0, nil
	}
	if rdb == nil {
		return 0, errNoLimiterStore
	}

	key := "rl:" + resource + ":" + id
	used, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// The first hit opens the window.
	if used == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return used, err
		}
	}
	return used, nil
}

// RateLimit limits POST submissions of a form to limit per window, per
// signed-in user or, for anonymous visitors, per IP.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit FailPolicy. Rendering the
// form (GET) is never counted.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}
		id := "ip:" + c.IP()
		if uid, ok := c.Locals("userID").(uint); ok {
			id = "user:" + strconv.FormatUint(uint64(uid), 10)
		}

		used, err := hit(c.UserContext(), rdb, resource, id, window)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit check failed",
				slog.String("resource", resource),
				slog.String("error", err.Error()),
			)
			if policy == FailClosed {
				return fiber.ErrServiceUnavailable
			}
			return c.Next()
		}

		if used > 0 {
			remaining := int64(limit) - used
			if remaining < 0 {
				remaining = 0
			}
			c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		}
		if used > int64(limit) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return fiber.ErrTooManyRequests
		}
		return c.Next()
	}
}
