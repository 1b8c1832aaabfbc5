package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
)

// PageCache caches whole GET responses for ttl, keyed by the authenticated
// user and the full URL. A nil storage keeps entries in memory. New posts do
// not invalidate entries.
func PageCache(storage fiber.Storage, ttl time.Duration, prefix string) fiber.Handler {
	return cache.New(cache.Config{
		Expiration:   ttl,
		CacheControl: false,
		Storage:      storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return fmt.Sprintf("page:%s:%v:%s", prefix, c.Locals("userID"), c.OriginalURL())
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != fiber.MethodGet
		},
	})
}
