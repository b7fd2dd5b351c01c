package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/cache"
)

const (
	rateLimit       = 30
	rateLimitWindow = time.Minute
)

// RateLimit throttles per client IP with a redis counter. When redis is down
// requests pass through; throttling is hardening, not correctness.
func RateLimit(redisCache *cache.Redis) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisCache == nil {
			return c.Next()
		}

		key := "ratelimit:" + c.IP()
		count, err := redisCache.Incr(c.Context(), key)
		if err != nil {
			return c.Next()
		}
		if count == 1 {
			_ = redisCache.Expire(c.Context(), key, rateLimitWindow)
		}

		if count > rateLimit {
			c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", rateLimit))
			c.Set("X-RateLimit-Remaining", "0")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded, try again later",
			})
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", rateLimit))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", rateLimit-int(count)))
		return c.Next()
	}
}
