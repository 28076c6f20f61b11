package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/makeasinger/fretboard/pkg/response"
)

// KeyFunc names the bucket a request is counted in; empty skips limiting
type KeyFunc func(c *fiber.Ctx) string

// ByUser counts per authenticated user
func ByUser(c *fiber.Ctx) string {
	return GetUserID(c)
}

// ByIP counts per client address
func ByIP(c *fiber.Ctx) string {
	return c.IP()
}

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit allows maxRequests per window for each key. Requests pass when
// Redis is unavailable.
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration, keyFn KeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := keyFn(c)
		if id == "" || maxRequests <= 0 {
			return c.Next()
		}

		key := "ratelimit:" + keyPrefix + ":" + id
		ctx := c.UserContext()

		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			return c.Next()
		}
		if count == 1 {
			rl.redis.Expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(maxRequests-int(count)))

		return c.Next()
	}
}

// DiagramLimit limits the public theory endpoints per client IP
func (rl *RateLimiter) DiagramLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("diagram", maxPerMin, time.Minute, ByIP)
}

// ExportLimit limits diagram exports per user
func (rl *RateLimiter) ExportLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("export", maxPerHour, time.Hour, ByUser)
}

// SongbookLimit limits songbook jobs per user
func (rl *RateLimiter) SongbookLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("songbook", maxPerHour, time.Hour, ByUser)
}
