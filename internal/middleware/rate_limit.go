package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const defaultOTPAttemptsPerMinute = 5

// OTPRateLimit caps code verification and resend calls per email (or per
// client IP when the body has no email) using a one-minute Redis counter.
// It is a no-op without Redis and fails open on cache errors.
func OTPRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = defaultOTPAttemptsPerMinute
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			Email string `json:"email"`
		}
		_ = c.BodyParser(&req)
		subject := strings.ToLower(strings.TrimSpace(req.Email))
		if subject == "" {
			subject = c.IP()
		}

		key := "rl:otp:" + c.Path() + ":" + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "Too many attempts, please try again later")
		}
		return c.Next()
	}
}
