package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := fiber.New()
	app.Post("/verify-otp", OTPRateLimit(cache, 2), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func(email string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/verify-otp", strings.NewReader(`{"email":"`+email+`"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, send("a@x.com"))
	assert.Equal(t, fiber.StatusOK, send("A@x.com "))
	assert.Equal(t, fiber.StatusTooManyRequests, send("a@x.com"))
	assert.Equal(t, fiber.StatusOK, send("b@x.com"))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, fiber.StatusOK, send("a@x.com"))
}

func TestOTPRateLimitWithoutRedis(t *testing.T) {
	app := fiber.New()
	app.Post("/resend-otp", OTPRateLimit(nil, 1), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/resend-otp", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}
