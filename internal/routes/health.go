package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds a readiness endpoint covering every configured backend.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		checks := fiber.Map{}
		healthy := true
		record := func(name string, err error) {
			if err != nil {
				checks[name] = err.Error()
				healthy = false
				return
			}
			checks[name] = "ok"
		}

		if d.DB != nil {
			record("postgres", d.DB.Ping(ctx))
		}
		if d.Cache != nil {
			record("redis", d.Cache.Ping(ctx).Err())
		}
		if d.Mongo != nil {
			record("mongo", d.Mongo.Ping(ctx, nil))
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    checks,
			"backend":   d.Cfg.StoreBackend,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
