package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jobportal/jobportal/internal/registration"
)

// RegisterRegistrationRoutes mounts the signup workflow under /user/register.
// Code-guessing endpoints sit behind the throttle.
func RegisterRegistrationRoutes(r fiber.Router, h *registration.Handler, idempotency, throttle fiber.Handler) {
	g := r.Group("/user/register")
	g.Post("/", idempotency, h.Submit)
	g.Get("/status", h.Status)
	g.Post("/resend-otp", throttle, h.Resend)
	g.Post("/verify-otp", throttle, h.Verify)
	g.Delete("/:id", h.Cancel)
}
