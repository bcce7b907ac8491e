package registration

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Handler exposes the registration workflow over HTTP.
type Handler struct {
	service *Service
	logger  *zerolog.Logger
}

// NewHandler builds a registration HTTP handler.
func NewHandler(service *Service, logger *zerolog.Logger) *Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Handler{service: service, logger: logger}
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type pendingResponse struct {
	Success        bool      `json:"success"`
	Message        string    `json:"message"`
	RegistrationID string    `json:"registrationId"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

type statusResponse struct {
	Success        bool       `json:"success"`
	Status         Status     `json:"status"`
	RegistrationID string     `json:"registrationId,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

// Submit accepts a signup and mails the verification code.
func (h *Handler) Submit(c *fiber.Ctx) error {
	var req SubmitInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "malformed request body")
	}
	res, err := h.service.Submit(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, ErrNotificationFailed) {
			// The registration is stored; the client can ask for a resend.
			return c.Status(http.StatusBadGateway).JSON(pendingResponse{
				Message:        "Registration saved but the verification email could not be sent. Please request a new code.",
				RegistrationID: res.RegistrationID,
				ExpiresAt:      res.ExpiresAt,
			})
		}
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(pendingResponse{
		Success:        true,
		Message:        "Verification code sent to " + res.Email,
		RegistrationID: res.RegistrationID,
		ExpiresAt:      res.ExpiresAt,
	})
}

// Resend issues a new code for a pending registration.
func (h *Handler) Resend(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "malformed request body")
	}
	res, err := h.service.Resend(c.UserContext(), req.Email)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(pendingResponse{
		Success:        true,
		Message:        "A new verification code has been sent",
		RegistrationID: res.RegistrationID,
		ExpiresAt:      res.ExpiresAt,
	})
}

// Verify confirms a code and creates the account.
func (h *Handler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "malformed request body")
	}
	if err := h.service.Verify(c.UserContext(), req.Email, strings.TrimSpace(req.OTP)); err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Account created successfully",
	})
}

// Cancel abandons a pending registration by id.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	if err := h.service.Cancel(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Registration cancelled",
	})
}

// Status reports the registration state of the email query parameter.
func (h *Handler) Status(c *fiber.Ctx) error {
	res, err := h.service.CheckStatus(c.UserContext(), c.Query("email"))
	if err != nil {
		return h.fail(c, err)
	}
	out := statusResponse{Success: true, Status: res.Status, RegistrationID: res.RegistrationID}
	if res.Status == StatusPending {
		out.ExpiresAt = &res.ExpiresAt
	}
	return c.Status(http.StatusOK).JSON(out)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status, message := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("registration request failed")
	}
	return fiber.NewError(status, message)
}

// StatusFor maps a workflow error to an HTTP status and a client-safe message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, ErrAlreadyRegistered):
		return http.StatusConflict, "An account with this email already exists"
	case errors.Is(err, ErrNoPendingRegistration):
		return http.StatusNotFound, "No pending registration found. Please register again"
	case errors.Is(err, ErrOTPExpired):
		return http.StatusGone, "Verification code has expired. Please register again"
	case errors.Is(err, ErrInvalidOTP):
		return http.StatusBadRequest, "Invalid verification code"
	case errors.Is(err, ErrNotificationFailed):
		return http.StatusBadGateway, "Verification email could not be sent"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
