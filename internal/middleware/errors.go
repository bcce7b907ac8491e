package middleware

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ErrorHandler renders every error as the {success, message} envelope. Errors
// that are not *fiber.Error are logged and reported as a generic 500.
func ErrorHandler(logger *zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := http.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else if logger != nil {
			requestID, _ := c.Locals(requestIDHeader).(string)
			logger.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("request_id", requestID).
				Msg("unhandled error")
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}
