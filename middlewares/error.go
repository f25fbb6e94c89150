package middlewares

import (
	"context"
	"errors"

	"freight-billing-backend/auth"
	"freight-billing-backend/billing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// statusClientClosedRequest is the nginx convention for a client that hung up.
const statusClientClosedRequest = 499

// NewErrorHandler centralizes error responses and keeps messages sanitized.
// Server-side failures are logged, client errors are not.
func NewErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// 1) Domain validation (422 + per-field info)
		var dve *billing.ValidationError
		if errors.As(err, &dve) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": dve.Error(),
				"errors":  dve.Fields,
			})
		}

		// 2) Request shape validation
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			out := make(map[string]string, len(ve))
			for _, fe := range ve {
				out[fe.Field()] = fe.Tag()
			}
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": (&billing.ValidationError{Fields: out}).Error(),
				"errors":  out,
			})
		}

		switch {
		case errors.Is(err, auth.ErrRejected):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		case errors.Is(err, billing.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "invoice not found"})
		case errors.Is(err, billing.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, billing.ErrStorageUnavailable):
			log.Error().Err(err).Str("path", c.Path()).Msg("storage unavailable")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "storage unavailable, retry later"})
		case errors.Is(err, context.Canceled):
			return c.Status(statusClientClosedRequest).JSON(fiber.Map{"message": "request canceled"})
		case errors.Is(err, context.DeadlineExceeded):
			log.Warn().Err(err).Str("path", c.Path()).Msg("request timed out")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "request timed out, retry later"})
		case errors.Is(err, billing.ErrRenderFailed):
			log.Error().Err(err).Str("path", c.Path()).Msg("render failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not render invoice"})
		}

		// 3) Fiber errors (use their status code + message)
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
		}

		// 4) Unknown errors (500)
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("internal error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "internal server error",
		})
	}
}
