package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"notas-client/internal/auth"
	"notas-client/internal/gateway/contract"
	"notas-client/internal/service"
)

// ErrorHandlerMiddleware maps domain errors to HTTP statuses. Auth messages
// pass through verbatim; they are the user-facing text.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		message := err.Error()

		var authErr *auth.AuthError
		var remoteErr *contract.RemoteError
		var validationErr *ValidationError
		var fiberErr *fiber.Error

		switch {
		case errors.As(err, &authErr):
			status = fiber.StatusUnauthorized
			if authErr.StatusCode >= 400 && authErr.StatusCode < 500 {
				status = authErr.StatusCode
			}
			message = authErr.Message
		case errors.As(err, &remoteErr):
			status = fiber.StatusBadGateway
			message = remoteErr.Message
		case errors.As(err, &validationErr):
			status = fiber.StatusBadRequest
			message = validationErr.Message
		case errors.Is(err, service.ErrNoSession):
			status = fiber.StatusUnauthorized
		case errors.Is(err, service.ErrEmptyFolderName):
			status = fiber.StatusBadRequest
		case errors.Is(err, service.ErrUnknownFolder), errors.Is(err, service.ErrUnknownNote):
			status = fiber.StatusNotFound
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
		}

		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}
