package response

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hassan-nahid/digital-wallet-backend/internal/apperr"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// FromError renders a service failure: typed failures keep their status
// and message, anything else becomes an opaque 500.
func FromError(c *fiber.Ctx, err error) error {
	if apperr.IsClient(err) {
		return Error(c, apperr.StatusOf(err), err.Error())
	}
	return Error(c, fiber.StatusInternalServerError, "Internal server error")
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}
