package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// FromFiberError writes a *fiber.Error (bad param, missing actor) in the
// standard error shape. Anything else is treated as a bad request.
func FromFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	return JsonError(c, fiber.StatusBadRequest, err.Error())
}
