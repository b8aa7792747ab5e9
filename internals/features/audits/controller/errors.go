// file: internals/features/audits/controller/errors.go
package controller

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"foodaudit_backend/internals/features/audits/service"
	helper "foodaudit_backend/internals/helpers"
	"foodaudit_backend/internals/middlewares"
)

// writeServiceError maps the service error taxonomy onto HTTP.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidState):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPersistence):
		return helper.JsonRetryableError(c, fiber.StatusServiceUnavailable, "temporary storage failure, please retry")
	default:
		return helper.JsonError(c, fiber.StatusInternalServerError, "")
	}
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func requireActor(c *fiber.Ctx) (string, error) {
	actor := middlewares.ActorFrom(c)
	if actor == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "actor identity missing")
	}
	return actor, nil
}
