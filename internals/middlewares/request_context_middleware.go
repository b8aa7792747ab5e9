package middlewares

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	LocalRequestID = "reqid"
	// set by the upstream auth layer; X-User-Email is the fallback
	LocalActor = "user_email"

	HeaderActor = "X-User-Email"
)

// RequestContext tags the request with an id, bounds it with timeout and
// logs its outcome.
func RequestContext(log *zap.Logger, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals(LocalRequestID, id)

		start := time.Now()
		if timeout > 0 {
			ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
			defer cancel()
			c.SetUserContext(ctx)
		}
		err := c.Next()

		log.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}

// Actor resolves who performs the request. Authentication itself happens
// upstream; this only copies the identity into LocalActor.
func Actor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if actor, ok := c.Locals(LocalActor).(string); ok && strings.TrimSpace(actor) != "" {
			return c.Next()
		}
		if actor := strings.TrimSpace(c.Get(HeaderActor)); actor != "" {
			c.Locals(LocalActor, actor)
		}
		return c.Next()
	}
}

// ActorFrom returns the resolved actor, or "".
func ActorFrom(c *fiber.Ctx) string {
	actor, _ := c.Locals(LocalActor).(string)
	return strings.TrimSpace(actor)
}
