package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"go.uber.org/zap"
)

func SetupMiddlewares(app *fiber.App, log *zap.Logger, corsOrigins []string, timeout time.Duration) {
	app.Use(RequestContext(log, timeout))
	app.Use(RecoveryMiddleware(log))
	app.Use(CorsMiddleware(corsOrigins))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(GlobalRateLimiter())
	app.Use(Actor())
}
