// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodaudit_backend/internals/features/audits/cache"
	auditController "foodaudit_backend/internals/features/audits/controller"
	auditRoute "foodaudit_backend/internals/features/audits/route"
	auditService "foodaudit_backend/internals/features/audits/service"
)

var startTime time.Time

type Deps struct {
	DB               *gorm.DB
	Log              *zap.Logger
	ThresholdCache   cache.ThresholdCache
	OperationTimeout time.Duration
	Environment      string
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	log.Info("setting up base routes")
	BaseRoutes(app, d.DB, d.Environment)

	thresholds := auditService.NewThresholdService(d.DB, d.ThresholdCache, log, d.OperationTimeout)
	exclusions := auditService.NewExclusionService(d.DB, thresholds, log, d.OperationTimeout)
	lifecycle := auditService.NewLifecycleService(d.DB, log, d.OperationTimeout)
	responses := auditService.NewResponseService(d.DB, log, d.OperationTimeout)

	// ===================== ADMIN =====================
	log.Info("mounting audit admin routes")
	admin := app.Group("/api/a")
	auditRoute.AuditAdminRoutes(admin,
		auditController.NewAuditScoresController(exclusions, lifecycle, responses),
		auditController.NewThresholdController(thresholds),
	)
}
