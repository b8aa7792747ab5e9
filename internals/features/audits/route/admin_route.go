package route

import (
	"github.com/gofiber/fiber/v2"

	"foodaudit_backend/internals/features/audits/controller"
	"foodaudit_backend/internals/middlewares"
)

// AuditAdminRoutes is mounted under /api/a. Authentication happens upstream;
// writes are rate limited per actor.
func AuditAdminRoutes(r fiber.Router, scores *controller.AuditScoresController, thresholds *controller.ThresholdController) {
	writes := middlewares.MutationRateLimiter()

	// ============================
	// AUDITS
	// ============================
	g := r.Group("/audits", writes) // -> /api/a/audits

	g.Post("/", scores.Start)                                       // POST  /api/a/audits
	g.Get("/:audit_id/responses", scores.ListResponses)             // GET   /api/a/audits/:audit_id/responses
	g.Patch("/:audit_id/responses/:item_id", scores.RecordResponse) // PATCH /api/a/audits/:audit_id/responses/:item_id
	g.Get("/:audit_id/estimate", scores.Estimate)                   // GET   /api/a/audits/:audit_id/estimate
	g.Get("/:audit_id/sections", scores.Sections)                   // GET   /api/a/audits/:audit_id/sections
	g.Put("/:audit_id/exclusions", scores.SaveExclusions)           // PUT   /api/a/audits/:audit_id/exclusions
	g.Post("/:audit_id/complete", scores.Complete)                  // POST  /api/a/audits/:audit_id/complete

	// ============================
	// SCHEMA THRESHOLDS
	// ============================
	s := r.Group("/schemas", writes) // -> /api/a/schemas

	s.Get("/:schema_id/passing-grade", thresholds.PassingGrade) // GET /api/a/schemas/:schema_id/passing-grade?section_id=
	s.Put("/:schema_id/settings", thresholds.SaveSettings)      // PUT /api/a/schemas/:schema_id/settings
}
