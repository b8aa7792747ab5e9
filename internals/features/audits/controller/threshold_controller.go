// file: internals/features/audits/controller/threshold_controller.go
package controller

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"foodaudit_backend/internals/features/audits/dto"
	"foodaudit_backend/internals/features/audits/service"
	helper "foodaudit_backend/internals/helpers"
)

type ThresholdController struct {
	Thresholds *service.ThresholdService
}

func NewThresholdController(thresholds *service.ThresholdService) *ThresholdController {
	return &ThresholdController{Thresholds: thresholds}
}

// GET /api/a/schemas/:schema_id/passing-grade?section_id=
func (h *ThresholdController) PassingGrade(c *fiber.Ctx) error {
	schemaID, err := parseIDParam(c, "schema_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var sectionID *int64
	if raw := strings.TrimSpace(c.Query("section_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid section_id")
		}
		sectionID = &id
	}

	grade := h.Thresholds.GetPassingGrade(c.UserContext(), schemaID, sectionID)
	return helper.JsonOK(c, "ok", dto.PassingGradeResponse{
		SchemaID:     schemaID,
		SectionID:    sectionID,
		PassingGrade: grade,
	})
}

// PUT /api/a/schemas/:schema_id/settings
func (h *ThresholdController) SaveSettings(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	schemaID, err := parseIDParam(c, "schema_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.SchemaSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if handled, err := helper.ValidateOrRespond(c, &req); handled {
		return err
	}

	if err := h.Thresholds.SaveSchemaSettings(c.UserContext(), schemaID, req, actor); err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonUpdated(c, "settings saved", fiber.Map{"success": true})
}
