// file: internals/features/audits/controller/audit_scores_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"

	"foodaudit_backend/internals/features/audits/dto"
	"foodaudit_backend/internals/features/audits/model"
	"foodaudit_backend/internals/features/audits/service"
	helper "foodaudit_backend/internals/helpers"
)

type AuditScoresController struct {
	Exclusions *service.ExclusionService
	Lifecycle  *service.LifecycleService
	Responses  *service.ResponseService
}

func NewAuditScoresController(
	exclusions *service.ExclusionService,
	lifecycle *service.LifecycleService,
	responses *service.ResponseService,
) *AuditScoresController {
	return &AuditScoresController{Exclusions: exclusions, Lifecycle: lifecycle, Responses: responses}
}

/*
=========================================================

	START
	POST /api/a/audits

=========================================================
*/
func (h *AuditScoresController) Start(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.StartAuditRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload")
	}
	req.Normalize()
	if handled, err := helper.ValidateOrRespond(c, &req); handled {
		return err
	}

	audit, err := h.Responses.StartAudit(c.UserContext(), req.SchemaID, req.Name, actor)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonCreated(c, "audit started", dto.FromAuditModel(*audit))
}

// GET /api/a/audits/:audit_id/responses
func (h *AuditScoresController) ListResponses(c *fiber.Ctx) error {
	auditID, err := parseIDParam(c, "audit_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := h.Responses.ListResponses(c.UserContext(), auditID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromItemResponses(rows))
}

// PATCH /api/a/audits/:audit_id/responses/:item_id
func (h *AuditScoresController) RecordResponse(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	auditID, err := parseIDParam(c, "audit_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	itemID, err := parseIDParam(c, "item_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.RecordResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload: "+err.Error())
	}
	if handled, err := helper.ValidateOrRespond(c, &req); handled {
		return err
	}

	row, err := h.Responses.RecordResponse(c.UserContext(), auditID, itemID, req.SelectedChoice, actor)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonUpdated(c, "response recorded", dto.FromItemResponses([]model.ItemResponseModel{*row})[0])
}

// GET /api/a/audits/:audit_id/estimate
func (h *AuditScoresController) Estimate(c *fiber.Ctx) error {
	auditID, err := parseIDParam(c, "audit_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	out, err := h.Lifecycle.LiveEstimate(c.UserContext(), auditID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// GET /api/a/audits/:audit_id/sections
func (h *AuditScoresController) Sections(c *fiber.Ctx) error {
	auditID, err := parseIDParam(c, "audit_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	out, err := h.Exclusions.GetAuditSectionsWithScores(c.UserContext(), auditID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

/*
=========================================================

	SAVE EXCLUSIONS (full desired set)
	PUT /api/a/audits/:audit_id/exclusions

=========================================================
*/
func (h *AuditScoresController) SaveExclusions(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	auditID, err := parseIDParam(c, "audit_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.SaveExclusionsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if handled, err := helper.ValidateOrRespond(c, &req); handled {
		return err
	}

	out, err := h.Exclusions.SetExclusions(c.UserContext(), auditID, req.SectionIDs, actor)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonUpdated(c, "exclusions saved", out)
}

// POST /api/a/audits/:audit_id/complete
func (h *AuditScoresController) Complete(c *fiber.Ctx) error {
	if _, err := requireActor(c); err != nil {
		return helper.FromFiberError(c, err)
	}
	auditID, err := parseIDParam(c, "audit_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	out, err := h.Lifecycle.CompleteAudit(c.UserContext(), auditID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "audit completed", out)
}
