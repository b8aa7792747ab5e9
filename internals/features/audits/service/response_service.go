// file: internals/features/audits/service/response_service.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodaudit_backend/internals/features/audits/model"
)

// ResponseService seeds and edits item responses (the scoring input).
type ResponseService struct {
	DB      *gorm.DB
	Log     *zap.Logger
	Timeout time.Duration
}

func NewResponseService(db *gorm.DB, log *zap.Logger, timeout time.Duration) *ResponseService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResponseService{
		DB:      db,
		Log:     log.With(zap.String("component", "response_store")),
		Timeout: timeout,
	}
}

// StartAudit creates an in-progress audit with one unanswered response per
// template item of the schema.
func (s *ResponseService) StartAudit(ctx context.Context, schemaID int64, name, actor string) (*model.AuditModel, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, invalidStatef("actor is required")
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var audit model.AuditModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var schema model.SchemaModel
		err := tx.Where("schema_id = ?", schemaID).Take(&schema).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("schema %d", schemaID)
		}
		if err != nil {
			return err
		}

		var items []model.TemplateItemModel
		if err := tx.
			Where("template_item_schema_id = ?", schemaID).
			Order("template_item_section_id ASC, template_item_order ASC, template_item_id ASC").
			Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return invalidStatef("schema %d has no checklist items", schemaID)
		}

		if strings.TrimSpace(name) == "" {
			name = schema.SchemaName
		}
		audit = model.AuditModel{
			AuditSchemaID:  schemaID,
			AuditName:      strings.TrimSpace(name),
			AuditStatus:    model.AuditStatusInProgress,
			AuditStartedBy: actor,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}

		responses := make([]model.ItemResponseModel, 0, len(items))
		for _, it := range items {
			coeff := it.TemplateItemCoefficient
			if coeff <= 0 {
				return invalidStatef("template item %d has non-positive coefficient %d", it.TemplateItemID, coeff)
			}
			responses = append(responses, model.ItemResponseModel{
				ItemResponseAuditID:        audit.AuditID,
				ItemResponseSectionID:      it.TemplateItemSectionID,
				ItemResponseItemID:         it.TemplateItemID,
				ItemResponseReference:      it.TemplateItemReference,
				ItemResponseCoefficient:    coeff,
				ItemResponseSelectedChoice: model.ChoiceUnanswered,
				ItemResponseUpdatedBy:      actor,
			})
		}
		return tx.CreateInBatches(&responses, 200).Error
	})
	if err != nil {
		transactionFailuresTotal.WithLabelValues("start_audit").Inc()
		return nil, persistenceErr("start audit", err)
	}

	s.Log.Info("audit started",
		zap.Int64("audit_id", audit.AuditID),
		zap.Int64("schema_id", schemaID),
		zap.String("actor", actor),
	)
	return &audit, nil
}

// RecordResponse changes one answer. Completed audits are read-only: the only
// way to refresh their scores is another CompleteAudit run.
func (s *ResponseService) RecordResponse(ctx context.Context, auditID, itemID int64, choice model.Choice, actor string) (*model.ItemResponseModel, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, invalidStatef("actor is required")
	}
	if !choice.Valid() {
		return nil, invalidStatef("unknown choice %q", choice)
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var row model.ItemResponseModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		audit, err := loadAudit(tx, auditID, true)
		if err != nil {
			return err
		}
		if audit.AuditStatus.IsCompleted() {
			return invalidStatef("audit %d is completed; responses are read-only", auditID)
		}

		err = tx.Where("item_response_audit_id = ? AND item_response_item_id = ?", auditID, itemID).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("item %d in audit %d", itemID, auditID)
		}
		if err != nil {
			return err
		}

		row.ItemResponseSelectedChoice = choice
		row.ItemResponseUpdatedBy = actor
		return tx.Model(&row).Updates(map[string]any{
			"item_response_selected_choice": choice,
			"item_response_updated_by":      actor,
		}).Error
	})
	if err != nil {
		return nil, persistenceErr("record response", err)
	}
	return &row, nil
}

func (s *ResponseService) ListResponses(ctx context.Context, auditID int64) ([]model.ItemResponseModel, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	db := s.DB.WithContext(ctx)
	if _, err := loadAudit(db, auditID, false); err != nil {
		return nil, err
	}
	return loadResponses(db, auditID)
}
