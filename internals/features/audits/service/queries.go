// file: internals/features/audits/service/queries.go
package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodaudit_backend/internals/features/audits/model"
)

// historyLimit caps the history returned alongside the aggregate.
const historyLimit = 20

// withTimeout bounds one operation; zero keeps the caller's deadline.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func loadAudit(db *gorm.DB, auditID int64, forUpdate bool) (model.AuditModel, error) {
	var audit model.AuditModel
	q := db
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("audit_id = ?", auditID).Take(&audit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return audit, notFoundf("audit %d", auditID)
	}
	if err != nil {
		return audit, persistenceErr("load audit", err)
	}
	return audit, nil
}

func loadResponses(db *gorm.DB, auditID int64) ([]model.ItemResponseModel, error) {
	var rows []model.ItemResponseModel
	err := db.
		Where("item_response_audit_id = ?", auditID).
		Order("item_response_section_id ASC, item_response_item_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, persistenceErr("load responses", err)
	}
	return rows, nil
}

func loadCatalog(db *gorm.DB, schemaID int64) ([]model.SchemaSectionModel, error) {
	var rows []model.SchemaSectionModel
	err := db.
		Where("schema_section_schema_id = ?", schemaID).
		Order("schema_section_order ASC, schema_section_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, persistenceErr("load section catalog", err)
	}
	return rows, nil
}

func loadSectionScores(db *gorm.DB, auditID int64) ([]model.SectionScoreModel, error) {
	var rows []model.SectionScoreModel
	err := db.
		Where("section_score_audit_id = ?", auditID).
		Order("section_score_order ASC, section_score_section_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, persistenceErr("load section scores", err)
	}
	return rows, nil
}

func loadExclusions(db *gorm.DB, auditID int64) ([]model.SectionExclusionModel, error) {
	var rows []model.SectionExclusionModel
	err := db.
		Where("section_exclusion_audit_id = ?", auditID).
		Find(&rows).Error
	if err != nil {
		return nil, persistenceErr("load exclusions", err)
	}
	return rows, nil
}

func excludedSet(rows []model.SectionExclusionModel) map[int64]bool {
	set := make(map[int64]bool, len(rows))
	for _, r := range rows {
		if r.SectionExclusionIsExcluded {
			set[r.SectionExclusionSectionID] = true
		}
	}
	return set
}

func loadRecentHistory(db *gorm.DB, auditID int64, limit int) ([]model.ExclusionHistoryModel, error) {
	var rows []model.ExclusionHistoryModel
	err := db.
		Where("exclusion_history_audit_id = ?", auditID).
		Order("exclusion_history_changed_at DESC, exclusion_history_id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, persistenceErr("load exclusion history", err)
	}
	return rows, nil
}

// scoredSections returns the frozen snapshot of a completed audit, or a live
// computation for an audit still in progress.
func scoredSections(db *gorm.DB, audit model.AuditModel, now time.Time) ([]model.SectionScoreModel, bool, error) {
	if audit.AuditStatus.IsCompleted() {
		rows, err := loadSectionScores(db, audit.AuditID)
		return rows, true, err
	}
	rows, err := liveSectionScores(db, audit, now)
	return rows, false, err
}

func liveSectionScores(db *gorm.DB, audit model.AuditModel, now time.Time) ([]model.SectionScoreModel, error) {
	responses, err := loadResponses(db, audit.AuditID)
	if err != nil {
		return nil, err
	}
	catalog, err := loadCatalog(db, audit.AuditSchemaID)
	if err != nil {
		return nil, err
	}
	return ComputeSectionScores(audit.AuditID, responses, catalog, now), nil
}
