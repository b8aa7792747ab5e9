// file: internals/features/audits/model/exclusion_model.go
package model

import "time"

type ExclusionAction string

const (
	ExclusionActionExcluded ExclusionAction = "excluded"
	ExclusionActionIncluded ExclusionAction = "included"
)

// SectionExclusionModel holds the current override state, one row per (audit, section).
type SectionExclusionModel struct {
	SectionExclusionID         int64     `gorm:"primaryKey;autoIncrement;column:section_exclusion_id" json:"section_exclusion_id"`
	SectionExclusionAuditID    int64     `gorm:"not null;uniqueIndex:uq_section_exclusion_audit_section,priority:1;column:section_exclusion_audit_id" json:"section_exclusion_audit_id"`
	SectionExclusionSectionID  int64     `gorm:"not null;uniqueIndex:uq_section_exclusion_audit_section,priority:2;column:section_exclusion_section_id" json:"section_exclusion_section_id"`
	SectionExclusionIsExcluded bool      `gorm:"not null;default:true;column:section_exclusion_is_excluded" json:"section_exclusion_is_excluded"`
	SectionExclusionCreatedBy  string    `gorm:"type:varchar(160);not null;column:section_exclusion_created_by" json:"section_exclusion_created_by"`
	SectionExclusionCreatedAt  time.Time `gorm:"column:section_exclusion_created_at" json:"section_exclusion_created_at"`
}

func (SectionExclusionModel) TableName() string { return "audit_section_exclusions" }

// ExclusionHistoryModel is append-only: rows are inserted, never updated or deleted.
type ExclusionHistoryModel struct {
	ExclusionHistoryID          int64           `gorm:"primaryKey;autoIncrement;column:exclusion_history_id" json:"exclusion_history_id"`
	ExclusionHistoryAuditID     int64           `gorm:"not null;index;column:exclusion_history_audit_id" json:"exclusion_history_audit_id"`
	ExclusionHistorySectionID   int64           `gorm:"not null;column:exclusion_history_section_id" json:"exclusion_history_section_id"`
	ExclusionHistorySectionName string          `gorm:"type:varchar(160);not null;default:'';column:exclusion_history_section_name" json:"exclusion_history_section_name"`
	ExclusionHistoryAction      ExclusionAction `gorm:"type:varchar(16);not null;column:exclusion_history_action" json:"exclusion_history_action"`

	// Totals around the change: all sections vs. after applying the new set.
	ExclusionHistoryOriginalScore *float64 `gorm:"column:exclusion_history_original_score" json:"exclusion_history_original_score"`
	ExclusionHistoryAdjustedScore *float64 `gorm:"column:exclusion_history_adjusted_score" json:"exclusion_history_adjusted_score"`

	ExclusionHistoryChangedBy string    `gorm:"type:varchar(160);not null;column:exclusion_history_changed_by" json:"exclusion_history_changed_by"`
	ExclusionHistoryChangedAt time.Time `gorm:"not null;column:exclusion_history_changed_at" json:"exclusion_history_changed_at"`
}

func (ExclusionHistoryModel) TableName() string { return "audit_section_exclusion_history" }
