// file: internals/features/audits/model/audit_model.go
package model

import (
	"time"

	"gorm.io/datatypes"
)

type AuditStatus string

const (
	AuditStatusInProgress AuditStatus = "in_progress"
	AuditStatusCompleted  AuditStatus = "completed"
)

func (s AuditStatus) IsCompleted() bool { return s == AuditStatusCompleted }

type AuditModel struct {
	AuditID       int64       `gorm:"primaryKey;autoIncrement;column:audit_id" json:"audit_id"`
	AuditSchemaID int64       `gorm:"not null;index;column:audit_schema_id" json:"audit_schema_id"`
	AuditName     string      `gorm:"type:varchar(160);not null;default:'';column:audit_name" json:"audit_name"`
	AuditStatus   AuditStatus `gorm:"type:varchar(24);not null;default:'in_progress';column:audit_status" json:"audit_status"`

	// Null until the audit is completed, and stays null when every
	// answered item was NA (undefined score).
	AuditTotalScore *float64 `gorm:"column:audit_total_score" json:"audit_total_score"`

	// section_id -> percentage, frozen at the last completion run
	AuditScoreSummary datatypes.JSONMap `gorm:"column:audit_score_summary" json:"audit_score_summary,omitempty"`

	AuditStartedBy   string     `gorm:"type:varchar(160);not null;default:'';column:audit_started_by" json:"audit_started_by"`
	AuditCompletedAt *time.Time `gorm:"column:audit_completed_at" json:"audit_completed_at,omitempty"`

	AuditCreatedAt time.Time `gorm:"autoCreateTime;column:audit_created_at" json:"audit_created_at"`
	AuditUpdatedAt time.Time `gorm:"autoUpdateTime;column:audit_updated_at" json:"audit_updated_at"`
}

func (AuditModel) TableName() string { return "audits" }
