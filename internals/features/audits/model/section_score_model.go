// file: internals/features/audits/model/section_score_model.go
package model

import "time"

// SectionScoreModel is the frozen per-section result of a completion run.
// Only the lifecycle service writes these rows.
type SectionScoreModel struct {
	SectionScoreID          int64   `gorm:"primaryKey;autoIncrement;column:section_score_id" json:"section_score_id"`
	SectionScoreAuditID     int64   `gorm:"not null;uniqueIndex:uq_section_score_audit_section,priority:1;column:section_score_audit_id" json:"section_score_audit_id"`
	SectionScoreSectionID   int64   `gorm:"not null;uniqueIndex:uq_section_score_audit_section,priority:2;column:section_score_section_id" json:"section_score_section_id"`
	SectionScoreSectionName string  `gorm:"type:varchar(160);not null;default:'';column:section_score_section_name" json:"section_score_section_name"`
	SectionScoreOrder       int     `gorm:"not null;default:0;column:section_score_order" json:"section_score_order"`
	SectionScoreEarned      float64 `gorm:"not null;default:0;column:section_score_earned" json:"section_score_earned"`
	SectionScoreMax         float64 `gorm:"not null;default:0;column:section_score_max" json:"section_score_max"`
	SectionScorePercentage  float64 `gorm:"not null;default:0;column:section_score_percentage" json:"section_score_percentage"`

	SectionScoreTotalQuestions    int `gorm:"not null;default:0;column:section_score_total_questions" json:"section_score_total_questions"`
	SectionScoreAnsweredQuestions int `gorm:"not null;default:0;column:section_score_answered_questions" json:"section_score_answered_questions"`
	SectionScoreNAQuestions       int `gorm:"not null;default:0;column:section_score_na_questions" json:"section_score_na_questions"`

	SectionScoreCreatedAt time.Time `gorm:"column:section_score_created_at" json:"section_score_created_at"`
}

func (SectionScoreModel) TableName() string { return "audit_section_scores" }
