// file: internals/features/audits/dto/audit_scores_dto.go
package dto

import (
	"time"

	"gorm.io/datatypes"

	"foodaudit_backend/internals/features/audits/model"
)

type ScoreSource string

const (
	// completed audits are read from the frozen section-score snapshot
	ScoreSourceSnapshot ScoreSource = "snapshot"
	// in-progress audits are estimated from current responses
	ScoreSourceLive ScoreSource = "live"
)

type AuditSummary struct {
	AuditID          int64             `json:"audit_id"`
	AuditSchemaID    int64             `json:"audit_schema_id"`
	AuditName        string            `json:"audit_name"`
	AuditStatus      model.AuditStatus `json:"audit_status"`
	AuditTotalScore  *float64          `json:"audit_total_score"`
	AuditCompletedAt *time.Time        `json:"audit_completed_at,omitempty"`
	// section id -> percentage, as frozen at completion
	AuditScoreSummary datatypes.JSONMap `json:"audit_score_summary,omitempty"`
}

func FromAuditModel(m model.AuditModel) AuditSummary {
	return AuditSummary{
		AuditID:           m.AuditID,
		AuditSchemaID:     m.AuditSchemaID,
		AuditName:         m.AuditName,
		AuditStatus:       m.AuditStatus,
		AuditTotalScore:   m.AuditTotalScore,
		AuditCompletedAt:  m.AuditCompletedAt,
		AuditScoreSummary: m.AuditScoreSummary,
	}
}

type SectionWithScore struct {
	SectionID         int64   `json:"section_id"`
	SectionName       string  `json:"section_name"`
	EarnedPoints      float64 `json:"earned_points"`
	MaxPoints         float64 `json:"max_points"`
	Percentage        float64 `json:"percentage"`
	TotalQuestions    int     `json:"total_questions"`
	AnsweredQuestions int     `json:"answered_questions"`
	NAQuestions       int     `json:"na_questions"`
	IsExcluded        bool    `json:"is_excluded"`
	PassingGrade      int     `json:"passing_grade"`
	Passed            bool    `json:"passed"`
}

func FromSectionScore(m model.SectionScoreModel, excluded bool) SectionWithScore {
	return SectionWithScore{
		SectionID:         m.SectionScoreSectionID,
		SectionName:       m.SectionScoreSectionName,
		EarnedPoints:      m.SectionScoreEarned,
		MaxPoints:         m.SectionScoreMax,
		Percentage:        m.SectionScorePercentage,
		TotalQuestions:    m.SectionScoreTotalQuestions,
		AnsweredQuestions: m.SectionScoreAnsweredQuestions,
		NAQuestions:       m.SectionScoreNAQuestions,
		IsExcluded:        excluded,
	}
}

type HistoryEntry struct {
	SectionID     int64                 `json:"section_id"`
	SectionName   string                `json:"section_name"`
	Action        model.ExclusionAction `json:"action"`
	OriginalScore *float64              `json:"original_score"`
	AdjustedScore *float64              `json:"adjusted_score"`
	ChangedBy     string                `json:"changed_by"`
	ChangedAt     time.Time             `json:"changed_at"`
}

func FromHistoryModel(m model.ExclusionHistoryModel) HistoryEntry {
	return HistoryEntry{
		SectionID:     m.ExclusionHistorySectionID,
		SectionName:   m.ExclusionHistorySectionName,
		Action:        m.ExclusionHistoryAction,
		OriginalScore: m.ExclusionHistoryOriginalScore,
		AdjustedScore: m.ExclusionHistoryAdjustedScore,
		ChangedBy:     m.ExclusionHistoryChangedBy,
		ChangedAt:     m.ExclusionHistoryChangedAt,
	}
}

// AuditScoresResponse is the aggregate returned by both the read and the
// exclusion-save paths.
type AuditScoresResponse struct {
	Audit         AuditSummary       `json:"audit"`
	ScoreSource   ScoreSource        `json:"score_source"`
	Sections      []SectionWithScore `json:"sections"`
	OriginalTotal *float64           `json:"original_total"`
	AdjustedTotal *float64           `json:"adjusted_total"`
	ExcludedCount int                `json:"excluded_count"`
	PassingGrade  int                `json:"passing_grade"`
	Passed        bool               `json:"passed"`
	History       []HistoryEntry     `json:"history"`
}

type SaveExclusionsRequest struct {
	// Full desired set; an empty list re-includes every section.
	SectionIDs []int64 `json:"section_ids" validate:"dive,gt=0"`
}
