// file: internals/features/audits/dto/lifecycle_dto.go
package dto

import (
	"strings"

	"foodaudit_backend/internals/features/audits/model"
)

type SectionPercentage struct {
	SectionID   int64   `json:"id"`
	SectionName string  `json:"name"`
	Percentage  float64 `json:"percentage"`
}

type CompleteAuditResponse struct {
	TotalScore    *float64            `json:"total_score"`
	SectionScores []SectionPercentage `json:"section_scores"`
	Status        model.AuditStatus   `json:"status"`
}

type LiveEstimateResponse struct {
	AuditID         int64              `json:"audit_id"`
	Status          model.AuditStatus  `json:"status"`
	CalculatedScore *float64           `json:"calculated_score"`
	Sections        []SectionWithScore `json:"sections"`
}

type StartAuditRequest struct {
	SchemaID int64  `json:"schema_id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"max=160"`
}

func (r *StartAuditRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

type RecordResponseRequest struct {
	SelectedChoice model.Choice `json:"selected_choice" validate:"required"`
}

type ItemResponseItem struct {
	ItemID         int64        `json:"item_id"`
	SectionID      int64        `json:"section_id"`
	ReferenceValue string       `json:"reference_value"`
	Coefficient    int          `json:"coefficient"`
	SelectedChoice model.Choice `json:"selected_choice"`
}

func FromItemResponses(rows []model.ItemResponseModel) []ItemResponseItem {
	out := make([]ItemResponseItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, ItemResponseItem{
			ItemID:         r.ItemResponseItemID,
			SectionID:      r.ItemResponseSectionID,
			ReferenceValue: r.ItemResponseReference,
			Coefficient:    r.ItemResponseCoefficient,
			SelectedChoice: r.ItemResponseSelectedChoice,
		})
	}
	return out
}
