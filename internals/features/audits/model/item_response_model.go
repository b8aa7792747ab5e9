// file: internals/features/audits/model/item_response_model.go
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Choice is the closed set of answers a checklist item can hold.
type Choice string

const (
	ChoiceUnanswered Choice = "unanswered"
	ChoiceYes        Choice = "yes"
	ChoicePartially  Choice = "partially"
	ChoiceNo         Choice = "no"
	ChoiceNA         Choice = "na"
)

// ParseChoice normalizes free-form input ("Yes", " NA ", "n/a", "") into a Choice.
func ParseChoice(raw string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "unanswered", "empty":
		return ChoiceUnanswered, nil
	case "yes", "y":
		return ChoiceYes, nil
	case "partially", "partial":
		return ChoicePartially, nil
	case "no", "n":
		return ChoiceNo, nil
	case "na", "n/a", "not applicable":
		return ChoiceNA, nil
	}
	return "", fmt.Errorf("unknown choice %q", raw)
}

func (c Choice) Valid() bool {
	switch c {
	case ChoiceUnanswered, ChoiceYes, ChoicePartially, ChoiceNo, ChoiceNA:
		return true
	}
	return false
}

// Answered reports whether the item carries any answer, NA included.
func (c Choice) Answered() bool { return c != ChoiceUnanswered && c != "" }

// Scored reports whether the item participates in the earned/max ratio.
func (c Choice) Scored() bool {
	return c == ChoiceYes || c == ChoicePartially || c == ChoiceNo
}

// Factor is the share of the coefficient earned by this answer.
func (c Choice) Factor() float64 {
	switch c {
	case ChoiceYes:
		return 1
	case ChoicePartially:
		return 0.5
	}
	return 0
}

func (c *Choice) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = ChoiceUnanswered
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseChoice(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

type ItemResponseModel struct {
	ItemResponseID        int64  `gorm:"primaryKey;autoIncrement;column:item_response_id" json:"item_response_id"`
	ItemResponseAuditID   int64  `gorm:"not null;uniqueIndex:uq_item_response_audit_item,priority:1;column:item_response_audit_id" json:"item_response_audit_id"`
	ItemResponseSectionID int64  `gorm:"not null;index;column:item_response_section_id" json:"item_response_section_id"`
	ItemResponseItemID    int64  `gorm:"not null;uniqueIndex:uq_item_response_audit_item,priority:2;column:item_response_item_id" json:"item_response_item_id"`
	ItemResponseReference string `gorm:"type:varchar(64);not null;default:'';column:item_response_reference" json:"item_response_reference"`

	ItemResponseCoefficient    int    `gorm:"not null;default:1;column:item_response_coefficient" json:"item_response_coefficient"`
	ItemResponseSelectedChoice Choice `gorm:"type:varchar(16);not null;default:'unanswered';column:item_response_selected_choice" json:"item_response_selected_choice"`

	ItemResponseUpdatedBy string    `gorm:"type:varchar(160);not null;default:'';column:item_response_updated_by" json:"item_response_updated_by"`
	ItemResponseCreatedAt time.Time `gorm:"autoCreateTime;column:item_response_created_at" json:"item_response_created_at"`
	ItemResponseUpdatedAt time.Time `gorm:"autoUpdateTime;column:item_response_updated_at" json:"item_response_updated_at"`
}

func (ItemResponseModel) TableName() string { return "audit_item_responses" }
