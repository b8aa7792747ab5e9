// file: internals/features/audits/dto/threshold_dto.go
package dto

type SectionPassingGrade struct {
	SectionID    int64 `json:"section_id" validate:"required,gt=0"`
	PassingGrade int   `json:"passing_grade" validate:"min=0,max=100"`
}

// SchemaSettingsRequest: optional overall grade plus any number of
// per-section overrides, all upserted together. An omitted overall grade
// leaves the stored one untouched.
type SchemaSettingsRequest struct {
	OverallPassingGrade *int                  `json:"overall_passing_grade" validate:"omitempty,min=0,max=100"`
	Sections            []SectionPassingGrade `json:"sections" validate:"dive"`
}

type PassingGradeResponse struct {
	SchemaID     int64  `json:"schema_id"`
	SectionID    *int64 `json:"section_id,omitempty"`
	PassingGrade int    `json:"passing_grade"`
}
