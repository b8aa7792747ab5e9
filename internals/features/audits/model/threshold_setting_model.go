// file: internals/features/audits/model/threshold_setting_model.go
package model

import "time"

// DefaultPassingGrade applies whenever no threshold is configured or the lookup fails.
const DefaultPassingGrade = 83

type SettingType string

const (
	SettingTypeOverall SettingType = "overall"
	SettingTypeSection SettingType = "section"
)

// The entity id is NULL for the overall row, so uq_threshold_setting_key
// cannot see duplicates of it; uq_threshold_setting_overall covers them.
type ThresholdSettingModel struct {
	ThresholdSettingID           int64       `gorm:"primaryKey;autoIncrement;column:threshold_setting_id" json:"threshold_setting_id"`
	ThresholdSettingSchemaID     int64       `gorm:"not null;uniqueIndex:uq_threshold_setting_key,priority:1;uniqueIndex:uq_threshold_setting_overall,priority:1,where:threshold_setting_entity_id IS NULL;column:threshold_setting_schema_id" json:"threshold_setting_schema_id"`
	ThresholdSettingType         SettingType `gorm:"type:varchar(16);not null;uniqueIndex:uq_threshold_setting_key,priority:2;uniqueIndex:uq_threshold_setting_overall,priority:2;column:threshold_setting_type" json:"threshold_setting_type"`
	ThresholdSettingEntityID     *int64      `gorm:"uniqueIndex:uq_threshold_setting_key,priority:3;column:threshold_setting_entity_id" json:"threshold_setting_entity_id"`
	ThresholdSettingPassingGrade int         `gorm:"not null;default:83;column:threshold_setting_passing_grade" json:"threshold_setting_passing_grade"`

	ThresholdSettingUpdatedBy string    `gorm:"type:varchar(160);not null;default:'';column:threshold_setting_updated_by" json:"threshold_setting_updated_by"`
	ThresholdSettingCreatedAt time.Time `gorm:"autoCreateTime;column:threshold_setting_created_at" json:"threshold_setting_created_at"`
	ThresholdSettingUpdatedAt time.Time `gorm:"autoUpdateTime;column:threshold_setting_updated_at" json:"threshold_setting_updated_at"`
}

func (ThresholdSettingModel) TableName() string { return "audit_threshold_settings" }

// All lists every table of the audit feature, in migration order.
func All() []any {
	return []any{
		&SchemaModel{},
		&SchemaSectionModel{},
		&TemplateItemModel{},
		&AuditModel{},
		&ItemResponseModel{},
		&SectionScoreModel{},
		&SectionExclusionModel{},
		&ExclusionHistoryModel{},
		&ThresholdSettingModel{},
	}
}
