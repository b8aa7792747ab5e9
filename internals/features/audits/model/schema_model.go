// file: internals/features/audits/model/schema_model.go
package model

import "time"

/* =========================================================
   Catalog: checklist templates an audit is based on.
   Used for seeding and labels only, never for recomputation.
========================================================= */

type SchemaModel struct {
	SchemaID        int64     `gorm:"primaryKey;autoIncrement;column:schema_id" json:"schema_id"`
	SchemaName      string    `gorm:"type:varchar(160);not null;column:schema_name" json:"schema_name"`
	SchemaCreatedAt time.Time `gorm:"autoCreateTime;column:schema_created_at" json:"schema_created_at"`
}

func (SchemaModel) TableName() string { return "audit_schemas" }

type SchemaSectionModel struct {
	SchemaSectionID       int64  `gorm:"primaryKey;autoIncrement;column:schema_section_id" json:"schema_section_id"`
	SchemaSectionSchemaID int64  `gorm:"not null;index;column:schema_section_schema_id" json:"schema_section_schema_id"`
	SchemaSectionName     string `gorm:"type:varchar(160);not null;column:schema_section_name" json:"schema_section_name"`
	SchemaSectionOrder    int    `gorm:"not null;default:0;column:schema_section_order" json:"schema_section_order"`
}

func (SchemaSectionModel) TableName() string { return "audit_schema_sections" }

type TemplateItemModel struct {
	TemplateItemID          int64  `gorm:"primaryKey;autoIncrement;column:template_item_id" json:"template_item_id"`
	TemplateItemSchemaID    int64  `gorm:"not null;index;column:template_item_schema_id" json:"template_item_schema_id"`
	TemplateItemSectionID   int64  `gorm:"not null;index;column:template_item_section_id" json:"template_item_section_id"`
	TemplateItemReference   string `gorm:"type:varchar(64);not null;default:'';column:template_item_reference" json:"template_item_reference"`
	TemplateItemCoefficient int    `gorm:"not null;default:1;column:template_item_coefficient" json:"template_item_coefficient"`
	TemplateItemOrder       int    `gorm:"not null;default:0;column:template_item_order" json:"template_item_order"`
}

func (TemplateItemModel) TableName() string { return "audit_template_items" }
