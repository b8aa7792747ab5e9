package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"foodaudit_backend/internals/features/audits/model"
)

type item struct {
	coeff  int
	choice model.Choice
}

func yes(coeff int) item       { return item{coeff, model.ChoiceYes} }
func no(coeff int) item        { return item{coeff, model.ChoiceNo} }
func partially(coeff int) item { return item{coeff, model.ChoicePartially} }
func na(coeff int) item        { return item{coeff, model.ChoiceNA} }

type section struct {
	name  string
	items []item
}

// seedSchema writes a schema with its sections and template items and
// returns the schema id and section ids in declaration order.
func seedSchema(t *testing.T, db *gorm.DB, sections ...section) (int64, []int64) {
	t.Helper()

	schema := model.SchemaModel{SchemaName: "Kitchen hygiene"}
	require.NoError(t, db.Create(&schema).Error)

	ids := make([]int64, 0, len(sections))
	for i, sec := range sections {
		row := model.SchemaSectionModel{
			SchemaSectionSchemaID: schema.SchemaID,
			SchemaSectionName:     sec.name,
			SchemaSectionOrder:    i + 1,
		}
		require.NoError(t, db.Create(&row).Error)
		ids = append(ids, row.SchemaSectionID)

		for j, it := range sec.items {
			require.NoError(t, db.Create(&model.TemplateItemModel{
				TemplateItemSchemaID:    schema.SchemaID,
				TemplateItemSectionID:   row.SchemaSectionID,
				TemplateItemReference:   sec.name,
				TemplateItemCoefficient: it.coeff,
				TemplateItemOrder:       j + 1,
			}).Error)
		}
	}
	return schema.SchemaID, ids
}

// seedAudit starts an audit on schemaID and answers each template item with
// the choice declared for it.
func seedAudit(t *testing.T, db *gorm.DB, schemaID int64, sections ...section) int64 {
	t.Helper()

	audit := model.AuditModel{
		AuditSchemaID:  schemaID,
		AuditName:      "Morning inspection",
		AuditStatus:    model.AuditStatusInProgress,
		AuditStartedBy: "inspector@x",
	}
	require.NoError(t, db.Create(&audit).Error)

	var catalog []model.SchemaSectionModel
	require.NoError(t, db.Where("schema_section_schema_id = ?", schemaID).
		Order("schema_section_order").Find(&catalog).Error)
	require.Len(t, catalog, len(sections))

	for i, sec := range sections {
		var items []model.TemplateItemModel
		require.NoError(t, db.Where("template_item_section_id = ?", catalog[i].SchemaSectionID).
			Order("template_item_order").Find(&items).Error)
		require.Len(t, items, len(sec.items))

		for j, it := range sec.items {
			require.NoError(t, db.Create(&model.ItemResponseModel{
				ItemResponseAuditID:        audit.AuditID,
				ItemResponseSectionID:      catalog[i].SchemaSectionID,
				ItemResponseItemID:         items[j].TemplateItemID,
				ItemResponseCoefficient:    it.coeff,
				ItemResponseSelectedChoice: it.choice,
			}).Error)
		}
	}
	return audit.AuditID
}

// seed is seedSchema followed by seedAudit.
func seed(t *testing.T, db *gorm.DB, sections ...section) (auditID int64, sectionIDs []int64) {
	t.Helper()
	schemaID, ids := seedSchema(t, db, sections...)
	return seedAudit(t, db, schemaID, sections...), ids
}

// scenarioB: 8/10 and 4/10.
func scenarioB() []section {
	return []section{
		{name: "Storage", items: []item{yes(2), yes(2), yes(2), yes(2), no(2)}},
		{name: "Handling", items: []item{yes(2), yes(2), no(2), no(2), no(2)}},
	}
}

// clock hands out strictly increasing instants.
type clock struct{ t time.Time }

func newClock() *clock {
	return &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func countRows(t *testing.T, db *gorm.DB, m any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Where(where, args...).Count(&n).Error)
	return n
}

func ptr(v float64) *float64 { return &v }

func grade(v int) *int { return &v }

// failWrites makes every create or update on table fail, so a transaction
// can be broken after some of its rows are already written.
func failWrites(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	fail := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errors.New("write refused"))
		}
	}
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_create_"+table, fail))
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_update_"+table, fail))
}
