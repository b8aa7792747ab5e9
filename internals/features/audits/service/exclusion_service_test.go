package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodaudit_backend/internals/databases/dbtest"
	"foodaudit_backend/internals/features/audits/dto"
	"foodaudit_backend/internals/features/audits/model"
)

func newExclusionService(db *gorm.DB) *ExclusionService {
	thresholds := NewThresholdService(db, nil, zap.NewNop(), time.Second)
	svc := NewExclusionService(db, thresholds, zap.NewNop(), 5*time.Second)
	svc.now = newClock().Now
	return svc
}

func historyActions(t *testing.T, db *gorm.DB, auditID int64) []model.ExclusionAction {
	t.Helper()
	var rows []model.ExclusionHistoryModel
	require.NoError(t, db.Where("exclusion_history_audit_id = ?", auditID).
		Order("exclusion_history_id").Find(&rows).Error)
	out := make([]model.ExclusionAction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ExclusionHistoryAction)
	}
	return out
}

func TestGetAuditSectionsWithScores_LiveForInProgress(t *testing.T) {
	db := dbtest.New(t)
	auditID, ids := seed(t, db, scenarioB()...)
	svc := newExclusionService(db)

	out, err := svc.GetAuditSectionsWithScores(context.Background(), auditID)
	require.NoError(t, err)

	assert.Equal(t, dto.ScoreSourceLive, out.ScoreSource)
	require.Len(t, out.Sections, 2)
	assert.Equal(t, ids[0], out.Sections[0].SectionID)
	assert.Equal(t, "Storage", out.Sections[0].SectionName)
	assert.Equal(t, 80.0, out.Sections[0].Percentage)
	assert.Equal(t, 40.0, out.Sections[1].Percentage)
	assert.Equal(t, ptr(60), out.OriginalTotal)
	assert.Equal(t, ptr(60), out.AdjustedTotal)
	assert.Zero(t, out.ExcludedCount)
	assert.Equal(t, model.DefaultPassingGrade, out.PassingGrade)
	assert.False(t, out.Passed)
	assert.Empty(t, out.History)
}

func TestGetAuditSectionsWithScores_UnknownAudit(t *testing.T) {
	db := dbtest.New(t)
	_, err := newExclusionService(db).GetAuditSectionsWithScores(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetExclusions_AdjustsTotal(t *testing.T) {
	db := dbtest.New(t)
	auditID, ids := seed(t, db, scenarioB()...)
	svc := newExclusionService(db)

	out, err := svc.SetExclusions(context.Background(), auditID, []int64{ids[1]}, "admin@x")
	require.NoError(t, err)

	assert.Equal(t, ptr(60), out.OriginalTotal)
	assert.Equal(t, ptr(80), out.AdjustedTotal)
	assert.Equal(t, 1, out.ExcludedCount)
	assert.False(t, out.Sections[0].IsExcluded)
	assert.True(t, out.Sections[1].IsExcluded)

	require.Len(t, out.History, 1)
	h := out.History[0]
	assert.Equal(t, ids[1], h.SectionID)
	assert.Equal(t, "Handling", h.SectionName)
	assert.Equal(t, model.ExclusionActionExcluded, h.Action)
	assert.Equal(t, ptr(60), h.OriginalScore)
	assert.Equal(t, ptr(80), h.AdjustedScore)
	assert.Equal(t, "admin@x", h.ChangedBy)
}

func TestSetExclusions_HistoryOnlyOnTransitions(t *testing.T) {
	db := dbtest.New(t)
	auditID, ids := seed(t, db, scenarioB()...)
	svc := newExclusionService(db)
	ctx := context.Background()

	_, err := svc.SetExclusions(ctx, auditID, []int64{ids[0]}, "admin@x")
	require.NoError(t, err)
	assert.Equal(t, []model.ExclusionAction{model.ExclusionActionExcluded}, historyActions(t, db, auditID))

	// same set again: nothing changes
	_, err = svc.SetExclusions(ctx, auditID, []int64{ids[0]}, "admin@x")
	require.NoError(t, err)
	assert.Len(t, historyActions(t, db, auditID), 1)

	out, err := svc.SetExclusions(ctx, auditID, []int64{}, "admin@x")
	require.NoError(t, err)
	assert.Equal(t, []model.ExclusionAction{
		model.ExclusionActionExcluded,
		model.ExclusionActionIncluded,
	}, historyActions(t, db, auditID))
	assert.Zero(t, countRows(t, db, &model.SectionExclusionModel{}, "section_exclusion_audit_id = ?", auditID))
	assert.Equal(t, out.OriginalTotal, out.AdjustedTotal)

	// newest first in the aggregate
	require.Len(t, out.History, 2)
	assert.Equal(t, model.ExclusionActionIncluded, out.History[0].Action)
	assert.Equal(t, model.ExclusionActionExcluded, out.History[1].Action)
}

func TestSetExclusions_AlternatingActionsPerSection(t *testing.T) {
	db := dbtest.New(t)
	auditID, ids := seed(t, db, scenarioB()...)
	svc := newExclusionService(db)
	ctx := context.Background()

	for _, set := range [][]int64{{ids[1]}, {}, {ids[1]}, {ids[1]}, {}, {}} {
		_, err := svc.SetExclusions(ctx, auditID, set, "admin@x")
		require.NoError(t, err)
	}

	assert.Equal(t, []model.ExclusionAction{
		model.ExclusionActionExcluded,
		model.ExclusionActionIncluded,
		model.ExclusionActionExcluded,
		model.ExclusionActionIncluded,
	}, historyActions(t, db, auditID))
}

func TestSetExclusions_SwapIsOneTransaction(t *testing.T) {
	db := dbtest.New(t)
	auditID, ids := seed(t, db, scenarioB()...)
	svc := newExclusionService(db)
	ctx := context.Background()

	_, err := svc.SetExclusions(ctx, auditID, []int64{ids[0]}, "admin@x")
	require.NoError(t, err)
	out, err := svc.SetExclusions(ctx, auditID, []int64{ids[1]}, "auditor@x")
	require.NoError(t, err)

	assert.False(t, out.Sections[0].IsExcluded)
	assert.True(t, out.Sections[1].IsExcluded)
	assert.Equal(t, ptr(80), out.AdjustedTotal)

	var current []model.SectionExclusionModel
	require.NoError(t, db.Where("section_exclusion_audit_id = ?", auditID).Find(&current).Error)
	require.Len(t, current, 1)
	assert.Equal(t, ids[1], current[0].SectionExclusionSectionID)
	assert.Equal(t, "auditor@x", current[0].SectionExclusionCreatedBy)
	assert.Len(t, historyActions(t, db, auditID), 3)
}

func TestSetExclusions_UnknownSectionWritesNothing(t *testing.T) {
	db := dbtest.New(t)
	auditID, ids := seed(t, db, scenarioB()...)
	svc := newExclusionService(db)

	_, err := svc.SetExclusions(context.Background(), auditID, []int64{ids[0], 9999}, "admin@x")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, countRows(t, db, &model.SectionExclusionModel{}, "section_exclusion_audit_id = ?", auditID))
	assert.Empty(t, historyActions(t, db, auditID))
}

func TestSetExclusions_RequiresActor(t *testing.T) {
	db := dbtest.New(t)
	auditID, ids := seed(t, db, scenarioB()...)

	_, err := newExclusionService(db).SetExclusions(context.Background(), auditID, []int64{ids[0]}, "  ")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSetExclusions_UnknownAudit(t *testing.T) {
	db := dbtest.New(t)
	_, err := newExclusionService(db).SetExclusions(context.Background(), 77, nil, "admin@x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetExclusions_CompletedAuditUsesSnapshot(t *testing.T) {
	db := dbtest.New(t)
	auditID, ids := seed(t, db, scenarioB()...)
	lifecycle := NewLifecycleService(db, zap.NewNop(), 5*time.Second)
	_, err := lifecycle.CompleteAudit(context.Background(), auditID)
	require.NoError(t, err)

	out, err := newExclusionService(db).SetExclusions(context.Background(), auditID, []int64{ids[1]}, "admin@x")
	require.NoError(t, err)

	assert.Equal(t, dto.ScoreSourceSnapshot, out.ScoreSource)
	assert.Equal(t, model.AuditStatusCompleted, out.Audit.AuditStatus)
	assert.Equal(t, ptr(60), out.Audit.AuditTotalScore)
	assert.Equal(t, ptr(80), out.AdjustedTotal)
	require.Len(t, out.Audit.AuditScoreSummary, 2)
	assert.Equal(t, 40.0, out.Audit.AuditScoreSummary[fmt.Sprint(ids[1])])
}

func TestSetExclusions_PassingUsesAdjustedTotal(t *testing.T) {
	db := dbtest.New(t)
	schemaID, ids := seedSchema(t, db, scenarioB()...)
	auditID := seedAudit(t, db, schemaID, scenarioB()...)
	svc := newExclusionService(db)
	ctx := context.Background()

	require.NoError(t, svc.Thresholds.SaveSchemaSettings(ctx, schemaID, dto.SchemaSettingsRequest{
		OverallPassingGrade: grade(75),
		Sections:            []dto.SectionPassingGrade{{SectionID: ids[0], PassingGrade: 80}},
	}, "admin@x"))

	out, err := svc.GetAuditSectionsWithScores(ctx, auditID)
	require.NoError(t, err)
	assert.Equal(t, 75, out.PassingGrade)
	assert.False(t, out.Passed)
	assert.Equal(t, 80, out.Sections[0].PassingGrade)
	assert.True(t, out.Sections[0].Passed)
	assert.Equal(t, model.DefaultPassingGrade, out.Sections[1].PassingGrade)
	assert.False(t, out.Sections[1].Passed)

	out, err = svc.SetExclusions(ctx, auditID, []int64{ids[1]}, "admin@x")
	require.NoError(t, err)
	assert.True(t, out.Passed)
}

func TestSetExclusions_FailedHistoryWriteRollsBack(t *testing.T) {
	db := dbtest.New(t)
	auditID, ids := seed(t, db, scenarioB()...)
	svc := newExclusionService(db)
	ctx := context.Background()

	_, err := svc.SetExclusions(ctx, auditID, []int64{ids[0]}, "admin@x")
	require.NoError(t, err)

	// the swap deletes one row and inserts another before history is written
	failWrites(t, db, model.ExclusionHistoryModel{}.TableName())
	_, err = svc.SetExclusions(ctx, auditID, []int64{ids[1]}, "admin@x")
	require.ErrorIs(t, err, ErrPersistence)

	var current []model.SectionExclusionModel
	require.NoError(t, db.Where("section_exclusion_audit_id = ?", auditID).Find(&current).Error)
	require.Len(t, current, 1)
	assert.Equal(t, ids[0], current[0].SectionExclusionSectionID)
	assert.Equal(t, []model.ExclusionAction{model.ExclusionActionExcluded}, historyActions(t, db, auditID))
}

func TestSetExclusions_ExpiredContext(t *testing.T) {
	db := dbtest.New(t)
	auditID, ids := seed(t, db, scenarioB()...)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := newExclusionService(db).SetExclusions(ctx, auditID, []int64{ids[0]}, "admin@x")
	require.ErrorIs(t, err, ErrPersistence)

	assert.Zero(t, countRows(t, db, &model.SectionExclusionModel{}, "section_exclusion_audit_id = ?", auditID))
	assert.Empty(t, historyActions(t, db, auditID))
}

func TestGetAuditSectionsWithScores_HistoryCapped(t *testing.T) {
	db := dbtest.New(t)
	auditID, ids := seed(t, db, scenarioB()...)
	svc := newExclusionService(db)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		set := []int64{}
		if i%2 == 0 {
			set = []int64{ids[1]}
		}
		_, err := svc.SetExclusions(ctx, auditID, set, "admin@x")
		require.NoError(t, err)
	}
	require.Len(t, historyActions(t, db, auditID), 25)

	out, err := svc.GetAuditSectionsWithScores(ctx, auditID)
	require.NoError(t, err)
	require.Len(t, out.History, historyLimit)

	// the 25th call excluded again
	assert.Equal(t, model.ExclusionActionExcluded, out.History[0].Action)
	assert.Equal(t, model.ExclusionActionIncluded, out.History[1].Action)
	for i := 1; i < len(out.History); i++ {
		assert.True(t, out.History[i-1].ChangedAt.After(out.History[i].ChangedAt), "entry %d out of order", i)
	}

	var newest model.ExclusionHistoryModel
	require.NoError(t, db.Where("exclusion_history_audit_id = ?", auditID).
		Order("exclusion_history_id DESC").Take(&newest).Error)
	assert.True(t, newest.ExclusionHistoryChangedAt.Equal(out.History[0].ChangedAt))
}

func TestSetExclusions_VanishedSectionKeepsName(t *testing.T) {
	db := dbtest.New(t)
	auditID, ids := seed(t, db,
		section{name: "Storage", items: []item{yes(2)}},
		section{name: "Handling", items: []item{no(2)}},
		section{name: "Waste", items: []item{yes(1)}},
	)
	svc := newExclusionService(db)
	ctx := context.Background()

	_, err := svc.SetExclusions(ctx, auditID, []int64{ids[1], ids[2]}, "admin@x")
	require.NoError(t, err)

	// both drop out of the live scores; Waste also leaves the catalog
	require.NoError(t, db.Where("item_response_section_id IN ?", []int64{ids[1], ids[2]}).
		Delete(&model.ItemResponseModel{}).Error)
	require.NoError(t, db.Where("template_item_section_id = ?", ids[2]).Delete(&model.TemplateItemModel{}).Error)
	require.NoError(t, db.Where("schema_section_id = ?", ids[2]).Delete(&model.SchemaSectionModel{}).Error)

	_, err = svc.SetExclusions(ctx, auditID, []int64{}, "admin@x")
	require.NoError(t, err)

	var rows []model.ExclusionHistoryModel
	require.NoError(t, db.Where("exclusion_history_audit_id = ? AND exclusion_history_action = ?",
		auditID, model.ExclusionActionIncluded).Order("exclusion_history_section_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "Handling", rows[0].ExclusionHistorySectionName)
	assert.Equal(t, fmt.Sprintf("Section %d", ids[2]), rows[1].ExclusionHistorySectionName)
}
