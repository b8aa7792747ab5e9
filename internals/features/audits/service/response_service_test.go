package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foodaudit_backend/internals/databases/dbtest"
	"foodaudit_backend/internals/features/audits/model"
)

func TestStartAudit_SeedsUnansweredResponses(t *testing.T) {
	db := dbtest.New(t)
	schemaID, _ := seedSchema(t, db, scenarioB()...)
	svc := NewResponseService(db, zap.NewNop(), 5*time.Second)

	audit, err := svc.StartAudit(context.Background(), schemaID, "", "inspector@x")
	require.NoError(t, err)

	assert.Equal(t, model.AuditStatusInProgress, audit.AuditStatus)
	assert.Equal(t, "Kitchen hygiene", audit.AuditName)
	assert.Equal(t, "inspector@x", audit.AuditStartedBy)

	rows, err := svc.ListResponses(context.Background(), audit.AuditID)
	require.NoError(t, err)
	require.Len(t, rows, 10)
	for _, r := range rows {
		assert.Equal(t, model.ChoiceUnanswered, r.ItemResponseSelectedChoice)
		assert.Equal(t, 2, r.ItemResponseCoefficient)
	}
}

func TestStartAudit_Rejections(t *testing.T) {
	db := dbtest.New(t)
	emptySchemaID, _ := seedSchema(t, db, section{name: "Empty"})
	svc := NewResponseService(db, zap.NewNop(), 5*time.Second)
	ctx := context.Background()

	_, err := svc.StartAudit(ctx, 404, "x", "inspector@x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.StartAudit(ctx, emptySchemaID, "x", "inspector@x")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.StartAudit(ctx, emptySchemaID, "x", "")
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.Zero(t, countRows(t, db, &model.AuditModel{}, "1 = 1"))
}

func TestRecordResponse_FeedsLiveEstimate(t *testing.T) {
	db := dbtest.New(t)
	schemaID, _ := seedSchema(t, db, section{name: "Storage", items: []item{yes(2), yes(2)}})
	responses := NewResponseService(db, zap.NewNop(), 5*time.Second)
	lifecycle := newLifecycleService(db)
	ctx := context.Background()

	audit, err := responses.StartAudit(ctx, schemaID, "Night shift", "inspector@x")
	require.NoError(t, err)
	rows, err := responses.ListResponses(ctx, audit.AuditID)
	require.NoError(t, err)

	row, err := responses.RecordResponse(ctx, audit.AuditID, rows[0].ItemResponseItemID, model.ChoiceYes, "inspector@x")
	require.NoError(t, err)
	assert.Equal(t, model.ChoiceYes, row.ItemResponseSelectedChoice)
	_, err = responses.RecordResponse(ctx, audit.AuditID, rows[1].ItemResponseItemID, model.ChoicePartially, "inspector@x")
	require.NoError(t, err)

	estimate, err := lifecycle.LiveEstimate(ctx, audit.AuditID)
	require.NoError(t, err)
	assert.Equal(t, ptr(75), estimate.CalculatedScore)
}

func TestRecordResponse_CompletedAuditIsReadOnly(t *testing.T) {
	db := dbtest.New(t)
	auditID, _ := seed(t, db, scenarioB()...)
	responses := NewResponseService(db, zap.NewNop(), 5*time.Second)
	ctx := context.Background()

	_, err := newLifecycleService(db).CompleteAudit(ctx, auditID)
	require.NoError(t, err)

	rows, err := responses.ListResponses(ctx, auditID)
	require.NoError(t, err)
	_, err = responses.RecordResponse(ctx, auditID, rows[0].ItemResponseItemID, model.ChoiceNo, "inspector@x")
	require.ErrorIs(t, err, ErrInvalidState)

	var stored model.ItemResponseModel
	require.NoError(t, db.Take(&stored, "item_response_id = ?", rows[0].ItemResponseID).Error)
	assert.Equal(t, rows[0].ItemResponseSelectedChoice, stored.ItemResponseSelectedChoice)
}

func TestRecordResponse_Rejections(t *testing.T) {
	db := dbtest.New(t)
	auditID, _ := seed(t, db, scenarioB()...)
	svc := NewResponseService(db, zap.NewNop(), 5*time.Second)
	ctx := context.Background()

	_, err := svc.RecordResponse(ctx, auditID, 123456, model.ChoiceYes, "inspector@x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.RecordResponse(ctx, 999, 1, model.ChoiceYes, "inspector@x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.RecordResponse(ctx, auditID, 1, model.Choice("maybe"), "inspector@x")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.ListResponses(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
