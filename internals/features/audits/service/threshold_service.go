// file: internals/features/audits/service/threshold_service.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodaudit_backend/internals/features/audits/cache"
	"foodaudit_backend/internals/features/audits/dto"
	"foodaudit_backend/internals/features/audits/model"
)

type ThresholdService struct {
	DB      *gorm.DB
	Cache   cache.ThresholdCache
	Log     *zap.Logger
	Timeout time.Duration
}

func NewThresholdService(db *gorm.DB, c cache.ThresholdCache, log *zap.Logger, timeout time.Duration) *ThresholdService {
	if c == nil {
		c = cache.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ThresholdService{
		DB:      db,
		Cache:   c,
		Log:     log.With(zap.String("component", "threshold_resolver")),
		Timeout: timeout,
	}
}

func thresholdQuery(db *gorm.DB, schemaID int64, sectionID *int64) *gorm.DB {
	q := db.Where("threshold_setting_schema_id = ?", schemaID)
	if sectionID == nil {
		return q.Where("threshold_setting_type = ? AND threshold_setting_entity_id IS NULL", model.SettingTypeOverall)
	}
	return q.Where("threshold_setting_type = ? AND threshold_setting_entity_id = ?", model.SettingTypeSection, *sectionID)
}

// GetPassingGrade resolves the section threshold when sectionID is set,
// otherwise the overall one. It never fails: anything short of a stored
// row yields model.DefaultPassingGrade.
func (s *ThresholdService) GetPassingGrade(ctx context.Context, schemaID int64, sectionID *int64) int {
	if grade, ok, err := s.Cache.Get(ctx, schemaID, sectionID); err != nil {
		s.Log.Warn("threshold cache read failed", zap.Int64("schema_id", schemaID), zap.Error(err))
	} else if ok {
		return grade
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var row model.ThresholdSettingModel
	err := thresholdQuery(s.DB.WithContext(ctx), schemaID, sectionID).Take(&row).Error
	grade := row.ThresholdSettingPassingGrade
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		thresholdFallbacksTotal.WithLabelValues("unconfigured").Inc()
		grade = model.DefaultPassingGrade
	case err != nil:
		thresholdFallbacksTotal.WithLabelValues("lookup_error").Inc()
		s.Log.Warn("threshold lookup failed, using default",
			zap.Int64("schema_id", schemaID),
			zap.Int("default", model.DefaultPassingGrade),
			zap.Error(err),
		)
		return model.DefaultPassingGrade
	}

	if err := s.Cache.Set(ctx, schemaID, sectionID, grade); err != nil {
		s.Log.Warn("threshold cache write failed", zap.Int64("schema_id", schemaID), zap.Error(err))
	}
	return grade
}

// SaveSchemaSettings upserts the overall grade, when given, and every listed
// section grade in one transaction.
func (s *ThresholdService) SaveSchemaSettings(ctx context.Context, schemaID int64, req dto.SchemaSettingsRequest, actor string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return invalidStatef("actor is required")
	}
	if req.OverallPassingGrade == nil && len(req.Sections) == 0 {
		return invalidStatef("no passing grade to save")
	}
	if req.OverallPassingGrade != nil {
		if err := checkGrade(*req.OverallPassingGrade); err != nil {
			return err
		}
	}
	seen := make(map[int64]bool, len(req.Sections))
	for _, sec := range req.Sections {
		if err := checkGrade(sec.PassingGrade); err != nil {
			return err
		}
		if seen[sec.SectionID] {
			return invalidStatef("section %d listed twice", sec.SectionID)
		}
		seen[sec.SectionID] = true
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the schema row lock serializes first inserts of the same setting
		var schema model.SchemaModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("schema_id = ?", schemaID).
			Take(&schema).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("schema %d", schemaID)
		}
		if err != nil {
			return err
		}

		if len(seen) > 0 {
			ids := make([]int64, 0, len(seen))
			for id := range seen {
				ids = append(ids, id)
			}
			var known int64
			if err := tx.Model(&model.SchemaSectionModel{}).
				Where("schema_section_schema_id = ? AND schema_section_id IN ?", schemaID, ids).
				Count(&known).Error; err != nil {
				return err
			}
			if int(known) != len(ids) {
				return notFoundf("one or more sections do not belong to schema %d", schemaID)
			}
		}

		if req.OverallPassingGrade != nil {
			if err := upsertThreshold(tx, schemaID, nil, *req.OverallPassingGrade, actor); err != nil {
				return err
			}
		}
		for _, sec := range req.Sections {
			sectionID := sec.SectionID
			if err := upsertThreshold(tx, schemaID, &sectionID, sec.PassingGrade, actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		transactionFailuresTotal.WithLabelValues("save_schema_settings").Inc()
		s.Log.Error("save schema settings rolled back", zap.Int64("schema_id", schemaID), zap.Error(err))
		return persistenceErr("save schema settings", err)
	}

	if err := s.Cache.InvalidateSchema(ctx, schemaID); err != nil {
		s.Log.Warn("threshold cache invalidation failed", zap.Int64("schema_id", schemaID), zap.Error(err))
	}
	fields := []zap.Field{
		zap.Int64("schema_id", schemaID),
		zap.Int("sections", len(req.Sections)),
		zap.String("actor", actor),
	}
	if req.OverallPassingGrade != nil {
		fields = append(fields, zap.Int("overall", *req.OverallPassingGrade))
	}
	s.Log.Info("schema settings saved", fields...)
	return nil
}

func checkGrade(grade int) error {
	if grade < 0 || grade > 100 {
		return invalidStatef("passing grade %d outside 0..100", grade)
	}
	return nil
}

func upsertThreshold(tx *gorm.DB, schemaID int64, sectionID *int64, grade int, actor string) error {
	var existing model.ThresholdSettingModel
	err := thresholdQuery(tx, schemaID, sectionID).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := model.ThresholdSettingModel{
			ThresholdSettingSchemaID:     schemaID,
			ThresholdSettingType:         model.SettingTypeOverall,
			ThresholdSettingEntityID:     sectionID,
			ThresholdSettingPassingGrade: grade,
			ThresholdSettingUpdatedBy:    actor,
		}
		if sectionID != nil {
			row.ThresholdSettingType = model.SettingTypeSection
		}
		return tx.Create(&row).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&existing).Updates(map[string]any{
		"threshold_setting_passing_grade": grade,
		"threshold_setting_updated_by":    actor,
	}).Error
}
