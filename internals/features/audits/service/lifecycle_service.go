// file: internals/features/audits/service/lifecycle_service.go
package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"foodaudit_backend/internals/features/audits/dto"
	"foodaudit_backend/internals/features/audits/model"
)

// LifecycleService drives InProgress -> Completed and is the only writer
// of audit_section_scores.
type LifecycleService struct {
	DB      *gorm.DB
	Log     *zap.Logger
	Timeout time.Duration

	now func() time.Time
}

func NewLifecycleService(db *gorm.DB, log *zap.Logger, timeout time.Duration) *LifecycleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LifecycleService{
		DB:      db,
		Log:     log.With(zap.String("component", "audit_lifecycle")),
		Timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CompleteAudit scores every section, replaces the snapshot, and persists the
// total computed from the rows just written. Running it again on a completed
// audit refreshes the snapshot.
func (s *LifecycleService) CompleteAudit(ctx context.Context, auditID int64) (*dto.CompleteAuditResponse, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		written []model.SectionScoreModel
		total   *float64
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		audit, err := loadAudit(tx, auditID, true)
		if err != nil {
			return err
		}
		now := s.now()
		sections, err := liveSectionScores(tx, audit, now)
		if err != nil {
			return err
		}
		if len(sections) == 0 {
			return invalidStatef("audit %d has no scored sections", auditID)
		}

		if err := replaceSectionScores(tx, auditID, sections); err != nil {
			return err
		}
		written, err = loadSectionScores(tx, auditID)
		if err != nil {
			return err
		}
		total = TotalScore(written, nil)

		summary := datatypes.JSONMap{}
		for _, sec := range written {
			summary[strconv.FormatInt(sec.SectionScoreSectionID, 10)] = sec.SectionScorePercentage
		}
		return tx.Model(&model.AuditModel{}).
			Where("audit_id = ?", auditID).
			Updates(map[string]any{
				"audit_status":        model.AuditStatusCompleted,
				"audit_total_score":   total,
				"audit_score_summary": summary,
				"audit_completed_at":  now,
			}).Error
	})
	if err != nil {
		transactionFailuresTotal.WithLabelValues("complete_audit").Inc()
		s.Log.Error("complete audit rolled back", zap.Int64("audit_id", auditID), zap.Error(err))
		return nil, persistenceErr("complete audit", err)
	}

	auditsCompletedTotal.Inc()
	fields := []zap.Field{zap.Int64("audit_id", auditID), zap.Int("sections", len(written))}
	if total != nil {
		fields = append(fields, zap.Float64("total_score", *total))
	}
	s.Log.Info("audit completed", fields...)

	out := &dto.CompleteAuditResponse{
		TotalScore:    total,
		SectionScores: make([]dto.SectionPercentage, 0, len(written)),
		Status:        model.AuditStatusCompleted,
	}
	for _, sec := range written {
		out.SectionScores = append(out.SectionScores, dto.SectionPercentage{
			SectionID:   sec.SectionScoreSectionID,
			SectionName: sec.SectionScoreSectionName,
			Percentage:  sec.SectionScorePercentage,
		})
	}
	return out, nil
}

// LiveEstimate scores current responses without writing anything. It goes
// through the same ComputeSectionScores/TotalScore path as CompleteAudit.
func (s *LifecycleService) LiveEstimate(ctx context.Context, auditID int64) (*dto.LiveEstimateResponse, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	db := s.DB.WithContext(ctx)
	audit, err := loadAudit(db, auditID, false)
	if err != nil {
		return nil, err
	}
	sections, err := liveSectionScores(db, audit, s.now())
	if err != nil {
		return nil, err
	}

	out := &dto.LiveEstimateResponse{
		AuditID:         audit.AuditID,
		Status:          audit.AuditStatus,
		CalculatedScore: TotalScore(sections, nil),
		Sections:        make([]dto.SectionWithScore, 0, len(sections)),
	}
	for _, sec := range sections {
		out.Sections = append(out.Sections, dto.FromSectionScore(sec, false))
	}
	return out, nil
}

// replaceSectionScores makes the stored rows equal to fresh: stale sections
// are deleted first, kept ones overwritten, new ones inserted.
func replaceSectionScores(tx *gorm.DB, auditID int64, fresh []model.SectionScoreModel) error {
	existing, err := loadSectionScores(tx, auditID)
	if err != nil {
		return err
	}
	wanted := make(map[int64]bool, len(fresh))
	for _, f := range fresh {
		wanted[f.SectionScoreSectionID] = true
	}

	keep := make(map[int64]int64, len(existing))
	var stale []int64
	for _, row := range existing {
		if wanted[row.SectionScoreSectionID] {
			keep[row.SectionScoreSectionID] = row.SectionScoreID
			continue
		}
		stale = append(stale, row.SectionScoreID)
	}
	if len(stale) > 0 {
		if err := tx.Where("section_score_id IN ?", stale).Delete(&model.SectionScoreModel{}).Error; err != nil {
			return err
		}
	}

	var inserts []model.SectionScoreModel
	for _, f := range fresh {
		id, ok := keep[f.SectionScoreSectionID]
		if !ok {
			inserts = append(inserts, f)
			continue
		}
		if err := tx.Model(&model.SectionScoreModel{}).
			Where("section_score_id = ?", id).
			Updates(map[string]any{
				"section_score_section_name":       f.SectionScoreSectionName,
				"section_score_order":              f.SectionScoreOrder,
				"section_score_earned":             f.SectionScoreEarned,
				"section_score_max":                f.SectionScoreMax,
				"section_score_percentage":         f.SectionScorePercentage,
				"section_score_total_questions":    f.SectionScoreTotalQuestions,
				"section_score_answered_questions": f.SectionScoreAnsweredQuestions,
				"section_score_na_questions":       f.SectionScoreNAQuestions,
				"section_score_created_at":         f.SectionScoreCreatedAt,
			}).Error; err != nil {
			return err
		}
	}
	if len(inserts) > 0 {
		return tx.Create(&inserts).Error
	}
	return nil
}
