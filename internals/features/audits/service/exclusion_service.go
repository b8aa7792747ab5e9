// file: internals/features/audits/service/exclusion_service.go
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodaudit_backend/internals/features/audits/dto"
	"foodaudit_backend/internals/features/audits/model"
)

/* =========================================================
   EXCLUSION LEDGER
   Current state lives in audit_section_exclusions, every real
   transition is appended to audit_section_exclusion_history.
   This service is the only writer of both tables.
========================================================= */

type ExclusionService struct {
	DB         *gorm.DB
	Thresholds *ThresholdService
	Log        *zap.Logger
	Timeout    time.Duration

	now func() time.Time
}

func NewExclusionService(db *gorm.DB, thresholds *ThresholdService, log *zap.Logger, timeout time.Duration) *ExclusionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExclusionService{
		DB:         db,
		Thresholds: thresholds,
		Log:        log.With(zap.String("component", "exclusion_ledger")),
		Timeout:    timeout,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetAuditSectionsWithScores returns sections with their scores and exclusion
// flags, both totals and the most recent history.
func (s *ExclusionService) GetAuditSectionsWithScores(ctx context.Context, auditID int64) (*dto.AuditScoresResponse, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	db := s.DB.WithContext(ctx)
	audit, err := loadAudit(db, auditID, false)
	if err != nil {
		return nil, err
	}
	sections, snapshot, err := scoredSections(db, audit, s.now())
	if err != nil {
		return nil, err
	}
	exclusions, err := loadExclusions(db, auditID)
	if err != nil {
		return nil, err
	}
	history, err := loadRecentHistory(db, auditID, historyLimit)
	if err != nil {
		return nil, err
	}
	return s.buildAggregate(ctx, audit, sections, snapshot, excludedSet(exclusions), history), nil
}

// SetExclusions makes exactly sectionIDs the excluded set of the audit.
// Only sections whose state flips get a history entry; repeating a call is
// a no-op for the history.
func (s *ExclusionService) SetExclusions(ctx context.Context, auditID int64, sectionIDs []int64, actor string) (*dto.AuditScoresResponse, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, invalidStatef("actor is required")
	}
	desired := make(map[int64]bool, len(sectionIDs))
	for _, id := range sectionIDs {
		desired[id] = true
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var excludedN, includedN int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// row lock serializes concurrent saves on the same audit
		audit, err := loadAudit(tx, auditID, true)
		if err != nil {
			return err
		}
		now := s.now()
		sections, _, err := scoredSections(tx, audit, now)
		if err != nil {
			return err
		}
		byID := make(map[int64]model.SectionScoreModel, len(sections))
		for _, sec := range sections {
			byID[sec.SectionScoreSectionID] = sec
		}
		for id := range desired {
			if _, ok := byID[id]; !ok {
				return notFoundf("section %d is not part of audit %d", id, auditID)
			}
		}

		current, err := loadExclusions(tx, auditID)
		if err != nil {
			return err
		}
		currentSet := excludedSet(current)

		originalTotal := TotalScore(sections, nil)
		adjustedTotal := TotalScore(sections, notIn(desired))

		// stale rows first, then flips of kept rows, then new rows
		var staleIDs []int64
		var reactivateIDs []int64
		have := make(map[int64]bool, len(current))
		for _, row := range current {
			have[row.SectionExclusionSectionID] = true
			switch {
			case !desired[row.SectionExclusionSectionID]:
				staleIDs = append(staleIDs, row.SectionExclusionID)
			case !row.SectionExclusionIsExcluded:
				reactivateIDs = append(reactivateIDs, row.SectionExclusionID)
			}
		}
		if len(staleIDs) > 0 {
			if err := tx.Where("section_exclusion_id IN ?", staleIDs).
				Delete(&model.SectionExclusionModel{}).Error; err != nil {
				return err
			}
		}
		if len(reactivateIDs) > 0 {
			if err := tx.Model(&model.SectionExclusionModel{}).
				Where("section_exclusion_id IN ?", reactivateIDs).
				Updates(map[string]any{
					"section_exclusion_is_excluded": true,
					"section_exclusion_created_by":  actor,
					"section_exclusion_created_at":  now,
				}).Error; err != nil {
				return err
			}
		}

		inserts := make([]model.SectionExclusionModel, 0)
		for id := range desired {
			if have[id] {
				continue
			}
			inserts = append(inserts, model.SectionExclusionModel{
				SectionExclusionAuditID:    auditID,
				SectionExclusionSectionID:  id,
				SectionExclusionIsExcluded: true,
				SectionExclusionCreatedBy:  actor,
				SectionExclusionCreatedAt:  now,
			})
		}
		sort.Slice(inserts, func(i, j int) bool {
			return inserts[i].SectionExclusionSectionID < inserts[j].SectionExclusionSectionID
		})
		if len(inserts) > 0 {
			if err := tx.Create(&inserts).Error; err != nil {
				return err
			}
		}

		entries := transitionEntries(auditID, sections, currentSet, desired, originalTotal, adjustedTotal, actor, now)
		// sections that vanished from the snapshot can still be re-included
		var vanished []int64
		for id := range currentSet {
			if _, ok := byID[id]; ok || desired[id] {
				continue
			}
			vanished = append(vanished, id)
		}
		sort.Slice(vanished, func(i, j int) bool { return vanished[i] < vanished[j] })
		var labels map[int64]sectionLabel
		if len(vanished) > 0 {
			catalog, err := loadCatalog(tx, audit.AuditSchemaID)
			if err != nil {
				return err
			}
			labels = labelsFromCatalog(catalog)
		}
		for _, id := range vanished {
			name := labels[id].name
			if name == "" {
				name = fmt.Sprintf("Section %d", id)
			}
			entries = append(entries, model.ExclusionHistoryModel{
				ExclusionHistoryAuditID:       auditID,
				ExclusionHistorySectionID:     id,
				ExclusionHistorySectionName:   name,
				ExclusionHistoryAction:        model.ExclusionActionIncluded,
				ExclusionHistoryOriginalScore: originalTotal,
				ExclusionHistoryAdjustedScore: adjustedTotal,
				ExclusionHistoryChangedBy:     actor,
				ExclusionHistoryChangedAt:     now,
			})
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return err
			}
		}
		for _, e := range entries {
			if e.ExclusionHistoryAction == model.ExclusionActionExcluded {
				excludedN++
			} else {
				includedN++
			}
		}
		return nil
	})
	if err != nil {
		transactionFailuresTotal.WithLabelValues("save_exclusions").Inc()
		s.Log.Error("save exclusions rolled back", zap.Int64("audit_id", auditID), zap.Error(err))
		return nil, persistenceErr("save exclusions", err)
	}

	exclusionTransitionsTotal.WithLabelValues(string(model.ExclusionActionExcluded)).Add(float64(excludedN))
	exclusionTransitionsTotal.WithLabelValues(string(model.ExclusionActionIncluded)).Add(float64(includedN))
	s.Log.Info("exclusions saved",
		zap.Int64("audit_id", auditID),
		zap.Int("desired", len(desired)),
		zap.Int("excluded", excludedN),
		zap.Int("included", includedN),
		zap.String("actor", actor),
	)

	return s.GetAuditSectionsWithScores(ctx, auditID)
}

// transitionEntries yields Excluded for desired\current and Included for
// current\desired, in section order.
func transitionEntries(
	auditID int64,
	sections []model.SectionScoreModel,
	current, desired map[int64]bool,
	originalTotal, adjustedTotal *float64,
	actor string,
	now time.Time,
) []model.ExclusionHistoryModel {
	var out []model.ExclusionHistoryModel
	for _, sec := range sections {
		id := sec.SectionScoreSectionID
		var action model.ExclusionAction
		switch {
		case desired[id] && !current[id]:
			action = model.ExclusionActionExcluded
		case current[id] && !desired[id]:
			action = model.ExclusionActionIncluded
		default:
			continue
		}
		out = append(out, model.ExclusionHistoryModel{
			ExclusionHistoryAuditID:       auditID,
			ExclusionHistorySectionID:     id,
			ExclusionHistorySectionName:   sec.SectionScoreSectionName,
			ExclusionHistoryAction:        action,
			ExclusionHistoryOriginalScore: originalTotal,
			ExclusionHistoryAdjustedScore: adjustedTotal,
			ExclusionHistoryChangedBy:     actor,
			ExclusionHistoryChangedAt:     now,
		})
	}
	return out
}

func (s *ExclusionService) passingGrade(ctx context.Context, schemaID int64, sectionID *int64) int {
	if s.Thresholds == nil {
		return model.DefaultPassingGrade
	}
	return s.Thresholds.GetPassingGrade(ctx, schemaID, sectionID)
}

func (s *ExclusionService) buildAggregate(
	ctx context.Context,
	audit model.AuditModel,
	sections []model.SectionScoreModel,
	snapshot bool,
	excluded map[int64]bool,
	history []model.ExclusionHistoryModel,
) *dto.AuditScoresResponse {
	out := &dto.AuditScoresResponse{
		Audit:         dto.FromAuditModel(audit),
		ScoreSource:   dto.ScoreSourceLive,
		Sections:      make([]dto.SectionWithScore, 0, len(sections)),
		OriginalTotal: TotalScore(sections, nil),
		AdjustedTotal: TotalScore(sections, notIn(excluded)),
		History:       make([]dto.HistoryEntry, 0, len(history)),
	}
	if snapshot {
		out.ScoreSource = dto.ScoreSourceSnapshot
	}

	for _, sec := range sections {
		id := sec.SectionScoreSectionID
		item := dto.FromSectionScore(sec, excluded[id])
		item.PassingGrade = s.passingGrade(ctx, audit.AuditSchemaID, &id)
		pct := sec.SectionScorePercentage
		item.Passed = sec.SectionScoreMax > 0 && Passed(&pct, item.PassingGrade)
		if item.IsExcluded {
			out.ExcludedCount++
		}
		out.Sections = append(out.Sections, item)
	}

	// the adjusted total is the effective one for classification
	out.PassingGrade = s.passingGrade(ctx, audit.AuditSchemaID, nil)
	out.Passed = Passed(out.AdjustedTotal, out.PassingGrade)

	for _, h := range history {
		out.History = append(out.History, dto.FromHistoryModel(h))
	}
	return out
}
