// file: internals/features/audits/service/scoring.go
package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"foodaudit_backend/internals/features/audits/model"
)

/* =========================================================
   SECTION & TOTAL SCORING
   The only weighting rule in the codebase. Completion, the live
   estimate and the exclusion ledger all go through these functions.
========================================================= */

// RoundScore rounds half away from zero to one decimal. Section
// percentages and totals share this rule.
func RoundScore(v float64) float64 {
	return math.Round(v*10) / 10
}

// Percentage is 0, not undefined, for a section without scored items.
func Percentage(earned, maxPoints float64) float64 {
	if maxPoints <= 0 {
		return 0
	}
	return RoundScore(earned / maxPoints * 100)
}

type sectionLabel struct {
	name  string
	order int
}

func labelsFromCatalog(catalog []model.SchemaSectionModel) map[int64]sectionLabel {
	labels := make(map[int64]sectionLabel, len(catalog))
	for _, s := range catalog {
		labels[s.SchemaSectionID] = sectionLabel{name: s.SchemaSectionName, order: s.SchemaSectionOrder}
	}
	return labels
}

// ComputeSectionScores aggregates item responses per section. Sections are
// returned in catalog order; sections missing from the catalog come last,
// by id. createdAt stamps every row.
func ComputeSectionScores(
	auditID int64,
	responses []model.ItemResponseModel,
	catalog []model.SchemaSectionModel,
	createdAt time.Time,
) []model.SectionScoreModel {
	labels := labelsFromCatalog(catalog)
	bySection := make(map[int64]*model.SectionScoreModel)
	ids := make([]int64, 0)

	for _, r := range responses {
		row, ok := bySection[r.ItemResponseSectionID]
		if !ok {
			label, known := labels[r.ItemResponseSectionID]
			name := label.name
			order := label.order
			if !known {
				name = fmt.Sprintf("Section %d", r.ItemResponseSectionID)
				order = math.MaxInt32
			}
			row = &model.SectionScoreModel{
				SectionScoreAuditID:     auditID,
				SectionScoreSectionID:   r.ItemResponseSectionID,
				SectionScoreSectionName: name,
				SectionScoreOrder:       order,
				SectionScoreCreatedAt:   createdAt,
			}
			bySection[r.ItemResponseSectionID] = row
			ids = append(ids, r.ItemResponseSectionID)
		}

		choice := r.ItemResponseSelectedChoice
		row.SectionScoreTotalQuestions++
		if choice.Answered() {
			row.SectionScoreAnsweredQuestions++
		}
		if choice == model.ChoiceNA {
			row.SectionScoreNAQuestions++
		}
		if !choice.Scored() {
			continue
		}
		coeff := float64(r.ItemResponseCoefficient)
		row.SectionScoreMax += coeff
		row.SectionScoreEarned += coeff * choice.Factor()
	}

	sort.Slice(ids, func(i, j int) bool {
		a, b := bySection[ids[i]], bySection[ids[j]]
		if a.SectionScoreOrder != b.SectionScoreOrder {
			return a.SectionScoreOrder < b.SectionScoreOrder
		}
		return ids[i] < ids[j]
	})

	out := make([]model.SectionScoreModel, 0, len(ids))
	for _, id := range ids {
		row := bySection[id]
		row.SectionScorePercentage = Percentage(row.SectionScoreEarned, row.SectionScoreMax)
		out = append(out, *row)
	}
	return out
}

// TotalScore is Σearned/Σmax over the sections accepted by include (nil
// accepts all). A zero denominator yields nil.
func TotalScore(sections []model.SectionScoreModel, include func(sectionID int64) bool) *float64 {
	var earned, maxPoints float64
	for _, s := range sections {
		if include != nil && !include(s.SectionScoreSectionID) {
			continue
		}
		earned += s.SectionScoreEarned
		maxPoints += s.SectionScoreMax
	}
	if maxPoints <= 0 {
		return nil
	}
	total := RoundScore(earned / maxPoints * 100)
	return &total
}

// notIn builds an include predicate that rejects the given ids.
func notIn(set map[int64]bool) func(int64) bool {
	return func(id int64) bool { return !set[id] }
}

// Passed: a null score never passes.
func Passed(score *float64, passingGrade int) bool {
	return score != nil && *score >= float64(passingGrade)
}
