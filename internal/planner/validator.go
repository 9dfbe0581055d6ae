package planner

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/domain"
)

// Validator re-checks a finished plan against the structural constraints and
// audits its constraint report. It recounts from candidate metadata rather
// than trusting the planner's per-item annotations, so a planner bug cannot
// validate its own mistake.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the plan and report. The lookup resolves a question ID to
// its candidate metadata; every plan item must resolve. Returns
// ErrConstraintViolation, ErrForbiddenRelaxation, or ErrReportInconsistent
// with detail, or nil when the plan is sound.
func (v *Validator) Validate(
	plan *domain.SessionPackPlan,
	report *domain.ConstraintReport,
	lookup func(uuid.UUID) (domain.QuestionCandidate, bool),
) error {
	if plan == nil || report == nil {
		return fmt.Errorf("%w: plan and report are required", ErrReportInconsistent)
	}

	if len(plan.Items) != domain.PackSize {
		return fmt.Errorf("%w: pack has %d items, want %d",
			ErrConstraintViolation, len(plan.Items), domain.PackSize)
	}

	bandCounts := make(map[domain.DifficultyBand]int, 3)
	pyqHigh, pyqHighest := 0, 0
	seen := make(map[uuid.UUID]bool, len(plan.Items))
	for i, item := range plan.Items {
		if seen[item.QuestionID] {
			return fmt.Errorf("%w: duplicate question %s",
				ErrConstraintViolation, item.QuestionID)
		}
		seen[item.QuestionID] = true

		candidate, ok := lookup(item.QuestionID)
		if !ok {
			return fmt.Errorf("%w: item %d references unknown question %s",
				ErrConstraintViolation, i, item.QuestionID)
		}
		if candidate.Band != item.Bucket {
			return fmt.Errorf("%w: item %d bucket %q disagrees with question band %q",
				ErrConstraintViolation, i, item.Bucket, candidate.Band)
		}
		bandCounts[candidate.Band]++
		switch candidate.PYQFrequencyScore {
		case domain.PYQScoreHigh:
			pyqHigh++
		case domain.PYQScoreHighest:
			pyqHighest++
		}
	}

	for _, target := range bandTargets() {
		if bandCounts[target.Band] != target.Count {
			return fmt.Errorf("%w: band %q has %d items, want %d",
				ErrConstraintViolation, target.Band, bandCounts[target.Band], target.Count)
		}
	}
	if pyqHigh < domain.MinPYQHighCount {
		return fmt.Errorf("%w: %d items at PYQ score %.1f, want at least %d",
			ErrConstraintViolation, pyqHigh, domain.PYQScoreHigh, domain.MinPYQHighCount)
	}
	if pyqHighest < domain.MinPYQHighestCount {
		return fmt.Errorf("%w: %d items at PYQ score %.1f, want at least %d",
			ErrConstraintViolation, pyqHighest, domain.PYQScoreHighest, domain.MinPYQHighestCount)
	}

	return v.auditReport(report)
}

// auditReport checks the constraint report for forbidden relaxations and for
// exhaustive, non-overlapping accounting of the fixed constraint set.
func (v *Validator) auditReport(report *domain.ConstraintReport) error {
	for _, rel := range report.Relaxed {
		for _, forbidden := range domain.ForbiddenRelaxations() {
			if rel.Name == forbidden {
				return fmt.Errorf("%w: %q relaxed with reason %q",
					ErrForbiddenRelaxation, rel.Name, rel.Reason)
			}
		}
		if rel.Reason == "" {
			return fmt.Errorf("%w: relaxation of %q has no reason",
				ErrReportInconsistent, rel.Name)
		}
	}

	known := make(map[domain.ConstraintName]bool, len(domain.AllConstraints()))
	for _, name := range domain.AllConstraints() {
		known[name] = true
	}

	accounted := make(map[domain.ConstraintName]bool, len(known))
	for _, name := range report.Met {
		if !known[name] {
			return fmt.Errorf("%w: unknown constraint %q in met set",
				ErrReportInconsistent, name)
		}
		accounted[name] = true
	}
	for _, rel := range report.Relaxed {
		if !known[rel.Name] {
			return fmt.Errorf("%w: unknown constraint %q in relaxed sequence",
				ErrReportInconsistent, rel.Name)
		}
		if accounted[rel.Name] && report.IsMet(rel.Name) {
			return fmt.Errorf("%w: constraint %q is both met and relaxed",
				ErrReportInconsistent, rel.Name)
		}
		accounted[rel.Name] = true
	}

	for _, name := range domain.AllConstraints() {
		if !accounted[name] {
			return fmt.Errorf("%w: constraint %q unaccounted for",
				ErrReportInconsistent, name)
		}
	}
	return nil
}
