package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Structural pack requirements. The pack size and band shape are absolute:
// no relaxation step may alter them.
const (
	PackSize = 12

	TargetEasyCount   = 3
	TargetMediumCount = 6
	TargetHardCount   = 3

	// PYQ frequency scores with structurally required minimum counts.
	PYQScoreHigh    = 1.0
	PYQScoreHighest = 1.5

	MinPYQHighCount    = 2
	MinPYQHighestCount = 2
)

// ConstraintName identifies a structural pack constraint.
type ConstraintName string

// The fixed constraint set. Every planning call accounts for each of these:
// a constraint is either met as originally specified or relaxed with a
// recorded reason; anything else is a report inconsistency.
const (
	ConstraintPackSize        ConstraintName = "pack_size"
	ConstraintBandShape       ConstraintName = "band_shape"
	ConstraintPYQHigh         ConstraintName = "pyq_1.0"
	ConstraintPYQHighest      ConstraintName = "pyq_1.5"
	ConstraintPoolFilters     ConstraintName = "pool_filters"
	ConstraintRankPolicy      ConstraintName = "rank_policy"
	ConstraintCoverageRecency ConstraintName = "coverage_recency"
)

// AllConstraints returns the full fixed constraint set in canonical order.
func AllConstraints() []ConstraintName {
	return []ConstraintName{
		ConstraintPackSize,
		ConstraintBandShape,
		ConstraintPYQHigh,
		ConstraintPYQHighest,
		ConstraintPoolFilters,
		ConstraintRankPolicy,
		ConstraintCoverageRecency,
	}
}

// ForbiddenRelaxations returns the constraints that may never appear in a
// report's relaxed sequence, regardless of feasibility pressure.
func ForbiddenRelaxations() []ConstraintName {
	return []ConstraintName{
		ConstraintBandShape,
		ConstraintPYQHigh,
		ConstraintPYQHighest,
	}
}

// RelaxationReason is the reason code recorded when a relaxation ladder step
// is applied.
type RelaxationReason string

// Reason codes, one per ladder step, in ladder priority order.
const (
	ReasonPoolExpanded          RelaxationReason = "pool_expanded"
	ReasonAssistRerank          RelaxationReason = "assist_rerank"
	ReasonCoverageBoostLoosened RelaxationReason = "coverage_boost_loosened"
)

// Relaxation records one applied ladder step: the constraint that was
// loosened and the reason code for the step that loosened it.
type Relaxation struct {
	Name   ConstraintName   `json:"name"`
	Reason RelaxationReason `json:"reason"`
}

// ReportMeta carries processing metadata for one planning call.
type ReportMeta struct {
	ProcessingTimeMs int64 `json:"processing_time_ms"`
	TokensUsed       int   `json:"tokens_used,omitempty"`
	RetryUsed        bool  `json:"retry_used"`
}

// ConstraintReport is the exhaustive account of how a planning call treated
// every constraint in the fixed set.
type ConstraintReport struct {
	Met     []ConstraintName `json:"met"`
	Relaxed []Relaxation     `json:"relaxed"`
	Meta    ReportMeta       `json:"meta"`
}

// NewConstraintReport creates an empty report.
func NewConstraintReport() *ConstraintReport {
	return &ConstraintReport{
		Met:     []ConstraintName{},
		Relaxed: []Relaxation{},
	}
}

// MarkMet records a constraint as satisfied as originally specified.
// Marking the same constraint twice is a no-op.
func (r *ConstraintReport) MarkMet(name ConstraintName) {
	if r.IsMet(name) {
		return
	}
	r.Met = append(r.Met, name)
}

// MarkRelaxed appends a relaxation in application order.
func (r *ConstraintReport) MarkRelaxed(name ConstraintName, reason RelaxationReason) {
	r.Relaxed = append(r.Relaxed, Relaxation{Name: name, Reason: reason})
}

// IsMet reports whether the constraint was recorded as met.
func (r *ConstraintReport) IsMet(name ConstraintName) bool {
	for _, m := range r.Met {
		if m == name {
			return true
		}
	}
	return false
}

// WasRelaxed reports whether any relaxation loosened the given constraint.
func (r *ConstraintReport) WasRelaxed(name ConstraintName) bool {
	for _, rel := range r.Relaxed {
		if rel.Name == name {
			return true
		}
	}
	return false
}

// Plan-specific validation errors
var (
	// ErrPlanSessionIDEmpty is returned when a plan's session ID is empty or nil.
	ErrPlanSessionIDEmpty = errors.New("plan session ID cannot be empty")

	// ErrPlanUserIDEmpty is returned when a plan's user ID is empty or nil.
	ErrPlanUserIDEmpty = errors.New("plan user ID cannot be empty")

	// ErrPlanSequenceInvalid is returned when a plan's session sequence is below 1.
	ErrPlanSequenceInvalid = errors.New("plan session sequence must be at least 1")

	// ErrPlanWrongSize is returned when a plan does not contain exactly PackSize items.
	ErrPlanWrongSize = errors.New("plan must contain exactly 12 items")
)

// SelectionReason carries the scoring justification for one selected item,
// captured at selection time.
type SelectionReason struct {
	Score             float64        `json:"score"`
	PYQFrequencyScore float64        `json:"pyq_frequency_score"`
	Readiness         ReadinessLevel `json:"readiness"`
	CoverageBoosted   bool           `json:"coverage_boosted"`
}

// PlanItem is one selected question with its assigned difficulty bucket and
// selection justification.
type PlanItem struct {
	QuestionID uuid.UUID       `json:"question_id"`
	Bucket     DifficultyBand  `json:"bucket"`
	Why        SelectionReason `json:"why"`
}

// SessionPackPlan is the finished, ordered 12-question pack for one session.
// It is created once per planning call, immutable after validation passes,
// and superseded (not mutated) by the next session's plan.
type SessionPackPlan struct {
	SessionID uuid.UUID  `json:"session_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Sequence  int        `json:"sequence"`
	Items     []PlanItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewSessionPackPlan creates a plan from the selected items.
// Returns an error if validation fails.
func NewSessionPackPlan(
	sessionID, userID uuid.UUID,
	sequence int,
	items []PlanItem,
) (*SessionPackPlan, error) {
	plan := &SessionPackPlan{
		SessionID: sessionID,
		UserID:    userID,
		Sequence:  sequence,
		Items:     items,
		CreatedAt: time.Now().UTC(),
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	return plan, nil
}

// Validate checks if the SessionPackPlan has valid data.
// Returns an error if any field fails validation.
func (p *SessionPackPlan) Validate() error {
	if p.SessionID == uuid.Nil {
		return ErrPlanSessionIDEmpty
	}

	if p.UserID == uuid.Nil {
		return ErrPlanUserIDEmpty
	}

	if p.Sequence < 1 {
		return ErrPlanSequenceInvalid
	}

	if len(p.Items) != PackSize {
		return fmt.Errorf("%w: got %d", ErrPlanWrongSize, len(p.Items))
	}

	for i, item := range p.Items {
		if item.QuestionID == uuid.Nil {
			return fmt.Errorf("item %d: %w", i, ErrCandidateIDEmpty)
		}
		if !item.Bucket.IsValid() {
			return fmt.Errorf("item %d: %w: %q", i, ErrInvalidBand, item.Bucket)
		}
	}

	return nil
}

// BucketCounts tallies items per difficulty bucket.
func (p *SessionPackPlan) BucketCounts() map[DifficultyBand]int {
	counts := make(map[DifficultyBand]int, 3)
	for _, item := range p.Items {
		counts[item.Bucket]++
	}
	return counts
}

// PYQCount tallies items whose PYQ frequency score equals the given value.
func (p *SessionPackPlan) PYQCount(score float64) int {
	n := 0
	for _, item := range p.Items {
		if item.Why.PYQFrequencyScore == score {
			n++
		}
	}
	return n
}

// Pairs returns the distinct topic pairs included in the pack. The order is
// the order of first appearance in the pack, which keeps coverage updates
// deterministic.
func (p *SessionPackPlan) Pairs(lookup func(uuid.UUID) (string, bool)) []string {
	seen := make(map[string]struct{}, len(p.Items))
	pairs := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		pair, ok := lookup(item.QuestionID)
		if !ok {
			continue
		}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		pairs = append(pairs, pair)
	}
	return pairs
}
