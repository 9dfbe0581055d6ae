package store

import (
	"context"

	"github.com/quantprep/quantprep-api/internal/domain"
)

// PoolFilter narrows the candidate pool a planner run draws from. The zero
// value selects the full question bank.
type PoolFilter struct {
	// Subcategories restricts the pool to the given subcategories when
	// non-empty.
	Subcategories []string

	// MinPYQFrequencyScore drops candidates scored below the threshold
	// when positive.
	MinPYQFrequencyScore float64
}

// QuestionStore defines the interface for reading the question bank.
type QuestionStore interface {
	// ListCandidates retrieves the candidate pool matching the filter,
	// ordered by question ID for deterministic iteration.
	ListCandidates(ctx context.Context, filter PoolFilter) ([]domain.QuestionCandidate, error)
}
