package kernel

import (
	"github.com/quantprep/quantprep-api/internal/domain"
)

// Service defines the deterministic kernel operations. Implementations must
// be pure: no I/O, no clock access, identical inputs always produce identical
// outputs. This is what makes planning reproducible and testable.
type Service interface {
	// ScoreAndClassify derives readiness for every pair in the attempt
	// history and ranks the candidate pool by selection priority. Empty
	// inputs yield an empty ranking; callers handle emptiness as a
	// pool-exhaustion condition.
	ScoreAndClassify(
		pool []domain.QuestionCandidate,
		history []domain.AttemptEvent,
		coverage map[string]domain.CoverageRecord,
		currentSequence int,
	) ([]ScoredCandidate, map[string]domain.ReadinessLevel)

	// Rescore re-ranks a pool against an existing readiness classification.
	// When withCoverageBoost is false the rotation boost is excluded, which
	// is the kernel's side of the coverage-recency relaxation step.
	Rescore(
		pool []domain.QuestionCandidate,
		readiness map[string]domain.ReadinessLevel,
		coverage map[string]domain.CoverageRecord,
		currentSequence int,
		withCoverageBoost bool,
	) []ScoredCandidate

	// RecencyWindowSessions exposes the configured rotation window so the
	// planner can apply the same policy to pool filtering.
	RecencyWindowSessions() int
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new kernel service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new kernel service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// ScoreAndClassify implements the Service interface.
func (s *defaultService) ScoreAndClassify(
	pool []domain.QuestionCandidate,
	history []domain.AttemptEvent,
	coverage map[string]domain.CoverageRecord,
	currentSequence int,
) ([]ScoredCandidate, map[string]domain.ReadinessLevel) {
	readiness := classifyReadiness(history, s.params)
	ranked := scoreCandidates(pool, readiness, coverage, currentSequence, s.params, s.params.CoverageWeight)
	return ranked, readiness
}

// Rescore implements the Service interface.
func (s *defaultService) Rescore(
	pool []domain.QuestionCandidate,
	readiness map[string]domain.ReadinessLevel,
	coverage map[string]domain.CoverageRecord,
	currentSequence int,
	withCoverageBoost bool,
) []ScoredCandidate {
	coverageWeight := 0.0
	if withCoverageBoost {
		coverageWeight = s.params.CoverageWeight
	}
	return scoreCandidates(pool, readiness, coverage, currentSequence, s.params, coverageWeight)
}

// RecencyWindowSessions implements the Service interface.
func (s *defaultService) RecencyWindowSessions() int {
	return s.params.RecencyWindowSessions
}
