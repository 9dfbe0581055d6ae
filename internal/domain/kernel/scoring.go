package kernel

import (
	"sort"

	"github.com/quantprep/quantprep-api/internal/domain"
)

// ScoredCandidate is a pool candidate annotated with its selection priority
// and the readiness of its pair at scoring time.
type ScoredCandidate struct {
	domain.QuestionCandidate

	Score           float64
	Readiness       domain.ReadinessLevel
	CoverageBoosted bool
}

// scoreCandidates assigns each candidate a deterministic selection priority:
//
//   - PYQ frequency score, weighted by PYQWeight: higher is preferred because
//     it signals exam relevance;
//   - pair readiness, weighted by ReadinessWeight: lower readiness increases
//     priority, to drive mastery;
//   - coverage recency, weighted by coverageWeight: pairs never seen or not
//     seen within the last RecencyWindowSessions sessions are boosted, to
//     guarantee rotation through the full syllabus.
//
// The result is sorted by descending score; ties break by ascending
// question ID lexical order so identical inputs always yield byte-identical
// rankings. A coverageWeight of 0 disables the rotation boost (used by the
// coverage-recency relaxation step).
func scoreCandidates(
	pool []domain.QuestionCandidate,
	readiness map[string]domain.ReadinessLevel,
	coverage map[string]domain.CoverageRecord,
	currentSequence int,
	params *Params,
	coverageWeight float64,
) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(pool))

	for _, candidate := range pool {
		pair := candidate.Pair()
		level := readinessOf(readiness, pair)
		boosted := coverageWeight > 0 && needsRotation(coverage, pair, currentSequence, params)

		score := params.PYQWeight*candidate.PYQFrequencyScore +
			params.ReadinessWeight*params.ReadinessPriority[level]
		if boosted {
			score += coverageWeight
		}

		scored = append(scored, ScoredCandidate{
			QuestionCandidate: candidate,
			Score:             score,
			Readiness:         level,
			CoverageBoosted:   boosted,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].QuestionID.String() < scored[j].QuestionID.String()
	})

	return scored
}

// needsRotation reports whether a pair is due for the coverage boost: it has
// never been included in a session, or its last inclusion is outside the
// recent-sessions window.
func needsRotation(
	coverage map[string]domain.CoverageRecord,
	pair string,
	currentSequence int,
	params *Params,
) bool {
	record, ok := coverage[pair]
	if !ok {
		return true
	}
	return !record.SeenWithin(currentSequence, params.RecencyWindowSessions)
}
