package kernel

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/quantprep/quantprep-api/internal/domain"
)

// fixedID builds a stable UUID from an index so orderings are reproducible.
func fixedID(i int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", i))
}

func candidate(i int, band domain.DifficultyBand, sub, typ string, pyq float64) domain.QuestionCandidate {
	return domain.QuestionCandidate{
		QuestionID:        fixedID(i),
		Band:              band,
		Subcategory:       sub,
		TypeOfQuestion:    typ,
		PYQFrequencyScore: pyq,
	}
}

func TestScoreCandidatesDeterminism(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	pool := []domain.QuestionCandidate{
		candidate(3, domain.BandEasy, "algebra", "equations", 1.0),
		candidate(1, domain.BandMedium, "geometry", "angles", 1.5),
		candidate(2, domain.BandHard, "arithmetic", "ratios", 0.5),
	}
	history := []domain.AttemptEvent{
		attemptFor("algebra", "equations", true, false),
		attemptFor("algebra", "equations", true, false),
	}
	coverage := map[string]domain.CoverageRecord{}

	first, firstReadiness := svc.ScoreAndClassify(pool, history, coverage, 5)
	second, secondReadiness := svc.ScoreAndClassify(pool, history, coverage, 5)

	assert.Equal(t, first, second, "identical inputs must produce identical rankings")
	assert.Equal(t, firstReadiness, secondReadiness)
}

func TestScoreCandidatesTieBreakByQuestionID(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	// Identical scoring inputs; only the IDs differ.
	pool := []domain.QuestionCandidate{
		candidate(9, domain.BandMedium, "algebra", "equations", 1.0),
		candidate(2, domain.BandMedium, "algebra", "equations", 1.0),
		candidate(5, domain.BandMedium, "algebra", "equations", 1.0),
	}

	ranked, _ := svc.ScoreAndClassify(pool, nil, nil, 1)
	require.Len(t, ranked, 3)
	assert.Equal(t, fixedID(2), ranked[0].QuestionID)
	assert.Equal(t, fixedID(5), ranked[1].QuestionID)
	assert.Equal(t, fixedID(9), ranked[2].QuestionID)
}

func TestScoreCandidatesColdStartPrefersWeakAndPYQ(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	pool := []domain.QuestionCandidate{
		candidate(1, domain.BandMedium, "algebra", "equations", 0.5),
		candidate(2, domain.BandMedium, "geometry", "angles", 1.5),
	}

	// No history: every pair is weak, so PYQ score decides the order.
	ranked, readiness := svc.ScoreAndClassify(pool, nil, nil, 1)
	require.Len(t, ranked, 2)
	assert.Empty(t, readiness)
	assert.Equal(t, fixedID(2), ranked[0].QuestionID)
	assert.Equal(t, domain.ReadinessWeak, ranked[0].Readiness)
	assert.True(t, ranked[0].CoverageBoosted, "unseen pairs receive the rotation boost")
}

func TestScoreCandidatesCoverageRotation(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	currentSequence := 10

	recent := domain.CoverageRecord{
		Pair:             domain.PairKey("algebra", "equations"),
		SessionsSeen:     4,
		FirstSeenSession: 1,
		LastSeenSession:  9,
	}
	stale := domain.CoverageRecord{
		Pair:             domain.PairKey("geometry", "angles"),
		SessionsSeen:     1,
		FirstSeenSession: 2,
		LastSeenSession:  3,
	}
	coverage := map[string]domain.CoverageRecord{
		recent.Pair: recent,
		stale.Pair:  stale,
	}

	pool := []domain.QuestionCandidate{
		candidate(1, domain.BandMedium, "algebra", "equations", 1.0),
		candidate(2, domain.BandMedium, "geometry", "angles", 1.0),
		candidate(3, domain.BandMedium, "arithmetic", "ratios", 1.0),
	}

	ranked := svc.Rescore(pool, nil, coverage, currentSequence, true)
	require.Len(t, ranked, 3)

	boosted := map[uuid.UUID]bool{}
	for _, c := range ranked {
		boosted[c.QuestionID] = c.CoverageBoosted
	}
	assert.False(t, boosted[fixedID(1)], "pair seen within the window is not boosted")
	assert.True(t, boosted[fixedID(2)], "pair outside the window is boosted")
	assert.True(t, boosted[fixedID(3)], "never-seen pair is boosted")
}

func TestRescoreWithoutCoverageBoost(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	pool := []domain.QuestionCandidate{
		candidate(1, domain.BandMedium, "algebra", "equations", 1.0),
	}

	ranked := svc.Rescore(pool, nil, nil, 1, false)
	require.Len(t, ranked, 1)
	assert.False(t, ranked[0].CoverageBoosted)

	boostedRanked := svc.Rescore(pool, nil, nil, 1, true)
	require.Len(t, boostedRanked, 1)
	assert.Greater(t, boostedRanked[0].Score, ranked[0].Score)
}

func TestNewParamsZeroValuesKeepDefaults(t *testing.T) {
	t.Parallel()

	params := NewParams(ParamsConfig{StrongThreshold: 0.9})
	defaults := NewDefaultParams()

	assert.Equal(t, 0.9, params.StrongThreshold)
	assert.Equal(t, defaults.WeakThreshold, params.WeakThreshold)
	assert.Equal(t, defaults.RecencyDecay, params.RecencyDecay)
	assert.Equal(t, defaults.RecencyWindowSessions, params.RecencyWindowSessions)
}
