package kernel

import (
	"github.com/quantprep/quantprep-api/internal/domain"
)

// classifyReadiness derives a readiness level for every topic pair that
// appears in the attempt history.
//
// For each pair, attempts are weighted by recency: with n attempts in
// chronological order, attempt i carries weight RecencyDecay^(n-1-i), so the
// most recent attempt always has weight 1 and older attempts fade
// geometrically. The recency-weighted correctness ratio is then classified
// against the configured thresholds. A skipped attempt counts as incorrect:
// it is exposure without mastery.
//
// Pairs with zero prior attempts are absent from the result; callers treat
// missing pairs as Weak (cold-start policy).
//
// The function is pure: identical history and params always produce an
// identical classification.
func classifyReadiness(
	history []domain.AttemptEvent,
	params *Params,
) map[string]domain.ReadinessLevel {
	byPair := make(map[string][]domain.AttemptEvent)
	for _, event := range history {
		pair := event.Pair()
		byPair[pair] = append(byPair[pair], event)
	}

	readiness := make(map[string]domain.ReadinessLevel, len(byPair))
	for pair, attempts := range byPair {
		ratio := weightedCorrectness(attempts, params.RecencyDecay)
		readiness[pair] = classifyRatio(ratio, params)
	}

	return readiness
}

// weightedCorrectness computes the recency-weighted correctness ratio for a
// pair's attempts, oldest first.
func weightedCorrectness(attempts []domain.AttemptEvent, decay float64) float64 {
	var weightSum, correctSum float64

	weight := 1.0
	// Walk newest to oldest so the most recent attempt has weight 1.
	for i := len(attempts) - 1; i >= 0; i-- {
		weightSum += weight
		if attempts[i].WasCorrect && !attempts[i].Skipped {
			correctSum += weight
		}
		weight *= decay
	}

	if weightSum == 0 {
		return 0
	}

	return correctSum / weightSum
}

// classifyRatio maps a correctness ratio to a readiness level.
func classifyRatio(ratio float64, params *Params) domain.ReadinessLevel {
	switch {
	case ratio < params.WeakThreshold:
		return domain.ReadinessWeak
	case ratio > params.StrongThreshold:
		return domain.ReadinessStrong
	default:
		return domain.ReadinessModerate
	}
}

// readinessOf looks up a pair's readiness, defaulting to Weak for pairs with
// no prior attempts.
func readinessOf(readiness map[string]domain.ReadinessLevel, pair string) domain.ReadinessLevel {
	if level, ok := readiness[pair]; ok {
		return level
	}
	return domain.ReadinessWeak
}
