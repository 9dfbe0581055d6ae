package planner

import (
	"sort"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/domain"
	"github.com/quantprep/quantprep-api/internal/domain/kernel"
	"github.com/quantprep/quantprep-api/internal/telemetry"
)

// failureKind classifies why an assembly attempt could not produce a pack.
type failureKind int

const (
	failureBandShortage failureKind = iota + 1
	failurePYQShortage
)

// assembleFailure describes an unsuccessful assembly attempt so the caller
// can decide on the next ladder step and emit shortfall telemetry.
type assembleFailure struct {
	Kind failureKind

	// Band shortage details.
	Band domain.DifficultyBand
	Have int
	Need int

	// PYQ shortage details.
	Shortfall telemetry.PYQShortfallType
	Expected  int
	Actual    int
}

// bandTargets returns the required item count per difficulty bucket in
// canonical bucket order.
func bandTargets() []struct {
	Band  domain.DifficultyBand
	Count int
} {
	return []struct {
		Band  domain.DifficultyBand
		Count int
	}{
		{domain.BandEasy, domain.TargetEasyCount},
		{domain.BandMedium, domain.TargetMediumCount},
		{domain.BandHard, domain.TargetHardCount},
	}
}

// assemble tries to build a full pack from the ranked pool. Selection is
// greedy per bucket in rank order, then deterministic same-bucket swaps pull
// in reserve candidates until the PYQ minimum counts are reached. The
// returned items are ordered easy, medium, hard, each bucket in rank order.
func assemble(ranked []kernel.ScoredCandidate) ([]domain.PlanItem, *assembleFailure) {
	byBand := make(map[domain.DifficultyBand][]kernel.ScoredCandidate, 3)
	for _, c := range ranked {
		byBand[c.Band] = append(byBand[c.Band], c)
	}

	selected := make(map[domain.DifficultyBand][]kernel.ScoredCandidate, 3)
	reserves := make(map[domain.DifficultyBand][]kernel.ScoredCandidate, 3)
	for _, target := range bandTargets() {
		pool := byBand[target.Band]
		if len(pool) < target.Count {
			return nil, &assembleFailure{
				Kind: failureBandShortage,
				Band: target.Band,
				Have: len(pool),
				Need: target.Count,
			}
		}
		selected[target.Band] = append([]kernel.ScoredCandidate(nil), pool[:target.Count]...)
		reserves[target.Band] = pool[target.Count:]
	}

	rankOf := make(map[uuid.UUID]int, len(ranked))
	for i, c := range ranked {
		rankOf[c.QuestionID] = i
	}

	// The 1.5 minimum is scarcer, so it is satisfied first; its swaps never
	// evict a 1.0 selection unless the 1.0 count stays above its own minimum.
	// Buckets are re-sorted by rank after each repair pass: a swap places the
	// reserve at the victim's index, and victim selection walks from the
	// lowest-ranked end.
	if fail := ensureMinAtScore(selected, reserves, domain.PYQScoreHighest, domain.MinPYQHighestCount,
		domain.PYQScoreHigh, domain.MinPYQHighCount, telemetry.ShortfallPYQHighest); fail != nil {
		return nil, fail
	}
	sortByRank(selected, rankOf)
	if fail := ensureMinAtScore(selected, reserves, domain.PYQScoreHigh, domain.MinPYQHighCount,
		domain.PYQScoreHighest, domain.MinPYQHighestCount, telemetry.ShortfallPYQHigh); fail != nil {
		return nil, fail
	}
	sortByRank(selected, rankOf)

	items := make([]domain.PlanItem, 0, domain.PackSize)
	for _, target := range bandTargets() {
		for _, c := range selected[target.Band] {
			items = append(items, domain.PlanItem{
				QuestionID: c.QuestionID,
				Bucket:     c.Band,
				Why: domain.SelectionReason{
					Score:             c.Score,
					PYQFrequencyScore: c.PYQFrequencyScore,
					Readiness:         c.Readiness,
					CoverageBoosted:   c.CoverageBoosted,
				},
			})
		}
	}
	return items, nil
}

// ensureMinAtScore swaps reserve candidates scored exactly at the wanted PYQ
// score into the selection until minCount is reached. Swaps stay within one
// bucket so the band shape is preserved, walk buckets in canonical order and
// reserves in rank order, and evict the lowest-ranked selected candidate
// whose own PYQ score is not load-bearing for either minimum.
func ensureMinAtScore(
	selected map[domain.DifficultyBand][]kernel.ScoredCandidate,
	reserves map[domain.DifficultyBand][]kernel.ScoredCandidate,
	score float64,
	minCount int,
	otherScore float64,
	otherMin int,
	shortfall telemetry.PYQShortfallType,
) *assembleFailure {
	count := countAtScore(selected, score)
	for count < minCount {
		swapped := false
		for _, target := range bandTargets() {
			band := target.Band
			ri := indexAtScore(reserves[band], score)
			if ri < 0 {
				continue
			}
			vi := victimIndex(selected[band], score, otherScore, countAtScore(selected, otherScore), otherMin)
			if vi < 0 {
				continue
			}
			selected[band][vi], reserves[band] = reserves[band][ri], removeAt(reserves[band], ri)
			count++
			swapped = true
			break
		}
		if !swapped {
			return &assembleFailure{
				Kind:      failurePYQShortage,
				Shortfall: shortfall,
				Expected:  minCount,
				Actual:    count,
			}
		}
	}
	return nil
}

// sortByRank restores each bucket to the kernel's ranking order after swaps.
func sortByRank(
	selected map[domain.DifficultyBand][]kernel.ScoredCandidate,
	rankOf map[uuid.UUID]int,
) {
	for _, list := range selected {
		sort.Slice(list, func(i, j int) bool {
			return rankOf[list[i].QuestionID] < rankOf[list[j].QuestionID]
		})
	}
}

// countAtScore tallies selected candidates whose PYQ score equals score exactly.
func countAtScore(selected map[domain.DifficultyBand][]kernel.ScoredCandidate, score float64) int {
	n := 0
	for _, list := range selected {
		for _, c := range list {
			if c.PYQFrequencyScore == score {
				n++
			}
		}
	}
	return n
}

// indexAtScore returns the first (highest-ranked) reserve at the exact score,
// or -1 when none exists.
func indexAtScore(reserves []kernel.ScoredCandidate, score float64) int {
	for i, c := range reserves {
		if c.PYQFrequencyScore == score {
			return i
		}
	}
	return -1
}

// victimIndex picks the selected candidate to evict: the lowest-ranked one
// not already at the wanted score, preferring candidates at neither tracked
// score, and touching the other tracked score only when its count has slack.
func victimIndex(
	selected []kernel.ScoredCandidate,
	score, otherScore float64,
	otherCount, otherMin int,
) int {
	for i := len(selected) - 1; i >= 0; i-- {
		s := selected[i].PYQFrequencyScore
		if s != score && s != otherScore {
			return i
		}
	}
	if otherCount > otherMin {
		for i := len(selected) - 1; i >= 0; i-- {
			if selected[i].PYQFrequencyScore == otherScore {
				return i
			}
		}
	}
	return -1
}

// removeAt returns the slice with the element at index i removed, preserving
// order.
func removeAt(list []kernel.ScoredCandidate, i int) []kernel.ScoredCandidate {
	out := make([]kernel.ScoredCandidate, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
