package domain

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemID(i int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", i))
}

func shapedItems() []PlanItem {
	items := make([]PlanItem, 0, PackSize)
	band := func(i int) DifficultyBand {
		switch {
		case i < 3:
			return BandEasy
		case i < 9:
			return BandMedium
		default:
			return BandHard
		}
	}
	for i := 0; i < PackSize; i++ {
		items = append(items, PlanItem{
			QuestionID: itemID(i + 1),
			Bucket:     band(i),
			Why:        SelectionReason{Score: 1, Readiness: ReadinessWeak},
		})
	}
	return items
}

func TestNewSessionPackPlan(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	plan, err := NewSessionPackPlan(uuid.New(), userID, 1, shapedItems())
	require.NoError(t, err)
	assert.Equal(t, userID, plan.UserID)
	assert.False(t, plan.CreatedAt.IsZero())
}

func TestSessionPackPlanValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*SessionPackPlan)
		wantErr error
	}{
		{
			name:    "valid",
			mutate:  func(*SessionPackPlan) {},
			wantErr: nil,
		},
		{
			name:    "nil session ID",
			mutate:  func(p *SessionPackPlan) { p.SessionID = uuid.Nil },
			wantErr: ErrPlanSessionIDEmpty,
		},
		{
			name:    "nil user ID",
			mutate:  func(p *SessionPackPlan) { p.UserID = uuid.Nil },
			wantErr: ErrPlanUserIDEmpty,
		},
		{
			name:    "zero sequence",
			mutate:  func(p *SessionPackPlan) { p.Sequence = 0 },
			wantErr: ErrPlanSequenceInvalid,
		},
		{
			name:    "short pack",
			mutate:  func(p *SessionPackPlan) { p.Items = p.Items[:7] },
			wantErr: ErrPlanWrongSize,
		},
		{
			name:    "nil question ID",
			mutate:  func(p *SessionPackPlan) { p.Items[2].QuestionID = uuid.Nil },
			wantErr: ErrCandidateIDEmpty,
		},
		{
			name:    "bogus bucket",
			mutate:  func(p *SessionPackPlan) { p.Items[0].Bucket = "impossible" },
			wantErr: ErrInvalidBand,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			plan := &SessionPackPlan{
				SessionID: uuid.New(),
				UserID:    uuid.New(),
				Sequence:  1,
				Items:     shapedItems(),
			}
			tc.mutate(plan)

			err := plan.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestBucketCounts(t *testing.T) {
	t.Parallel()

	plan := &SessionPackPlan{Items: shapedItems()}
	counts := plan.BucketCounts()
	assert.Equal(t, 3, counts[BandEasy])
	assert.Equal(t, 6, counts[BandMedium])
	assert.Equal(t, 3, counts[BandHard])
}

func TestPYQCount(t *testing.T) {
	t.Parallel()

	items := shapedItems()
	items[0].Why.PYQFrequencyScore = PYQScoreHigh
	items[1].Why.PYQFrequencyScore = PYQScoreHigh
	items[2].Why.PYQFrequencyScore = PYQScoreHighest
	plan := &SessionPackPlan{Items: items}

	assert.Equal(t, 2, plan.PYQCount(PYQScoreHigh))
	assert.Equal(t, 1, plan.PYQCount(PYQScoreHighest))
	assert.Equal(t, 9, plan.PYQCount(0))
}

func TestPairsDeduplicatesInFirstAppearanceOrder(t *testing.T) {
	t.Parallel()

	plan := &SessionPackPlan{Items: shapedItems()}
	pairByID := map[uuid.UUID]string{
		itemID(1): "algebra::linear",
		itemID(2): "geometry::circles",
		itemID(3): "algebra::linear",
	}
	pairs := plan.Pairs(func(id uuid.UUID) (string, bool) {
		pair, ok := pairByID[id]
		return pair, ok
	})

	assert.Equal(t, []string{"algebra::linear", "geometry::circles"}, pairs)
}

func TestConstraintReportMarking(t *testing.T) {
	t.Parallel()

	report := NewConstraintReport()
	assert.False(t, report.IsMet(ConstraintPackSize))

	report.MarkMet(ConstraintPackSize)
	report.MarkMet(ConstraintPackSize)
	assert.True(t, report.IsMet(ConstraintPackSize))
	assert.Len(t, report.Met, 1)

	report.MarkRelaxed(ConstraintPoolFilters, ReasonPoolExpanded)
	assert.True(t, report.WasRelaxed(ConstraintPoolFilters))
	assert.False(t, report.WasRelaxed(ConstraintRankPolicy))
}

func TestForbiddenRelaxationsAreStructural(t *testing.T) {
	t.Parallel()

	assert.ElementsMatch(t, []ConstraintName{
		ConstraintBandShape,
		ConstraintPYQHigh,
		ConstraintPYQHighest,
	}, ForbiddenRelaxations())
}
