package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/quantprep/quantprep-api/internal/domain"
)

func TestMemorySinkRecordsEvents(t *testing.T) {
	t.Parallel()

	sink := NewMemorySink()
	ctx := context.Background()
	userID := uuid.New()

	sink.PackGenerated(ctx, PackGeneratedEvent{UserID: userID, ColdStart: true})
	sink.RelaxationApplied(ctx, RelaxationEvent{
		Constraint: domain.ConstraintPoolFilters,
		Reason:     domain.ReasonPoolExpanded,
	})
	sink.PlannerLatency(ctx, LatencyEvent{Duration: 40 * time.Millisecond})
	sink.AssistOutcome(ctx, AssistEvent{TokensUsed: 512})
	sink.PYQShortfall(ctx, PYQShortfallEvent{Expected: 2, Actual: 1})

	packs := sink.Packs()
	assert.Len(t, packs, 1)
	assert.True(t, packs[0].ColdStart)
	assert.Equal(t, userID, packs[0].UserID)

	relaxations := sink.Relaxations()
	assert.Len(t, relaxations, 1)
	assert.Equal(t, domain.ConstraintPoolFilters, relaxations[0].Constraint)

	assert.Len(t, sink.Latencies(), 1)
	assert.Len(t, sink.Assists(), 1)
	assert.Len(t, sink.Shortfalls(), 1)
}

func TestMemorySinkAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	sink := NewMemorySink()
	sink.PackGenerated(context.Background(), PackGeneratedEvent{ColdStart: true})

	packs := sink.Packs()
	packs[0].ColdStart = false

	assert.True(t, sink.Packs()[0].ColdStart)
}

func TestMemorySinkConcurrentWrites(t *testing.T) {
	t.Parallel()

	sink := NewMemorySink()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.PackGenerated(context.Background(), PackGeneratedEvent{})
			sink.AssistOutcome(context.Background(), AssistEvent{})
		}()
	}
	wg.Wait()

	assert.Len(t, sink.Packs(), 50)
	assert.Len(t, sink.Assists(), 50)
}
