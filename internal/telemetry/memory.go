package telemetry

import (
	"context"
	"sync"
)

// MemorySink is a Sink that retains emitted events in memory. It backs tests
// and local development where a metrics backend is not available.
type MemorySink struct {
	mu sync.Mutex

	packs       []PackGeneratedEvent
	relaxations []RelaxationEvent
	latencies   []LatencyEvent
	assists     []AssistEvent
	shortfalls  []PYQShortfallEvent
}

// Ensure MemorySink implements the Sink interface
var _ Sink = (*MemorySink)(nil)

// NewMemorySink creates a new empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// PackGenerated implements Sink.PackGenerated.
func (s *MemorySink) PackGenerated(_ context.Context, event PackGeneratedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packs = append(s.packs, event)
}

// RelaxationApplied implements Sink.RelaxationApplied.
func (s *MemorySink) RelaxationApplied(_ context.Context, event RelaxationEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relaxations = append(s.relaxations, event)
}

// PlannerLatency implements Sink.PlannerLatency.
func (s *MemorySink) PlannerLatency(_ context.Context, event LatencyEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latencies = append(s.latencies, event)
}

// AssistOutcome implements Sink.AssistOutcome.
func (s *MemorySink) AssistOutcome(_ context.Context, event AssistEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assists = append(s.assists, event)
}

// PYQShortfall implements Sink.PYQShortfall.
func (s *MemorySink) PYQShortfall(_ context.Context, event PYQShortfallEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shortfalls = append(s.shortfalls, event)
}

// Packs returns a copy of the recorded pack-generated events.
func (s *MemorySink) Packs() []PackGeneratedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PackGeneratedEvent, len(s.packs))
	copy(out, s.packs)
	return out
}

// Relaxations returns a copy of the recorded relaxation events.
func (s *MemorySink) Relaxations() []RelaxationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RelaxationEvent, len(s.relaxations))
	copy(out, s.relaxations)
	return out
}

// Latencies returns a copy of the recorded latency events.
func (s *MemorySink) Latencies() []LatencyEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LatencyEvent, len(s.latencies))
	copy(out, s.latencies)
	return out
}

// Assists returns a copy of the recorded assist events.
func (s *MemorySink) Assists() []AssistEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AssistEvent, len(s.assists))
	copy(out, s.assists)
	return out
}

// Shortfalls returns a copy of the recorded PYQ shortfall events.
func (s *MemorySink) Shortfalls() []PYQShortfallEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PYQShortfallEvent, len(s.shortfalls))
	copy(out, s.shortfalls)
	return out
}
