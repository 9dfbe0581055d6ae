package telemetry

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// packsGenerated counts validated packs.
	// Labels: cold_start (true/false), pool_expanded (true/false)
	packsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quantprep",
		Subsystem: "planner",
		Name:      "packs_generated_total",
		Help:      "Total session packs that passed constraint validation",
	}, []string{"cold_start", "pool_expanded"})

	// relaxationsApplied counts relaxation ladder steps.
	// Labels: constraint, reason
	relaxationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quantprep",
		Subsystem: "planner",
		Name:      "relaxations_total",
		Help:      "Total relaxation ladder steps applied",
	}, []string{"constraint", "reason"})

	// plannerLatency measures end-to-end planning call latency.
	plannerLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quantprep",
		Subsystem: "planner",
		Name:      "latency_seconds",
		Help:      "End-to-end pack planning latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
	})

	// assistInvocations counts external assist calls by outcome.
	// Labels: outcome (ok, timeout, error)
	assistInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quantprep",
		Subsystem: "planner",
		Name:      "assist_invocations_total",
		Help:      "Total bounded external assist invocations by outcome",
	}, []string{"outcome"})

	// assistTokens accumulates token usage reported by the assist.
	assistTokens = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quantprep",
		Subsystem: "planner",
		Name:      "assist_tokens_total",
		Help:      "Total tokens reported by the external assist",
	})

	// pyqShortfalls counts PYQ minima shortfalls. Critical severity: this is
	// an operational alert even when a permitted relaxation later recovers.
	// Labels: shortfall (pyq_1.0, pyq_1.5)
	pyqShortfalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quantprep",
		Subsystem: "planner",
		Name:      "pyq_shortfalls_total",
		Help:      "Total PYQ minima shortfalls detected during planning",
	}, []string{"shortfall"})
)

// PrometheusSink implements Sink on top of the process-wide Prometheus
// registry. Metrics are served by the /metrics endpoint.
type PrometheusSink struct{}

// Ensure PrometheusSink implements the Sink interface
var _ Sink = (*PrometheusSink)(nil)

// NewPrometheusSink creates a new PrometheusSink.
func NewPrometheusSink() *PrometheusSink {
	return &PrometheusSink{}
}

// PackGenerated implements Sink.PackGenerated.
func (s *PrometheusSink) PackGenerated(_ context.Context, event PackGeneratedEvent) {
	packsGenerated.WithLabelValues(
		strconv.FormatBool(event.ColdStart),
		strconv.FormatBool(event.PoolExpanded),
	).Inc()
}

// RelaxationApplied implements Sink.RelaxationApplied.
func (s *PrometheusSink) RelaxationApplied(_ context.Context, event RelaxationEvent) {
	relaxationsApplied.WithLabelValues(string(event.Constraint), string(event.Reason)).Inc()
}

// PlannerLatency implements Sink.PlannerLatency.
func (s *PrometheusSink) PlannerLatency(_ context.Context, event LatencyEvent) {
	plannerLatency.Observe(event.Duration.Seconds())
}

// AssistOutcome implements Sink.AssistOutcome.
func (s *PrometheusSink) AssistOutcome(_ context.Context, event AssistEvent) {
	outcome := "ok"
	switch {
	case event.TimedOut:
		outcome = "timeout"
	case event.Failed:
		outcome = "error"
	}
	assistInvocations.WithLabelValues(outcome).Inc()

	if event.TokensUsed > 0 {
		assistTokens.Add(float64(event.TokensUsed))
	}
}

// PYQShortfall implements Sink.PYQShortfall.
func (s *PrometheusSink) PYQShortfall(_ context.Context, event PYQShortfallEvent) {
	pyqShortfalls.WithLabelValues(string(event.Shortfall)).Inc()
}
