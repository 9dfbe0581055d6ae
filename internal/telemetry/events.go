package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/domain"
)

// PackGeneratedEvent is emitted once per successfully validated pack.
type PackGeneratedEvent struct {
	UserID uuid.UUID

	// ColdStart is true when the user had no attempt history at planning time.
	ColdStart bool

	// PoolExpanded is true when the pool-expansion relaxation was applied.
	PoolExpanded bool
}

// RelaxationEvent is emitted for every relaxation ladder step that was applied.
type RelaxationEvent struct {
	Constraint domain.ConstraintName
	Reason     domain.RelaxationReason
}

// LatencyEvent carries the end-to-end duration of one planning call.
type LatencyEvent struct {
	Duration time.Duration
}

// AssistEvent records one invocation of the bounded external assist.
type AssistEvent struct {
	// TimedOut is true when the assist call hit its deadline.
	TimedOut bool

	// Failed is true when the assist call returned an error other than a timeout.
	Failed bool

	// TokensUsed passes the assist's reported token usage through unmodified;
	// zero when the assist does not report usage.
	TokensUsed int
}

// PYQShortfallType names which PYQ minimum fell short.
type PYQShortfallType string

// Shortfall tag values.
const (
	ShortfallPYQHigh    PYQShortfallType = "pyq_1.0"
	ShortfallPYQHighest PYQShortfallType = "pyq_1.5"
)

// PYQShortfallEvent signals an operational alert: the pool could not supply
// the required PYQ minima. It may precede either a successful relaxation or
// an infeasible outcome.
type PYQShortfallEvent struct {
	Shortfall PYQShortfallType
	Expected  int
	Actual    int
}

// Sink receives planning telemetry. Implementations must never influence
// control flow and must be safe for concurrent use.
type Sink interface {
	PackGenerated(ctx context.Context, event PackGeneratedEvent)
	RelaxationApplied(ctx context.Context, event RelaxationEvent)
	PlannerLatency(ctx context.Context, event LatencyEvent)
	AssistOutcome(ctx context.Context, event AssistEvent)
	PYQShortfall(ctx context.Context, event PYQShortfallEvent)
}
