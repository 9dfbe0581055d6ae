package kernel

import (
	"github.com/quantprep/quantprep-api/internal/domain"
)

// Params defines all configurable parameters for the deterministic kernel.
// Thresholds and weights are policy, not structural invariants, so callers
// tune them through configuration rather than relying on the defaults.
type Params struct {
	// Readiness classification thresholds on the recency-weighted
	// correctness ratio: Weak below WeakThreshold, Strong above
	// StrongThreshold, Moderate in between.
	WeakThreshold   float64
	StrongThreshold float64

	// RecencyDecay is the per-attempt decay applied to older attempts when
	// weighting correctness. Must be in (0, 1]; 1 means no decay.
	RecencyDecay float64

	// RecencyWindowSessions is the "recent N sessions" window: pairs not
	// included in any of the last N sessions receive the coverage boost.
	RecencyWindowSessions int

	// Scoring weights for the three selection-priority inputs.
	PYQWeight       float64
	ReadinessWeight float64
	CoverageWeight  float64

	// ReadinessPriority maps each readiness level to its priority
	// contribution. Lower readiness yields higher priority, driving mastery.
	ReadinessPriority map[domain.ReadinessLevel]float64
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values leave the corresponding default in place.
type ParamsConfig struct {
	WeakThreshold   float64
	StrongThreshold float64

	RecencyDecay          float64
	RecencyWindowSessions int

	PYQWeight       float64
	ReadinessWeight float64
	CoverageWeight  float64
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		WeakThreshold:   0.40,
		StrongThreshold: 0.75,

		RecencyDecay:          0.85,
		RecencyWindowSessions: 3,

		PYQWeight:       2.0,
		ReadinessWeight: 3.0,
		CoverageWeight:  1.5,

		ReadinessPriority: map[domain.ReadinessLevel]float64{
			domain.ReadinessWeak:     1.0,
			domain.ReadinessModerate: 0.5,
			domain.ReadinessStrong:   0.0,
		},
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.WeakThreshold > 0 {
		params.WeakThreshold = config.WeakThreshold
	}
	if config.StrongThreshold > 0 {
		params.StrongThreshold = config.StrongThreshold
	}

	if config.RecencyDecay > 0 && config.RecencyDecay <= 1 {
		params.RecencyDecay = config.RecencyDecay
	}
	if config.RecencyWindowSessions > 0 {
		params.RecencyWindowSessions = config.RecencyWindowSessions
	}

	if config.PYQWeight > 0 {
		params.PYQWeight = config.PYQWeight
	}
	if config.ReadinessWeight > 0 {
		params.ReadinessWeight = config.ReadinessWeight
	}
	if config.CoverageWeight > 0 {
		params.CoverageWeight = config.CoverageWeight
	}

	return params
}
