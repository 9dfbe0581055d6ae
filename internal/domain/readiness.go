package domain

// ReadinessLevel classifies how prepared a learner is for a topic pair,
// derived from the recency-weighted correctness of their attempt history.
type ReadinessLevel string

// Possible readiness level values. Pairs with zero prior attempts are Weak:
// unseen material is treated as not-yet-mastered, which biases selection
// toward coverage.
const (
	ReadinessWeak     ReadinessLevel = "weak"
	ReadinessModerate ReadinessLevel = "moderate"
	ReadinessStrong   ReadinessLevel = "strong"
)

// IsValid reports whether the readiness level is one of the known values.
func (r ReadinessLevel) IsValid() bool {
	switch r {
	case ReadinessWeak, ReadinessModerate, ReadinessStrong:
		return true
	default:
		return false
	}
}
