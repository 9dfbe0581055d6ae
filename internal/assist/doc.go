// Package assist defines the boundary to the optional external scoring
// assist. The planner may consult a Reranker during the relaxation ladder;
// the assist's unavailability must never block or fail planning.
package assist
