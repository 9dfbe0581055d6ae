package assist

import (
	"context"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/domain"
)

// RerankRequest carries the remaining candidate pool and the learner context
// the assist may use to re-rank it.
type RerankRequest struct {
	UserID     uuid.UUID
	Candidates []domain.QuestionCandidate
	Readiness  map[string]domain.ReadinessLevel
}

// RerankResult is the assist's re-ranked view of the pool. Question IDs not
// present in the request are ignored by the caller; omitted candidates keep
// their deterministic order after the ranked ones.
type RerankResult struct {
	RankedQuestionIDs []uuid.UUID

	// TokensUsed is the token usage reported by the assist, passed through
	// unmodified to telemetry. Zero when the assist reports none.
	TokensUsed int
}

// Reranker is the bounded external scoring assist. Implementations must
// honor ctx cancellation: the planner invokes Rerank under a hard timeout
// and falls back to its deterministic ranking on any error.
type Reranker interface {
	Rerank(ctx context.Context, req RerankRequest) (*RerankResult, error)
}
