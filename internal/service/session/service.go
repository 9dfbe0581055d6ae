package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/domain"
)

// PlanResult is the outcome of one planning call: the persisted plan and the
// constraint report accounting for every structural constraint.
type PlanResult struct {
	Plan   *domain.SessionPackPlan
	Report *domain.ConstraintReport
}

// Service defines the session planning use case.
type Service interface {
	// PlanSession generates, validates, and persists the next session pack
	// for the user. At most one call per user runs at a time; concurrent
	// calls fail with service.ErrPlanInProgress. Returns
	// planner.ErrInfeasiblePack when no valid pack exists.
	PlanSession(ctx context.Context, userID uuid.UUID) (*PlanResult, error)

	// GetPlan retrieves a previously persisted plan by session ID. Returns
	// store.ErrPlanNotFound if it does not exist and service.ErrNotOwned if
	// it belongs to another user.
	GetPlan(ctx context.Context, userID, sessionID uuid.UUID) (*PlanResult, error)

	// RecordAttempt appends an attempt event to the user's history.
	RecordAttempt(ctx context.Context, event *domain.AttemptEvent) error
}
