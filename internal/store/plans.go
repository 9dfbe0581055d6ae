package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/domain"
)

// PlanStore defines the interface for session pack plan persistence.
type PlanStore interface {
	// Create saves a new session pack plan together with its constraint
	// report. Returns ErrPlanExists if a plan with the same user and
	// session sequence is already persisted, and validation errors from
	// the domain if the plan is invalid.
	Create(ctx context.Context, plan *domain.SessionPackPlan, report *domain.ConstraintReport) error

	// GetByID retrieves a persisted plan and its report by session ID.
	// Returns ErrPlanNotFound if no plan with the ID exists.
	GetByID(ctx context.Context, sessionID uuid.UUID) (*domain.SessionPackPlan, *domain.ConstraintReport, error)

	// CountForUser returns the number of plans persisted for the user.
	// The next session sequence is this count plus one.
	CountForUser(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a new PlanStore bound to the given transaction.
	WithTx(tx *sql.Tx) PlanStore
}
