package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/domain"
)

// AttemptStore defines the interface for attempt event persistence.
// Attempt events are the append-only record of every question served to a
// user; the readiness classifier consumes them in chronological order.
type AttemptStore interface {
	// ListByUser retrieves all attempt events for the user ordered by
	// recorded_at ascending (oldest first). A user with no attempts returns
	// an empty slice, not an error.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.AttemptEvent, error)

	// Create saves a new attempt event.
	// Returns validation errors from the domain if the event is invalid.
	Create(ctx context.Context, event *domain.AttemptEvent) error
}
