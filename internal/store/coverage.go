package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/domain"
)

// CoverageStore defines the interface for coverage record persistence.
// Coverage tracks, per user, when each (subcategory, type_of_question)
// pair was last served so the planner can rotate neglected material in.
type CoverageStore interface {
	// GetSnapshot returns all coverage records for the user keyed by pair
	// key. A user with no history returns an empty map, not an error.
	GetSnapshot(ctx context.Context, userID uuid.UUID) (map[string]domain.CoverageRecord, error)

	// RecordSession upserts coverage for every pair served in the given
	// session sequence: existing records get sessions_seen incremented and
	// last_seen_session advanced, new pairs get a fresh record with
	// first_seen_session set. The update is idempotent per (user, sequence).
	RecordSession(ctx context.Context, userID uuid.UUID, sequence int, pairs []string) error

	// WithTx returns a new CoverageStore bound to the given transaction.
	WithTx(tx *sql.Tx) CoverageStore
}
