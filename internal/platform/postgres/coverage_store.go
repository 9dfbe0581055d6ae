package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/domain"
	"github.com/quantprep/quantprep-api/internal/platform/logger"
	"github.com/quantprep/quantprep-api/internal/store"
)

// PostgresCoverageStore implements the store.CoverageStore interface
// using a PostgreSQL database.
type PostgresCoverageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresCoverageStore implements store.CoverageStore interface
var _ store.CoverageStore = (*PostgresCoverageStore)(nil)

// NewPostgresCoverageStore creates a new PostgreSQL implementation of the
// CoverageStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresCoverageStore(db store.DBTX, log *slog.Logger) *PostgresCoverageStore {
	if db == nil {
		panic("db cannot be nil for PostgresCoverageStore")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresCoverageStore{
		db:     db,
		logger: log.With(slog.String("component", "coverage_store")),
	}
}

// WithTx implements store.CoverageStore.WithTx.
// It returns a new CoverageStore instance that uses the provided transaction.
func (s *PostgresCoverageStore) WithTx(tx *sql.Tx) store.CoverageStore {
	return &PostgresCoverageStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetSnapshot implements store.CoverageStore.GetSnapshot.
// It returns all coverage records for the user keyed by pair key. A user with
// no history yields an empty map.
func (s *PostgresCoverageStore) GetSnapshot(
	ctx context.Context,
	userID uuid.UUID,
) (map[string]domain.CoverageRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, pair, sessions_seen, first_seen_session, last_seen_session,
		       created_at, updated_at
		FROM coverage_records
		WHERE user_id = $1
		ORDER BY pair`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query coverage snapshot",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to query coverage snapshot: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	snapshot := make(map[string]domain.CoverageRecord)
	for rows.Next() {
		var rec domain.CoverageRecord
		if err := rows.Scan(
			&rec.UserID,
			&rec.Pair,
			&rec.SessionsSeen,
			&rec.FirstSeenSession,
			&rec.LastSeenSession,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan coverage record: %w", MapError(err))
		}
		snapshot[rec.Pair] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate coverage records: %w", MapError(err))
	}

	log.Debug("retrieved coverage snapshot",
		slog.String("user_id", userID.String()),
		slog.Int("pairs", len(snapshot)))
	return snapshot, nil
}

// RecordSession implements store.CoverageStore.RecordSession.
// It upserts one row per pair served in the session. last_seen_session only
// moves forward, so replaying a session sequence is a safe no-op.
func (s *PostgresCoverageStore) RecordSession(
	ctx context.Context,
	userID uuid.UUID,
	sequence int,
	pairs []string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrCoverageUserIDEmpty)
	}
	if sequence < 1 {
		return fmt.Errorf("%w: session sequence must be at least 1", store.ErrInvalidEntity)
	}

	query := `
		INSERT INTO coverage_records
			(user_id, pair, sessions_seen, first_seen_session, last_seen_session, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $3, NOW(), NOW())
		ON CONFLICT (user_id, pair) DO UPDATE SET
			sessions_seen = coverage_records.sessions_seen + 1,
			last_seen_session = EXCLUDED.last_seen_session,
			updated_at = NOW()
		WHERE coverage_records.last_seen_session < EXCLUDED.last_seen_session`

	for _, pair := range pairs {
		if pair == "" {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrCoveragePairEmpty)
		}
		if _, err := s.db.ExecContext(ctx, query, userID, pair, sequence); err != nil {
			log.Error("failed to upsert coverage record",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()),
				slog.String("pair", pair))
			return fmt.Errorf("failed to upsert coverage record: %w", MapError(err))
		}
	}

	log.Debug("recorded session coverage",
		slog.String("user_id", userID.String()),
		slog.Int("sequence", sequence),
		slog.Int("pairs", len(pairs)))
	return nil
}
