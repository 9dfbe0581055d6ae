package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/domain"
	"github.com/quantprep/quantprep-api/internal/platform/logger"
	"github.com/quantprep/quantprep-api/internal/store"
)

// PostgresAttemptStore implements the store.AttemptStore interface
// using a PostgreSQL database.
type PostgresAttemptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresAttemptStore implements store.AttemptStore interface
var _ store.AttemptStore = (*PostgresAttemptStore)(nil)

// NewPostgresAttemptStore creates a new PostgreSQL implementation of the
// AttemptStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresAttemptStore(db store.DBTX, log *slog.Logger) *PostgresAttemptStore {
	if db == nil {
		panic("db cannot be nil for PostgresAttemptStore")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresAttemptStore{
		db:     db,
		logger: log.With(slog.String("component", "attempt_store")),
	}
}

// Create implements store.AttemptStore.Create.
// It validates the event before persisting it.
func (s *PostgresAttemptStore) Create(ctx context.Context, event *domain.AttemptEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	concepts, err := json.Marshal(event.CoreConcepts)
	if err != nil {
		return fmt.Errorf("failed to marshal core concepts: %w", err)
	}

	query := `
		INSERT INTO attempt_events
			(user_id, question_id, was_correct, skipped, response_time_ms,
			 session_sequence_at_serve, band, subcategory, type_of_question,
			 core_concepts, pyq_frequency_score, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = s.db.ExecContext(ctx, query,
		event.UserID,
		event.QuestionID,
		event.WasCorrect,
		event.Skipped,
		event.ResponseTimeMs,
		event.SessionSequenceAtServe,
		event.Band,
		event.Subcategory,
		event.TypeOfQuestion,
		concepts,
		event.PYQFrequencyScore,
		event.RecordedAt,
	)
	if err != nil {
		log.Error("failed to create attempt event",
			slog.String("error", err.Error()),
			slog.String("user_id", event.UserID.String()),
			slog.String("question_id", event.QuestionID.String()))
		return fmt.Errorf("failed to create attempt event: %w", MapError(err))
	}

	log.Debug("created attempt event",
		slog.String("user_id", event.UserID.String()),
		slog.String("question_id", event.QuestionID.String()))
	return nil
}

// ListByUser implements store.AttemptStore.ListByUser.
// Events are returned oldest first so recency weighting can walk the slice
// from the end.
func (s *PostgresAttemptStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.AttemptEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, question_id, was_correct, skipped, response_time_ms,
		       session_sequence_at_serve, band, subcategory, type_of_question,
		       core_concepts, pyq_frequency_score, recorded_at
		FROM attempt_events
		WHERE user_id = $1
		ORDER BY recorded_at ASC, question_id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query attempt events",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to query attempt events: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var events []domain.AttemptEvent
	for rows.Next() {
		var (
			event    domain.AttemptEvent
			concepts []byte
		)
		if err := rows.Scan(
			&event.UserID,
			&event.QuestionID,
			&event.WasCorrect,
			&event.Skipped,
			&event.ResponseTimeMs,
			&event.SessionSequenceAtServe,
			&event.Band,
			&event.Subcategory,
			&event.TypeOfQuestion,
			&concepts,
			&event.PYQFrequencyScore,
			&event.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attempt event: %w", MapError(err))
		}
		if len(concepts) > 0 {
			if err := json.Unmarshal(concepts, &event.CoreConcepts); err != nil {
				return nil, fmt.Errorf("failed to unmarshal core concepts: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attempt events: %w", MapError(err))
	}

	log.Debug("retrieved attempt events",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(events)))
	return events, nil
}
