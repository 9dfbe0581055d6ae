package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/quantprep/quantprep-api/internal/domain"
	"github.com/quantprep/quantprep-api/internal/platform/logger"
	"github.com/quantprep/quantprep-api/internal/store"
)

// PostgresQuestionStore implements the store.QuestionStore interface
// using a PostgreSQL database.
type PostgresQuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresQuestionStore implements store.QuestionStore interface
var _ store.QuestionStore = (*PostgresQuestionStore)(nil)

// NewPostgresQuestionStore creates a new PostgreSQL implementation of the
// QuestionStore interface.
func NewPostgresQuestionStore(db store.DBTX, log *slog.Logger) *PostgresQuestionStore {
	if db == nil {
		panic("db cannot be nil for PostgresQuestionStore")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresQuestionStore{
		db:     db,
		logger: log.With(slog.String("component", "question_store")),
	}
}

// ListCandidates implements store.QuestionStore.ListCandidates.
// Results are ordered by question ID so repeated reads of an unchanged bank
// produce identical pools.
func (s *PostgresQuestionStore) ListCandidates(
	ctx context.Context,
	filter store.PoolFilter,
) ([]domain.QuestionCandidate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, band, subcategory, type_of_question, core_concepts, pyq_frequency_score
		FROM questions
		WHERE ($1::text[] IS NULL OR cardinality($1::text[]) = 0 OR subcategory = ANY($1::text[]))
		  AND pyq_frequency_score >= $2
		ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, filter.Subcategories, filter.MinPYQFrequencyScore)
	if err != nil {
		log.Error("failed to query question candidates",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query question candidates: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var candidates []domain.QuestionCandidate
	for rows.Next() {
		var (
			c        domain.QuestionCandidate
			concepts []byte
		)
		if err := rows.Scan(
			&c.QuestionID,
			&c.Band,
			&c.Subcategory,
			&c.TypeOfQuestion,
			&concepts,
			&c.PYQFrequencyScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan question candidate: %w", MapError(err))
		}
		if len(concepts) > 0 {
			if err := json.Unmarshal(concepts, &c.CoreConcepts); err != nil {
				return nil, fmt.Errorf("failed to unmarshal core concepts: %w", err)
			}
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate question candidates: %w", MapError(err))
	}

	log.Debug("retrieved question candidates", slog.Int("count", len(candidates)))
	return candidates, nil
}
