package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/domain"
	"github.com/quantprep/quantprep-api/internal/platform/logger"
	"github.com/quantprep/quantprep-api/internal/store"
)

// PostgresPlanStore implements the store.PlanStore interface
// using a PostgreSQL database.
type PostgresPlanStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresPlanStore implements store.PlanStore interface
var _ store.PlanStore = (*PostgresPlanStore)(nil)

// NewPostgresPlanStore creates a new PostgreSQL implementation of the
// PlanStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresPlanStore(db store.DBTX, log *slog.Logger) *PostgresPlanStore {
	if db == nil {
		panic("db cannot be nil for PostgresPlanStore")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresPlanStore{
		db:     db,
		logger: log.With(slog.String("component", "plan_store")),
	}
}

// WithTx implements store.PlanStore.WithTx.
// It returns a new PlanStore instance that uses the provided transaction.
func (s *PostgresPlanStore) WithTx(tx *sql.Tx) store.PlanStore {
	return &PostgresPlanStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.PlanStore.Create.
// The plan items and the constraint report are stored as JSONB documents;
// a unique index on (user_id, sequence) enforces one plan per session.
func (s *PostgresPlanStore) Create(
	ctx context.Context,
	plan *domain.SessionPackPlan,
	report *domain.ConstraintReport,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := plan.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if report == nil {
		return fmt.Errorf("%w: constraint report cannot be nil", store.ErrInvalidEntity)
	}

	items, err := json.Marshal(plan.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal plan items: %w", err)
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal constraint report: %w", err)
	}

	query := `
		INSERT INTO session_pack_plans
			(id, user_id, sequence, items, constraint_report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = s.db.ExecContext(ctx, query,
		plan.SessionID,
		plan.UserID,
		plan.Sequence,
		items,
		reportJSON,
		plan.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("plan already exists for session sequence",
				slog.String("user_id", plan.UserID.String()),
				slog.Int("sequence", plan.Sequence))
			return fmt.Errorf("%w: %v", store.ErrPlanExists, err)
		}
		log.Error("failed to create session pack plan",
			slog.String("error", err.Error()),
			slog.String("user_id", plan.UserID.String()))
		return fmt.Errorf("failed to create session pack plan: %w", MapError(err))
	}

	log.Debug("created session pack plan",
		slog.String("session_id", plan.SessionID.String()),
		slog.String("user_id", plan.UserID.String()),
		slog.Int("sequence", plan.Sequence))
	return nil
}

// GetByID implements store.PlanStore.GetByID.
func (s *PostgresPlanStore) GetByID(
	ctx context.Context,
	sessionID uuid.UUID,
) (*domain.SessionPackPlan, *domain.ConstraintReport, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, sequence, items, constraint_report, created_at
		FROM session_pack_plans
		WHERE id = $1`

	var (
		plan       domain.SessionPackPlan
		items      []byte
		reportJSON []byte
	)
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&plan.SessionID,
		&plan.UserID,
		&plan.Sequence,
		&items,
		&reportJSON,
		&plan.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, store.ErrPlanNotFound
		}
		log.Error("failed to get session pack plan",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, nil, fmt.Errorf("failed to get session pack plan: %w", MapError(err))
	}

	if err := json.Unmarshal(items, &plan.Items); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal plan items: %w", err)
	}
	var report domain.ConstraintReport
	if err := json.Unmarshal(reportJSON, &report); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal constraint report: %w", err)
	}

	return &plan, &report, nil
}

// CountForUser implements store.PlanStore.CountForUser.
func (s *PostgresPlanStore) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	query := `SELECT COUNT(*) FROM session_pack_plans WHERE user_id = $1`
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		log.Error("failed to count session pack plans",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, fmt.Errorf("failed to count session pack plans: %w", MapError(err))
	}
	return count, nil
}
