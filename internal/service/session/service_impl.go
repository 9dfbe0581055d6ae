package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/domain"
	"github.com/quantprep/quantprep-api/internal/planner"
	"github.com/quantprep/quantprep-api/internal/platform/logger"
	"github.com/quantprep/quantprep-api/internal/service"
	"github.com/quantprep/quantprep-api/internal/store"
	"github.com/quantprep/quantprep-api/internal/telemetry"
)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	db        *sql.DB
	plans     store.PlanStore
	coverage  store.CoverageStore
	attempts  store.AttemptStore
	questions store.QuestionStore
	planner   *planner.PackPlanner
	validator *planner.Validator
	sink      telemetry.Sink
	locks     *userLocks
	logger    *slog.Logger
}

// Ensure serviceImpl implements the Service interface
var _ Service = (*serviceImpl)(nil)

// NewService creates a new session planning service. Panics if any required
// dependency is nil, consistent with other constructor behavior in the
// codebase for programmer errors.
func NewService(
	db *sql.DB,
	plans store.PlanStore,
	coverage store.CoverageStore,
	attempts store.AttemptStore,
	questions store.QuestionStore,
	packPlanner *planner.PackPlanner,
	validator *planner.Validator,
	sink telemetry.Sink,
	log *slog.Logger,
) Service {
	if db == nil {
		panic("db cannot be nil for session service")
	}
	if plans == nil || coverage == nil || attempts == nil || questions == nil {
		panic("stores cannot be nil for session service")
	}
	if packPlanner == nil || validator == nil {
		panic("planner and validator cannot be nil for session service")
	}
	if sink == nil {
		panic("telemetry sink cannot be nil for session service")
	}
	if log == nil {
		log = slog.Default()
	}
	return &serviceImpl{
		db:        db,
		plans:     plans,
		coverage:  coverage,
		attempts:  attempts,
		questions: questions,
		planner:   packPlanner,
		validator: validator,
		sink:      sink,
		locks:     newUserLocks(),
		logger:    log.With(slog.String("component", "session_service")),
	}
}

// PlanSession implements Service.PlanSession.
func (s *serviceImpl) PlanSession(ctx context.Context, userID uuid.UUID) (*PlanResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	started := time.Now()

	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrPlanUserIDEmpty)
	}

	if !s.locks.tryAcquire(userID) {
		log.Warn("rejected concurrent planning call",
			slog.String("user_id", userID.String()))
		return nil, service.ErrPlanInProgress
	}
	defer s.locks.release(userID)

	// All reads happen up front so planning works against a frozen snapshot.
	priorPlans, err := s.plans.CountForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count prior plans: %w", err)
	}
	sequence := priorPlans + 1

	history, err := s.attempts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read attempt history: %w", err)
	}
	coverage, err := s.coverage.GetSnapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read coverage snapshot: %w", err)
	}

	coldStart := len(history) == 0
	pool, expanded, err := s.loadPools(ctx, history, coldStart)
	if err != nil {
		return nil, err
	}

	result, err := s.planner.PlanPack(ctx, planner.Input{
		UserID:       userID,
		Sequence:     sequence,
		Pool:         pool,
		ExpandedPool: expanded,
		History:      history,
		Coverage:     coverage,
	})
	if err != nil {
		return nil, err
	}

	lookup := candidateLookup(result.PoolUsed)
	if err := s.validator.Validate(result.Plan, result.Report, lookup); err != nil {
		// A validation failure here is a planner defect; the plan is
		// discarded and nothing is persisted.
		log.Error("finished plan failed validation",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	pairs := result.Plan.Pairs(func(id uuid.UUID) (string, bool) {
		c, ok := lookup(id)
		if !ok {
			return "", false
		}
		return c.Pair(), true
	})

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.plans.WithTx(tx).Create(ctx, result.Plan, result.Report); err != nil {
			return err
		}
		return s.coverage.WithTx(tx).RecordSession(ctx, userID, sequence, pairs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist plan: %w", err)
	}

	s.sink.PackGenerated(ctx, telemetry.PackGeneratedEvent{
		UserID:       userID,
		ColdStart:    coldStart,
		PoolExpanded: result.Report.WasRelaxed(domain.ConstraintPoolFilters),
	})
	s.sink.PlannerLatency(ctx, telemetry.LatencyEvent{Duration: time.Since(started)})

	log.Info("planned and persisted session pack",
		slog.String("user_id", userID.String()),
		slog.String("session_id", result.Plan.SessionID.String()),
		slog.Int("sequence", sequence),
		slog.Bool("cold_start", coldStart))

	return &PlanResult{Plan: result.Plan, Report: result.Report}, nil
}

// loadPools reads the primary and expanded candidate pools. The primary pool
// is restricted to subcategories the user has already worked in; the expanded
// pool is the full bank. A cold-start user has no preference signal, so their
// primary pool is the full bank and no expansion step exists.
func (s *serviceImpl) loadPools(
	ctx context.Context,
	history []domain.AttemptEvent,
	coldStart bool,
) (pool, expanded []domain.QuestionCandidate, err error) {
	if coldStart {
		pool, err = s.questions.ListCandidates(ctx, store.PoolFilter{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load candidate pool: %w", err)
		}
		return pool, nil, nil
	}

	subs := seenSubcategories(history)
	pool, err = s.questions.ListCandidates(ctx, store.PoolFilter{Subcategories: subs})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load candidate pool: %w", err)
	}
	expanded, err = s.questions.ListCandidates(ctx, store.PoolFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load expanded candidate pool: %w", err)
	}
	return pool, expanded, nil
}

// GetPlan implements Service.GetPlan.
func (s *serviceImpl) GetPlan(ctx context.Context, userID, sessionID uuid.UUID) (*PlanResult, error) {
	plan, report, err := s.plans.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != userID {
		return nil, service.ErrNotOwned
	}
	return &PlanResult{Plan: plan, Report: report}, nil
}

// RecordAttempt implements Service.RecordAttempt.
func (s *serviceImpl) RecordAttempt(ctx context.Context, event *domain.AttemptEvent) error {
	return s.attempts.Create(ctx, event)
}

// seenSubcategories returns the distinct subcategories in the history,
// ordered by first appearance.
func seenSubcategories(history []domain.AttemptEvent) []string {
	seen := make(map[string]struct{}, len(history))
	var subs []string
	for _, event := range history {
		if _, ok := seen[event.Subcategory]; ok {
			continue
		}
		seen[event.Subcategory] = struct{}{}
		subs = append(subs, event.Subcategory)
	}
	return subs
}

// candidateLookup builds an ID lookup over the pool the planner drew from.
func candidateLookup(pool []domain.QuestionCandidate) func(uuid.UUID) (domain.QuestionCandidate, bool) {
	byID := make(map[uuid.UUID]domain.QuestionCandidate, len(pool))
	for _, c := range pool {
		byID[c.QuestionID] = c
	}
	return func(id uuid.UUID) (domain.QuestionCandidate, bool) {
		c, ok := byID[id]
		return c, ok
	}
}
