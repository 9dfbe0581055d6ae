package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/quantprep/quantprep-api/internal/domain"
	"github.com/quantprep/quantprep-api/internal/domain/kernel"
	"github.com/quantprep/quantprep-api/internal/planner"
	"github.com/quantprep/quantprep-api/internal/service"
	"github.com/quantprep/quantprep-api/internal/store"
	"github.com/quantprep/quantprep-api/internal/telemetry"
)

func bankID(i int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", i))
}

// testBank returns a 12-question bank shaped exactly 3 easy, 6 medium,
// 3 hard, with two questions at each tracked PYQ score.
func testBank() []domain.QuestionCandidate {
	bank := make([]domain.QuestionCandidate, 0, 12)
	band := func(i int) domain.DifficultyBand {
		switch {
		case i <= 3:
			return domain.BandEasy
		case i <= 9:
			return domain.BandMedium
		default:
			return domain.BandHard
		}
	}
	pyq := func(i int) float64 {
		switch i {
		case 2, 3:
			return domain.PYQScoreHigh
		case 5, 6:
			return domain.PYQScoreHighest
		default:
			return 0
		}
	}
	for i := 1; i <= 12; i++ {
		bank = append(bank, domain.QuestionCandidate{
			QuestionID:        bankID(i),
			Band:              band(i),
			Subcategory:       "algebra",
			TypeOfQuestion:    fmt.Sprintf("type-%d", i%3),
			PYQFrequencyScore: pyq(i),
		})
	}
	return bank
}

type fakePlanStore struct {
	mu      sync.Mutex
	plans   map[uuid.UUID]*domain.SessionPackPlan
	reports map[uuid.UUID]*domain.ConstraintReport
	counts  map[uuid.UUID]int
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{
		plans:   make(map[uuid.UUID]*domain.SessionPackPlan),
		reports: make(map[uuid.UUID]*domain.ConstraintReport),
		counts:  make(map[uuid.UUID]int),
	}
}

func (f *fakePlanStore) Create(_ context.Context, plan *domain.SessionPackPlan, report *domain.ConstraintReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.plans[plan.SessionID]; exists {
		return store.ErrPlanExists
	}
	f.plans[plan.SessionID] = plan
	f.reports[plan.SessionID] = report
	f.counts[plan.UserID]++
	return nil
}

func (f *fakePlanStore) GetByID(_ context.Context, sessionID uuid.UUID) (*domain.SessionPackPlan, *domain.ConstraintReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	plan, ok := f.plans[sessionID]
	if !ok {
		return nil, nil, store.ErrPlanNotFound
	}
	return plan, f.reports[sessionID], nil
}

func (f *fakePlanStore) CountForUser(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[userID], nil
}

func (f *fakePlanStore) WithTx(_ *sql.Tx) store.PlanStore { return f }

type coverageCall struct {
	sequence int
	pairs    []string
}

type fakeCoverageStore struct {
	mu       sync.Mutex
	snapshot map[string]domain.CoverageRecord
	recorded []coverageCall
}

func newFakeCoverageStore() *fakeCoverageStore {
	return &fakeCoverageStore{snapshot: make(map[string]domain.CoverageRecord)}
}

func (f *fakeCoverageStore) GetSnapshot(_ context.Context, _ uuid.UUID) (map[string]domain.CoverageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]domain.CoverageRecord, len(f.snapshot))
	for k, v := range f.snapshot {
		out[k] = v
	}
	return out, nil
}

func (f *fakeCoverageStore) RecordSession(_ context.Context, _ uuid.UUID, sequence int, pairs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, coverageCall{sequence: sequence, pairs: pairs})
	return nil
}

func (f *fakeCoverageStore) WithTx(_ *sql.Tx) store.CoverageStore { return f }

type fakeAttemptStore struct {
	mu      sync.Mutex
	history map[uuid.UUID][]domain.AttemptEvent
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{history: make(map[uuid.UUID][]domain.AttemptEvent)}
}

func (f *fakeAttemptStore) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.AttemptEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AttemptEvent{}, f.history[userID]...), nil
}

func (f *fakeAttemptStore) Create(_ context.Context, event *domain.AttemptEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history[event.UserID] = append(f.history[event.UserID], *event)
	return nil
}

type fakeQuestionStore struct {
	mu      sync.Mutex
	bank    []domain.QuestionCandidate
	filters []store.PoolFilter
}

func (f *fakeQuestionStore) ListCandidates(_ context.Context, filter store.PoolFilter) ([]domain.QuestionCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)

	allowed := make(map[string]bool, len(filter.Subcategories))
	for _, sub := range filter.Subcategories {
		allowed[sub] = true
	}
	var out []domain.QuestionCandidate
	for _, c := range f.bank {
		if len(allowed) > 0 && !allowed[c.Subcategory] {
			continue
		}
		if c.PYQFrequencyScore < filter.MinPYQFrequencyScore {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type fixture struct {
	svc      Service
	plans    *fakePlanStore
	coverage *fakeCoverageStore
	attempts *fakeAttemptStore
	bank     *fakeQuestionStore
	sink     *telemetry.MemorySink
	mock     sqlmock.Sqlmock
}

func newFixture(t *testing.T, bank []domain.QuestionCandidate) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		plans:    newFakePlanStore(),
		coverage: newFakeCoverageStore(),
		attempts: newFakeAttemptStore(),
		bank:     &fakeQuestionStore{bank: bank},
		sink:     telemetry.NewMemorySink(),
		mock:     mock,
	}
	packPlanner := planner.NewPackPlanner(
		kernel.NewServiceWithParams(kernel.NewParams(kernel.ParamsConfig{})),
		nil,
		f.sink,
		time.Second,
		nil,
	)
	f.svc = NewService(
		db,
		f.plans,
		f.coverage,
		f.attempts,
		f.bank,
		packPlanner,
		planner.NewValidator(),
		f.sink,
		nil,
	)
	return f
}

func TestPlanSessionColdStart(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testBank())
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	userID := uuid.New()

	result, err := f.svc.PlanSession(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, result.Plan)
	require.NotNil(t, result.Report)

	assert.Equal(t, 1, result.Plan.Sequence)
	assert.Equal(t, userID, result.Plan.UserID)
	assert.Len(t, result.Plan.Items, domain.PackSize)
	assert.Empty(t, result.Report.Relaxed)

	// Persisted plan and coverage update happen together.
	_, ok := f.plans.plans[result.Plan.SessionID]
	assert.True(t, ok)
	require.Len(t, f.coverage.recorded, 1)
	assert.Equal(t, 1, f.coverage.recorded[0].sequence)
	assert.NotEmpty(t, f.coverage.recorded[0].pairs)

	packs := f.sink.Packs()
	require.Len(t, packs, 1)
	assert.True(t, packs[0].ColdStart)
	assert.False(t, packs[0].PoolExpanded)
	assert.Len(t, f.sink.Latencies(), 1)

	// Cold start loads the full bank exactly once.
	require.Len(t, f.bank.filters, 1)
	assert.Empty(t, f.bank.filters[0].Subcategories)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlanSessionSequenceFollowsPriorPlans(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testBank())
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	userID := uuid.New()
	f.plans.counts[userID] = 3

	result, err := f.svc.PlanSession(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Plan.Sequence)
	require.Len(t, f.coverage.recorded, 1)
	assert.Equal(t, 4, f.coverage.recorded[0].sequence)
}

func TestPlanSessionWarmUserRestrictsPool(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testBank())
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	userID := uuid.New()
	f.attempts.history[userID] = []domain.AttemptEvent{{
		UserID:                 userID,
		QuestionID:             bankID(1),
		WasCorrect:             true,
		SessionSequenceAtServe: 1,
		Band:                   domain.BandEasy,
		Subcategory:            "algebra",
		TypeOfQuestion:         "type-1",
		RecordedAt:             time.Now().UTC().Add(-time.Hour),
	}}

	result, err := f.svc.PlanSession(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, result.Plan.Items, domain.PackSize)

	// Primary pool restricted to the user's subcategories, expanded pool is
	// the full bank.
	require.Len(t, f.bank.filters, 2)
	assert.Equal(t, []string{"algebra"}, f.bank.filters[0].Subcategories)
	assert.Empty(t, f.bank.filters[1].Subcategories)

	packs := f.sink.Packs()
	require.Len(t, packs, 1)
	assert.False(t, packs[0].ColdStart)
}

func TestPlanSessionInfeasibleBankPersistsNothing(t *testing.T) {
	t.Parallel()

	// Drop all hard questions so no relaxation can produce a valid pack.
	f := newFixture(t, testBank()[:9])
	userID := uuid.New()

	_, err := f.svc.PlanSession(context.Background(), userID)
	require.Error(t, err)
	assert.ErrorIs(t, err, planner.ErrInfeasiblePack)

	assert.Empty(t, f.plans.plans)
	assert.Empty(t, f.coverage.recorded)
	assert.Empty(t, f.sink.Packs())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlanSessionRejectsConcurrentCall(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testBank())
	userID := uuid.New()

	impl, ok := f.svc.(*serviceImpl)
	require.True(t, ok)
	require.True(t, impl.locks.tryAcquire(userID))
	defer impl.locks.release(userID)

	_, err := f.svc.PlanSession(context.Background(), userID)
	assert.ErrorIs(t, err, service.ErrPlanInProgress)

	// A different user is unaffected by the held lock.
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err = f.svc.PlanSession(context.Background(), uuid.New())
	assert.NoError(t, err)
}

func TestPlanSessionRejectsNilUser(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testBank())
	_, err := f.svc.PlanSession(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestGetPlanEnforcesOwnership(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testBank())
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	owner := uuid.New()

	created, err := f.svc.PlanSession(context.Background(), owner)
	require.NoError(t, err)

	got, err := f.svc.GetPlan(context.Background(), owner, created.Plan.SessionID)
	require.NoError(t, err)
	assert.Equal(t, created.Plan.SessionID, got.Plan.SessionID)

	_, err = f.svc.GetPlan(context.Background(), uuid.New(), created.Plan.SessionID)
	assert.ErrorIs(t, err, service.ErrNotOwned)

	_, err = f.svc.GetPlan(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, store.ErrPlanNotFound)
}

func TestRecordAttemptDelegatesToStore(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testBank())
	userID := uuid.New()
	event := &domain.AttemptEvent{
		UserID:                 userID,
		QuestionID:             bankID(7),
		WasCorrect:             false,
		Skipped:                true,
		SessionSequenceAtServe: 1,
		Band:                   domain.BandMedium,
		Subcategory:            "algebra",
		TypeOfQuestion:         "type-1",
		RecordedAt:             time.Now().UTC(),
	}

	require.NoError(t, f.svc.RecordAttempt(context.Background(), event))

	stored, err := f.attempts.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, bankID(7), stored[0].QuestionID)
	assert.True(t, stored[0].Skipped)
}

func TestSeenSubcategoriesFirstAppearanceOrder(t *testing.T) {
	t.Parallel()

	history := []domain.AttemptEvent{
		{Subcategory: "geometry"},
		{Subcategory: "algebra"},
		{Subcategory: "geometry"},
		{Subcategory: "arithmetic"},
	}
	assert.Equal(t, []string{"geometry", "algebra", "arithmetic"}, seenSubcategories(history))
}
