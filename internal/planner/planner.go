package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/assist"
	"github.com/quantprep/quantprep-api/internal/domain"
	"github.com/quantprep/quantprep-api/internal/domain/kernel"
	"github.com/quantprep/quantprep-api/internal/platform/logger"
	"github.com/quantprep/quantprep-api/internal/telemetry"
)

// Input carries everything one planning call needs. The planner performs no
// I/O of its own apart from the optional assist call; all reads happen before
// planning starts so the deterministic core sees a frozen snapshot.
type Input struct {
	UserID   uuid.UUID
	Sequence int

	// Pool is the primary candidate pool after preference filters.
	Pool []domain.QuestionCandidate

	// ExpandedPool is the wider pool (filters dropped) used by the first
	// relaxation ladder step. Leave nil or equal-sized to skip the step.
	ExpandedPool []domain.QuestionCandidate

	History  []domain.AttemptEvent
	Coverage map[string]domain.CoverageRecord
}

// Result is a finished plan with its constraint report. The report accounts
// for every constraint in the fixed set, met or relaxed.
type Result struct {
	Plan     *domain.SessionPackPlan
	Report   *domain.ConstraintReport
	PoolUsed []domain.QuestionCandidate
}

// PackPlanner drives pack assembly through the relaxation ladder. Ladder
// steps are cumulative and strictly ordered: expand the pool, consult the
// assist, loosen the coverage boost. The forbidden constraints are never
// touched; when the ladder is exhausted planning fails instead.
type PackPlanner struct {
	kernel        kernel.Service
	reranker      assist.Reranker
	sink          telemetry.Sink
	assistTimeout time.Duration
	logger        *slog.Logger
}

// NewPackPlanner creates a PackPlanner. The reranker may be nil, in which
// case the assist ladder step is skipped. Panics if kernel or sink is nil.
func NewPackPlanner(
	kernelService kernel.Service,
	reranker assist.Reranker,
	sink telemetry.Sink,
	assistTimeout time.Duration,
	log *slog.Logger,
) *PackPlanner {
	if kernelService == nil {
		panic("kernel service cannot be nil for PackPlanner")
	}
	if sink == nil {
		panic("telemetry sink cannot be nil for PackPlanner")
	}
	if log == nil {
		log = slog.Default()
	}
	if assistTimeout <= 0 {
		assistTimeout = 15 * time.Second
	}
	return &PackPlanner{
		kernel:        kernelService,
		reranker:      reranker,
		sink:          sink,
		assistTimeout: assistTimeout,
		logger:        log.With(slog.String("component", "pack_planner")),
	}
}

// PlanPack assembles the next session pack for the user. It returns
// ErrInfeasiblePack when no valid pack exists even after every permitted
// relaxation; assist failures are recoverable and never fail the call.
func (p *PackPlanner) PlanPack(ctx context.Context, input Input) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)
	started := time.Now()

	report := domain.NewConstraintReport()
	shortfallSeen := make(map[telemetry.PYQShortfallType]bool)

	ranked, readiness := p.kernel.ScoreAndClassify(
		input.Pool, input.History, input.Coverage, input.Sequence)
	pool := input.Pool

	items, fail := assemble(ranked)

	// Ladder step 1: widen the candidate pool.
	if items == nil && len(input.ExpandedPool) > len(input.Pool) {
		p.noteShortfall(ctx, fail, shortfallSeen)
		log.Info("expanding candidate pool",
			slog.Int("primary_pool", len(input.Pool)),
			slog.Int("expanded_pool", len(input.ExpandedPool)))
		pool = input.ExpandedPool
		ranked = p.kernel.Rescore(pool, readiness, input.Coverage, input.Sequence, true)
		items, fail = assemble(ranked)
		report.MarkRelaxed(domain.ConstraintPoolFilters, domain.ReasonPoolExpanded)
	}

	// Ladder step 2: let the external assist re-rank the pool.
	var assistOrder []uuid.UUID
	if items == nil && p.reranker != nil {
		p.noteShortfall(ctx, fail, shortfallSeen)
		if order, tokens, ok := p.tryAssist(ctx, input.UserID, pool, readiness); ok {
			report.Meta.RetryUsed = true
			report.Meta.TokensUsed = tokens
			assistOrder = order
			ranked = applyRerank(ranked, assistOrder)
			items, fail = assemble(ranked)
			report.MarkRelaxed(domain.ConstraintRankPolicy, domain.ReasonAssistRerank)
		}
	}

	// Ladder step 3: drop the coverage rotation boost. An earlier assist
	// reorder stays in effect on top of the rescored pool.
	if items == nil {
		p.noteShortfall(ctx, fail, shortfallSeen)
		log.Info("loosening coverage boost for feasibility")
		ranked = p.kernel.Rescore(pool, readiness, input.Coverage, input.Sequence, false)
		if assistOrder != nil {
			ranked = applyRerank(ranked, assistOrder)
		}
		items, fail = assemble(ranked)
		report.MarkRelaxed(domain.ConstraintCoverageRecency, domain.ReasonCoverageBoostLoosened)
	}

	if items == nil {
		p.noteShortfall(ctx, fail, shortfallSeen)
		log.Warn("pack infeasible after full relaxation ladder",
			slog.String("user_id", input.UserID.String()),
			slog.Int("pool_size", len(pool)))
		return nil, fmt.Errorf("%w: %s", ErrInfeasiblePack, describeFailure(fail))
	}

	plan, err := domain.NewSessionPackPlan(uuid.New(), input.UserID, input.Sequence, items)
	if err != nil {
		return nil, fmt.Errorf("failed to construct plan: %w", err)
	}

	for _, name := range domain.AllConstraints() {
		if !report.WasRelaxed(name) {
			report.MarkMet(name)
		}
	}
	report.Meta.ProcessingTimeMs = time.Since(started).Milliseconds()

	for _, rel := range report.Relaxed {
		p.sink.RelaxationApplied(ctx, telemetry.RelaxationEvent{
			Constraint: rel.Name,
			Reason:     rel.Reason,
		})
	}

	log.Info("planned session pack",
		slog.String("user_id", input.UserID.String()),
		slog.Int("sequence", input.Sequence),
		slog.Int("relaxations", len(report.Relaxed)),
		slog.Int64("elapsed_ms", report.Meta.ProcessingTimeMs))

	return &Result{Plan: plan, Report: report, PoolUsed: pool}, nil
}

// tryAssist invokes the reranker under the configured timeout. Any failure,
// timeout included, is recoverable: the caller keeps its deterministic
// ranking and planning proceeds.
func (p *PackPlanner) tryAssist(
	ctx context.Context,
	userID uuid.UUID,
	pool []domain.QuestionCandidate,
	readiness map[string]domain.ReadinessLevel,
) ([]uuid.UUID, int, bool) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	assistCtx, cancel := context.WithTimeout(ctx, p.assistTimeout)
	defer cancel()

	result, err := p.reranker.Rerank(assistCtx, assist.RerankRequest{
		UserID:     userID,
		Candidates: pool,
		Readiness:  readiness,
	})
	if err != nil {
		timedOut := assistCtx.Err() == context.DeadlineExceeded
		log.Warn("assist rerank failed, keeping deterministic ranking",
			slog.String("error", err.Error()),
			slog.Bool("timed_out", timedOut))
		p.sink.AssistOutcome(ctx, telemetry.AssistEvent{
			TimedOut: timedOut,
			Failed:   !timedOut,
		})
		return nil, 0, false
	}

	p.sink.AssistOutcome(ctx, telemetry.AssistEvent{TokensUsed: result.TokensUsed})
	return result.RankedQuestionIDs, result.TokensUsed, true
}

// applyRerank reorders the ranked slice by the assist's ID order. IDs the
// assist did not mention keep their deterministic relative order after the
// mentioned ones; unknown IDs are ignored.
func applyRerank(ranked []kernel.ScoredCandidate, order []uuid.UUID) []kernel.ScoredCandidate {
	byID := make(map[uuid.UUID]int, len(ranked))
	for i, c := range ranked {
		byID[c.QuestionID] = i
	}

	out := make([]kernel.ScoredCandidate, 0, len(ranked))
	taken := make(map[uuid.UUID]bool, len(order))
	for _, id := range order {
		if i, ok := byID[id]; ok && !taken[id] {
			out = append(out, ranked[i])
			taken[id] = true
		}
	}
	for _, c := range ranked {
		if !taken[c.QuestionID] {
			out = append(out, c)
		}
	}
	return out
}

// noteShortfall emits PYQ shortfall telemetry once per shortfall type per
// planning call.
func (p *PackPlanner) noteShortfall(
	ctx context.Context,
	fail *assembleFailure,
	seen map[telemetry.PYQShortfallType]bool,
) {
	if fail == nil || fail.Kind != failurePYQShortage || seen[fail.Shortfall] {
		return
	}
	seen[fail.Shortfall] = true
	p.sink.PYQShortfall(ctx, telemetry.PYQShortfallEvent{
		Shortfall: fail.Shortfall,
		Expected:  fail.Expected,
		Actual:    fail.Actual,
	})
}

// describeFailure renders the last assembly failure for error messages.
func describeFailure(fail *assembleFailure) string {
	if fail == nil {
		return "unknown assembly failure"
	}
	switch fail.Kind {
	case failureBandShortage:
		return fmt.Sprintf("band %q has %d candidates, need %d", fail.Band, fail.Have, fail.Need)
	case failurePYQShortage:
		return fmt.Sprintf("%s count %d below minimum %d", fail.Shortfall, fail.Actual, fail.Expected)
	default:
		return "unknown assembly failure"
	}
}
