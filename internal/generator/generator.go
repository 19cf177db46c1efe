// Package generator builds a diversified pattern collection by calling a
// single-pattern refinement solver repeatedly under a shared time and size
// budget. It rotates over the goal facts, deduplicates the returned
// patterns and blacklists random non-goal variables once progress stalls or
// a configured share of the time budget has passed.
package generator

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/papapumpkin/mcegar/internal/budget"
	"github.com/papapumpkin/mcegar/internal/pattern"
	"github.com/papapumpkin/mcegar/internal/pdb"
	"github.com/papapumpkin/mcegar/internal/refine"
	"github.com/papapumpkin/mcegar/internal/task"
)

var (
	// ErrNoGoals is returned when the task has no goal facts to seed from.
	ErrNoGoals = errors.New("generator: task has no goal facts")
	// ErrSolverContract is the fatal error returned when the solver does not
	// return exactly one pattern and one PDB. No result is produced.
	ErrSolverContract = errors.New("generator: solver contract violated")
	// ErrSolverFailed wraps an error returned by the solver itself.
	ErrSolverFailed = errors.New("generator: solver failed")
)

// Generator runs the multiple-restart refinement loop.
type Generator struct {
	Solver  refine.Solver      // Optional; nil uses refine.CausalRefiner on Clock.
	Budgets Budgets            // Immutable for the duration of a run.
	Clock   clock.PassiveClock // Optional; nil uses the real clock.
	Logger  *zap.Logger        // Optional; nil disables logging.
	Hooks   []Hook             // Observers; they never influence the run.
}

// Result is the outcome of a run: the accepted PDBs, their patterns in
// acceptance order, and run statistics.
type Result struct {
	Patterns []pattern.Pattern
	PDBs     []*pdb.Database
	Stats    Stats
}

// runState is the mutable state of one run. Only Generate touches it.
type runState struct {
	tracker      *budget.Tracker
	rotator      *GoalRotator
	blacklister  *Blacklister
	seen         *pattern.Set
	assembler    *Assembler
	stagnation   StagnationMonitor
	blacklisting bool
	enabledAt    time.Duration
	iteration    int
	duplicates   int
}

// Generate runs the loop on t until the collection size budget is used up,
// the time budget expires or stagnation persists. At least one solver call
// always happens. rng drives goal order and blacklists; nil seeds a fresh
// generator from Budgets.RandomSeed. Normal terminations return a valid,
// possibly empty result; the only errors are precondition failures and
// solver failures, which abort the run without a result.
func (g *Generator) Generate(ctx context.Context, t *task.Task, rng *rand.Rand) (*Result, error) {
	if t == nil || len(t.Goals) == 0 {
		return nil, ErrNoGoals
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(g.Budgets.RandomSeed))
	}
	log := g.logger()

	st := &runState{
		tracker:     budget.NewTracker(g.Clock, g.Budgets.TotalMaxTime),
		rotator:     NewGoalRotator(t.Goals, rng),
		blacklister: NewBlacklister(t.NonGoalVariables()),
		seen:        pattern.NewSet(),
		assembler:   NewAssembler(g.Budgets.MaxCollectionSize),
		iteration:   1,
	}
	log.Info("starting multiple CEGAR",
		zap.String("task", t.Name),
		zap.Int("goals", len(t.Goals)),
		zap.Duration("total_max_time", g.Budgets.TotalMaxTime),
		zap.Int("max_collection_size", g.Budgets.MaxCollectionSize),
		zap.Int64("random_seed", g.Budgets.RandomSeed))
	log.Debug("goal variables", zap.Ints("vars", st.rotator.Variables()))
	log.Debug("non-goal variables", zap.Ints("vars", t.NonGoalVariables()))

	var reason StopReason
	for {
		g.checkBlacklistTrigger(ctx, st)

		var blacklist []int
		if st.blacklisting {
			blacklist = st.blacklister.Draw(rng)
			log.Debug("blacklisting", zap.Int("iteration", st.iteration), zap.Ints("vars", blacklist))
		}
		c := call{
			iteration:         st.iteration,
			goal:              st.rotator.Current(),
			blacklist:         blacklist,
			pdbSizeLimit:      g.Budgets.callPDBSizeLimit(st.assembler.Remaining()),
			collectionSizeCap: st.assembler.Remaining(),
			timeLimit:         g.Budgets.callTimeLimit(st.tracker.Remaining()),
		}
		p, db, err := g.solveOnce(ctx, t, c)
		if err != nil {
			log.Error("aborting multiple CEGAR", zap.Int("iteration", st.iteration), zap.Error(err))
			return nil, err
		}

		accepted := st.seen.Insert(p)
		if accepted {
			st.stagnation.Reset()
			st.assembler.Add(db)
			log.Debug("accepted pattern",
				zap.Int("iteration", st.iteration),
				zap.Stringer("pattern", p),
				zap.Int("pdb_size", db.Size()))
		} else {
			st.duplicates++
			if st.stagnation.MarkDuplicate(st.tracker.Elapsed()) {
				log.Debug("stagnation started", zap.Duration("elapsed", st.stagnation.Start()))
				g.emit(ctx, Event{
					Kind:      EventStagnationStarted,
					Iteration: st.iteration,
					Elapsed:   st.stagnation.Start(),
				})
			}
		}
		g.emit(ctx, Event{
			Kind:          EventIteration,
			Iteration:     st.iteration,
			Elapsed:       st.tracker.Elapsed(),
			Goal:          c.goal,
			Blacklist:     blacklist,
			Pattern:       p,
			PDBSize:       db.Size(),
			Accepted:      accepted,
			RemainingSize: st.assembler.Remaining(),
		})

		if reason = g.checkTermination(ctx, st, accepted); reason != StopReasonNone {
			break
		}

		st.iteration++
		st.rotator.Advance()
	}

	res := g.finish(st, reason)
	log.Info("multiple CEGAR done",
		zap.String("stop_reason", string(reason)),
		zap.Int("iterations", res.Stats.Iterations),
		zap.Int("patterns", len(res.Patterns)),
		zap.Int("collection_size", res.Stats.CollectionSize),
		zap.Duration("elapsed", res.Stats.Elapsed))
	g.emit(ctx, Event{
		Kind:          EventFinished,
		Iteration:     res.Stats.Iterations,
		Elapsed:       res.Stats.Elapsed,
		RemainingSize: st.assembler.Remaining(),
		Reason:        string(reason),
		Stats:         &res.Stats,
	})
	return res, nil
}

// checkBlacklistTrigger turns blacklisting on once elapsed time passes the
// configured share of the total budget.
func (g *Generator) checkBlacklistTrigger(ctx context.Context, st *runState) {
	if st.blacklisting || st.tracker.Elapsed() <= g.Budgets.blacklistStartTime() {
		return
	}
	g.enableBlacklisting(ctx, st, ReasonTrigger)
}

// checkTermination applies the size, time and stagnation criteria in that
// order after a solver call and returns the reason to stop, if any.
func (g *Generator) checkTermination(ctx context.Context, st *runState, accepted bool) StopReason {
	if accepted && st.assembler.Remaining() <= 0 {
		g.logger().Info("collection size limit reached")
		return StopReasonCollectionSize
	}
	if st.tracker.Expired() {
		g.logger().Info("time limit reached")
		return StopReasonTimeLimit
	}
	if !st.stagnation.Exceeded(st.tracker.Elapsed(), g.Budgets.StagnationLimit) {
		return StopReasonNone
	}
	action, reason := decideOnStagnation(g.Budgets.BlacklistOnStagnation, st.blacklisting)
	if action == stagnationTerminate {
		g.logger().Info("stagnation limit reached", zap.Bool("blacklisting", st.blacklisting))
		return reason
	}
	g.enableBlacklisting(ctx, st, ReasonStagnation)
	return StopReasonNone
}

// enableBlacklisting switches blacklisting on and re-arms the stagnation
// monitor. Blacklisting stays on for the rest of the run.
func (g *Generator) enableBlacklisting(ctx context.Context, st *runState, cause string) {
	st.blacklisting = true
	st.enabledAt = st.tracker.Elapsed()
	st.stagnation.Reset()
	g.logger().Info("enabling blacklisting",
		zap.String("reason", cause),
		zap.Duration("elapsed", st.enabledAt))
	g.emit(ctx, Event{
		Kind:      EventBlacklistingEnabled,
		Iteration: st.iteration,
		Elapsed:   st.enabledAt,
		Reason:    cause,
	})
}

// finish assembles the result and statistics.
func (g *Generator) finish(st *runState, reason StopReason) *Result {
	elapsed := st.tracker.Elapsed()
	stats := Stats{
		Iterations:          st.iteration,
		Elapsed:             elapsed,
		MeanIterationTime:   meanIterationTime(elapsed, st.iteration),
		CollectionSize:      st.assembler.CollectionSize(),
		Accepted:            st.assembler.Len(),
		Duplicates:          st.duplicates,
		BlacklistingEnabled: st.blacklisting,
		StopReason:          reason,
	}
	if st.blacklisting {
		stats.BlacklistingEnabledAt = st.enabledAt
	}
	return &Result{
		Patterns: st.assembler.Patterns(),
		PDBs:     st.assembler.PDBs(),
		Stats:    stats,
	}
}

// emit delivers an event to every hook.
func (g *Generator) emit(ctx context.Context, e Event) {
	for _, h := range g.Hooks {
		h.OnEvent(ctx, e)
	}
}

func (g *Generator) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

func (g *Generator) solver() refine.Solver {
	if g.Solver == nil {
		return &refine.CausalRefiner{Clock: g.Clock}
	}
	return g.Solver
}
