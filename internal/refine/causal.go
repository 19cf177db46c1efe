package refine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/papapumpkin/mcegar/internal/budget"
	"github.com/papapumpkin/mcegar/internal/pattern"
	"github.com/papapumpkin/mcegar/internal/pdb"
	"github.com/papapumpkin/mcegar/internal/task"
)

var (
	// ErrNoTask is returned when a request carries no task.
	ErrNoTask = errors.New("refine: request has no task")
	// ErrInvalidGoal is returned when the seed goal names an unknown variable.
	ErrInvalidGoal = errors.New("refine: seed goal variable out of range")
)

// CausalRefiner is the reference Solver. Starting from the seed goal
// variable, each refinement step picks a random causal predecessor of the
// pattern that is neither blacklisted nor previously rejected, and adds it if
// the resulting PDB stays within the size limits. Variables that would
// exceed a limit are rejected for the rest of the call.
//
// With wildcard plans every pattern variable contributes candidates;
// otherwise only the most recently added variable does, falling back to the
// whole pattern once it has none.
type CausalRefiner struct {
	Clock clock.PassiveClock // Optional; nil uses the real clock.
}

// Solve runs the refinement for req and returns exactly one pattern and PDB.
func (r *CausalRefiner) Solve(ctx context.Context, req Request) (Result, error) {
	if req.Task == nil {
		return Result{}, ErrNoTask
	}
	seed := req.Goal.Var
	if seed < 0 || seed >= req.Task.NumVariables() {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidGoal, seed)
	}
	logger := req.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := req.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}

	tracker := budget.NewTracker(r.Clock, req.TimeLimit)
	rejected := make(map[int]bool, len(req.Blacklist))
	for _, v := range req.Blacklist {
		rejected[v] = true
	}

	p := pattern.New(seed)
	size := req.Task.Variables[seed].Domain
	last := seed

	for steps := 0; ; steps++ {
		if req.MaxRefinements > 0 && steps >= req.MaxRefinements {
			logger.Debug("refinement limit reached", zap.Int("steps", steps))
			break
		}
		if tracker.Expired() || ctx.Err() != nil {
			logger.Debug("time limit reached", zap.Duration("elapsed", tracker.Elapsed()))
			break
		}

		cands := candidates(req.Task, p, last, rejected, req.WildcardPlans)
		if len(cands) == 0 {
			logger.Debug("no flaws left", zap.Stringer("pattern", p))
			break
		}
		v := cands[rng.Intn(len(cands))]

		grown := pdb.SaturatingMul(size, req.Task.Variables[v].Domain)
		if grown > req.MaxPDBSize || grown > req.MaxCollectionSize {
			rejected[v] = true
			logger.Debug("rejecting variable over size limit",
				zap.Int("var", v), zap.Int("size", grown))
			continue
		}
		p = p.With(v)
		size = grown
		last = v
		logger.Debug("added variable", zap.Int("var", v), zap.Stringer("pattern", p))
	}

	return Result{
		Patterns: []pattern.Pattern{p},
		PDBs:     []*pdb.Database{pdb.New(p, size)},
	}, nil
}

// candidates returns the sorted causal predecessors eligible for addition.
func candidates(t *task.Task, p pattern.Pattern, last int, rejected map[int]bool, wildcard bool) []int {
	collect := func(sources []int) []int {
		var out []int
		for _, src := range sources {
			for _, pre := range t.Predecessors(src) {
				if p.Contains(pre) || rejected[pre] {
					continue
				}
				out = append(out, pre)
			}
		}
		slices.Sort(out)
		return slices.Compact(out)
	}

	if !wildcard {
		if out := collect([]int{last}); len(out) > 0 {
			return out
		}
	}
	return collect(p)
}
