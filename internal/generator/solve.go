package generator

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/papapumpkin/mcegar/internal/pattern"
	"github.com/papapumpkin/mcegar/internal/pdb"
	"github.com/papapumpkin/mcegar/internal/refine"
	"github.com/papapumpkin/mcegar/internal/task"
)

// call holds the per-iteration inputs handed to the sub-solver.
type call struct {
	iteration         int
	goal              task.Fact
	blacklist         []int
	pdbSizeLimit      int
	collectionSizeCap int
	timeLimit         time.Duration
}

// callSeed derives the seed of the solver RNG for an iteration. It depends
// only on the base seed and the iteration so the run RNG is never advanced
// on the solver's behalf.
func callSeed(base int64, iteration int) int64 {
	return base + int64(iteration)
}

// solveOnce invokes the solver for a single seed goal and enforces the
// one-pattern, one-PDB contract. The solver receives its own copy of the
// blacklist. The returned pattern is canonical and the returned PDB handle
// is keyed by that same canonical pattern.
func (g *Generator) solveOnce(ctx context.Context, t *task.Task, c call) (pattern.Pattern, *pdb.Database, error) {
	req := refine.Request{
		Task:              t,
		Goal:              c.goal,
		Blacklist:         slices.Clone(c.blacklist),
		MaxRefinements:    g.Budgets.MaxRefinements,
		MaxPDBSize:        c.pdbSizeLimit,
		MaxCollectionSize: c.collectionSizeCap,
		TimeLimit:         c.timeLimit,
		WildcardPlans:     g.Budgets.WildcardPlans,
		Rand:              rand.New(rand.NewSource(callSeed(g.Budgets.RandomSeed, c.iteration))),
		Logger:            zap.NewNop(),
	}

	res, err := g.solver().Solve(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: iteration %d: %w", ErrSolverFailed, c.iteration, err)
	}
	if len(res.Patterns) != 1 || len(res.PDBs) != 1 {
		return nil, nil, fmt.Errorf("%w: iteration %d returned %d patterns and %d PDBs",
			ErrSolverContract, c.iteration, len(res.Patterns), len(res.PDBs))
	}
	if res.PDBs[0] == nil {
		return nil, nil, fmt.Errorf("%w: iteration %d returned a nil PDB", ErrSolverContract, c.iteration)
	}
	p, db := pattern.New(res.Patterns[0]...), res.PDBs[0]
	if !p.Equal(pattern.New(db.Pattern()...)) {
		return nil, nil, fmt.Errorf("%w: iteration %d returned pattern %v with a PDB for %v",
			ErrSolverContract, c.iteration, p, db.Pattern())
	}
	return p, pdb.New(p, db.Size()), nil
}
