// Package refine defines the contract of a single-pattern refinement solver
// and ships a reference implementation that grows a pattern along the causal
// dependencies of its seed goal variable.
package refine

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/papapumpkin/mcegar/internal/pattern"
	"github.com/papapumpkin/mcegar/internal/pdb"
	"github.com/papapumpkin/mcegar/internal/task"
)

// Request carries the inputs and budgets of one solver call.
type Request struct {
	Task *task.Task
	// Goal is the single seed goal fact; its variable starts the pattern.
	Goal task.Fact
	// Blacklist holds variable ids the solver must not add. It is owned by
	// the solver once passed in.
	Blacklist []int
	// MaxRefinements bounds refinement steps; zero means unlimited.
	MaxRefinements int
	MaxPDBSize     int
	// MaxCollectionSize caps the total size of the returned PDBs.
	MaxCollectionSize int
	TimeLimit         time.Duration
	WildcardPlans     bool
	// Rand is private to this call.
	Rand   *rand.Rand
	Logger *zap.Logger
}

// Result is what a solver call produces. A conforming solver returns exactly
// one pattern and the PDB built for it.
type Result struct {
	Patterns []pattern.Pattern
	PDBs     []*pdb.Database
}

// Solver computes a pattern and its PDB for a single seed goal. Calls are
// synchronous; a solver honors Request.TimeLimit itself.
type Solver interface {
	Solve(ctx context.Context, req Request) (Result, error)
}

// SolverFunc adapts a plain function to the Solver interface.
type SolverFunc func(ctx context.Context, req Request) (Result, error)

// Solve calls the wrapped function.
func (f SolverFunc) Solve(ctx context.Context, req Request) (Result, error) { return f(ctx, req) }
