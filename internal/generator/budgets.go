package generator

import (
	"time"

	"github.com/papapumpkin/mcegar/internal/budget"
)

// Budgets is the immutable configuration of one generator run.
type Budgets struct {
	TotalMaxTime time.Duration // Global budget; at least one solver call happens regardless.
	// PerCallMaxTime caps each solver call; budget.Unlimited disables the cap.
	PerCallMaxTime           time.Duration
	MaxRefinements           int // Forwarded to the solver; zero means unlimited.
	MaxPDBSize               int
	MaxCollectionSize        int
	StagnationLimit          time.Duration
	BlacklistTriggerFraction float64 // Fraction of TotalMaxTime after which blacklisting starts.
	BlacklistOnStagnation    bool
	WildcardPlans            bool
	RandomSeed               int64
}

// DefaultBudgets returns the budgets used when nothing is configured.
func DefaultBudgets() Budgets {
	return Budgets{
		TotalMaxTime:             100 * time.Second,
		PerCallMaxTime:           budget.Unlimited,
		MaxRefinements:           0,
		MaxPDBSize:               1000000,
		MaxCollectionSize:        10000000,
		StagnationLimit:          20 * time.Second,
		BlacklistTriggerFraction: 0.75,
		BlacklistOnStagnation:    true,
		WildcardPlans:            true,
		RandomSeed:               0,
	}
}

// blacklistStartTime is the elapsed time after which blacklisting turns on.
func (b Budgets) blacklistStartTime() time.Duration {
	if b.TotalMaxTime == budget.Unlimited {
		return budget.Unlimited
	}
	start := float64(b.TotalMaxTime) * b.BlacklistTriggerFraction
	if start >= float64(budget.Unlimited) {
		return budget.Unlimited
	}
	return time.Duration(start)
}

// callTimeLimit derives the time budget of the next solver call.
func (b Budgets) callTimeLimit(remaining time.Duration) time.Duration {
	return min(remaining, b.PerCallMaxTime)
}

// callPDBSizeLimit derives the PDB size budget of the next solver call. The
// value is passed through even when non-positive.
func (b Budgets) callPDBSizeLimit(remainingCollectionSize int) int {
	return min(remainingCollectionSize, b.MaxPDBSize)
}
