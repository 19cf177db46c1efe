package generator

import (
	"fmt"
	"time"

	"github.com/papapumpkin/mcegar/internal/pattern"
	"github.com/papapumpkin/mcegar/internal/pdb"
)

// StopReason records which termination criterion ended a run.
type StopReason string

const (
	// StopReasonNone means the run has not stopped.
	StopReasonNone StopReason = ""
	// StopReasonCollectionSize means the collection size budget was used up.
	StopReasonCollectionSize StopReason = "collection_size"
	// StopReasonTimeLimit means the global time budget expired.
	StopReasonTimeLimit StopReason = "time_limit"
	// StopReasonStagnation means no new pattern appeared within the
	// stagnation limit and escalation to blacklisting was disabled.
	StopReasonStagnation StopReason = "stagnation"
	// StopReasonStagnationBlacklisted means stagnation persisted while
	// blacklisting was already active.
	StopReasonStagnationBlacklisted StopReason = "stagnation_after_blacklisting"
)

// String describes the stop reason for humans.
func (r StopReason) String() string {
	switch r {
	case StopReasonNone:
		return "running"
	case StopReasonCollectionSize:
		return "collection size limit reached"
	case StopReasonTimeLimit:
		return "time limit reached"
	case StopReasonStagnation:
		return "stagnation limit reached"
	case StopReasonStagnationBlacklisted:
		return "stagnation limit reached after blacklisting"
	default:
		return fmt.Sprintf("unknown (%s)", string(r))
	}
}

// Stats summarizes a finished run.
type Stats struct {
	Iterations        int
	Elapsed           time.Duration
	MeanIterationTime time.Duration
	// CollectionSize is the summed size of all accepted PDBs.
	CollectionSize        int
	Accepted              int
	Duplicates            int
	BlacklistingEnabled   bool
	BlacklistingEnabledAt time.Duration // Meaningful only when BlacklistingEnabled.
	StopReason            StopReason
}

// Assembler accumulates accepted PDBs in acceptance order and tracks the
// remaining collection size budget.
type Assembler struct {
	maxSize   int
	remaining int
	pdbs      []*pdb.Database
}

// NewAssembler creates an empty assembler for the given collection budget.
func NewAssembler(maxCollectionSize int) *Assembler {
	return &Assembler{maxSize: maxCollectionSize, remaining: maxCollectionSize}
}

// Add appends db and returns the remaining collection size, which may drop
// to zero or below.
func (a *Assembler) Add(db *pdb.Database) int {
	a.pdbs = append(a.pdbs, db)
	a.remaining -= db.Size()
	return a.remaining
}

// Remaining returns the unused collection size budget.
func (a *Assembler) Remaining() int {
	return a.remaining
}

// CollectionSize returns the size consumed by accepted PDBs.
func (a *Assembler) CollectionSize() int {
	return a.maxSize - a.remaining
}

// Len returns the number of accepted PDBs.
func (a *Assembler) Len() int {
	return len(a.pdbs)
}

// PDBs returns the accepted PDBs in acceptance order.
func (a *Assembler) PDBs() []*pdb.Database {
	return a.pdbs
}

// Patterns derives the pattern collection from the accepted PDBs, preserving
// acceptance order.
func (a *Assembler) Patterns() []pattern.Pattern {
	patterns := make([]pattern.Pattern, 0, len(a.pdbs))
	for _, db := range a.pdbs {
		patterns = append(patterns, db.Pattern())
	}
	return patterns
}

// meanIterationTime divides elapsed evenly over iterations.
func meanIterationTime(elapsed time.Duration, iterations int) time.Duration {
	if iterations <= 0 {
		return 0
	}
	return elapsed / time.Duration(iterations)
}
