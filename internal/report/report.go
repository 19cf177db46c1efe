// Package report persists the outcome of a generator run as a TOML result
// file and renders a human-readable summary of it.
package report

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/mcegar/internal/budget"
	"github.com/papapumpkin/mcegar/internal/generator"
	"github.com/papapumpkin/mcegar/internal/task"
)

// ErrNoResult is returned when a report is built without a run result.
var ErrNoResult = errors.New("report: no result")

// File is the TOML-serializable form of a finished run. Durations are stored
// as nanosecond int64 values and budgets as seconds, with inf for unlimited.
type File struct {
	Run      RunRecord       `toml:"run"`
	Budgets  BudgetsRecord   `toml:"budgets"`
	Stats    StatsRecord     `toml:"stats"`
	Patterns []PatternRecord `toml:"patterns"`
}

// RunRecord identifies the run.
type RunRecord struct {
	ID        string    `toml:"id"`
	Task      string    `toml:"task"`
	StartedAt time.Time `toml:"started_at"`
}

// BudgetsRecord is the TOML form of generator.Budgets.
type BudgetsRecord struct {
	TotalMaxTime             float64 `toml:"total_max_time"`
	MaxTime                  float64 `toml:"max_time"`
	MaxRefinements           int     `toml:"max_refinements"`
	MaxPDBSize               int     `toml:"max_pdb_size"`
	MaxCollectionSize        int     `toml:"max_collection_size"`
	StagnationLimit          float64 `toml:"stagnation_limit"`
	BlacklistTriggerFraction float64 `toml:"blacklist_trigger_percentage"`
	BlacklistOnStagnation    bool    `toml:"blacklist_on_stagnation"`
	WildcardPlans            bool    `toml:"wildcard_plans"`
	RandomSeed               int64   `toml:"random_seed"`
}

// StatsRecord is the TOML form of generator.Stats.
type StatsRecord struct {
	Iterations            int    `toml:"iterations"`
	ElapsedNs             int64  `toml:"elapsed_ns"`
	MeanIterationNs       int64  `toml:"mean_iteration_ns"`
	CollectionSize        int    `toml:"collection_size"`
	Accepted              int    `toml:"accepted"`
	Duplicates            int    `toml:"duplicates"`
	BlacklistingEnabled   bool   `toml:"blacklisting_enabled"`
	BlacklistingEnabledNs int64  `toml:"blacklisting_enabled_at_ns,omitempty"`
	StopReason            string `toml:"stop_reason"`
}

// PatternRecord describes one accepted pattern and its PDB.
type PatternRecord struct {
	Variables []int    `toml:"variables"`
	Names     []string `toml:"names"`
	Size      int      `toml:"size"`
}

// New builds the report of a run on t. Patterns keep acceptance order.
func New(runID string, t *task.Task, b generator.Budgets, res *generator.Result, startedAt time.Time) (File, error) {
	if res == nil {
		return File{}, ErrNoResult
	}
	f := File{
		Run: RunRecord{ID: runID, StartedAt: startedAt.UTC()},
		Budgets: BudgetsRecord{
			TotalMaxTime:             seconds(b.TotalMaxTime),
			MaxTime:                  seconds(b.PerCallMaxTime),
			MaxRefinements:           b.MaxRefinements,
			MaxPDBSize:               b.MaxPDBSize,
			MaxCollectionSize:        b.MaxCollectionSize,
			StagnationLimit:          seconds(b.StagnationLimit),
			BlacklistTriggerFraction: b.BlacklistTriggerFraction,
			BlacklistOnStagnation:    b.BlacklistOnStagnation,
			WildcardPlans:            b.WildcardPlans,
			RandomSeed:               b.RandomSeed,
		},
		Stats: StatsRecord{
			Iterations:          res.Stats.Iterations,
			ElapsedNs:           int64(res.Stats.Elapsed),
			MeanIterationNs:     int64(res.Stats.MeanIterationTime),
			CollectionSize:      res.Stats.CollectionSize,
			Accepted:            res.Stats.Accepted,
			Duplicates:          res.Stats.Duplicates,
			BlacklistingEnabled: res.Stats.BlacklistingEnabled,
			StopReason:          string(res.Stats.StopReason),
		},
		Patterns: make([]PatternRecord, 0, len(res.PDBs)),
	}
	if res.Stats.BlacklistingEnabled {
		f.Stats.BlacklistingEnabledNs = int64(res.Stats.BlacklistingEnabledAt)
	}
	if t != nil {
		f.Run.Task = t.Name
	}
	for _, db := range res.PDBs {
		p := db.Pattern()
		rec := PatternRecord{
			Variables: append([]int(nil), p...),
			Names:     make([]string, 0, len(p)),
			Size:      db.Size(),
		}
		for _, v := range p {
			rec.Names = append(rec.Names, variableName(t, v))
		}
		f.Patterns = append(f.Patterns, rec)
	}
	return f, nil
}

func variableName(t *task.Task, v int) string {
	if t == nil {
		return fmt.Sprintf("v%d", v)
	}
	return t.VariableName(v)
}

// seconds converts a budget to seconds, mapping budget.Unlimited to +Inf.
func seconds(d time.Duration) float64 {
	if d == budget.Unlimited {
		return math.Inf(1)
	}
	return d.Seconds()
}

// Write stores f at path, replacing any existing file atomically.
func Write(path string, f File) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp report file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming report file: %w", err)
	}
	return nil
}

// Load reads a report written by Write.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading report: %w", err)
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return f, nil
}
