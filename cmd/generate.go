package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papapumpkin/mcegar/internal/budget"
	"github.com/papapumpkin/mcegar/internal/config"
	"github.com/papapumpkin/mcegar/internal/generator"
	"github.com/papapumpkin/mcegar/internal/metrics"
	"github.com/papapumpkin/mcegar/internal/report"
	"github.com/papapumpkin/mcegar/internal/task"
	"github.com/papapumpkin/mcegar/internal/telemetry"
)

var generateCmd = &cobra.Command{
	Use:   "generate <task.toml>",
	Short: "Generate a pattern collection for a planning task",
	Long: `Runs the multiple-restart refinement loop on the task and prints a summary.

With --output the collection is written as TOML. With --watch the task file is
watched and the collection regenerated whenever it changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

// generateFlags maps generate flags to their config keys.
var generateFlags = []struct {
	flag, key string
}{
	{"total-max-time", "total_max_time"},
	{"stagnation-limit", "stagnation_limit"},
	{"blacklist-trigger-percentage", "blacklist_trigger_percentage"},
	{"blacklist-on-stagnation", "blacklist_on_stagnation"},
	{"max-refinements", "max_refinements"},
	{"max-pdb-size", "max_pdb_size"},
	{"max-collection-size", "max_collection_size"},
	{"wildcard-plans", "wildcard_plans"},
	{"max-time", "max_time"},
	{"random-seed", "random_seed"},
	{"output", "output"},
	{"telemetry", "telemetry_path"},
	{"metrics", "metrics_path"},
}

func init() {
	f := generateCmd.Flags()
	f.Float64("total-max-time", 100, "global time budget in seconds")
	f.Float64("stagnation-limit", 20, "seconds without a new pattern before escalating or stopping")
	f.Float64("blacklist-trigger-percentage", 0.75, "share of the time budget after which blacklisting starts")
	f.Bool("blacklist-on-stagnation", true, "escalate to blacklisting on stagnation before stopping")
	f.Int("max-refinements", 0, "refinement steps per solver call (0 = unlimited)")
	f.Int("max-pdb-size", 1000000, "maximum size of a single PDB")
	f.Int("max-collection-size", 10000000, "maximum summed size of all PDBs")
	f.Bool("wildcard-plans", true, "let every pattern variable contribute refinement candidates")
	f.Float64("max-time", 0, "time limit per solver call in seconds (0 or inf = unlimited)")
	f.Int64("random-seed", config.RandomSeedFromClock, "base random seed (-1 = from clock)")
	f.StringP("output", "o", "", "write the collection to this TOML file")
	f.String("telemetry", "", "append JSONL run events to this file")
	f.String("metrics", "", "write Prometheus metrics to this textfile after each run")
	f.Bool("watch", false, "regenerate whenever the task file changes")

	for _, fl := range generateFlags {
		_ = viper.BindPFlag(fl.key, f.Lookup(fl.flag))
	}
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	b := budgetsFromConfig(cfg, time.Now())
	path := args[0]

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return watchAndGenerate(cmd.Context(), cmd.OutOrStdout(), cfg, b, path)
	}
	return generateOnce(cmd.Context(), cmd.OutOrStdout(), cfg, b, path)
}

// budgetsFromConfig converts configured seconds into run budgets and
// resolves the random seed.
func budgetsFromConfig(cfg config.Config, now time.Time) generator.Budgets {
	perCall := budget.Unlimited
	if cfg.MaxTime > 0 {
		perCall = budget.FromSeconds(cfg.MaxTime)
	}
	return generator.Budgets{
		TotalMaxTime:             budget.FromSeconds(cfg.TotalMaxTime),
		PerCallMaxTime:           perCall,
		MaxRefinements:           cfg.MaxRefinements,
		MaxPDBSize:               cfg.MaxPDBSize,
		MaxCollectionSize:        cfg.MaxCollectionSize,
		StagnationLimit:          budget.FromSeconds(cfg.StagnationLimit),
		BlacklistTriggerFraction: cfg.BlacklistTriggerPercentage,
		BlacklistOnStagnation:    cfg.BlacklistOnStagnation,
		WildcardPlans:            cfg.WildcardPlans,
		RandomSeed:               cfg.Seed(now),
	}
}

// generateOnce loads the task, runs the generator and writes every
// configured output.
func generateOnce(ctx context.Context, w io.Writer, cfg config.Config, b generator.Budgets, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	t, err := task.Load(path)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	em, err := openEmitter(cfg.TelemetryPath)
	if err != nil {
		return err
	}
	defer em.Close()

	th := newTelemetryHook(em, runID, nil, logger)
	hooks := []generator.Hook{th}
	var rec *metrics.Recorder
	if cfg.MetricsPath != "" {
		rec = metrics.NewRecorder()
		hooks = append(hooks, rec)
	}

	g := &generator.Generator{
		Budgets: b,
		Logger:  logger.With(zap.String("run", runID)),
		Hooks:   hooks,
	}
	started := time.Now()
	th.runStarted(t.Name, b)
	// Runs end on their own budgets; cancellation only applies between runs.
	res, err := g.Generate(context.WithoutCancel(ctx), t, nil)
	if err != nil {
		th.runFailed(err)
		return fmt.Errorf("generating patterns for %s: %w", path, err)
	}

	rep, err := report.New(runID, t, b, res, started)
	if err != nil {
		return err
	}
	if cfg.Output != "" {
		if err := report.Write(cfg.Output, rep); err != nil {
			return err
		}
		logger.Info("wrote pattern collection", zap.String("path", cfg.Output))
	}
	if rec != nil {
		if err := rec.WriteTextfile(cfg.MetricsPath); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, report.Render(rep))
	return nil
}

func openEmitter(path string) (*telemetry.Emitter, error) {
	if path == "" {
		return nil, nil
	}
	return telemetry.NewEmitter(path)
}

// watchAndGenerate runs once, then again after every change of the task
// file until interrupted. Failed runs are logged and watching continues,
// except for solver contract violations.
func watchAndGenerate(ctx context.Context, w io.Writer, cfg config.Config, b generator.Budgets, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := task.NewWatcher(path)
	if err != nil {
		return err
	}
	defer watcher.Stop()
	if err := watcher.Start(); err != nil {
		return err
	}

	run := func() error {
		err := generateOnce(ctx, w, cfg, b, path)
		if err == nil || errors.Is(err, generator.ErrSolverContract) {
			return err
		}
		logger.Error("run failed, waiting for changes", zap.Error(err))
		return nil
	}
	if err := run(); err != nil {
		return err
	}

	logger.Info("watching task file", zap.String("path", path))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ch, ok := <-watcher.Changes:
			if !ok {
				return nil
			}
			if ch.Kind == task.ChangeRemoved {
				logger.Warn("task file removed, waiting for it to reappear", zap.String("path", path))
				continue
			}
			logger.Info("task file changed, regenerating", zap.String("path", path))
			if err := run(); err != nil {
				return err
			}
		}
	}
}
