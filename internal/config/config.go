// Package config loads mcegar run options from defaults, an optional
// .mcegar.yaml file, MCEGAR_* environment variables and bound CLI flags.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/spf13/viper"

	"github.com/papapumpkin/mcegar/internal/logging"
)

// RandomSeedFromClock is the random_seed value that seeds a run from the
// wall clock instead of a fixed value.
const RandomSeedFromClock = -1

// Config holds all runtime configuration for an mcegar run.
// Values are populated from .mcegar.yaml, MCEGAR_* env vars, and CLI flags.
// Times are in seconds.
type Config struct {
	TotalMaxTime               float64 `mapstructure:"total_max_time"`
	StagnationLimit            float64 `mapstructure:"stagnation_limit"`
	BlacklistTriggerPercentage float64 `mapstructure:"blacklist_trigger_percentage"`
	BlacklistOnStagnation      bool    `mapstructure:"blacklist_on_stagnation"`
	MaxRefinements             int     `mapstructure:"max_refinements"`
	MaxPDBSize                 int     `mapstructure:"max_pdb_size"`
	MaxCollectionSize          int     `mapstructure:"max_collection_size"`
	WildcardPlans              bool    `mapstructure:"wildcard_plans"`
	MaxTime                    float64 `mapstructure:"max_time"` // Per solver call.
	RandomSeed                 int64   `mapstructure:"random_seed"`
	Verbosity                  string  `mapstructure:"verbosity"`
	Output                     string  `mapstructure:"output"`
	TelemetryPath              string  `mapstructure:"telemetry_path"`
	MetricsPath                string  `mapstructure:"metrics_path"`
}

// SetDefaults registers the built-in default of every key with viper.
func SetDefaults() {
	viper.SetDefault("total_max_time", 100.0)
	viper.SetDefault("stagnation_limit", 20.0)
	viper.SetDefault("blacklist_trigger_percentage", 0.75)
	viper.SetDefault("blacklist_on_stagnation", true)
	viper.SetDefault("max_refinements", 0)
	viper.SetDefault("max_pdb_size", 1000000)
	viper.SetDefault("max_collection_size", 10000000)
	viper.SetDefault("wildcard_plans", true)
	viper.SetDefault("max_time", math.Inf(1))
	viper.SetDefault("random_seed", RandomSeedFromClock)
	viper.SetDefault("verbosity", "normal")
	viper.SetDefault("output", "")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("metrics_path", "")
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags. It does not
// validate; call Validate on the result.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Validate checks every option against its allowed range and reports all
// violations at once.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.TotalMaxTime >= 0, "total_max_time must be >= 0, got %v", c.TotalMaxTime)
	check(c.StagnationLimit >= 1, "stagnation_limit must be >= 1, got %v", c.StagnationLimit)
	check(c.BlacklistTriggerPercentage >= 0 && c.BlacklistTriggerPercentage <= 1,
		"blacklist_trigger_percentage must be in [0, 1], got %v", c.BlacklistTriggerPercentage)
	check(c.MaxRefinements >= 0, "max_refinements must be >= 0, got %d", c.MaxRefinements)
	check(c.MaxPDBSize >= 1, "max_pdb_size must be >= 1, got %d", c.MaxPDBSize)
	check(c.MaxCollectionSize >= 1, "max_collection_size must be >= 1, got %d", c.MaxCollectionSize)
	check(c.MaxTime >= 0, "max_time must be >= 0, got %v", c.MaxTime)
	check(c.RandomSeed >= RandomSeedFromClock, "random_seed must be >= %d, got %d", RandomSeedFromClock, c.RandomSeed)
	if _, err := logging.ParseVerbosity(c.Verbosity); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Seed resolves random_seed, drawing from now when it is RandomSeedFromClock.
// The resolved value is the base of every derived seed: per-call solver
// seeds are this value plus the iteration number, never -1 plus the
// iteration, so a clock-seeded run can be replayed by passing the resolved
// seed back as random_seed.
func (c Config) Seed(now time.Time) int64 {
	if c.RandomSeed == RandomSeedFromClock {
		return now.UnixNano() & math.MaxInt32
	}
	return c.RandomSeed
}
