package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"TotalMaxTime", cfg.TotalMaxTime, 100.0},
		{"StagnationLimit", cfg.StagnationLimit, 20.0},
		{"BlacklistTriggerPercentage", cfg.BlacklistTriggerPercentage, 0.75},
		{"BlacklistOnStagnation", cfg.BlacklistOnStagnation, true},
		{"MaxRefinements", cfg.MaxRefinements, 0},
		{"MaxPDBSize", cfg.MaxPDBSize, 1000000},
		{"MaxCollectionSize", cfg.MaxCollectionSize, 10000000},
		{"WildcardPlans", cfg.WildcardPlans, true},
		{"MaxTime", cfg.MaxTime, math.Inf(1)},
		{"RandomSeed", cfg.RandomSeed, int64(RandomSeedFromClock)},
		{"Verbosity", cfg.Verbosity, "normal"},
		{"Output", cfg.Output, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "total_max_time",
			envKey: "MCEGAR_TOTAL_MAX_TIME",
			envVal: "12.5",
			field:  func(c Config) any { return c.TotalMaxTime },
			want:   12.5,
		},
		{
			name:   "blacklist_on_stagnation",
			envKey: "MCEGAR_BLACKLIST_ON_STAGNATION",
			envVal: "false",
			field:  func(c Config) any { return c.BlacklistOnStagnation },
			want:   false,
		},
		{
			name:   "max_pdb_size",
			envKey: "MCEGAR_MAX_PDB_SIZE",
			envVal: "5000",
			field:  func(c Config) any { return c.MaxPDBSize },
			want:   5000,
		},
		{
			name:   "max_time",
			envKey: "MCEGAR_MAX_TIME",
			envVal: "2",
			field:  func(c Config) any { return c.MaxTime },
			want:   2.0,
		},
		{
			name:   "random_seed",
			envKey: "MCEGAR_RANDOM_SEED",
			envVal: "2024",
			field:  func(c Config) any { return c.RandomSeed },
			want:   int64(2024),
		},
		{
			name:   "verbosity",
			envKey: "MCEGAR_VERBOSITY",
			envVal: "debug",
			field:  func(c Config) any { return c.Verbosity },
			want:   "debug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			// Set env prefix so MCEGAR_* env vars map to config keys.
			viper.SetEnvPrefix("MCEGAR")
			viper.AutomaticEnv()

			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	resetViper()

	path := filepath.Join(t.TempDir(), ".mcegar.yaml")
	data := "stagnation_limit: 5\nwildcard_plans: false\nmetrics_path: out.prom\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.StagnationLimit != 5 || cfg.WildcardPlans || cfg.MetricsPath != "out.prom" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.TotalMaxTime != 100 {
		t.Errorf("TotalMaxTime = %v, want default 100", cfg.TotalMaxTime)
	}
}

func TestLoad_DecodeError(t *testing.T) {
	resetViper()
	viper.Set("max_pdb_size", "lots")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "decoding config") {
		t.Errorf("Load() error = %v, want decode error", err)
	}
}

func TestValidate(t *testing.T) {
	resetViper()
	base, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative total time", func(c *Config) { c.TotalMaxTime = -1 }, "total_max_time"},
		{"zero total time", func(c *Config) { c.TotalMaxTime = 0 }, ""},
		{"short stagnation limit", func(c *Config) { c.StagnationLimit = 0.5 }, "stagnation_limit"},
		{"percentage above one", func(c *Config) { c.BlacklistTriggerPercentage = 1.5 }, "blacklist_trigger_percentage"},
		{"percentage zero", func(c *Config) { c.BlacklistTriggerPercentage = 0 }, ""},
		{"negative refinements", func(c *Config) { c.MaxRefinements = -2 }, "max_refinements"},
		{"zero pdb size", func(c *Config) { c.MaxPDBSize = 0 }, "max_pdb_size"},
		{"zero collection size", func(c *Config) { c.MaxCollectionSize = 0 }, "max_collection_size"},
		{"negative max time", func(c *Config) { c.MaxTime = -3 }, "max_time"},
		{"bad seed", func(c *Config) { c.RandomSeed = -7 }, "random_seed"},
		{"unknown verbosity", func(c *Config) { c.Verbosity = "loud" }, "verbosity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Config{TotalMaxTime: -1, StagnationLimit: 0, MaxPDBSize: 0, MaxCollectionSize: 1}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"total_max_time", "stagnation_limit", "max_pdb_size"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestSeed(t *testing.T) {
	now := time.Unix(1700000000, 123456789)

	if got := (Config{RandomSeed: 9}).Seed(now); got != 9 {
		t.Errorf("Seed = %d, want 9", got)
	}
	got := (Config{RandomSeed: RandomSeedFromClock}).Seed(now)
	if got < 0 || got > math.MaxInt32 {
		t.Errorf("clock seed %d outside [0, MaxInt32]", got)
	}
	if again := (Config{RandomSeed: RandomSeedFromClock}).Seed(now); again != got {
		t.Errorf("clock seed not a function of now: %d vs %d", got, again)
	}
}

func TestSeed_ClockSeedReplays(t *testing.T) {
	now := time.Unix(1700000000, 987654321)

	resolved := (Config{RandomSeed: RandomSeedFromClock}).Seed(now)
	if resolved == RandomSeedFromClock {
		t.Fatal("clock seed resolved to the sentinel itself")
	}
	if replay := (Config{RandomSeed: resolved}).Seed(now.Add(time.Hour)); replay != resolved {
		t.Errorf("replaying resolved seed %d gave %d", resolved, replay)
	}
}
