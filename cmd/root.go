package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papapumpkin/mcegar/internal/config"
	"github.com/papapumpkin/mcegar/internal/generator"
	"github.com/papapumpkin/mcegar/internal/logging"
)

// Process exit codes. A solver contract violation is reported apart from
// ordinary failures.
const (
	exitFailure        = 1
	exitSolverContract = 3
)

// logger is replaced in PersistentPreRunE once verbosity is known.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "mcegar",
	Short: "Multiple-restart CEGAR pattern collection generator",
	Long: `mcegar builds a diversified collection of pattern databases for a planning task
by calling a single-pattern refinement procedure repeatedly under a shared time
and size budget.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogger,
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error returned by a command to the process exit status.
func exitCode(err error) int {
	if errors.Is(err, generator.ErrSolverContract) {
		return exitSolverContract
	}
	return exitFailure
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .mcegar.yaml)")
	rootCmd.PersistentFlags().String("verbosity", "", "diagnostic output: silent, normal or debug")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "shorthand for --verbosity=debug")
	_ = viper.BindPFlag("verbosity", rootCmd.PersistentFlags().Lookup("verbosity"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".mcegar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("MCEGAR")
	viper.AutomaticEnv()
	config.SetDefaults()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// setupLogger builds the process logger from the configured verbosity.
func setupLogger(cmd *cobra.Command, _ []string) error {
	name := viper.GetString("verbosity")
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		name = logging.Debug.String()
	}
	v, err := logging.ParseVerbosity(name)
	if err != nil {
		return err
	}
	l, err := logging.New(v)
	if err != nil {
		return err
	}
	logger = l
	return nil
}
