package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/mcegar/internal/config"
	"github.com/papapumpkin/mcegar/internal/task"
)

var validateCmd = &cobra.Command{
	Use:   "validate <task.toml>",
	Short: "Validate a task file and the active configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	t, err := task.Load(args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ %s: %d variables, %d goals, %d non-goal variables\n",
		taskLabel(t, args[0]), t.NumVariables(), len(t.Goals), len(t.NonGoalVariables()))
	return nil
}

func taskLabel(t *task.Task, path string) string {
	if t.Name != "" {
		return t.Name
	}
	return path
}
