package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/giordipeperkamp/Megaplanner/core/ingest"
	"github.com/giordipeperkamp/Megaplanner/core/roster"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "megaplanner",
	Short: "Monthly duty roster planner for occupational physicians",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "megaplanner.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// Exit codes of the plan command.
const (
	ExitOK         = 0
	ExitBadInput   = 1
	ExitInfeasible = 2
	ExitTimeout    = 3
	ExitInternal   = 4
)

// ExitCode maps a pipeline error onto the documented process exit codes.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var inputErr *ingest.InputError
	var refErr *ingest.ReferenceError
	var infeasible *roster.InfeasibleError
	var sessionInfeasible *roster.SessionInfeasibleError
	switch {
	case errors.As(err, &inputErr), errors.As(err, &refErr):
		return ExitBadInput
	case errors.As(err, &infeasible), errors.As(err, &sessionInfeasible):
		return ExitInfeasible
	case errors.Is(err, roster.ErrSolverTimeout):
		return ExitTimeout
	default:
		return ExitInternal
	}
}
