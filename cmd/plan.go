package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/giordipeperkamp/Megaplanner/app"
	"github.com/giordipeperkamp/Megaplanner/config"
)

var (
	planPaths  app.InputPaths
	planOutput string

	planTimeBudget float64
	planWorkers    int
	planSeed       int64
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the optimal monthly roster",
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	f := planCmd.Flags()
	f.StringVar(&planPaths.Workbook, "workbook", "", "Excel workbook with all input tabs (replaces the CSV flags)")
	f.StringVar(&planPaths.Doctors, "doctors", "", "path to doctors.csv")
	f.StringVar(&planPaths.Locations, "locations", "", "path to locations.csv")
	f.StringVar(&planPaths.Rooms, "rooms", "", "path to rooms.csv (optional)")
	f.StringVar(&planPaths.Sessions, "sessions", "", "path to sessions.csv")
	f.StringVar(&planPaths.Preferences, "preferences", "", "path to preferences.csv (optional)")
	f.StringVar(&planPaths.TravelTimes, "travel-times", "", "path to travel_times.csv (optional)")
	f.StringVar(&planPaths.Workdays, "doctor-workdays", "", "path to doctor_workdays.csv (optional)")
	f.StringVar(&planPaths.WeekRules, "doctor-week-rules", "", "path to doctor_week_rules.csv (optional)")
	f.StringVar(&planPaths.Entries, "extra-sessions", "", "JSON file with calendar entries to append (optional)")
	f.StringVarP(&planOutput, "output", "o", "", "output schedule path (.csv or .json)")
	f.Float64Var(&planTimeBudget, "time-budget", 0, "solver time budget in seconds (overrides config)")
	f.IntVar(&planWorkers, "workers", 0, "solver worker count (overrides config)")
	f.Int64Var(&planSeed, "seed", 0, "solver random seed (overrides config)")
	_ = planCmd.MarkFlagRequired("output")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if planTimeBudget > 0 {
		cfg.Planner.TimeBudgetSeconds = planTimeBudget
	}
	if planWorkers > 0 {
		cfg.Planner.WorkerCount = planWorkers
	}
	if planSeed != 0 {
		cfg.Planner.RandomSeed = planSeed
	}

	if planPaths.Workbook == "" {
		if planPaths.Doctors == "" || planPaths.Locations == "" || planPaths.Sessions == "" {
			return fmt.Errorf("either --workbook or --doctors, --locations and --sessions are required")
		}
	}

	svc, err := app.New(cfg, planPaths, planOutput)
	if err != nil {
		return err
	}
	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("roster written to %s (status=%s, total preference score=%d)\n",
		planOutput, res.Status, res.Objective)
	return nil
}
