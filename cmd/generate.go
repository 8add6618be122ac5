package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/giordipeperkamp/Megaplanner/core/generator"
	"github.com/giordipeperkamp/Megaplanner/core/ingest"
	"github.com/giordipeperkamp/Megaplanner/core/model"
	"github.com/giordipeperkamp/Megaplanner/infra/tabular"
	"github.com/giordipeperkamp/Megaplanner/pkg/export"
)

var (
	genTemplates string
	genLocations string
	genSessions  string
	genFrom      string
	genTo        string
	genOutput    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Expand weekly session templates over a date range",
	RunE:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	f := generateCmd.Flags()
	f.StringVar(&genTemplates, "templates", "", "weekly template file (.yaml or .json)")
	f.StringVar(&genLocations, "locations", "", "path to locations.csv")
	f.StringVar(&genSessions, "sessions", "", "existing sessions.csv; generated ids avoid collisions with it (optional)")
	f.StringVar(&genFrom, "from", "", "range start, YYYY-MM-DD")
	f.StringVar(&genTo, "to", "", "range end, YYYY-MM-DD (inclusive)")
	f.StringVarP(&genOutput, "output", "o", "", "output sessions CSV path")
	_ = generateCmd.MarkFlagRequired("templates")
	_ = generateCmd.MarkFlagRequired("locations")
	_ = generateCmd.MarkFlagRequired("from")
	_ = generateCmd.MarkFlagRequired("to")
	_ = generateCmd.MarkFlagRequired("output")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := generator.LoadConfig(genTemplates)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	locTable, err := tabular.ReadCSV(genLocations)
	if err != nil {
		return err
	}
	locations, err := ingest.Locations(locTable)
	if err != nil {
		return err
	}
	from, err := model.ParseDate(genFrom)
	if err != nil {
		return err
	}
	to, err := model.ParseDate(genTo)
	if err != nil {
		return err
	}

	taken := make(map[string]struct{})
	if genSessions != "" {
		sesTable, err := tabular.ReadCSV(genSessions)
		if err != nil {
			return err
		}
		locIDs := make(map[string]struct{}, len(locations))
		for _, l := range locations {
			locIDs[l.ID] = struct{}{}
		}
		existing, err := ingest.Sessions(sesTable, locIDs)
		if err != nil {
			return err
		}
		for _, s := range existing {
			taken[s.ID] = struct{}{}
		}
	}

	sessions, err := generator.Expand(cfg, locations, from, to, taken)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(genOutput); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(genOutput)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteSessionsCSV(f, sessions); err != nil {
		return err
	}
	fmt.Printf("%d sessions written to %s\n", len(sessions), genOutput)
	return nil
}
