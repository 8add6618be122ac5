package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/giordipeperkamp/Megaplanner/config"
	"github.com/giordipeperkamp/Megaplanner/core/ingest"
	"github.com/giordipeperkamp/Megaplanner/core/model"
	"github.com/giordipeperkamp/Megaplanner/core/roster"
	"github.com/giordipeperkamp/Megaplanner/infra/logger"
	"github.com/giordipeperkamp/Megaplanner/infra/tabular"
	"github.com/giordipeperkamp/Megaplanner/pkg/export"
)

// InputPaths names the tabular inputs of one planning run. Workbook, when
// set, replaces the individual CSV paths. Optional paths may be empty.
type InputPaths struct {
	Workbook    string
	Doctors     string
	Locations   string
	Rooms       string
	Sessions    string
	Preferences string
	TravelTimes string
	Workdays    string
	WeekRules   string
	// Entries is an optional JSON file of calendar popover submissions
	// appended to the session set.
	Entries string
}

// Service runs one planning cycle: read inputs, plan, write the roster.
type Service struct {
	cfg    *config.Config
	paths  InputPaths
	output string
	log    logger.Logger
}

// New creates a Service from the configuration and input paths.
func New(cfg *config.Config, paths InputPaths, output string) (*Service, error) {
	if output == "" {
		return nil, fmt.Errorf("output path is required")
	}
	return &Service{cfg: cfg, paths: paths, output: output, log: logger.New("planner")}, nil
}

// Run executes the pipeline and writes the schedule as CSV, or as JSON when
// the output path ends in .json. The returned Result
// carries the run diagnostics for the caller.
func (s *Service) Run(ctx context.Context) (*roster.Result, error) {
	in, err := s.loadInputs()
	if err != nil {
		return nil, err
	}

	planner := roster.New(s.cfg.Planner, s.log)
	res, err := planner.Plan(ctx, in)
	if err != nil {
		return res, err
	}

	if err := s.writeSchedule(res.Schedule); err != nil {
		return res, err
	}
	s.log.Infof("roster written to %s (total preference score = %d)", s.output, res.Schedule.TotalScore)
	return res, nil
}

func (s *Service) loadInputs() (*model.Inputs, error) {
	var tables ingest.Tables
	var err error
	if s.paths.Workbook != "" {
		tables, err = tabular.ReadWorkbook(s.paths.Workbook)
		if err != nil {
			return nil, err
		}
	} else {
		read := func(path string) (*ingest.Table, error) {
			if path == "" {
				return nil, nil
			}
			return tabular.ReadCSV(path)
		}
		if tables.Doctors, err = read(s.paths.Doctors); err != nil {
			return nil, err
		}
		if tables.Locations, err = read(s.paths.Locations); err != nil {
			return nil, err
		}
		if tables.Rooms, err = read(s.paths.Rooms); err != nil {
			return nil, err
		}
		if tables.Sessions, err = read(s.paths.Sessions); err != nil {
			return nil, err
		}
		if tables.Preferences, err = read(s.paths.Preferences); err != nil {
			return nil, err
		}
		if tables.TravelTimes, err = read(s.paths.TravelTimes); err != nil {
			return nil, err
		}
		if tables.Workdays, err = read(s.paths.Workdays); err != nil {
			return nil, err
		}
		if tables.WeekRules, err = read(s.paths.WeekRules); err != nil {
			return nil, err
		}
	}

	in, err := ingest.Normalize(tables, s.log)
	if err != nil {
		return nil, err
	}

	if s.paths.Entries != "" {
		entries, err := tabular.ReadCalendarEntries(s.paths.Entries)
		if err != nil {
			return nil, err
		}
		doctors := make(map[string]struct{}, len(in.Doctors))
		for _, d := range in.Doctors {
			doctors[d.ID] = struct{}{}
		}
		extra, err := ingest.CalendarSessions(entries, in.Sessions, in.Rooms, doctors)
		if err != nil {
			return nil, err
		}
		in.Sessions = append(in.Sessions, extra...)
	}
	return in, nil
}

func (s *Service) writeSchedule(sched model.Schedule) error {
	if dir := filepath.Dir(s.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(s.output)
	if err != nil {
		return err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(s.output), ".json") {
		return export.WriteJSON(f, sched)
	}
	return export.WriteCSV(f, sched)
}
