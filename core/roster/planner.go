package roster

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/giordipeperkamp/Megaplanner/core/cpsat"
	"github.com/giordipeperkamp/Megaplanner/core/logger"
	"github.com/giordipeperkamp/Megaplanner/core/model"
)

// Result is the output of one planning run.
type Result struct {
	RunID      string
	Status     cpsat.Status
	Schedule   model.Schedule
	Objective  int64
	Bound      int64
	Infeasible []Diagnostic
	Elapsed    time.Duration
	// TravelRoutes reports the size of the ingested travel table. The data
	// is carried through for diagnostics; no constraint consults it.
	TravelRoutes int
}

// Planner runs the staged pipeline: eligibility preprocessing, model
// building, solving, and schedule materialization. Inputs are treated as
// immutable for the duration of a run.
type Planner struct {
	cfg Config
	log logger.Logger

	// newModel is swappable in tests.
	newModel func() cpsat.Model
}

// New returns a planner with the given settings.
func New(cfg Config, log logger.Logger) *Planner {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Planner{cfg: cfg, log: log, newModel: cpsat.NewModel}
}

// Plan produces the roster for the given inputs.
func (p *Planner) Plan(ctx context.Context, in *model.Inputs) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), TravelRoutes: len(in.TravelTimes)}
	log := p.log

	elig := ComputeEligibility(in)
	res.Infeasible = elig.Diagnostics
	for _, diag := range elig.Diagnostics {
		log.Warnf("session %s has no eligible doctor (removed: %v)", diag.SessionID, diag.Removed)
	}
	if len(elig.Diagnostics) > 0 && p.cfg.InfeasibleSessionPolicy == PolicyFail {
		return res, &SessionInfeasibleError{Diagnostics: elig.Diagnostics}
	}

	built := BuildModel(p.newModel(), elig, in.Preferences, p.cfg.DefaultPreferenceScore)
	log.Infof("model built: %d sessions, %d doctors, %d variables (run %s)",
		len(elig.Sessions), len(elig.Doctors), len(built.Vars), res.RunID)

	driver := NewDriver(p.cfg, log)
	outcome, err := driver.Solve(ctx, built)
	res.Status = outcome.Status
	if err != nil {
		return res, err
	}
	res.Objective = outcome.Objective
	res.Bound = outcome.Bound

	sched, err := Materialize(elig, outcome.Assignment, in.Preferences, p.cfg.DefaultPreferenceScore, outcome.Objective)
	if err != nil {
		return res, err
	}
	res.Schedule = sched
	res.Elapsed = time.Since(start)
	log.Infof("roster solved: status=%s score=%d rows=%d elapsed=%s",
		res.Status, res.Objective, len(sched.Rows), res.Elapsed)
	return res, nil
}
