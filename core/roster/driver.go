package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/giordipeperkamp/Megaplanner/core/cpsat"
	"github.com/giordipeperkamp/Megaplanner/core/logger"
	"github.com/giordipeperkamp/Megaplanner/core/model"
)

// Outcome is the classified result of one solve.
type Outcome struct {
	Status     cpsat.Status
	Assignment model.Assignment
	Objective  int64
	Bound      int64
	Nodes      int64
}

// Driver owns the solver session: it submits the built model, enforces the
// time budget, and classifies the result.
type Driver struct {
	cfg Config
	log logger.Logger
}

// NewDriver returns a driver with the given settings.
func NewDriver(cfg Config, log logger.Logger) *Driver {
	return &Driver{cfg: cfg, log: log}
}

// Solve runs the backend and maps its status onto the planner's error
// taxonomy: infeasibility carries a saturation witness, an exhausted deadline
// without a solution is ErrSolverTimeout, and backend failures are wrapped
// with their message preserved.
func (d *Driver) Solve(ctx context.Context, built *BuiltModel) (Outcome, error) {
	deadline := time.Now().Add(time.Duration(d.cfg.TimeBudgetSeconds * float64(time.Second)))
	params := cpsat.SolveParams{
		Deadline: deadline,
		Seed:     d.cfg.RandomSeed,
		Workers:  d.cfg.WorkerCount,
	}

	start := time.Now()
	sol, err := built.Model.Solve(ctx, params)
	elapsed := time.Since(start)
	if err != nil {
		return Outcome{Status: cpsat.StatusUnknown}, fmt.Errorf("solver backend: %w", err)
	}
	d.log.Debugw("solve finished", map[string]any{
		"status":  sol.Status.String(),
		"nodes":   sol.Nodes,
		"elapsed": elapsed.String(),
	})

	out := Outcome{Status: sol.Status, Nodes: sol.Nodes}
	switch sol.Status {
	case cpsat.StatusOptimal, cpsat.StatusFeasible:
		out.Assignment = built.Assignment(sol)
		out.Objective = sol.Objective
		out.Bound = sol.Bound
		return out, nil
	case cpsat.StatusInfeasible:
		return out, &InfeasibleError{Witness: ComputeWitness(built.Elig)}
	default:
		if ctx.Err() != nil {
			d.log.Warnf("solve cancelled: %v", ctx.Err())
		}
		return out, ErrSolverTimeout
	}
}
