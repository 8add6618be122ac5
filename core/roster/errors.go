package roster

import (
	"errors"
	"fmt"
)

// ErrSolverTimeout is returned when the deadline expires before any feasible
// assignment is found.
var ErrSolverTimeout = errors.New("solver deadline reached without a feasible assignment")

// InfeasibleError reports that the integer program has no solution. The
// witness names the tightest over-saturated scope found in the eligibility
// sets.
type InfeasibleError struct {
	Witness SaturationWitness
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("no feasible roster: %s needs %d sessions covered but capacity is %d",
		e.Witness.Scope, e.Witness.Required, e.Witness.Capacity)
}

// SessionInfeasibleError is returned under the "fail" policy when sessions
// have an empty candidate set after preprocessing.
type SessionInfeasibleError struct {
	Diagnostics []Diagnostic
}

func (e *SessionInfeasibleError) Error() string {
	return fmt.Sprintf("%d session(s) have no eligible doctor", len(e.Diagnostics))
}

// InternalError flags an invariant violation inside the pipeline, such as the
// materialized score disagreeing with the solver objective.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string {
	return "internal: " + e.Reason
}
