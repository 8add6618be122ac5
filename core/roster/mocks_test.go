package roster

import (
	"context"
	"testing"

	"github.com/giordipeperkamp/Megaplanner/core/cpsat"
)

// mockModel records the constraints the builder emits and returns a scripted
// solution, keeping builder and driver tests independent of the real backend.
type mockModel struct {
	names    []string
	leqs     []mockConstr
	eqs      []mockConstr
	objVars  []cpsat.Var
	objCoefs []int64

	solution cpsat.Solution
	solveErr error
	params   cpsat.SolveParams
}

type mockConstr struct {
	vars   []cpsat.Var
	coeffs []int64
	bound  int64
}

func (m *mockModel) AddBinaryVar(name string) cpsat.Var {
	m.names = append(m.names, name)
	return cpsat.Var(len(m.names) - 1)
}

func (m *mockModel) AddLinearLeq(vars []cpsat.Var, coeffs []int64, bound int64) {
	m.leqs = append(m.leqs, mockConstr{vars: vars, coeffs: coeffs, bound: bound})
}

func (m *mockModel) AddLinearEq(vars []cpsat.Var, coeffs []int64, bound int64) {
	m.eqs = append(m.eqs, mockConstr{vars: vars, coeffs: coeffs, bound: bound})
}

func (m *mockModel) SetObjectiveMax(vars []cpsat.Var, coeffs []int64) {
	m.objVars = vars
	m.objCoefs = coeffs
}

func (m *mockModel) Solve(_ context.Context, params cpsat.SolveParams) (cpsat.Solution, error) {
	m.params = params
	return m.solution, m.solveErr
}

// newSolution builds an optimal solution setting the named variables true.
// The objective is left at zero; tests that care pass it explicitly.
func newSolution(t *testing.T, m *mockModel, byName map[string]bool) cpsat.Solution {
	t.Helper()
	values := make([]bool, len(m.names))
	matched := 0
	for i, name := range m.names {
		if byName[name] {
			values[i] = true
			matched++
		}
	}
	if matched != len(byName) {
		t.Fatalf("unknown variable names in %v (model has %v)", byName, m.names)
	}
	return cpsat.NewSolution(cpsat.StatusOptimal, 0, 0, values)
}
