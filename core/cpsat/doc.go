package cpsat

// Package cpsat provides a small CP-SAT-style modelling surface over binary
// variables: linear equality and inequality constraints and a linear
// maximization objective. The default backend solves the integer program by
// branch and bound over the simplex LP relaxation. The Model interface keeps
// the roster builder testable against a mock and permits swapping backends.
