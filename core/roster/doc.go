package roster

// Package roster implements the planning pipeline for monthly duty rosters:
// eligibility preprocessing, integer-program construction, solver driving,
// and schedule materialization. Stages run strictly in sequence; inputs are
// immutable for the duration of a run.
