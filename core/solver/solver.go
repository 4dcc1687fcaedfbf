// Package solver defines the minimal linear-programming capability the
// optimisation core depends on. Backends live under infra/solver; the
// core never imports a solver library directly, so formulations can be
// exercised against a scripted model in tests.
package solver

// Var is an opaque handle to a decision variable.
type Var int

// Con is an opaque handle to a constraint row, used to read duals.
type Con int

// Relation is the sense of a constraint row.
type Relation int

const (
	Eq Relation = iota
	Le
	Ge
)

// Term is one linear coefficient on a variable.
type Term struct {
	Var  Var
	Coef float64
}

// Options carries per-solve settings.
type Options struct {
	// TimeLimitSeconds bounds the solve; zero means no limit.
	TimeLimitSeconds float64
	// Verbose enables the backend's own console output.
	Verbose bool
}

// Model is an LP under construction. Variables are continuous,
// lower-bounded at zero and unbounded above; upper bounds are expressed
// as constraint rows. The objective sense is minimisation.
type Model interface {
	// AddVar creates a variable and returns its handle. The name is
	// advisory and used for diagnostics only.
	AddVar(name string) Var
	// SetObjective replaces the objective with the given linear form.
	SetObjective(terms []Term)
	// AddConstraint adds one row and returns its handle.
	AddConstraint(name string, terms []Term, rel Relation, rhs float64) Con
	// Solve runs the backend. It blocks until the solver terminates.
	// The error reports backend invocation failures only; an
	// infeasible or unbounded model is a Status, not an error.
	Solve(opts Options) (Result, error)
}

// Status is the solver's verdict on a finished solve.
type Status struct {
	// Optimal is true iff the backend proved optimality.
	Optimal bool
	// Code is the backend's raw status string, passed through for
	// diagnostics.
	Code string
}

// Result exposes the primal and dual solution of a solved model.
// Value and Dual must only be consulted when Status().Optimal holds.
type Result interface {
	Status() Status
	Objective() float64
	Value(v Var) float64
	// Dual returns the shadow price of a constraint row. The boolean
	// is false when the backend did not produce duals for that row.
	Dual(c Con) (float64, bool)
}

// Factory produces a fresh, empty model. Each scenario must build into
// its own model instance; nothing is shared between solves.
type Factory func() Model
