// Package solver provides the HiGHS-backed implementation of the core
// solver capability.
package solver

import (
	"fmt"
	"math"

	"github.com/bartolsthoorn/gohighs/highs"

	coresolver "github.com/soleng-dk/flexopt/core/solver"
)

// HighsModel implements coresolver.Model on top of the HiGHS LP solver.
// The zero value is not usable; call New.
type HighsModel struct {
	m        highs.Model
	varNames []string
	rowNames []string
}

// New returns an empty minimisation model.
func New() *HighsModel {
	return &HighsModel{}
}

// Factory adapts New to the core factory signature.
func Factory() coresolver.Model { return New() }

// AddVar creates a continuous variable with lower bound zero and no
// upper bound.
func (hm *HighsModel) AddVar(name string) coresolver.Var {
	col := len(hm.varNames)
	hm.varNames = append(hm.varNames, name)
	hm.m.ColLower = append(hm.m.ColLower, 0)
	hm.m.ColUpper = append(hm.m.ColUpper, math.Inf(1))
	hm.m.ColCosts = append(hm.m.ColCosts, 0)
	return coresolver.Var(col)
}

// SetObjective replaces the objective coefficients with the given terms.
func (hm *HighsModel) SetObjective(terms []coresolver.Term) {
	for i := range hm.m.ColCosts {
		hm.m.ColCosts[i] = 0
	}
	for _, t := range terms {
		hm.m.ColCosts[int(t.Var)] += t.Coef
	}
}

// AddConstraint appends one row and returns its handle.
func (hm *HighsModel) AddConstraint(name string, terms []coresolver.Term, rel coresolver.Relation, rhs float64) coresolver.Con {
	row := len(hm.rowNames)
	hm.rowNames = append(hm.rowNames, name)

	cols := make([]int, 0, len(terms))
	vals := make([]float64, 0, len(terms))
	for _, t := range terms {
		cols = append(cols, int(t.Var))
		vals = append(vals, t.Coef)
	}
	switch rel {
	case coresolver.Eq:
		hm.m.AddSparseRow(rhs, cols, vals, rhs)
	case coresolver.Le:
		hm.m.AddSparseRow(math.Inf(-1), cols, vals, rhs)
	case coresolver.Ge:
		hm.m.AddSparseRow(rhs, cols, vals, math.Inf(1))
	}
	return coresolver.Con(row)
}

// Solve runs HiGHS and wraps its solution.
func (hm *HighsModel) Solve(opts coresolver.Options) (coresolver.Result, error) {
	solveOpts := []highs.SolveOption{highs.WithOutput(opts.Verbose)}
	if opts.TimeLimitSeconds > 0 {
		solveOpts = append(solveOpts, highs.WithTimeLimit(opts.TimeLimitSeconds))
	}
	sol, err := hm.m.Solve(solveOpts...)
	if err != nil {
		return nil, fmt.Errorf("highs solve: %w", err)
	}
	return &highsResult{sol: sol}, nil
}

type highsResult struct {
	sol *highs.Solution
}

func (r *highsResult) Status() coresolver.Status {
	return coresolver.Status{
		Optimal: r.sol.IsOptimal(),
		Code:    fmt.Sprint(r.sol.Status),
	}
}

func (r *highsResult) Objective() float64 { return r.sol.Objective }

func (r *highsResult) Value(v coresolver.Var) float64 {
	return r.sol.Value(int(v))
}

func (r *highsResult) Dual(c coresolver.Con) (float64, bool) {
	if int(c) >= len(r.sol.RowDuals) {
		return 0, false
	}
	return r.sol.RowDuals[int(c)], true
}
