package opt

import (
	"fmt"

	"github.com/soleng-dk/flexopt/core/solver"
)

// fakeRow records one constraint handed to the fake model.
type fakeRow struct {
	name  string
	terms []solver.Term
	rel   solver.Relation
	rhs   float64
}

// fakeModel records everything the formulation builds and returns a
// scripted result, so variable and constraint assembly can be asserted
// without a real solver.
type fakeModel struct {
	vars      []string
	objective []solver.Term
	rows      []fakeRow

	result   *fakeResult
	solveErr error
}

func (m *fakeModel) AddVar(name string) solver.Var {
	m.vars = append(m.vars, name)
	return solver.Var(len(m.vars) - 1)
}

func (m *fakeModel) SetObjective(terms []solver.Term) {
	m.objective = terms
}

func (m *fakeModel) AddConstraint(name string, terms []solver.Term, rel solver.Relation, rhs float64) solver.Con {
	m.rows = append(m.rows, fakeRow{name: name, terms: terms, rel: rel, rhs: rhs})
	return solver.Con(len(m.rows) - 1)
}

func (m *fakeModel) Solve(solver.Options) (solver.Result, error) {
	if m.solveErr != nil {
		return nil, m.solveErr
	}
	if m.result == nil {
		return nil, fmt.Errorf("fake model: no scripted result")
	}
	return m.result, nil
}

func (m *fakeModel) rowsNamed(prefix string) []fakeRow {
	var out []fakeRow
	for _, r := range m.rows {
		if len(r.name) >= len(prefix) && r.name[:len(prefix)] == prefix {
			out = append(out, r)
		}
	}
	return out
}

type fakeResult struct {
	status    solver.Status
	objective float64
	values    map[solver.Var]float64
	duals     map[solver.Con]float64
}

func (r *fakeResult) Status() solver.Status { return r.status }
func (r *fakeResult) Objective() float64    { return r.objective }

func (r *fakeResult) Value(v solver.Var) float64 { return r.values[v] }

func (r *fakeResult) Dual(c solver.Con) (float64, bool) {
	d, ok := r.duals[c]
	return d, ok
}

func optimalResult() *fakeResult {
	return &fakeResult{
		status: solver.Status{Optimal: true, Code: "optimal"},
		values: map[solver.Var]float64{},
		duals:  map[solver.Con]float64{},
	}
}
