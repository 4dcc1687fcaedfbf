package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soleng-dk/flexopt/config"
	"github.com/soleng-dk/flexopt/core/solver"
	"github.com/soleng-dk/flexopt/infra/logger"
)

// scriptedModel satisfies solver.Model and hands back a canned result,
// so the pipeline can be exercised without a solver installation.
type scriptedModel struct {
	status solver.Status
}

func (m *scriptedModel) AddVar(string) solver.Var   { return 0 }
func (m *scriptedModel) SetObjective([]solver.Term) {}
func (m *scriptedModel) AddConstraint(string, []solver.Term, solver.Relation, float64) solver.Con {
	return 0
}

func (m *scriptedModel) Solve(solver.Options) (solver.Result, error) {
	return scriptedResult{status: m.status}, nil
}

type scriptedResult struct {
	status solver.Status
}

func (r scriptedResult) Status() solver.Status           { return r.status }
func (r scriptedResult) Objective() float64              { return 0 }
func (r scriptedResult) Value(solver.Var) float64        { return 0 }
func (r scriptedResult) Dual(solver.Con) (float64, bool) { return 0, false }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Data.Dir = filepath.Join("..", "data", "testdata")
	cfg.Data.Scenarios = []string{"question_1a", "question_2b"}
	cfg.Export.Format = "csv"
	return cfg
}

func optimalFactory() solver.Factory {
	return func() solver.Model {
		return &scriptedModel{status: solver.Status{Optimal: true, Code: "optimal"}}
	}
}

func TestRunScenarioPipeline(t *testing.T) {
	cfg := testConfig(t)
	r := New(cfg, optimalFactory(), logger.NopLogger{}, nil)
	res, err := r.RunScenario("question_1a")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Solution.Optimal {
		t.Fatalf("expected optimal result")
	}
	if res.Hourly.Horizon() != 24 {
		t.Fatalf("horizon %d, want 24", res.Hourly.Horizon())
	}
	if res.RunID == "" {
		t.Fatalf("run ID missing")
	}
}

func TestRunScenarioNonOptimalKeepsResult(t *testing.T) {
	cfg := testConfig(t)
	factory := func() solver.Model {
		return &scriptedModel{status: solver.Status{Code: "infeasible"}}
	}
	r := New(cfg, factory, logger.NopLogger{}, nil)
	res, err := r.RunScenario("question_1a")
	if err != nil {
		t.Fatalf("non-optimal run returned error: %v", err)
	}
	if res.Solution.Optimal {
		t.Fatalf("expected non-optimal result")
	}
	if res.Solution.Status != "infeasible" {
		t.Fatalf("status %q not passed through", res.Solution.Status)
	}
}

func TestRunScenarioExports(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.Dir = t.TempDir()
	r := New(cfg, optimalFactory(), logger.NopLogger{}, nil)
	if _, err := r.RunScenario("question_1a"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Export.Dir, "question_1a.csv")); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
}

func TestRunAllKeepsOrder(t *testing.T) {
	cfg := testConfig(t)
	r := New(cfg, optimalFactory(), logger.NopLogger{}, nil)
	results, err := r.RunAll()
	if err != nil {
		t.Fatalf("run all: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results got %d", len(results))
	}
	if results[0].Scenario != "question_1a" || results[1].Scenario != "question_2b" {
		t.Fatalf("results out of order: %s, %s", results[0].Scenario, results[1].Scenario)
	}
}

func TestRunAllAggregatesErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Scenarios = []string{"question_1a", "missing"}
	r := New(cfg, optimalFactory(), logger.NopLogger{}, nil)
	results, err := r.RunAll()
	if err == nil {
		t.Fatalf("expected error for missing scenario")
	}
	if results[0] == nil {
		t.Fatalf("healthy scenario should still produce a result")
	}
	if results[1] != nil {
		t.Fatalf("missing scenario should produce no result")
	}
}

func TestRunInvestment(t *testing.T) {
	cfg := testConfig(t)
	cfg.Investment.CapitalCostPerKWh = 0.2
	r := New(cfg, optimalFactory(), logger.NopLogger{}, nil)
	res, err := r.RunInvestment("question_2b", 0)
	if err != nil {
		t.Fatalf("run investment: %v", err)
	}
	if _, ok := res.Solution.Duals.Scalars["optimal_battery_size_kwh"]; !ok {
		t.Fatalf("investment run misses the optimised size")
	}
}
