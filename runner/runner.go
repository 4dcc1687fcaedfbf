// Package runner orchestrates the load-prepare-solve-report pipeline
// for one or more scenarios.
package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soleng-dk/flexopt/config"
	"github.com/soleng-dk/flexopt/core/logger"
	coremetrics "github.com/soleng-dk/flexopt/core/metrics"
	"github.com/soleng-dk/flexopt/core/model"
	"github.com/soleng-dk/flexopt/core/opt"
	"github.com/soleng-dk/flexopt/core/solver"
	"github.com/soleng-dk/flexopt/data"
	"github.com/soleng-dk/flexopt/pkg/export"
	"github.com/soleng-dk/flexopt/summary"
)

// Result bundles everything one scenario run produced.
type Result struct {
	Scenario string
	RunID    string
	Hourly   model.HourlyParameters
	System   model.SystemParameters
	Solution *model.Solution
	// KPIs is only populated for optimal solutions.
	KPIs summary.KPIs
}

// Runner executes scenarios. Each scenario builds into its own solver
// model, so a batch can fan out safely.
type Runner struct {
	cfg     *config.Config
	log     logger.Logger
	sink    coremetrics.Sink
	factory solver.Factory
}

// New assembles a Runner. The factory supplies a fresh solver model per
// scenario.
func New(cfg *config.Config, factory solver.Factory, log logger.Logger, sink coremetrics.Sink) *Runner {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Runner{cfg: cfg, log: log, sink: sink, factory: factory}
}

func (r *Runner) solverOptions() solver.Options {
	return solver.Options{
		TimeLimitSeconds: r.cfg.Solver.TimeLimitSeconds,
		Verbose:          r.cfg.Solver.Verbose,
	}
}

// RunScenario executes the full pipeline for one named scenario.
func (r *Runner) RunScenario(name string) (*Result, error) {
	runID := uuid.NewString()
	r.log.Infof("run %s: scenario %s starting", runID, name)

	scen, err := data.Load(r.cfg.Data.Dir, name)
	if err != nil {
		return nil, err
	}
	hourly, sys, err := data.Prepare(scen)
	if err != nil {
		return nil, err
	}
	problem, err := opt.New(hourly, sys, opt.WithLogger(r.log))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}

	start := time.Now()
	sol, err := problem.Solve(r.factory(), r.solverOptions())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	r.record(name, problem.Variant(), sol, time.Since(start))

	res := &Result{Scenario: name, RunID: runID, Hourly: hourly, System: sys, Solution: sol}
	if !sol.Optimal {
		r.log.Warnf("run %s: scenario %s ended without an optimal solution: %s", runID, name, sol.Status)
		return res, nil
	}
	if res.KPIs, err = summary.Compute(sol, hourly, sys); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	summary.Log(r.log, name, res.KPIs)
	if err := r.export(name, sol); err != nil {
		return nil, err
	}
	r.log.Infof("run %s: scenario %s done, net cost %.2f DKK", runID, name, res.KPIs.NetDailyCost)
	return res, nil
}

// RunInvestment executes the battery-sizing variant for one scenario.
// The capital cost comes from the configuration unless overridden by a
// positive argument.
func (r *Runner) RunInvestment(name string, capitalCostPerKWh float64) (*Result, error) {
	if capitalCostPerKWh <= 0 {
		capitalCostPerKWh = r.cfg.Investment.CapitalCostPerKWh
	}
	runID := uuid.NewString()
	r.log.Infof("run %s: investment scenario %s starting", runID, name)

	scen, err := data.Load(r.cfg.Data.Dir, name)
	if err != nil {
		return nil, err
	}
	hourly, sys, err := data.Prepare(scen)
	if err != nil {
		return nil, err
	}
	iv, err := opt.NewInvestment(hourly, sys, capitalCostPerKWh, opt.WithInvestmentLogger(r.log))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}

	start := time.Now()
	sol, err := iv.Solve(r.factory(), r.solverOptions())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	r.record(name, model.VariantOf(sys), sol, time.Since(start))

	res := &Result{Scenario: name, RunID: runID, Hourly: hourly, System: sys, Solution: sol}
	if !sol.Optimal {
		r.log.Warnf("run %s: investment scenario %s ended without an optimal solution: %s", runID, name, sol.Status)
		return res, nil
	}
	if res.KPIs, err = summary.Compute(sol, hourly, sys); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	if err := r.export(name+"_investment", sol); err != nil {
		return nil, err
	}
	return res, nil
}

// RunAll executes every configured scenario concurrently. Each scenario
// owns its model instance; results keep the configured order.
func (r *Runner) RunAll() ([]*Result, error) {
	names := r.cfg.Data.Scenarios
	results := make([]*Result, len(names))
	errs := make([]error, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i], errs[i] = r.RunScenario(name)
		}(i, name)
	}
	wg.Wait()
	return results, errors.Join(errs...)
}

func (r *Runner) record(name string, variant model.Variant, sol *model.Solution, dur time.Duration) {
	ev := coremetrics.SolveEvent{
		Scenario:  name,
		Variant:   variant,
		Status:    sol.Status,
		Optimal:   sol.Optimal,
		Objective: sol.Objective,
		Duration:  dur,
		Time:      time.Now(),
	}
	if err := r.sink.RecordSolve(ev); err != nil {
		r.log.Errorf("record solve metrics: %v", err)
	}
}

func (r *Runner) export(name string, sol *model.Solution) error {
	dir := r.cfg.Export.Dir
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	path := filepath.Join(dir, name+"."+r.cfg.Export.Format)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	defer f.Close()

	switch r.cfg.Export.Format {
	case "json":
		err = export.WriteJSON(f, sol)
	default:
		err = export.WriteCSV(f, sol)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	r.log.Debugf("exported %s", path)
	return nil
}
