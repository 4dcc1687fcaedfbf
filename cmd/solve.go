package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soleng-dk/flexopt/config"
	coremetrics "github.com/soleng-dk/flexopt/core/metrics"
	"github.com/soleng-dk/flexopt/infra/logger"
	"github.com/soleng-dk/flexopt/infra/metrics"
	highssolver "github.com/soleng-dk/flexopt/infra/solver"
	"github.com/soleng-dk/flexopt/runner"
	"github.com/soleng-dk/flexopt/summary"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve the configured scheduling scenarios",
	RunE:  runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)
}

func newRunner() (*runner.Runner, *config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New("runner")
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if cfg.Metrics.PrometheusEnabled {
		promSink, err := metrics.NewPromSink()
		if err != nil {
			return nil, nil, fmt.Errorf("prom sink: %w", err)
		}
		sink = promSink
	}
	return runner.New(cfg, highssolver.Factory, log, sink), cfg, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	r, _, err := newRunner()
	if err != nil {
		return err
	}
	results, err := r.RunAll()
	if err != nil {
		return err
	}
	for _, res := range results {
		if res == nil || !res.Solution.Optimal {
			continue
		}
		fmt.Printf("=== %s ===\n", res.Scenario)
		fmt.Print(summary.Render(res.KPIs, res.Solution.Duals))
	}
	return nil
}
