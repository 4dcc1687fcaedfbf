package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soleng-dk/flexopt/core/model"
	"github.com/soleng-dk/flexopt/summary"
)

var capitalCost float64

var investCmd = &cobra.Command{
	Use:   "invest [scenario]",
	Short: "Co-optimise battery size and dispatch for one scenario",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvest,
}

func init() {
	investCmd.Flags().Float64Var(&capitalCost, "capital-cost", 0,
		"amortised capital cost in DKK/kWh (overrides the configuration)")
	rootCmd.AddCommand(investCmd)
}

func runInvest(cmd *cobra.Command, args []string) error {
	r, _, err := newRunner()
	if err != nil {
		return err
	}
	res, err := r.RunInvestment(args[0], capitalCost)
	if err != nil {
		return err
	}
	if !res.Solution.Optimal {
		return fmt.Errorf("scenario %s: no optimal solution (%s)", res.Scenario, res.Solution.Status)
	}
	fmt.Printf("=== %s (investment) ===\n", res.Scenario)
	fmt.Print(summary.Render(res.KPIs, res.Solution.Duals))
	fmt.Printf("Optimal battery size: %.2f kWh\n", res.Solution.Duals.Scalars[model.DualBatterySize])
	return nil
}
