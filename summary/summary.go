// Package summary computes key performance indicators from an optimal
// schedule and renders them for reporting.
package summary

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/soleng-dk/flexopt/core/logger"
	"github.com/soleng-dk/flexopt/core/model"
)

// KPIs aggregates energy, financial and performance figures of one
// solved scenario.
type KPIs struct {
	TotalPVAvailable float64
	TotalPVUsed      float64
	TotalPVCurtailed float64
	TotalLoad        float64
	TotalImport      float64
	TotalExport      float64

	NetDailyCost  float64
	ImportCost    float64
	ExportRevenue float64

	// SelfSufficiency is the share of load met by own PV, in percent.
	SelfSufficiency float64
	// SelfConsumption is the share of used PV that supplied the load,
	// in percent.
	SelfConsumption float64

	BatteryThroughput float64
}

// Compute derives the KPIs from a solution and the inputs it was solved
// against. The solution must be optimal.
func Compute(sol *model.Solution, hourly model.HourlyParameters, sys model.SystemParameters) (KPIs, error) {
	if sol == nil || !sol.Optimal || len(sol.Schedule) == 0 {
		return KPIs{}, fmt.Errorf("summary: an optimal, non-empty solution is required")
	}
	n := len(sol.Schedule)
	available := make([]float64, n)
	pvUsed := make([]float64, n)
	curtailed := make([]float64, n)
	load := make([]float64, n)
	imp := make([]float64, n)
	exp := make([]float64, n)
	cost := make([]float64, n)
	importCost := make([]float64, n)
	exportRevenue := make([]float64, n)
	selfConsumed := make([]float64, n)

	for i, row := range sol.Schedule {
		price := hourly[row.Hour].Price
		available[i] = hourly[row.Hour].AvailablePV
		pvUsed[i] = row.PVUsed
		curtailed[i] = row.PVCurtailed
		load[i] = row.Load
		imp[i] = row.GridImport
		exp[i] = row.GridExport
		cost[i] = row.Cost
		importCost[i] = row.GridImport * (price + sys.ImportTariff)
		exportRevenue[i] = row.GridExport * (price - sys.ExportTariff)
		selfConsumed[i] = math.Min(row.PVUsed, row.Load)
	}

	k := KPIs{
		TotalPVAvailable: floats.Sum(available),
		TotalPVUsed:      floats.Sum(pvUsed),
		TotalPVCurtailed: floats.Sum(curtailed),
		TotalLoad:        floats.Sum(load),
		TotalImport:      floats.Sum(imp),
		TotalExport:      floats.Sum(exp),
		NetDailyCost:     floats.Sum(cost),
		ImportCost:       floats.Sum(importCost),
		ExportRevenue:    floats.Sum(exportRevenue),
	}
	pvSelf := floats.Sum(selfConsumed)
	if k.TotalLoad > 0 {
		k.SelfSufficiency = pvSelf / k.TotalLoad * 100
	}
	if k.TotalPVUsed > 0 {
		k.SelfConsumption = pvSelf / k.TotalPVUsed * 100
	}
	if sol.Columns.Battery {
		for _, row := range sol.Schedule {
			k.BatteryThroughput += row.BatteryCharge + row.BatteryDischarge
		}
	}
	return k, nil
}

// Render produces a human-readable report including the dual results.
func Render(k KPIs, duals model.DualValues) string {
	var b strings.Builder
	b.WriteString("--- Optimization Result Summary ---\n")

	b.WriteString("\n[ Financials ]\n")
	if k.NetDailyCost >= 0 {
		fmt.Fprintf(&b, "  Net Daily Cost: %.2f DKK\n", k.NetDailyCost)
	} else {
		fmt.Fprintf(&b, "  Net Daily Profit: %.2f DKK\n", -k.NetDailyCost)
	}
	fmt.Fprintf(&b, "  - Cost of Imports: %.2f DKK\n", k.ImportCost)
	fmt.Fprintf(&b, "  - Revenue from Exports: %.2f DKK\n", k.ExportRevenue)

	b.WriteString("\n[ Energy Flow (kWh) ]\n")
	fmt.Fprintf(&b, "  Total Load Consumption: %.2f kWh\n", k.TotalLoad)
	fmt.Fprintf(&b, "  - Grid Import: %.2f kWh\n", k.TotalImport)
	fmt.Fprintf(&b, "  - Grid Export: %.2f kWh\n", k.TotalExport)

	b.WriteString("\n[ PV Performance ]\n")
	fmt.Fprintf(&b, "  Available PV Generation: %.2f kWh\n", k.TotalPVAvailable)
	fmt.Fprintf(&b, "  - PV Used: %.2f kWh\n", k.TotalPVUsed)
	fmt.Fprintf(&b, "  - PV Curtailed: %.2f kWh\n", k.TotalPVCurtailed)

	if k.BatteryThroughput > 0 {
		b.WriteString("\n[ Battery ]\n")
		fmt.Fprintf(&b, "  Total Throughput: %.2f kWh\n", k.BatteryThroughput)
	}

	b.WriteString("\n[ Performance Ratios ]\n")
	fmt.Fprintf(&b, "  Self-Sufficiency Ratio: %.1f%%\n", k.SelfSufficiency)
	fmt.Fprintf(&b, "  Self-Consumption Ratio: %.1f%%\n", k.SelfConsumption)

	if len(duals.Scalars) > 0 || len(duals.Series) > 0 {
		b.WriteString("\n[ Shadow Prices ]\n")
		names := make([]string, 0, len(duals.Scalars))
		for name := range duals.Scalars {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %s: %.4f\n", name, duals.Scalars[name])
		}
		names = names[:0]
		for name := range duals.Series {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			series := duals.Series[name]
			fmt.Fprintf(&b, "  %s: %d hourly values, mean %.4f\n",
				name, len(series), floats.Sum(series)/float64(len(series)))
		}
	}
	b.WriteString("\n------------------------------------\n")
	return b.String()
}

// Log emits the KPIs as structured fields.
func Log(log logger.Logger, scenario string, k KPIs) {
	log.Debugw("scenario summary", map[string]any{
		"scenario":         scenario,
		"net_cost_dkk":     k.NetDailyCost,
		"total_load_kwh":   k.TotalLoad,
		"total_import_kwh": k.TotalImport,
		"total_export_kwh": k.TotalExport,
		"pv_used_kwh":      k.TotalPVUsed,
		"pv_curtailed_kwh": k.TotalPVCurtailed,
		"self_sufficiency": k.SelfSufficiency,
		"self_consumption": k.SelfConsumption,
	})
}
