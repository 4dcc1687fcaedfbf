package opt

import (
	"github.com/soleng-dk/flexopt/core/model"
	"github.com/soleng-dk/flexopt/core/solver"
)

// extractSchedule reads the primal solution into the ordered schedule
// table. Deviation and battery columns are appended only when the
// corresponding variables exist.
func extractSchedule(ctx *buildContext, res solver.Result) ([]model.HourSchedule, model.ScheduleColumns) {
	cols := model.ScheduleColumns{
		Deviation: ctx.vars.hasDeviation(),
		Battery:   ctx.vars.hasBattery(),
	}
	schedule := make([]model.HourSchedule, ctx.horizon)
	for h := 0; h < ctx.horizon; h++ {
		imp := res.Value(ctx.vars.gridImport[h])
		exp := res.Value(ctx.vars.gridExport[h])
		price := ctx.hourly[h].Price
		row := model.HourSchedule{
			Hour:        h,
			PVUsed:      res.Value(ctx.vars.pvUsed[h]),
			PVCurtailed: res.Value(ctx.vars.pvCurtailed[h]),
			Load:        res.Value(ctx.vars.load[h]),
			GridImport:  imp,
			GridExport:  exp,
			Cost:        imp*(price+ctx.sys.ImportTariff) - exp*(price-ctx.sys.ExportTariff),
		}
		if cols.Deviation {
			row.DevPos = res.Value(ctx.vars.devPos[h])
			row.DevNeg = res.Value(ctx.vars.devNeg[h])
		}
		if cols.Battery {
			row.BatteryCharge = res.Value(ctx.vars.charge[h])
			row.BatteryDischarge = res.Value(ctx.vars.discharge[h])
			row.BatterySOC = res.Value(ctx.vars.soc[h])
		}
		schedule[h] = row
	}
	return schedule, cols
}

// extract assembles the Solution for an optimal operational solve.
func (p *Problem) extract(ctx *buildContext, res solver.Result) *model.Solution {
	schedule, cols := extractSchedule(ctx, res)
	sol := &model.Solution{
		Optimal:   true,
		Status:    res.Status().Code,
		Schedule:  schedule,
		Columns:   cols,
		Objective: res.Objective(),
		Duals:     model.NewDualValues(),
	}

	switch p.variant.Problem {
	case model.HardConstraint:
		// The daily minimum is the only economically meaningful dual
		// here. For a ">=" row in a minimisation the backend reports
		// the marginal cost of raising the requirement, already signed
		// as a price.
		if c, ok := ctx.reg.lookup(conMinDailyEnergy); ok {
			if d, ok := res.Dual(c); ok {
				sol.Duals.Scalars[model.DualMinEnergy] = d
			}
		}
	case model.SoftConstraint:
		// The per-hour balance duals are the marginal-price signal.
		// The objective's cost term is scaled by 1/C_I_tot, so the
		// duals come back normalised and are un-scaled by the same
		// global factor.
		prices := make([]float64, 0, ctx.horizon)
		for h := 0; h < ctx.horizon; h++ {
			c, ok := ctx.reg.lookup(hourKey(conEnergyBalance, h))
			if !ok {
				break
			}
			d, ok := res.Dual(c)
			if !ok {
				break
			}
			prices = append(prices, d*ctx.sys.ReferenceImportCost)
		}
		if len(prices) == ctx.horizon {
			sol.Duals.Series[model.DualMarginalPrice] = prices
		}
	}
	return sol
}
