package opt

import (
	"github.com/soleng-dk/flexopt/core/solver"
)

// constraintStage adds one constraint family to the model under
// construction. The generator for a formulation is an ordered list of
// stages, so each family stays independently testable.
type constraintStage func(ctx *buildContext)

// addPVSplit forces used plus curtailed PV to equal the available
// potential each hour.
func addPVSplit(ctx *buildContext) {
	for h := 0; h < ctx.horizon; h++ {
		c := ctx.m.AddConstraint(hourKey(conPVSplit, h), []solver.Term{
			{Var: ctx.vars.pvUsed[h], Coef: 1},
			{Var: ctx.vars.pvCurtailed[h], Coef: 1},
		}, solver.Eq, ctx.hourly[h].AvailablePV)
		ctx.reg.add(hourKey(conPVSplit, h), c)
	}
}

// addGridLimits caps import and export at the connection limits.
func addGridLimits(ctx *buildContext) {
	for h := 0; h < ctx.horizon; h++ {
		ctx.m.AddConstraint(hourKey(conMaxImport, h), []solver.Term{
			{Var: ctx.vars.gridImport[h], Coef: 1},
		}, solver.Le, ctx.sys.MaxImport)
		ctx.m.AddConstraint(hourKey(conMaxExport, h), []solver.Term{
			{Var: ctx.vars.gridExport[h], Coef: 1},
		}, solver.Le, ctx.sys.MaxExport)
	}
}

// addHourlyLoadCap caps the flexible load each hour.
func addHourlyLoadCap(ctx *buildContext) {
	for h := 0; h < ctx.horizon; h++ {
		ctx.m.AddConstraint(hourKey(conMaxHourlyLoad, h), []solver.Term{
			{Var: ctx.vars.load[h], Coef: 1},
		}, solver.Le, ctx.sys.MaxLoadPower)
	}
}

// addMinDailyEnergy adds the single daily-aggregate requirement of the
// hard-constraint variant. The row handle is registered because its
// shadow price is the variant's economic output.
func addMinDailyEnergy(ctx *buildContext) {
	terms := make([]solver.Term, ctx.horizon)
	for h := 0; h < ctx.horizon; h++ {
		terms[h] = solver.Term{Var: ctx.vars.load[h], Coef: 1}
	}
	c := ctx.m.AddConstraint(conMinDailyEnergy, terms, solver.Ge, ctx.sys.MinDailyEnergy)
	ctx.reg.add(conMinDailyEnergy, c)
}

// addDeviationSplit linearises |load - reference| into the non-negative
// pair dev_pos/dev_neg: load[h] - ref[h] = dev_pos[h] - dev_neg[h].
func addDeviationSplit(ctx *buildContext) {
	for h := 0; h < ctx.horizon; h++ {
		ctx.m.AddConstraint(hourKey(conLoadDeviation, h), []solver.Term{
			{Var: ctx.vars.load[h], Coef: 1},
			{Var: ctx.vars.devPos[h], Coef: -1},
			{Var: ctx.vars.devNeg[h], Coef: 1},
		}, solver.Eq, ctx.hourly[h].ReferenceLoad)
	}
}

// addEnergyBalance adds the hourly balance without storage:
// pv_used[h] + import[h] = load[h] + export[h]. Handles are registered;
// in the soft-constraint variant these rows carry the marginal-price
// signal.
func addEnergyBalance(ctx *buildContext) {
	for h := 0; h < ctx.horizon; h++ {
		c := ctx.m.AddConstraint(hourKey(conEnergyBalance, h), []solver.Term{
			{Var: ctx.vars.pvUsed[h], Coef: 1},
			{Var: ctx.vars.gridImport[h], Coef: 1},
			{Var: ctx.vars.load[h], Coef: -1},
			{Var: ctx.vars.gridExport[h], Coef: -1},
		}, solver.Eq, 0)
		ctx.reg.add(hourKey(conEnergyBalance, h), c)
	}
}

// addBatteryEnergyBalance adds the hourly balance with storage flows on
// both sides: pv_used + import + discharge = load + export + charge.
func addBatteryEnergyBalance(ctx *buildContext) {
	for h := 0; h < ctx.horizon; h++ {
		c := ctx.m.AddConstraint(hourKey(conEnergyBalance, h), []solver.Term{
			{Var: ctx.vars.pvUsed[h], Coef: 1},
			{Var: ctx.vars.gridImport[h], Coef: 1},
			{Var: ctx.vars.discharge[h], Coef: 1},
			{Var: ctx.vars.load[h], Coef: -1},
			{Var: ctx.vars.gridExport[h], Coef: -1},
			{Var: ctx.vars.charge[h], Coef: -1},
		}, solver.Eq, 0)
		ctx.reg.add(hourKey(conEnergyBalance, h), c)
	}
}

// addBatteryDynamics adds the fixed-capacity storage constraints: power
// caps, SOC ceiling, the SOC recursion
// soc[h] = soc[h-1] + charge[h]*eta_c - discharge[h]/eta_d with the
// imposed initial state at h=0, and the imposed terminal state.
func addBatteryDynamics(ctx *buildContext) {
	bat := ctx.sys.Battery
	last := ctx.horizon - 1
	for h := 0; h < ctx.horizon; h++ {
		ctx.m.AddConstraint(hourKey(conMaxCharge, h), []solver.Term{
			{Var: ctx.vars.charge[h], Coef: 1},
		}, solver.Le, bat.MaxCharge)
		ctx.m.AddConstraint(hourKey(conMaxDischarge, h), []solver.Term{
			{Var: ctx.vars.discharge[h], Coef: 1},
		}, solver.Le, bat.MaxDischarge)
		ctx.m.AddConstraint(hourKey(conMaxSOC, h), []solver.Term{
			{Var: ctx.vars.soc[h], Coef: 1},
		}, solver.Le, bat.Capacity)

		terms := []solver.Term{
			{Var: ctx.vars.soc[h], Coef: 1},
			{Var: ctx.vars.charge[h], Coef: -bat.ChargeEfficiency},
			{Var: ctx.vars.discharge[h], Coef: 1 / bat.DischargeEfficiency},
		}
		rhs := 0.0
		if h == 0 {
			rhs = bat.InitialSOC
		} else {
			terms = append(terms, solver.Term{Var: ctx.vars.soc[h-1], Coef: -1})
		}
		ctx.m.AddConstraint(hourKey(conSOCUpdate, h), terms, solver.Eq, rhs)
	}
	ctx.m.AddConstraint(conFinalSOC, []solver.Term{
		{Var: ctx.vars.soc[last], Coef: 1},
	}, solver.Eq, bat.FinalSOC)
}
