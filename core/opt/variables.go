package opt

import (
	"fmt"

	"github.com/soleng-dk/flexopt/core/solver"
)

// addHourVars creates one variable per hour of the horizon.
func addHourVars(ctx *buildContext, name string) []solver.Var {
	vars := make([]solver.Var, ctx.horizon)
	for h := range vars {
		vars[h] = ctx.m.AddVar(fmt.Sprintf("%s_%d", name, h))
	}
	return vars
}

// addBaseVariables instantiates the flow variables every formulation
// shares. All variables are continuous and lower-bounded at zero; upper
// bounds are added as constraint rows so they stay adjustable without
// rebuilding the variable set.
func addBaseVariables(ctx *buildContext) {
	ctx.vars.pvUsed = addHourVars(ctx, "pv_used")
	ctx.vars.load = addHourVars(ctx, "load")
	ctx.vars.gridImport = addHourVars(ctx, "import")
	ctx.vars.gridExport = addHourVars(ctx, "export")
	ctx.vars.pvCurtailed = addHourVars(ctx, "pv_curtailed")
}

// addDeviationVariables instantiates the positive/negative deviation
// split of the soft-constraint variant.
func addDeviationVariables(ctx *buildContext) {
	ctx.vars.devPos = addHourVars(ctx, "dev_pos")
	ctx.vars.devNeg = addHourVars(ctx, "dev_neg")
}

// addBatteryVariables instantiates charge, discharge and state of
// charge.
func addBatteryVariables(ctx *buildContext) {
	ctx.vars.charge = addHourVars(ctx, "charge")
	ctx.vars.discharge = addHourVars(ctx, "discharge")
	ctx.vars.soc = addHourVars(ctx, "soc")
}

// addCapacityVariable instantiates the single sizing variable of the
// investment model.
func addCapacityVariable(ctx *buildContext) {
	ctx.vars.capacity = ctx.m.AddVar("battery_capacity")
	ctx.vars.hasCapacity = true
}
