package opt

import (
	"github.com/soleng-dk/flexopt/core/solver"
)

// costTerms builds the daily energy cost expression
// sum_h import[h]*(price[h]+import_tariff) - export[h]*(price[h]-export_tariff),
// optionally scaled.
func costTerms(ctx *buildContext, scale float64) []solver.Term {
	terms := make([]solver.Term, 0, 2*ctx.horizon)
	for h := 0; h < ctx.horizon; h++ {
		price := ctx.hourly[h].Price
		terms = append(terms,
			solver.Term{Var: ctx.vars.gridImport[h], Coef: scale * (price + ctx.sys.ImportTariff)},
			solver.Term{Var: ctx.vars.gridExport[h], Coef: -scale * (price - ctx.sys.ExportTariff)},
		)
	}
	return terms
}

// setCostObjective sets the cost-only objective of the hard-constraint
// variant.
func setCostObjective(ctx *buildContext) {
	ctx.m.SetObjective(costTerms(ctx, 1))
}

// setNormalizedObjective sets the dimensionless cost+comfort trade-off
// of the soft-constraint variant. The cost term is normalised by the
// reference import cost and the comfort term by the total reference
// energy, making one unit of either commensurable. Both denominators
// are validated positive before any variable exists; they are never
// recomputed here.
func setNormalizedObjective(ctx *buildContext) {
	terms := costTerms(ctx, 1/ctx.sys.ReferenceImportCost)
	comfortScale := 1 / ctx.sys.TotalReferenceEnergy
	for h := 0; h < ctx.horizon; h++ {
		terms = append(terms,
			solver.Term{Var: ctx.vars.devPos[h], Coef: comfortScale},
			solver.Term{Var: ctx.vars.devNeg[h], Coef: comfortScale},
		)
	}
	ctx.m.SetObjective(terms)
}

// setInvestmentObjective extends the cost-only objective with the
// amortised capital cost of the sizing variable.
func setInvestmentObjective(ctx *buildContext, capitalCostPerKWh float64) {
	terms := costTerms(ctx, 1)
	terms = append(terms, solver.Term{Var: ctx.vars.capacity, Coef: capitalCostPerKWh})
	ctx.m.SetObjective(terms)
}
