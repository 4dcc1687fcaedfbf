package opt

import (
	"fmt"

	"github.com/soleng-dk/flexopt/core/logger"
	"github.com/soleng-dk/flexopt/core/model"
	"github.com/soleng-dk/flexopt/core/solver"
)

// Investment co-optimises battery capacity and its daily dispatch. The
// load is pinned to the reference profile, the power caps scale with
// the sizing variable at the reference design's power-to-energy ratios,
// and both boundary states of charge sit at half the chosen capacity.
type Investment struct {
	hourly            model.HourlyParameters
	sys               model.SystemParameters
	capitalCostPerKWh float64
	log               logger.Logger
}

// InvestmentOption customises an Investment.
type InvestmentOption func(*Investment)

// WithInvestmentLogger attaches a logger; the default discards
// everything.
func WithInvestmentLogger(l logger.Logger) InvestmentOption {
	return func(iv *Investment) { iv.log = l }
}

// NewInvestment validates the inputs and returns a sizing problem. The
// battery block supplies the reference design and the hourly table must
// carry the reference load profile the load is pinned to; absence of
// either is a configuration error.
func NewInvestment(hourly model.HourlyParameters, sys model.SystemParameters, capitalCostPerKWh float64, opts ...InvestmentOption) (*Investment, error) {
	if err := hourly.Validate(); err != nil {
		return nil, err
	}
	if sys.Battery == nil {
		return nil, fmt.Errorf("investment model: battery reference design missing")
	}
	if err := sys.Battery.Validate(); err != nil {
		return nil, err
	}
	var refTotal float64
	for _, hp := range hourly {
		refTotal += hp.ReferenceLoad
	}
	if refTotal <= 0 {
		return nil, fmt.Errorf("investment model: reference load profile missing")
	}
	if capitalCostPerKWh <= 0 {
		return nil, fmt.Errorf("investment model: capital cost must be positive, got %v", capitalCostPerKWh)
	}
	iv := &Investment{
		hourly:            hourly,
		sys:               sys,
		capitalCostPerKWh: capitalCostPerKWh,
		log:               nopLogger{},
	}
	for _, opt := range opts {
		opt(iv)
	}
	return iv, nil
}

// addFixedLoad pins consumption to the reference profile.
func addFixedLoad(ctx *buildContext) {
	for h := 0; h < ctx.horizon; h++ {
		ctx.m.AddConstraint(hourKey(conFixedLoad, h), []solver.Term{
			{Var: ctx.vars.load[h], Coef: 1},
		}, solver.Eq, ctx.hourly[h].ReferenceLoad)
	}
}

// addCapacityCoupledDynamics is the investment counterpart of
// addBatteryDynamics: SOC and power caps couple to the sizing variable,
// and the recursion starts from half the chosen capacity.
func addCapacityCoupledDynamics(ctx *buildContext) {
	ref := ctx.sys.Battery
	chargeRatio := ref.MaxCharge / ref.Capacity
	dischargeRatio := ref.MaxDischarge / ref.Capacity
	cap := ctx.vars.capacity
	last := ctx.horizon - 1

	for h := 0; h < ctx.horizon; h++ {
		ctx.m.AddConstraint(hourKey(conMaxSOC, h), []solver.Term{
			{Var: ctx.vars.soc[h], Coef: 1},
			{Var: cap, Coef: -1},
		}, solver.Le, 0)
		ctx.m.AddConstraint(hourKey(conMaxCharge, h), []solver.Term{
			{Var: ctx.vars.charge[h], Coef: 1},
			{Var: cap, Coef: -chargeRatio},
		}, solver.Le, 0)
		ctx.m.AddConstraint(hourKey(conMaxDischarge, h), []solver.Term{
			{Var: ctx.vars.discharge[h], Coef: 1},
			{Var: cap, Coef: -dischargeRatio},
		}, solver.Le, 0)

		terms := []solver.Term{
			{Var: ctx.vars.soc[h], Coef: 1},
			{Var: ctx.vars.charge[h], Coef: -ref.ChargeEfficiency},
			{Var: ctx.vars.discharge[h], Coef: 1 / ref.DischargeEfficiency},
		}
		if h == 0 {
			terms = append(terms, solver.Term{Var: cap, Coef: -0.5})
		} else {
			terms = append(terms, solver.Term{Var: ctx.vars.soc[h-1], Coef: -1})
		}
		ctx.m.AddConstraint(hourKey(conSOCUpdate, h), terms, solver.Eq, 0)
	}
	ctx.m.AddConstraint(conFinalSOC, []solver.Term{
		{Var: ctx.vars.soc[last], Coef: 1},
		{Var: cap, Coef: -0.5},
	}, solver.Eq, 0)
}

func (iv *Investment) build(m solver.Model) *buildContext {
	ctx := newBuildContext(iv.hourly, iv.sys, m)

	addBaseVariables(ctx)
	addBatteryVariables(ctx)
	addCapacityVariable(ctx)

	setInvestmentObjective(ctx, iv.capitalCostPerKWh)

	for _, stage := range []constraintStage{
		addPVSplit,
		addGridLimits,
		addFixedLoad,
		addBatteryEnergyBalance,
		addCapacityCoupledDynamics,
	} {
		stage(ctx)
	}
	return ctx
}

// Solve builds the sizing model, invokes the solver and extracts the
// dispatch schedule plus the optimal capacity. Non-optimal outcomes are
// returned as a status-only Solution, not an error.
func (iv *Investment) Solve(m solver.Model, opts solver.Options) (*model.Solution, error) {
	ctx := iv.build(m)
	iv.log.Debugw("investment model built", map[string]any{
		"horizon":      ctx.horizon,
		"capital_cost": iv.capitalCostPerKWh,
	})

	res, err := m.Solve(opts)
	if err != nil {
		return nil, fmt.Errorf("solve investment: %w", err)
	}
	st := res.Status()
	if !st.Optimal {
		iv.log.Warnf("no optimal investment solution: %s", st.Code)
		return &model.Solution{Status: st.Code, Duals: model.NewDualValues()}, nil
	}

	schedule, cols := extractSchedule(ctx, res)
	sol := &model.Solution{
		Optimal:   true,
		Status:    st.Code,
		Schedule:  schedule,
		Columns:   cols,
		Objective: res.Objective(),
		Duals:     model.NewDualValues(),
	}
	sol.Duals.Scalars[model.DualBatterySize] = res.Value(ctx.vars.capacity)
	iv.log.Infof("optimal battery size %.2f kWh at %.2f DKK/kWh capital cost",
		sol.Duals.Scalars[model.DualBatterySize], iv.capitalCostPerKWh)
	return sol, nil
}
