package opt

import (
	"fmt"

	"github.com/soleng-dk/flexopt/core/logger"
	"github.com/soleng-dk/flexopt/core/model"
	"github.com/soleng-dk/flexopt/core/solver"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// Problem is one operational scheduling instance: a fixed horizon of
// hourly inputs plus the system scalars selecting the formulation. A
// Problem builds into a fresh solver model on every Solve call and
// shares no variable or constraint state across calls.
type Problem struct {
	hourly  model.HourlyParameters
	sys     model.SystemParameters
	variant model.Variant
	log     logger.Logger
}

// Option customises a Problem.
type Option func(*Problem)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l logger.Logger) Option {
	return func(p *Problem) { p.log = l }
}

// New validates the inputs and returns a Problem. Validation failures
// are configuration errors: they surface here, before any model
// variable exists, and are never defaulted away.
func New(hourly model.HourlyParameters, sys model.SystemParameters, opts ...Option) (*Problem, error) {
	if err := hourly.Validate(); err != nil {
		return nil, err
	}
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	p := &Problem{
		hourly:  hourly,
		sys:     sys,
		variant: model.VariantOf(sys),
		log:     nopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Variant reports the active formulation.
func (p *Problem) Variant() model.Variant { return p.variant }

// build instantiates variables, objective and constraints into m.
func (p *Problem) build(m solver.Model) *buildContext {
	ctx := newBuildContext(p.hourly, p.sys, m)

	addBaseVariables(ctx)
	if p.variant.Problem == model.SoftConstraint {
		addDeviationVariables(ctx)
	}
	if p.variant.Battery {
		addBatteryVariables(ctx)
	}

	switch p.variant.Problem {
	case model.HardConstraint:
		setCostObjective(ctx)
	case model.SoftConstraint:
		setNormalizedObjective(ctx)
	}

	for _, stage := range p.stages() {
		stage(ctx)
	}
	return ctx
}

// stages selects the constraint-assembly pipeline for the active
// formulation. The load and balance families are mutually exclusive by
// construction; the shared families are identical across variants.
func (p *Problem) stages() []constraintStage {
	stages := []constraintStage{addPVSplit, addGridLimits, addHourlyLoadCap}
	switch p.variant.Problem {
	case model.HardConstraint:
		stages = append(stages, addMinDailyEnergy)
	case model.SoftConstraint:
		stages = append(stages, addDeviationSplit)
	}
	if p.variant.Battery {
		stages = append(stages, addBatteryEnergyBalance, addBatteryDynamics)
	} else {
		stages = append(stages, addEnergyBalance)
	}
	return stages
}

// Solve builds the model, invokes the solver and extracts the schedule
// and duals. The call blocks until the solver terminates. A non-optimal
// outcome is not an error: the returned Solution carries the raw status
// and no schedule. The error reports backend invocation failures only.
func (p *Problem) Solve(m solver.Model, opts solver.Options) (*model.Solution, error) {
	ctx := p.build(m)
	p.log.Debugw("model built", map[string]any{
		"variant": p.variant.String(),
		"horizon": ctx.horizon,
	})

	res, err := m.Solve(opts)
	if err != nil {
		return nil, fmt.Errorf("solve %s: %w", p.variant, err)
	}
	st := res.Status()
	if !st.Optimal {
		p.log.Warnf("no optimal solution for %s: %s", p.variant, st.Code)
		return &model.Solution{Status: st.Code, Duals: model.NewDualValues()}, nil
	}
	p.log.Infof("optimal solution found for %s, objective %.4f", p.variant, res.Objective())
	return p.extract(ctx, res), nil
}
