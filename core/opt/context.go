package opt

import (
	"fmt"

	"github.com/soleng-dk/flexopt/core/model"
	"github.com/soleng-dk/flexopt/core/solver"
)

// Constraint family names. The registry keys dual extraction by these,
// so extraction logic depends on well-known names rather than object
// identity.
const (
	conPVSplit        = "pv_production_limit"
	conEnergyBalance  = "energy_balance"
	conMinDailyEnergy = "min_total_daily_energy"
	conMaxHourlyLoad  = "max_hourly_load"
	conMaxImport      = "max_import"
	conMaxExport      = "max_export"
	conLoadDeviation  = "load_deviation"
	conMaxSOC         = "max_soc"
	conMaxCharge      = "max_charge"
	conMaxDischarge   = "max_discharge"
	conSOCUpdate      = "soc_update"
	conFinalSOC       = "final_soc"
	conFixedLoad      = "fixed_load_profile"
)

// registry maps symbolic constraint names to solver row handles.
type registry map[string]solver.Con

func (r registry) add(name string, c solver.Con) { r[name] = c }

func (r registry) lookup(name string) (solver.Con, bool) {
	c, ok := r[name]
	return c, ok
}

// hourKey builds the registry key for the h-th member of a constraint
// family.
func hourKey(name string, h int) string {
	return fmt.Sprintf("%s[%d]", name, h)
}

// variableSet holds the solver handles of the instantiated decision
// variables. Slices are indexed by hour; absent families are nil.
type variableSet struct {
	pvUsed      []solver.Var
	load        []solver.Var
	gridImport  []solver.Var
	gridExport  []solver.Var
	pvCurtailed []solver.Var

	// Soft-constraint deviation split.
	devPos []solver.Var
	devNeg []solver.Var

	// Battery dispatch.
	charge    []solver.Var
	discharge []solver.Var
	soc       []solver.Var

	// Investment sizing.
	capacity    solver.Var
	hasCapacity bool
}

func (v *variableSet) hasDeviation() bool { return v.devPos != nil }
func (v *variableSet) hasBattery() bool   { return v.soc != nil }

// buildContext is the shared state threaded through the variable
// builder, objective composer and constraint generator. It is created
// fresh per solve and never outlives one build-solve-extract cycle.
type buildContext struct {
	horizon int
	hourly  model.HourlyParameters
	sys     model.SystemParameters

	m    solver.Model
	vars variableSet
	reg  registry
}

func newBuildContext(hourly model.HourlyParameters, sys model.SystemParameters, m solver.Model) *buildContext {
	return &buildContext{
		horizon: hourly.Horizon(),
		hourly:  hourly,
		sys:     sys,
		m:       m,
		reg:     make(registry),
	}
}
