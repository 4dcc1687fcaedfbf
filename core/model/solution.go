package model

// Dual map keys produced by the extraction stage.
const (
	// DualMinEnergy is the shadow price of the daily minimum-energy
	// constraint (hard-constraint variant), in DKK/kWh.
	DualMinEnergy = "min_energy_shadow_price"
	// DualMarginalPrice is the per-hour marginal price of consumption
	// recovered from the energy-balance duals (soft-constraint
	// variant), in DKK/kWh.
	DualMarginalPrice = "marginal_price"
	// DualBatterySize is the optimised storage capacity from the
	// investment model, in kWh.
	DualBatterySize = "optimal_battery_size_kwh"
)

// HourSchedule is one row of the optimal schedule. Flows are in kW,
// state of charge in kWh, cost in DKK.
type HourSchedule struct {
	Hour        int
	PVUsed      float64
	PVCurtailed float64
	Load        float64
	GridImport  float64
	GridExport  float64
	// Cost is import*(price+import tariff) - export*(price-export tariff).
	Cost float64

	// Deviation columns, populated when Columns.Deviation is set.
	DevPos float64
	DevNeg float64

	// Battery columns, populated when Columns.Battery is set.
	BatteryCharge    float64
	BatteryDischarge float64
	BatterySOC       float64
}

// ScheduleColumns records which optional column groups carry data, so
// reporting stages need no knowledge of the formulation that produced
// the schedule.
type ScheduleColumns struct {
	Deviation bool
	Battery   bool
}

// DualValues maps well-known names to shadow prices and derived scalars.
// Both maps are always non-nil; an empty map means the active
// formulation had no constraint handle to read.
type DualValues struct {
	Scalars map[string]float64
	Series  map[string][]float64
}

// NewDualValues returns an empty, non-nil dual map pair.
func NewDualValues() DualValues {
	return DualValues{
		Scalars: make(map[string]float64),
		Series:  make(map[string][]float64),
	}
}

// Solution is the outcome of one build-solve-extract cycle. It is
// created fresh per solve, never mutated afterwards, and owned by the
// caller.
type Solution struct {
	// Optimal reports whether the solver proved optimality. When
	// false, Schedule is nil and Duals is empty; Status carries the
	// solver's raw verdict for diagnostics.
	Optimal bool
	// Status is the backend's status string, passed through opaquely.
	Status string

	Schedule []HourSchedule
	Columns  ScheduleColumns
	Duals    DualValues
	// Objective is the optimal objective value as reported by the
	// solver. For the soft-constraint variant it is dimensionless.
	Objective float64
}

// TotalCost sums the per-hour cost column in DKK.
func (s *Solution) TotalCost() float64 {
	var total float64
	for _, h := range s.Schedule {
		total += h.Cost
	}
	return total
}

// TotalLoad sums scheduled consumption in kWh.
func (s *Solution) TotalLoad() float64 {
	var total float64
	for _, h := range s.Schedule {
		total += h.Load
	}
	return total
}
