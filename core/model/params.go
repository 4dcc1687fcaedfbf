package model

import (
	"fmt"
)

// ProblemType selects how the daily energy requirement is enforced.
type ProblemType int

const (
	// HardConstraint enforces a strict minimum on total daily energy.
	HardConstraint ProblemType = iota
	// SoftConstraint penalises deviation from a reference load profile
	// instead of enforcing a minimum.
	SoftConstraint
)

func (p ProblemType) String() string {
	switch p {
	case HardConstraint:
		return "hard_constraint"
	case SoftConstraint:
		return "soft_constraint"
	default:
		return fmt.Sprintf("problem_type(%d)", int(p))
	}
}

// ParseProblemType converts the textual form used in scenario files.
func ParseProblemType(s string) (ProblemType, error) {
	switch s {
	case "hard_constraint":
		return HardConstraint, nil
	case "soft_constraint":
		return SoftConstraint, nil
	default:
		return 0, fmt.Errorf("unknown problem type %q", s)
	}
}

// HourParams carries the inputs that vary by the hour.
type HourParams struct {
	// Price is the energy price in DKK/kWh. It may be negative.
	Price float64
	// AvailablePV is the PV generation potential in kW.
	AvailablePV float64
	// ReferenceLoad is the reference consumption profile in kW. Only
	// meaningful for the soft-constraint variant and the investment
	// model; zero otherwise.
	ReferenceLoad float64
}

// HourlyParameters is the ordered per-hour input table. The slice index
// is the hour and is the join key with dual results.
type HourlyParameters []HourParams

// Horizon returns the number of time steps.
func (h HourlyParameters) Horizon() int { return len(h) }

// Validate checks the table is non-empty and physically sensible.
func (h HourlyParameters) Validate() error {
	if len(h) == 0 {
		return fmt.Errorf("hourly parameters: empty horizon")
	}
	for i, hp := range h {
		if hp.AvailablePV < 0 {
			return fmt.Errorf("hourly parameters: negative available PV at hour %d", i)
		}
		if hp.ReferenceLoad < 0 {
			return fmt.Errorf("hourly parameters: negative reference load at hour %d", i)
		}
	}
	return nil
}

// BatteryParams describes the storage unit attached to the consumer.
type BatteryParams struct {
	// Capacity is the usable energy capacity in kWh.
	Capacity float64
	// InitialSOC and FinalSOC are the imposed boundary states of charge
	// in kWh. The investment model ignores them and pins both ends to
	// half the optimised capacity.
	InitialSOC float64
	FinalSOC   float64
	// MaxCharge and MaxDischarge are power caps in kW.
	MaxCharge    float64
	MaxDischarge float64
	// ChargeEfficiency and DischargeEfficiency are in (0, 1].
	ChargeEfficiency    float64
	DischargeEfficiency float64
}

// Validate checks the battery block for values the optimiser cannot work with.
func (b BatteryParams) Validate() error {
	if b.Capacity <= 0 {
		return fmt.Errorf("battery: capacity must be positive, got %v", b.Capacity)
	}
	if b.ChargeEfficiency <= 0 || b.ChargeEfficiency > 1 {
		return fmt.Errorf("battery: charge efficiency %v outside (0,1]", b.ChargeEfficiency)
	}
	if b.DischargeEfficiency <= 0 || b.DischargeEfficiency > 1 {
		return fmt.Errorf("battery: discharge efficiency %v outside (0,1]", b.DischargeEfficiency)
	}
	if b.MaxCharge < 0 || b.MaxDischarge < 0 {
		return fmt.Errorf("battery: negative power cap")
	}
	if b.InitialSOC < 0 || b.InitialSOC > b.Capacity {
		return fmt.Errorf("battery: initial SOC %v outside [0,%v]", b.InitialSOC, b.Capacity)
	}
	if b.FinalSOC < 0 || b.FinalSOC > b.Capacity {
		return fmt.Errorf("battery: final SOC %v outside [0,%v]", b.FinalSOC, b.Capacity)
	}
	return nil
}

// SystemParameters is the flat set of system-wide scalars produced by
// the data preparation stage.
type SystemParameters struct {
	// ImportTariff and ExportTariff are grid tariffs in DKK/kWh,
	// additive on import and subtractive on export.
	ImportTariff float64
	ExportTariff float64
	// MaxImport and MaxExport are connection power caps in kW.
	MaxImport float64
	MaxExport float64
	// MaxLoadPower caps the flexible load each hour, in kW.
	MaxLoadPower float64
	// MinDailyEnergy is the daily consumption requirement in kWh.
	// Hard-constraint variant only.
	MinDailyEnergy float64

	ProblemType ProblemType
	// Battery is nil when the scenario has no storage.
	Battery *BatteryParams

	// TotalReferenceEnergy (L_tot) and ReferenceImportCost (C_I_tot)
	// normalise the soft-constraint objective. The preparation stage
	// floors them to a small positive value; the optimiser refuses to
	// divide by anything at or below zero.
	TotalReferenceEnergy float64
	ReferenceImportCost  float64
}

// HasBattery reports whether a storage unit participates in dispatch.
func (s SystemParameters) HasBattery() bool { return s.Battery != nil }

// Validate checks every scalar the active formulation will reference.
// Absence of a required value is a configuration error and is reported
// before any model variable is created.
func (s SystemParameters) Validate() error {
	if s.MaxImport < 0 || s.MaxExport < 0 {
		return fmt.Errorf("system parameters: negative grid power cap")
	}
	if s.MaxLoadPower <= 0 {
		return fmt.Errorf("system parameters: max load power must be positive, got %v", s.MaxLoadPower)
	}
	switch s.ProblemType {
	case HardConstraint:
		if s.MinDailyEnergy < 0 {
			return fmt.Errorf("system parameters: negative minimum daily energy")
		}
	case SoftConstraint:
		if s.TotalReferenceEnergy <= 0 {
			return fmt.Errorf("system parameters: total reference energy must be positive, got %v", s.TotalReferenceEnergy)
		}
		if s.ReferenceImportCost <= 0 {
			return fmt.Errorf("system parameters: reference import cost must be positive, got %v", s.ReferenceImportCost)
		}
	default:
		return fmt.Errorf("system parameters: unknown problem type %d", int(s.ProblemType))
	}
	if s.Battery != nil {
		if err := s.Battery.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Variant identifies one of the four operational formulations.
type Variant struct {
	Problem ProblemType
	Battery bool
}

// VariantOf derives the formulation selector from the system parameters.
func VariantOf(s SystemParameters) Variant {
	return Variant{Problem: s.ProblemType, Battery: s.HasBattery()}
}

func (v Variant) String() string {
	b := "no_battery"
	if v.Battery {
		b = "battery"
	}
	return v.Problem.String() + "/" + b
}
