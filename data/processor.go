package data

import (
	"fmt"

	"github.com/soleng-dk/flexopt/core/model"
)

// normalizationFloor keeps the soft-constraint denominators strictly
// positive.
const normalizationFloor = 1e-6

// Prepare converts a raw scenario into the parameter tables the
// optimisation core consumes. It derives the per-hour PV potential from
// the generator rating and its hourly ratio profile, and the reference
// load profile from the appliance rating, and picks the problem variant
// from the usage preferences.
func Prepare(s *Scenario) (model.HourlyParameters, model.SystemParameters, error) {
	bus := s.Bus[0]
	prices := bus.EnergyPriceDKKPerKWh
	if len(prices) == 0 {
		return nil, model.SystemParameters{}, fmt.Errorf("scenario %s: empty price series", s.Name)
	}
	if len(s.Appliances.DER) == 0 {
		return nil, model.SystemParameters{}, fmt.Errorf("scenario %s: no DER appliance", s.Name)
	}
	if len(s.Appliances.Load) == 0 {
		return nil, model.SystemParameters{}, fmt.Errorf("scenario %s: no load appliance", s.Name)
	}
	ratios := s.Production[0].HourlyProfileRatio
	if len(ratios) != len(prices) {
		return nil, model.SystemParameters{}, fmt.Errorf("scenario %s: %d production ratios for %d prices",
			s.Name, len(ratios), len(prices))
	}

	pvMax := s.Appliances.DER[0].MaxPowerKW
	maxLoad := s.Appliances.Load[0].MaxLoadKWhPerHour

	if len(s.UsagePreference[0].LoadPreferences) == 0 {
		return nil, model.SystemParameters{}, fmt.Errorf("scenario %s: no load preference", s.Name)
	}
	pref := s.UsagePreference[0].LoadPreferences[0]

	hourly := make(model.HourlyParameters, len(prices))
	for h := range hourly {
		hourly[h] = model.HourParams{
			Price:       prices[h],
			AvailablePV: ratios[h] * pvMax,
		}
	}

	sys := model.SystemParameters{
		ImportTariff: bus.ImportTariffDKKPerKWh,
		ExportTariff: bus.ExportTariffDKKPerKWh,
		MaxImport:    bus.MaxImportKW,
		MaxExport:    bus.MaxExportKW,
		MaxLoadPower: maxLoad,
	}

	switch {
	case pref.MinTotalEnergyPerDay != nil:
		sys.ProblemType = model.HardConstraint
		sys.MinDailyEnergy = *pref.MinTotalEnergyPerDay
	case len(pref.HourlyProfileRatio) == len(prices):
		sys.ProblemType = model.SoftConstraint
		var refEnergy, refCost float64
		for h := range hourly {
			ref := pref.HourlyProfileRatio[h] * maxLoad
			hourly[h].ReferenceLoad = ref
			refEnergy += ref
			refCost += ref * (prices[h] + sys.ImportTariff)
		}
		sys.TotalReferenceEnergy = max(refEnergy, normalizationFloor)
		sys.ReferenceImportCost = max(refCost, normalizationFloor)
	default:
		return nil, model.SystemParameters{}, fmt.Errorf(
			"scenario %s: load preference carries neither a daily minimum nor a reference profile", s.Name)
	}

	if len(s.Appliances.Storage) > 0 {
		st := s.Appliances.Storage[0]
		initial, final := 0.5, 0.5
		if len(s.UsagePreference[0].StoragePreferences) > 0 {
			sp := s.UsagePreference[0].StoragePreferences[0]
			initial = sp.InitialSOCRatio
			final = sp.FinalSOCRatio
		}
		sys.Battery = &model.BatteryParams{
			Capacity:            st.CapacityKWh,
			InitialSOC:          initial * st.CapacityKWh,
			FinalSOC:            final * st.CapacityKWh,
			MaxCharge:           st.MaxChargeKW,
			MaxDischarge:        st.MaxDischargeKW,
			ChargeEfficiency:    st.ChargeEfficiency,
			DischargeEfficiency: st.DischargeEfficiency,
		}
	}

	if err := hourly.Validate(); err != nil {
		return nil, model.SystemParameters{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	if err := sys.Validate(); err != nil {
		return nil, model.SystemParameters{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return hourly, sys, nil
}
