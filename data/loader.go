// Package data loads scenario input files and prepares the parameter
// tables the optimisation core consumes.
package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// BusParams describes the grid connection of the consumer.
type BusParams struct {
	EnergyPriceDKKPerKWh  []float64 `json:"energy_price_DKK_per_kWh"`
	ImportTariffDKKPerKWh float64   `json:"import_tariff_DKK/kWh"`
	ExportTariffDKKPerKWh float64   `json:"export_tariff_DKK/kWh"`
	MaxImportKW           float64   `json:"max_import_kW"`
	MaxExportKW           float64   `json:"max_export_kW"`
}

// DERParams describes one distributed generator.
type DERParams struct {
	DERType    string  `json:"DER_type"`
	MaxPowerKW float64 `json:"max_power_kW"`
}

// LoadParams describes the flexible appliance.
type LoadParams struct {
	MaxLoadKWhPerHour float64 `json:"max_load_kWh_per_hour"`
}

// StorageParams describes an optional battery appliance.
type StorageParams struct {
	CapacityKWh         float64 `json:"storage_capacity_kWh"`
	MaxChargeKW         float64 `json:"max_charging_power_kW"`
	MaxDischargeKW      float64 `json:"max_discharging_power_kW"`
	ChargeEfficiency    float64 `json:"charging_efficiency"`
	DischargeEfficiency float64 `json:"discharging_efficiency"`
}

// ApplianceParams groups the consumer's appliances.
type ApplianceParams struct {
	DER     []DERParams     `json:"DER"`
	Load    []LoadParams    `json:"load"`
	Storage []StorageParams `json:"storage"`
}

// DERProduction carries the hourly production potential of a generator
// as a ratio of its rated power.
type DERProduction struct {
	HourlyProfileRatio []float64 `json:"hourly_profile_ratio"`
}

// LoadPreference expresses the consumer's wishes for the flexible load.
// MinTotalEnergyPerDay selects the hard-constraint formulation;
// HourlyProfileRatio selects the soft-constraint one.
type LoadPreference struct {
	MinTotalEnergyPerDay *float64  `json:"min_total_energy_per_day_hour_equivalent"`
	HourlyProfileRatio   []float64 `json:"hourly_profile_ratio"`
}

// StoragePreference fixes the boundary states of charge as ratios of
// capacity.
type StoragePreference struct {
	InitialSOCRatio float64 `json:"initial_soc_ratio"`
	FinalSOCRatio   float64 `json:"final_soc_ratio"`
}

// UsagePreference groups the consumer preferences.
type UsagePreference struct {
	LoadPreferences    []LoadPreference    `json:"load_preferences"`
	StoragePreferences []StoragePreference `json:"storage_preferences"`
}

// ConsumerParams carries consumer metadata. The optimiser does not use
// it; it is loaded so a broken scenario directory fails early.
type ConsumerParams struct {
	ConsumerID string `json:"consumer_id"`
}

// Scenario is the raw content of one scenario directory.
type Scenario struct {
	Name            string
	Bus             []BusParams
	Appliances      ApplianceParams
	Consumers       []ConsumerParams
	Production      []DERProduction
	UsagePreference []UsagePreference
}

// Load reads all input files of the named scenario under dir. A missing
// file or malformed content is a configuration error; nothing is
// defaulted.
func Load(dir, name string) (*Scenario, error) {
	base := filepath.Join(dir, name)
	s := &Scenario{Name: name}
	if err := readJSON(base, "bus_params.json", &s.Bus); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	if err := readJSON(base, "appliance_params.json", &s.Appliances); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	if err := readJSON(base, "consumer_params.json", &s.Consumers); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	if err := readJSON(base, "DER_production.json", &s.Production); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	if err := readJSON(base, "usage_preference.json", &s.UsagePreference); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	if len(s.Bus) == 0 {
		return nil, fmt.Errorf("scenario %s: bus_params.json is empty", name)
	}
	if len(s.Production) == 0 {
		return nil, fmt.Errorf("scenario %s: DER_production.json is empty", name)
	}
	if len(s.UsagePreference) == 0 {
		return nil, fmt.Errorf("scenario %s: usage_preference.json is empty", name)
	}
	return s, nil
}

func readJSON(base, file string, out any) error {
	raw, err := os.ReadFile(filepath.Join(base, file))
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	return nil
}
