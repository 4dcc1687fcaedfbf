// Package export serialises solved schedules for external reporting and
// plotting stages.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/soleng-dk/flexopt/core/model"
)

// WriteJSON writes the full solution, schedule and duals included, to w
// in JSON format.
func WriteJSON(w io.Writer, sol *model.Solution) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Optimal   bool                 `json:"optimal"`
		Status    string               `json:"status"`
		Objective float64              `json:"objective"`
		Schedule  []model.HourSchedule `json:"schedule,omitempty"`
		Scalars   map[string]float64   `json:"dual_scalars,omitempty"`
		Series    map[string][]float64 `json:"dual_series,omitempty"`
	}{
		Optimal:   sol.Optimal,
		Status:    sol.Status,
		Objective: sol.Objective,
		Schedule:  sol.Schedule,
		Scalars:   sol.Duals.Scalars,
		Series:    sol.Duals.Series,
	})
}

// WriteCSV writes the schedule table to w. Deviation and battery
// columns appear only when the solution carries them.
func WriteCSV(w io.Writer, sol *model.Solution) error {
	if !sol.Optimal {
		return fmt.Errorf("export: refusing to export a %q solution", sol.Status)
	}
	cw := csv.NewWriter(w)
	header := []string{"hour", "pv_used_kw", "pv_curtailed_kw", "load_kw", "grid_import_kw", "grid_export_kw", "cost_dkk"}
	if sol.Columns.Deviation {
		header = append(header, "dev_pos_kw", "dev_neg_kw")
	}
	if sol.Columns.Battery {
		header = append(header, "battery_charge_kw", "battery_discharge_kw", "battery_soc_kwh")
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range sol.Schedule {
		rec := []string{
			strconv.Itoa(row.Hour),
			f(row.PVUsed), f(row.PVCurtailed), f(row.Load),
			f(row.GridImport), f(row.GridExport), f(row.Cost),
		}
		if sol.Columns.Deviation {
			rec = append(rec, f(row.DevPos), f(row.DevNeg))
		}
		if sol.Columns.Battery {
			rec = append(rec, f(row.BatteryCharge), f(row.BatteryDischarge), f(row.BatterySOC))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
