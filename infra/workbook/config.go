package workbook

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
)

// TableConfig locates one table. Vectors occupy Column only; matrices span
// consecutive columns starting at Column.
type TableConfig struct {
	Sheet string `json:"sheet"`
	// Column is the letter of the first value column, e.g. "B".
	Column string `json:"column"`
	// HeaderRows is the number of rows skipped above the data.
	HeaderRows int `json:"header_rows"`
}

// Validate checks the sheet name and column letter.
func (t TableConfig) Validate() error {
	if t.Sheet == "" {
		return fmt.Errorf("sheet is required")
	}
	if _, err := excelize.ColumnNameToNumber(t.Column); err != nil {
		return fmt.Errorf("column %q: %w", t.Column, err)
	}
	if t.HeaderRows < 0 {
		return fmt.Errorf("header_rows must not be negative")
	}
	return nil
}

// Tables holds the layout of the seven input tables.
type Tables struct {
	LandArea       TableConfig `json:"land_area"`
	HeatCapacity   TableConfig `json:"heat_capacity"`
	CO2Output      TableConfig `json:"co2_output"`
	HeatDistance   TableConfig `json:"heat_distance"`
	EnergyDemand   TableConfig `json:"energy_demand"`
	LightingDemand TableConfig `json:"lighting_demand"`
	CO2Distance    TableConfig `json:"co2_distance"`
}

func (t Tables) named() []struct {
	name string
	cfg  TableConfig
} {
	return []struct {
		name string
		cfg  TableConfig
	}{
		{"land_area", t.LandArea},
		{"heat_capacity", t.HeatCapacity},
		{"co2_output", t.CO2Output},
		{"heat_distance", t.HeatDistance},
		{"energy_demand", t.EnergyDemand},
		{"lighting_demand", t.LightingDemand},
		{"co2_distance", t.CO2Distance},
	}
}

// Config describes where the input workbook lives and how it is laid out.
type Config struct {
	Path string `json:"path"`
	// LightingScale multiplies every lighting demand cell on load.
	LightingScale float64 `json:"lighting_scale"`
	Tables        Tables  `json:"tables"`
}

// DefaultConfig returns the layout of the reference workbook.
func DefaultConfig() Config {
	return Config{
		Path:          "input.xlsx",
		LightingScale: 10,
		Tables: Tables{
			LandArea:       TableConfig{Sheet: "Sheet1", Column: "C", HeaderRows: 1},
			HeatCapacity:   TableConfig{Sheet: "Sheet2", Column: "B", HeaderRows: 1},
			CO2Output:      TableConfig{Sheet: "Sheet3", Column: "B", HeaderRows: 1},
			HeatDistance:   TableConfig{Sheet: "Sheet4", Column: "B", HeaderRows: 2},
			EnergyDemand:   TableConfig{Sheet: "Sheet5", Column: "C", HeaderRows: 1},
			LightingDemand: TableConfig{Sheet: "Sheet6", Column: "C", HeaderRows: 1},
			CO2Distance:    TableConfig{Sheet: "Sheet7", Column: "B", HeaderRows: 2},
		},
	}
}

// Validate checks the layout. The path is only checked by Load.
func (c Config) Validate() error {
	if math.IsNaN(c.LightingScale) || math.IsInf(c.LightingScale, 0) || c.LightingScale <= 0 {
		return fmt.Errorf("input: lighting_scale must be positive")
	}
	for _, t := range c.Tables.named() {
		if err := t.cfg.Validate(); err != nil {
			return fmt.Errorf("input: tables.%s: %w", t.name, err)
		}
	}
	return nil
}
