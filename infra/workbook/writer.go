package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/isnet/core/model"
)

// Write stores ds at path in the layout of cfg, so that Load(cfg) reads it
// back. Lighting demand is divided by the lighting scale. Value tables get an
// id column in A when they start further right, with the table name in A1,
// and their last header row carries the column ids of matrices.
func Write(path string, ds *model.Dataset, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := ds.Validate(); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	var lighting mat.Dense
	lighting.Scale(1/cfg.LightingScale, ds.LightingDemand)

	t := cfg.Tables
	tables := []struct {
		name   string
		cfg    TableConfig
		m      mat.Matrix
		matrix bool
	}{
		{"land_area", t.LandArea, column(ds.LandArea), false},
		{"heat_capacity", t.HeatCapacity, column(ds.HeatCapacity), false},
		{"co2_output", t.CO2Output, column(ds.CO2Output), false},
		{"heat_distance", t.HeatDistance, ds.HeatDistance, true},
		{"energy_demand", t.EnergyDemand, ds.EnergyDemand, true},
		{"lighting_demand", t.LightingDemand, &lighting, true},
		{"co2_distance", t.CO2Distance, ds.CO2Distance, true},
	}
	for _, tb := range tables {
		if err := writeTable(f, tb.name, tb.cfg, tb.m, tb.matrix); err != nil {
			return fmt.Errorf("write %s: %w", tb.name, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func column(v []float64) mat.Matrix {
	return mat.NewDense(len(v), 1, v)
}

func writeTable(f *excelize.File, name string, t TableConfig, m mat.Matrix, matrix bool) error {
	if _, err := f.NewSheet(t.Sheet); err != nil {
		return err
	}
	first, err := excelize.ColumnNameToNumber(t.Column)
	if err != nil {
		return err
	}
	rows, cols := m.Dims()

	if t.HeaderRows > 0 {
		// Column ids of a one-row matrix header occupy A1 when the table
		// starts there, leaving no room for the title.
		if first > 1 || !matrix || t.HeaderRows > 1 {
			cell, _ := excelize.CoordinatesToCellName(1, 1)
			if err := f.SetCellValue(t.Sheet, cell, name); err != nil {
				return err
			}
		}
		if matrix {
			ids := make([]any, cols)
			for j := range ids {
				ids[j] = j + 1
			}
			cell, _ := excelize.CoordinatesToCellName(first, t.HeaderRows)
			if err := f.SetSheetRow(t.Sheet, cell, &ids); err != nil {
				return err
			}
		}
	}

	for i := 0; i < rows; i++ {
		r := t.HeaderRows + i + 1
		if first > 1 {
			cell, _ := excelize.CoordinatesToCellName(1, r)
			if err := f.SetCellValue(t.Sheet, cell, i+1); err != nil {
				return err
			}
		}
		vals := make([]any, cols)
		for j := range vals {
			vals[j] = m.At(i, j)
		}
		cell, _ := excelize.CoordinatesToCellName(first, r)
		if err := f.SetSheetRow(t.Sheet, cell, &vals); err != nil {
			return err
		}
	}
	return nil
}
