// Package workbook reads and writes the spreadsheet holding the parameter
// tables of a run.
package workbook

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/isnet/core/model"
)

// ErrCell is returned for missing, empty or non-numeric cells.
var ErrCell = errors.New("invalid cell")

// Load reads the seven tables of cfg.Path sized after net. Rows and columns
// beyond the declared dimensions are ignored.
func Load(cfg Config, net model.Network) (*model.Dataset, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("workbook: path is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", cfg.Path, err)
	}
	defer func() { _ = f.Close() }()

	r := &reader{f: f, sheets: map[string][][]string{}}
	h, c, l := net.HeatSuppliers(), net.CO2Suppliers, net.Lands
	if h <= 0 || c <= 0 || l <= 0 {
		return nil, fmt.Errorf("workbook: %w: empty network", model.ErrShape)
	}
	ds := &model.Dataset{Network: net}
	t := cfg.Tables
	if ds.LandArea, err = r.vector(t.LandArea, l); err != nil {
		return nil, err
	}
	if ds.HeatCapacity, err = r.vector(t.HeatCapacity, h); err != nil {
		return nil, err
	}
	if ds.CO2Output, err = r.vector(t.CO2Output, c); err != nil {
		return nil, err
	}
	if ds.HeatDistance, err = r.matrix(t.HeatDistance, h, l); err != nil {
		return nil, err
	}
	if ds.EnergyDemand, err = r.matrix(t.EnergyDemand, l, model.NumCrops); err != nil {
		return nil, err
	}
	if ds.LightingDemand, err = r.matrix(t.LightingDemand, l, model.NumCrops); err != nil {
		return nil, err
	}
	ds.LightingDemand.Scale(cfg.LightingScale, ds.LightingDemand)
	if ds.CO2Distance, err = r.matrix(t.CO2Distance, c, l); err != nil {
		return nil, err
	}
	return ds, ds.Validate()
}

type reader struct {
	f      *excelize.File
	sheets map[string][][]string
}

func (r *reader) rows(sheet string) ([][]string, error) {
	if rows, ok := r.sheets[sheet]; ok {
		return rows, nil
	}
	rows, err := r.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	r.sheets[sheet] = rows
	return rows, nil
}

func (r *reader) vector(t TableConfig, n int) ([]float64, error) {
	m, err := r.matrix(t, n, 1)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, m), nil
}

func (r *reader) matrix(t TableConfig, rows, cols int) (*mat.Dense, error) {
	data, err := r.rows(t.Sheet)
	if err != nil {
		return nil, err
	}
	first, err := excelize.ColumnNameToNumber(t.Column)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		ri := t.HeaderRows + i
		var row []string
		if ri < len(data) {
			row = data[ri]
		}
		for j := 0; j < cols; j++ {
			ci := first - 1 + j
			var raw string
			if ci < len(row) {
				raw = strings.TrimSpace(row[ci])
			}
			cell, _ := excelize.CoordinatesToCellName(ci+1, ri+1)
			if raw == "" {
				return nil, fmt.Errorf("%s!%s: %w: empty", t.Sheet, cell, ErrCell)
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s!%s: %w: %q is not a number", t.Sheet, cell, ErrCell, raw)
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}
