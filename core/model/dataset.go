package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrShape is returned when a table does not match the declared network.
var ErrShape = errors.New("table shape mismatch")

// Dataset holds the parameter tables of one run. Identifiers are 1-based and
// map to row or column id-1.
type Dataset struct {
	Network Network

	// LandArea is the usable area of each land parcel (ha).
	LandArea []float64
	// HeatCapacity is the rated waste heat of each heat supplier (MW).
	HeatCapacity []float64
	// CO2Output is the annual waste CO2 of each CO2 supplier (t/y).
	CO2Output []float64

	// HeatDistance is heat supplier x land (km).
	HeatDistance *mat.Dense
	// CO2Distance is CO2 supplier x land (km).
	CO2Distance *mat.Dense
	// EnergyDemand is land x crop heat demand (MW/ha).
	EnergyDemand *mat.Dense
	// LightingDemand is land x crop lighting demand (MWh/ha).
	LightingDemand *mat.Dense
}

// Validate checks every table against the network dimensions.
func (d *Dataset) Validate() error {
	n := d.Network
	h, c, l := n.HeatSuppliers(), n.CO2Suppliers, n.Lands
	if err := checkLen("land area", d.LandArea, l); err != nil {
		return err
	}
	if err := checkLen("heat capacity", d.HeatCapacity, h); err != nil {
		return err
	}
	if err := checkLen("co2 output", d.CO2Output, c); err != nil {
		return err
	}
	if err := checkDims("heat distance", d.HeatDistance, h, l); err != nil {
		return err
	}
	if err := checkDims("co2 distance", d.CO2Distance, c, l); err != nil {
		return err
	}
	if err := checkDims("energy demand", d.EnergyDemand, l, NumCrops); err != nil {
		return err
	}
	return checkDims("lighting demand", d.LightingDemand, l, NumCrops)
}

func checkLen(name string, v []float64, want int) error {
	if len(v) != want {
		return fmt.Errorf("%s: %w: got %d rows, want %d", name, ErrShape, len(v), want)
	}
	return nil
}

func checkDims(name string, m *mat.Dense, rows, cols int) error {
	if m == nil {
		return fmt.Errorf("%s: %w: table missing", name, ErrShape)
	}
	r, c := m.Dims()
	if r != rows || c != cols {
		return fmt.Errorf("%s: %w: got %dx%d, want %dx%d", name, ErrShape, r, c, rows, cols)
	}
	return nil
}

// Pathway is one assignment tuple. Supplier and land ids are 1-based.
type Pathway struct {
	Heat int
	CO2  int
	Land int
	Crop Crop
	Tech Technology
}

func (p Pathway) String() string {
	return fmt.Sprintf("[%d,%d,%d,%s,%s]", p.Heat, p.CO2, p.Land, p.Crop, p.Tech)
}

// NewDataset returns a dataset of zeros sized for n.
func NewDataset(n Network) *Dataset {
	h, c, l := n.HeatSuppliers(), n.CO2Suppliers, n.Lands
	return &Dataset{
		Network:        n,
		LandArea:       make([]float64, l),
		HeatCapacity:   make([]float64, h),
		CO2Output:      make([]float64, c),
		HeatDistance:   mat.NewDense(h, l, nil),
		CO2Distance:    mat.NewDense(c, l, nil),
		EnergyDemand:   mat.NewDense(l, NumCrops, nil),
		LightingDemand: mat.NewDense(l, NumCrops, nil),
	}
}
