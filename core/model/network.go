package model

import (
	"fmt"
	"strings"
)

// Crop identifies a greenhouse crop type.
type Crop int

const (
	CropTomato Crop = iota
	CropCucumber
	CropLettuce

	// NumCrops is the number of crop types in the model.
	NumCrops = 3
)

// Crops lists every crop in index order.
var Crops = [NumCrops]Crop{CropTomato, CropCucumber, CropLettuce}

// String returns a human-readable representation of the crop.
func (c Crop) String() string {
	switch c {
	case CropTomato:
		return "tomato"
	case CropCucumber:
		return "cucumber"
	case CropLettuce:
		return "lettuce"
	default:
		return "unknown"
	}
}

// ParseCrop resolves a crop from its name.
func ParseCrop(s string) (Crop, error) {
	for _, c := range Crops {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown crop %q", s)
}

// Technology is the heat recovery technology used on a pathway.
type Technology int

const (
	// TechORC converts part of the supplied heat to electricity with an
	// Organic Rankine Cycle unit.
	TechORC Technology = iota
	// TechDirect delivers the heat without electricity generation.
	TechDirect

	// NumTechnologies is the number of heat technologies.
	NumTechnologies = 2
)

// Technologies lists every technology in index order.
var Technologies = [NumTechnologies]Technology{TechORC, TechDirect}

func (t Technology) String() string {
	switch t {
	case TechORC:
		return "orc"
	case TechDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// SupplierClass groups heat suppliers by plant type.
type SupplierClass int

const (
	ClassBiogas SupplierClass = iota
	ClassIncineration
	ClassCement
)

func (c SupplierClass) String() string {
	switch c {
	case ClassBiogas:
		return "biogas"
	case ClassIncineration:
		return "incineration"
	case ClassCement:
		return "cement"
	default:
		return "unknown"
	}
}

// AllowsORC reports whether ORC units may be installed at plants of this class.
// Biogas plants and municipal solid waste incinerators cannot host one.
func (c SupplierClass) AllowsORC() bool {
	return c == ClassCement
}

// Network describes the index ranges of the symbiosis network. Heat suppliers
// are numbered 1..len(HeatClasses) and CO2 suppliers and lands 1..n.
type Network struct {
	HeatClasses  []SupplierClass
	CO2Suppliers int
	Lands        int
}

// HeatSuppliers returns the number of heat suppliers.
func (n Network) HeatSuppliers() int { return len(n.HeatClasses) }

// HeatClass returns the class of the 1-based heat supplier id.
func (n Network) HeatClass(id int) SupplierClass {
	return n.HeatClasses[id-1]
}

// NetworkConfig declares the network dimensions. Heat suppliers are laid out
// as consecutive id ranges: biogas plants first, then incinerators, then
// cement plants.
type NetworkConfig struct {
	Biogas       int `json:"biogas"`
	Incineration int `json:"incineration"`
	Cement       int `json:"cement"`
	CO2Suppliers int `json:"co2_suppliers"`
	Lands        int `json:"lands"`
}

// DefaultNetworkConfig returns the dimensions of the reference case study.
func DefaultNetworkConfig() NetworkConfig {
	return NetworkConfig{Biogas: 153, Incineration: 30, Cement: 6, CO2Suppliers: 37, Lands: 217}
}

// Validate checks that every dimension is usable.
func (c NetworkConfig) Validate() error {
	if c.Biogas < 0 || c.Incineration < 0 || c.Cement < 0 {
		return fmt.Errorf("network: supplier counts must not be negative")
	}
	if c.Biogas+c.Incineration+c.Cement == 0 {
		return fmt.Errorf("network: at least one heat supplier is required")
	}
	if c.CO2Suppliers <= 0 {
		return fmt.Errorf("network: co2_suppliers must be positive")
	}
	if c.Lands <= 0 {
		return fmt.Errorf("network: lands must be positive")
	}
	return nil
}

// Network expands the configuration into per-supplier classes.
func (c NetworkConfig) Network() Network {
	classes := make([]SupplierClass, 0, c.Biogas+c.Incineration+c.Cement)
	for i := 0; i < c.Biogas; i++ {
		classes = append(classes, ClassBiogas)
	}
	for i := 0; i < c.Incineration; i++ {
		classes = append(classes, ClassIncineration)
	}
	for i := 0; i < c.Cement; i++ {
		classes = append(classes, ClassCement)
	}
	return Network{HeatClasses: classes, CO2Suppliers: c.CO2Suppliers, Lands: c.Lands}
}
