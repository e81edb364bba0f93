package planner

import "github.com/kilianp07/isnet/core/model"

// Index flattens the pathway space heat x CO2 x land x crop x technology
// into a dense offset. Offsets follow that nesting order.
type Index struct {
	Heat, CO2, Land int
}

// NewIndex returns the index of a network.
func NewIndex(n model.Network) Index {
	return Index{Heat: n.HeatSuppliers(), CO2: n.CO2Suppliers, Land: n.Lands}
}

// Size returns the number of pathways.
func (ix Index) Size() int {
	return ix.Heat * ix.CO2 * ix.Land * model.NumCrops * model.NumTechnologies
}

// Offset returns the position of p.
func (ix Index) Offset(p model.Pathway) int {
	o := (p.Heat-1)*ix.CO2 + (p.CO2 - 1)
	o = o*ix.Land + (p.Land - 1)
	o = o*model.NumCrops + int(p.Crop)
	return o*model.NumTechnologies + int(p.Tech)
}

// Pathway is the inverse of Offset.
func (ix Index) Pathway(off int) model.Pathway {
	var p model.Pathway
	p.Tech = model.Technology(off % model.NumTechnologies)
	off /= model.NumTechnologies
	p.Crop = model.Crop(off % model.NumCrops)
	off /= model.NumCrops
	p.Land = off%ix.Land + 1
	off /= ix.Land
	p.CO2 = off%ix.CO2 + 1
	p.Heat = off/ix.CO2 + 1
	return p
}
