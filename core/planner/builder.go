package planner

import (
	"fmt"
	"math"

	"github.com/kilianp07/isnet/core/lp"
	"github.com/kilianp07/isnet/core/model"
)

// Term is one component of the annualized cost.
type Term int

const (
	TermHeatPipeInvestment Term = iota
	TermORCInvestment
	TermCO2PipeInvestment
	TermStructureInvestment
	TermLightingInvestment
	TermHeatOperation
	TermORCOperation
	TermCO2Operation
	TermLightingOperation
	TermElectricityIncome

	NumTerms = 10
)

var termNames = [NumTerms]string{
	"heat_pipe_investment",
	"orc_investment",
	"co2_pipe_investment",
	"structure_investment",
	"lighting_investment",
	"heat_operation",
	"orc_operation",
	"co2_operation",
	"lighting_operation",
	"electricity_income",
}

func (t Term) String() string {
	if t < 0 || int(t) >= NumTerms {
		return "unknown"
	}
	return termNames[t]
}

// IsInvestment reports whether the term is a one-off investment annualized
// by the capital recovery factor.
func (t Term) IsInvestment() bool { return t <= TermLightingInvestment }

// IsIncome reports whether the term is subtracted from the objective.
func (t Term) IsIncome() bool { return t == TermElectricityIncome }

// Family is a group of constraints generated over the index space.
type Family int

const (
	FamilyDemand Family = iota
	FamilyLand
	FamilyHeat
	FamilyCO2
	FamilyExclusivity
	FamilyLinking
	FamilyEligibility

	NumFamilies = 7
)

var familyNames = [NumFamilies]string{"demand", "land", "heat", "co2", "tech", "link", "orc"}

func (f Family) String() string {
	if f < 0 || int(f) >= NumFamilies {
		return "unknown"
	}
	return familyNames[f]
}

// Stats summarizes the size of a model.
type Stats struct {
	Variables int
	Binaries  int
	Rows      int
	NonZeros  int
}

// Model is the formulated problem together with the handles needed to read
// a solution back.
type Model struct {
	Problem *lp.Problem
	Index   Index
	Network model.Network
	Params  Parameters
	// CRF is the capital recovery factor applied to investment terms.
	CRF float64
	// Terms holds the undiscounted expression of every cost term.
	Terms [NumTerms]lp.Expr

	families [NumFamilies]int
}

// Area returns the area column of p.
func (m *Model) Area(p model.Pathway) lp.Var { return lp.Var(m.Index.Offset(p)) }

// Active returns the indicator column of p.
func (m *Model) Active(p model.Pathway) lp.Var {
	return lp.Var(m.Index.Size() + m.Index.Offset(p))
}

// Families returns the number of rows of each constraint family.
func (m *Model) Families() [NumFamilies]int { return m.families }

// Stats returns the model size.
func (m *Model) Stats() Stats {
	return Stats{
		Variables: m.Problem.NumVars(),
		Binaries:  m.Index.Size(),
		Rows:      m.Problem.NumRows(),
		NonZeros:  m.Problem.NonZeros(),
	}
}

// Build formulates the optimization problem for ds. Every pathway gets an
// area and an indicator column, allocated up front.
func Build(ds *model.Dataset, params Parameters) (*Model, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	ix := NewIndex(ds.Network)
	m := &Model{
		Problem: lp.NewProblem("isnet_cost_minimising"),
		Index:   ix,
		Network: ds.Network,
		Params:  params,
		CRF:     CapitalRecoveryFactor(params.DiscountRate, params.Lifetime),
	}
	n := ix.Size()
	for off := 0; off < n; off++ {
		m.Problem.AddVar("area_"+label(ix.Pathway(off)), lp.Continuous, 0, math.Inf(1))
	}
	for off := 0; off < n; off++ {
		m.Problem.AddVar("active_"+label(ix.Pathway(off)), lp.Binary, 0, 1)
	}

	m.buildTerms(ds)
	for t := Term(0); t < NumTerms; t++ {
		switch {
		case t.IsInvestment():
			m.Problem.Objective.AddExpr(m.Terms[t], m.CRF)
		case t.IsIncome():
			m.Problem.Objective.AddExpr(m.Terms[t], -1)
		default:
			m.Problem.Objective.AddExpr(m.Terms[t], 1)
		}
	}

	m.buildCapacityRows(ds)
	m.buildPathwayRows()
	return m, nil
}

func label(p model.Pathway) string {
	return fmt.Sprintf("h%d_c%d_l%d_%s_%s", p.Heat, p.CO2, p.Land, p.Crop, p.Tech)
}

func (m *Model) buildTerms(ds *model.Dataset) {
	pr := m.Params
	crops := pr.Crops.Array()
	for off := 0; off < m.Index.Size(); off++ {
		p := m.Index.Pathway(off)
		a := lp.Var(off)
		dH := ds.HeatDistance.At(p.Heat-1, p.Land-1)
		dC := ds.CO2Distance.At(p.CO2-1, p.Land-1)
		pd := ds.EnergyDemand.At(p.Land-1, int(p.Crop))
		ld := ds.LightingDemand.At(p.Land-1, int(p.Crop))
		cd := crops[p.Crop].CO2Intensity

		m.Terms[TermHeatPipeInvestment].Add(a, pr.HeatPipeInvestment*dH*pd)
		m.Terms[TermCO2PipeInvestment].Add(a, pr.CO2PipeInvestment*dC*cd)
		m.Terms[TermStructureInvestment].Add(a, pr.GreenhouseInvestment)
		m.Terms[TermLightingInvestment].Add(a, pr.LightingInvestment)
		m.Terms[TermHeatOperation].Add(a, pr.HeatPipeOperating*dH*pr.HeatingHours*pd)
		m.Terms[TermCO2Operation].Add(a, pr.CO2PipeOperating*dC*cd)
		m.Terms[TermLightingOperation].Add(a, pr.ElectricityPrice*ld)
		if p.Tech == model.TechORC {
			elec := pd / pr.HeatToElectricity
			m.Terms[TermORCInvestment].Add(a, pr.ORCInvestment*elec)
			m.Terms[TermORCOperation].Add(a, pr.ORCOperating*pr.ORCHours*elec)
			m.Terms[TermElectricityIncome].Add(a, pr.ElectricityPrice*pr.ORCHours*elec)
		}
	}
}

// buildCapacityRows adds the demand, land, heat and CO2 families.
func (m *Model) buildCapacityRows(ds *model.Dataset) {
	pr := m.Params
	crops := pr.Crops.Array()
	net := m.Network
	var (
		demand [model.NumCrops]lp.Expr
		land   = make([]lp.Expr, net.Lands)
		heat   = make([]lp.Expr, net.HeatSuppliers())
		co2    = make([]lp.Expr, net.CO2Suppliers)
	)
	for off := 0; off < m.Index.Size(); off++ {
		p := m.Index.Pathway(off)
		a := lp.Var(off)
		demand[p.Crop].Add(a, 1)
		land[p.Land-1].Add(a, 1)

		draw := ds.EnergyDemand.At(p.Land-1, int(p.Crop)) *
			(1 + pr.HeatLossPerKm*ds.HeatDistance.At(p.Heat-1, p.Land-1))
		if p.Tech == model.TechORC {
			draw /= pr.ORCHeatEfficiency
		}
		heat[p.Heat-1].Add(a, draw)
		co2[p.CO2-1].Add(a, crops[p.Crop].CO2Intensity)
	}

	for _, c := range model.Crops {
		m.addRow(FamilyDemand, "demand_"+c.String(), demand[c], lp.GE, crops[c].AreaDemand)
	}
	for l := range land {
		m.addRow(FamilyLand, fmt.Sprintf("land_%d", l+1), land[l], lp.LE, ds.LandArea[l])
	}
	for h := range heat {
		m.addRow(FamilyHeat, fmt.Sprintf("heat_%d", h+1), heat[h], lp.LE, ds.HeatCapacity[h])
	}
	for c := range co2 {
		m.addRow(FamilyCO2, fmt.Sprintf("co2_%d", c+1), co2[c], lp.LE, ds.CO2Output[c])
	}
}

// buildPathwayRows adds the exclusivity, linking and eligibility families.
func (m *Model) buildPathwayRows() {
	net := m.Network
	for h := 1; h <= net.HeatSuppliers(); h++ {
		for c := 1; c <= net.CO2Suppliers; c++ {
			for l := 1; l <= net.Lands; l++ {
				for _, crop := range model.Crops {
					orc := model.Pathway{Heat: h, CO2: c, Land: l, Crop: crop, Tech: model.TechORC}
					direct := orc
					direct.Tech = model.TechDirect
					tuple := fmt.Sprintf("h%d_c%d_l%d_%s", h, c, l, crop)

					var excl lp.Expr
					excl.Add(m.Active(orc), 1)
					excl.Add(m.Active(direct), 1)
					m.addRow(FamilyExclusivity, "tech_"+tuple, excl, lp.LE, 1)

					for _, p := range [...]model.Pathway{orc, direct} {
						var link lp.Expr
						link.Add(m.Area(p), 1)
						link.Add(m.Active(p), -m.Params.BigM)
						m.addRow(FamilyLinking, "link_"+label(p), link, lp.LE, 0)
					}

					if !net.HeatClass(h).AllowsORC() {
						var elig lp.Expr
						elig.Add(m.Active(orc), 1)
						m.addRow(FamilyEligibility, "orc_"+tuple, elig, lp.EQ, 0)
					}
				}
			}
		}
	}
}

func (m *Model) addRow(f Family, name string, e lp.Expr, op lp.Op, rhs float64) {
	m.Problem.AddRow(name, e, op, rhs)
	m.families[f]++
}
