package planner

import (
	"math"
	"time"

	"github.com/kilianp07/isnet/core/lp"
	"github.com/kilianp07/isnet/core/metrics"
	"github.com/kilianp07/isnet/core/model"
)

// Allocation is a pathway carrying a nonzero area or indicator.
type Allocation struct {
	Pathway model.Pathway
	Area    float64
	Active  float64
}

// Result is the interpreted outcome of a solve. Term values and the
// objective are NaN when the solver returned no values.
type Result struct {
	RunID     string
	Status    lp.Status
	Objective float64
	CRF       float64
	Terms     [NumTerms]float64
	// Allocations lists pathways with a positive area or indicator in index
	// order.
	Allocations []Allocation
	HasValues   bool
	Stats       Stats
	Nodes       int
	Duration    time.Duration
}

// Evaluate reads sol back through the handles of m.
func Evaluate(m *Model, sol *lp.Solution) *Result {
	res := &Result{
		Status:    lp.StatusUndefined,
		Objective: math.NaN(),
		CRF:       m.CRF,
		HasValues: sol.HasValues(),
		Stats:     m.Stats(),
	}
	if sol != nil {
		res.Status = sol.Status
		res.Nodes = sol.Nodes
	}
	for t := Term(0); t < NumTerms; t++ {
		res.Terms[t] = sol.Eval(m.Terms[t])
	}
	if !res.HasValues {
		return res
	}
	res.Objective = sol.Eval(m.Problem.Objective)
	for off := 0; off < m.Index.Size(); off++ {
		p := m.Index.Pathway(off)
		area, active := sol.Value(m.Area(p)), sol.Value(m.Active(p))
		if area > 0 || active > 0 {
			res.Allocations = append(res.Allocations, Allocation{Pathway: p, Area: area, Active: active})
		}
	}
	return res
}

// Annualized returns the contribution of t to the objective.
func (r *Result) Annualized(t Term) float64 {
	switch {
	case t.IsInvestment():
		return r.Terms[t] * r.CRF
	case t.IsIncome():
		return -r.Terms[t]
	default:
		return r.Terms[t]
	}
}

// TermSum recomputes the objective from the individual terms.
func (r *Result) TermSum() float64 {
	var sum float64
	for t := Term(0); t < NumTerms; t++ {
		sum += r.Annualized(t)
	}
	return sum
}

// Event converts the result for metrics sinks.
func (r *Result) Event(at time.Time) metrics.RunEvent {
	ev := metrics.RunEvent{
		RunID:     r.RunID,
		Status:    r.Status.String(),
		Objective: r.Objective,
		HasValues: r.HasValues,
		Variables: r.Stats.Variables,
		Binaries:  r.Stats.Binaries,
		Rows:      r.Stats.Rows,
		NonZeros:  r.Stats.NonZeros,
		Nodes:     r.Nodes,
		Duration:  r.Duration,
		Time:      at,
	}
	if r.HasValues {
		ev.Terms = make(map[string]float64, NumTerms)
		for t := Term(0); t < NumTerms; t++ {
			ev.Terms[t.String()] = r.Terms[t]
		}
		for _, a := range r.Allocations {
			if a.Area > 0 {
				ev.Pathways++
				ev.Area += a.Area
			}
		}
	}
	return ev
}
