package bnb

import (
	"math"

	"github.com/kilianp07/isnet/core/lp"
)

// presolve moves single-column rows of c into the bounds lo and hi, then
// tightens big-M coefficients. It reports false when the bounds contradict
// each other.
func (s *Solver) presolve(c *compiled, lo, hi []float64) bool {
	rows := c.rows[:0]
	for _, r := range c.rows {
		if len(r.terms) != 1 {
			rows = append(rows, r)
			continue
		}
		t := r.terms[0]
		v := r.rhs / t.Coef
		var upper, lower bool
		switch r.op {
		case lp.LE:
			upper, lower = t.Coef > 0, t.Coef < 0
		case lp.GE:
			upper, lower = t.Coef < 0, t.Coef > 0
		case lp.EQ:
			upper, lower = true, true
		}
		if upper {
			hi[t.Var] = math.Min(hi[t.Var], v)
		}
		if lower {
			lo[t.Var] = math.Max(lo[t.Var], v)
		}
	}
	c.rows = rows

	for j := range lo {
		if c.integer[j] {
			lo[j] = math.Ceil(lo[j] - s.opts.IntegralityTolerance)
			hi[j] = math.Floor(hi[j] + s.opts.IntegralityTolerance)
		}
		if hi[j] < lo[j]-s.opts.FeasibilityTolerance {
			return false
		}
	}
	c.tightenBigM(lo, hi)
	return true
}

// tightenBigM rewrites rows a·x - M·y <= 0, with y binary and x continuous,
// so that M never exceeds a times the upper bound x gets from the other
// rows. Integer solutions are unchanged; the relaxation gets tighter and
// the tableau avoids coefficients many orders of magnitude apart.
func (c *compiled) tightenBigM(lo, hi []float64) {
	ub := clone(hi)
	for _, r := range c.rows {
		if r.op != lp.LE {
			continue
		}
		slack, ok := r.rhs, true
		for _, t := range r.terms {
			if t.Coef < 0 || math.IsInf(lo[t.Var], -1) {
				ok = false
				break
			}
			slack -= t.Coef * lo[t.Var]
		}
		if !ok {
			continue
		}
		for _, t := range r.terms {
			ub[t.Var] = math.Min(ub[t.Var], lo[t.Var]+slack/t.Coef)
		}
	}

	for i, r := range c.rows {
		if r.op != lp.LE || len(r.terms) != 2 || r.rhs != 0 {
			continue
		}
		x, y := r.terms[0], r.terms[1]
		if x.Coef < 0 {
			x, y = y, x
		}
		if x.Coef <= 0 || y.Coef >= 0 || c.integer[x.Var] || !c.integer[y.Var] {
			continue
		}
		if lo[y.Var] != 0 || hi[y.Var] != 1 || lo[x.Var] < 0 {
			continue
		}
		u := ub[x.Var]
		if math.IsInf(u, 1) || u <= 0 {
			continue
		}
		if m := x.Coef * u; m < -y.Coef {
			c.rows[i].terms = []lp.Term{x, {Var: y.Var, Coef: -m}}
		}
	}
}
