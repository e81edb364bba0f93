package bnb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/isnet/core/lp"
)

// ErrTooLarge is returned when a relaxation would not fit the dense tableau
// limit configured by Options.MaxCells.
var ErrTooLarge = errors.New("relaxation exceeds dense size limit")

// simplex points to the LP routine used for relaxations. It can be overridden
// in tests to simulate solver failures.
var simplex = solveTableau

// compiled is the problem in the form consumed by relax: summed costs and
// compacted rows with constants moved to the right-hand side.
type compiled struct {
	n       int
	cost    []float64
	rows    []compiledRow
	integer []bool
}

type compiledRow struct {
	terms []lp.Term
	op    lp.Op
	rhs   float64
}

func compile(p *lp.Problem) compiled {
	n := len(p.Cols)
	c := compiled{n: n, cost: make([]float64, n), integer: make([]bool, n)}
	for _, t := range p.Objective.Terms {
		c.cost[t.Var] += t.Coef
	}
	c.rows = make([]compiledRow, 0, len(p.Rows))
	for _, r := range p.Rows {
		e := r.Expr.Compact()
		c.rows = append(c.rows, compiledRow{terms: e.Terms, op: r.Op, rhs: r.RHS - e.Constant})
	}
	for j, col := range p.Cols {
		c.integer[j] = col.Kind != lp.Continuous
	}
	return c
}

// stdRow is a row of the form sum(val*x') <= rhs over free columns.
type stdRow struct {
	idx []int
	val []float64
	rhs float64
}

type relaxation struct {
	status lp.Status
	x      []float64
}

// relax solves the LP relaxation of c with column bounds lo and hi. Columns
// are shifted by their lower bound, fixed columns are substituted out,
// duplicate rows are merged and every row receives its own slack.
func (s *Solver) relax(ctx context.Context, c compiled, lo, hi []float64, bland bool) (relaxation, error) {
	tol := s.opts.FeasibilityTolerance
	pos := make([]int, c.n)
	var free []int
	for j := 0; j < c.n; j++ {
		if math.IsInf(lo[j], -1) {
			return relaxation{}, fmt.Errorf("%w: column %d has no finite lower bound", lp.ErrInvalidProblem, j)
		}
		if hi[j] < lo[j]-tol {
			return relaxation{status: lp.StatusInfeasible}, nil
		}
		if hi[j]-lo[j] <= tol {
			pos[j] = -1
			continue
		}
		pos[j] = len(free)
		free = append(free, j)
	}

	var rows []stdRow
	for _, r := range c.rows {
		rhs := r.rhs
		var idx []int
		var val []float64
		for _, t := range r.terms {
			rhs -= t.Coef * lo[t.Var]
			if k := pos[t.Var]; k >= 0 {
				idx = append(idx, k)
				val = append(val, t.Coef)
			}
		}
		if len(idx) == 0 {
			if !holds(0, r.op, rhs, tol) {
				return relaxation{status: lp.StatusInfeasible}, nil
			}
			continue
		}
		switch r.op {
		case lp.LE:
			rows = append(rows, stdRow{idx: idx, val: val, rhs: rhs})
		case lp.GE:
			rows = append(rows, stdRow{idx: idx, val: negate(val), rhs: -rhs})
		case lp.EQ:
			rows = append(rows,
				stdRow{idx: idx, val: val, rhs: rhs},
				stdRow{idx: idx, val: negate(val), rhs: -rhs})
		}
	}
	for k, j := range free {
		if !math.IsInf(hi[j], 1) {
			rows = append(rows, stdRow{idx: []int{k}, val: []float64{1}, rhs: hi[j] - lo[j]})
		}
	}
	rows = mergeRows(rows)

	x := make([]float64, c.n)
	copy(x, lo)

	used := make([]bool, len(free))
	for _, r := range rows {
		for _, k := range r.idx {
			used[k] = true
		}
	}
	col := make([]int, len(free))
	var kept []int
	for k, j := range free {
		if used[k] {
			col[k] = len(kept)
			kept = append(kept, k)
			continue
		}
		if c.cost[j] < 0 {
			return relaxation{status: lp.StatusUnbounded}, nil
		}
	}
	if len(rows) == 0 {
		return relaxation{status: lp.StatusOptimal, x: x}, nil
	}

	m, nv := len(rows), len(kept)
	if s.opts.MaxCells > 0 && m*(nv+2*m) > s.opts.MaxCells {
		return relaxation{}, fmt.Errorf("%w: %dx%d tableau", ErrTooLarge, m, nv+2*m)
	}
	sf := standard{a: mat.NewDense(m, nv, nil), b: make([]float64, m), cost: make([]float64, nv)}
	for i, r := range rows {
		for t, k := range r.idx {
			sf.a.Set(i, col[k], r.val[t])
		}
		sf.b[i] = r.rhs
	}
	var scale float64
	for q, k := range kept {
		sf.cost[q] = c.cost[free[k]]
		scale = math.Max(scale, math.Abs(sf.cost[q]))
	}
	if scale > 0 {
		floats.Scale(1/scale, sf.cost)
	}

	status, sol, err := simplex(ctx, sf, simplexOptions{
		tol:      s.opts.Tolerance,
		pivotTol: s.opts.PivotTolerance,
		maxIter:  s.opts.MaxIterations,
		bland:    bland,
	})
	if err != nil {
		return relaxation{}, err
	}
	if status != lp.StatusOptimal {
		return relaxation{status: status}, nil
	}
	for q, k := range kept {
		x[free[k]] = lo[free[k]] + sol[q]
	}
	return relaxation{status: lp.StatusOptimal, x: x}, nil
}

// mergeRows scales every row to a largest coefficient of one and keeps a
// single row, the tightest, per left-hand side.
func mergeRows(rows []stdRow) []stdRow {
	out := rows[:0]
	seen := make(map[string]int, len(rows))
	var key []byte
	for _, r := range rows {
		var big float64
		for _, v := range r.val {
			big = math.Max(big, math.Abs(v))
		}
		if big == 0 {
			continue
		}
		val := make([]float64, len(r.val))
		for t, v := range r.val {
			val[t] = v / big
		}
		r = stdRow{idx: r.idx, val: val, rhs: r.rhs / big}

		key = key[:0]
		for t, k := range r.idx {
			key = strconv.AppendInt(key, int64(k), 10)
			key = append(key, ':')
			key = strconv.AppendFloat(key, r.val[t], 'g', 12, 64)
			key = append(key, ';')
		}
		if i, ok := seen[string(key)]; ok {
			out[i].rhs = math.Min(out[i].rhs, r.rhs)
			continue
		}
		seen[string(key)] = len(out)
		out = append(out, r)
	}
	return out
}

func holds(lhs float64, op lp.Op, rhs, tol float64) bool {
	switch op {
	case lp.LE:
		return lhs <= rhs+tol
	case lp.GE:
		return lhs >= rhs-tol
	default:
		return math.Abs(lhs-rhs) <= tol
	}
}

func negate(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = -f
	}
	return out
}
