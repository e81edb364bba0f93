package bnb

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/isnet/core/lp"
)

var (
	// errIterationLimit is returned when a relaxation exceeds its pivot budget.
	errIterationLimit = errors.New("simplex iteration limit reached")
	// errNumerical is returned when the final basis no longer satisfies the
	// rows it was computed from.
	errNumerical = errors.New("simplex lost feasibility to round-off")
)

// blandAfter is the number of consecutive degenerate pivots after which the
// entering column is chosen by Bland's rule, which cannot cycle.
const blandAfter = 50

// standard is min cost·x subject to A x <= b and x >= 0.
type standard struct {
	cost []float64
	a    *mat.Dense
	b    []float64
}

type simplexOptions struct {
	// tol bounds reduced costs and residuals treated as zero.
	tol float64
	// pivotTol is the smallest column entry accepted as a pivot.
	pivotTol float64
	maxIter  int
	// bland selects Bland's rule from the first pivot.
	bland bool
}

// tableau is a dense simplex tableau. Row m holds the reduced costs and,
// in its last column, the negated objective value.
type tableau struct {
	m, width int
	t        *mat.Dense
	basis    []int
	o        simplexOptions
	iter     int
}

// solveTableau solves sf with a two-phase tableau simplex. Rows with a
// negative right-hand side start on an artificial column.
func solveTableau(ctx context.Context, sf standard, o simplexOptions) (lp.Status, []float64, error) {
	m, n := sf.a.Dims()
	art := 0
	for _, v := range sf.b {
		if v < 0 {
			art++
		}
	}
	width := n + m + art + 1
	tb := &tableau{m: m, width: width, t: mat.NewDense(m+1, width, nil), basis: make([]int, m), o: o}
	if tb.o.maxIter <= 0 {
		tb.o.maxIter = 50*(m+n) + 1000
	}

	obj := tb.t.RawRowView(m)
	k, infeas := 0, 0.0
	for i := 0; i < m; i++ {
		row := tb.t.RawRowView(i)
		sign := 1.0
		if sf.b[i] < 0 {
			sign = -1
		}
		for j := 0; j < n; j++ {
			row[j] = sign * sf.a.At(i, j)
		}
		row[n+i] = sign
		row[width-1] = sign * sf.b[i]
		if sign > 0 {
			tb.basis[i] = n + i
			continue
		}
		a := n + m + k
		row[a] = 1
		tb.basis[i] = a
		obj[a] = 1
		floats.AddScaled(obj, -1, row)
		infeas += row[width-1]
		k++
	}

	if art > 0 {
		status, err := tb.run(ctx, width-1)
		if err != nil {
			return 0, nil, err
		}
		if status != lp.StatusOptimal || -obj[width-1] > o.tol*(1+infeas) {
			return lp.StatusInfeasible, nil, nil
		}
		tb.dropArtificials(n + m)
	}

	for j := range obj {
		obj[j] = 0
	}
	copy(obj, sf.cost)
	for i, bj := range tb.basis {
		if bj < n && sf.cost[bj] != 0 {
			floats.AddScaled(obj, -sf.cost[bj], tb.t.RawRowView(i))
		}
	}
	status, err := tb.run(ctx, n+m)
	if err != nil || status != lp.StatusOptimal {
		return status, nil, err
	}

	x := make([]float64, n)
	for i, bj := range tb.basis {
		if bj < n {
			x[bj] = math.Max(tb.t.At(i, width-1), 0)
		}
	}
	for i := 0; i < m; i++ {
		lhs := floats.Dot(sf.a.RawRowView(i), x)
		if lhs > sf.b[i]+o.tol*(1+math.Abs(sf.b[i]))*10 {
			return 0, nil, errNumerical
		}
	}
	return lp.StatusOptimal, x, nil
}

// run pivots until no column below cols has a negative reduced cost.
func (tb *tableau) run(ctx context.Context, cols int) (lp.Status, error) {
	degenerate := 0
	rhs := tb.width - 1
	for {
		if tb.iter >= tb.o.maxIter {
			return 0, errIterationLimit
		}
		if tb.iter%64 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		tb.iter++
		bland := tb.o.bland || degenerate > blandAfter

		obj := tb.t.RawRowView(tb.m)
		e := -1
		for j := 0; j < cols; j++ {
			if obj[j] >= -tb.o.tol {
				continue
			}
			if bland {
				e = j
				break
			}
			if e < 0 || obj[j] < obj[e] {
				e = j
			}
		}
		if e < 0 {
			return lp.StatusOptimal, nil
		}

		r, ratio := -1, 0.0
		for i := 0; i < tb.m; i++ {
			a := tb.t.At(i, e)
			if a <= tb.o.pivotTol {
				continue
			}
			q := math.Max(tb.t.At(i, rhs), 0) / a
			switch {
			case r < 0 || q < ratio-1e-12*(1+ratio):
				r, ratio = i, q
			case q <= ratio+1e-12*(1+ratio):
				if bland && tb.basis[i] < tb.basis[r] || !bland && a > tb.t.At(r, e) {
					r = i
				}
			}
		}
		if r < 0 {
			return lp.StatusUnbounded, nil
		}
		if ratio <= 1e-12 {
			degenerate++
		} else {
			degenerate = 0
		}
		tb.pivot(r, e)
	}
}

func (tb *tableau) pivot(r, e int) {
	pr := tb.t.RawRowView(r)
	floats.Scale(1/pr[e], pr)
	pr[e] = 1
	for i := 0; i <= tb.m; i++ {
		if i == r {
			continue
		}
		row := tb.t.RawRowView(i)
		if f := row[e]; f != 0 {
			floats.AddScaled(row, -f, pr)
			row[e] = 0
		}
	}
	tb.basis[r] = e
}

// dropArtificials pivots zero-valued artificial columns out of the basis.
// Rows left with an artificial basic column are redundant and never leave
// again because all their non-artificial entries are zero.
func (tb *tableau) dropArtificials(first int) {
	for i, bj := range tb.basis {
		if bj < first {
			continue
		}
		row := tb.t.RawRowView(i)
		best := -1
		for j := 0; j < first; j++ {
			if math.Abs(row[j]) > tb.o.pivotTol && (best < 0 || math.Abs(row[j]) > math.Abs(row[best])) {
				best = j
			}
		}
		if best >= 0 {
			tb.pivot(i, best)
		}
	}
}
