// Package bnb implements lp.Solver with a depth-first branch-and-bound over
// LP relaxations solved by a dense two-phase tableau simplex on gonum
// matrices. It needs no external library and suits small and medium models;
// larger ones belong to the external backend.
package bnb

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/kilianp07/isnet/core/factory"
	"github.com/kilianp07/isnet/core/logger"
	"github.com/kilianp07/isnet/core/lp"
	infralogger "github.com/kilianp07/isnet/infra/logger"
)

// Options tunes the search.
type Options struct {
	// Tolerance is passed to the simplex routine.
	Tolerance float64 `json:"tolerance"`
	// IntegralityTolerance is the distance to the nearest integer below which
	// an integer column counts as integral.
	IntegralityTolerance float64 `json:"integrality_tolerance"`
	// FeasibilityTolerance is used for bound and row checks.
	FeasibilityTolerance float64 `json:"feasibility_tolerance"`
	// PivotTolerance is the smallest tableau entry accepted as a pivot.
	PivotTolerance float64 `json:"pivot_tolerance"`
	// MaxIterations bounds the pivots of one relaxation; 0 derives a budget
	// from the tableau size.
	MaxIterations int `json:"max_iterations"`
	// MaxNodes bounds the number of relaxations; 0 means unlimited.
	MaxNodes int `json:"max_nodes"`
	// MaxCells bounds the dense tableau size (rows x columns); 0 means unlimited.
	MaxCells int `json:"max_cells"`
	// LogEvery logs search progress every n nodes; 0 disables it.
	LogEvery int `json:"log_every"`
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Tolerance:            1e-7,
		IntegralityTolerance: 1e-9,
		FeasibilityTolerance: 1e-7,
		PivotTolerance:       1e-9,
		MaxNodes:             100000,
		MaxCells:             200_000_000,
		LogEvery:             1000,
	}
}

func init() {
	_ = lp.RegisterSolver("bnb", func(conf map[string]any) (lp.Solver, error) {
		opts := DefaultOptions()
		if err := factory.Decode(conf, &opts); err != nil {
			return nil, err
		}
		return New(opts, infralogger.New("bnb")), nil
	})
}

// Solver is a branch-and-bound MILP solver.
type Solver struct {
	opts Options
	log  logger.Logger
}

// New returns a solver. A nil logger disables logging.
func New(opts Options, log logger.Logger) *Solver {
	def := DefaultOptions()
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.IntegralityTolerance <= 0 {
		opts.IntegralityTolerance = def.IntegralityTolerance
	}
	if opts.FeasibilityTolerance <= 0 {
		opts.FeasibilityTolerance = def.FeasibilityTolerance
	}
	if opts.PivotTolerance <= 0 {
		opts.PivotTolerance = def.PivotTolerance
	}
	if log == nil {
		log = infralogger.NopLogger{}
	}
	return &Solver{opts: opts, log: log}
}

type node struct {
	lo, hi []float64
	depth  int
}

// Solve runs the search. The relaxation of every node is solved from
// scratch; children tighten one integer column bound. A node whose
// relaxation fails numerically is retried with Bland's rule and skipped if
// it fails again, in which case the result is reported as Not Solved.
func (s *Solver) Solve(ctx context.Context, p *lp.Problem) (*lp.Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	c := compile(p)
	root := node{lo: make([]float64, c.n), hi: make([]float64, c.n)}
	for j, col := range p.Cols {
		root.lo[j], root.hi[j] = col.Lower, col.Upper
		if c.integer[j] {
			root.lo[j] = math.Ceil(col.Lower - s.opts.IntegralityTolerance)
			root.hi[j] = math.Floor(col.Upper + s.opts.IntegralityTolerance)
		}
	}
	if !s.presolve(&c, root.lo, root.hi) {
		return &lp.Solution{Status: lp.StatusInfeasible, Objective: math.NaN()}, nil
	}

	var (
		best      []float64
		bestObj   = math.Inf(1)
		nodes     int
		limitHit  bool
		skipped   int
		stack     = []node{root}
		tightened int
	)
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.opts.MaxNodes > 0 && nodes >= s.opts.MaxNodes {
			limitHit = true
			break
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++
		if s.opts.LogEvery > 0 && nodes%s.opts.LogEvery == 0 {
			s.log.Infof("bnb: %d nodes explored, %d open, incumbent %g", nodes, len(stack), bestObj)
		}

		rel, err := s.relax(ctx, c, nd.lo, nd.hi, false)
		if recoverable(err) {
			s.log.Warnf("bnb: %v at depth %d, retrying with Bland's rule", err, nd.depth)
			rel, err = s.relax(ctx, c, nd.lo, nd.hi, true)
			if recoverable(err) {
				s.log.Warnf("bnb: %v at depth %d, node skipped", err, nd.depth)
				skipped++
				continue
			}
		}
		if err != nil {
			return nil, err
		}
		switch rel.status {
		case lp.StatusInfeasible:
			continue
		case lp.StatusUnbounded:
			// Children only tighten bounds, so an unbounded node means the
			// problem itself has no finite optimum once any integer point is
			// feasible.
			s.log.Warnf("bnb: unbounded relaxation at depth %d", nd.depth)
			return &lp.Solution{Status: lp.StatusUnbounded, Objective: math.Inf(-1), Nodes: nodes}, nil
		}
		obj := p.Objective.Value(rel.x)
		if obj >= bestObj-s.pruneGap(bestObj) {
			continue
		}

		j := s.branchColumn(c, rel.x)
		if j < 0 {
			best, bestObj = rel.x, obj
			tightened++
			continue
		}
		if x, ok := s.roundUp(p, c, rel.x); ok {
			if v := p.Objective.Value(x); v < bestObj-s.pruneGap(bestObj) {
				best, bestObj = x, v
				tightened++
			}
		}

		v := rel.x[j]
		up := node{lo: clone(nd.lo), hi: clone(nd.hi), depth: nd.depth + 1}
		up.lo[j] = math.Ceil(v)
		down := node{lo: clone(nd.lo), hi: clone(nd.hi), depth: nd.depth + 1}
		down.hi[j] = math.Floor(v)
		stack = append(stack, up, down)
	}

	sol := &lp.Solution{Nodes: nodes, Objective: math.NaN()}
	switch {
	case limitHit || skipped > 0:
		sol.Status = lp.StatusNotSolved
	case best == nil:
		sol.Status = lp.StatusInfeasible
	default:
		sol.Status = lp.StatusOptimal
	}
	if best != nil {
		sol.X = s.clean(c, best)
		sol.Objective = p.Objective.Value(sol.X)
	}
	s.log.Debugw("bnb search finished", map[string]any{
		"status":      sol.Status.String(),
		"nodes":       nodes,
		"incumbents":  tightened,
		"skipped":     skipped,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return sol, nil
}

func recoverable(err error) bool {
	return errors.Is(err, errIterationLimit) || errors.Is(err, errNumerical)
}

func (s *Solver) pruneGap(best float64) float64 {
	if math.IsInf(best, 1) {
		return 0
	}
	return 1e-9 * math.Max(1, math.Abs(best))
}

// branchColumn returns the most fractional integer column, or -1 when x is
// integral.
func (s *Solver) branchColumn(c compiled, x []float64) int {
	j, worst := -1, s.opts.IntegralityTolerance
	for i, isInt := range c.integer {
		if !isInt {
			continue
		}
		f := x[i] - math.Floor(x[i])
		d := math.Min(f, 1-f)
		if d > worst {
			j, worst = i, d
		}
	}
	return j
}

// roundUp rounds every fractional integer column up and keeps the point when
// it satisfies the whole problem.
func (s *Solver) roundUp(p *lp.Problem, c compiled, x []float64) ([]float64, bool) {
	r := clone(x)
	for i, isInt := range c.integer {
		if isInt {
			r[i] = math.Ceil(r[i] - s.opts.IntegralityTolerance)
		}
	}
	return r, p.IsFeasible(r, s.opts.FeasibilityTolerance)
}

// clean snaps integer columns and clears round-off around zero.
func (s *Solver) clean(c compiled, x []float64) []float64 {
	out := clone(x)
	for i := range out {
		if c.integer[i] {
			out[i] = math.Round(out[i])
		}
		if math.Abs(out[i]) < s.opts.FeasibilityTolerance {
			out[i] = 0
		}
	}
	return out
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
