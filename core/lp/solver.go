package lp

import (
	"context"
	"math"

	"github.com/kilianp07/isnet/core/factory"
)

// Status is the outcome of a solve.
type Status int

const (
	StatusNotSolved Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusUndefined
)

func (s Status) String() string {
	switch s {
	case StatusNotSolved:
		return "Not Solved"
	case StatusOptimal:
		return "Optimal"
	case StatusInfeasible:
		return "Infeasible"
	case StatusUnbounded:
		return "Unbounded"
	default:
		return "Undefined"
	}
}

// Solution is returned by a Solver. X is nil when the backend has no values
// to report.
type Solution struct {
	Status    Status
	Objective float64
	X         []float64
	// Nodes is the number of subproblems the backend explored.
	Nodes int
}

// HasValues reports whether variable values are available.
func (s *Solution) HasValues() bool { return s != nil && s.X != nil }

// Value returns the value of v, or NaN when no values are available.
func (s *Solution) Value(v Var) float64 {
	if !s.HasValues() || int(v) >= len(s.X) {
		return math.NaN()
	}
	return s.X[v]
}

// Eval evaluates e at the solution, or returns NaN when no values are available.
func (s *Solution) Eval(e Expr) float64 {
	if !s.HasValues() {
		return math.NaN()
	}
	return e.Value(s.X)
}

// Solver submits a problem to a MILP backend. Infeasible and unbounded
// problems are reported through Solution.Status; errors are reserved for
// malformed problems, cancellation and backend failures.
type Solver interface {
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, p *Problem) (*Solution, error)

// Solve calls f.
func (f SolverFunc) Solve(ctx context.Context, p *Problem) (*Solution, error) { return f(ctx, p) }

var solverRegistry = factory.NewRegistry[Solver]()

// RegisterSolver adds a solver backend factory identified by name.
func RegisterSolver(name string, f factory.Factory[Solver]) error {
	return solverRegistry.Register(name, f)
}

// NewSolver creates the backend selected by cfg.Type.
func NewSolver(cfg factory.ModuleConfig) (Solver, error) {
	return solverRegistry.Create(cfg)
}

// Solvers lists the registered backends.
func Solvers() []string { return solverRegistry.Names() }
