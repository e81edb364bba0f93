// Package lp describes mixed-integer linear programs independently of the
// backend used to solve them. A Problem is a minimization over named columns
// with bounds and kinds, subject to named rows of the form expr op rhs.
package lp

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidProblem is returned when a problem references unknown columns or
// carries inconsistent bounds.
var ErrInvalidProblem = errors.New("invalid problem")

// Var is the handle of a column in a Problem.
type Var int

// Kind is the domain of a column.
type Kind int

const (
	Continuous Kind = iota
	Integer
	Binary
)

func (k Kind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// Op is the relation of a row.
type Op int

const (
	LE Op = iota
	GE
	EQ
)

func (o Op) String() string {
	switch o {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "="
	default:
		return "?"
	}
}

// Term is one coefficient of a linear expression.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a sparse linear expression. Duplicate variables are allowed and
// summed on evaluation.
type Expr struct {
	Terms    []Term
	Constant float64
}

// Add appends coef*v. Zero coefficients are dropped.
func (e *Expr) Add(v Var, coef float64) {
	if coef == 0 {
		return
	}
	e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
}

// AddExpr appends scale*o.
func (e *Expr) AddExpr(o Expr, scale float64) {
	if scale == 0 {
		return
	}
	for _, t := range o.Terms {
		e.Add(t.Var, t.Coef*scale)
	}
	e.Constant += o.Constant * scale
}

// Value evaluates the expression at x.
func (e Expr) Value(x []float64) float64 {
	v := e.Constant
	for _, t := range e.Terms {
		v += t.Coef * x[t.Var]
	}
	return v
}

// Compact returns an equivalent expression with one term per variable,
// ordered by variable, without zero coefficients.
func (e Expr) Compact() Expr {
	sum := make(map[Var]float64, len(e.Terms))
	for _, t := range e.Terms {
		sum[t.Var] += t.Coef
	}
	out := Expr{Terms: make([]Term, 0, len(sum)), Constant: e.Constant}
	for v, c := range sum {
		if c != 0 {
			out.Terms = append(out.Terms, Term{Var: v, Coef: c})
		}
	}
	sort.Slice(out.Terms, func(i, j int) bool { return out.Terms[i].Var < out.Terms[j].Var })
	return out
}

// Column is a decision variable.
type Column struct {
	Name  string
	Kind  Kind
	Lower float64
	Upper float64
}

// Row is a linear constraint Expr Op RHS. A constant in Expr is moved to the
// right-hand side by backends.
type Row struct {
	Name string
	Expr Expr
	Op   Op
	RHS  float64
}

// Problem is a minimization problem.
type Problem struct {
	Name      string
	Objective Expr
	Cols      []Column
	Rows      []Row
}

// NewProblem returns an empty problem.
func NewProblem(name string) *Problem {
	return &Problem{Name: name}
}

// AddVar adds a column and returns its handle. Binary columns get the bounds
// [0,1] regardless of the values passed.
func (p *Problem) AddVar(name string, kind Kind, lower, upper float64) Var {
	if kind == Binary {
		lower, upper = 0, 1
	}
	p.Cols = append(p.Cols, Column{Name: name, Kind: kind, Lower: lower, Upper: upper})
	return Var(len(p.Cols) - 1)
}

// AddRow adds a constraint and returns its index.
func (p *Problem) AddRow(name string, e Expr, op Op, rhs float64) int {
	p.Rows = append(p.Rows, Row{Name: name, Expr: e, Op: op, RHS: rhs})
	return len(p.Rows) - 1
}

// NumVars returns the number of columns.
func (p *Problem) NumVars() int { return len(p.Cols) }

// NumRows returns the number of rows.
func (p *Problem) NumRows() int { return len(p.Rows) }

// NonZeros returns the number of stored row coefficients.
func (p *Problem) NonZeros() int {
	n := 0
	for _, r := range p.Rows {
		n += len(r.Expr.Terms)
	}
	return n
}

// Validate checks column references and bounds.
func (p *Problem) Validate() error {
	n := Var(len(p.Cols))
	for i, c := range p.Cols {
		if math.IsNaN(c.Lower) || math.IsNaN(c.Upper) || c.Lower > c.Upper {
			return fmt.Errorf("%w: column %d (%s) has bounds [%g,%g]", ErrInvalidProblem, i, c.Name, c.Lower, c.Upper)
		}
	}
	for _, t := range p.Objective.Terms {
		if t.Var < 0 || t.Var >= n {
			return fmt.Errorf("%w: objective references column %d", ErrInvalidProblem, t.Var)
		}
	}
	for i, r := range p.Rows {
		if math.IsNaN(r.RHS) {
			return fmt.Errorf("%w: row %d (%s) has NaN right-hand side", ErrInvalidProblem, i, r.Name)
		}
		for _, t := range r.Expr.Terms {
			if t.Var < 0 || t.Var >= n {
				return fmt.Errorf("%w: row %d (%s) references column %d", ErrInvalidProblem, i, r.Name, t.Var)
			}
		}
	}
	return nil
}

// IsFeasible reports whether x satisfies every bound, row and integrality
// requirement within tol.
func (p *Problem) IsFeasible(x []float64, tol float64) bool {
	if len(x) != len(p.Cols) {
		return false
	}
	for i, c := range p.Cols {
		if x[i] < c.Lower-tol || x[i] > c.Upper+tol {
			return false
		}
		if c.Kind != Continuous && math.Abs(x[i]-math.Round(x[i])) > tol {
			return false
		}
	}
	for _, r := range p.Rows {
		lhs := r.Expr.Value(x)
		scale := tol * math.Max(1, math.Abs(r.RHS))
		switch r.Op {
		case LE:
			if lhs > r.RHS+scale {
				return false
			}
		case GE:
			if lhs < r.RHS-scale {
				return false
			}
		case EQ:
			if math.Abs(lhs-r.RHS) > scale {
				return false
			}
		}
	}
	return true
}
