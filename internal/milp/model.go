package milp

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidModel = errors.New("milp: invalid model")

type Sense int

const (
	Maximize Sense = iota
	Minimize
)

type Kind int

const (
	Continuous Kind = iota
	Binary
	Integer
)

type Var struct {
	Name  string // diagnostics only
	Kind  Kind
	Lower float64
	Upper float64 // math.Inf(1) when unbounded
	Obj   float64
}

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
	}
	return "?"
}

type Term struct {
	Var  int
	Coef float64
}

type Constraint struct {
	Terms []Term
	Op    Op
	RHS   float64
}

// Model is a linear objective over bounded variables subject to linear
// constraints. Variables are addressed by the index AddVar returned.
type Model struct {
	Sense Sense
	vars  []Var
	cons  []Constraint
}

func NewModel(sense Sense) *Model {
	return &Model{Sense: sense}
}

// AddVar appends v and returns its index. Binary bounds are intersected
// with [0, 1].
func (m *Model) AddVar(v Var) int {
	if v.Kind == Binary {
		v.Lower = math.Max(v.Lower, 0)
		v.Upper = math.Min(v.Upper, 1)
	}
	m.vars = append(m.vars, v)
	return len(m.vars) - 1
}

func (m *Model) AddBinary(name string, obj float64) int {
	return m.AddVar(Var{Name: name, Kind: Binary, Lower: 0, Upper: 1, Obj: obj})
}

func (m *Model) AddContinuous(name string, lower, upper, obj float64) int {
	return m.AddVar(Var{Name: name, Kind: Continuous, Lower: lower, Upper: upper, Obj: obj})
}

func (m *Model) AddConstraint(op Op, rhs float64, terms ...Term) {
	m.cons = append(m.cons, Constraint{Terms: terms, Op: op, RHS: rhs})
}

// Fix pins variable v to val by collapsing its bounds.
func (m *Model) Fix(v int, val float64) {
	m.vars[v].Lower = val
	m.vars[v].Upper = val
}

func (m *Model) NumVars() int        { return len(m.vars) }
func (m *Model) NumConstraints() int { return len(m.cons) }
func (m *Model) Var(i int) Var       { return m.vars[i] }
func (m *Model) Constraint(i int) Constraint {
	return m.cons[i]
}

func (m *Model) Validate() error {
	for i, v := range m.vars {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) || math.IsNaN(v.Obj) || math.IsInf(v.Obj, 0) {
			return fmt.Errorf("%w: var %d (%s) has NaN or infinite data", ErrInvalidModel, i, v.Name)
		}
		if math.IsInf(v.Lower, 0) {
			return fmt.Errorf("%w: var %d (%s) needs a finite lower bound", ErrInvalidModel, i, v.Name)
		}
		if v.Lower > v.Upper {
			return fmt.Errorf("%w: var %d (%s) has lower %g > upper %g", ErrInvalidModel, i, v.Name, v.Lower, v.Upper)
		}
	}
	for i, c := range m.cons {
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			return fmt.Errorf("%w: constraint %d has invalid rhs", ErrInvalidModel, i)
		}
		for _, t := range c.Terms {
			if t.Var < 0 || t.Var >= len(m.vars) {
				return fmt.Errorf("%w: constraint %d references var %d", ErrInvalidModel, i, t.Var)
			}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				return fmt.Errorf("%w: constraint %d has invalid coefficient", ErrInvalidModel, i)
			}
		}
	}
	return nil
}

func (m *Model) Objective(x []float64) float64 {
	obj := 0.0
	for j, v := range m.vars {
		obj += v.Obj * x[j]
	}
	return obj
}

// Feasible reports whether x satisfies bounds, integrality and every
// constraint within tol.
func (m *Model) Feasible(x []float64, tol float64) bool {
	if len(x) != len(m.vars) {
		return false
	}
	for j, v := range m.vars {
		if x[j] < v.Lower-tol || x[j] > v.Upper+tol {
			return false
		}
		if v.Kind != Continuous && math.Abs(x[j]-math.Round(x[j])) > tol {
			return false
		}
	}
	for _, c := range m.cons {
		lhs := 0.0
		for _, t := range c.Terms {
			lhs += t.Coef * x[t.Var]
		}
		switch c.Op {
		case LE:
			if lhs > c.RHS+tol {
				return false
			}
		case GE:
			if lhs < c.RHS-tol {
				return false
			}
		case EQ:
			if math.Abs(lhs-c.RHS) > tol {
				return false
			}
		}
	}
	return true
}

// better reports whether objective a improves on b for the model's sense.
func (m *Model) better(a, b float64) bool {
	if m.Sense == Maximize {
		return a > b
	}
	return a < b
}
