package milp

import (
	"context"
	"math"
)

type lpStatus int

const (
	lpSolved lpStatus = iota
	lpInfeasible
	lpUnbounded
	lpFailed
	lpInterrupted
)

type relaxation struct {
	status lpStatus
	obj    float64
	x      []float64
	err    error // why the relaxation failed, set with lpFailed
	pivots int
}

type stdRow struct {
	cols  []int
	coefs []float64
	op    Op
	rhs   float64
}

// relax solves the LP relaxation of m under the node bounds lower/upper.
//
// Every free variable is shifted by its lower bound so that it ranges over
// [0, upper-lower]; bounds stay implicit in the simplex and add no rows.
// Fixed variables are substituted into the right-hand sides and rows left
// without free variables are checked directly. ctx is honoured between
// pivots; maxPivots <= 0 picks a limit from the tableau size.
func (m *Model) relax(ctx context.Context, lower, upper []float64, maxPivots int) relaxation {
	n := len(m.vars)
	x := make([]float64, n)
	col := make([]int, n)

	sign := 1.0
	if m.Sense == Maximize {
		sign = -1.0
	}

	var colUpper, cost []float64
	for j, v := range m.vars {
		if upper[j]-lower[j] <= lpTol {
			col[j] = -1
			x[j] = lower[j]
			continue
		}
		col[j] = len(colUpper)
		colUpper = append(colUpper, upper[j]-lower[j])
		cost = append(cost, sign*v.Obj)
	}

	rows := make([]stdRow, 0, len(m.cons))
	for _, c := range m.cons {
		r := stdRow{op: c.Op, rhs: c.RHS}
		for _, t := range c.Terms {
			if t.Coef == 0 {
				continue
			}
			if col[t.Var] < 0 {
				r.rhs -= t.Coef * x[t.Var]
				continue
			}
			r.rhs -= t.Coef * lower[t.Var]
			r.cols = append(r.cols, col[t.Var])
			r.coefs = append(r.coefs, t.Coef)
		}
		if len(r.cols) == 0 {
			if !emptyRowHolds(r.op, r.rhs, lpTol) {
				return relaxation{status: lpInfeasible}
			}
			continue
		}
		rows = append(rows, r)
	}

	tb := newTableau(len(colUpper), colUpper, rows)
	if maxPivots <= 0 {
		maxPivots = 50 * (len(rows) + len(tb.d))
	}
	st, err := tb.solve(ctx, cost, maxPivots)
	if st != lpSolved {
		return relaxation{status: st, err: err, pivots: tb.pivots}
	}

	v := tb.values(len(colUpper))
	for j := range m.vars {
		if col[j] >= 0 {
			x[j] = lower[j] + v[col[j]]
		}
	}
	return relaxation{status: lpSolved, obj: m.Objective(x), x: x, pivots: tb.pivots}
}

func emptyRowHolds(op Op, rhs, tol float64) bool {
	switch op {
	case LE:
		return rhs >= -tol
	case GE:
		return rhs <= tol
	default:
		return math.Abs(rhs) <= tol
	}
}
