package milp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	pivotTol = 1e-9 // smallest usable pivot element
	costTol  = 1e-9 // reduced cost that still counts as an improvement
	feasTol  = 1e-7 // phase one residual tolerated as feasible

	// consecutive degenerate pivots before switching to Bland's rule
	stallLimit = 50
)

var errPivotLimit = errors.New("simplex: pivot limit reached")

// tableau is a dense bounded-variable simplex tableau for
//
//	min cᵀv  s.t.  A v = b,  0 ≤ v ≤ upper
//
// Columns are the structural variables, one slack per inequality row and
// one artificial per row without a usable slack. Nonbasic columns sit at
// zero or, when atUpper is set, at their upper bound.
type tableau struct {
	t     *mat.Dense
	rows  [][]float64 // row views into t
	beta  []float64   // value of the basic column of each row
	basis []int
	where []int // row of a basic column, -1 when nonbasic

	atUpper []bool
	upper   []float64
	d       []float64 // reduced costs

	artificial int // first artificial column
	bland      bool
	pivots     int
}

// newTableau builds the phase one tableau. Rows are normalized so that the
// right-hand side is non-negative; a row whose slack then carries +1 starts
// with the slack basic, every other row gets an artificial.
func newTableau(structural int, colUpper []float64, rows []stdRow) *tableau {
	slacks := 0
	for _, r := range rows {
		if r.op != EQ {
			slacks++
		}
	}
	sign := make([]float64, len(rows))
	sigma := make([]float64, len(rows))
	arts := 0
	for i, r := range rows {
		sign[i] = 1
		switch r.op {
		case LE:
			sigma[i] = 1
		case GE:
			sigma[i] = -1
		}
		if r.rhs < 0 || (r.rhs == 0 && sigma[i] < 0) {
			sign[i] = -1
		}
		if sign[i]*sigma[i] != 1 {
			arts++
		}
	}

	m := len(rows)
	n := structural + slacks + arts
	tb := &tableau{
		t:          mat.NewDense(max(m, 1), max(n, 1), nil),
		rows:       make([][]float64, m),
		beta:       make([]float64, m),
		basis:      make([]int, m),
		where:      make([]int, n),
		atUpper:    make([]bool, n),
		upper:      make([]float64, n),
		d:          make([]float64, n),
		artificial: structural + slacks,
	}
	copy(tb.upper, colUpper)
	for j := structural; j < n; j++ {
		tb.upper[j] = math.Inf(1)
	}
	for j := range tb.where {
		tb.where[j] = -1
	}

	slack, art := structural, structural+slacks
	for i, r := range rows {
		row := tb.t.RawRowView(i)[:n]
		tb.rows[i] = row
		for k, cj := range r.cols {
			row[cj] += sign[i] * r.coefs[k]
		}
		tb.beta[i] = sign[i] * r.rhs
		basic := -1
		if r.op != EQ {
			row[slack] = sign[i] * sigma[i]
			if row[slack] == 1 {
				basic = slack
			}
			slack++
		}
		if basic < 0 {
			row[art] = 1
			basic = art
			art++
		}
		tb.basis[i] = basic
		tb.where[basic] = i
	}
	return tb
}

// price resets the reduced costs for cost vector c.
func (tb *tableau) price(c []float64) {
	copy(tb.d, c)
	for i, row := range tb.rows {
		if cb := c[tb.basis[i]]; cb != 0 {
			floats.AddScaled(tb.d, -cb, row)
		}
	}
	for _, j := range tb.basis {
		tb.d[j] = 0
	}
}

func (tb *tableau) phaseOneCost() []float64 {
	c := make([]float64, len(tb.d))
	for j := tb.artificial; j < len(c); j++ {
		c[j] = 1
	}
	return c
}

// infeasibility is the total value left on artificial columns.
func (tb *tableau) infeasibility() float64 {
	sum := 0.0
	for i, j := range tb.basis {
		if j >= tb.artificial {
			sum += tb.beta[i]
		}
	}
	return sum
}

// pinArtificials fixes every artificial column at zero for phase two.
// Those still basic sit at zero and leave on the first pivot that would
// move them.
func (tb *tableau) pinArtificials() {
	for j := tb.artificial; j < len(tb.upper); j++ {
		tb.upper[j] = 0
		tb.atUpper[j] = false
		if r := tb.where[j]; r >= 0 {
			tb.beta[r] = 0
		}
	}
}

// run pivots until no reduced cost improves the objective. In phase two
// artificial columns never enter. The context is checked before every
// pivot.
func (tb *tableau) run(ctx context.Context, phaseTwo bool, maxPivots int) lpStatus {
	stalled := 0
	for {
		if err := ctx.Err(); err != nil {
			return lpInterrupted
		}
		limit := len(tb.d)
		if phaseTwo {
			limit = tb.artificial
		}
		e := tb.entering(limit)
		if e < 0 {
			return lpSolved
		}
		if tb.pivots >= maxPivots {
			return lpFailed
		}
		tb.pivots++

		theta, leave, toUpper := tb.ratio(e)
		if math.IsInf(theta, 1) {
			return lpUnbounded
		}
		if theta <= pivotTol {
			stalled++
			if stalled > stallLimit {
				tb.bland = true
			}
		} else {
			stalled = 0
		}
		tb.step(e, theta, leave, toUpper)
	}
}

// entering picks the nonbasic column with the steepest improving reduced
// cost (Dantzig), or the lowest such index once the search stalls.
func (tb *tableau) entering(limit int) int {
	best, bestRate := -1, costTol
	for j := 0; j < limit; j++ {
		if tb.where[j] >= 0 || tb.upper[j] <= 0 {
			continue
		}
		rate := -tb.d[j]
		if tb.atUpper[j] {
			rate = tb.d[j]
		}
		if rate <= costTol {
			continue
		}
		if tb.bland {
			return j
		}
		if rate > bestRate {
			best, bestRate = j, rate
		}
	}
	return best
}

func (tb *tableau) direction(e int) float64 {
	if tb.atUpper[e] {
		return -1
	}
	return 1
}

// ratio finds how far column e can move. leave is -1 when e reaches its
// own opposite bound first; otherwise toUpper tells which bound the
// leaving column lands on.
func (tb *tableau) ratio(e int) (theta float64, leave int, toUpper bool) {
	dir := tb.direction(e)
	theta, leave = tb.upper[e], -1
	var bestAlpha float64
	for i, row := range tb.rows {
		a := dir * row[e]
		var lim float64
		var up bool
		switch {
		case a > pivotTol:
			lim = tb.beta[i] / a
		case a < -pivotTol:
			u := tb.upper[tb.basis[i]]
			if math.IsInf(u, 1) {
				continue
			}
			lim, up = (u-tb.beta[i])/-a, true
		default:
			continue
		}
		lim = max(lim, 0)

		better := lim < theta-1e-12
		if !better && leave >= 0 && math.Abs(lim-theta) <= 1e-12 {
			if tb.bland {
				better = tb.basis[i] < tb.basis[leave]
			} else {
				better = math.Abs(a) > bestAlpha
			}
		}
		if better {
			theta, leave, toUpper, bestAlpha = lim, i, up, math.Abs(a)
		}
	}
	return theta, leave, toUpper
}

// step moves column e by theta and pivots it into the basis in place of
// row leave, or flips it to its other bound when leave is -1.
func (tb *tableau) step(e int, theta float64, leave int, toUpper bool) {
	dir := tb.direction(e)
	start := 0.0
	if tb.atUpper[e] {
		start = tb.upper[e]
	}
	if theta > 0 {
		for i, row := range tb.rows {
			if a := row[e]; a != 0 {
				tb.beta[i] -= dir * a * theta
			}
		}
	}
	if leave < 0 {
		tb.atUpper[e] = !tb.atUpper[e]
		return
	}

	out := tb.basis[leave]
	tb.where[out] = -1
	tb.atUpper[out] = toUpper
	tb.beta[leave] = start + dir*theta

	pivot := tb.rows[leave]
	floats.Scale(1/pivot[e], pivot)
	pivot[e] = 1
	for i, row := range tb.rows {
		if i == leave {
			continue
		}
		if a := row[e]; a != 0 {
			floats.AddScaled(row, -a, pivot)
			row[e] = 0
		}
	}
	if de := tb.d[e]; de != 0 {
		floats.AddScaled(tb.d, -de, pivot)
		tb.d[e] = 0
	}

	tb.basis[leave] = e
	tb.where[e] = leave
	tb.atUpper[e] = false
}

// values reads the first n column values off the tableau.
func (tb *tableau) values(n int) []float64 {
	v := make([]float64, n)
	for j := range v {
		switch {
		case tb.where[j] >= 0:
			v[j] = tb.beta[tb.where[j]]
		case tb.atUpper[j]:
			v[j] = tb.upper[j]
		}
		v[j] = max(v[j], 0)
		if !math.IsInf(tb.upper[j], 1) {
			v[j] = min(v[j], tb.upper[j])
		}
	}
	return v
}

// solve runs both phases for cost vector c over the structural columns.
func (tb *tableau) solve(ctx context.Context, c []float64, maxPivots int) (lpStatus, error) {
	if tb.artificial < len(tb.d) {
		tb.price(tb.phaseOneCost())
		switch st := tb.run(ctx, false, maxPivots); st {
		case lpSolved:
		case lpFailed:
			return st, fmt.Errorf("%w in phase one after %d pivots", errPivotLimit, tb.pivots)
		default:
			return st, nil
		}
		if tb.infeasibility() > feasTol {
			return lpInfeasible, nil
		}
		tb.pinArtificials()
	}

	cost := make([]float64, len(tb.d))
	copy(cost, c)
	tb.price(cost)
	st := tb.run(ctx, true, maxPivots)
	if st == lpFailed {
		return st, fmt.Errorf("%w in phase two after %d pivots", errPivotLimit, tb.pivots)
	}
	return st, nil
}
