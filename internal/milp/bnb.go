package milp

import (
	"context"
	"fmt"
	"math"
	"time"
)

const lpTol = 1e-9

// BranchAndBound is a depth-first branch-and-bound search over LP
// relaxations. The zero value is ready to use and safe for concurrent use.
type BranchAndBound struct{}

var _ Solver = BranchAndBound{}

type node struct {
	lower, upper []float64
}

func (BranchAndBound) Solve(ctx context.Context, m *Model, opts Options) (Solution, error) {
	if err := m.Validate(); err != nil {
		return Solution{Status: StatusNotSolved}, err
	}
	opts = opts.withDefaults()
	started := time.Now()

	parent := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	sol := Solution{Status: StatusNotSolved, Bound: math.NaN()}
	var best []float64
	bestObj := 0.0

	if opts.Start != nil && m.Feasible(opts.Start, opts.IntegralityTol) {
		best = append([]float64(nil), opts.Start...)
		bestObj = m.Objective(best)
		if opts.OnIncumbent != nil {
			opts.OnIncumbent(Incumbent{Objective: bestObj, FromStart: true})
		}
	}

	root := node{lower: make([]float64, len(m.vars)), upper: make([]float64, len(m.vars))}
	for j, v := range m.vars {
		root.lower[j] = v.Lower
		root.upper[j] = v.Upper
		if v.Kind != Continuous {
			root.lower[j] = math.Ceil(v.Lower - opts.IntegralityTol)
			root.upper[j] = math.Floor(v.Upper + opts.IntegralityTol)
		}
		if root.lower[j] > root.upper[j] {
			sol.Status = StatusInfeasible
			sol.Elapsed = time.Since(started)
			return sol, nil
		}
	}

	stack := []node{root}
	exhausted := true
	unbounded := false

search:
	for len(stack) > 0 {
		if ctx.Err() != nil || (opts.MaxNodes > 0 && sol.Nodes >= opts.MaxNodes) {
			exhausted = false
			break
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sol.Nodes++

		r := m.relax(ctx, nd.lower, nd.upper, opts.MaxPivots)
		sol.Pivots += r.pivots
		switch r.status {
		case lpInterrupted:
			exhausted = false
			break search
		case lpInfeasible:
			continue
		case lpUnbounded:
			if sol.Nodes == 1 {
				unbounded = true
				break search
			}
			sol.fail(fmt.Errorf("node %d: relaxation unbounded below the root", sol.Nodes))
			continue
		case lpFailed:
			sol.fail(fmt.Errorf("node %d: %w", sol.Nodes, r.err))
			continue
		}
		if sol.Nodes == 1 {
			sol.Bound = r.obj
		}
		if best != nil && !m.better(r.obj, bestObj+m.gapStep(opts.Gap)) {
			continue
		}

		j := m.branchVar(r.x, nd, opts.IntegralityTol)
		if j < 0 {
			cand := m.round(r.x)
			obj := m.Objective(cand)
			if best == nil || m.better(obj, bestObj) {
				best, bestObj = cand, obj
				if opts.OnIncumbent != nil {
					opts.OnIncumbent(Incumbent{Objective: obj, Node: sol.Nodes})
				}
			}
			continue
		}

		v := r.x[j]
		down := math.Floor(v)
		left := nd.clone()
		left.upper[j] = down
		right := nd.clone()
		right.lower[j] = down + 1
		// the side nearer the relaxed value is explored first
		if v-down < 0.5 {
			stack = append(stack, right, left)
		} else {
			stack = append(stack, left, right)
		}
	}

	sol.Elapsed = time.Since(started)
	switch {
	case unbounded:
		sol.Status = StatusUnbounded
	case best != nil:
		sol.Values = best
		sol.Objective = bestObj
		sol.Status = StatusFeasible
		if exhausted && sol.Failed == 0 {
			sol.Status = StatusOptimal
		}
	case exhausted && sol.Failed == 0:
		sol.Status = StatusInfeasible
	}

	if err := parent.Err(); err != nil {
		return sol, fmt.Errorf("milp: search interrupted after %d nodes: %w", sol.Nodes, err)
	}
	return sol, nil
}

// gapStep converts the absolute gap into the direction of improvement.
func (m *Model) gapStep(gap float64) float64 {
	if m.Sense == Maximize {
		return gap
	}
	return -gap
}

// branchVar picks the most fractional integer variable, lowest index on
// ties, or -1 when x is integral.
func (m *Model) branchVar(x []float64, nd node, tol float64) int {
	pick, worst := -1, tol
	for j, v := range m.vars {
		if v.Kind == Continuous || nd.upper[j]-nd.lower[j] < 1 {
			continue
		}
		frac := math.Abs(x[j] - math.Round(x[j]))
		if frac > worst {
			pick, worst = j, frac
		}
	}
	return pick
}

func (m *Model) round(x []float64) []float64 {
	out := append([]float64(nil), x...)
	for j, v := range m.vars {
		if v.Kind != Continuous {
			out[j] = math.Round(out[j])
		}
	}
	return out
}

// fail counts a node whose relaxation could not be solved and keeps the
// first reason.
func (s *Solution) fail(err error) {
	s.Failed++
	if s.FirstFailure == nil {
		s.FirstFailure = err
	}
}

func (nd node) clone() node {
	return node{
		lower: append([]float64(nil), nd.lower...),
		upper: append([]float64(nil), nd.upper...),
	}
}
