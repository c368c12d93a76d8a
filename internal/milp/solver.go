package milp

import (
	"context"
	"time"
)

type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
	StatusNotSolved  Status = "not_solved"
)

// HasSolution reports whether a Solution with this status carries values.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Solver is the capability the planner submits models to. Infeasibility is
// reported through Solution.Status, never as an error.
type Solver interface {
	Solve(ctx context.Context, m *Model, opts Options) (Solution, error)
}

type Options struct {
	// MaxNodes caps explored branch-and-bound nodes; <= 0 means no cap.
	MaxNodes int
	// Timeout bounds the whole search; <= 0 means only ctx applies.
	Timeout time.Duration
	// IntegralityTol is the distance from an integer still treated as integral.
	IntegralityTol float64
	// Gap is the absolute objective improvement a node must promise to be explored.
	Gap float64
	// MaxPivots caps simplex pivots per relaxation; <= 0 derives a cap from
	// the relaxation size. A relaxation over the cap counts as failed.
	MaxPivots int
	// Start is an optional incumbent; it is dropped when infeasible.
	Start []float64
	// OnIncumbent observes every improving solution.
	OnIncumbent func(Incumbent)
}

func (o Options) withDefaults() Options {
	if o.IntegralityTol <= 0 {
		o.IntegralityTol = 1e-6
	}
	if o.Gap <= 0 {
		o.Gap = 1e-7
	}
	return o
}

type Incumbent struct {
	Objective float64
	Node      int
	FromStart bool
}

type Solution struct {
	Status    Status
	Values    []float64
	Objective float64
	// Bound is the root relaxation objective, a bound on any integral solution.
	Bound  float64
	Nodes  int
	Pivots int
	// Failed counts nodes whose relaxation could not be solved;
	// FirstFailure says why the first one failed.
	Failed       int
	FirstFailure error
	Elapsed      time.Duration
}

func (s Solution) Value(v int) float64 {
	if v < 0 || v >= len(s.Values) {
		return 0
	}
	return s.Values[v]
}
