package milp

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// knapsack: max 5a + 4b + 3c, 2a + 3b + c <= 5. Optimum a=b=1 (9); the
// root relaxation is fractional in b.
func knapsack() *Model {
	m := NewModel(Maximize)
	a := m.AddBinary("a", 5)
	b := m.AddBinary("b", 4)
	c := m.AddBinary("c", 3)
	m.AddConstraint(LE, 5, Term{a, 2}, Term{b, 3}, Term{c, 1})
	return m
}

func TestSolveKnapsackOptimal(t *testing.T) {
	sol, err := BranchAndBound{}.Solve(context.Background(), knapsack(), Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 9.0, sol.Objective, 1e-6)
	assert.Equal(t, []float64{1, 1, 0}, sol.Values)
	assert.GreaterOrEqual(t, sol.Bound, sol.Objective-1e-9)
}

func TestSolveMinimizeIntegers(t *testing.T) {
	m := NewModel(Minimize)
	x := m.AddVar(Var{Name: "x", Kind: Integer, Lower: 0, Upper: 5, Obj: 1})
	y := m.AddVar(Var{Name: "y", Kind: Integer, Lower: 0, Upper: 5, Obj: 1})
	m.AddConstraint(GE, 1.5, Term{x, 1}, Term{y, 1})

	sol, err := BranchAndBound{}.Solve(context.Background(), m, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 2.0, sol.Objective, 1e-6)
	assert.True(t, m.Feasible(sol.Values, 1e-6))
}

func TestSolveCappedContinuous(t *testing.T) {
	// max z, z <= 2, z - 3x <= 0, x binary: the cap binds once x is chosen.
	m := NewModel(Maximize)
	x := m.AddBinary("x", -1e-4)
	z := m.AddContinuous("z", 0, 2, 1)
	m.AddConstraint(LE, 0, Term{z, 1}, Term{x, -3})

	sol, err := BranchAndBound{}.Solve(context.Background(), m, Options{})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 1.0, sol.Value(x), 1e-9)
	assert.InDelta(t, 2.0, sol.Value(z), 1e-6)
}

func TestSolveInfeasible(t *testing.T) {
	m := NewModel(Maximize)
	x := m.AddBinary("x", 1)
	y := m.AddBinary("y", 1)
	m.AddConstraint(EQ, 1, Term{x, 1})
	m.AddConstraint(EQ, 1, Term{y, 1})
	m.AddConstraint(LE, 1, Term{x, 1}, Term{y, 1})

	sol, err := BranchAndBound{}.Solve(context.Background(), m, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.Nil(t, sol.Values)
	assert.False(t, sol.Status.HasSolution())
}

func TestSolveFixedVariables(t *testing.T) {
	m := NewModel(Maximize)
	x := m.AddBinary("x", 3)
	y := m.AddBinary("y", 2)
	m.AddConstraint(EQ, 1, Term{x, 1}, Term{y, 1})
	m.Fix(x, 0)

	sol, err := BranchAndBound{}.Solve(context.Background(), m, Options{})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.Equal(t, []float64{0, 1}, sol.Values)
}

func TestSolveNodeBudget(t *testing.T) {
	t.Run("without start", func(t *testing.T) {
		sol, err := BranchAndBound{}.Solve(context.Background(), knapsack(), Options{MaxNodes: 1})
		require.NoError(t, err)
		assert.Equal(t, StatusNotSolved, sol.Status)
		assert.Equal(t, 1, sol.Nodes)
	})
	t.Run("with start", func(t *testing.T) {
		var seen []Incumbent
		sol, err := BranchAndBound{}.Solve(context.Background(), knapsack(), Options{
			MaxNodes:    1,
			Start:       []float64{1, 0, 1},
			OnIncumbent: func(in Incumbent) { seen = append(seen, in) },
		})
		require.NoError(t, err)
		assert.Equal(t, StatusFeasible, sol.Status)
		assert.InDelta(t, 8.0, sol.Objective, 1e-9)
		require.Len(t, seen, 1)
		assert.True(t, seen[0].FromStart)
	})
}

func TestSolveIgnoresInfeasibleStart(t *testing.T) {
	sol, err := BranchAndBound{}.Solve(context.Background(), knapsack(), Options{Start: []float64{1, 1, 1}})
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 9.0, sol.Objective, 1e-6)
}

func TestSolveCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sol, err := BranchAndBound{}.Solve(ctx, knapsack(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StatusNotSolved, sol.Status)
}

func TestSolveInvalidModel(t *testing.T) {
	m := NewModel(Maximize)
	m.AddBinary("x", 1)
	m.AddConstraint(LE, 1, Term{Var: 3, Coef: 1})

	_, err := BranchAndBound{}.Solve(context.Background(), m, Options{})
	assert.ErrorIs(t, err, ErrInvalidModel)

	m = NewModel(Maximize)
	m.AddContinuous("z", math.Inf(-1), 1, 1)
	_, err = BranchAndBound{}.Solve(context.Background(), m, Options{})
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestSolveUnbounded(t *testing.T) {
	m := NewModel(Maximize)
	z := m.AddContinuous("z", 0, math.Inf(1), 1)
	w := m.AddContinuous("w", 0, math.Inf(1), 0)
	m.AddConstraint(GE, 1, Term{z, 1}, Term{w, 1})

	sol, err := BranchAndBound{}.Solve(context.Background(), m, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusUnbounded, sol.Status)
}

func TestSolveDeterministic(t *testing.T) {
	first, err := BranchAndBound{}.Solve(context.Background(), knapsack(), Options{})
	require.NoError(t, err)
	second, err := BranchAndBound{}.Solve(context.Background(), knapsack(), Options{})
	require.NoError(t, err)
	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, first.Nodes, second.Nodes)
}
