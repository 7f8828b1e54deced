package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/optim"
)

func TestBrent(t *testing.T) {
	t.Parallel()

	root, iters, err := optim.Brent(func(x float64) float64 { return x*x - 2 }, 0, 2, 1e-14, 100)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, root, 1e-12)
	assert.Greater(t, iters, 0)

	root, _, err = optim.Brent(math.Cos, 0, 3, 1e-14, 100)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, root, 1e-12)

	_, _, err = optim.Brent(func(x float64) float64 { return x*x + 1 }, -1, 1, 1e-14, 100)
	assert.ErrorIs(t, err, errs.ErrOptimisationFailed)
}

func rosenbrock(x []float64) float64 {
	a, b := 1-x[0], x[1]-x[0]*x[0]
	return a*a + 100*b*b
}

func TestMinimizeFiniteDifference(t *testing.T) {
	t.Parallel()

	res, err := optim.Minimize(optim.Problem{Func: rosenbrock}, []float64{-1.2, 1}, optim.Options{LocalIter: 500, Tolerance: 1e-14})
	require.NoError(t, err)
	assert.InDelta(t, 1, res.X[0], 1e-4)
	assert.InDelta(t, 1, res.X[1], 1e-4)
	assert.NotEqual(t, optim.Failed, res.Status)
}

func TestMinimizeAnalyticGradient(t *testing.T) {
	t.Parallel()

	p := optim.Problem{
		Func: func(x []float64) float64 { return (x[0]-3)*(x[0]-3) + 2*(x[1]+1)*(x[1]+1) },
		Grad: func(g, x []float64) {
			g[0] = 2 * (x[0] - 3)
			g[1] = 4 * (x[1] + 1)
		},
	}
	res, err := optim.Minimize(p, []float64{0, 0}, optim.Options{})
	require.NoError(t, err)
	assert.InDelta(t, 3, res.X[0], 1e-8)
	assert.InDelta(t, -1, res.X[1], 1e-8)
}

// A double well whose start sits in the shallow basin.
func TestBasinHoppingEscapesLocalMinimum(t *testing.T) {
	t.Parallel()

	f := func(x []float64) float64 {
		v := x[0]
		return (v*v-1)*(v*v-1) + 0.3*v
	}
	opts := optim.Options{MaxIter: 200, NoImprove: 50, StepSize: 1.5, Seed: 7}

	local, err := optim.Minimize(optim.Problem{Func: f}, []float64{0.9}, opts)
	require.NoError(t, err)
	assert.Greater(t, local.X[0], 0.0)

	global, err := optim.BasinHopping(optim.Problem{Func: f}, []float64{0.9}, opts)
	require.NoError(t, err)
	assert.Less(t, global.X[0], 0.0)
	assert.Less(t, global.F, local.F)

	again, err := optim.BasinHopping(optim.Problem{Func: f}, []float64{0.9}, opts)
	require.NoError(t, err)
	assert.Equal(t, global.X, again.X, "same seed, same path")
}
