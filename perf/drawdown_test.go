package perf_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/perf"
)

func TestDrawdowns(t *testing.T) {
	t.Parallel()

	s := weekly("x", 1, 2, 1.5, 2.5, 2, 1, 3, 2.8)
	dates := s.Dates
	got := perf.Drawdowns(s)
	require.Len(t, got, 3)

	assert.Equal(t, perf.Drawdown{Peak: dates[3], Trough: dates[5], End: dates[6], Depth: got[0].Depth, Recovered: true}, got[0])
	assert.InDelta(t, -0.6, got[0].Depth, 1e-15)
	assert.Equal(t, 14, got[0].Duration())
	assert.Equal(t, 7, got[0].Recovery())

	assert.Equal(t, dates[1], got[1].Peak)
	assert.Equal(t, dates[2], got[1].Trough)
	assert.InDelta(t, -0.25, got[1].Depth, 1e-15)

	assert.Equal(t, dates[6], got[2].Peak)
	assert.Equal(t, dates[7], got[2].End)
	assert.False(t, got[2].Recovered)
	assert.InDelta(t, 2.8/3-1, got[2].Depth, 1e-15)

	assert.Len(t, perf.TopDrawdowns(s, 2), 2)
	assert.Len(t, perf.TopDrawdowns(s, 0), 3)
	assert.Equal(t, got[0], perf.MaxDrawdown(s))
	assert.Equal(t, perf.Drawdown{}, perf.MaxDrawdown(weekly("up", 1, 2, 3)))
}

func TestDrawdownsIgnoreMissing(t *testing.T) {
	t.Parallel()

	s := weekly("x", 2, math.NaN(), 1, 3)
	got := perf.Drawdowns(s)
	require.Len(t, got, 1)
	assert.Equal(t, s.Dates[2], got[0].Trough)
	assert.Equal(t, s.Dates[3], got[0].End)
}

func TestWindowDrawdowns(t *testing.T) {
	t.Parallel()

	s := weekly("x", 10, 9, 8, 9, 10, 9, 7, 8, 6)
	dates := s.Dates
	got, err := perf.WindowDrawdowns(s, 2)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.InDelta(t, -0.3, got[0].Depth, 1e-15)
	assert.Equal(t, dates[4], got[0].Peak)
	assert.Equal(t, dates[6], got[0].Trough)
	assert.Equal(t, dates[6], got[0].End)
	assert.InDelta(t, -0.2, got[1].Depth, 1e-15)
	assert.Equal(t, dates[0], got[1].Peak)
	assert.InDelta(t, 6.0/7-1, got[2].Depth, 1e-15)
	assert.Equal(t, dates[6], got[2].Peak)

	_, err = perf.WindowDrawdowns(s, 0)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestExpandingDrawdown(t *testing.T) {
	t.Parallel()

	got := perf.ExpandingDrawdown(weekly("x", 1, 2, 1, math.NaN(), 4))
	assert.InDelta(t, 0, got.Values[0], 0)
	assert.InDelta(t, -0.5, got.Values[2], 1e-15)
	assert.True(t, math.IsNaN(got.Values[3]))
	assert.InDelta(t, 0, got.Values[4], 0)
}
