package perf_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/perf"
	"github.com/meenmo/quantlib/series"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// weekly spaces observations seven days apart from 2021-01-04.
func weekly(name string, values ...float64) *series.Series {
	dates := make([]time.Time, len(values))
	for i := range dates {
		dates[i] = d(2021, 1, 4).AddDate(0, 0, 7*i)
	}
	return series.MustNew(name, dates, values)
}

func TestPerfTable(t *testing.T) {
	t.Parallel()

	s := weekly("idx", 100, 110, 99, 105, 89.25)
	r, err := perf.PerfTable(s, perf.Monthly)
	require.NoError(t, err)

	assert.Equal(t, "idx", r.Name)
	assert.Equal(t, 5, r.Obs)
	assert.Equal(t, d(2021, 1, 4), r.Start)
	assert.Equal(t, d(2021, 2, 1), r.End)
	assert.InDelta(t, -0.2890735468750001, r.Return, 1e-12)
	assert.InDelta(t, 0.4327859401888654, r.Vol, 1e-12)
	assert.InDelta(t, -0.6679365479129243, r.Sharpe, 1e-12)
	assert.InDelta(t, -2.0646790805024584, r.Sortino, 1e-12)
	assert.InDelta(t, -0.1886363636363636, r.MaxDD, 1e-12)
	assert.InDelta(t, -0.4358652768480504, r.MaxDDToVol, 1e-12)

	_, err = perf.PerfTable(weekly("short", 1, 2), perf.Daily)
	assert.ErrorIs(t, err, errs.ErrPrecondition)

	_, err = perf.PerfTable(s, "hourly")
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestPerfTablesSameWindow(t *testing.T) {
	t.Parallel()

	a := weekly("a", 100, 110, 99, 105, 89.25)
	b := weekly("b", math.NaN(), 10, 11, 12, 13)
	f := series.Align(a, b)

	all, err := perf.PerfTables(f, perf.Weekly, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 5, all[0].Obs)
	assert.Equal(t, 4, all[1].Obs)
	assert.Equal(t, 0.0, all[1].MaxDD)
	assert.True(t, math.IsNaN(all[1].Sortino))

	same, err := perf.PerfTables(f, perf.Weekly, true)
	require.NoError(t, err)
	assert.Equal(t, 4, same[0].Obs)
	assert.Equal(t, d(2021, 1, 11), same[0].Start)
}

func TestFrequencyFactor(t *testing.T) {
	t.Parallel()

	for freq, want := range map[perf.Frequency]float64{"daily": 252, "WEEKLY": 52, "monthly": 12, "": 252} {
		got, err := freq.Factor()
		require.NoError(t, err)
		assert.Equal(t, want, got, freq)
	}
}

func TestRollingSharpe(t *testing.T) {
	t.Parallel()

	values := []float64{100}
	for i := 1; i < 40; i++ {
		g := 1.0
		if i%2 == 1 {
			g = 1.02
		}
		values = append(values, values[i-1]*g)
	}
	sum, err := perf.RollingSharpe(weekly("alt", values...), perf.Monthly)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Count)
	assert.InDelta(t, 3.6268478682623013, sum.Mean, 1e-9)
	assert.InDelta(t, 3.6268478682623013, sum.Min, 1e-9)
	assert.InDelta(t, 3.6268478682623013, sum.Max, 1e-9)
	assert.InDelta(t, 0, sum.Std, 1e-9)

	_, err = perf.RollingSharpe(weekly("short", values[:30]...), perf.Monthly)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}
