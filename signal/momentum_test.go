package signal_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/signal"
)

func frame(values ...float64) *series.Frame {
	dates := make([]time.Time, len(values))
	for i := range dates {
		dates[i] = time.Date(2021, 3, 1+i, 0, 0, 0, 0, time.UTC)
	}
	f := series.NewFrame(dates, []string{"x"})
	for i, v := range values {
		f.Set(i, 0, v)
	}
	return f
}

func assertCol(t *testing.T, want []float64, f *series.Frame) {
	t.Helper()
	got := f.Col(0)
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "row %d: %v", i, got[i])
			continue
		}
		assert.InDelta(t, want[i], got[i], 1e-12, "row %d", i)
	}
}

func TestClassicMomentum(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	p := frame(100, 101, 102, 103, 104)

	tests := []struct {
		name       string
		h, s, k, m int
		logs       bool
		want       []float64
	}{
		{"simple", 2, 1, 1, 0, false, []float64{nan, nan, 0.02, 103.0/101 - 1, 104.0/102 - 1}},
		{"log", 2, 1, 1, 0, true, []float64{nan, nan, math.Log(1.02), math.Log(103.0 / 101), math.Log(104.0 / 102)}},
		{"lagged", 2, 1, 1, 1, false, []float64{nan, nan, nan, 0.02, 103.0/101 - 1}},
		{"smoothed", 2, 2, 2, 0, false, []float64{nan, nan, nan, 102.5/100.5 - 1, 103.5/101.5 - 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := signal.ClassicMomentum(p, tt.h, tt.logs, tt.s, tt.k, tt.m)
			require.NoError(t, err)
			assertCol(t, tt.want, got)
			assert.Equal(t, p.Dates, got.Dates)
		})
	}

	_, err := signal.ClassicMomentum(p, 0, false, 1, 1, 0)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestMACD(t *testing.T) {
	t.Parallel()

	got, err := signal.MACD(frame(50, 50, 50, 50), 12, 26)
	require.NoError(t, err)
	assertCol(t, []float64{0, 0, 0, 0}, got)

	rising, err := signal.MACD(frame(1, 2, 3, 4, 5), 1, 10)
	require.NoError(t, err)
	assert.Greater(t, rising.At(4, 0), 0.0)

	_, err = signal.MACD(frame(1, 2), 26, 12)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestRelativePosition(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	got, err := signal.RelativePosition(frame(1, 3, 2, 5, 4), 3)
	require.NoError(t, err)
	assertCol(t, []float64{nan, nan, 0.5, 1, 2.0 / 3}, got)

	_, err = signal.RelativePosition(frame(1), 0)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestRSI(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	got, err := signal.RSI(frame(1, 3, 2, 5, 4), 2)
	require.NoError(t, err)
	assertCol(t, []float64{nan, nan, 100 - 100.0/3, 75, 75}, got)

	up, err := signal.RSI(frame(1, 2, 3, 4), 2)
	require.NoError(t, err)
	assertCol(t, []float64{nan, nan, 100, 100}, up)
}
