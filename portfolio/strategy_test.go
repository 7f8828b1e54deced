package portfolio_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/portfolio"
	"github.com/meenmo/quantlib/series"
)

func TestLongOnlyStatic(t *testing.T) {
	t.Parallel()

	dates := weekdays(d(2020, 1, 1), d(2020, 3, 31))
	prices := priceFrame(dates, []string{"A", "B"}, wavy)

	s, err := portfolio.LongOnly(prices, portfolio.EW, portfolio.StrategyOptions{Static: true, Schedule: portfolio.Schedule{Code: "ME"}})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, s.Weights.Columns)
	assert.Equal(t, s.RebalanceDates, s.Weights.Dates)
	require.Len(t, s.RebalanceDates, 3)
	for _, row := range s.Weights.Data {
		assert.InDeltaSlice(t, []float64{0.5, 0.5}, row, 1e-15)
	}

	res, err := s.Run(portfolio.Costs{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Equity.Values[0])
	assert.Len(t, res.Equity.Values, len(dates))
}

func TestLongOnlyLateAssetRescaledToOne(t *testing.T) {
	t.Parallel()

	dates := weekdays(d(2020, 1, 1), d(2020, 3, 31))
	prices := priceFrame(dates, []string{"A", "B"}, func(j, i int) float64 {
		if j == 1 && dates[i].Before(d(2020, 2, 14)) {
			return math.NaN()
		}
		return wavy(j, i)
	})

	s, err := portfolio.LongOnly(prices, portfolio.EW, portfolio.StrategyOptions{
		Static:   true,
		Rescale:  portfolio.ToOne,
		Schedule: portfolio.Schedule{Code: "ME"},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, s.Weights.Data[0])
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, s.Weights.Data[1], 1e-15)

	res, err := s.Run(portfolio.Costs{})
	require.NoError(t, err)
	i, ok := res.Holdings.Index(d(2020, 2, 3))
	require.True(t, ok)
	assert.Equal(t, 0.0, res.Holdings.At(i, 1))
}

func TestLongOnlyDynamic(t *testing.T) {
	t.Parallel()

	dates := weekdays(d(2020, 1, 1), d(2020, 6, 30))
	prices := priceFrame(dates, []string{"A", "B", "C"}, wavy)

	for _, scheme := range []portfolio.Scheme{portfolio.IVP, portfolio.HRP} {
		s, err := portfolio.LongOnly(prices, scheme, portfolio.StrategyOptions{
			Schedule: portfolio.Schedule{Code: "QE"},
			Cov:      portfolio.CovOptions{Period: 5, Window: 60},
		})
		require.NoError(t, err, scheme)
		require.Len(t, s.RebalanceDates, 2)
		for _, row := range s.Weights.Data {
			assert.InDelta(t, 1, floats.Sum(row), 1e-12)
			for _, v := range row {
				assert.Greater(t, v, 0.0)
			}
		}
	}

	_, err := portfolio.LongOnly(series.NewFrame(nil, []string{"A"}), portfolio.EW, portfolio.StrategyOptions{})
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestSignalStrategy(t *testing.T) {
	t.Parallel()

	dates := weekdays(d(2020, 1, 1), d(2020, 3, 31))
	prices := priceFrame(dates, []string{"A", "B", "C", "D"}, wavy)
	sigDates := weekdays(d(2020, 1, 15), d(2020, 3, 31))
	signals := priceFrame(sigDates, []string{"C", "B", "A"}, func(j, i int) float64 {
		return []float64{2, 1, 3}[j]
	})

	s, err := portfolio.SignalStrategy(prices, signals, portfolio.Rank, portfolio.StrategyOptions{Schedule: portfolio.Schedule{Code: "ME"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, s.Prices.Columns)
	assert.Equal(t, d(2020, 1, 15), s.Prices.Dates[0])
	require.Len(t, s.Weights.Data, 3)
	for _, row := range s.Weights.Data {
		assert.InDeltaSlice(t, []float64{1, -1, 0}, row, 1e-15)
	}

	ivp, err := portfolio.SignalStrategy(prices, signals, portfolio.SignalIVP, portfolio.StrategyOptions{
		Schedule: portfolio.Schedule{Code: "ME"},
		Cov:      portfolio.CovOptions{Period: 1},
	})
	require.NoError(t, err)
	for _, row := range ivp.Weights.Data {
		assert.Greater(t, row[0], 0.0)
		assert.Less(t, row[1], 0.0)
		assert.Equal(t, 0.0, row[2])
		assert.InDelta(t, 2, math.Abs(row[0])+math.Abs(row[1]), 1e-12)
	}

	res, err := s.Run(portfolio.Costs{RebalanceBps: 5})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Equity.Values[0])
}
