package portfolio_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/portfolio"
	"github.com/meenmo/quantlib/series"
)

// covFrame has 30 prices: log returns alternate ±5% for 20 days then ±1%.
// B moves twice as much as A; C only trades on the last four days, three times
// as much as A.
func covFrame() *series.Frame {
	dates := weekdays(d(2020, 1, 1), d(2020, 2, 11))[:30]
	f := series.NewFrame(dates, []string{"A", "B", "C"})
	cum := 0.0
	for i := range dates {
		if i > 0 {
			size := 0.01
			if i <= 20 {
				size = 0.05
			}
			cum += size * math.Pow(-1, float64(i))
		}
		f.Set(i, 0, 100*math.Exp(cum))
		f.Set(i, 1, 100*math.Exp(2*cum))
	}
	base := cum
	for i := len(dates) - 1; i >= 26; i-- {
		f.Set(i, 2, 100*math.Exp(3*(base-partial(i))))
	}
	return f
}

// partial is the cumulative log return of A from day i+1 to day 29.
func partial(i int) float64 {
	s := 0.0
	for k := i + 1; k < 30; k++ {
		s += 0.01 * math.Pow(-1, float64(k))
	}
	return s
}

func TestCovarianceUnconditional(t *testing.T) {
	t.Parallel()

	f := covFrame()
	ab, err := f.Select("A", "B")
	require.NoError(t, err)
	last := f.Dates[29]

	cov, err := portfolio.Covariance(ab, last, portfolio.CovOptions{Period: 1, Window: 100})
	require.NoError(t, err)
	assert.InDelta(t, 0.4580689655172414, cov.At(0, 0), 1e-12)
	assert.InDelta(t, 0.9161379310344829, cov.At(0, 1), 1e-12)
	assert.InDelta(t, 4*0.4580689655172414, cov.At(1, 1), 1e-12)

	shrunk, err := portfolio.Covariance(ab, last, portfolio.CovOptions{Period: 1, Window: 100, Shrinkage: 0.5})
	require.NoError(t, err)
	assert.InDelta(t, cov.At(0, 0), shrunk.At(0, 0), 1e-12)
	assert.InDelta(t, 0.4580689655172414, shrunk.At(0, 1), 1e-12)

	corr := portfolio.Correlation(cov)
	assert.InDelta(t, 1, corr.At(0, 1), 1e-12)
	assert.InDeltaSlice(t, []float64{math.Sqrt(cov.At(0, 0)), math.Sqrt(cov.At(1, 1))}, portfolio.Vols(cov), 1e-15)
}

func TestCovarianceConditional(t *testing.T) {
	t.Parallel()

	f := covFrame()
	last := f.Dates[29]

	rolling, err := portfolio.Covariance(f, last, portfolio.CovOptions{Kind: portfolio.Rolling, Period: 1, Window: 5})
	require.NoError(t, err)
	// The window ends at the previous close: four ±1% returns.
	assert.InDelta(t, 252*4e-4/3, rolling.At(0, 0), 1e-12)
	assert.InDelta(t, 4*252*4e-4/3, rolling.At(1, 1), 1e-12)

	// C has too little history: its row is the full sample estimate.
	assert.InDelta(t, 0.3024, rolling.At(2, 2), 1e-12)
	assert.InDelta(t, 0.1008, rolling.At(0, 2), 1e-12)
	assert.InDelta(t, 0.1008, rolling.At(2, 0), 1e-12)

	expanding, err := portfolio.Covariance(f, last, portfolio.CovOptions{Kind: portfolio.Expanding, Period: 1, Window: 5})
	require.NoError(t, err)
	assert.InDelta(t, 0.47413333333333335, expanding.At(0, 0), 1e-12)

	ewma, err := portfolio.Covariance(f, last, portfolio.CovOptions{Kind: portfolio.EWMA, Window: 5, Halflife: 3})
	require.NoError(t, err)
	assert.Greater(t, ewma.At(0, 0), 0.0)
	assert.InDelta(t, 4*ewma.At(0, 0), ewma.At(1, 1), 1e-12)
	assert.Less(t, ewma.At(0, 0), expanding.At(0, 0))
}

func TestCovarianceErrors(t *testing.T) {
	t.Parallel()

	f := covFrame()
	_, err := portfolio.Covariance(f, f.Dates[29], portfolio.CovOptions{Shrinkage: 1})
	assert.ErrorIs(t, err, errs.ErrPrecondition)

	_, err = portfolio.Covariance(f, d(2019, 12, 31), portfolio.CovOptions{})
	assert.ErrorIs(t, err, errs.ErrPrecondition)

	_, err = portfolio.Covariance(f, f.Dates[29], portfolio.CovOptions{Kind: "garch", Window: 5})
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}
