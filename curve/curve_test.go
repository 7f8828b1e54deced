package curve_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/quantlib/curve"
	"github.com/meenmo/quantlib/daycount"
	"github.com/meenmo/quantlib/errs"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestDiscountRoundTrip(t *testing.T) {
	t.Parallel()

	days := []float64{1, 21, 63, 126, 252, 504, 1260}
	dfs := []float64{0.99985, 0.9962, 0.9881, 0.9765, 0.9542, 0.9080, 0.7711}
	c, err := curve.FromDiscounts(days, dfs, 252, curve.Linear)
	require.NoError(t, err)

	back := c.Discounts()
	for i := range dfs {
		assert.InDelta(t, dfs[i], back[i], 1e-9)
	}
	for _, r := range []float64{-0.005, 0, 0.0425, 0.13} {
		df := curve.RateToDiscount(r, 378, 252)
		assert.InDelta(t, r, curve.DiscountToRate(df, 378, 252), 1e-9)
	}
}

func TestFromZerosValidation(t *testing.T) {
	t.Parallel()

	_, err := curve.FromZeros(nil, nil, 252, curve.Linear)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
	_, err = curve.FromZeros([]float64{10, 5}, []float64{0.1, 0.1}, 252, curve.Linear)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
	_, err = curve.FromZeros([]float64{0, 5}, []float64{0.1, 0.1}, 252, curve.Linear)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
	_, err = curve.FromZeros([]float64{5}, []float64{math.NaN()}, 252, curve.Linear)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
	_, err = curve.FromDiscounts([]float64{5}, []float64{-0.1}, 252, curve.Linear)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestRateOutsidePillarsIsOutOfRange(t *testing.T) {
	t.Parallel()

	c, err := curve.FromZeros([]float64{10, 20}, []float64{0.10, 0.20}, 252, curve.Linear)
	require.NoError(t, err)

	_, err = c.RateAt(9)
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
	_, err = c.RateAt(20.5)
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
	_, err = c.DiscountAt(math.NaN(), curve.Linear)
	assert.ErrorIs(t, err, errs.ErrOutOfRange)

	r, err := c.RateAt(20)
	require.NoError(t, err)
	assert.InDelta(t, 0.20, r, 1e-15)
}

func TestInterpolationMethods(t *testing.T) {
	t.Parallel()

	two, err := curve.FromZeros([]float64{10, 20}, []float64{0.10, 0.20}, 252, curve.Linear)
	require.NoError(t, err)
	par, err := curve.FromZeros([]float64{1, 2, 3, 4}, []float64{1, 4, 9, 16}, 252, curve.Quadratic)
	require.NoError(t, err)
	lin, err := curve.FromZeros([]float64{1, 2, 3, 4}, []float64{0.01, 0.02, 0.03, 0.04}, 252, curve.Cubic)
	require.NoError(t, err)

	cases := []struct {
		name   string
		c      *curve.Curve
		method curve.Method
		x      float64
		want   float64
	}{
		{"linear midpoint", two, curve.Linear, 15, 0.15},
		{"nearest tie goes low", two, curve.Nearest, 15, 0.10},
		{"nearest", two, curve.Nearest, 16, 0.20},
		{"previous", two, curve.Previous, 19, 0.10},
		{"next", two, curve.Next, 11, 0.20},
		{"step on pillar", two, curve.Next, 10, 0.10},
		{"quadratic reproduces parabola", par, curve.Quadratic, 2.5, 6.25},
		{"quadratic near end", par, curve.Quadratic, 3.7, 13.69},
		{"cubic on a line", lin, curve.Cubic, 2.5, 0.025},
		{"cubic two pillars is linear", two, curve.Cubic, 12, 0.12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := tc.c.RateWith(tc.x, tc.method)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-12)
		})
	}
}

func TestFlatForwardInterpolatesLogDiscount(t *testing.T) {
	t.Parallel()

	c, err := curve.FromZeros([]float64{10, 20}, []float64{0.10, 0.20}, 252, curve.FlatForward)
	require.NoError(t, err)

	df10 := curve.RateToDiscount(0.10, 10, 252)
	df20 := curve.RateToDiscount(0.20, 20, 252)
	mid, err := c.DiscountAt(15, curve.FlatForward)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(df10*df20), mid, 1e-14)

	// Switching methods on the same curve uses a separate cached interpolator.
	lin, err := c.RateWith(15, curve.Linear)
	require.NoError(t, err)
	assert.InDelta(t, 0.15, lin, 1e-12)
	again, err := c.DiscountAt(15, curve.FlatForward)
	require.NoError(t, err)
	assert.Equal(t, mid, again)
}

func TestParseMethod(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]curve.Method{
		"linear":       curve.Linear,
		" Cubic ":      curve.Cubic,
		"flat_forward": curve.FlatForward,
		"flatforward":  curve.FlatForward,
		"previous":     curve.Previous,
	} {
		got, err := curve.ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := curve.ParseMethod("spline")
	assert.ErrorIs(t, err, errs.ErrPrecondition)
	assert.Equal(t, "flat_forward", curve.FlatForward.String())
}

func TestForwardRate(t *testing.T) {
	t.Parallel()

	f, err := curve.ForwardFromTimes(1, 2, 0.05, 0.06)
	require.NoError(t, err)
	assert.InDelta(t, 1.06*1.06/1.05-1, f, 1e-14)

	swapped, err := curve.ForwardFromTimes(2, 1, 0.06, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, f, swapped, 1e-15)

	_, err = curve.ForwardFromTimes(1, 1, 0.05, 0.06)
	assert.ErrorIs(t, err, errs.ErrPrecondition)

	dc, err := daycount.Parse("Actual/365 Fixed", "standard")
	require.NoError(t, err)
	byDate, err := curve.ForwardRate(d(2021, 1, 1), d(2022, 1, 1), d(2023, 1, 1), 0.05, 0.06, dc)
	require.NoError(t, err)
	assert.InDelta(t, f, byDate, 1e-14)
}

func TestPiecewiseFlatForwardDI1(t *testing.T) {
	t.Parallel()

	ts := []float64{21.0 / 252, 1, 2}
	rates := []float64{0.0442, 0.0469, 0.0532}

	got := curve.PiecewiseFlatForwardTimes(126.0/252, ts, rates)
	assert.GreaterOrEqual(t, got, 0.0442)
	assert.LessOrEqual(t, got, 0.0469)
	assert.InDelta(t, 0.0466542572369546, got, 1e-12)

	assert.Equal(t, 0.0442, curve.PiecewiseFlatForwardTimes(1.0/252, ts, rates))
	assert.Equal(t, 0.0532, curve.PiecewiseFlatForwardTimes(3, ts, rates))
	assert.Equal(t, 0.0469, curve.PiecewiseFlatForwardTimes(1, ts, rates))

	// Both flat-forward formulas describe the same curve between pillars.
	for _, x := range []float64{0.2, 0.5, 0.9, 1.3, 1.99} {
		assert.InDelta(t, curve.PiecewiseFlatForwardTimes(x, ts, rates), curve.FlatForwardOnCurve(x, ts, rates), 1e-13)
	}

	dc, err := daycount.Parse("bus/252", "anbima")
	require.NoError(t, err)
	ref := d(2020, 1, 2)
	pillars := []curve.Pillar{
		{Maturity: dc.Calendar().AddBusinessDays(ref, 504), Rate: 0.0532},
		{Maturity: dc.Calendar().AddBusinessDays(ref, 21), Rate: 0.0442},
		{Maturity: dc.Calendar().AddBusinessDays(ref, 252), Rate: 0.0469},
	}
	byDate, err := curve.PiecewiseFlatForward(ref, dc.Calendar().AddBusinessDays(ref, 126), pillars, dc)
	require.NoError(t, err)
	assert.InDelta(t, got, byDate, 1e-12)
}

func TestTenorConversion(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tenor string
		kind  curve.TenorKind
		want  int
	}{
		{"1D", curve.BusinessDays, 1},
		{"2W", curve.BusinessDays, 10},
		{"3M", curve.BusinessDays, 63},
		{"1Q", curve.CalendarDays, 90},
		{"10y", curve.CalendarDays, 3600},
		{"1Y", curve.BusinessDays, 252},
	}
	for _, tc := range cases {
		got, err := curve.TenorToDays(tc.tenor, tc.kind)
		require.NoError(t, err, tc.tenor)
		assert.Equal(t, tc.want, got, tc.tenor)
	}
	for _, bad := range []string{"", "M", "3Z", "xM", "-1Y"} {
		_, err := curve.TenorToDays(bad, curve.BusinessDays)
		assert.ErrorIs(t, err, errs.ErrPrecondition, bad)
	}

	dfs, err := curve.ConvertZeros([]float64{0.10}, []string{"1Y"}, curve.BusinessDays)
	require.NoError(t, err)
	assert.Equal(t, 0.909091, dfs[0])
	zs, err := curve.ConvertDiscounts(dfs, []string{"1Y"}, curve.BusinessDays)
	require.NoError(t, err)
	assert.Equal(t, 0.1, zs[0])
}

func TestNSSRate(t *testing.T) {
	t.Parallel()

	betas := [4]float64{0.10, -0.03, 0.02, 0.01}
	lambdas := [2]float64{2.2648, 0.3330}
	assert.InDelta(t, 0.09530382359173957, curve.NSSRate(betas, lambdas, 1), 1e-14)
	// Long end converges to β0.
	assert.InDelta(t, 0.10, curve.NSSRate(betas, lambdas, 1e6), 1e-5)
}

func TestFitNSSRepricesSyntheticBonds(t *testing.T) {
	t.Parallel()

	dc, err := daycount.Parse("Actual/365 Fixed", "standard")
	require.NoError(t, err)
	ref := d(2020, 1, 1)
	truth := &curve.NSS{
		Betas:   [4]float64{0.10, -0.03, 0.02, 0.01},
		Lambdas: [2]float64{2.2648, 0.3330},
		Ref:     ref,
		DC:      dc,
	}

	var quotes []curve.BondQuote
	for years := 1; years <= 10; years++ {
		flows := []curve.CashFlow{{Date: ref.AddDate(years, 0, 0), Amount: 1000}}
		if years%2 == 0 {
			flows = flows[:0]
			for k := 1; k <= years; k++ {
				amt := 100.0
				if k == years {
					amt += 1000
				}
				flows = append(flows, curve.CashFlow{Date: ref.AddDate(k, 0, 0), Amount: amt})
			}
		}
		p, err := truth.Price(flows)
		require.NoError(t, err)
		quotes = append(quotes, curve.BondQuote{Price: p, Flows: flows})
	}

	fit, err := curve.FitNSS(ref, dc, quotes, curve.NSSOptions{})
	require.NoError(t, err)
	assert.Equal(t, truth.Lambdas, fit.Lambdas)
	for _, q := range quotes {
		p, err := fit.Price(q.Flows)
		require.NoError(t, err)
		assert.InDelta(t, 0, (p-q.Price)/q.Price, 1e-4)
	}

	_, err = curve.FitNSS(ref, dc, nil, curve.NSSOptions{})
	assert.ErrorIs(t, err, errs.ErrPrecondition)
	_, err = curve.FitNSS(ref, dc, []curve.BondQuote{{Price: 0, Flows: quotes[0].Flows}}, curve.NSSOptions{})
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestBootstrapReprices(t *testing.T) {
	t.Parallel()

	dc, err := daycount.Parse("Actual/365 Fixed", "standard")
	require.NoError(t, err)
	ref := d(2021, 1, 1)
	ts := []float64{1, 2, 3}
	rates := []float64{0.05, 0.055, 0.06}

	price := func(flows []curve.CashFlow) float64 {
		pv := 0.0
		for _, f := range flows {
			x := float64(dc.Days(ref, f.Date)) / 365
			pv += f.Amount / math.Pow(1+curve.PiecewiseFlatForwardTimes(x, ts, rates), x)
		}
		return pv
	}
	zero1 := []curve.CashFlow{{Date: d(2022, 1, 1), Amount: 100}}
	zero2 := []curve.CashFlow{{Date: d(2023, 1, 1), Amount: 100}}
	coupon3 := []curve.CashFlow{
		{Date: d(2021, 7, 1), Amount: 2.5},
		{Date: d(2022, 1, 1), Amount: 2.5},
		{Date: d(2022, 7, 1), Amount: 2.5},
		{Date: d(2023, 1, 1), Amount: 2.5},
		{Date: d(2023, 7, 1), Amount: 2.5},
		{Date: d(2024, 1, 1), Amount: 102.5},
	}
	quotes := []curve.BondQuote{
		{Price: price(coupon3), Flows: coupon3},
		{Price: price(zero2), Flows: zero2},
		{Price: price(zero1), Flows: zero1},
	}

	c, err := curve.Bootstrap(ref, dc, quotes, 365)
	require.NoError(t, err)
	assert.Equal(t, curve.FlatForward, c.Method())
	got := c.Rates()
	require.Len(t, got, 3)
	for i := range rates {
		assert.InDelta(t, rates[i], got[i], 1e-9)
	}
	assert.InDelta(t, 365.0, c.Days()[0], 1e-9)

	_, err = curve.Bootstrap(ref, dc, []curve.BondQuote{quotes[1], quotes[1]}, 365)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}
