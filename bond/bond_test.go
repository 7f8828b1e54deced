package bond_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/quantlib/bond"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/logger"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestLTNPriceAndRisk(t *testing.T) {
	t.Parallel()

	ltn, err := bond.NewLTN(bond.Input{
		Expiry: d(2021, 7, 1),
		Ref:    d(2019, 5, 30),
		Rate:   bond.Float(0.07),
	})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, ltn.Principal)
	assert.InDelta(t, 525.0/252, ltn.Tau, 1e-13)
	assert.InDelta(t, 868.5279449991621, ltn.Price, 1e-9)
	assert.Equal(t, ltn.Tau, ltn.Risk.Macaulay)
	assert.InDelta(t, 1.9470404984423644, ltn.Risk.Modified, 1e-12)
	assert.InDelta(t, 5.610630719810546, ltn.Risk.Convexity, 1e-12)
	assert.InDelta(t, 16.910590829422908, ltn.Risk.DV01, 1e-9)
	assert.NoError(t, ltn.Warning)

	require.Len(t, ltn.Flows, 2)
	assert.Equal(t, -ltn.Price, ltn.Flows[0].Amount())
	assert.Equal(t, 1000.0, ltn.Flows[1].Amount())
	assert.Len(t, ltn.Cashflows(), 1)
}

func TestLTNRateRoundTrip(t *testing.T) {
	t.Parallel()

	for _, r := range []float64{0.0001, 0.02, 0.07, 0.1425, 0.35} {
		priced, err := bond.NewLTN(bond.Input{Expiry: d(2025, 1, 1), Ref: d(2019, 5, 30), Rate: bond.Float(r)})
		require.NoError(t, err)
		back, err := bond.NewLTN(bond.Input{Expiry: d(2025, 1, 1), Ref: d(2019, 5, 30), Price: bond.Float(priced.Price)})
		require.NoError(t, err)
		assert.InDelta(t, r, back.Rate, 1e-6)
	}
}

func TestLTNInconsistentInputsWarn(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ltn, err := bond.NewLTN(bond.Input{
		Expiry: d(2021, 7, 1),
		Ref:    d(2019, 5, 30),
		Rate:   bond.Float(0.07),
		Price:  bond.Float(870),
		Logger: logger.New(&buf, "warn", "text"),
	})
	require.NoError(t, err)
	assert.Equal(t, 870.0, ltn.Price)
	assert.Equal(t, 0.07, ltn.Rate)
	assert.ErrorIs(t, ltn.Warning, errs.ErrInconsistent)
	assert.Contains(t, buf.String(), "price and rate are inconsistent")

	buf.Reset()
	ok, err := bond.NewLTN(bond.Input{
		Expiry: d(2021, 7, 1),
		Ref:    d(2019, 5, 30),
		Rate:   bond.Float(0.07),
		Price:  bond.Float(868.5279449991621),
		Logger: logger.New(&buf, "warn", "text"),
	})
	require.NoError(t, err)
	assert.NoError(t, ok.Warning)
	assert.Empty(t, buf.String())
}

func TestLTNPreconditions(t *testing.T) {
	t.Parallel()

	_, err := bond.NewLTN(bond.Input{Expiry: d(2021, 7, 1), Ref: d(2019, 5, 30)})
	assert.ErrorIs(t, err, errs.ErrPrecondition)
	_, err = bond.NewLTN(bond.Input{Expiry: d(2019, 5, 30), Ref: d(2019, 5, 30), Rate: bond.Float(0.05)})
	assert.ErrorIs(t, err, errs.ErrPrecondition)
	_, err = bond.NewLTN(bond.Input{Expiry: d(2021, 7, 1), Ref: d(2019, 5, 30), Price: bond.Float(-1)})
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestNTNFScheduleAndPrice(t *testing.T) {
	t.Parallel()

	ntnf, err := bond.NewNTNF(bond.Input{
		Expiry: d(2027, 1, 1),
		Ref:    d(2019, 5, 30),
		Coupon: 0.10,
		Rate:   bond.Float(0.08775),
	})
	require.NoError(t, err)
	assert.InDelta(t, 48.80885, ntnf.Coupon, 1e-5)

	require.Len(t, ntnf.Flows, 16)
	assert.Equal(t, d(2019, 7, 1), ntnf.Flows[0].Date)
	assert.Equal(t, 0.0, ntnf.Flows[0].Principal)
	// 2027-01-01 is a holiday; the last payment rolls to the next business day.
	last := ntnf.Flows[len(ntnf.Flows)-1]
	assert.Equal(t, d(2027, 1, 4), last.Date)
	assert.Equal(t, 1000.0, last.Principal)

	assert.InDelta(t, 1105.5985369920047, ntnf.Price, 1e-6)
	assert.InDelta(t, 5.389342422883269, ntnf.Risk.Macaulay, 1e-9)
	assert.InDelta(t, 4.954578186976115, ntnf.Risk.Modified, 1e-9)
	assert.InDelta(t, 35.056195492485564, ntnf.Risk.Convexity, 1e-8)
	assert.InDelta(t, ntnf.Risk.Modified*ntnf.Price/100, ntnf.Risk.DV01, 1e-12)

	back, err := bond.NewNTNF(bond.Input{Expiry: d(2027, 1, 1), Ref: d(2019, 5, 30), Price: bond.Float(ntnf.Price)})
	require.NoError(t, err)
	assert.InDelta(t, 0.08775, back.Rate, 1e-9)
	assert.InDelta(t, ntnf.Price, back.PriceAt(back.Rate), 1e-8)
}

func TestNTNFRateOutsideBracketFails(t *testing.T) {
	t.Parallel()

	// Above the undiscounted sum of flows only a negative rate reprices.
	_, err := bond.NewNTNF(bond.Input{Expiry: d(2027, 1, 1), Ref: d(2019, 5, 30), Price: bond.Float(3000)})
	assert.ErrorIs(t, err, errs.ErrOptimisationFailed)
}

func TestCouponDates(t *testing.T) {
	t.Parallel()

	got := bond.CouponDates(d(2019, 5, 30), d(2021, 1, 1))
	assert.Equal(t, []time.Time{d(2019, 7, 1), d(2020, 1, 1), d(2020, 7, 1), d(2021, 1, 1)}, got)
	// A coupon falling on the reference date is not owed to the buyer.
	got = bond.CouponDates(d(2020, 7, 1), d(2021, 1, 1))
	assert.Equal(t, []time.Time{d(2021, 1, 1)}, got)
	assert.Empty(t, bond.CouponDates(d(2021, 1, 1), d(2021, 1, 1)))
}

func TestNTNBTwoOfThree(t *testing.T) {
	t.Parallel()

	base := bond.Input{Expiry: d(2035, 5, 15), Ref: d(2019, 5, 30)}

	in := base
	in.Rate, in.VNA = bond.Float(0.04), bond.Float(3000)
	ntnb, err := bond.NewNTNB(in)
	require.NoError(t, err)
	assert.Equal(t, 1.234105, ntnb.Quotation)
	assert.InDelta(t, 3702.315, ntnb.Price, 1e-9)
	assert.InDelta(t, 10.635226712381515, ntnb.Risk.Modified, 1e-9)
	require.Len(t, ntnb.Flows, 32)
	assert.Equal(t, d(2019, 11, 18), ntnb.Flows[0].Date)
	assert.InDelta(t, ntnb.CouponAmount(), ntnb.Flows[0].Coupon, 1e-12)
	assert.InDelta(t, 3000.0, ntnb.Flows[31].Principal, 1e-9)

	in = base
	in.Price, in.VNA = bond.Float(ntnb.Price), bond.Float(3000)
	rate, err := bond.NewNTNB(in)
	require.NoError(t, err)
	assert.InDelta(t, 0.04, rate.Rate, 1e-6)

	in = base
	in.Rate, in.Price = bond.Float(0.04), bond.Float(ntnb.Price)
	vna, err := bond.NewNTNB(in)
	require.NoError(t, err)
	assert.InDelta(t, 3000, vna.VNA, 1e-9)

	in = base
	in.Rate, in.Price, in.VNA = bond.Float(0.04), bond.Float(ntnb.Price+1), bond.Float(3000)
	in.Logger = logger.New(&bytes.Buffer{}, "error", "text")
	all, err := bond.NewNTNB(in)
	require.NoError(t, err)
	assert.ErrorIs(t, all.Warning, errs.ErrInconsistent)

	in = base
	in.Rate = bond.Float(0.04)
	_, err = bond.NewNTNB(in)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestProjectVNA(t *testing.T) {
	t.Parallel()

	assert.Equal(t, d(2019, 5, 15), bond.LastAnniversary(d(2019, 5, 30)))
	assert.Equal(t, d(2019, 5, 15), bond.LastAnniversary(d(2019, 5, 15)))
	assert.Equal(t, d(2018, 12, 15), bond.LastAnniversary(d(2019, 1, 14)))

	vna, err := bond.ProjectVNA(d(2019, 5, 30), 5000, 0.005, nil)
	require.NoError(t, err)
	assert.InDelta(t, 3104.0993953409848, vna, 1e-9)

	onAnniversary, err := bond.ProjectVNA(d(2019, 5, 15), bond.VNABaseIndex, 0.01, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1000, onAnniversary, 1e-12)

	_, err = bond.ProjectVNA(d(2019, 5, 30), 0, 0.005, nil)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestQuoteFeedsCurveFitting(t *testing.T) {
	t.Parallel()

	ntnf, err := bond.NewNTNF(bond.Input{Expiry: d(2027, 1, 1), Ref: d(2019, 5, 30), Rate: bond.Float(0.08775)})
	require.NoError(t, err)
	q := bond.Quote(ntnf)
	assert.Equal(t, ntnf.Price, q.Price)
	require.Len(t, q.Flows, 16)
	assert.InDelta(t, 1048.80885, q.Flows[15].Amount, 1e-5)
}
