package curve

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/meenmo/quantlib/daycount"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/utils"
)

// SwapOptions are the fixed leg conventions of the par swaps being stripped.
type SwapOptions struct {
	// FixedDC accrues fixed coupons and rolls dates on its calendar.
	FixedDC daycount.DayCount
	// FreqMonths is the fixed coupon period; 12 when zero.
	FreqMonths int
	// PayLag is the payment delay in business days after each accrual end.
	PayLag int
	// Base is the curve's days per year; 365 when zero. Curve days are calendar days.
	Base float64
}

type swapPillar struct {
	months   int
	rate     float64
	maturity time.Time
	t        float64
	df       float64
}

type fixedCoupon struct {
	pay     time.Time
	accrual float64
}

// BootstrapSwaps strips par swap rates (tenor -> percent, e.g. "2Y": 3.1)
// into a flat-forward discount curve. Each pillar solves
//
//	Σ r·α_i·D(pay_i) + D(T) = 1
//
// by Newton on D(T), with log-linear discounts between pillars.
func BootstrapSwaps(settlement time.Time, quotes map[string]float64, opts SwapOptions) (*Curve, error) {
	const op = "curve.BootstrapSwaps"
	if len(quotes) == 0 {
		return nil, errs.New(errs.Precondition, op, nil, "no swap quotes")
	}
	if opts.FreqMonths <= 0 {
		opts.FreqMonths = 12
	}
	if opts.Base <= 0 {
		opts.Base = 365
	}
	settlement = utils.Truncate(settlement)

	pillars := make([]swapPillar, 0, len(quotes))
	for tenor, pct := range quotes {
		m, err := tenorMonths(tenor)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(pct) || math.IsInf(pct, 0) {
			return nil, errs.New(errs.Precondition, op, tenor, "quote for %s is not finite", tenor)
		}
		mat := opts.FixedDC.ModifiedFollowing(utils.AddMonth(settlement, m))
		pillars = append(pillars, swapPillar{
			months:   m,
			rate:     pct / 100,
			maturity: mat,
			t:        float64(utils.Days(settlement, mat)) / opts.Base,
		})
	}
	sort.Slice(pillars, func(i, j int) bool { return pillars[i].months < pillars[j].months })
	for i := 1; i < len(pillars); i++ {
		if !pillars[i].maturity.After(pillars[i-1].maturity) {
			return nil, errs.New(errs.Precondition, op, pillars[i].months, "tenors map to the same maturity %s",
				pillars[i].maturity.Format(utils.DateLayout))
		}
	}

	for i := range pillars {
		coupons, err := fixedCoupons(settlement, pillars[i].months, opts)
		if err != nil {
			return nil, err
		}
		df, err := solvePillar(settlement, pillars[:i+1], coupons, opts.Base)
		if err != nil {
			return nil, err
		}
		pillars[i].df = df
	}

	days := make([]float64, len(pillars))
	dfs := make([]float64, len(pillars))
	for i, p := range pillars {
		days[i] = p.t * opts.Base
		dfs[i] = p.df
	}
	return FromDiscounts(days, dfs, opts.Base, FlatForward)
}

// fixedCoupons rolls the schedule backward from the unadjusted maturity so
// coupon dates stay aligned to it.
func fixedCoupons(settlement time.Time, months int, opts SwapOptions) ([]fixedCoupon, error) {
	dc := opts.FixedDC
	var ends []time.Time
	for k := months; k > 0; k -= opts.FreqMonths {
		ends = append([]time.Time{utils.AddMonth(settlement, k)}, ends...)
	}
	out := make([]fixedCoupon, len(ends))
	start := settlement
	for i, end := range ends {
		a, b := dc.ModifiedFollowing(start), dc.ModifiedFollowing(end)
		alpha, err := dc.Tf(a, b)
		if err != nil {
			return nil, err
		}
		out[i] = fixedCoupon{pay: dc.Workday(b, opts.PayLag), accrual: alpha}
		start = end
	}
	return out, nil
}

// solvePillar finds the discount at the last pillar. Earlier pillars are solved.
func solvePillar(settlement time.Time, pillars []swapPillar, coupons []fixedCoupon, base float64) (float64, error) {
	const (
		tolerance = 1e-14
		maxIter   = 50
	)
	last := pillars[len(pillars)-1]
	prevT, prevDF := 0.0, 1.0
	if len(pillars) > 1 {
		prev := pillars[len(pillars)-2]
		prevT, prevDF = prev.t, prev.df
	}

	x := prevDF
	for iter := 0; iter < maxIter; iter++ {
		f, fp := x-1, 1.0
		for _, c := range coupons {
			t := float64(utils.Days(settlement, c.pay)) / base
			if t <= prevT {
				f += last.rate * c.accrual * knownDiscount(t, pillars[:len(pillars)-1])
				continue
			}
			w := (t - prevT) / (last.t - prevT)
			d := prevDF * math.Pow(x/prevDF, w)
			f += last.rate * c.accrual * d
			fp += last.rate * c.accrual * d * w / x
		}
		if math.Abs(f) < tolerance {
			return x, nil
		}
		next := x - f/fp
		if !(next > 0) {
			next = x / 2
		}
		x = next
	}
	return 0, errs.New(errs.OptimisationFailed, "curve.BootstrapSwaps", last.months,
		"no discount at %s after %d iterations", last.maturity.Format(utils.DateLayout), maxIter)
}

// knownDiscount interpolates log-linearly in time over solved pillars from
// D(0) = 1. Beyond the last pillar the last forward is extended.
func knownDiscount(t float64, pillars []swapPillar) float64 {
	t0, d0 := 0.0, 1.0
	for i, p := range pillars {
		if t <= p.t || i == len(pillars)-1 {
			if p.t == t0 {
				return p.df
			}
			return d0 * math.Pow(p.df/d0, (t-t0)/(p.t-t0))
		}
		t0, d0 = p.t, p.df
	}
	return d0
}

// tenorMonths parses "6M", "2Y" or "1Y6M" style tenors into months.
func tenorMonths(tenor string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(tenor))
	total, num := 0, ""
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'M' || r == 'Y':
			n, err := strconv.Atoi(num)
			if err != nil {
				return 0, errs.New(errs.Precondition, "curve.BootstrapSwaps", tenor, "bad tenor %q", tenor)
			}
			if r == 'Y' {
				n *= 12
			}
			total, num = total+n, ""
		default:
			return 0, errs.New(errs.Precondition, "curve.BootstrapSwaps", tenor, "bad tenor %q", tenor)
		}
	}
	if num != "" || total <= 0 {
		return 0, errs.New(errs.Precondition, "curve.BootstrapSwaps", tenor, "bad tenor %q", tenor)
	}
	return total, nil
}
