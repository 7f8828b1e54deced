package curve

import (
	"math"
	"sort"
	"time"

	"github.com/meenmo/quantlib/daycount"
	"github.com/meenmo/quantlib/errs"
)

// Pillar is a dated zero rate.
type Pillar struct {
	Maturity time.Time
	Rate     float64
}

// ForwardRate is the rate between m1 and m2 implied by zeros r1 and r2:
//
//	((1+r2)^τ2 / (1+r1)^τ1)^(1/(τ2-τ1)) - 1
//
// with τ the year fraction from tRef under dc.
func ForwardRate(tRef, m1, m2 time.Time, r1, r2 float64, dc daycount.DayCount) (float64, error) {
	t1, err := dc.Tf(tRef, m1)
	if err != nil {
		return math.NaN(), err
	}
	t2, err := dc.Tf(tRef, m2)
	if err != nil {
		return math.NaN(), err
	}
	return ForwardFromTimes(t1, t2, r1, r2)
}

// ForwardFromTimes is ForwardRate on year fractions.
func ForwardFromTimes(t1, t2, r1, r2 float64) (float64, error) {
	if t1 > t2 {
		t1, t2, r1, r2 = t2, t1, r2, r1
	}
	if t2 == t1 {
		return math.NaN(), errs.New(errs.Precondition, "curve.ForwardRate", t1, "forward needs two distinct maturities")
	}
	return math.Pow(math.Pow(1+r2, t2)/math.Pow(1+r1, t1), 1/(t2-t1)) - 1, nil
}

// PiecewiseFlatForward interpolates the pillars at m with a constant forward
// between neighbours, i.e. log(1+r)·τ is linear in τ:
//
//	r(x) = exp((τ1·y1 + (x-τ1)/(τ2-τ1)·(τ2·y2 - τ1·y1)) / x) - 1,  y = log(1+r)
//
// Maturities before the first or after the last pillar take the nearest
// pillar's rate. τ is the year fraction from tRef under dc.
func PiecewiseFlatForward(tRef, m time.Time, pillars []Pillar, dc daycount.DayCount) (float64, error) {
	if len(pillars) == 0 {
		return math.NaN(), errs.New(errs.Precondition, "curve.PiecewiseFlatForward", nil, "no pillars")
	}
	ps := append([]Pillar(nil), pillars...)
	sort.Slice(ps, func(i, j int) bool { return ps[i].Maturity.Before(ps[j].Maturity) })

	ts := make([]float64, len(ps))
	ys := make([]float64, len(ps))
	for i, p := range ps {
		t, err := dc.Tf(tRef, p.Maturity)
		if err != nil {
			return math.NaN(), err
		}
		ts[i], ys[i] = t, p.Rate
	}
	x, err := dc.Tf(tRef, m)
	if err != nil {
		return math.NaN(), err
	}
	return PiecewiseFlatForwardTimes(x, ts, ys), nil
}

// PiecewiseFlatForwardTimes is PiecewiseFlatForward on sorted year fractions.
func PiecewiseFlatForwardTimes(x float64, ts, rates []float64) float64 {
	n := len(ts)
	if x <= ts[0] {
		return rates[0]
	}
	if x >= ts[n-1] {
		return rates[n-1]
	}
	i := sort.SearchFloat64s(ts, x)
	if ts[i] == x {
		return rates[i]
	}
	t1, t2 := ts[i-1], ts[i]
	y1, y2 := math.Log1p(rates[i-1]), math.Log1p(rates[i])
	return math.Exp((t1*y1+(x-t1)/(t2-t1)*(t2*y2-t1*y1))/x) - 1
}

// FlatForwardInterpolation is the exponential flat-forward rate at t between (t1, y1) and (t2, y2):
//
//	(1+y1)^((t1/t)(t2-t)/(t2-t1)) · (1+y2)^((t2/t)(t-t1)/(t2-t1)) - 1
func FlatForwardInterpolation(t, t1, t2, y1, y2 float64) float64 {
	return math.Pow(1+y1, (t1/t)*(t2-t)/(t2-t1))*math.Pow(1+y2, (t2/t)*(t-t1)/(t2-t1)) - 1
}

// FlatForwardOnCurve applies FlatForwardInterpolation on a zero curve given as
// sorted year fractions, extrapolating flat beyond the ends.
func FlatForwardOnCurve(t float64, ts, rates []float64) float64 {
	n := len(ts)
	if t <= ts[0] {
		return rates[0]
	}
	if t >= ts[n-1] {
		return rates[n-1]
	}
	i := sort.SearchFloat64s(ts, t)
	if ts[i] == t {
		return rates[i]
	}
	return FlatForwardInterpolation(t, ts[i-1], ts[i], rates[i-1], rates[i])
}
