package bond

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/daycount"
	"github.com/meenmo/quantlib/optim"
	"github.com/meenmo/quantlib/utils"
)

// tauDecimals is the precision year fractions are truncated to before discounting.
const tauDecimals = 14

// yearFraction is BUS/252 from ref to d, truncated to tauDecimals.
func yearFraction(dc daycount.DayCount, ref, d time.Time) float64 {
	return utils.TruncateTo(float64(dc.Days(ref, d))/252, tauDecimals)
}

// ---------------------------------------------------------------------------
// Discounting
// ---------------------------------------------------------------------------

// discounted holds a schedule with year fractions resolved once.
type discounted struct {
	taus    []float64
	amounts []float64
}

func newDiscounted(dc daycount.DayCount, ref time.Time, cfs []Cashflow) discounted {
	d := discounted{taus: make([]float64, len(cfs)), amounts: make([]float64, len(cfs))}
	for i, cf := range cfs {
		d.taus[i] = yearFraction(dc, ref, cf.Date)
		d.amounts[i] = cf.Amount()
	}
	return d
}

// pv returns Σ CF_i / (1+y)^τ_i.
func (d discounted) pv(y float64) float64 {
	var price float64
	for i, t := range d.taus {
		price += d.amounts[i] / math.Pow(1+y, t)
	}
	return price
}

// risk computes the sensitivities at yield y:
//
//	macaulay  = Σ τ_i·pv_i / P
//	modified  = macaulay / (1+y)
//	convexity = Σ τ_i(1+τ_i)·pv_i / P / (1+y)²
//	dv01      = modified · P / 100
func (d discounted) risk(y float64) Risk {
	var price, mac, conv float64
	for i, t := range d.taus {
		pv := d.amounts[i] / math.Pow(1+y, t)
		price += pv
		mac += t * pv
		conv += t * (1 + t) * pv
	}
	if price == 0 {
		return Risk{}
	}
	mac /= price
	mod := mac / (1 + y)
	return Risk{
		Macaulay:  mac,
		Modified:  mod,
		Convexity: conv / price / ((1 + y) * (1 + y)),
		DV01:      mod * price / 100,
	}
}

// ---------------------------------------------------------------------------
// Brent solver
// ---------------------------------------------------------------------------

// solveRate finds y in [lo, hi] with price(y) == target.
func solveRate(op string, price func(float64) float64, target, lo, hi float64) (float64, error) {
	bc := config.GetConfig().Bond
	y, _, err := optim.Brent(func(y float64) float64 { return price(y) - target }, lo, hi, bc.BrentTolerance, bc.BrentMaxIter)
	if err != nil {
		return math.NaN(), fmt.Errorf("%s: rate from price %g: %w", op, target, err)
	}
	return y, nil
}
