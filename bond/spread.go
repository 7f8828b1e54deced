package bond

import (
	"fmt"
	"math"

	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/optim"
)

type SpreadResult struct {
	SpreadBP float64
	// PVAtCurve is the bond discounted on the DI1 curve with no spread.
	PVAtCurve  float64
	Iterations int
}

// SpreadOverDI1 computes the parallel spread z (in bp) over the interpolated
// DI1 curve that reprices the bond:
//
//	P = Σ CF_i / (1 + y(du_i) + z)^(du_i/252)
//
// Flows on or before the curve date are ignored.
func SpreadOverDI1(b Bond, c *DI1Curve) (SpreadResult, error) {
	if c == nil {
		return SpreadResult{}, fmt.Errorf("SpreadOverDI1: curve is required")
	}
	if !b.RefDate().Equal(c.Date) {
		return SpreadResult{}, fmt.Errorf("SpreadOverDI1: bond date %s differs from curve date %s",
			b.RefDate().Format("2006-01-02"), c.Date.Format("2006-01-02"))
	}

	dc := DayCount()
	var taus, ys, amts []float64
	for _, cf := range b.Cashflows() {
		du := dc.Days(c.Date, cf.Date)
		if du <= 0 {
			continue
		}
		taus = append(taus, float64(du)/252)
		ys = append(ys, c.InterpolatedYield(du))
		amts = append(amts, cf.Amount())
	}
	if len(taus) == 0 {
		return SpreadResult{}, fmt.Errorf("SpreadOverDI1: no cash flows after %s", c.Date.Format("2006-01-02"))
	}

	pvAt := func(z float64) float64 {
		pv := 0.0
		for i, t := range taus {
			pv += amts[i] / math.Pow(1+ys[i]+z, t)
		}
		return pv
	}

	bc := config.GetConfig().Bond
	price := b.PriceValue()
	z, iters, err := optim.Brent(func(z float64) float64 { return pvAt(z) - price }, -0.5, 0.5, bc.BrentTolerance, bc.BrentMaxIter)
	if err != nil {
		return SpreadResult{}, fmt.Errorf("SpreadOverDI1: %w", err)
	}
	return SpreadResult{SpreadBP: z * 1e4, PVAtCurve: pvAt(0), Iterations: iters}, nil
}
