package curve

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/daycount"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/optim"
)

// Bootstrap builds a flat-forward zero curve that reprices every quote.
// Quotes are taken in order of their last flow; a single-flow bond fixes its
// pillar in closed form, a coupon bond adds one pillar at its maturity solved
// with Brent on [-0.99, 10]. Days are counted with dc and years are days/base.
// Flows before the first pillar are discounted at the first pillar's rate.
func Bootstrap(ref time.Time, dc daycount.DayCount, quotes []BondQuote, base float64) (*Curve, error) {
	if len(quotes) == 0 {
		return nil, errs.New(errs.Precondition, "curve.Bootstrap", nil, "no bonds to bootstrap")
	}
	if base <= 0 {
		return nil, errs.New(errs.Precondition, "curve.Bootstrap", base, "base must be positive")
	}

	type leg struct {
		t      float64
		amount float64
	}
	type bond struct {
		price float64
		legs  []leg
	}
	bonds := make([]bond, 0, len(quotes))
	for i, q := range quotes {
		if q.Price <= 0 {
			return nil, errs.New(errs.Precondition, "curve.Bootstrap", q.Price, "bond %d needs a positive price", i)
		}
		b := bond{price: q.Price}
		for _, f := range q.Flows {
			n := dc.Days(ref, f.Date)
			if n <= 0 {
				continue
			}
			b.legs = append(b.legs, leg{t: float64(n) / base, amount: f.Amount})
		}
		if len(b.legs) == 0 {
			return nil, errs.New(errs.Precondition, "curve.Bootstrap", i, "bond %d has no flows after the reference date", i)
		}
		sort.Slice(b.legs, func(x, y int) bool { return b.legs[x].t < b.legs[y].t })
		bonds = append(bonds, b)
	}
	sort.SliceStable(bonds, func(i, j int) bool {
		return bonds[i].legs[len(bonds[i].legs)-1].t < bonds[j].legs[len(bonds[j].legs)-1].t
	})

	bc := config.GetConfig().Bond
	var ts, rates []float64
	pv := func(b bond, ts, rates []float64) float64 {
		total := 0.0
		for _, l := range b.legs {
			r := PiecewiseFlatForwardTimes(l.t, ts, rates)
			total += l.amount / math.Pow(1+r, l.t)
		}
		return total
	}

	for i, b := range bonds {
		mat := b.legs[len(b.legs)-1]
		if len(ts) > 0 && mat.t <= ts[len(ts)-1] {
			return nil, errs.New(errs.Precondition, "curve.Bootstrap", i, "two bonds mature at %g years", mat.t)
		}
		if len(b.legs) == 1 {
			ts = append(ts, mat.t)
			rates = append(rates, math.Pow(mat.amount/b.price, 1/mat.t)-1)
			continue
		}
		trialT := append(append([]float64(nil), ts...), mat.t)
		trialR := append(append([]float64(nil), rates...), 0)
		last := len(trialR) - 1
		root, _, err := optim.Brent(func(r float64) float64 {
			trialR[last] = r
			return pv(b, trialT, trialR) - b.price
		}, -0.99, 10, bc.BrentTolerance, bc.BrentMaxIter)
		if err != nil {
			return nil, fmt.Errorf("Bootstrap: pillar at %g years: %w", mat.t, err)
		}
		ts = append(ts, mat.t)
		rates = append(rates, root)
	}

	days := make([]float64, len(ts))
	for i, t := range ts {
		days[i] = t * base
	}
	return FromZeros(days, rates, base, FlatForward)
}
