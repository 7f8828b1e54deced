package bond

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/meenmo/quantlib/curve"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/utils"
)

// DI1Face is the notional of one DI1 contract at maturity.
const DI1Face = 100000

// DI1Maturity maps a contract code such as "F27" or "DI1F27" to its maturity:
// the first day of the month rolled following on ANBIMA. Two-digit years of
// 92 and above are 19xx.
func DI1Maturity(code string) (time.Time, error) {
	c := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(code)), "DI1")
	if len(c) != 3 {
		return time.Time{}, errs.New(errs.Precondition, "bond.DI1Maturity", code, "bad DI1 code %q", code)
	}
	month, ok := utils.FuturesMonth(c[0])
	if !ok {
		return time.Time{}, errs.New(errs.Precondition, "bond.DI1Maturity", code, "unknown month letter in %q", code)
	}
	yy, err := strconv.Atoi(c[1:])
	if err != nil {
		return time.Time{}, errs.New(errs.Precondition, "bond.DI1Maturity", code, "bad year in %q", code)
	}
	year := 2000 + yy
	if yy >= 92 {
		year = 1900 + yy
	}
	return DayCount().Following(utils.Date(year, month, 1)), nil
}

// DI1 holds the analytics of one contract on a trade date.
type DI1 struct {
	Code     string
	Maturity time.Time
	Date     time.Time
	// DU is business days from Date to Maturity.
	DU int
	// Yield is the last traded rate as a decimal.
	Yield            float64
	TheoreticalPrice float64
	// DV01 is dP/dy = -100000·τ/(1+y)^(τ+1).
	DV01 float64
	// Duration is DV01/price, i.e. -τ/(1+y).
	Duration  float64
	Convexity float64
}

// NewDI1 computes the analytics from a last price quoted in percent (e.g. 4.42).
func NewDI1(code string, lastPrice float64, t time.Time) (*DI1, error) {
	mat, err := DI1Maturity(code)
	if err != nil {
		return nil, err
	}
	du := DayCount().Days(t, mat)
	y := lastPrice / 100
	tau := float64(du) / 252
	price := DI1Face / math.Pow(1+y, tau)
	dPdy := -DI1Face * tau / math.Pow(1+y, tau+1)
	d2Pdy2 := DI1Face * tau * (tau + 1) / math.Pow(1+y, tau+2)
	return &DI1{
		Code:             code,
		Maturity:         mat,
		Date:             t,
		DU:               du,
		Yield:            y,
		TheoreticalPrice: price,
		DV01:             dPdy,
		Duration:         dPdy / price,
		Convexity:        d2Pdy2 / price,
	}, nil
}

// DI1Curve is the DI1 term structure on one date.
type DI1Curve struct {
	Date      time.Time
	Contracts []*DI1 // sorted by maturity, positive quotes only

	taus   []float64
	yields []float64
}

// NewDI1Curve builds the curve from code -> last price (percent). Non-positive
// quotes are dropped.
func NewDI1Curve(t time.Time, quotes map[string]float64) (*DI1Curve, error) {
	c := &DI1Curve{Date: t}
	for code, px := range quotes {
		if !(px > 0) {
			continue
		}
		di, err := NewDI1(code, px, t)
		if err != nil {
			return nil, err
		}
		if di.DU <= 0 {
			continue
		}
		c.Contracts = append(c.Contracts, di)
	}
	if len(c.Contracts) == 0 {
		return nil, errs.New(errs.Precondition, "bond.NewDI1Curve", t, "no live DI1 quotes on %s", t.Format(time.DateOnly))
	}
	sort.Slice(c.Contracts, func(i, j int) bool { return c.Contracts[i].DU < c.Contracts[j].DU })
	for _, di := range c.Contracts {
		c.taus = append(c.taus, float64(di.DU)/252)
		c.yields = append(c.yields, di.Yield)
	}
	return c, nil
}

// FromPillars builds a curve straight from (business days, yield) pillars.
func FromPillars(t time.Time, days []int, yields []float64) (*DI1Curve, error) {
	if len(days) == 0 || len(days) != len(yields) {
		return nil, errs.New(errs.Precondition, "bond.FromPillars", len(days), "need matching non-empty days and yields")
	}
	idx := make([]int, len(days))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return days[idx[a]] < days[idx[b]] })
	c := &DI1Curve{Date: t}
	for _, i := range idx {
		if days[i] <= 0 || (len(c.taus) > 0 && float64(days[i])/252 == c.taus[len(c.taus)-1]) {
			return nil, errs.New(errs.Precondition, "bond.FromPillars", days[i], "pillar days must be positive and distinct")
		}
		c.taus = append(c.taus, float64(days[i])/252)
		c.yields = append(c.yields, yields[i])
	}
	return c, nil
}

// InterpolatedYield is the piecewise flat forward yield du business days out.
func (c *DI1Curve) InterpolatedYield(du int) float64 {
	return curve.PiecewiseFlatForwardTimes(float64(du)/252, c.taus, c.yields)
}

// YieldAt is InterpolatedYield at a calendar date.
func (c *DI1Curve) YieldAt(d time.Time) float64 {
	return c.InterpolatedYield(DayCount().Days(c.Date, d))
}

// Discount is 1/(1+y)^(du/252) on the interpolated yield.
func (c *DI1Curve) Discount(d time.Time) float64 {
	du := DayCount().Days(c.Date, d)
	return 1 / math.Pow(1+c.InterpolatedYield(du), float64(du)/252)
}

// Curve exports the pillars as a flat-forward zero curve on a 252 base.
func (c *DI1Curve) Curve() (*curve.Curve, error) {
	days := make([]float64, len(c.taus))
	for i, t := range c.taus {
		days[i] = math.Round(t * 252)
	}
	return curve.FromZeros(days, c.yields, 252, curve.FlatForward)
}
