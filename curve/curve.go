package curve

import (
	"fmt"
	"math"
	"strings"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/utils"
)

// Method selects the interpolator used by a curve query.
type Method int

const (
	Linear Method = iota
	Cubic
	Quadratic
	Nearest
	Previous
	Next
	FlatForward
)

var methodNames = map[Method]string{
	Linear:      "linear",
	Cubic:       "cubic",
	Quadratic:   "quadratic",
	Nearest:     "nearest",
	Previous:    "previous",
	Next:        "next",
	FlatForward: "flat_forward",
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod accepts the names above; "flatforward" is also accepted.
func ParseMethod(s string) (Method, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	if k == "flatforward" || k == "flat-forward" {
		return FlatForward, nil
	}
	for m, name := range methodNames {
		if name == k {
			return m, nil
		}
	}
	return 0, errs.New(errs.Precondition, "curve.ParseMethod", s, "unknown interpolation method %q", s)
}

// Curve is a zero curve over days to maturity. Rates are annual compounding
// on a year of Base days (252 for business-day curves, 360 for calendar).
type Curve struct {
	days   []float64
	rates  []float64
	base   float64
	method Method

	mu    sync.Mutex
	cache *gocache.Cache
}

// FromZeros builds a curve from zero rates. days must be strictly positive and
// strictly increasing, rates finite.
func FromZeros(days, rates []float64, base float64, method Method) (*Curve, error) {
	if len(days) == 0 || len(days) != len(rates) {
		return nil, errs.New(errs.Precondition, "curve.FromZeros", len(days), "need matching non-empty days and rates, got %d and %d", len(days), len(rates))
	}
	if base <= 0 {
		return nil, errs.New(errs.Precondition, "curve.FromZeros", base, "base must be positive")
	}
	for i := range days {
		if days[i] <= 0 || (i > 0 && days[i] <= days[i-1]) {
			return nil, errs.New(errs.Precondition, "curve.FromZeros", days[i], "days must be positive and strictly increasing")
		}
		if math.IsNaN(rates[i]) || math.IsInf(rates[i], 0) {
			return nil, errs.New(errs.Precondition, "curve.FromZeros", rates[i], "rate at %g days is not finite", days[i])
		}
	}
	c := &Curve{
		days:   append([]float64(nil), days...),
		rates:  append([]float64(nil), rates...),
		base:   base,
		method: method,
		cache:  gocache.New(gocache.NoExpiration, 0),
	}
	return c, nil
}

// FromDiscounts builds a curve from discount factors in (0, 1].
func FromDiscounts(days, dfs []float64, base float64, method Method) (*Curve, error) {
	if len(days) != len(dfs) {
		return nil, errs.New(errs.Precondition, "curve.FromDiscounts", len(dfs), "need matching days and discounts")
	}
	rates := make([]float64, len(dfs))
	for i, df := range dfs {
		if df <= 0 {
			return nil, errs.New(errs.Precondition, "curve.FromDiscounts", df, "discount must be positive")
		}
		if days[i] <= 0 {
			return nil, errs.New(errs.Precondition, "curve.FromDiscounts", days[i], "days must be positive")
		}
		rates[i] = DiscountToRate(df, days[i], base)
	}
	return FromZeros(days, rates, base, method)
}

func (c *Curve) Days() []float64  { return append([]float64(nil), c.days...) }
func (c *Curve) Rates() []float64 { return append([]float64(nil), c.rates...) }
func (c *Curve) Base() float64    { return c.base }
func (c *Curve) Method() Method   { return c.method }

// Discounts returns the pillar discount factors.
func (c *Curve) Discounts() []float64 {
	out := make([]float64, len(c.days))
	for i := range c.days {
		out[i] = RateToDiscount(c.rates[i], c.days[i], c.base)
	}
	return out
}

// RateAt interpolates with the curve's own method.
func (c *Curve) RateAt(days float64) (float64, error) {
	return c.RateWith(days, c.method)
}

// RateWith interpolates the zero rate at days with method. Queries outside the
// pillar span fail with errs.OutOfRange.
func (c *Curve) RateWith(days float64, method Method) (float64, error) {
	lo, hi := c.days[0], c.days[len(c.days)-1]
	if math.IsNaN(days) || days < lo || days > hi {
		return math.NaN(), errs.New(errs.OutOfRange, "curve.RateWith", days, "%g days is outside [%g, %g]", days, lo, hi)
	}
	p, err := c.interpolator(method)
	if err != nil {
		return math.NaN(), err
	}
	return p(days), nil
}

// RatesWith evaluates RateWith at every query.
func (c *Curve) RatesWith(days []float64, method Method) ([]float64, error) {
	out := make([]float64, len(days))
	for i, d := range days {
		r, err := c.RateWith(d, method)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// DiscountAt is the discount factor implied by RateWith.
func (c *Curve) DiscountAt(days float64, method Method) (float64, error) {
	r, err := c.RateWith(days, method)
	if err != nil {
		return math.NaN(), err
	}
	return RateToDiscount(r, days, c.base), nil
}

// interpolator returns the cached predictor for method, building it on a miss.
func (c *Curve) interpolator(method Method) (predictor, error) {
	key := method.String()
	if p, ok := c.cache.Get(key); ok {
		return p.(predictor), nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.cache.Get(key); ok {
		return p.(predictor), nil
	}
	p, err := build(method, c.days, c.rates, c.base)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, p, gocache.NoExpiration)
	return p, nil
}

// RateToDiscount is 1/(1+r)^(days/base).
func RateToDiscount(rate, days, base float64) float64 {
	return 1 / math.Pow(1+rate, days/base)
}

// DiscountToRate is (1/df)^(base/days) - 1.
func DiscountToRate(df, days, base float64) float64 {
	return math.Pow(1/df, base/days) - 1
}

// ConvertZeros maps tenor-labelled zeros to discount factors rounded to six
// decimals, the way published curves are quoted.
func ConvertZeros(zeros []float64, tenors []string, kind TenorKind) ([]float64, error) {
	if len(zeros) != len(tenors) {
		return nil, errs.New(errs.Precondition, "curve.ConvertZeros", len(tenors), "need one tenor per rate")
	}
	out := make([]float64, len(zeros))
	for i, z := range zeros {
		d, err := TenorToDays(tenors[i], kind)
		if err != nil {
			return nil, err
		}
		out[i] = utils.RoundTo(RateToDiscount(z, float64(d), kind.Base()), 6)
	}
	return out, nil
}

// ConvertDiscounts maps tenor-labelled discounts to zero rates rounded to five decimals.
func ConvertDiscounts(dfs []float64, tenors []string, kind TenorKind) ([]float64, error) {
	if len(dfs) != len(tenors) {
		return nil, errs.New(errs.Precondition, "curve.ConvertDiscounts", len(tenors), "need one tenor per discount")
	}
	out := make([]float64, len(dfs))
	for i, df := range dfs {
		d, err := TenorToDays(tenors[i], kind)
		if err != nil {
			return nil, err
		}
		out[i] = utils.RoundTo(DiscountToRate(df, float64(d), kind.Base()), 5)
	}
	return out, nil
}
