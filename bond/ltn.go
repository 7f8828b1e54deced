package bond

import (
	"log/slog"
	"math"
	"time"

	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/logger"
)

// LTN is a zero-coupon Brazilian government bond.
type LTN struct {
	Expiry    time.Time
	Ref       time.Time
	Principal float64
	Rate      float64
	Price     float64
	// Tau is BUS/252 from Ref to Expiry on ANBIMA.
	Tau   float64
	Risk  Risk
	Flows []Cashflow
	// Warning is an errs.Inconsistent error when the supplied price and rate disagree.
	Warning error
}

// NewLTN prices an LTN from its rate or recovers the rate from its price.
func NewLTN(in Input) (*LTN, error) {
	if in.Rate == nil && in.Price == nil {
		return nil, errs.New(errs.Precondition, "bond.NewLTN", nil, "rate and price cannot both be missing")
	}
	principal := in.Principal
	if principal == 0 {
		principal = 1000
	}
	dc := DayCount()
	tau := yearFraction(dc, in.Ref, in.Expiry)
	if tau <= 0 {
		return nil, errs.New(errs.Precondition, "bond.NewLTN", in.Expiry, "expiry %s is not after %s",
			in.Expiry.Format(time.DateOnly), in.Ref.Format(time.DateOnly))
	}

	b := &LTN{Expiry: in.Expiry, Ref: in.Ref, Principal: principal, Tau: tau}
	switch {
	case in.Price == nil:
		b.Rate = *in.Rate
		b.Price = LTNPrice(principal, b.Rate, tau)
	case in.Rate == nil:
		if *in.Price <= 0 {
			return nil, errs.New(errs.Precondition, "bond.NewLTN", *in.Price, "price must be positive")
		}
		b.Price = *in.Price
		b.Rate = LTNRate(principal, b.Price, tau)
	default:
		b.Rate, b.Price = *in.Rate, *in.Price
		b.Warning = checkConsistency("LTN", LTNPrice(principal, b.Rate, tau), b.Price, in.Logger)
	}

	b.Risk = Risk{
		Macaulay:  tau,
		Modified:  tau / (1 + b.Rate),
		Convexity: tau * (1 + tau) / ((1 + b.Rate) * (1 + b.Rate)),
	}
	b.Risk.DV01 = b.Risk.Modified / 100 * b.Price
	b.Flows = []Cashflow{
		{Date: in.Ref, Principal: -b.Price},
		{Date: in.Expiry, Principal: principal},
	}
	return b, nil
}

// LTNPrice is principal/(1+rate)^τ.
func LTNPrice(principal, rate, tau float64) float64 {
	return principal / math.Pow(1+rate, tau)
}

// LTNRate is (principal/price)^(1/τ) - 1.
func LTNRate(principal, price, tau float64) float64 {
	return math.Pow(principal/price, 1/tau) - 1
}

func (b *LTN) RefDate() time.Time    { return b.Ref }
func (b *LTN) PriceValue() float64   { return b.Price }
func (b *LTN) Sensitivities() Risk   { return b.Risk }
func (b *LTN) Cashflows() []Cashflow { return b.Flows[1:] }

// checkConsistency compares a model price with a supplied one. A gap beyond
// the configured tolerance logs a warning and returns an errs.Inconsistent value.
func checkConsistency(kind string, model, supplied float64, l *slog.Logger) error {
	diff := math.Abs(model - supplied)
	if diff <= config.GetConfig().Bond.PriceTolerance {
		return nil
	}
	logger.Or(l).Warn("price and rate are inconsistent", "bond", kind, "model", model, "supplied", supplied, "diff", diff)
	return errs.New(errs.Inconsistent, "bond."+kind, supplied, "model price %.6f differs from supplied %.6f", model, supplied)
}
