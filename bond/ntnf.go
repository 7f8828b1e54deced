package bond

import (
	"math"
	"time"

	"github.com/meenmo/quantlib/errs"
)

// NTNF is a nominal Brazilian government bond paying semiannual coupons.
type NTNF struct {
	Expiry    time.Time
	Ref       time.Time
	Principal float64
	// AnnualCoupon is the annual rate, e.g. 0.10; Coupon is the semiannual payment.
	AnnualCoupon float64
	Coupon       float64
	Rate         float64
	Price        float64
	Risk         Risk
	Flows        []Cashflow
	Warning      error

	sched discounted
}

// SemiannualCoupon is ((1+annual)^(1/2) - 1)·principal.
func SemiannualCoupon(annual, principal float64) float64 {
	return (math.Sqrt(1+annual) - 1) * principal
}

// NewNTNF prices an NTN-F from its rate or solves the rate from its price
// with Brent on [0, 1].
func NewNTNF(in Input) (*NTNF, error) {
	if in.Rate == nil && in.Price == nil {
		return nil, errs.New(errs.Precondition, "bond.NewNTNF", nil, "rate and price cannot both be missing")
	}
	if !in.Expiry.After(in.Ref) {
		return nil, errs.New(errs.Precondition, "bond.NewNTNF", in.Expiry, "expiry %s is not after %s",
			in.Expiry.Format(time.DateOnly), in.Ref.Format(time.DateOnly))
	}
	principal := in.Principal
	if principal == 0 {
		principal = 1000
	}
	annual := in.Coupon
	if annual == 0 {
		annual = 0.10
	}

	dc := DayCount()
	b := &NTNF{
		Expiry:       in.Expiry,
		Ref:          in.Ref,
		Principal:    principal,
		AnnualCoupon: annual,
		Coupon:       SemiannualCoupon(annual, principal),
	}
	b.Flows = couponSchedule(dc, in.Ref, in.Expiry, b.Coupon, principal)
	b.sched = newDiscounted(dc, in.Ref, b.Flows)

	switch {
	case in.Price == nil:
		b.Rate = *in.Rate
		b.Price = b.sched.pv(b.Rate)
	case in.Rate == nil:
		b.Price = *in.Price
		y, err := solveRate("bond.NewNTNF", b.sched.pv, b.Price, 0, 1)
		if err != nil {
			return nil, err
		}
		b.Rate = y
	default:
		b.Rate, b.Price = *in.Rate, *in.Price
		b.Warning = checkConsistency("NTNF", b.sched.pv(b.Rate), b.Price, in.Logger)
	}
	b.Risk = b.sched.risk(b.Rate)
	return b, nil
}

// PriceAt reprices the bond at another yield.
func (b *NTNF) PriceAt(y float64) float64 { return b.sched.pv(y) }

func (b *NTNF) RefDate() time.Time    { return b.Ref }
func (b *NTNF) PriceValue() float64   { return b.Price }
func (b *NTNF) Sensitivities() Risk   { return b.Risk }
func (b *NTNF) Cashflows() []Cashflow { return b.Flows }
