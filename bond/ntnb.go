package bond

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/quantlib/errs"
)

// NTNB is an IPCA-linked Brazilian government bond. Cash flows are computed
// per 100 of VNA and scaled by it.
type NTNB struct {
	Expiry       time.Time
	Ref          time.Time
	AnnualCoupon float64
	// Coupon is the semiannual payment per 100 of VNA.
	Coupon float64
	Rate   float64
	Price  float64
	VNA    float64
	// Quotation is trunc(PV/100, 6), the price as a fraction of VNA.
	Quotation float64
	Risk      Risk
	Flows     []Cashflow
	Warning   error

	sched discounted
}

// truncate6 drops digits past the sixth decimal without binary rounding artefacts.
func truncate6(x float64) float64 {
	v, _ := decimal.NewFromFloat(x).Truncate(6).Float64()
	return v
}

// NewNTNB needs two of rate, price and VNA; the third is derived. With all
// three the price is checked against the other two.
func NewNTNB(in Input) (*NTNB, error) {
	given := 0
	for _, p := range []*float64{in.Rate, in.Price, in.VNA} {
		if p != nil {
			given++
		}
	}
	if given < 2 {
		return nil, errs.New(errs.Precondition, "bond.NewNTNB", given, "two of rate, price and vna are required")
	}
	if !in.Expiry.After(in.Ref) {
		return nil, errs.New(errs.Precondition, "bond.NewNTNB", in.Expiry, "expiry %s is not after %s",
			in.Expiry.Format(time.DateOnly), in.Ref.Format(time.DateOnly))
	}
	annual := in.Coupon
	if annual == 0 {
		annual = 0.06
	}

	dc := DayCount()
	b := &NTNB{
		Expiry:       in.Expiry,
		Ref:          in.Ref,
		AnnualCoupon: annual,
		Coupon:       SemiannualCoupon(annual, 100),
	}
	per100 := couponSchedule(dc, in.Ref, in.Expiry, b.Coupon, 100)
	b.sched = newDiscounted(dc, in.Ref, per100)
	quotation := func(y float64) float64 { return truncate6(b.sched.pv(y) / 100) }

	switch {
	case in.Price == nil:
		b.Rate, b.VNA = *in.Rate, *in.VNA
		b.Quotation = quotation(b.Rate)
		b.Price = b.Quotation * b.VNA
	case in.VNA == nil:
		b.Rate, b.Price = *in.Rate, *in.Price
		b.Quotation = quotation(b.Rate)
		if b.Quotation <= 0 {
			return nil, errs.New(errs.Precondition, "bond.NewNTNB", b.Rate, "no cash flows after %s", in.Ref.Format(time.DateOnly))
		}
		b.VNA = b.Price / b.Quotation
	case in.Rate == nil:
		b.Price, b.VNA = *in.Price, *in.VNA
		if b.VNA <= 0 {
			return nil, errs.New(errs.Precondition, "bond.NewNTNB", b.VNA, "vna must be positive")
		}
		// Solve on the untruncated PV; truncation only enters the quoted price.
		y, err := solveRate("bond.NewNTNB", func(y float64) float64 { return b.sched.pv(y) / 100 * b.VNA }, b.Price, -0.5, 1)
		if err != nil {
			return nil, err
		}
		b.Rate = y
		b.Quotation = quotation(y)
	default:
		b.Rate, b.Price, b.VNA = *in.Rate, *in.Price, *in.VNA
		b.Quotation = quotation(b.Rate)
		b.Warning = checkConsistency("NTNB", b.Quotation*b.VNA, b.Price, in.Logger)
	}

	b.Flows = make([]Cashflow, len(per100))
	for i, cf := range per100 {
		b.Flows[i] = Cashflow{Date: cf.Date, Coupon: cf.Coupon / 100 * b.VNA, Principal: cf.Principal / 100 * b.VNA}
	}
	b.Risk = b.sched.risk(b.Rate)
	b.Risk.DV01 = b.Risk.Modified * b.Price / 100
	return b, nil
}

// CouponAmount is the currency coupon paid per bond at the current VNA.
func (b *NTNB) CouponAmount() float64 { return b.Coupon / 100 * b.VNA }

func (b *NTNB) RefDate() time.Time    { return b.Ref }
func (b *NTNB) PriceValue() float64   { return b.Price }
func (b *NTNB) Sensitivities() Risk   { return b.Risk }
func (b *NTNB) Cashflows() []Cashflow { return b.Flows }

// PriceAt is the untruncated price at yield y and the bond's VNA.
func (b *NTNB) PriceAt(y float64) float64 { return b.sched.pv(y) / 100 * b.VNA }
