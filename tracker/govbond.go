package tracker

import (
	"math"
	"time"

	"github.com/meenmo/quantlib/bond"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
)

// NTNBInput describes a buy-and-hold position in one NTN-B.
type NTNBInput struct {
	Expiry time.Time
	// VNA is the nominal value per business day, see bond.ProjectVNA.
	VNA *series.Series
	// Yield is the market yield of the bond in percent.
	Yield *series.Series
	// Coupon is the annual real coupon; 6% when zero.
	Coupon float64
}

// NTNB prices the bond daily from its yield and VNA and reinvests each coupon
// in the bond on the payment date: Δq = q·coupon/PU. The index is q·PU scaled
// to start at 100.
func NTNB(in NTNBInput) (*Result, error) {
	const op = "tracker.NTNB"
	if in.VNA.Len() == 0 || in.Yield.Len() == 0 {
		return nil, errs.New(errs.Precondition, op, in.Expiry, "vna and yield series are required")
	}
	yields := in.Yield.Reindex(in.VNA.Dates)
	for i, d := range in.VNA.Dates {
		if math.IsNaN(yields.Values[i]) {
			yields.Values[i] = in.Yield.AsOf(d)
		}
	}

	res := &Result{Description: Description{
		FhTicker:       GovBondTicker("BR", "ntnb", in.Expiry),
		AssetClass:     "fixed income",
		Type:           "government bond",
		ExchangeSymbol: "NTN-B " + in.Expiry.Format(time.DateOnly),
		Currency:       "BRL",
		Country:        "BR",
		RollMethod:     "buy and hold, coupons reinvested",
	}}
	contract := "NTNB " + in.Expiry.Format(time.DateOnly)

	var q, prevPU float64
	var nextCoupon time.Time
	for i, d := range in.VNA.Dates {
		vna, y := in.VNA.Values[i], yields.Values[i]
		if !d.Before(in.Expiry) {
			break
		}
		if math.IsNaN(vna) || math.IsNaN(y) {
			continue
		}
		b, err := bond.NewNTNB(bond.Input{
			Expiry: in.Expiry,
			Ref:    d,
			Coupon: in.Coupon,
			Rate:   bond.Float(y / 100),
			VNA:    bond.Float(vna),
		})
		if err != nil {
			return nil, err
		}

		if len(res.Days) == 0 {
			q = StartLevel / b.Price
			res.Days = append(res.Days, Day{
				Date:  d,
				Legs:  []Leg{{Contract: contract, Weight: 1, Holdings: q, Price: b.Price}},
				Index: StartLevel,
				Roll:  true,
			})
		} else {
			pnl := legPnL(q, b.Price, prevPU)
			roll := !nextCoupon.After(d)
			if roll {
				cash := q * b.CouponAmount()
				pnl += cash
				q += cash / b.Price
			}
			res.Days = append(res.Days, Day{
				Date:  d,
				Legs:  []Leg{{Contract: contract, Weight: 1, Holdings: q, Price: b.Price}},
				PnL:   pnl,
				Index: q * b.Price,
				Roll:  roll,
			})
		}
		prevPU = b.Price
		nextCoupon = b.Flows[0].Date
	}
	if len(res.Days) == 0 {
		return nil, errs.New(errs.Precondition, op, in.Expiry, "no priced date before expiry")
	}
	return res, nil
}
