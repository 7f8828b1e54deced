package tracker

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/meenmo/quantlib/daycount"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/utils"
)

// swapConventions are the fixed leg day counts used to blend spot and forward
// maturities, all on the US trading calendar.
var swapConventions = map[string]string{
	"USD": "30E/360 ISDA",
	"AUD": "ACT/365",
	"CAD": "ACT/365",
	"CHF": "30A/360",
	"EUR": "30U/360",
	"GBP": "ACT/365",
	"JPY": "ACT/365F",
	"NZD": "ACT/365",
	"SEK": "30A/360",
}

// SwapDayCount returns the blending day count for a swap currency.
func SwapDayCount(ccy string) (daycount.DayCount, error) {
	label, ok := swapConventions[strings.ToUpper(ccy)]
	if !ok {
		return daycount.DayCount{}, errs.New(errs.Precondition, "tracker.SwapDayCount", ccy, "swap currency %q not supported", ccy)
	}
	return daycount.Parse(label, "us_trading")
}

// IRSInput describes a rolled one month forward starting receiver swap.
type IRSInput struct {
	Currency string
	Country  string
	// Tenor is the swap length in years.
	Tenor int
	// Spot and Forward are the spot starting and 1M forward starting swap
	// rates in percent.
	Spot    *series.Series
	Forward *series.Series
	// DayCount overrides SwapDayCount(Currency).
	DayCount *daycount.DayCount
}

// PV01 is the annuity Σ_{i=1..2T} 0.5·(1+y/2)^-i of a semiannual swap.
func PV01(y float64, tenor int) float64 {
	pv := 0.0
	for i := 1; i <= 2*tenor; i++ {
		pv += 0.5 * math.Pow(1+y/2, -float64(i))
	}
	return pv
}

// ForwardSwap receives fixed on a 1M forward starting swap and rolls monthly.
//
// The reference yield blends the current spot and forward starting rates with
// w = tf(fwd mat today, fwd mat at entry)/tf(fwd mat today, spot mat today),
// so it moves from the forward rate towards the spot rate as the start date
// approaches; on and after the roll date w = 1. The index compounds
// (y[t-1] - y[t])·PV01(y[t]).
func ForwardSwap(in IRSInput) (*Result, error) {
	const op = "tracker.ForwardSwap"
	if in.Tenor <= 0 {
		return nil, errs.New(errs.Precondition, op, in.Tenor, "tenor must be positive")
	}
	var dc daycount.DayCount
	if in.DayCount != nil {
		dc = *in.DayCount
	} else {
		var err error
		if dc, err = SwapDayCount(in.Currency); err != nil {
			return nil, err
		}
	}
	if in.Spot.Len() == 0 || in.Forward.Len() == 0 {
		return nil, errs.New(errs.Precondition, op, in.Currency, "spot and forward swap rates are required")
	}
	if in.Country == "" {
		in.Country = "US"
	}

	f := series.Align(in.Spot.DropNaN(), in.Forward.DropNaN()).FFill().DropNaNRows()
	if f.Rows() < 2 {
		return nil, errs.New(errs.Precondition, op, in.Currency, "fewer than two dates with spot and forward rates")
	}

	months := 12 * in.Tenor
	at := func(d time.Time, m int) time.Time { return dc.ModifiedFollowing(utils.AddMonth(d, m)) }

	res := &Result{Description: Description{
		FhTicker:   IRSTicker(in.Country, in.Currency, in.Tenor),
		AssetClass: "fixed income",
		Type:       "swap",
		Currency:   strings.ToUpper(in.Currency),
		Country:    strings.ToUpper(in.Country),
		Maturity:   float64(in.Tenor),
		RollMethod: "1 month",
	}}

	d0 := f.Dates[0]
	prevRef := f.At(0, 1) / 100
	rollDate := at(d0, 1)
	fwdMat := at(d0, 1+months)
	idx := StartLevel
	leg := func(w, y float64) []Leg {
		return []Leg{{Contract: fmt.Sprintf("%dy fwd %s", in.Tenor, fwdMat.Format(time.DateOnly)), Weight: w, Holdings: PV01(y, in.Tenor), Price: y}}
	}
	res.Days = append(res.Days, Day{Date: d0, Legs: leg(0, prevRef), Index: idx, Roll: true})

	for i := 1; i < f.Rows(); i++ {
		d := f.Dates[i]
		spot, fwd := f.At(i, 0)/100, f.At(i, 1)/100

		w := 1.0
		if d.Before(rollDate) {
			curFwd, curSpot := at(d, 1+months), at(d, months)
			num, err := dc.Tf(curFwd, fwdMat)
			if err != nil {
				return nil, err
			}
			den, err := dc.Tf(curFwd, curSpot)
			if err != nil {
				return nil, err
			}
			if den != 0 {
				w = num / den
			}
		}
		ref := w*spot + (1-w)*fwd

		ret := (prevRef - ref) * PV01(ref, in.Tenor)
		if math.IsNaN(ret) {
			ret = 0
		}
		next := idx * (1 + ret)
		pnl := next - idx
		idx = next

		roll := !d.Before(rollDate)
		mark := ref
		if roll {
			rollDate = at(d, 1)
			fwdMat = at(d, 1+months)
			prevRef = fwd
			mark = fwd
		} else {
			prevRef = ref
		}
		res.Days = append(res.Days, Day{Date: d, Legs: leg(w, mark), PnL: pnl, Index: idx, Roll: roll})
	}
	return res, nil
}
