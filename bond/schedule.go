package bond

import (
	"time"

	"github.com/meenmo/quantlib/daycount"
	"github.com/meenmo/quantlib/utils"
)

// CouponDates steps back from expiry in six-month increments and returns the
// nominal dates strictly after ref, oldest first. The expiry is always included
// when it is after ref.
func CouponDates(ref, expiry time.Time) []time.Time {
	var out []time.Time
	for k := 0; ; k++ {
		d := utils.AddMonth(expiry, -6*k)
		if !d.After(ref) {
			break
		}
		out = append(out, d)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// couponSchedule builds the payment schedule: each nominal date rolled
// following on dc's calendar, coupon on every date, principal at expiry.
func couponSchedule(dc daycount.DayCount, ref, expiry time.Time, coupon, principal float64) []Cashflow {
	dates := CouponDates(ref, expiry)
	cfs := make([]Cashflow, len(dates))
	for i, d := range dates {
		cfs[i] = Cashflow{Date: dc.Following(d), Coupon: coupon}
	}
	if n := len(cfs); n > 0 {
		cfs[n-1].Principal = principal
	}
	return cfs
}
