package tracker

import (
	"math"
	"strings"
	"time"

	"github.com/meenmo/quantlib/calendar"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/utils"
)

// FXPointDivisor converts quoted forward points into outright units.
var FXPointDivisor = map[string]float64{
	"AUD": 10000, "BRL": 10000, "CAD": 10000, "CHF": 10000, "CLP": 1, "CZK": 1000,
	"EUR": 10000, "GBP": 10000, "HUF": 100, "JPY": 100, "KRW": 1, "MXN": 10000,
	"NOK": 10000, "NZD": 10000, "PHP": 1, "PLN": 10000, "SEK": 10000, "SGD": 10000,
	"TRY": 10000, "TWD": 1, "ZAR": 10000,
}

// quotedAsXXXUSD are quoted as units of the currency per USD and get inverted.
var quotedAsXXXUSD = map[string]bool{
	"BRL": true, "CAD": true, "CHF": true, "CLP": true, "CZK": true, "HUF": true,
	"JPY": true, "KRW": true, "MXN": true, "NOK": true, "PHP": true, "PLN": true,
	"SGD": true, "TRY": true, "TWD": true, "ZAR": true, "SEK": true,
}

var currencyCountry = map[string]string{
	"AUD": "AU", "BRL": "BR", "CAD": "CA", "CHF": "CH", "CLP": "CL", "CZK": "CZ",
	"EUR": "EU", "GBP": "GB", "HUF": "HU", "JPY": "JP", "KRW": "KR", "MXN": "MX",
	"NOK": "NO", "NZD": "NZ", "PHP": "PH", "PLN": "PL", "SEK": "SE", "SGD": "SG",
	"TRY": "TR", "TWD": "TW", "ZAR": "ZA",
}

// QuotedAsXXXUSD reports whether ccy is quoted in units per USD.
func QuotedAsXXXUSD(ccy string) bool { return quotedAsXXXUSD[strings.ToUpper(ccy)] }

// FXInput describes a rolled one month forward on a currency against USD.
type FXInput struct {
	Currency string
	// Spot is the market quote; XXXUSD currencies are inverted internally.
	Spot *series.Series
	// Points are the one month forward points as quoted.
	Points *series.Series
	// Calendar rolls the settlement date; weekends only when empty.
	Calendar string
}

const (
	fxTenorDays  = 30
	fxSpotLag    = 2
	fxForwardLag = fxTenorDays + fxSpotLag
)

// FXForward holds 100 USD of the currency in a one month forward. The position
// is marked by interpolating linearly between spot (2 days) and the current
// one month outright (32 days) on the days left to settlement, on a 30/365
// basis. At settlement the strike resets to the current outright and the
// notional to the index level.
func FXForward(in FXInput) (*Result, error) {
	const op = "tracker.FXForward"
	ccy := strings.ToUpper(strings.TrimSpace(in.Currency))
	div, ok := FXPointDivisor[ccy]
	if !ok {
		return nil, errs.New(errs.Precondition, op, in.Currency, "currency %q not supported", in.Currency)
	}
	if in.Spot.Len() == 0 || in.Points.Len() == 0 {
		return nil, errs.New(errs.Precondition, op, ccy, "spot and forward points are required")
	}
	cal, err := calendar.Get(in.Calendar)
	if err != nil {
		return nil, err
	}

	f := series.Align(in.Spot, in.Points).FFill()
	var dates []time.Time
	var spot, fwd []float64
	for i, d := range f.Dates {
		s, o := f.At(i, 0), f.At(i, 0)+f.At(i, 1)/div
		if math.IsNaN(o) {
			continue
		}
		if quotedAsXXXUSD[ccy] {
			s, o = 1/s, 1/o
		}
		dates = append(dates, d)
		spot = append(spot, s)
		fwd = append(fwd, o)
	}
	if len(dates) < 2 {
		return nil, errs.New(errs.Precondition, op, ccy, "fewer than two dates with spot and forward")
	}

	country := currencyCountry[ccy]
	res := &Result{Description: Description{
		FhTicker:       FXTicker(ccy),
		AssetClass:     "FX",
		Type:           "currency forward",
		ExchangeSymbol: ccy,
		Currency:       "USD",
		Country:        country,
		Maturity:       1.0 / 12,
		RollMethod:     "1 month",
	}}

	settle := func(d time.Time) time.Time {
		return cal.AddBusinessDays(d.AddDate(0, 0, fxTenorDays), fxSpotLag)
	}
	strike := fwd[0]
	h := StartLevel / strike
	settlement := settle(dates[0])
	base := StartLevel
	leg := func(mark float64) []Leg {
		return []Leg{{Contract: "fwd " + settlement.Format(time.DateOnly), Weight: 1, Holdings: h, Price: mark}}
	}
	res.Days = append(res.Days, Day{Date: dates[0], Legs: leg(strike), Index: StartLevel, Roll: true})

	for i := 1; i < len(dates); i++ {
		d := dates[i]
		left := float64(utils.Days(d, settlement))
		mark := interpForward(left, spot[i], fwd[i])
		idx := base + h*(mark-strike)

		roll := !d.Before(settlement)
		if roll {
			strike = fwd[i]
			h = idx / strike
			settlement = settle(d)
			base = idx
			mark = strike
		}
		res.Days = append(res.Days, Day{Date: d, Legs: leg(mark), PnL: idx - res.Days[i-1].Index, Index: idx, Roll: roll})
	}
	return res, nil
}

// interpForward is the outright for delivery in days, clamped to [spot, 1M].
func interpForward(days, spot, fwd float64) float64 {
	switch {
	case days <= fxSpotLag:
		return spot
	case days >= fxForwardLag:
		return fwd
	}
	return spot + (days-fxSpotLag)/(fxForwardLag-fxSpotLag)*(fwd-spot)
}
