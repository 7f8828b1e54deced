package tracker

import (
	"math"
	"strings"
	"time"

	"github.com/meenmo/quantlib/calendar"
	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
)

// BondFutureRoots maps a country code to its benchmark government bond future.
var BondFutureRoots = map[string]string{
	"US": "TY", "GE": "RX", "FR": "OAT", "IT": "IK",
	"JP": "JB", "AU": "XM", "UK": "G", "CA": "CN",
}

// BondFutureFX names the spot pair that converts each country's future into USD.
var BondFutureFX = map[string]string{
	"GE": "EURUSD", "UK": "GBPUSD", "CA": "CADUSD", "JP": "JPYUSD",
	"AU": "AUDUSD", "FR": "EURUSD", "IT": "EURUSD", "US": "USD",
}

// BondFutureInput describes a position in the second generic bond future.
type BondFutureInput struct {
	Root     string
	Country  string
	Currency string
	// Generic2 is the price of the second generic contract; its dates index the tracker.
	Generic2 *series.Series
	// Underlying names the contract behind Generic2 on each of its dates.
	// Blank entries carry the previous name forward.
	Underlying []string
	// Prices are settlement prices keyed by contract name.
	Prices      *series.Frame
	FirstNotice map[string]time.Time
	// FX is USD per unit of the contract currency; nil for USD contracts.
	FX *series.Series
	// Calendar overrides the configured roll calendar of Root.
	Calendar string
}

// BondFutureCalendar returns the calendar used to roll futures on root.
func BondFutureCalendar(root string) string {
	tc := config.GetConfig().Tracker
	if name, ok := tc.BondFutureCalendars[strings.ToLower(strings.TrimSpace(root))]; ok {
		return name
	}
	if tc.DefaultBondFutureCalendar != "" {
		return tc.DefaultBondFutureCalendar
	}
	return calendar.USTrading
}

// BondFuture holds the contract underlying the second generic and rolls one
// business day before the held contract's first notice date. The new position
// is index/(generic 2 price·fx) contracts of the contract then underlying the
// generic. PnL is holdings·Δprice·fx.
func BondFuture(in BondFutureInput) (*Result, error) {
	const op = "tracker.BondFuture"
	if in.Generic2.Len() < 2 {
		return nil, errs.New(errs.Precondition, op, in.Root, "at least two generic 2 prices are required")
	}
	if len(in.Underlying) != in.Generic2.Len() {
		return nil, errs.New(errs.Precondition, op, len(in.Underlying), "%d underlying names for %d generic prices", len(in.Underlying), in.Generic2.Len())
	}
	if in.Prices == nil {
		return nil, errs.New(errs.Precondition, op, in.Root, "contract prices are required")
	}
	calName := in.Calendar
	if calName == "" {
		calName = BondFutureCalendar(in.Root)
	}
	cal, err := calendar.Get(calName)
	if err != nil {
		return nil, err
	}
	if in.Country == "" {
		in.Country = "US"
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}

	dates := in.Generic2.Dates
	g2 := in.Generic2.FFill().Values
	prices := in.Prices.Reindex(dates).FFill()
	fx := make([]float64, len(dates))
	for i := range fx {
		fx[i] = 1
	}
	if in.FX != nil {
		copy(fx, in.FX.Reindex(dates).FFill().Values)
	}
	underlying := make([]string, len(dates))
	last := ""
	for i, u := range in.Underlying {
		if strings.TrimSpace(u) != "" {
			last = strings.TrimSpace(u)
		}
		underlying[i] = last
	}

	hold := func(i int) (int, time.Time, error) {
		c := underlying[i]
		j := prices.ColIndex(c)
		if j < 0 {
			return 0, time.Time{}, errs.New(errs.Precondition, op, c, "no prices for contract %q", c)
		}
		fn, ok := in.FirstNotice[c]
		if !ok {
			return 0, time.Time{}, errs.New(errs.Precondition, op, c, "no first notice date for %q", c)
		}
		return j, cal.AddBusinessDays(fn, -1), nil
	}

	res := &Result{Description: Description{
		FhTicker:       BondFutureTicker(in.Country, in.Root),
		AssetClass:     "fixed income",
		Type:           "bond future",
		ExchangeSymbol: strings.ToUpper(in.Root),
		Currency:       in.Currency,
		Country:        strings.ToUpper(in.Country),
		RollMethod:     "generic 2, 1 business day before first notice",
	}}

	i0 := 0
	for i0 < len(dates) && (underlying[i0] == "" || math.IsNaN(g2[i0]) || math.IsNaN(fx[i0])) {
		i0++
	}
	if i0 == len(dates) {
		return nil, errs.New(errs.Precondition, op, in.Root, "no date with a generic 2 price and contract")
	}
	j, rollOut, err := hold(i0)
	if err != nil {
		return nil, err
	}
	idx := StartLevel
	h := idx / (g2[i0] * fx[i0])
	leg := func(i int) []Leg {
		return []Leg{{Contract: prices.Columns[j], Weight: 1, Holdings: h, Price: prices.At(i, j)}}
	}
	res.Days = append(res.Days, Day{Date: dates[i0], Legs: leg(i0), Index: idx, Roll: true})

	for i := i0 + 1; i < len(dates); i++ {
		pnl := legPnL(h, prices.At(i, j), prices.At(i-1, j)) * fx[i]
		if math.IsNaN(pnl) {
			pnl = 0
		}
		idx += pnl

		roll := !dates[i].Before(rollOut)
		if roll {
			if j, rollOut, err = hold(i); err != nil {
				return nil, err
			}
			h = idx / (g2[i] * fx[i])
		}
		res.Days = append(res.Days, Day{Date: dates[i], Legs: leg(i), PnL: pnl, Index: idx, Roll: roll})
	}
	return res, nil
}
