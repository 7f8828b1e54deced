package tracker

import (
	"math"
	"strings"
	"time"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/utils"
)

// CommodityInput describes a rolled commodity futures position.
type CommodityInput struct {
	// Root is the exchange root, e.g. "CL" or "C".
	Root     string
	Country  string
	Currency string
	// Schedule overrides the Family table when set.
	Schedule RollSchedule
	// Family selects the built-in schedules; GSCI when empty.
	Family Index
	// Prices are settlement prices keyed by ContractCode. One digit years
	// ("CLH4") are accepted when the two digit code is absent.
	Prices *series.Frame
	Start  time.Time
	// RollStart is the business day of the month on which the roll begins (default 5).
	RollStart int
	// RollWindow is the number of business days the roll takes (default 5).
	RollWindow int
}

type commodityBuild struct {
	in        CommodityInput
	prices    *series.Frame
	monthDays map[int][]time.Time
}

func monthKey(d time.Time) int { return d.Year()*12 + int(d.Month()) - 1 }

// Commodity builds the excess return index of a commodity futures roll.
//
// In each month the position targets the schedule contract of that month (out)
// and of the next month (in). Inside the roll window the out weight is the
// fraction of window days still to come, so the position moves linearly into
// the in contract; holdings are weight·index/price. On the first day of a new
// month the previous in contract becomes the whole position.
func Commodity(in CommodityInput) (*Result, error) {
	const op = "tracker.Commodity"
	if in.Prices == nil || in.Prices.Rows() < 2 {
		return nil, errs.New(errs.Precondition, op, in.Root, "at least two price dates are required")
	}
	if strings.TrimSpace(in.Root) == "" {
		return nil, errs.New(errs.Precondition, op, in.Root, "root is required")
	}
	if in.Schedule[0] == "" {
		family := in.Family
		if family == "" {
			family = GSCI
		}
		s, err := DefaultSchedule(family, in.Root)
		if err != nil {
			return nil, err
		}
		in.Schedule = s
	}
	if in.RollStart <= 0 {
		in.RollStart = 5
	}
	if in.RollWindow <= 0 {
		in.RollWindow = 5
	}
	if in.Country == "" {
		in.Country = "US"
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}

	b := &commodityBuild{in: in, prices: in.Prices.FFill(), monthDays: map[int][]time.Time{}}
	for _, d := range b.prices.Dates {
		k := monthKey(d)
		b.monthDays[k] = append(b.monthDays[k], d)
	}

	res := &Result{Description: Description{
		FhTicker:       CommodityTicker(in.Country, in.Root),
		AssetClass:     "commodity",
		Type:           "future",
		ExchangeSymbol: strings.ToUpper(strings.TrimSpace(in.Root)),
		Currency:       in.Currency,
		Country:        strings.ToUpper(in.Country),
		Sector:         Sector(in.Root),
		RollMethod:     in.Schedule.String(),
	}}

	// First date on or after Start with prices for both targeted contracts.
	i0 := -1
	var jOut, jIn int
	for i := utils.SearchDate(b.prices.Dates, utils.Truncate(in.Start)); i < b.prices.Rows(); i++ {
		o, n, err := b.contracts(b.prices.Dates[i])
		if err != nil {
			continue
		}
		if !math.IsNaN(b.prices.At(i, o)) && !math.IsNaN(b.prices.At(i, n)) {
			i0, jOut, jIn = i, o, n
			break
		}
	}
	if i0 < 0 {
		return nil, errs.New(errs.Precondition, op, in.Root, "no date with prices for the scheduled contracts")
	}

	d0 := b.prices.Dates[i0]
	wOut := b.weightOut(d0)
	wIn := 1 - wOut
	idx := StartLevel
	hOut := zeroNaN(wOut * idx / b.prices.At(i0, jOut))
	hIn := zeroNaN(wIn * idx / b.prices.At(i0, jIn))
	res.Days = append(res.Days, Day{Date: d0, Legs: b.legs(i0, jOut, jIn, wOut, wIn, hOut, hIn), Index: idx, Roll: true})

	for i := i0 + 1; i < b.prices.Rows(); i++ {
		d, dm1 := b.prices.Dates[i], b.prices.Dates[i-1]

		pnl := legPnL(hIn, b.prices.At(i, jIn), b.prices.At(i-1, jIn))
		if wIn != 1 {
			pnl += legPnL(hOut, b.prices.At(i, jOut), b.prices.At(i-1, jOut))
		}
		idx += pnl

		o, n, err := b.contracts(d)
		if err != nil {
			return nil, err
		}
		jOut, jIn = o, n

		var roll bool
		if d.Month() != dm1.Month() {
			hOut, hIn = hIn, 0
			wOut, wIn = 1, 0
			roll = true
		} else {
			w := b.weightOut(d)
			roll = w != wOut
			wOut, wIn = w, 1-w
			hOut = zeroNaN(wOut * idx / b.prices.At(i, jOut))
			hIn = zeroNaN(wIn * idx / b.prices.At(i, jIn))
		}
		res.Days = append(res.Days, Day{Date: d, Legs: b.legs(i, jOut, jIn, wOut, wIn, hOut, hIn), PnL: pnl, Index: idx, Roll: roll})
	}
	return res, nil
}

func (b *commodityBuild) legs(i, jOut, jIn int, wOut, wIn, hOut, hIn float64) []Leg {
	return []Leg{
		{Contract: b.prices.Columns[jOut], Weight: wOut, Holdings: hOut, Price: b.prices.At(i, jOut)},
		{Contract: b.prices.Columns[jIn], Weight: wIn, Holdings: hIn, Price: b.prices.At(i, jIn)},
	}
}

// contracts returns the price columns of the out and in contracts for d.
func (b *commodityBuild) contracts(d time.Time) (int, int, error) {
	m, y := b.in.Schedule.Target(d)
	out, err := b.column(m, y)
	if err != nil {
		return 0, 0, err
	}
	m, y = b.in.Schedule.Target(utils.Date(d.Year(), d.Month()+1, 1))
	in, err := b.column(m, y)
	if err != nil {
		return 0, 0, err
	}
	return out, in, nil
}

func (b *commodityBuild) column(m time.Month, y int) (int, error) {
	code := ContractCode(b.in.Root, m, y)
	if j := b.prices.ColIndex(code); j >= 0 {
		return j, nil
	}
	if j := b.prices.ColIndex(shortContractCode(b.in.Root, m, y)); j >= 0 {
		return j, nil
	}
	return 0, errs.New(errs.Precondition, "tracker.Commodity", code, "no prices for contract %s", code)
}

// weightOut is the out contract weight on d given the roll window of d's month.
func (b *commodityBuild) weightOut(d time.Time) float64 {
	days := b.monthDays[monthKey(d)]
	at := func(k int) time.Time {
		if k < len(days) {
			return days[k]
		}
		return days[len(days)-1]
	}
	start := at(b.in.RollStart - 1)
	end := at(b.in.RollStart + b.in.RollWindow - 2)
	switch {
	case d.Before(start):
		return 1
	case d.After(end):
		return 0
	}
	left := 0
	for _, x := range days {
		if x.After(d) && !x.After(end) {
			left++
		}
	}
	return float64(left) / float64(b.in.RollWindow)
}
