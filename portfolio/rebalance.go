package portfolio

import (
	"strings"
	"time"

	"github.com/meenmo/quantlib/calendar"
	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/logger"
	"github.com/meenmo/quantlib/utils"
)

// Schedule selects rebalance dates. Dates wins over Months, Months over Code.
//
// Codes:
//
//	W   one week after every index date
//	WW  weekly on Wednesdays, WF on Fridays, WM on Mondays
//	ME  last business day of the month, MM 10 business days after the month start, MS month start
//	QE  quarter end, QM mid last month of the quarter, QS quarter start
//	SE  June and December month ends, SM mid June and December, SS January and July starts
//	YE  last business day of the year, YM mid December, YS first business day of the year
//
// M, Q, S and Y alias ME, QE, SE and YE. Unknown codes fall back to ME.
type Schedule struct {
	Code   string
	Dates  []time.Time
	Months []time.Month
}

// midMonthLag is the business day offset of the mid-month codes.
const midMonthLag = 10

// RebalanceDates resolves s against index (sorted ascending). Generated dates
// missing from index snap to the closest index date, or to the next one for
// the start-of-period codes; dates past the last index date are dropped.
func RebalanceDates(index []time.Time, s Schedule) []time.Time {
	if len(index) == 0 {
		return nil
	}
	cal := calendar.MustGet("")
	code := strings.ToUpper(strings.TrimSpace(s.Code))

	var raw []time.Time
	switch {
	case len(s.Dates) > 0:
		raw = s.Dates
		code = ""
	case len(s.Months) > 0:
		raw = filterMonths(generate(index, func(d time.Time) time.Time { return bMonthEnd(cal, d) }), s.Months...)
		code = "ME"
	default:
		if code == "" {
			code = config.GetConfig().Portfolio.Rebalance
		}
		raw = resolveCode(cal, index, code)
	}

	next := len(code) == 2 && code[1] == 'S'
	last := index[len(index)-1]
	seen := map[time.Time]bool{}
	var out []time.Time
	for _, r := range raw {
		r = utils.Truncate(r)
		if r.After(last) {
			continue
		}
		i := utils.SearchDate(index, r)
		if i >= len(index) || !index[i].Equal(r) {
			if next {
				r = index[i]
			} else {
				r = closest(index, i, r)
			}
		}
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	utils.SortDates(out)
	return out
}

func resolveCode(cal *calendar.Calendar, index []time.Time, code string) []time.Time {
	midMonth := func(d time.Time) time.Time { return cal.AddBusinessDays(monthBegin(d), midMonthLag) }
	monthEnd := func(d time.Time) time.Time { return bMonthEnd(cal, d) }

	switch code {
	case "W":
		return generate(index, func(d time.Time) time.Time { return d.AddDate(0, 0, 7) })
	case "WW":
		return generate(index, nextWeekday(time.Wednesday))
	case "WF":
		return generate(index, nextWeekday(time.Friday))
	case "WM":
		return generate(index, nextWeekday(time.Monday))
	case "ME", "M":
		return generate(index, monthEnd)
	case "MM":
		return generate(index, midMonth)
	case "MS":
		return generate(index, monthBegin)
	case "QE", "Q":
		return generate(index, quarterEnd)
	case "QM":
		return filterMonths(generate(index, midMonth), time.March, time.June, time.September, time.December)
	case "QS":
		return filterMonths(generate(index, monthBegin), time.January, time.April, time.July, time.October)
	case "SE", "S":
		return filterMonths(generate(index, monthEnd), time.June, time.December)
	case "SM":
		return filterMonths(generate(index, midMonth), time.June, time.December)
	case "SS":
		return filterMonths(generate(index, monthBegin), time.January, time.July)
	case "YE", "Y":
		return generate(index, func(d time.Time) time.Time { return bYearEnd(cal, d) })
	case "YM":
		return filterMonths(generate(index, midMonth), time.December)
	case "YS":
		return generate(index, func(d time.Time) time.Time { return bYearBegin(cal, d) })
	}
	logger.L.Warn("rebalance code not recognised, using month ends", "code", code)
	return generate(index, monthEnd)
}

// generate maps every index date through an offset and keeps unique results in order.
func generate(index []time.Time, offset func(time.Time) time.Time) []time.Time {
	seen := map[time.Time]bool{}
	var out []time.Time
	for _, d := range index {
		r := utils.Truncate(offset(d))
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	utils.SortDates(out)
	return out
}

func filterMonths(dates []time.Time, months ...time.Month) []time.Time {
	keep := map[time.Month]bool{}
	for _, m := range months {
		keep[m] = true
	}
	var out []time.Time
	for _, d := range dates {
		if keep[d.Month()] {
			out = append(out, d)
		}
	}
	return out
}

// closest picks between index[i-1] and index[i]; ties go to the earlier date.
func closest(index []time.Time, i int, r time.Time) time.Time {
	if i == 0 {
		return index[0]
	}
	if i >= len(index) {
		return index[len(index)-1]
	}
	before, after := r.Sub(index[i-1]), index[i].Sub(r)
	if after < before {
		return index[i]
	}
	return index[i-1]
}

func nextWeekday(wd time.Weekday) func(time.Time) time.Time {
	return func(d time.Time) time.Time {
		n := (int(wd) - int(d.Weekday()) + 7) % 7
		if n == 0 {
			n = 7
		}
		return d.AddDate(0, 0, n)
	}
}

func monthBegin(d time.Time) time.Time {
	if d.Day() == 1 {
		return d
	}
	return utils.Date(d.Year(), d.Month()+1, 1)
}

// bMonthEnd is the next last business day of a month strictly after d.
func bMonthEnd(cal *calendar.Calendar, d time.Time) time.Time {
	e := cal.Preceding(utils.EndOfMonth(d))
	if d.Before(e) {
		return e
	}
	return cal.Preceding(utils.EndOfMonth(utils.Date(d.Year(), d.Month()+1, 1)))
}

// quarterEnd is the next calendar quarter end strictly after d.
func quarterEnd(d time.Time) time.Time {
	m := ((int(d.Month())-1)/3 + 1) * 3
	e := utils.EndOfMonth(utils.Date(d.Year(), time.Month(m), 1))
	if d.Before(e) {
		return e
	}
	return utils.EndOfMonth(utils.Date(d.Year(), time.Month(m+3), 1))
}

func bYearEnd(cal *calendar.Calendar, d time.Time) time.Time {
	e := cal.Preceding(utils.Date(d.Year(), time.December, 31))
	if d.Before(e) {
		return e
	}
	return cal.Preceding(utils.Date(d.Year()+1, time.December, 31))
}

func bYearBegin(cal *calendar.Calendar, d time.Time) time.Time {
	b := cal.Following(utils.Date(d.Year(), time.January, 1))
	if !d.After(b) {
		return b
	}
	return cal.Following(utils.Date(d.Year()+1, time.January, 1))
}
