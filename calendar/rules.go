package calendar

import (
	"fmt"
	"time"

	"github.com/meenmo/quantlib/errs"
)

// Observance moves a nominal holiday date to the date it is observed.
type Observance func(time.Time) time.Time

// SundayToMonday observes a Sunday holiday on the following Monday.
func SundayToMonday(t time.Time) time.Time {
	if t.Weekday() == time.Sunday {
		return t.AddDate(0, 0, 1)
	}
	return t
}

// NearestWorkday observes Saturday on Friday and Sunday on Monday.
func NearestWorkday(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	}
	return t
}

// NextMondayOrTuesday observes Saturday on Monday, and Sunday or Monday on Tuesday.
// Used for Boxing Day when Christmas takes the Monday.
func NextMondayOrTuesday(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return t.AddDate(0, 0, 2)
	case time.Monday:
		return t.AddDate(0, 0, 1)
	}
	return t
}

// ClosestNextMonday returns t if it is a Monday, else the following Monday.
func ClosestNextMonday(t time.Time) time.Time {
	return Nth(time.Monday, 1).apply(t)
}

// ClosestPreviousMonday returns t if it is a Monday, else the preceding Monday.
func ClosestPreviousMonday(t time.Time) time.Time {
	return Nth(time.Monday, -1).apply(t)
}

// WeekdayOffset selects the Nth given weekday counting from a date, inclusive.
// N > 0 counts forward (MO(+1) is the date itself if Monday, else the next Monday),
// N < 0 counts backward.
type WeekdayOffset struct {
	Weekday time.Weekday
	N       int
}

// Nth builds a WeekdayOffset.
func Nth(wd time.Weekday, n int) *WeekdayOffset {
	return &WeekdayOffset{Weekday: wd, N: n}
}

func (o *WeekdayOffset) apply(t time.Time) time.Time {
	n := o.N
	if n == 0 {
		n = 1
	}
	if n > 0 {
		shift := (int(o.Weekday) - int(t.Weekday()) + 7) % 7
		return t.AddDate(0, 0, shift+7*(n-1))
	}
	shift := (int(t.Weekday()) - int(o.Weekday) + 7) % 7
	return t.AddDate(0, 0, -shift+7*(n+1))
}

// Rule describes one recurring holiday. Exactly one anchor is used: an Easter
// offset when Easter is set, otherwise Month/Day (Day -1 is the month's last day).
// Offset and Observance are mutually exclusive.
type Rule struct {
	Name       string
	Month      time.Month
	Day        int
	Easter     *int
	Offset     *WeekdayOffset
	Observance Observance
	// StartYear and EndYear bound the years the rule applies to; zero means open.
	StartYear int
	EndYear   int
}

// Fixed is a fixed month/day holiday with an optional observance.
func Fixed(name string, month time.Month, day int, obs Observance) Rule {
	return Rule{Name: name, Month: month, Day: day, Observance: obs}
}

// EasterOffset is a holiday a number of days from Easter Sunday.
func EasterOffset(name string, days int) Rule {
	d := days
	return Rule{Name: name, Easter: &d}
}

// NthWeekday is the nth weekday of a month; negative n counts from the month end.
func NthWeekday(name string, month time.Month, wd time.Weekday, n int) Rule {
	day := 1
	if n < 0 {
		day = -1
	}
	return Rule{Name: name, Month: month, Day: day, Offset: Nth(wd, n)}
}

// From restricts the rule to years >= year.
func (r Rule) From(year int) Rule {
	r.StartYear = year
	return r
}

// Until restricts the rule to years <= year.
func (r Rule) Until(year int) Rule {
	r.EndYear = year
	return r
}

func (r Rule) validate() error {
	if r.Offset != nil && r.Observance != nil {
		return errs.New(errs.Precondition, "calendar.Rule", r.Name, "offset and observance cannot be combined")
	}
	if r.Easter != nil {
		if r.Month != 0 || r.Day != 0 {
			return errs.New(errs.Precondition, "calendar.Rule", r.Name, "easter rule cannot carry month/day")
		}
		return nil
	}
	if r.Month < time.January || r.Month > time.December {
		return errs.New(errs.Precondition, "calendar.Rule", r.Name, "invalid month %d", r.Month)
	}
	if r.Day == 0 || r.Day < -1 || r.Day > 31 {
		return errs.New(errs.Precondition, "calendar.Rule", r.Name, "invalid day %d", r.Day)
	}
	if r.StartYear != 0 && r.EndYear != 0 && r.EndYear < r.StartYear {
		return errs.New(errs.Precondition, "calendar.Rule", r.Name, "empty year window [%d, %d]", r.StartYear, r.EndYear)
	}
	return nil
}

func (r Rule) inYear(y int) bool {
	if r.StartYear != 0 && y < r.StartYear {
		return false
	}
	if r.EndYear != 0 && y > r.EndYear {
		return false
	}
	return true
}

func (r Rule) date(y int) time.Time {
	if r.Easter != nil {
		return Easter(y).AddDate(0, 0, *r.Easter)
	}
	day := r.Day
	if day == -1 {
		day = daysInMonth(y, r.Month)
	}
	t := time.Date(y, r.Month, day, 0, 0, 0, 0, time.UTC)
	if r.Offset != nil {
		t = r.Offset.apply(t)
	}
	if r.Observance != nil {
		t = r.Observance(t)
	}
	return t
}

// EvaluateRules returns the holidays the rules produce whose dates fall in
// years [y0, y1]. Rules are validated before any date is generated.
func EvaluateRules(rules []Rule, y0, y1 int) ([]time.Time, error) {
	if y1 < y0 {
		return nil, errs.New(errs.Precondition, "calendar.EvaluateRules", [2]int{y0, y1}, "empty year range")
	}
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return nil, err
		}
	}
	var out []time.Time
	// Observances can move a date across the year boundary, so evaluate one year wider.
	for y := y0 - 1; y <= y1+1; y++ {
		for _, r := range rules {
			if !r.inYear(y) {
				continue
			}
			d := r.date(y)
			if d.Year() < y0 || d.Year() > y1 {
				continue
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// Easter returns Easter Sunday of the Gregorian year (anonymous algorithm).
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func (r Rule) String() string {
	if r.Easter != nil {
		return fmt.Sprintf("%s (Easter%+d)", r.Name, *r.Easter)
	}
	return fmt.Sprintf("%s (%s %d)", r.Name, r.Month, r.Day)
}
