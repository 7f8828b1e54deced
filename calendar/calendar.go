package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Weekmask flags business weekdays, Monday first.
type Weekmask [7]bool

// DefaultWeekmask is Monday to Friday.
var DefaultWeekmask = Weekmask{true, true, true, true, true, false, false}

// ParseWeekmask reads a seven-character mask such as "1111100".
func ParseWeekmask(s string) (Weekmask, error) {
	var w Weekmask
	s = strings.TrimSpace(s)
	if len(s) != 7 {
		return w, fmt.Errorf("ParseWeekmask: need 7 characters, got %q", s)
	}
	for i, ch := range s {
		switch ch {
		case '1':
			w[i] = true
		case '0':
		default:
			return w, fmt.Errorf("ParseWeekmask: invalid character %q in %q", ch, s)
		}
	}
	return w, nil
}

func (w Weekmask) String() string {
	b := make([]byte, 7)
	for i, on := range w {
		b[i] = '0'
		if on {
			b[i] = '1'
		}
	}
	return string(b)
}

func (w Weekmask) isBusiness(dn int64) bool {
	return w[weekdayIndex(dn)]
}

func (w Weekmask) perWeek() int64 {
	var n int64
	for _, on := range w {
		if on {
			n++
		}
	}
	return n
}

// Calendar is a named set of holidays plus a weekmask. It is read-only once built.
// A nil *Calendar behaves as the standard calendar: Monday to Friday, no holidays.
type Calendar struct {
	name     string
	weekmask Weekmask
	holidays []time.Time
	dayset   map[int64]struct{}
	// busHolidays holds day numbers of holidays falling on business weekdays, sorted.
	busHolidays []int64
}

// New builds a calendar. Holidays are de-duplicated and sorted.
func New(name string, holidays []time.Time, weekmask Weekmask) *Calendar {
	c := &Calendar{
		name:     name,
		weekmask: weekmask,
		dayset:   make(map[int64]struct{}, len(holidays)),
	}
	for _, h := range holidays {
		dn := dayNumber(h)
		if _, ok := c.dayset[dn]; ok {
			continue
		}
		c.dayset[dn] = struct{}{}
		c.holidays = append(c.holidays, fromDayNumber(dn))
		if weekmask.isBusiness(dn) {
			c.busHolidays = append(c.busHolidays, dn)
		}
	}
	sort.Slice(c.holidays, func(i, j int) bool { return c.holidays[i].Before(c.holidays[j]) })
	sort.Slice(c.busHolidays, func(i, j int) bool { return c.busHolidays[i] < c.busHolidays[j] })
	return c
}

// Name returns the canonical name, e.g. "cdr_anbima".
func (c *Calendar) Name() string {
	if c == nil {
		return StandardName
	}
	return c.name
}

func (c *Calendar) Weekmask() Weekmask {
	if c == nil {
		return DefaultWeekmask
	}
	return c.weekmask
}

// Holidays returns a copy of the sorted holiday dates.
func (c *Calendar) Holidays() []time.Time {
	if c == nil {
		return nil
	}
	out := make([]time.Time, len(c.holidays))
	copy(out, c.holidays)
	return out
}

// IsHoliday reports whether t is in the holiday set (weekends are not holidays).
func (c *Calendar) IsHoliday(t time.Time) bool {
	if c == nil {
		return false
	}
	_, ok := c.dayset[dayNumber(t)]
	return ok
}

// IsBusinessDay checks the weekmask and the holiday set.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	return c.isBusiness(dayNumber(t))
}

func (c *Calendar) isBusiness(dn int64) bool {
	if !c.Weekmask().isBusiness(dn) {
		return false
	}
	if c == nil {
		return true
	}
	_, hol := c.dayset[dn]
	return !hol
}

// Following returns t if it is a business day, else the next business day.
func (c *Calendar) Following(t time.Time) time.Time {
	dn := dayNumber(t)
	for !c.isBusiness(dn) {
		dn++
	}
	return fromDayNumber(dn)
}

// Preceding returns t if it is a business day, else the previous business day.
func (c *Calendar) Preceding(t time.Time) time.Time {
	dn := dayNumber(t)
	for !c.isBusiness(dn) {
		dn--
	}
	return fromDayNumber(dn)
}

// ModifiedFollowing applies Following unless it crosses into the next month.
func (c *Calendar) ModifiedFollowing(t time.Time) time.Time {
	f := c.Following(t)
	if f.Month() != t.Month() {
		return c.Preceding(t)
	}
	return f
}

// ModifiedPreceding applies Preceding unless it crosses into the previous month.
func (c *Calendar) ModifiedPreceding(t time.Time) time.Time {
	p := c.Preceding(t)
	if p.Month() != t.Month() {
		return c.Following(t)
	}
	return p
}

// Adjust applies Modified Following.
func (c *Calendar) Adjust(t time.Time) time.Time {
	return c.ModifiedFollowing(t)
}

// AddBusinessDays advances n business days (n can be negative).
// The start date itself need not be a business day.
func (c *Calendar) AddBusinessDays(t time.Time, n int) time.Time {
	dn := dayNumber(t)
	step := int64(1)
	if n < 0 {
		step = -1
	}
	for n != 0 {
		dn += step
		if c.isBusiness(dn) {
			n -= int(step)
		}
	}
	return fromDayNumber(dn)
}

// BusinessDaysBetween counts business days in [start, end). It is negative when
// end is before start, counting [end, start).
func (c *Calendar) BusinessDaysBetween(start, end time.Time) int {
	a, b := dayNumber(start), dayNumber(end)
	if b < a {
		return -c.countBusiness(b, a)
	}
	return c.countBusiness(a, b)
}

func (c *Calendar) countBusiness(a, b int64) int {
	w := c.Weekmask()
	n := b - a
	count := (n / 7) * w.perWeek()
	for dn := a + (n/7)*7; dn < b; dn++ {
		if w.isBusiness(dn) {
			count++
		}
	}
	if c != nil && len(c.busHolidays) > 0 {
		lo := sort.Search(len(c.busHolidays), func(i int) bool { return c.busHolidays[i] >= a })
		hi := sort.Search(len(c.busHolidays), func(i int) bool { return c.busHolidays[i] >= b })
		count -= int64(hi - lo)
	}
	return int(count)
}

// LastBusinessDayOfMonth returns the last business day of the month containing t.
func (c *Calendar) LastBusinessDayOfMonth(t time.Time) time.Time {
	return c.Preceding(endOfMonth(t))
}

// FirstBusinessDayOfMonth returns the first business day of the month containing t.
func (c *Calendar) FirstBusinessDayOfMonth(t time.Time) time.Time {
	return c.Following(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC))
}

// IsEndOfMonth checks if t is the last business day of its month.
func (c *Calendar) IsEndOfMonth(t time.Time) bool {
	return dayNumber(t) == dayNumber(c.LastBusinessDayOfMonth(t))
}

// ---------------------------------------------------------------------------
// day numbers
// ---------------------------------------------------------------------------

// dayNumber is the count of days since 1970-01-01 for the calendar date of t.
func dayNumber(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func fromDayNumber(dn int64) time.Time {
	return time.Unix(dn*86400, 0).UTC()
}

// weekdayIndex maps a day number to Monday=0 ... Sunday=6. 1970-01-01 was a Thursday.
func weekdayIndex(dn int64) int {
	return int(((dn+3)%7 + 7) % 7)
}

func endOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
