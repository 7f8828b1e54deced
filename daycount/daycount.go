// Package daycount implements day-count conventions over holiday calendars:
// day differences, year fractions, days in base, business-day rolls and
// end-of-period helpers.
//
// A DayCount is an immutable value. An adjustment rule and offset may be
// attached with WithAdjustment; every operation applies it to its inputs and
// then works on the adjusted dates with no further adjustment.
package daycount

import (
	"strings"
	"time"

	"github.com/meenmo/quantlib/calendar"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/utils"
)

// Adjustment is a business-day roll rule.
type Adjustment int

const (
	None Adjustment = iota
	Following
	Preceding
	ModifiedFollowing
	ModifiedPreceding
)

func (a Adjustment) String() string {
	switch a {
	case Following:
		return "following"
	case Preceding:
		return "preceding"
	case ModifiedFollowing:
		return "modifiedfollowing"
	case ModifiedPreceding:
		return "modifiedpreceding"
	}
	return "none"
}

// ParseAdjustment accepts "", "none", "following", "preceding",
// "modifiedfollowing" and "modifiedpreceding" (underscores and spaces ignored).
func ParseAdjustment(s string) (Adjustment, error) {
	k := strings.NewReplacer("_", "", " ", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case "", "none":
		return None, nil
	case "following":
		return Following, nil
	case "preceding":
		return Preceding, nil
	case "modifiedfollowing":
		return ModifiedFollowing, nil
	case "modifiedpreceding":
		return ModifiedPreceding, nil
	}
	return None, errs.New(errs.Precondition, "daycount.ParseAdjustment", s, "unknown adjustment %q", s)
}

// DayCount pairs a convention with a calendar, an adjustment rule and an offset.
type DayCount struct {
	conv   Convention
	cal    *calendar.Calendar
	adj    Adjustment
	offset int
}

// New builds a DayCount. A nil calendar means weekends only.
func New(conv Convention, cal *calendar.Calendar) DayCount {
	return DayCount{conv: conv, cal: cal}
}

// Parse builds a DayCount from a convention label and a calendar name.
func Parse(label, calendarName string) (DayCount, error) {
	conv, err := ParseConvention(label)
	if err != nil {
		return DayCount{}, err
	}
	cal, err := calendar.Get(calendarName)
	if err != nil {
		return DayCount{}, err
	}
	return New(conv, cal), nil
}

// MustNew is Parse for labels known at compile time. It panics on error.
func MustNew(label, calendarName string) DayCount {
	dc, err := Parse(label, calendarName)
	if err != nil {
		panic(err)
	}
	return dc
}

// WithAdjustment returns a copy carrying the roll rule and offset.
func (dc DayCount) WithAdjustment(adj Adjustment, offset int) DayCount {
	dc.adj = adj
	dc.offset = offset
	return dc
}

func (dc DayCount) Convention() Convention       { return dc.conv }
func (dc DayCount) Calendar() *calendar.Calendar { return dc.cal }
func (dc DayCount) Adjustment() Adjustment       { return dc.adj }
func (dc DayCount) Offset() int                  { return dc.offset }

func (dc DayCount) String() string {
	return dc.conv.String() + " " + dc.cal.Name()
}

// raw drops the adjustment so operations on already-adjusted dates are not re-rolled.
func (dc DayCount) raw() DayCount {
	dc.adj = None
	return dc
}

// Adjust applies the attached roll rule (and offset) to d.
func (dc DayCount) Adjust(d time.Time) time.Time {
	d = utils.Truncate(d)
	if dc.adj == None {
		return d
	}
	return dc.BusDateRoll(d, dc.adj)
}

// ---------------------------------------------------------------------------
// rolls
// ---------------------------------------------------------------------------

// BusDateRoll rolls d by the rule, then moves the attached offset in business days.
func (dc DayCount) BusDateRoll(d time.Time, roll Adjustment) time.Time {
	d = utils.Truncate(d)
	switch roll {
	case Following:
		d = dc.cal.Following(d)
	case Preceding:
		d = dc.cal.Preceding(d)
	case ModifiedFollowing:
		d = dc.cal.ModifiedFollowing(d)
	case ModifiedPreceding:
		d = dc.cal.ModifiedPreceding(d)
	}
	if dc.offset != 0 {
		d = dc.cal.AddBusinessDays(d, dc.offset)
	}
	return d
}

func (dc DayCount) Following(d time.Time) time.Time { return dc.BusDateRoll(d, Following) }
func (dc DayCount) Preceding(d time.Time) time.Time { return dc.BusDateRoll(d, Preceding) }

func (dc DayCount) ModifiedFollowing(d time.Time) time.Time {
	return dc.BusDateRoll(d, ModifiedFollowing)
}

func (dc DayCount) ModifiedPreceding(d time.Time) time.Time {
	return dc.BusDateRoll(d, ModifiedPreceding)
}

// Workday mimics Excel's WORKDAY. Without an attached adjustment, d is rolled
// preceding for offset >= 0 and following for offset < 0 before moving.
func (dc DayCount) Workday(d time.Time, offset int) time.Time {
	d = utils.Truncate(d)
	roll := dc.adj
	if roll == None {
		if offset >= 0 {
			roll = Preceding
		} else {
			roll = Following
		}
	}
	switch roll {
	case Following:
		d = dc.cal.Following(d)
	case Preceding:
		d = dc.cal.Preceding(d)
	case ModifiedFollowing:
		d = dc.cal.ModifiedFollowing(d)
	case ModifiedPreceding:
		d = dc.cal.ModifiedPreceding(d)
	}
	return dc.cal.AddBusinessDays(d, offset)
}

// IsBus reports whether d is a business day.
func (dc DayCount) IsBus(d time.Time) bool {
	return dc.cal.IsBusinessDay(d)
}

// ---------------------------------------------------------------------------
// end of period
// ---------------------------------------------------------------------------

// Eom returns the last calendar day of the month offset months from d.
func Eom(d time.Time, offset int) time.Time {
	return time.Date(d.Year(), d.Month()+time.Month(offset)+1, 0, 0, 0, 0, 0, time.UTC)
}

// Eoy returns Dec 31 of the year offset years from d.
func Eoy(d time.Time, offset int) time.Time {
	return time.Date(d.Year()+offset, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func (dc DayCount) Eom(d time.Time, offset int) time.Time { return Eom(d, offset) }
func (dc DayCount) Eoy(d time.Time, offset int) time.Time { return Eoy(d, offset) }

func (dc DayCount) EomPreceding(d time.Time, offset int) time.Time {
	return dc.Preceding(Eom(d, offset))
}

func (dc DayCount) EomFollowing(d time.Time, offset int) time.Time {
	return dc.Following(Eom(d, offset))
}

func (dc DayCount) EoyPreceding(d time.Time, offset int) time.Time {
	return dc.Preceding(Eoy(d, offset))
}

func (dc DayCount) EoyFollowing(d time.Time, offset int) time.Time {
	return dc.Following(Eoy(d, offset))
}

// GenDates lists the business days from following(start) through preceding(end).
// When start equals end the single date rolls preceding.
func (dc DayCount) GenDates(start, end time.Time) []time.Time {
	start, end = dc.Adjust(start), dc.Adjust(end)
	r := dc.raw()
	if start.Equal(end) {
		start = r.Preceding(start)
	} else {
		start = r.Following(start)
	}
	end = r.Preceding(end)

	var out []time.Time
	for !start.After(end) {
		out = append(out, start)
		start = r.Workday(start, 1)
	}
	return out
}

// ---------------------------------------------------------------------------
// leap years
// ---------------------------------------------------------------------------

// IsLeap reports whether the year of d is a leap year.
func (dc DayCount) IsLeap(d time.Time) bool {
	return utils.IsLeapYear(dc.Adjust(d).Year())
}

// Dy is the number of calendar days in the year of d.
func (dc DayCount) Dy(d time.Time) int {
	if dc.IsLeap(d) {
		return 366
	}
	return 365
}

// Bdy is the number of business days in the year of d.
func (dc DayCount) Bdy(d time.Time) int {
	y := dc.Adjust(d).Year()
	return dc.cal.BusinessDaysBetween(utils.Date(y, time.January, 1), utils.Date(y+1, time.January, 1))
}

// HasLeap reports whether a Feb 29 lies in [d1, d2). Dates are swapped if reversed.
func (dc DayCount) HasLeap(d1, d2 time.Time) bool {
	d1, d2 = dc.Adjust(d1), dc.Adjust(d2)
	if d1.After(d2) {
		d1, d2 = d2, d1
	}
	for y := d1.Year(); y <= d2.Year(); y++ {
		if !utils.IsLeapYear(y) {
			continue
		}
		feb29 := utils.Date(y, time.February, 29)
		if !feb29.Before(d1) && feb29.Before(d2) {
			return true
		}
	}
	return false
}

// LeapDays counts Feb 29s in (d1, d2]. Dates are swapped if reversed.
func (dc DayCount) LeapDays(d1, d2 time.Time) int {
	d1, d2 = dc.Adjust(d1), dc.Adjust(d2)
	if d1.After(d2) {
		d1, d2 = d2, d1
	}
	n := 0
	for y := d1.Year(); y <= d2.Year(); y++ {
		if !utils.IsLeapYear(y) {
			continue
		}
		feb29 := utils.Date(y, time.February, 29)
		if feb29.After(d1) && !feb29.After(d2) {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// day counts
// ---------------------------------------------------------------------------

// DaysNoDC is the calendar-day difference d2 - d1, ignoring the convention.
func (dc DayCount) DaysNoDC(d1, d2 time.Time) int {
	return utils.Days(dc.Adjust(d1), dc.Adjust(d2))
}

// Days counts days from d1 to d2 under the convention: business days in
// [d1, d2) for BUS conventions, 30/360 arithmetic for the 30 family, calendar
// days otherwise (less leap days for NL/365).
func (dc DayCount) Days(d1, d2 time.Time) int {
	d1, d2 = dc.Adjust(d1), dc.Adjust(d2)
	r := dc.raw()

	if dc.conv.IsBusiness() {
		return dc.cal.BusinessDaysBetween(d1, d2)
	}
	if dc.conv.Is30360() {
		return days30360(dc.conv, d1, d2)
	}
	switch dc.conv {
	case NL365:
		n, leap := r.DaysNoDC(d1, d2), r.LeapDays(d1, d2)
		if n < 0 {
			return n + leap
		}
		return n - leap
	default:
		return r.DaysNoDC(d1, d2)
	}
}

func days30360(conv Convention, t1, t2 time.Time) int {
	y1, m1, d1 := t1.Year(), int(t1.Month()), t1.Day()
	y2, m2, d2 := t2.Year(), int(t2.Month()), t2.Day()

	switch conv {
	case Thirty360U:
		febEnd1 := m1 == 2 && utils.IsEndOfMonth(t1)
		febEnd2 := m2 == 2 && utils.IsEndOfMonth(t2)
		if febEnd1 && febEnd2 {
			d2 = 30
		}
		if febEnd1 {
			d1 = 30
		}
		if d2 == 31 && (d1 == 30 || d1 == 31) {
			d2 = 30
		}
		if d1 == 31 {
			d1 = 30
		}
	case Thirty360A:
		d1 = min(d1, 30)
		if d1 == 30 {
			d2 = min(d2, 30)
		}
	case Thirty360E:
		d1 = min(d1, 30)
		d2 = min(d2, 30)
	case Thirty360EISDA:
		if utils.IsEndOfMonth(t1) {
			d1 = 30
		}
		if utils.IsEndOfMonth(t2) {
			d2 = 30
		}
	case Thirty360EPlus:
		d1 = min(d1, 30)
		if d2 == 31 {
			d2 = 1
			m2++
			if m2 > 12 {
				m2 = 1
				y2++
			}
		}
	}
	return 360*(y2-y1) + 30*(m2-m1) + (d2 - d1)
}

// Dib returns the days in base for the interval. Fixed conventions return a
// constant; ACT/ACT ISDA, ACT/365L, ACT/365A, ACT/ACT AFB, BUS/BUS and 1/1 depend
// on the endpoints. ACT/ACT ICMA fails with errs.UnsupportedOperation.
func (dc DayCount) Dib(d1, d2 time.Time) (float64, error) {
	switch dc.conv {
	case NL365, Act365, Act365F:
		return 365, nil
	case Bus30:
		return 30, nil
	case Bus252:
		return 252, nil
	case Bus1:
		return 1, nil
	case Act364:
		return 364, nil
	case Act360, Thirty360A, Thirty360E, Thirty360EPlus, Thirty360EISDA, Thirty360U:
		return 360, nil
	case ActActICMA:
		return 0, errs.New(errs.UnsupportedOperation, "daycount.Dib", dc.conv.String(), "days in base is undefined for ACT/ACT ICMA")
	}

	d1, d2 = dc.Adjust(d1), dc.Adjust(d2)
	r := dc.raw()
	switch dc.conv {
	case BusBus:
		return float64(r.Bdy(d2)), nil
	case ActActISDA:
		return float64(r.Dy(d1)), nil
	case Act365L:
		return float64(r.Dy(d2)), nil
	case Act365A:
		if isFeb29(d2) || r.HasLeap(d1, d2) {
			return 366, nil
		}
		return 365, nil
	case ActActAFB:
		if r.HasLeap(d1, d2) {
			return 366, nil
		}
		return 365, nil
	case OneOne:
		if sameAnniversary(d1, d2) {
			return 365.25, nil
		}
		return float64(r.Dy(d1)), nil
	}
	return 0, errs.New(errs.UnknownConvention, "daycount.Dib", int(dc.conv), "unknown convention")
}

// Tf returns the year fraction from d1 to d2.
//
// ACT/ACT ISDA splits the interval on Jan 1 boundaries; ACT/ACT AFB counts whole
// years back from d2 (adding 1/366 when a step starts on Feb 29); 1/1 returns a
// whole-year count on matching anniversaries and ISDA otherwise. These three
// require d1 <= d2. ACT/ACT ICMA fails with errs.UnsupportedOperation.
func (dc DayCount) Tf(d1, d2 time.Time) (float64, error) {
	d1, d2 = dc.Adjust(d1), dc.Adjust(d2)
	r := dc.raw()

	switch dc.conv {
	case ActActICMA:
		return 0, errs.New(errs.UnsupportedOperation, "daycount.Tf", dc.conv.String(), "year fraction needs coupon period data")
	case ActActISDA:
		if d1.After(d2) {
			return 0, orderErr(d1, d2)
		}
		return r.tfISDA(d1, d2), nil
	case OneOne:
		if d1.After(d2) {
			return 0, orderErr(d1, d2)
		}
		if sameAnniversary(d1, d2) {
			return float64(int(0.5 + float64(r.Days(d1, d2))/365.25)), nil
		}
		return r.tfISDA(d1, d2), nil
	case ActActAFB:
		if d1.After(d2) {
			return 0, orderErr(d1, d2)
		}
		n, extra := 0, 0.0
		for !utils.AddYears(d2, -1).Before(d1) {
			if isFeb29(d2) {
				extra += 1.0 / 366
			}
			n++
			d2 = utils.AddYears(d2, -1)
		}
		base, _ := r.Dib(d1, d2)
		return float64(n) + extra + float64(r.Days(d1, d2))/base, nil
	}

	base, err := r.Dib(d1, d2)
	if err != nil {
		return 0, err
	}
	return float64(r.Days(d1, d2)) / base, nil
}

// MustTf is Tf for conventions that never fail on ordered dates (BUS, 30/360,
// fixed ACT). It panics on error.
func (dc DayCount) MustTf(d1, d2 time.Time) float64 {
	v, err := dc.Tf(d1, d2)
	if err != nil {
		panic(err)
	}
	return v
}

func (dc DayCount) tfISDA(d1, d2 time.Time) float64 {
	if d1.Year() == d2.Year() {
		return float64(dc.DaysNoDC(d1, d2)) / float64(dc.Dy(d1))
	}
	nextYear := utils.Date(d1.Year()+1, time.January, 1)
	lastYear := utils.Date(d2.Year(), time.January, 1)
	return float64(d2.Year()-d1.Year()-1) +
		float64(dc.DaysNoDC(d1, nextYear))/float64(dc.Dy(d1)) +
		float64(dc.DaysNoDC(lastYear, d2))/float64(dc.Dy(d2))
}

func orderErr(d1, d2 time.Time) error {
	return errs.New(errs.Precondition, "daycount.Tf", [2]string{d1.Format(utils.DateLayout), d2.Format(utils.DateLayout)},
		"first date must not be after second date")
}

func isFeb29(d time.Time) bool {
	return d.Month() == time.February && d.Day() == 29
}

// sameAnniversary matches month and day, treating Feb 28 and Feb 29 as equal.
func sameAnniversary(d1, d2 time.Time) bool {
	if d1.Day() == d2.Day() && d1.Month() == d2.Month() {
		return true
	}
	return d1.Month() == time.February && d2.Month() == time.February &&
		(d1.Day() == 28 || d1.Day() == 29) && (d2.Day() == 28 || d2.Day() == 29)
}
