package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/quantlib/calendar"
	"github.com/meenmo/quantlib/errs"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestModifyName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                 calendar.StandardName,
		"standard":         calendar.StandardName,
		"Anbima":           "cdr_anbima",
		"cdr_US_TRADING":   "cdr_us_trading",
		"#A":               "cdr_us_trading",
		"libor_usd_on":     "cdr_libor_usd_on",
		" cdr_libor_eur  ": "cdr_libor_eur",
	}
	for in, want := range cases {
		assert.Equal(t, want, calendar.ModifyName(in), in)
	}
}

func TestHolidaysUnknown(t *testing.T) {
	t.Parallel()

	_, err := calendar.Holidays("narnia")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnknownCalendar)
}

func TestHolidaysStandardEmpty(t *testing.T) {
	t.Parallel()

	h, err := calendar.Holidays("standard")
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestAnbimaKnownDates(t *testing.T) {
	t.Parallel()

	c, err := calendar.Get("anbima")
	require.NoError(t, err)

	for _, h := range []time.Time{
		d(2019, 3, 4), d(2019, 3, 5), // carnival
		d(2019, 4, 19),               // good friday
		d(2019, 6, 20),               // corpus christi
		d(2019, 11, 15),
		d(2024, 11, 20),
		d(2027, 1, 1),
	} {
		assert.True(t, c.IsHoliday(h), h.Format("2006-01-02"))
		assert.False(t, c.IsBusinessDay(h), h.Format("2006-01-02"))
	}
	assert.False(t, c.IsHoliday(d(2023, 11, 20)), "consciencia negra starts in 2024")
	assert.True(t, c.IsBusinessDay(d(2019, 7, 1)))
}

func TestUSTradingKnownDates(t *testing.T) {
	t.Parallel()

	c, err := calendar.Get("#a")
	require.NoError(t, err)
	assert.Equal(t, calendar.USTrading, c.Name())

	for _, h := range []time.Time{
		d(2023, 1, 2), // new year on sunday
		d(2023, 1, 16), d(2023, 2, 20), d(2023, 4, 7), d(2023, 5, 29),
		d(2023, 7, 4), d(2023, 9, 4), d(2023, 11, 23), d(2023, 12, 25),
	} {
		assert.True(t, c.IsHoliday(h), h.Format("2006-01-02"))
	}
	assert.False(t, c.IsHoliday(d(2023, 10, 9)), "columbus day is not a trading holiday")
}

func TestLiborCalendars(t *testing.T) {
	t.Parallel()

	base, err := calendar.Get("libor_gbp")
	require.NoError(t, err)
	assert.Equal(t, calendar.LiborBase, base.Name())
	// 2022: Christmas on Sunday observed Monday, Boxing Day moves to Tuesday.
	assert.True(t, base.IsHoliday(d(2022, 12, 26)))
	assert.True(t, base.IsHoliday(d(2022, 12, 27)))
	assert.True(t, base.IsHoliday(d(2023, 5, 1)))
	assert.True(t, base.IsHoliday(d(2023, 5, 29)))
	assert.True(t, base.IsHoliday(d(2023, 8, 28)))
	// New Year on Saturday 2022-01-01 is observed on Friday 2021-12-31.
	assert.True(t, base.IsHoliday(d(2021, 12, 31)))

	usd, err := calendar.Get("libor_usd_on")
	require.NoError(t, err)
	assert.True(t, usd.IsHoliday(d(2023, 10, 9)))
	assert.True(t, usd.IsHoliday(d(2023, 11, 11)))
	assert.False(t, usd.IsHoliday(d(2023, 11, 10)), "veterans day on saturday is not moved")

	eur, err := calendar.Get("libor_eur_on")
	require.NoError(t, err)
	assert.True(t, eur.IsHoliday(d(2023, 5, 1)))
	assert.True(t, eur.IsHoliday(d(2023, 4, 10)))
}

// Holiday membership and business-day status agree on every weekday.
func TestCalendarRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"anbima", "us_trading", "libor_base", "libor_eur_on", "libor_usd_on"} {
		c, err := calendar.GetRange(name, 2000, 2030)
		require.NoError(t, err)
		for day := d(1999, 1, 1); day.Year() <= 2030; day = day.AddDate(0, 0, 1) {
			if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
				assert.False(t, c.IsBusinessDay(day))
				continue
			}
			if c.IsHoliday(day) == c.IsBusinessDay(day) {
				t.Fatalf("%s: %s holiday=%v business=%v", name, day.Format("2006-01-02"), c.IsHoliday(day), c.IsBusinessDay(day))
			}
		}
	}
}

func TestRollsAndCounts(t *testing.T) {
	t.Parallel()

	c := calendar.MustGet("anbima")

	// Saturday 2019-06-01 -> Monday 2019-06-03.
	assert.Equal(t, d(2019, 6, 3), c.Following(d(2019, 6, 1)))
	assert.Equal(t, d(2019, 5, 31), c.Preceding(d(2019, 6, 1)))
	// Saturday 2019-08-31: following leaves the month.
	assert.Equal(t, d(2019, 8, 30), c.ModifiedFollowing(d(2019, 8, 31)))
	// Sunday 2019-09-01: preceding leaves the month.
	assert.Equal(t, d(2019, 9, 2), c.ModifiedPreceding(d(2019, 9, 1)))

	assert.Equal(t, d(2019, 3, 6), c.AddBusinessDays(d(2019, 3, 1), 1))
	assert.Equal(t, d(2019, 3, 1), c.AddBusinessDays(d(2019, 3, 6), -1))

	assert.Equal(t, 525, c.BusinessDaysBetween(d(2019, 5, 30), d(2021, 7, 1)))
	assert.Equal(t, -525, c.BusinessDaysBetween(d(2021, 7, 1), d(2019, 5, 30)))
	assert.Equal(t, 251, c.BusinessDaysBetween(d(2020, 1, 2), d(2021, 1, 4)))
	assert.Equal(t, 0, c.BusinessDaysBetween(d(2020, 1, 2), d(2020, 1, 2)))

	assert.Equal(t, d(2019, 8, 30), c.LastBusinessDayOfMonth(d(2019, 8, 10)))
	assert.True(t, c.IsEndOfMonth(d(2019, 8, 30)))
	assert.Equal(t, d(2019, 3, 1), c.FirstBusinessDayOfMonth(d(2019, 3, 20)))
}

func TestBusinessDaysMatchesLoop(t *testing.T) {
	t.Parallel()

	c := calendar.MustGet("us_trading")
	start := d(2010, 1, 1)
	for offset := 0; offset < 400; offset += 13 {
		end := start.AddDate(0, 0, offset)
		want := 0
		for x := start; x.Before(end); x = x.AddDate(0, 0, 1) {
			if c.IsBusinessDay(x) {
				want++
			}
		}
		assert.Equal(t, want, c.BusinessDaysBetween(start, end), end.Format("2006-01-02"))
	}
}

func TestNilCalendarIsStandard(t *testing.T) {
	t.Parallel()

	var c *calendar.Calendar
	assert.Equal(t, calendar.StandardName, c.Name())
	assert.True(t, c.IsBusinessDay(d(2023, 12, 25)))
	assert.False(t, c.IsBusinessDay(d(2023, 12, 24)))
	assert.Equal(t, 5, c.BusinessDaysBetween(d(2023, 12, 25), d(2024, 1, 1)))
}

func TestWeekmask(t *testing.T) {
	t.Parallel()

	w, err := calendar.ParseWeekmask("1111000")
	require.NoError(t, err)
	assert.Equal(t, "1111000", w.String())

	_, err = calendar.ParseWeekmask("11x1100")
	assert.Error(t, err)

	c := calendar.New("cdr_fourday", []time.Time{d(2024, 1, 1), d(2024, 1, 1)}, w)
	assert.Len(t, c.Holidays(), 1)
	assert.False(t, c.IsBusinessDay(d(2024, 1, 5)), "friday is off")
	assert.Equal(t, 3, c.BusinessDaysBetween(d(2024, 1, 1), d(2024, 1, 8)))
}
