package utils

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DateLayout is the ISO layout used for dates in JSON and CSV inputs.
const DateLayout = "2006-01-02"

// Date builds a UTC midnight date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the clock part of t and moves it to UTC.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SortDates sorts a slice of time.Time in ascending order.
func SortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
}

// AdjacentDates returns the two dates from a sorted date slice that bracket target.
//
// It assumes dates is sorted in ascending order and has at least two elements.
// If target is outside the provided range, it returns the nearest boundary pair.
func AdjacentDates(target time.Time, dates []time.Time) (time.Time, time.Time) {
	if len(dates) < 2 {
		panic("AdjacentDates: need at least 2 dates")
	}

	// First index with dates[i] >= target.
	i := sort.Search(len(dates), func(i int) bool {
		return !dates[i].Before(target)
	})

	if i <= 0 {
		return dates[0], dates[1]
	}
	if i >= len(dates) {
		return dates[len(dates)-2], dates[len(dates)-1]
	}
	return dates[i-1], dates[i]
}

// SearchDate returns the index of the first date >= target.
func SearchDate(dates []time.Time, target time.Time) int {
	return sort.Search(len(dates), func(i int) bool {
		return !dates[i].Before(target)
	})
}

// ParseDate converts YYYY-MM-DD to a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDate: %w", err)
	}
	return t, nil
}

// Days returns the number of calendar days from start to end.
func Days(start, end time.Time) int {
	return int(Truncate(end).Sub(Truncate(start)).Hours() / 24)
}

// AddMonth behaves like Excel's EDATE: the day is clipped to the target month's length.
func AddMonth(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	last := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// AddYears shifts t by whole years, clipping Feb 29 to Feb 28.
func AddYears(t time.Time, years int) time.Time {
	return AddMonth(t, 12*years)
}

// EndOfMonth returns the last calendar day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// IsEndOfMonth reports whether t is the last calendar day of its month.
func IsEndOfMonth(t time.Time) bool {
	return t.Day() == EndOfMonth(t).Day()
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// RoundTo rounds a float to the specified decimal places.
func RoundTo(val float64, decimals uint32) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}

// TruncateTo drops digits beyond the given decimal places, toward zero.
func TruncateTo(val float64, decimals uint32) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Trunc(val*pow) / pow
}
