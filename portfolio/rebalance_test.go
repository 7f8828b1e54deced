package portfolio_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/quantlib/portfolio"
	"github.com/meenmo/quantlib/series"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func weekdays(from, to time.Time) []time.Time {
	var out []time.Time
	for t := from; !t.After(to); t = t.AddDate(0, 0, 1) {
		if t.Weekday() != time.Saturday && t.Weekday() != time.Sunday {
			out = append(out, t)
		}
	}
	return out
}

// priceFrame fills each column with f(column, row).
func priceFrame(dates []time.Time, cols []string, f func(j, i int) float64) *series.Frame {
	fr := series.NewFrame(dates, cols)
	for i := range dates {
		for j := range cols {
			fr.Set(i, j, f(j, i))
		}
	}
	return fr
}

func wavy(j, i int) float64 {
	return 100 * math.Exp(0.01*math.Sin(float64(i*(j+2)))+0.0002*float64(i))
}

func TestRebalanceCodes(t *testing.T) {
	t.Parallel()

	index := weekdays(d(2020, 1, 1), d(2020, 12, 31))
	monthEnds := []time.Time{
		d(2020, 1, 31), d(2020, 2, 28), d(2020, 3, 31), d(2020, 4, 30),
		d(2020, 5, 29), d(2020, 6, 30), d(2020, 7, 31), d(2020, 8, 31),
		d(2020, 9, 30), d(2020, 10, 30), d(2020, 11, 30), d(2020, 12, 31),
	}

	tests := []struct {
		name string
		s    portfolio.Schedule
		want []time.Time
	}{
		{"month end", portfolio.Schedule{Code: "ME"}, monthEnds},
		{"alias", portfolio.Schedule{Code: "m"}, monthEnds},
		{"default", portfolio.Schedule{}, monthEnds},
		{"unknown", portfolio.Schedule{Code: "ZZ"}, monthEnds},
		{"month start snaps forward", portfolio.Schedule{Code: "MS"}, []time.Time{
			d(2020, 1, 1), d(2020, 2, 3), d(2020, 3, 2), d(2020, 4, 1),
			d(2020, 5, 1), d(2020, 6, 1), d(2020, 7, 1), d(2020, 8, 3),
			d(2020, 9, 1), d(2020, 10, 1), d(2020, 11, 2), d(2020, 12, 1),
		}},
		{"quarter start", portfolio.Schedule{Code: "QS"}, []time.Time{
			d(2020, 1, 1), d(2020, 4, 1), d(2020, 7, 1), d(2020, 10, 1),
		}},
		{"quarter end", portfolio.Schedule{Code: "QE"}, []time.Time{
			d(2020, 3, 31), d(2020, 6, 30), d(2020, 9, 30), d(2020, 12, 31),
		}},
		{"semester end", portfolio.Schedule{Code: "SE"}, []time.Time{d(2020, 6, 30), d(2020, 12, 31)}},
		{"semester start", portfolio.Schedule{Code: "SS"}, []time.Time{d(2020, 1, 1), d(2020, 7, 1)}},
		{"year end", portfolio.Schedule{Code: "YE"}, []time.Time{d(2020, 12, 31)}},
		{"year start", portfolio.Schedule{Code: "YS"}, []time.Time{d(2020, 1, 1)}},
		{"months", portfolio.Schedule{Months: []time.Month{time.March, time.September}}, []time.Time{
			d(2020, 3, 31), d(2020, 9, 30),
		}},
		{"explicit dates snap to closest", portfolio.Schedule{Dates: []time.Time{
			d(2020, 2, 1), d(2020, 5, 15), d(2021, 3, 1),
		}}, []time.Time{d(2020, 1, 31), d(2020, 5, 15)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, portfolio.RebalanceDates(index, tt.s))
		})
	}
}

func TestRebalanceWeekly(t *testing.T) {
	t.Parallel()

	index := weekdays(d(2020, 1, 1), d(2020, 12, 31))
	fridays := portfolio.RebalanceDates(index, portfolio.Schedule{Code: "WF"})
	require.Len(t, fridays, 52)
	assert.Equal(t, d(2020, 1, 3), fridays[0])
	assert.Equal(t, d(2020, 12, 25), fridays[51])
	for _, f := range fridays {
		assert.Equal(t, time.Friday, f.Weekday())
	}

	mondays := portfolio.RebalanceDates(index, portfolio.Schedule{Code: "WM"})
	assert.Equal(t, d(2020, 1, 6), mondays[0])
	for _, m := range mondays {
		assert.Equal(t, time.Monday, m.Weekday())
	}

	assert.Empty(t, portfolio.RebalanceDates(nil, portfolio.Schedule{Code: "ME"}))
}
