package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/quantlib/utils"
)

func TestAddMonthClipsToMonthEnd(t *testing.T) {
	t.Parallel()

	assert.Equal(t, utils.Date(2019, 2, 28), utils.AddMonth(utils.Date(2019, 1, 31), 1))
	assert.Equal(t, utils.Date(2020, 2, 29), utils.AddMonth(utils.Date(2019, 8, 31), 6))
	assert.Equal(t, utils.Date(2018, 11, 30), utils.AddMonth(utils.Date(2019, 5, 31), -6))
	assert.Equal(t, utils.Date(2023, 2, 28), utils.AddYears(utils.Date(2024, 2, 29), -1))
}

func TestAdjacentDates(t *testing.T) {
	t.Parallel()

	dates := []time.Time{utils.Date(2020, 1, 1), utils.Date(2020, 6, 1), utils.Date(2021, 1, 1)}

	lo, hi := utils.AdjacentDates(utils.Date(2020, 3, 1), dates)
	assert.Equal(t, dates[0], lo)
	assert.Equal(t, dates[1], hi)

	lo, hi = utils.AdjacentDates(utils.Date(2025, 1, 1), dates)
	assert.Equal(t, dates[1], lo)
	assert.Equal(t, dates[2], hi)

	assert.Panics(t, func() { utils.AdjacentDates(utils.Date(2020, 1, 1), dates[:1]) })
	assert.Equal(t, 1, utils.SearchDate(dates, utils.Date(2020, 6, 1)))
}

func TestParseDateAndDays(t *testing.T) {
	t.Parallel()

	got, err := utils.ParseDate("2019-05-30")
	require.NoError(t, err)
	assert.Equal(t, utils.Date(2019, 5, 30), got)

	_, err = utils.ParseDate("30/05/2019")
	assert.Error(t, err)

	assert.Equal(t, 366, utils.Days(utils.Date(2020, 1, 1), utils.Date(2021, 1, 1)))
	assert.Equal(t, -1, utils.Days(utils.Date(2020, 1, 2), utils.Date(2020, 1, 1)))
}

func TestRounding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.23457, utils.RoundTo(1.234567, 5))
	assert.Equal(t, 1.23456, utils.TruncateTo(1.234567, 5))
	assert.Equal(t, -1.2345, utils.TruncateTo(-1.23459, 4))
	assert.True(t, utils.IsEndOfMonth(utils.Date(2024, 2, 29)))
	assert.False(t, utils.IsLeapYear(2100))
}
