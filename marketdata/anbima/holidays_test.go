package anbima_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/marketdata/anbima"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

var holidays2021 = []time.Time{
	d(2021, 1, 1), d(2021, 2, 15), d(2021, 2, 16), d(2021, 4, 2), d(2021, 4, 21), d(2021, 5, 1),
	d(2021, 6, 3), d(2021, 9, 7), d(2021, 10, 12), d(2021, 11, 2), d(2021, 11, 15), d(2021, 12, 25),
}

func writeSheet(t *testing.T, cells []any) string {
	t.Helper()
	f := excelize.NewFile()
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	path := filepath.Join(t.TempDir(), "feriados.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestLoadHolidays(t *testing.T) {
	t.Parallel()

	cells := []any{"Data"}
	for i, h := range holidays2021 {
		if i == 4 {
			cells = append(cells, h.Format("2006-01-02"))
			continue
		}
		cells = append(cells, h)
	}
	cells = append(cells, "Fonte: ANBIMA")
	path := writeSheet(t, cells)

	got, err := anbima.LoadHolidays(path, "")
	require.NoError(t, err)
	assert.Equal(t, holidays2021, got)

	cal, err := anbima.Calendar(path, "Sheet1")
	require.NoError(t, err)
	assert.True(t, cal.IsHoliday(d(2021, 4, 21)))
	assert.False(t, cal.IsBusinessDay(d(2021, 2, 16)))
	assert.True(t, cal.IsBusinessDay(d(2021, 2, 17)))
}

func TestLoadHolidaysErrors(t *testing.T) {
	t.Parallel()

	_, err := anbima.LoadHolidays(writeSheet(t, []any{"Data", "none"}), "")
	assert.ErrorIs(t, err, errs.ErrPrecondition)

	_, err = anbima.LoadHolidays(filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestDiff(t *testing.T) {
	t.Parallel()

	missing, extra, err := anbima.Diff(holidays2021, "anbima")
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.Empty(t, extra)

	published := append([]time.Time{}, holidays2021[:11]...)
	published = append(published, d(2021, 12, 24), d(2021, 12, 25))
	missing, extra, err = anbima.Diff(published, "anbima")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d(2021, 12, 24)}, missing)
	assert.Empty(t, extra)

	short := holidays2021[1:]
	_, extra, err = anbima.Diff(short, "anbima")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d(2021, 1, 1)}, extra)

	_, _, err = anbima.Diff(holidays2021, "nowhere")
	assert.ErrorIs(t, err, errs.ErrUnknownCalendar)
}
