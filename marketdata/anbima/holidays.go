// Package anbima loads the national holiday list published by ANBIMA as a
// spreadsheet and checks it against the rule based calendar.
package anbima

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/meenmo/quantlib/calendar"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/logger"
	"github.com/meenmo/quantlib/utils"
)

var layouts = []string{utils.DateLayout, "02/01/2006", "1/2/06", "01-02-06"}

// LoadHolidays reads the dates in the first column of sheet (the first sheet
// when empty). Cells that are not dates, such as headers and the footnote
// under the list, are skipped.
func LoadHolidays(path, sheet string) ([]time.Time, error) {
	const op = "anbima.LoadHolidays"
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.Precondition, op, path, err)
	}
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errs.Wrap(errs.Precondition, op, sheet, err)
	}

	var out []time.Time
	for n, row := range rows {
		if len(row) == 0 {
			continue
		}
		d, ok := cellDate(row[0])
		if !ok {
			logger.L.Debug("skipping holiday cell", "op", op, "row", n+1, "value", row[0])
			continue
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, errs.New(errs.Precondition, op, path, "no holiday dates in sheet %q", sheet)
	}
	utils.SortDates(out)
	return out, nil
}

// cellDate accepts Excel serial numbers and the usual text layouts.
func cellDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return utils.Truncate(t), true
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return utils.Truncate(t), true
		}
	}
	return time.Time{}, false
}

// Calendar wraps the loaded holidays as a Monday to Friday calendar.
func Calendar(path, sheet string) (*calendar.Calendar, error) {
	days, err := LoadHolidays(path, sheet)
	if err != nil {
		return nil, err
	}
	return calendar.New("cdr_anbima_file", days, calendar.DefaultWeekmask), nil
}

// Diff compares published holidays with the named rule based calendar over
// the years the published list covers. Missing are published dates the rules
// do not produce; Extra are rule dates absent from the list.
func Diff(published []time.Time, name string) (missing, extra []time.Time, err error) {
	if len(published) == 0 {
		return nil, nil, errs.New(errs.Precondition, "anbima.Diff", name, "no published holidays")
	}
	y0, y1 := published[0].Year(), published[len(published)-1].Year()
	cal, err := calendar.GetRange(name, y0, y1)
	if err != nil {
		return nil, nil, err
	}
	pub := calendar.New("published", published, calendar.DefaultWeekmask)
	for _, d := range published {
		if !cal.IsHoliday(d) {
			missing = append(missing, d)
		}
	}
	for _, d := range cal.Holidays() {
		if d.Year() >= y0 && d.Year() <= y1 && !pub.IsHoliday(d) {
			extra = append(extra, d)
		}
	}
	return missing, extra, nil
}
