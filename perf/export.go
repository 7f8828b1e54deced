package perf

import (
	"io"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/meenmo/quantlib/errs"
)

const defaultSheet = "Sheet1"

// Workbook collects performance tables as xlsx sheets.
type Workbook struct {
	f    *excelize.File
	used bool
}

func NewWorkbook() *Workbook {
	return &Workbook{f: excelize.NewFile()}
}

// AddPerf writes one line per performance row.
func (w *Workbook) AddPerf(sheet string, rows []Row) error {
	lines := [][]any{{"name", "frequency", "excess_return", "volatility", "sharpe", "sortino", "max_dd", "max_dd_to_vol", "from_date", "to_date", "obs"}}
	for _, r := range rows {
		lines = append(lines, []any{r.Name, string(r.Frequency), cell(r.Return), cell(r.Vol), cell(r.Sharpe),
			cell(r.Sortino), cell(r.MaxDD), cell(r.MaxDDToVol), r.Start, r.End, r.Obs})
	}
	return w.write(sheet, lines)
}

// AddTail writes the summary of a tail risk table, one column per index.
func (w *Workbook) AddTail(sheet string, t *TailTable) error {
	header := []any{t.Label}
	for _, r := range t.Rows {
		header = append(header, r.Name)
	}
	lines := [][]any{header}
	field := func(name string, get func(TailRow) any) {
		line := []any{name}
		for _, r := range t.Rows {
			line = append(line, get(r))
		}
		lines = append(lines, line)
	}
	field("mean_reactivity", func(r TailRow) any { return cell(r.MeanReactivity) })
	field("median_reactivity", func(r TailRow) any { return cell(r.MedianReactivity) })
	field("reliability", func(r TailRow) any { return cell(r.Reliability) })
	field("convexity(80%-50%)", func(r TailRow) any { return cell(r.Convexity) })
	field("tail_beta", func(r TailRow) any { return cell(r.TailBeta) })
	field("avg_carry", func(r TailRow) any { return cell(r.AvgCarry) })
	if len(t.Recovery) > 0 {
		field("recovery_carry", func(r TailRow) any { return cell(r.RecoveryCarry) })
	}
	field("start_date", func(r TailRow) any { return r.Start })
	field("end_date", func(r TailRow) any { return r.End })
	return w.write(sheet, lines)
}

// AddMonthly writes a calendar of monthly returns with the yearly summary.
func (w *Workbook) AddMonthly(sheet string, rows []YearRow) error {
	header := []any{"year"}
	for m := 1; m <= 12; m++ {
		header = append(header, strconv.Itoa(m))
	}
	header = append(header, "ret", "vol", "sharpe")
	lines := [][]any{header}
	for _, r := range rows {
		line := []any{r.Year}
		for _, v := range r.Months {
			line = append(line, cell(v))
		}
		lines = append(lines, append(line, cell(r.Return), cell(r.Vol), cell(r.Sharpe)))
	}
	return w.write(sheet, lines)
}

// Write streams the workbook.
func (w *Workbook) Write(out io.Writer) error {
	if err := w.trim(); err != nil {
		return err
	}
	if err := w.f.Write(out); err != nil {
		return errs.Wrap(errs.UnsupportedOperation, "perf.Workbook.Write", nil, err)
	}
	return nil
}

// SaveAs writes the workbook to path and closes it.
func (w *Workbook) SaveAs(path string) error {
	if err := w.trim(); err != nil {
		return err
	}
	if err := w.f.SaveAs(path); err != nil {
		return errs.Wrap(errs.UnsupportedOperation, "perf.Workbook.SaveAs", path, err)
	}
	return w.f.Close()
}

func (w *Workbook) write(sheet string, lines [][]any) error {
	const op = "perf.Workbook.write"
	if _, err := w.f.NewSheet(sheet); err != nil {
		return errs.Wrap(errs.Precondition, op, sheet, err)
	}
	w.used = w.used || sheet == defaultSheet
	for i, line := range lines {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errs.Wrap(errs.Precondition, op, sheet, err)
		}
		if err := w.f.SetSheetRow(sheet, addr, &line); err != nil {
			return errs.Wrap(errs.Precondition, op, sheet, err)
		}
	}
	return nil
}

// trim drops the empty sheet every new file starts with.
func (w *Workbook) trim() error {
	if w.used || len(w.f.GetSheetList()) < 2 {
		return nil
	}
	if err := w.f.DeleteSheet(defaultSheet); err != nil {
		return errs.Wrap(errs.UnsupportedOperation, "perf.Workbook", defaultSheet, err)
	}
	w.used = true
	return nil
}

// cell leaves NaN and infinite values blank.
func cell(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
