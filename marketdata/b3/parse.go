package b3

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/logger"
)

// ParseCSV reads a bulletin with a header row naming the Columns. Comma and
// semicolon separated files are accepted. Rows that fail to parse are skipped
// with a warning.
func ParseCSV(r io.Reader) ([]Record, error) {
	const op = "b3.ParseCSV"
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.Precondition, op, nil, err)
	}
	cr := csv.NewReader(bytes.NewReader(raw))
	first, _, _ := bytes.Cut(raw, []byte("\n"))
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errs.Wrap(errs.Precondition, op, nil, err)
	}
	return parseRows(op, rows)
}

// ParseXLSX reads a bulletin sheet laid out like ParseCSV input. An empty
// sheet name selects the first sheet.
func ParseXLSX(path, sheet string) ([]Record, error) {
	const op = "b3.ParseXLSX"
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.Precondition, op, path, err)
	}
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errs.Wrap(errs.Precondition, op, sheet, err)
	}
	return parseRows(op, rows)
}

func parseRows(op string, rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, errs.New(errs.Precondition, op, nil, "empty bulletin")
	}
	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, need := range []string{"time_stamp", "maturity_code"} {
		if _, ok := cols[need]; !ok {
			return nil, errs.New(errs.Precondition, op, rows[0], "missing column %q", need)
		}
	}

	out := make([]Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec, err := fromCells(func(name string) string {
			if i, ok := cols[name]; ok && i < len(row) {
				return row[i]
			}
			return ""
		})
		if err != nil {
			logger.L.Warn("skipping bulletin row", "op", op, "row", n+2, "err", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
