package series

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/utils"
)

// Frame is a dates x columns panel stored row-major.
type Frame struct {
	Dates   []time.Time
	Columns []string
	Data    [][]float64
}

// NewFrame allocates a NaN-filled frame.
func NewFrame(dates []time.Time, columns []string) *Frame {
	f := &Frame{
		Dates:   make([]time.Time, len(dates)),
		Columns: make([]string, len(columns)),
		Data:    make([][]float64, len(dates)),
	}
	copy(f.Columns, columns)
	for i, d := range dates {
		f.Dates[i] = utils.Truncate(d)
		row := make([]float64, len(columns))
		for j := range row {
			row[j] = math.NaN()
		}
		f.Data[i] = row
	}
	return f
}

// Align joins series on the union of their dates. Column names are the series names.
func Align(ss ...*Series) *Frame {
	seen := make(map[int64]time.Time)
	names := make([]string, len(ss))
	for j, s := range ss {
		names[j] = s.Name
		for _, d := range s.Dates {
			seen[d.Unix()] = d
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	utils.SortDates(dates)

	f := NewFrame(dates, names)
	for j, s := range ss {
		for k, d := range s.Dates {
			i, _ := f.Index(d)
			f.Data[i][j] = s.Values[k]
		}
	}
	return f
}

// FromDense wraps a gonum matrix with an index and column names.
func FromDense(dates []time.Time, columns []string, m mat.Matrix) (*Frame, error) {
	r, c := m.Dims()
	if r != len(dates) || c != len(columns) {
		return nil, errs.New(errs.Precondition, "series.FromDense", nil, "matrix is %dx%d, index is %dx%d", r, c, len(dates), len(columns))
	}
	f := NewFrame(dates, columns)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			f.Data[i][j] = m.At(i, j)
		}
	}
	return f, nil
}

func (f *Frame) Rows() int { return len(f.Dates) }
func (f *Frame) Cols() int { return len(f.Columns) }

func (f *Frame) At(i, j int) float64     { return f.Data[i][j] }
func (f *Frame) Set(i, j int, v float64) { f.Data[i][j] = v }

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	out := NewFrame(f.Dates, f.Columns)
	for i, row := range f.Data {
		copy(out.Data[i], row)
	}
	return out
}

// Index returns the row of d and whether it is present.
func (f *Frame) Index(d time.Time) (int, bool) {
	d = utils.Truncate(d)
	i := utils.SearchDate(f.Dates, d)
	return i, i < len(f.Dates) && f.Dates[i].Equal(d)
}

// ColIndex returns the position of a column name, or -1.
func (f *Frame) ColIndex(name string) int {
	for j, c := range f.Columns {
		if c == name {
			return j
		}
	}
	return -1
}

// Col copies column j.
func (f *Frame) Col(j int) []float64 {
	out := make([]float64, f.Rows())
	for i, row := range f.Data {
		out[i] = row[j]
	}
	return out
}

// Row copies row i.
func (f *Frame) Row(i int) []float64 {
	out := make([]float64, f.Cols())
	copy(out, f.Data[i])
	return out
}

// Series extracts column j.
func (f *Frame) Series(j int) *Series {
	dates := make([]time.Time, f.Rows())
	copy(dates, f.Dates)
	return &Series{Name: f.Columns[j], Dates: dates, Values: f.Col(j)}
}

// SetSeries writes s into column j on matching dates.
func (f *Frame) SetSeries(j int, s *Series) {
	for i, d := range f.Dates {
		f.Data[i][j] = s.Value(d)
	}
}

// Select keeps the named columns in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := NewFrame(f.Dates, names)
	for k, n := range names {
		j := f.ColIndex(n)
		if j < 0 {
			return nil, errs.New(errs.Precondition, "series.Frame.Select", n, "no column %q", n)
		}
		for i := range f.Data {
			out.Data[i][k] = f.Data[i][j]
		}
	}
	return out, nil
}

// SliceRows keeps rows [lo, hi).
func (f *Frame) SliceRows(lo, hi int) *Frame {
	out := NewFrame(f.Dates[lo:hi], f.Columns)
	for i := lo; i < hi; i++ {
		copy(out.Data[i-lo], f.Data[i])
	}
	return out
}

// Between keeps rows with start <= date <= end.
func (f *Frame) Between(start, end time.Time) *Frame {
	lo := utils.SearchDate(f.Dates, utils.Truncate(start))
	hi := lo
	for hi < len(f.Dates) && !f.Dates[hi].After(utils.Truncate(end)) {
		hi++
	}
	return f.SliceRows(lo, hi)
}

// Reindex maps the frame onto dates; new dates are NaN.
func (f *Frame) Reindex(dates []time.Time) *Frame {
	out := NewFrame(dates, f.Columns)
	for i, d := range out.Dates {
		if k, ok := f.Index(d); ok {
			copy(out.Data[i], f.Data[k])
		}
	}
	return out
}

// FFill carries each column's last valid value forward.
func (f *Frame) FFill() *Frame {
	out := f.Clone()
	for j := range out.Columns {
		last := math.NaN()
		for i := range out.Data {
			if math.IsNaN(out.Data[i][j]) {
				out.Data[i][j] = last
			} else {
				last = out.Data[i][j]
			}
		}
	}
	return out
}

// Shift moves rows n positions forward, padding with NaN.
func (f *Frame) Shift(n int) *Frame {
	out := f.Clone()
	for i := range out.Data {
		k := i - n
		for j := range out.Columns {
			if k < 0 || k >= f.Rows() {
				out.Data[i][j] = math.NaN()
			} else {
				out.Data[i][j] = f.Data[k][j]
			}
		}
	}
	return out
}

// LogReturns is log(x[t]/x[t-h]) per column.
func (f *Frame) LogReturns(h int) *Frame {
	return f.MapSeries(func(s *Series) *Series { return s.LogReturns(h) })
}

// PctChange is x[t]/x[t-h] - 1 per column.
func (f *Frame) PctChange(h int) *Frame {
	return f.MapSeries(func(s *Series) *Series { return s.PctChange(h) })
}

// MapSeries applies a series transform to each column.
func (f *Frame) MapSeries(fn func(*Series) *Series) *Frame {
	out := NewFrame(f.Dates, f.Columns)
	for j := range f.Columns {
		out.SetSeries(j, fn(f.Series(j)))
	}
	return out
}

// DropNaNRows removes rows holding any NaN.
func (f *Frame) DropNaNRows() *Frame {
	var keep []int
	for i, row := range f.Data {
		if !hasNaN(row) {
			keep = append(keep, i)
		}
	}
	dates := make([]time.Time, len(keep))
	for k, i := range keep {
		dates[k] = f.Dates[i]
	}
	out := NewFrame(dates, f.Columns)
	for k, i := range keep {
		copy(out.Data[k], f.Data[i])
	}
	return out
}

// Dense copies the values into a gonum matrix.
func (f *Frame) Dense() *mat.Dense {
	if f.Rows() == 0 || f.Cols() == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(f.Rows(), f.Cols(), nil)
	for i, row := range f.Data {
		m.SetRow(i, row)
	}
	return m
}
