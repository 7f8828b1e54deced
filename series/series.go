// Package series holds the dated series and panel types shared by the tracker,
// portfolio, signal and performance packages. Missing values are NaN.
package series

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/utils"
)

// Series is a named, strictly increasing date index with one value per date.
type Series struct {
	Name   string
	Dates  []time.Time
	Values []float64
}

// New validates lengths and ordering. Dates are truncated to the day.
func New(name string, dates []time.Time, values []float64) (*Series, error) {
	if len(dates) != len(values) {
		return nil, errs.New(errs.Precondition, "series.New", name, "%d dates for %d values", len(dates), len(values))
	}
	ds := make([]time.Time, len(dates))
	for i, d := range dates {
		ds[i] = utils.Truncate(d)
		if i > 0 && !ds[i].After(ds[i-1]) {
			return nil, errs.New(errs.Precondition, "series.New", name, "dates not strictly increasing at %s", ds[i].Format(utils.DateLayout))
		}
	}
	vs := make([]float64, len(values))
	copy(vs, values)
	return &Series{Name: name, Dates: ds, Values: vs}, nil
}

// MustNew is New for fixtures. It panics on error.
func MustNew(name string, dates []time.Time, values []float64) *Series {
	s, err := New(name, dates, values)
	if err != nil {
		panic(err)
	}
	return s
}

// FromMap sorts the map keys into a series.
func FromMap(name string, m map[time.Time]float64) *Series {
	dates := make([]time.Time, 0, len(m))
	for d := range m {
		dates = append(dates, utils.Truncate(d))
	}
	utils.SortDates(dates)
	s := &Series{Name: name, Dates: dates, Values: make([]float64, len(dates))}
	for d, v := range m {
		i, _ := s.Index(d)
		s.Values[i] = v
	}
	return s
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Dates)
}

func (s *Series) String() string {
	if s.Len() == 0 {
		return fmt.Sprintf("Series(%s, empty)", s.Name)
	}
	return fmt.Sprintf("Series(%s, %d obs, %s..%s)", s.Name, s.Len(),
		s.Dates[0].Format(utils.DateLayout), s.Dates[s.Len()-1].Format(utils.DateLayout))
}

// Clone returns a deep copy.
func (s *Series) Clone() *Series {
	out := &Series{Name: s.Name, Dates: make([]time.Time, s.Len()), Values: make([]float64, s.Len())}
	copy(out.Dates, s.Dates)
	copy(out.Values, s.Values)
	return out
}

// Index returns the position of d and whether it is present.
func (s *Series) Index(d time.Time) (int, bool) {
	d = utils.Truncate(d)
	i := utils.SearchDate(s.Dates, d)
	return i, i < s.Len() && s.Dates[i].Equal(d)
}

// Value returns the value on d, or NaN when d is not in the index.
func (s *Series) Value(d time.Time) float64 {
	if i, ok := s.Index(d); ok {
		return s.Values[i]
	}
	return math.NaN()
}

// AsOf returns the last non-NaN value on or before d.
func (s *Series) AsOf(d time.Time) float64 {
	d = utils.Truncate(d)
	i := sort.Search(s.Len(), func(i int) bool { return s.Dates[i].After(d) }) - 1
	for ; i >= 0; i-- {
		if !math.IsNaN(s.Values[i]) {
			return s.Values[i]
		}
	}
	return math.NaN()
}

// FirstValid is the index of the first non-NaN value, or -1.
func (s *Series) FirstValid() int {
	for i, v := range s.Values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

// LastValid is the index of the last non-NaN value, or -1.
func (s *Series) LastValid() int {
	for i := s.Len() - 1; i >= 0; i-- {
		if !math.IsNaN(s.Values[i]) {
			return i
		}
	}
	return -1
}

// Between keeps the observations with start <= date <= end.
func (s *Series) Between(start, end time.Time) *Series {
	lo := utils.SearchDate(s.Dates, utils.Truncate(start))
	hi := sort.Search(s.Len(), func(i int) bool { return s.Dates[i].After(utils.Truncate(end)) })
	if hi < lo {
		hi = lo
	}
	return s.slice(lo, hi)
}

func (s *Series) slice(lo, hi int) *Series {
	out := &Series{Name: s.Name, Dates: make([]time.Time, hi-lo), Values: make([]float64, hi-lo)}
	copy(out.Dates, s.Dates[lo:hi])
	copy(out.Values, s.Values[lo:hi])
	return out
}

// DropNaN removes missing observations.
func (s *Series) DropNaN() *Series {
	out := &Series{Name: s.Name}
	for i, v := range s.Values {
		if !math.IsNaN(v) {
			out.Dates = append(out.Dates, s.Dates[i])
			out.Values = append(out.Values, v)
		}
	}
	return out
}

// FFill carries the last valid value forward over NaNs.
func (s *Series) FFill() *Series {
	out := s.Clone()
	ffill(out.Values)
	return out
}

func ffill(v []float64) {
	last := math.NaN()
	for i, x := range v {
		if math.IsNaN(x) {
			v[i] = last
		} else {
			last = x
		}
	}
}

// Reindex maps the series onto dates. Dates not present become NaN.
func (s *Series) Reindex(dates []time.Time) *Series {
	out := &Series{Name: s.Name, Dates: make([]time.Time, len(dates)), Values: make([]float64, len(dates))}
	for i, d := range dates {
		out.Dates[i] = utils.Truncate(d)
		out.Values[i] = s.Value(d)
	}
	return out
}

// Map applies f to every value.
func (s *Series) Map(f func(float64) float64) *Series {
	out := s.Clone()
	for i, v := range out.Values {
		out.Values[i] = f(v)
	}
	return out
}

// Shift moves values n positions forward (n > 0) or backward, padding with NaN.
func (s *Series) Shift(n int) *Series {
	out := s.Clone()
	shift(out.Values, s.Values, n)
	return out
}

func shift(dst, src []float64, n int) {
	for i := range dst {
		j := i - n
		if j < 0 || j >= len(src) {
			dst[i] = math.NaN()
		} else {
			dst[i] = src[j]
		}
	}
}

// Diff is x[t] - x[t-n].
func (s *Series) Diff(n int) *Series {
	return s.lagged(n, func(cur, prev float64) float64 { return cur - prev })
}

// PctChange is x[t]/x[t-n] - 1.
func (s *Series) PctChange(n int) *Series {
	return s.lagged(n, func(cur, prev float64) float64 { return cur/prev - 1 })
}

// LogReturns is log(x[t]/x[t-n]).
func (s *Series) LogReturns(n int) *Series {
	return s.lagged(n, func(cur, prev float64) float64 { return math.Log(cur / prev) })
}

func (s *Series) lagged(n int, f func(cur, prev float64) float64) *Series {
	out := s.Clone()
	for i := range out.Values {
		if i-n < 0 || i-n >= s.Len() {
			out.Values[i] = math.NaN()
			continue
		}
		out.Values[i] = f(s.Values[i], s.Values[i-n])
	}
	return out
}

// Rebase scales the series so the first valid value equals base.
func (s *Series) Rebase(base float64) *Series {
	i := s.FirstValid()
	if i < 0 {
		return s.Clone()
	}
	k := base / s.Values[i]
	return s.Map(func(v float64) float64 { return v * k })
}
