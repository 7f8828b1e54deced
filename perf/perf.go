// Package perf measures the performance of index level series: annualised
// return and risk, drawdowns, calendar tables and behaviour in the tail
// events of a benchmark.
package perf

import (
	"math"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
)

// Frequency is the sampling frequency of an index series.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// Factor is the number of observations per year.
func (f Frequency) Factor() (float64, error) {
	switch Frequency(strings.ToLower(string(f))) {
	case Daily, "":
		return 252, nil
	case Weekly:
		return 52, nil
	case Monthly:
		return 12, nil
	}
	return 0, errs.New(errs.Precondition, "perf.Frequency.Factor", f, "unknown frequency %q", f)
}

// Row is the headline performance of one index series.
type Row struct {
	Name       string
	Frequency  Frequency
	Return     float64
	Vol        float64
	Sharpe     float64
	Sortino    float64
	MaxDD      float64
	MaxDDToVol float64
	Start, End time.Time
	Obs        int
}

// PerfTable summarises an index of cumulative excess returns. Missing values
// are dropped. Returns compound over the sample; volatility is the sample
// standard deviation of log returns; Sortino divides by the deviation of the
// negative log returns.
func PerfTable(s *series.Series, freq Frequency) (Row, error) {
	const op = "perf.PerfTable"
	af, err := freq.Factor()
	if err != nil {
		return Row{}, err
	}
	s = s.DropNaN()
	n := s.Len()
	if n < 3 {
		return Row{}, errs.New(errs.Precondition, op, s.Name, "need at least three observations, got %d", n)
	}
	r := Row{Name: s.Name, Frequency: freq, Start: s.Dates[0], End: s.Dates[n-1], Obs: n}
	first, last := s.Values[0], s.Values[n-1]
	r.Return = math.Pow(last/first, af/float64(n-1)) - 1

	logs := logDiffs(s.Values, 1)
	sd, _ := stats.StandardDeviationSample(logs)
	r.Vol = sd * math.Sqrt(af)
	r.Sharpe = r.Return / r.Vol

	var neg []float64
	for _, x := range logs {
		if x < 0 {
			neg = append(neg, x)
		}
	}
	r.Sortino = math.NaN()
	if len(neg) > 1 {
		dsd, _ := stats.StandardDeviationSample(neg)
		r.Sortino = r.Return / (math.Sqrt(af) * dsd)
	}
	r.MaxDD = MaxDrawdown(s).Depth
	r.MaxDDToVol = r.MaxDD / r.Vol
	return r, nil
}

// PerfTables runs PerfTable on every column. sameWindow first restricts the
// frame to the dates where every column has a value.
func PerfTables(f *series.Frame, freq Frequency, sameWindow bool) ([]Row, error) {
	if sameWindow {
		f = f.DropNaNRows()
	}
	out := make([]Row, 0, f.Cols())
	for j := range f.Columns {
		r, err := PerfTable(f.Series(j), freq)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// logDiffs is log(x[i]/x[i-h]) for i >= h.
func logDiffs(x []float64, h int) []float64 {
	if len(x) <= h {
		return nil
	}
	out := make([]float64, 0, len(x)-h)
	for i := h; i < len(x); i++ {
		out = append(out, math.Log(x[i]/x[i-h]))
	}
	return out
}
