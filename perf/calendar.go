package perf

import (
	"math"
	"strings"
	"time"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/utils"
)

// MonthlyReturns samples s on the last observation of each calendar month,
// dated at the month end, and returns the month over month changes.
func MonthlyReturns(s *series.Series) *series.Series {
	s = s.DropNaN()
	var dates []time.Time
	var last []float64
	for i, d := range s.Dates {
		eom := utils.EndOfMonth(d)
		if n := len(dates); n > 0 && dates[n-1].Equal(eom) {
			last[n-1] = s.Values[i]
			continue
		}
		dates = append(dates, eom)
		last = append(last, s.Values[i])
	}
	out := &series.Series{Name: s.Name}
	for i := 1; i < len(dates); i++ {
		out.Dates = append(out.Dates, dates[i])
		out.Values = append(out.Values, last[i]/last[i-1]-1)
	}
	return out
}

// YearRow is one calendar year of monthly returns. Months without a return
// are NaN. Return compounds the available months to a yearly rate and Vol is
// their population standard deviation annualised.
type YearRow struct {
	Year   int
	Months [12]float64
	Return float64
	Vol    float64
	Sharpe float64
}

// MonthlyTable is the calendar of monthly returns of s with a yearly
// summary per row.
func MonthlyTable(s *series.Series) []YearRow {
	m := MonthlyReturns(s)
	var out []YearRow
	var year []float64
	flush := func() {
		if len(out) == 0 {
			return
		}
		r := &out[len(out)-1]
		prod := 1.0
		for _, v := range year {
			prod *= 1 + v
		}
		r.Return = math.Pow(prod, 12/float64(len(year))) - 1
		r.Vol = populationStd(year) * math.Sqrt(12)
		r.Sharpe = r.Return / r.Vol
		year = year[:0]
	}
	for i, d := range m.Dates {
		if len(out) == 0 || out[len(out)-1].Year != d.Year() {
			flush()
			row := YearRow{Year: d.Year()}
			for k := range row.Months {
				row.Months[k] = math.NaN()
			}
			out = append(out, row)
		}
		out[len(out)-1].Months[d.Month()-1] = m.Values[i]
		year = append(year, m.Values[i])
	}
	flush()
	return out
}

// YearlySharpe is the Sharpe ratio of every calendar year for each column,
// keyed by year.
func YearlySharpe(f *series.Frame) map[string]map[int]float64 {
	out := make(map[string]map[int]float64, f.Cols())
	for j, name := range f.Columns {
		rows := MonthlyTable(f.Series(j))
		byYear := make(map[int]float64, len(rows))
		for _, r := range rows {
			byYear[r.Year] = r.Sharpe
		}
		out[name] = byYear
	}
	return out
}

// Summary describes a sample the way a statistics package does: count,
// mean, sample standard deviation, extremes and quartiles.
type Summary struct {
	Name                  string
	Frequency             Frequency
	Count                 int
	Mean, Std             float64
	Min, Q25, Median, Q75 float64
	Max                   float64
	Start, End            time.Time
}

func describe(x []float64) Summary {
	x = finite(x)
	s := Summary{Count: len(x), Mean: mean(x), Std: sampleStd(x), Q25: quantile(x, 0.25), Median: quantile(x, 0.5), Q75: quantile(x, 0.75)}
	s.Min, s.Max = math.NaN(), math.NaN()
	for i, v := range x {
		if i == 0 || v < s.Min {
			s.Min = v
		}
		if i == 0 || v > s.Max {
			s.Max = v
		}
	}
	return s
}

// RollingSharpe summarises the three year rolling Sharpe ratio of s: the
// annualised three year return over the rolling three year volatility of
// log returns.
func RollingSharpe(s *series.Series, freq Frequency) (Summary, error) {
	af, err := freq.Factor()
	if err != nil {
		return Summary{}, err
	}
	w := int(af * 3)
	if s.Len() <= w {
		return Summary{}, errs.New(errs.Precondition, "perf.RollingSharpe", s.Len(), "need more than %d observations", w)
	}
	ret := s.PctChange(w).Map(func(v float64) float64 { return math.Pow(1+v, 1.0/3) - 1 })
	vol := s.LogReturns(1).RollingStd(w).Map(func(v float64) float64 { return v * math.Sqrt(af) })
	ratio := make([]float64, s.Len())
	for i := range ratio {
		ratio[i] = ret.Values[i] / vol.Values[i]
	}
	out := describe(ratio)
	out.Name, out.Frequency = s.Name, freq
	out.Start, out.End = s.Dates[0], s.Dates[s.Len()-1]
	return out, nil
}

// Metric summarises a bucket of returns.
type Metric string

const (
	MetricMean   Metric = "mean"
	MetricMedian Metric = "median"
	MetricSharpe Metric = "sharpe"
	MetricQ1     Metric = "q1"
	MetricQ3     Metric = "q3"
	MetricP10    Metric = "p10"
	MetricP90    Metric = "p90"
)

func (m Metric) apply(x []float64) (float64, error) {
	switch Metric(strings.ToLower(string(m))) {
	case MetricMean, "":
		return mean(x), nil
	case MetricMedian:
		return median(x), nil
	case MetricSharpe:
		return mean(x) / sampleStd(x), nil
	case MetricQ1:
		return quantile(x, 0.25), nil
	case MetricQ3:
		return quantile(x, 0.75), nil
	case MetricP10:
		return quantile(x, 0.1), nil
	case MetricP90:
		return quantile(x, 0.9), nil
	}
	return 0, errs.New(errs.Precondition, "perf.Metric", m, "unknown metric %q", m)
}

// QuintileTable buckets the daily returns of index by the quintile of the
// same day return of ref and applies metric to each bucket. Bucket bounds
// are inclusive on both sides.
func QuintileTable(index, ref *series.Series, metric Metric) ([5]float64, error) {
	var out [5]float64
	df := series.Align(ref.DropNaN(), index.DropNaN()).FFill().PctChange(1).DropNaNRows()
	if df.Rows() == 0 {
		return out, errs.New(errs.Precondition, "perf.QuintileTable", nil, "no overlapping returns")
	}
	x, y := df.Col(1), df.Col(0)
	bounds := []float64{math.Inf(-1), quantile(y, 0.2), quantile(y, 0.4), quantile(y, 0.6), quantile(y, 0.8), math.Inf(1)}
	for q := range out {
		var bucket []float64
		for i, v := range y {
			if v >= bounds[q] && v <= bounds[q+1] {
				bucket = append(bucket, x[i])
			}
		}
		v, err := metric.apply(bucket)
		if err != nil {
			return out, err
		}
		out[q] = v
	}
	return out, nil
}
