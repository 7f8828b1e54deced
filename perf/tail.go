package perf

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/meenmo/quantlib/daycount"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
)

// TailOptions configures TailRiskTable.
type TailOptions struct {
	Freq Frequency
	// SameWindow keeps only the dates where the benchmark and every index
	// have a value.
	SameWindow bool
	// Window selects fixed window drawdowns of that many observations.
	// Zero uses unrestricted drawdowns.
	Window int
	// K caps the number of benchmark drawdowns, deepest first.
	K int
	// RawReturns skips annualising event returns.
	RawReturns bool
}

// TailRow is the behaviour of one index in the benchmark's drawdowns. Event
// returns are log returns scaled by the index's unconditional volatility.
type TailRow struct {
	Name             string
	MeanReactivity   float64
	MedianReactivity float64
	Reliability      float64
	// Convexity is the 80th percentile less the median.
	Convexity float64
	// TailBeta is the beta to the benchmark in its drawdowns, measured
	// around the unconditional means.
	TailBeta float64
	AvgCarry float64
	// RecoveryCarry is the mean return from trough to recovery; NaN for
	// fixed window drawdowns.
	RecoveryCarry float64
	Start, End    time.Time
}

// TailTable holds the summary rows and the per event detail behind them.
type TailTable struct {
	Label  string
	Rows   []TailRow
	Events []Drawdown
	// Reactivity and Recovery are events x indices.
	Reactivity [][]float64
	Recovery   [][]float64
}

var lagByFreq = map[Frequency]int{Daily: 21, Weekly: 4, Monthly: 1}

// TailRiskTable measures vol adjusted performance of each column of index
// over the drawdowns of ref.
func TailRiskTable(index *series.Frame, ref *series.Series, opts TailOptions) (*TailTable, error) {
	const op = "perf.TailRiskTable"
	freq := Frequency(strings.ToLower(string(opts.Freq)))
	if freq == "" {
		freq = Daily
	}
	lag, ok := lagByFreq[freq]
	if !ok {
		return nil, errs.New(errs.Precondition, op, freq, "unknown frequency %q", freq)
	}
	if index.Cols() == 0 {
		return nil, errs.New(errs.Precondition, op, nil, "no index columns")
	}

	df := align(ref.DropNaN(), index, opts.SameWindow)
	if df.Rows() <= lag {
		return nil, errs.New(errs.Precondition, op, df.Rows(), "not enough observations for lag %d", lag)
	}
	vols := make([]float64, df.Cols())
	mus := make([]float64, df.Cols())
	for j := range df.Columns {
		x := df.Col(j)
		d := make([]float64, 0, len(x))
		for i := lag; i < len(x); i++ {
			d = append(d, math.Log(x[i]/x[i-lag]))
		}
		vols[j] = sampleStd(d) * math.Sqrt(12)
		mus[j] = mean(d) * 12 / vols[j]
	}

	var (
		events []Drawdown
		err    error
		label  = "unr_dd"
	)
	if opts.Window > 0 {
		label = fmt.Sprintf("%dbd_dd", opts.Window)
		events, err = WindowDrawdowns(df.Series(0), opts.Window)
		if err != nil {
			return nil, err
		}
	} else {
		events = Drawdowns(df.Series(0))
	}
	events = head(events, opts.K)

	dc := daycount.MustNew("ACT/360", "us_trading")
	n := index.Cols()
	out := &TailTable{Label: label, Events: events}
	refRet := make([]float64, len(events))
	for e, ev := range events {
		af := 1.0
		if !opts.RawReturns {
			if opts.Window > 0 {
				af = 252 / float64(opts.Window)
			} else {
				af = 365.25 / float64(dc.Days(ev.Peak, ev.Trough))
			}
		}
		p0, p1 := dateRow(df, ev.Peak), dateRow(df, ev.Trough)
		refRet[e] = math.Log(p1[0]/p0[0]) * af / vols[0]
		row := make([]float64, n)
		for j := range row {
			row[j] = math.Log(p1[j+1]/p0[j+1]) * af / vols[j+1]
		}
		out.Reactivity = append(out.Reactivity, row)

		if opts.Window > 0 {
			continue
		}
		raf := 1.0
		if !opts.RawReturns {
			raf = math.NaN()
			if days := dc.Days(ev.Trough, ev.End); days > 3 {
				raf = 365.25 / float64(days)
			}
		}
		p2 := dateRow(df, ev.End)
		rec := make([]float64, n)
		for j := range rec {
			rec[j] = math.Log(p2[j+1]/p1[j+1]) * raf / vols[j+1]
		}
		out.Recovery = append(out.Recovery, rec)
	}

	centredRef := make([]float64, len(refRet))
	for e, y := range refRet {
		centredRef[e] = y - mus[0]
	}
	yVar := sampleVar(centredRef)

	for j := 0; j < n; j++ {
		x := column(out.Reactivity, j)
		r := TailRow{
			Name:             index.Columns[j],
			MeanReactivity:   mean(x),
			MedianReactivity: median(x),
			AvgCarry:         mus[j+1],
			RecoveryCarry:    math.NaN(),
		}
		var pos, cnt int
		xy := make([]float64, len(x))
		for e, v := range x {
			if !math.IsNaN(v) {
				cnt++
				if v > 0 {
					pos++
				}
			}
			xy[e] = (v - mus[j+1]) * centredRef[e]
		}
		r.Reliability = float64(pos) / float64(cnt)
		r.Convexity = quantile(x, 0.8) - r.MedianReactivity
		r.TailBeta = mean(xy) / yVar
		if opts.Window == 0 {
			r.RecoveryCarry = mean(column(out.Recovery, j))
		}
		s := df.Series(j + 1)
		if lo, hi := s.FirstValid(), s.LastValid(); lo >= 0 {
			r.Start, r.End = s.Dates[lo], s.Dates[hi]
		}
		out.Rows = append(out.Rows, r)
	}
	return out, nil
}

// align joins ref and the index columns, forward fills, then drops rows
// missing any value (same) or all values.
func align(ref *series.Series, index *series.Frame, same bool) *series.Frame {
	ss := make([]*series.Series, 0, index.Cols()+1)
	ss = append(ss, ref)
	for j := range index.Columns {
		ss = append(ss, index.Series(j).DropNaN())
	}
	df := series.Align(ss...).FFill()
	if same {
		return df.DropNaNRows()
	}
	lo := 0
	for lo < df.Rows() && allMissing(df.Data[lo]) {
		lo++
	}
	return df.SliceRows(lo, df.Rows())
}

func allMissing(row []float64) bool {
	for _, v := range row {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

func dateRow(f *series.Frame, d time.Time) []float64 {
	i, _ := f.Index(d)
	return f.Data[i]
}

func column(m [][]float64, j int) []float64 {
	out := make([]float64, len(m))
	for i := range m {
		out[i] = m[i][j]
	}
	return out
}
