// Package signal computes time series momentum signals on price panels. Every
// signal keeps the dates and columns of its input; values without enough
// history are NaN.
package signal

import (
	"math"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
)

// ClassicMomentum is the return between the s-day average price and the
// k-day average price h days earlier, lagged m days to skip short term
// reversal. logs selects log returns.
func ClassicMomentum(prices *series.Frame, h int, logs bool, s, k, m int) (*series.Frame, error) {
	if h <= 0 || s <= 0 || k <= 0 || m < 0 {
		return nil, errs.New(errs.Precondition, "signal.ClassicMomentum", []int{h, s, k, m},
			"lookback and smoothing windows must be positive and the lag non-negative")
	}
	return prices.MapSeries(func(x *series.Series) *series.Series {
		p1 := x.RollingMean(s)
		p0 := x.Shift(h).RollingMean(k)
		out := p1.Clone()
		for i := range out.Values {
			r := p1.Values[i] / p0.Values[i]
			if logs {
				out.Values[i] = math.Log(r)
			} else {
				out.Values[i] = r - 1
			}
		}
		return out.Shift(m)
	}), nil
}

// MACD is the fast minus the slow exponentially weighted mean, with
// half-lives in observations.
func MACD(prices *series.Frame, fast, slow float64) (*series.Frame, error) {
	if !(fast > 0) || !(fast < slow) {
		return nil, errs.New(errs.Precondition, "signal.MACD", []float64{fast, slow},
			"fast half-life must be positive and lower than the slow one")
	}
	return prices.MapSeries(func(x *series.Series) *series.Series {
		f, sl := x.EWMMean(fast), x.EWMMean(slow)
		for i := range f.Values {
			f.Values[i] -= sl.Values[i]
		}
		return f
	}), nil
}

// RelativePosition places each price within its h-day range: 0 at the low,
// 1 at the high.
func RelativePosition(prices *series.Frame, h int) (*series.Frame, error) {
	if h <= 0 {
		return nil, errs.New(errs.Precondition, "signal.RelativePosition", h, "window must be positive")
	}
	return prices.MapSeries(func(x *series.Series) *series.Series {
		lo, hi := x.RollingMin(h), x.RollingMax(h)
		out := x.Clone()
		for i, v := range x.Values {
			out.Values[i] = (v - lo.Values[i]) / (hi.Values[i] - lo.Values[i])
		}
		return out
	}), nil
}

// RSI is the h-day relative strength index, 100 - 100/(1 + gains/losses),
// from daily price changes.
func RSI(prices *series.Frame, h int) (*series.Frame, error) {
	if h <= 0 {
		return nil, errs.New(errs.Precondition, "signal.RSI", h, "window must be positive")
	}
	return prices.MapSeries(func(x *series.Series) *series.Series {
		delta := x.Diff(1)
		up := delta.Map(func(v float64) float64 { return math.Max(v, 0) })
		down := delta.Map(func(v float64) float64 { return math.Abs(math.Min(v, 0)) })
		gains, losses := up.RollingSum(h), down.RollingSum(h)
		out := x.Clone()
		for i := range out.Values {
			out.Values[i] = 100 - 100/(1+gains.Values[i]/losses.Values[i])
		}
		return out
	}), nil
}
