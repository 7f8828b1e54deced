package series

import (
	"math"
)

// Rolling window reductions. A window containing a NaN, or shorter than the
// window length, yields NaN.

func (s *Series) RollingMean(window int) *Series {
	return s.rolling(window, func(w []float64) float64 { return sum(w) / float64(len(w)) })
}

func (s *Series) RollingSum(window int) *Series {
	return s.rolling(window, sum)
}

func (s *Series) RollingMin(window int) *Series {
	return s.rolling(window, func(w []float64) float64 {
		m := w[0]
		for _, x := range w[1:] {
			m = math.Min(m, x)
		}
		return m
	})
}

func (s *Series) RollingMax(window int) *Series {
	return s.rolling(window, func(w []float64) float64 {
		m := w[0]
		for _, x := range w[1:] {
			m = math.Max(m, x)
		}
		return m
	})
}

// RollingStd is the sample standard deviation over the window.
func (s *Series) RollingStd(window int) *Series {
	return s.rolling(window, func(w []float64) float64 {
		if len(w) < 2 {
			return math.NaN()
		}
		mu := sum(w) / float64(len(w))
		ss := 0.0
		for _, x := range w {
			ss += (x - mu) * (x - mu)
		}
		return math.Sqrt(ss / float64(len(w)-1))
	})
}

func (s *Series) rolling(window int, f func([]float64) float64) *Series {
	out := s.Clone()
	for i := range out.Values {
		if window <= 0 || i+1 < window {
			out.Values[i] = math.NaN()
			continue
		}
		w := s.Values[i+1-window : i+1]
		if hasNaN(w) {
			out.Values[i] = math.NaN()
			continue
		}
		out.Values[i] = f(w)
	}
	return out
}

// ExpandingSum accumulates from the first observation, treating NaN as zero.
func (s *Series) ExpandingSum() *Series {
	out := s.Clone()
	acc := 0.0
	for i, v := range s.Values {
		if !math.IsNaN(v) {
			acc += v
		}
		out.Values[i] = acc
	}
	return out
}

// EWMMean is the adjusted exponentially weighted mean with the given half-life,
// skipping NaNs in the weights.
func (s *Series) EWMMean(halflife float64) *Series {
	out := s.Clone()
	alpha := HalflifeAlpha(halflife)
	num, den := 0.0, 0.0
	seen := false
	for i, v := range s.Values {
		if seen {
			num *= 1 - alpha
			den *= 1 - alpha
		}
		if !math.IsNaN(v) {
			num += v
			den++
			seen = true
		}
		if den == 0 {
			out.Values[i] = math.NaN()
		} else {
			out.Values[i] = num / den
		}
	}
	return out
}

// HalflifeAlpha converts a half-life into the EWM decay parameter.
func HalflifeAlpha(halflife float64) float64 {
	return 1 - math.Exp(-math.Ln2/halflife)
}

func sum(w []float64) float64 {
	t := 0.0
	for _, x := range w {
		t += x
	}
	return t
}

func hasNaN(w []float64) bool {
	for _, x := range w {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}
