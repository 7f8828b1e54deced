package perf

import (
	"math"
	"sort"
	"time"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
)

// Drawdown is a fall from a peak. For unrestricted drawdowns End is the first
// date above the peak, or the last observation when the series never
// recovered. For fixed window drawdowns Peak and Trough bound the window and
// End equals Trough.
type Drawdown struct {
	Peak, Trough, End time.Time
	Depth             float64
	Recovered         bool
}

// Duration is the number of calendar days from peak to trough.
func (d Drawdown) Duration() int {
	return int(d.Trough.Sub(d.Peak).Hours() / 24)
}

// Recovery is the number of calendar days from trough to End.
func (d Drawdown) Recovery() int {
	return int(d.End.Sub(d.Trough).Hours() / 24)
}

// ExpandingDrawdown is s over its running maximum, less one.
func ExpandingDrawdown(s *series.Series) *series.Series {
	out := s.Clone()
	peak := math.Inf(-1)
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		peak = math.Max(peak, v)
		out.Values[i] = v/peak - 1
	}
	return out
}

// MaxDrawdown is the deepest drawdown of s. A series that never falls
// returns a zero Depth.
func MaxDrawdown(s *series.Series) Drawdown {
	dds := Drawdowns(s)
	if len(dds) == 0 {
		return Drawdown{}
	}
	return dds[0]
}

// Drawdowns lists one drawdown per new running maximum of s, deepest first.
// Missing values are dropped. The trough is the first minimum between the
// peak and its end.
func Drawdowns(s *series.Series) []Drawdown {
	s = s.DropNaN()
	var out []Drawdown
	peak := math.Inf(-1)
	for i, p := range s.Values {
		if !(p > peak) {
			continue
		}
		peak = p
		end, recovered := len(s.Values)-1, false
		for j := i + 1; j < len(s.Values); j++ {
			if s.Values[j] > p {
				end, recovered = j, true
				break
			}
		}
		trough := i
		for j := i; j <= end; j++ {
			if s.Values[j] < s.Values[trough] {
				trough = j
			}
		}
		depth := s.Values[trough]/p - 1
		if depth < 0 {
			out = append(out, Drawdown{
				Peak:      s.Dates[i],
				Trough:    s.Dates[trough],
				End:       s.Dates[end],
				Depth:     depth,
				Recovered: recovered,
			})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Depth < out[b].Depth })
	return out
}

// TopDrawdowns keeps the k deepest drawdowns; k <= 0 keeps all.
func TopDrawdowns(s *series.Series, k int) []Drawdown {
	return head(Drawdowns(s), k)
}

// WindowDrawdowns lists non-overlapping losses over a fixed number of
// observations, deepest first. Windows are picked greedily: each pick removes
// every window that overlaps it.
func WindowDrawdowns(s *series.Series, window int) ([]Drawdown, error) {
	if window <= 0 {
		return nil, errs.New(errs.Precondition, "perf.WindowDrawdowns", window, "window must be positive")
	}
	s = s.DropNaN()
	var cands []Drawdown
	for i := window; i < len(s.Values); i++ {
		r := s.Values[i]/s.Values[i-window] - 1
		if r < 0 {
			cands = append(cands, Drawdown{Peak: s.Dates[i-window], Trough: s.Dates[i], End: s.Dates[i], Depth: r})
		}
	}
	var out []Drawdown
	for len(cands) > 0 {
		best := 0
		for i := range cands {
			if cands[i].Depth < cands[best].Depth {
				best = i
			}
		}
		pick := cands[best]
		out = append(out, pick)
		kept := cands[:0]
		for _, c := range cands {
			if !c.Peak.Before(pick.Trough) || !c.Trough.After(pick.Peak) {
				kept = append(kept, c)
			}
		}
		cands = kept
	}
	return out, nil
}

func head(dds []Drawdown, k int) []Drawdown {
	if k > 0 && k < len(dds) {
		return dds[:k]
	}
	return dds
}
