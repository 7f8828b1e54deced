// Package tracker builds excess and total return indices from rolled
// positions in futures, forwards, swaps, equities and government bonds.
//
// Every tracker starts at 100 on its first valid date. Between rolls the
// index moves by the PnL of the positions held at the previous close:
//
//	tr[t] = tr[t-1] + Σ_k q_k·(p_k[t] - p_k[t-1])
//
// Prices are carried forward over gaps and a NaN leg PnL counts as zero.
package tracker

import (
	"math"
	"time"

	"github.com/meenmo/quantlib/series"
)

// StartLevel is the value of every tracker on its first date.
const StartLevel = 100.0

// Leg is one position held at the close of a day.
//
// For rate trackers Price is the reference yield and Holdings the PV01 of the
// position per unit of index.
type Leg struct {
	Contract string
	Weight   float64
	Holdings float64
	Price    float64
}

// Day is the end-of-day state of a tracker.
type Day struct {
	Date time.Time
	// Legs are the positions after any roll on Date. They earn the PnL of Date+1.
	Legs  []Leg
	PnL   float64
	Index float64
	// Roll marks days on which holdings were recomputed.
	Roll bool
}

// Description is the metadata stored alongside a tracker.
type Description struct {
	FhTicker       string
	AssetClass     string
	Type           string
	ExchangeSymbol string
	Currency       string
	Country        string
	Sector         string
	// Maturity is the tenor of the rolled instrument in years.
	Maturity   float64
	RollMethod string
}

// Result is a built tracker.
type Result struct {
	Description Description
	Days        []Day
}

func (r *Result) dates() []time.Time {
	out := make([]time.Time, len(r.Days))
	for i, d := range r.Days {
		out[i] = d.Date
	}
	return out
}

// Index returns the tracker levels named after the fh_ticker.
func (r *Result) Index() *series.Series {
	v := make([]float64, len(r.Days))
	for i, d := range r.Days {
		v[i] = d.Index
	}
	return &series.Series{Name: r.Description.FhTicker, Dates: r.dates(), Values: v}
}

// PnL returns the daily index change.
func (r *Result) PnL() *series.Series {
	v := make([]float64, len(r.Days))
	for i, d := range r.Days {
		v[i] = d.PnL
	}
	return &series.Series{Name: r.Description.FhTicker, Dates: r.dates(), Values: v}
}

// Holdings pivots end-of-day holdings by contract. Contracts not held on a day are zero.
func (r *Result) Holdings() *series.Frame {
	var cols []string
	pos := map[string]int{}
	for _, d := range r.Days {
		for _, l := range d.Legs {
			if _, ok := pos[l.Contract]; !ok {
				pos[l.Contract] = len(cols)
				cols = append(cols, l.Contract)
			}
		}
	}
	f := series.NewFrame(r.dates(), cols)
	for i, d := range r.Days {
		for j := range cols {
			f.Data[i][j] = 0
		}
		for _, l := range d.Legs {
			f.Data[i][pos[l.Contract]] += l.Holdings
		}
	}
	return f
}

// Rolls returns the days on which holdings were reset.
func (r *Result) Rolls() []Day {
	var out []Day
	for _, d := range r.Days {
		if d.Roll {
			out = append(out, d)
		}
	}
	return out
}

// legPnL is q·(p - prev) with NaN counted as zero.
func legPnL(q, p, prev float64) float64 {
	v := q * (p - prev)
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// zeroNaN maps NaN holdings (no price) to an empty position.
func zeroNaN(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
