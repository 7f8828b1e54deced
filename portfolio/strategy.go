package portfolio

import (
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/logger"
	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/utils"
)

// Rescale controls how static long-only weights adjust as assets enter the
// portfolio.
type Rescale string

const (
	NoRescale Rescale = ""
	ToOne     Rescale = "to_one"
	ToVol     Rescale = "vol"
	Notional  Rescale = "notional"
)

// StrategyOptions configure LongOnly and SignalStrategy. Zero Start and End
// leave the price history unbounded.
type StrategyOptions struct {
	Start, End time.Time
	Schedule   Schedule
	// Static computes one weight vector from the expanding covariance at the
	// last date and applies it on every rebalance date.
	Static  bool
	Rescale Rescale
	Cov     CovOptions
	Weights WeightOptions
}

// Strategy is a price panel and the weights to rebalance to on each of its
// rebalance dates.
type Strategy struct {
	Prices         *series.Frame
	RebalanceDates []time.Time
	Weights        *series.Frame
}

// Run backtests the strategy.
func (s *Strategy) Run(costs Costs) (*BacktestResult, error) {
	return Backtest(s.Prices, s.Weights, costs)
}

// LongOnly builds a long-only strategy weighted by scheme. Missing prices are
// forward filled and series may start at different dates: on each rebalance
// date only assets with a price take part.
func LongOnly(prices *series.Frame, scheme Scheme, opts StrategyOptions) (*Strategy, error) {
	const op = "portfolio.LongOnly"
	full, p, err := window(prices, opts.Start, opts.End)
	if err != nil {
		return nil, errs.Wrap(errs.Precondition, op, nil, err)
	}
	s := &Strategy{Prices: p, RebalanceDates: RebalanceDates(p.Dates, opts.Schedule)}
	s.Weights = series.NewFrame(s.RebalanceDates, p.Columns)

	if opts.Static {
		cov := opts.Cov
		cov.Kind = Expanding
		last := full.Dates[full.Rows()-1]
		w, err := staticOn(full, last, scheme, cov, opts.Weights)
		if err != nil {
			logger.L.Warn("static weights failed, using equal weights", "scheme", scheme, "err", err)
			w = EqualWeights(p.Cols())
		}
		for i := range s.Weights.Data {
			copy(s.Weights.Data[i], w)
		}
		if err := s.rescale(full, opts); err != nil {
			return nil, err
		}
		return s, nil
	}

	for i, r := range s.RebalanceDates {
		w, err := staticOn(full, r, scheme, opts.Cov, opts.Weights)
		if err != nil {
			return nil, errs.Wrap(errs.KindOf(err), op, r.Format(time.DateOnly), err)
		}
		copy(s.Weights.Data[i], w)
	}
	return s, nil
}

// staticOn weights the assets priced on d, leaving the rest at zero.
func staticOn(prices *series.Frame, d time.Time, scheme Scheme, copts CovOptions, wopts WeightOptions) ([]float64, error) {
	w := make([]float64, prices.Cols())
	cov, active, err := activeCov(prices, d, copts)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return w, nil
	}
	sub, err := StaticWeights(scheme, cov, wopts)
	if err != nil {
		return nil, err
	}
	for k, j := range active {
		w[j] = sub[k]
	}
	return w, nil
}

// activeCov is the covariance on d of the columns that have a price and a
// usable variance on d.
func activeCov(prices *series.Frame, d time.Time, opts CovOptions) (*mat.SymDense, []int, error) {
	row := rowAsOf(prices, d)
	var priced []int
	for j, v := range row {
		if !math.IsNaN(v) {
			priced = append(priced, j)
		}
	}
	if len(priced) == 0 {
		return nil, nil, nil
	}
	names := make([]string, len(priced))
	for k, j := range priced {
		names[k] = prices.Columns[j]
	}
	sel, err := prices.Select(names...)
	if err != nil {
		return nil, nil, err
	}
	cov, err := Covariance(sel, d, opts)
	if err != nil {
		return nil, nil, err
	}
	var keep []int
	for k := range priced {
		ok := cov.At(k, k) > 0 && !math.IsInf(cov.At(k, k), 0)
		for _, q := range keep {
			if math.IsNaN(cov.At(k, q)) {
				ok = false
			}
		}
		if ok {
			keep = append(keep, k)
		}
	}
	if len(keep) == 0 {
		return nil, nil, nil
	}
	active := make([]int, len(keep))
	for a, k := range keep {
		active[a] = priced[k]
	}
	return subCov(cov, keep), active, nil
}

func (s *Strategy) rescale(full *series.Frame, opts StrategyOptions) error {
	by := Rescale(strings.ToLower(string(opts.Rescale)))
	if by == NoRescale {
		return nil
	}
	avail := make([][]bool, s.Weights.Rows())
	for i, r := range s.Weights.Dates {
		row := rowAsOf(s.Prices, r)
		avail[i] = make([]bool, len(row))
		for j, v := range row {
			avail[i][j] = !math.IsNaN(v)
		}
		for j := range row {
			if !avail[i][j] {
				s.Weights.Data[i][j] = 0
			}
		}
	}
	switch by {
	case Notional:
		target := sum(s.Weights.Data[s.Weights.Rows()-1])
		for _, w := range s.Weights.Data {
			scaleRow(w, target)
		}
	case ToVol:
		count := -1
		for i, r := range s.Weights.Dates {
			n := 0
			for _, ok := range avail[i] {
				if ok {
					n++
				}
			}
			if n == count && i > 0 {
				copy(s.Weights.Data[i], s.Weights.Data[i-1])
				continue
			}
			count = n
			cov, active, err := activeCov(full, r, opts.Cov)
			if err != nil {
				return errs.Wrap(errs.KindOf(err), "portfolio.Strategy.rescale", r.Format(time.DateOnly), err)
			}
			if len(active) == 0 {
				continue
			}
			w := pick(s.Weights.Data[i], active)
			vol := PortfolioVol(cov, w)
			if !(vol > 0) {
				continue
			}
			k := opts.Weights.volTarget() / vol
			for j := range s.Weights.Data[i] {
				s.Weights.Data[i][j] *= k
			}
		}
	default:
		if by != ToOne {
			logger.L.Warn("rescaling not recognised, rescaling to one", "rescale", opts.Rescale)
		}
		for _, w := range s.Weights.Data {
			scaleRow(w, 1)
		}
	}
	return nil
}

func sum(x []float64) float64 {
	s := 0.0
	for _, v := range x {
		if !math.IsNaN(v) {
			s += v
		}
	}
	return s
}

func scaleRow(w []float64, target float64) {
	s := sum(w)
	if s == 0 {
		return
	}
	for j := range w {
		w[j] *= target / s
	}
}

// SignalStrategy builds a long-short strategy from signals on the columns
// both frames share. It starts at the later of the first signal date and
// opts.Start, and on each rebalance date uses the latest signals on or before
// it.
func SignalStrategy(prices, signals *series.Frame, scheme SignalScheme, opts StrategyOptions) (*Strategy, error) {
	const op = "portfolio.SignalStrategy"
	if signals == nil || signals.Rows() == 0 {
		return nil, errs.New(errs.Precondition, op, nil, "no signals")
	}
	var cols []string
	for _, c := range prices.Columns {
		if signals.ColIndex(c) >= 0 {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return nil, errs.New(errs.Precondition, op, nil, "prices and signals share no columns")
	}
	px, err := prices.Select(cols...)
	if err != nil {
		return nil, err
	}
	sig, err := signals.Select(cols...)
	if err != nil {
		return nil, err
	}
	start := sig.Dates[0]
	if opts.Start.After(start) {
		start = opts.Start
	}
	full, p, err := window(px, start, opts.End)
	if err != nil {
		return nil, errs.Wrap(errs.Precondition, op, nil, err)
	}
	s := &Strategy{Prices: p, RebalanceDates: RebalanceDates(p.Dates, opts.Schedule)}
	s.Weights = series.NewFrame(s.RebalanceDates, cols)

	for i, r := range s.RebalanceDates {
		row := rowAsOf(sig, r)
		var cov mat.Symmetric
		if scheme.needsCov() {
			c, active, err := activeCov(full, r, opts.Cov)
			if err != nil {
				return nil, errs.Wrap(errs.KindOf(err), op, r.Format(time.DateOnly), err)
			}
			row, cov = embed(row, c, active)
		}
		w, err := SignalWeights(row, scheme, cov, opts.Weights)
		if err != nil {
			return nil, errs.Wrap(errs.KindOf(err), op, r.Format(time.DateOnly), err)
		}
		copy(s.Weights.Data[i], w)
	}
	return s, nil
}

// embed expands a covariance over active columns to all of signals, masking
// the signals of inactive columns.
func embed(signals []float64, cov *mat.SymDense, active []int) ([]float64, *mat.SymDense) {
	n := len(signals)
	out := make([]float64, n)
	for j := range out {
		out[j] = math.NaN()
	}
	full := mat.NewSymDense(n, nil)
	for a, j := range active {
		out[j] = signals[j]
		for b := a; b < len(active); b++ {
			full.SetSym(j, active[b], cov.At(a, b))
		}
	}
	return out, full
}

// window forward fills prices, drops leading all-missing rows and cuts to
// [start, end]. full keeps the history before start for covariance estimates.
func window(prices *series.Frame, start, end time.Time) (full, p *series.Frame, err error) {
	if prices == nil || prices.Rows() == 0 || prices.Cols() == 0 {
		return nil, nil, errs.New(errs.Precondition, "portfolio.window", nil, "empty price panel")
	}
	f := prices.FFill()
	first := 0
	for first < f.Rows() && allNaN(f.Data[first]) {
		first++
	}
	f = f.SliceRows(first, f.Rows())
	if end.IsZero() && f.Rows() > 0 {
		end = f.Dates[f.Rows()-1]
	}
	if start.IsZero() && f.Rows() > 0 {
		start = f.Dates[0]
	}
	f = f.Between(time.Time{}, end)
	p = f.Between(start, end)
	if p.Rows() < 2 {
		return nil, nil, errs.New(errs.Precondition, "portfolio.window", start.Format(time.DateOnly), "fewer than two price dates in range")
	}
	return f, p, nil
}

func allNaN(row []float64) bool {
	for _, v := range row {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// rowAsOf is the last row of f dated on or before d, or all NaN.
func rowAsOf(f *series.Frame, d time.Time) []float64 {
	d = utils.Truncate(d)
	i := utils.SearchDate(f.Dates, d)
	if i < f.Rows() && f.Dates[i].Equal(d) {
		return f.Row(i)
	}
	if i == 0 {
		out := make([]float64, f.Cols())
		for j := range out {
			out[j] = math.NaN()
		}
		return out
	}
	return f.Row(i - 1)
}
