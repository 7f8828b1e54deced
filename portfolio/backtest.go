package portfolio

import (
	"math"
	"time"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/utils"
)

// Costs are backtest frictions in basis points. The per-asset maps override
// the flat rates by column name.
type Costs struct {
	HoldingBpsPA     float64
	RebalanceBps     float64
	HoldingByAsset   map[string]float64
	RebalanceByAsset map[string]float64
}

func (c Costs) rates(cols []string) (hc, tc []float64) {
	hc, tc = make([]float64, len(cols)), make([]float64, len(cols))
	for j, name := range cols {
		hc[j], tc[j] = c.HoldingBpsPA/1e4, c.RebalanceBps/1e4
		if v, ok := c.HoldingByAsset[name]; ok {
			hc[j] = v / 1e4
		}
		if v, ok := c.RebalanceByAsset[name]; ok {
			tc[j] = v / 1e4
		}
	}
	return hc, tc
}

// BacktestResult holds the simulated strategy. Frames share the price dates.
type BacktestResult struct {
	Equity   *series.Series
	PnL      *series.Series
	Holdings *series.Frame
	Traded   *series.Frame
}

// Backtest runs a strategy that holds prices and rebalances to each row of
// weights. Prices are forward filled and must cover the weight columns. The
// strategy starts at 1 with the first weight row; weight rows dated before the
// first price are ignored.
//
// Each day PnL is Σ h[t-1]·(p[t]-p[t-1]) less holding costs h·p·hc·days/365.25.
// On a weight date holdings are reset to equity·w/p at the day's close, and the
// traded notional |Δh|·p is charged tc on the same day.
func Backtest(prices, weights *series.Frame, costs Costs) (*BacktestResult, error) {
	const op = "portfolio.Backtest"
	if prices == nil || prices.Rows() == 0 {
		return nil, errs.New(errs.Precondition, op, nil, "no prices")
	}
	if weights == nil || weights.Rows() == 0 {
		return nil, errs.New(errs.Precondition, op, nil, "no weights")
	}
	p, err := prices.FFill().Select(weights.Columns...)
	if err != nil {
		return nil, errs.Wrap(errs.Precondition, op, weights.Columns, err)
	}
	n, T := p.Cols(), p.Rows()
	hc, tc := costs.rates(p.Columns)

	wOn := map[time.Time][]float64{}
	for i, d := range weights.Dates {
		wOn[utils.Truncate(d)] = weights.Row(i)
	}
	first := weights.Row(0)
	for i, d := range weights.Dates {
		if !d.After(p.Dates[0]) {
			first = weights.Row(i)
		}
	}

	res := &BacktestResult{
		Holdings: series.NewFrame(p.Dates, p.Columns),
		Traded:   series.NewFrame(p.Dates, p.Columns),
	}
	equity := make([]float64, T)
	pnl := make([]float64, T)
	equity[0] = 1
	h := make([]float64, n)
	for j := range h {
		h[j] = zeroNaN(first[j] / p.Data[0][j])
		res.Traded.Data[0][j] = 0
	}
	copy(res.Holdings.Data[0], h)

	for t := 1; t < T; t++ {
		days := float64(utils.Days(p.Dates[t-1], p.Dates[t]))
		var gain, carry float64
		for j := 0; j < n; j++ {
			prev, cur := p.Data[t-1][j], p.Data[t][j]
			if h[j] == 0 || math.IsNaN(prev) || math.IsNaN(cur) {
				continue
			}
			gain += h[j] * (cur - prev)
			carry += h[j] * prev * hc[j] * days / 365.25
		}
		pnl[t] = gain - carry
		equity[t] = equity[t-1] + pnl[t]

		traded := res.Traded.Data[t]
		for j := range traded {
			traded[j] = 0
		}
		if w, ok := wOn[p.Dates[t]]; ok {
			var cost float64
			for j := 0; j < n; j++ {
				next := zeroNaN(equity[t] * w[j] / p.Data[t][j])
				traded[j] = math.Abs(next-h[j]) * zeroNaN(p.Data[t][j])
				cost += traded[j] * tc[j]
				h[j] = next
			}
			pnl[t] -= cost
			equity[t] -= cost
		}
		copy(res.Holdings.Data[t], h)
	}
	res.Equity = series.MustNew("equity", p.Dates, equity)
	res.PnL = series.MustNew("pnl", p.Dates, pnl)
	return res, nil
}

func zeroNaN(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
