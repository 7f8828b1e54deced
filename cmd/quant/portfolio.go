package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/quantlib/perf"
	"github.com/meenmo/quantlib/portfolio"
	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/signal"
	"github.com/meenmo/quantlib/utils"
)

// CovSpec overrides the configured covariance estimator.
type CovSpec struct {
	Kind      string  `json:"kind" validate:"omitempty,oneof=rolling expanding ewma"`
	Period    int     `json:"period" validate:"gte=0"`
	Window    int     `json:"window" validate:"gte=0"`
	Halflife  float64 `json:"halflife" validate:"gte=0"`
	Shrinkage float64 `json:"shrinkage" validate:"gte=0,lt=1"`
}

func (c CovSpec) options() portfolio.CovOptions {
	return portfolio.CovOptions{
		Kind:      portfolio.CovKind(c.Kind),
		Period:    c.Period,
		Window:    c.Window,
		Halflife:  c.Halflife,
		Shrinkage: c.Shrinkage,
	}
}

// WeightsInput weights the assets of a price panel on Date (the last date
// when empty). With Signals the long-short signal schemes apply.
type WeightsInput struct {
	Prices    Frame   `json:"prices"`
	Date      string  `json:"date" validate:"omitempty,date"`
	Scheme    string  `json:"scheme" validate:"required"`
	Signals   []Float `json:"signals"`
	VolTarget float64 `json:"vol_target" validate:"gte=0"`
	Cov       CovSpec `json:"cov"`
}

type WeightsOutput struct {
	Date          string           `json:"date"`
	Weights       map[string]Float `json:"weights"`
	Vol           Float            `json:"vol"`
	Contributions map[string]Float `json:"risk_contributions"`
}

func newWeightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weights",
		Short: "Portfolio weights on one date (IVP, MVP, ERC, HRP, EW or a signal scheme)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in WeightsInput
			if err := readInput(cmd, &in); err != nil {
				return err
			}
			prices, err := in.Prices.frame()
			if err != nil {
				return err
			}
			day := prices.Dates[prices.Rows()-1]
			if in.Date != "" {
				day = parseDate(in.Date)
			}
			cov, err := portfolio.Covariance(prices, day, in.Cov.options())
			if err != nil {
				return err
			}
			opts := portfolio.WeightOptions{VolTarget: in.VolTarget}
			var w []float64
			if len(in.Signals) > 0 {
				if len(in.Signals) != len(prices.Columns) {
					return fmt.Errorf("%d signals for %d assets", len(in.Signals), len(prices.Columns))
				}
				w, err = portfolio.SignalWeights(unfloats(in.Signals), portfolio.SignalScheme(in.Scheme), cov, opts)
			} else {
				w, err = portfolio.StaticWeights(portfolio.Scheme(in.Scheme), cov, opts)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd, weightsOutput(day.Format(utils.DateLayout), prices.Columns, w, cov))
		},
	}
}

func weightsOutput(day string, cols []string, w []float64, cov mat.Symmetric) WeightsOutput {
	out := WeightsOutput{
		Date:          day,
		Weights:       make(map[string]Float, len(cols)),
		Contributions: make(map[string]Float, len(cols)),
		Vol:           Float(portfolio.PortfolioVol(cov, w)),
	}
	rc := portfolio.RiskContributions(cov, w)
	for j, c := range cols {
		out.Weights[c] = Float(w[j])
		out.Contributions[c] = Float(rc[j])
	}
	return out
}

// SignalSpec selects a signal family and its parameters. Unset parameters
// take the defaults listed per kind.
//
//	momentum  h=252 s=1 k=1 m=21 logs
//	macd      fast=12 slow=26
//	relpos    h=252
//	rsi       h=14
type SignalSpec struct {
	Kind string  `json:"kind" validate:"required,oneof=momentum macd relpos rsi"`
	H    int     `json:"h" validate:"gte=0"`
	S    int     `json:"s" validate:"gte=0"`
	K    int     `json:"k" validate:"gte=0"`
	M    int     `json:"m" validate:"gte=0"`
	Logs bool    `json:"logs"`
	Fast float64 `json:"fast" validate:"gte=0"`
	Slow float64 `json:"slow" validate:"gte=0"`
}

func orDefault[T int | float64](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}

func (s SignalSpec) compute(prices *series.Frame) (*series.Frame, error) {
	switch s.Kind {
	case "momentum":
		return signal.ClassicMomentum(prices, orDefault(s.H, 252), s.Logs, orDefault(s.S, 1), orDefault(s.K, 1), orDefault(s.M, 21))
	case "macd":
		return signal.MACD(prices, orDefault(s.Fast, 12), orDefault(s.Slow, 26))
	case "relpos":
		return signal.RelativePosition(prices, orDefault(s.H, 252))
	default:
		return signal.RSI(prices, orDefault(s.H, 14))
	}
}

// CostSpec are frictions in basis points.
type CostSpec struct {
	HoldingBpsPA     float64            `json:"holding_bps_pa" validate:"gte=0"`
	RebalanceBps     float64            `json:"rebalance_bps" validate:"gte=0"`
	HoldingByAsset   map[string]float64 `json:"holding_by_asset"`
	RebalanceByAsset map[string]float64 `json:"rebalance_by_asset"`
}

func (c CostSpec) costs() portfolio.Costs {
	return portfolio.Costs{
		HoldingBpsPA:     c.HoldingBpsPA,
		RebalanceBps:     c.RebalanceBps,
		HoldingByAsset:   c.HoldingByAsset,
		RebalanceByAsset: c.RebalanceByAsset,
	}
}

// BacktestInput runs explicit weights, or builds a long-only or signal
// strategy on the price panel.
type BacktestInput struct {
	Prices         Frame       `json:"prices"`
	Weights        *Frame      `json:"weights"`
	Scheme         string      `json:"scheme" validate:"required_without=Weights"`
	Signal         *SignalSpec `json:"signal"`
	Rebalance      string      `json:"rebalance"`
	RebalanceDates []string    `json:"rebalance_dates" validate:"dive,date"`
	Static         bool        `json:"static"`
	Rescale        string      `json:"rescale" validate:"omitempty,oneof=to_one vol notional"`
	Start          string      `json:"start" validate:"omitempty,date"`
	End            string      `json:"end" validate:"omitempty,date"`
	VolTarget      float64     `json:"vol_target" validate:"gte=0"`
	Cov            CovSpec     `json:"cov"`
	Costs          CostSpec    `json:"costs"`
	Frequency      string      `json:"frequency" validate:"omitempty,oneof=daily weekly monthly"`
}

type BacktestOutput struct {
	Equity   Series   `json:"equity"`
	PnL      Series   `json:"pnl"`
	Weights  Frame    `json:"weights"`
	Holdings Frame    `json:"holdings"`
	Perf     *PerfRow `json:"perf,omitempty"`
}

func newBacktestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backtest",
		Short: "Backtest rebalanced portfolio weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in BacktestInput
			if err := readInput(cmd, &in); err != nil {
				return err
			}
			prices, err := in.Prices.frame()
			if err != nil {
				return err
			}
			weights, err := in.weights(prices)
			if err != nil {
				return err
			}
			res, err := portfolio.Backtest(prices, weights, in.Costs.costs())
			if err != nil {
				return err
			}
			res.Equity.Name = "strategy"
			out := BacktestOutput{
				Equity:   toSeries(res.Equity),
				PnL:      toSeries(res.PnL),
				Weights:  toFrame(weights),
				Holdings: toFrame(res.Holdings),
			}
			if row, err := perf.PerfTable(res.Equity, perf.Frequency(in.Frequency)); err == nil {
				r := perfRow(row)
				out.Perf = &r
			}
			return writeJSON(cmd, out)
		},
	}
}

func (in BacktestInput) weights(prices *series.Frame) (*series.Frame, error) {
	if in.Weights != nil {
		return in.Weights.frame()
	}
	opts := portfolio.StrategyOptions{
		Schedule: portfolio.Schedule{Code: in.Rebalance},
		Static:   in.Static,
		Rescale:  portfolio.Rescale(in.Rescale),
		Cov:      in.Cov.options(),
		Weights:  portfolio.WeightOptions{VolTarget: in.VolTarget},
	}
	if in.Start != "" {
		opts.Start = parseDate(in.Start)
	}
	if in.End != "" {
		opts.End = parseDate(in.End)
	}
	if len(in.RebalanceDates) > 0 {
		ds, err := parseDates(in.RebalanceDates)
		if err != nil {
			return nil, err
		}
		utils.SortDates(ds)
		opts.Schedule.Dates = ds
	}
	var (
		st  *portfolio.Strategy
		err error
	)
	if in.Signal != nil {
		sig, err := in.Signal.compute(prices)
		if err != nil {
			return nil, err
		}
		st, err = portfolio.SignalStrategy(prices, sig, portfolio.SignalScheme(strings.TrimSpace(in.Scheme)), opts)
		if err != nil {
			return nil, err
		}
	} else {
		st, err = portfolio.LongOnly(prices, portfolio.Scheme(strings.TrimSpace(in.Scheme)), opts)
		if err != nil {
			return nil, err
		}
	}
	return st.Weights, nil
}
