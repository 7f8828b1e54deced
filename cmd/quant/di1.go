package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meenmo/quantlib/bond"
	"github.com/meenmo/quantlib/marketdata/b3"
	"github.com/meenmo/quantlib/utils"
)

// DI1Market is a DI1 curve on Date, from explicit last prices in percent or
// from a B3 bulletin file (CSV or XLSX).
type DI1Market struct {
	Date     string             `json:"date" validate:"required,date"`
	Quotes   map[string]float64 `json:"quotes" validate:"required_without=Bulletin"`
	Bulletin string             `json:"bulletin" validate:"required_without=Quotes"`
	Sheet    string             `json:"sheet"`
}

func (m DI1Market) curve() (*bond.DI1Curve, error) {
	day := parseDate(m.Date)
	if len(m.Quotes) > 0 {
		return bond.NewDI1Curve(day, m.Quotes)
	}
	recs, err := loadBulletin(m.Bulletin, m.Sheet)
	if err != nil {
		return nil, err
	}
	return b3.DI1Curve(b3.NewMapFeed(recs), day)
}

func loadBulletin(path, sheet string) ([]b3.Record, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return b3.ParseXLSX(path, sheet)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return b3.ParseCSV(f)
}

type DI1Output struct {
	Code      string `json:"code"`
	Maturity  string `json:"maturity"`
	DU        int    `json:"du"`
	Yield     Float  `json:"yield"`
	Price     Float  `json:"price"`
	DV01      Float  `json:"dv01"`
	Duration  Float  `json:"duration"`
	Convexity Float  `json:"convexity"`
}

// DI1CurveInput queries the curve at dates beyond its first contract.
type DI1CurveInput struct {
	DI1Market
	At []string `json:"at" validate:"dive,date"`
}

type DI1CurveOutput struct {
	Date      string      `json:"date"`
	Contracts []DI1Output `json:"contracts"`
	At        []string    `json:"at,omitempty"`
	Yields    []Float     `json:"yields,omitempty"`
	Discounts []Float     `json:"discounts,omitempty"`
}

// DI1HedgeInput is a bond basket to hedge with the market's January contracts.
type DI1HedgeInput struct {
	DI1Market
	Bonds         []BondSpec `json:"bonds" validate:"required,min=1,dive"`
	Weights       []float64  `json:"weights" validate:"required,min=1"`
	MarketValue   bool       `json:"market_value"`
	WithConvexity bool       `json:"with_convexity"`
}

type DI1HedgeOutput struct {
	PortfolioValue     Float          `json:"portfolio_value"`
	PortfolioDuration  Float          `json:"portfolio_duration"`
	PortfolioConvexity Float          `json:"portfolio_convexity"`
	Contracts          map[string]int `json:"contracts"`
}

// DI1SpreadInput prices each bond's parallel spread over the market curve.
type DI1SpreadInput struct {
	DI1Market
	Bonds []BondSpec `json:"bonds" validate:"required,min=1,dive"`
}

type DI1SpreadOutput struct {
	SpreadBP   Float `json:"spread_bp"`
	PVAtCurve  Float `json:"pv_at_curve"`
	Iterations int   `json:"iterations"`
}

func newDI1Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "di1",
		Short: "DI1 futures curve, bond hedges and spreads",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "curve",
			Short: "Contract analytics and interpolated yields",
			RunE:  runDI1Curve,
		},
		&cobra.Command{
			Use:   "hedge",
			Short: "DI1 contracts that hedge a bond basket",
			RunE:  runDI1Hedge,
		},
		&cobra.Command{
			Use:   "spread",
			Short: "Bond spreads over the DI1 curve in basis points",
			RunE:  runDI1Spread,
		},
	)
	return cmd
}

func runDI1Curve(cmd *cobra.Command, args []string) error {
	var in DI1CurveInput
	if err := readInput(cmd, &in); err != nil {
		return err
	}
	c, err := in.curve()
	if err != nil {
		return err
	}
	out := DI1CurveOutput{Date: c.Date.Format(utils.DateLayout), Contracts: contracts(c.Contracts)}
	for _, s := range in.At {
		d := parseDate(s)
		out.At = append(out.At, s)
		out.Yields = append(out.Yields, Float(c.YieldAt(d)))
		out.Discounts = append(out.Discounts, Float(c.Discount(d)))
	}
	return writeJSON(cmd, out)
}

func contracts(cs []*bond.DI1) []DI1Output {
	out := make([]DI1Output, len(cs))
	for i, c := range cs {
		out[i] = DI1Output{
			Code:      c.Code,
			Maturity:  c.Maturity.Format(utils.DateLayout),
			DU:        c.DU,
			Yield:     Float(c.Yield),
			Price:     Float(c.TheoreticalPrice),
			DV01:      Float(c.DV01),
			Duration:  Float(c.Duration),
			Convexity: Float(c.Convexity),
		}
	}
	return out
}

func buildBonds(specs []BondSpec) ([]bond.Bond, error) {
	out := make([]bond.Bond, len(specs))
	for i, s := range specs {
		if s.Type == "" {
			return nil, errors.New("bonds: type is required (ltn, ntnf or ntnb)")
		}
		b, err := s.build("")
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func runDI1Hedge(cmd *cobra.Command, args []string) error {
	var in DI1HedgeInput
	if err := readInput(cmd, &in); err != nil {
		return err
	}
	bonds, err := buildBonds(in.Bonds)
	if err != nil {
		return err
	}
	c, err := in.curve()
	if err != nil {
		return err
	}
	res, err := bond.Hedge(bond.HedgeInput{
		Bonds:         bonds,
		Weights:       in.Weights,
		AsMarketValue: in.MarketValue,
		Contracts:     c.Contracts,
		WithConvexity: in.WithConvexity,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd, DI1HedgeOutput{
		PortfolioValue:     Float(res.PortfolioValue),
		PortfolioDuration:  Float(res.PortfolioDuration),
		PortfolioConvexity: Float(res.PortfolioConvexity),
		Contracts:          res.Contracts,
	})
}

func runDI1Spread(cmd *cobra.Command, args []string) error {
	var in DI1SpreadInput
	if err := readInput(cmd, &in); err != nil {
		return err
	}
	bonds, err := buildBonds(in.Bonds)
	if err != nil {
		return err
	}
	c, err := in.curve()
	if err != nil {
		return err
	}
	out := make([]DI1SpreadOutput, len(bonds))
	for i, b := range bonds {
		s, err := bond.SpreadOverDI1(b, c)
		if err != nil {
			return err
		}
		out[i] = DI1SpreadOutput{Float(s.SpreadBP), Float(s.PVAtCurve), s.Iterations}
	}
	return writeJSON(cmd, out)
}
