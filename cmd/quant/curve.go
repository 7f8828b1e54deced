package main

import (
	"github.com/spf13/cobra"

	"github.com/meenmo/quantlib/bond"
	"github.com/meenmo/quantlib/curve"
	"github.com/meenmo/quantlib/daycount"
)

// CurveRateInput is a zero curve on day pillars queried at other days.
// Method defaults to flat_forward; Base (days per year) to 252.
type CurveRateInput struct {
	Days   []float64 `json:"days" validate:"required,min=1"`
	Rates  []float64 `json:"rates" validate:"required,min=1"`
	Base   float64   `json:"base" validate:"gte=0"`
	Method string    `json:"method"`
	At     []float64 `json:"at" validate:"required,min=1"`
}

type CurveRateOutput struct {
	Method    string  `json:"method"`
	Rates     []Float `json:"rates"`
	Discounts []Float `json:"discounts"`
}

// CurveFitInput is a set of bonds sharing a reference date.
type CurveFitInput struct {
	Bonds   []BondSpec `json:"bonds" validate:"required,min=1,dive"`
	Lambdas [2]float64 `json:"lambdas"`
	Base    float64    `json:"base" validate:"gte=0"`
	// At are year fractions (NSS) or days (bootstrap) to evaluate.
	At []float64 `json:"at"`
}

type NSSOutput struct {
	Betas      [4]Float `json:"betas"`
	Lambdas    [2]Float `json:"lambdas"`
	Objective  Float    `json:"objective"`
	Iterations int      `json:"iterations"`
	Rates      []Float  `json:"rates,omitempty"`
}

type BootstrapOutput struct {
	Days  []Float `json:"days"`
	Rates []Float `json:"rates"`
	At    []Float `json:"at,omitempty"`
}

// CurveSwapsInput holds par swap rates in percent keyed by tenor ("6M", "10Y").
// The fixed leg accrues on Convention over Calendar (ACT/360 by default).
type CurveSwapsInput struct {
	Settlement string             `json:"settlement" validate:"required,date"`
	Quotes     map[string]float64 `json:"quotes" validate:"required,min=1"`
	Convention string             `json:"convention"`
	Calendar   string             `json:"calendar"`
	FreqMonths int                `json:"freq_months" validate:"gte=0"`
	PayLag     int                `json:"pay_lag" validate:"gte=0"`
	// At are calendar days from settlement to evaluate.
	At []float64 `json:"at"`
}

type CurveSwapsOutput struct {
	Days      []Float `json:"days"`
	Rates     []Float `json:"rates"`
	Discounts []Float `json:"discounts"`
	At        []Float `json:"at,omitempty"`
}

func newCurveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Zero curve interpolation, NSS fits and bootstraps",
	}
	cmd.AddCommand(
		&cobra.Command{Use: "rate", Short: "Interpolate a zero curve", RunE: runCurveRate},
		&cobra.Command{Use: "nss", Short: "Fit a Nelson-Siegel-Svensson curve to bond prices", RunE: runCurveNSS},
		&cobra.Command{Use: "bootstrap", Short: "Bootstrap a flat-forward zero curve from bond prices", RunE: runCurveBootstrap},
		&cobra.Command{Use: "swaps", Short: "Strip par swap rates into a discount curve", RunE: runCurveSwaps},
	)
	return cmd
}

func runCurveRate(cmd *cobra.Command, args []string) error {
	var in CurveRateInput
	if err := readInput(cmd, &in); err != nil {
		return err
	}
	method := curve.FlatForward
	if in.Method != "" {
		m, err := curve.ParseMethod(in.Method)
		if err != nil {
			return err
		}
		method = m
	}
	if in.Base == 0 {
		in.Base = 252
	}
	c, err := curve.FromZeros(in.Days, in.Rates, in.Base, method)
	if err != nil {
		return err
	}
	rates, err := c.RatesWith(in.At, method)
	if err != nil {
		return err
	}
	out := CurveRateOutput{Method: method.String(), Rates: floats(rates)}
	for _, d := range in.At {
		df, err := c.DiscountAt(d, method)
		if err != nil {
			return err
		}
		out.Discounts = append(out.Discounts, Float(df))
	}
	return writeJSON(cmd, out)
}

func bondQuotes(specs []BondSpec) ([]bond.Bond, []curve.BondQuote, error) {
	bonds, err := buildBonds(specs)
	if err != nil {
		return nil, nil, err
	}
	quotes := make([]curve.BondQuote, len(bonds))
	for i, b := range bonds {
		quotes[i] = bond.Quote(b)
	}
	return bonds, quotes, nil
}

func runCurveNSS(cmd *cobra.Command, args []string) error {
	var in CurveFitInput
	if err := readInput(cmd, &in); err != nil {
		return err
	}
	bonds, quotes, err := bondQuotes(in.Bonds)
	if err != nil {
		return err
	}
	n, err := curve.FitNSS(bonds[0].RefDate(), bond.DayCount(), quotes, curve.NSSOptions{Lambdas: in.Lambdas})
	if err != nil {
		return err
	}
	out := NSSOutput{Objective: Float(n.Objective), Iterations: n.Iterations}
	for i, b := range n.Betas {
		out.Betas[i] = Float(b)
	}
	for i, l := range n.Lambdas {
		out.Lambdas[i] = Float(l)
	}
	for _, t := range in.At {
		out.Rates = append(out.Rates, Float(n.Rate(t)))
	}
	return writeJSON(cmd, out)
}

func runCurveBootstrap(cmd *cobra.Command, args []string) error {
	var in CurveFitInput
	if err := readInput(cmd, &in); err != nil {
		return err
	}
	bonds, quotes, err := bondQuotes(in.Bonds)
	if err != nil {
		return err
	}
	if in.Base == 0 {
		in.Base = 252
	}
	c, err := curve.Bootstrap(bonds[0].RefDate(), bond.DayCount(), quotes, in.Base)
	if err != nil {
		return err
	}
	out := BootstrapOutput{Days: floats(c.Days()), Rates: floats(c.Rates())}
	if len(in.At) > 0 {
		at, err := c.RatesWith(in.At, c.Method())
		if err != nil {
			return err
		}
		out.At = floats(at)
	}
	return writeJSON(cmd, out)
}

func runCurveSwaps(cmd *cobra.Command, args []string) error {
	var in CurveSwapsInput
	if err := readInput(cmd, &in); err != nil {
		return err
	}
	if in.Convention == "" {
		in.Convention = "ACT/360"
	}
	dc, err := daycount.Parse(in.Convention, in.Calendar)
	if err != nil {
		return err
	}
	c, err := curve.BootstrapSwaps(parseDate(in.Settlement), in.Quotes, curve.SwapOptions{
		FixedDC:    dc,
		FreqMonths: in.FreqMonths,
		PayLag:     in.PayLag,
	})
	if err != nil {
		return err
	}
	out := CurveSwapsOutput{Days: floats(c.Days()), Rates: floats(c.Rates()), Discounts: floats(c.Discounts())}
	if len(in.At) > 0 {
		at, err := c.RatesWith(in.At, curve.FlatForward)
		if err != nil {
			return err
		}
		out.At = floats(at)
	}
	return writeJSON(cmd, out)
}
