package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meenmo/quantlib/bond"
	"github.com/meenmo/quantlib/logger"
	"github.com/meenmo/quantlib/utils"
)

// BondSpec describes a Brazilian government bond.
//
// Conventions:
// - rates and coupons are decimals (e.g., 0.1 means 10%)
// - principal defaults to 1000, coupon to 10% (NTN-F) or 6% (NTN-B)
type BondSpec struct {
	Type      string   `json:"type" validate:"omitempty,oneof=ltn ntnf ntnb LTN NTNF NTNB"`
	Expiry    string   `json:"expiry" validate:"required,date"`
	Ref       string   `json:"ref" validate:"required,date"`
	Principal float64  `json:"principal" validate:"gte=0"`
	Coupon    float64  `json:"coupon" validate:"gte=0"`
	Rate      *float64 `json:"rate"`
	Price     *float64 `json:"price" validate:"omitempty,gt=0"`
	VNA       *float64 `json:"vna" validate:"omitempty,gt=0"`
}

func (s BondSpec) input() bond.Input {
	return bond.Input{
		Expiry:    parseDate(s.Expiry),
		Ref:       parseDate(s.Ref),
		Principal: s.Principal,
		Coupon:    s.Coupon,
		Rate:      s.Rate,
		Price:     s.Price,
		VNA:       s.VNA,
		Logger:    logger.L,
	}
}

func (s BondSpec) build(kind string) (bond.Bond, error) {
	if kind == "" {
		kind = s.Type
	}
	switch strings.ToLower(kind) {
	case "ltn":
		return bond.NewLTN(s.input())
	case "ntnf":
		return bond.NewNTNF(s.input())
	case "ntnb":
		return bond.NewNTNB(s.input())
	}
	return nil, fmt.Errorf("unknown bond type %q (use ltn, ntnf or ntnb)", kind)
}

type CashflowOutput struct {
	Date      string  `json:"date"`
	Coupon    float64 `json:"coupon"`
	Principal float64 `json:"principal"`
}

type RiskOutput struct {
	Macaulay  Float `json:"macaulay"`
	Modified  Float `json:"modified"`
	Convexity Float `json:"convexity"`
	DV01      Float `json:"dv01"`
}

type BondOutput struct {
	Type      string           `json:"type"`
	Rate      Float            `json:"rate"`
	Price     Float            `json:"price"`
	VNA       *Float           `json:"vna,omitempty"`
	Quotation *Float           `json:"quotation,omitempty"`
	Risk      RiskOutput       `json:"risk"`
	Cashflows []CashflowOutput `json:"cashflows"`
	Warning   string           `json:"warning,omitempty"`
}

func bondOutput(b bond.Bond) BondOutput {
	r := b.Sensitivities()
	out := BondOutput{
		Price: Float(b.PriceValue()),
		Risk:  RiskOutput{Float(r.Macaulay), Float(r.Modified), Float(r.Convexity), Float(r.DV01)},
	}
	var warn error
	switch v := b.(type) {
	case *bond.LTN:
		out.Type, out.Rate, warn = "ltn", Float(v.Rate), v.Warning
	case *bond.NTNF:
		out.Type, out.Rate, warn = "ntnf", Float(v.Rate), v.Warning
	case *bond.NTNB:
		vna, q := Float(v.VNA), Float(v.Quotation)
		out.Type, out.Rate, out.VNA, out.Quotation, warn = "ntnb", Float(v.Rate), &vna, &q, v.Warning
	}
	if warn != nil {
		out.Warning = warn.Error()
	}
	for _, c := range b.Cashflows() {
		out.Cashflows = append(out.Cashflows, CashflowOutput{c.Date.Format(utils.DateLayout), c.Coupon, c.Principal})
	}
	return out
}

func newBondCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bond",
		Short: "Price LTN, NTN-F and NTN-B bonds",
	}
	for _, kind := range []string{"ltn", "ntnf", "ntnb"} {
		cmd.AddCommand(&cobra.Command{
			Use:   kind,
			Short: fmt.Sprintf("Price an %s from its rate, or solve the rate from its price", strings.ToUpper(kind)),
			RunE: func(cmd *cobra.Command, args []string) error {
				var in BondSpec
				if err := readInput(cmd, &in); err != nil {
					return err
				}
				b, err := in.build(kind)
				if err != nil {
					return err
				}
				return writeJSON(cmd, bondOutput(b))
			},
		})
	}
	return cmd
}
