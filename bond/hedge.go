package bond

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/quantlib/errs"
)

// HedgeShock is the parallel move the hedge neutralises.
const HedgeShock = 0.01

// HedgeInput is a basket of bonds to hedge with DI1 contracts.
type HedgeInput struct {
	Bonds         []Bond
	// Weights are quantities, or market values when AsMarketValue is set.
	Weights       []float64
	AsMarketValue bool
	// Contracts are the DI1 quotes available on the bonds' reference date.
	Contracts     []*DI1
	WithConvexity bool
}

// HedgeResult holds the basket risk and the contracts to trade.
type HedgeResult struct {
	PortfolioValue     float64
	PortfolioDuration  float64
	PortfolioConvexity float64
	// Contracts maps code to number of contracts; positive buys PU.
	Contracts map[string]int
}

// Variation is the first and second order value change of a position worth pu
// under a yield move of shock: pu·(-D·shock + C/2·shock²).
func Variation(pu, duration, convexity, shock float64) float64 {
	return pu * (-duration*shock + convexity/2*shock*shock)
}

type hedgeLeg struct {
	code      string
	maturity  time.Time
	price     float64
	duration  float64
	convexity float64
}

// Hedge picks January DI1 contracts around the basket's modified duration and
// convexity. Without convexity the nearest contract below the basket matches
// duration alone. With convexity the contracts below and above solve
//
//	V·D + x1·P1·D1 + x2·P2·D2 = 0
//	V·C + x1·P1·C1 + x2·P2·C2 = 0
//
// which zeroes Variation for any shock; counts are -round(x).
func Hedge(in HedgeInput) (*HedgeResult, error) {
	if len(in.Bonds) == 0 || len(in.Weights) == 0 {
		return nil, errs.New(errs.Precondition, "bond.Hedge", nil, "no bonds to hedge")
	}
	if len(in.Bonds) != len(in.Weights) {
		return nil, errs.New(errs.Precondition, "bond.Hedge", len(in.Weights), "%d bonds but %d weights", len(in.Bonds), len(in.Weights))
	}
	ref := in.Bonds[0].RefDate()
	for _, b := range in.Bonds[1:] {
		if !b.RefDate().Equal(ref) {
			return nil, errs.New(errs.Precondition, "bond.Hedge", b.RefDate(), "not all reference dates are the same")
		}
	}

	mv := make([]float64, len(in.Bonds))
	res := &HedgeResult{Contracts: map[string]int{}}
	for i, b := range in.Bonds {
		mv[i] = in.Weights[i]
		if !in.AsMarketValue {
			mv[i] *= b.PriceValue()
		}
		res.PortfolioValue += mv[i]
	}
	if res.PortfolioValue == 0 {
		return nil, errs.New(errs.Precondition, "bond.Hedge", 0, "portfolio value is zero")
	}
	for i, b := range in.Bonds {
		w := mv[i] / res.PortfolioValue
		r := b.Sensitivities()
		res.PortfolioDuration += w * r.Modified
		res.PortfolioConvexity += w * r.Convexity
	}

	var legs []hedgeLeg
	for _, c := range in.Contracts {
		if c.Maturity.Month() != time.January || !(c.Yield > 0) || c.DU <= 0 {
			continue
		}
		legs = append(legs, hedgeLeg{
			code:      c.Code,
			maturity:  c.Maturity,
			price:     c.TheoreticalPrice,
			duration:  -c.Duration,
			convexity: c.Convexity,
		})
	}
	sort.Slice(legs, func(i, j int) bool { return legs[i].maturity.Before(legs[j].maturity) })

	pd, pc := res.PortfolioDuration, res.PortfolioConvexity
	var first, second *hedgeLeg
	for i := range legs {
		l := &legs[i]
		if l.duration < pd && l.convexity < pc {
			first = l
		}
		if l.duration > pd && l.convexity > pc {
			second = l
			break
		}
	}
	if first == nil {
		return nil, errs.New(errs.Precondition, "bond.Hedge", pd, "no January DI1 below duration %.4f and convexity %.4f", pd, pc)
	}

	if !in.WithConvexity {
		x := res.PortfolioValue * pd / (first.price * first.duration)
		res.Contracts[first.code] = int(math.Round(x))
		return res, nil
	}
	if second == nil {
		return nil, errs.New(errs.Precondition, "bond.Hedge", pd, "no January DI1 above duration %.4f and convexity %.4f", pd, pc)
	}

	a := mat.NewDense(2, 2, []float64{
		first.price * first.duration, second.price * second.duration,
		first.price * first.convexity, second.price * second.convexity,
	})
	rhs := mat.NewVecDense(2, []float64{-res.PortfolioValue * pd, -res.PortfolioValue * pc})
	var x mat.VecDense
	if err := x.SolveVec(a, rhs); err != nil {
		return nil, errs.Wrap(errs.Precondition, "bond.Hedge", [2]string{first.code, second.code},
			fmt.Errorf("contracts do not span duration and convexity: %w", err))
	}
	res.Contracts[first.code] = -int(math.Round(x.AtVec(0)))
	res.Contracts[second.code] = -int(math.Round(x.AtVec(1)))
	return res, nil
}
