package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/daycount"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/optim"
)

// CashFlow is a dated amount.
type CashFlow struct {
	Date   time.Time
	Amount float64
}

// BondQuote is an observed price and the cash flows it pays.
type BondQuote struct {
	Price float64
	Flows []CashFlow
}

// NSS is a fitted Nelson-Siegel-Svensson curve.
type NSS struct {
	Betas   [4]float64
	Lambdas [2]float64
	Ref     time.Time
	DC      daycount.DayCount
	// Objective is the weighted squared relative pricing error at the optimum.
	Objective  float64
	Iterations int
}

// NSSOptions configures FitNSS. Zero lambdas take the configured defaults.
type NSSOptions struct {
	Lambdas [2]float64
	Solver  optim.Options
}

// NSSRate is the Svensson zero rate at maturity t (years):
//
//	β0 + β1·f1(λ1) + β2·(f1(λ1) - e^{-λ1 t}) + β3·(f1(λ2) - e^{-λ2 t}),  f1(λ) = (1-e^{-λt})/(λt)
func NSSRate(betas [4]float64, lambdas [2]float64, t float64) float64 {
	l1, l2 := lambdas[0], lambdas[1]
	f1 := (1 - math.Exp(-l1*t)) / (l1 * t)
	g1 := (1 - math.Exp(-l2*t)) / (l2 * t)
	return betas[0] + betas[1]*f1 + betas[2]*(f1-math.Exp(-l1*t)) + betas[3]*(g1-math.Exp(-l2*t))
}

// FitNSS estimates the betas by weighted least squares in price space:
//
//	Σ w_i ((p_i - p̂_i)/p_i)²,  w_i = 1/τ(last flow of bond i)
//
// starting from zero betas with fixed lambdas.
func FitNSS(ref time.Time, dc daycount.DayCount, quotes []BondQuote, opts NSSOptions) (*NSS, error) {
	if len(quotes) == 0 {
		return nil, errs.New(errs.Precondition, "curve.FitNSS", nil, "no bonds to fit")
	}
	lambdas := opts.Lambdas
	if lambdas[0] == 0 || lambdas[1] == 0 {
		c := config.GetConfig().Curve
		lambdas = [2]float64{c.NSSLambda1, c.NSSLambda2}
	}

	type prepared struct {
		price   float64
		weight  float64
		times   []float64
		amounts []float64
	}
	bonds := make([]prepared, 0, len(quotes))
	for i, q := range quotes {
		if q.Price <= 0 || len(q.Flows) == 0 {
			return nil, errs.New(errs.Precondition, "curve.FitNSS", i, "bond %d needs a positive price and cash flows", i)
		}
		b := prepared{price: q.Price}
		last := 0.0
		for _, f := range q.Flows {
			t, err := dc.Tf(ref, f.Date)
			if err != nil {
				return nil, fmt.Errorf("FitNSS: bond %d: %w", i, err)
			}
			if t <= 0 {
				continue
			}
			b.times = append(b.times, t)
			b.amounts = append(b.amounts, f.Amount)
			last = math.Max(last, t)
		}
		if last == 0 {
			return nil, errs.New(errs.Precondition, "curve.FitNSS", i, "bond %d has no flows after the reference date", i)
		}
		b.weight = 1 / last
		bonds = append(bonds, b)
	}

	objective := func(x []float64) float64 {
		betas := [4]float64{x[0], x[1], x[2], x[3]}
		total := 0.0
		for _, b := range bonds {
			pv := 0.0
			for k, t := range b.times {
				pv += b.amounts[k] / math.Pow(1+NSSRate(betas, lambdas, t), t)
			}
			e := (b.price - pv) / b.price
			total += b.weight * e * e
		}
		return total
	}

	res, err := optim.Minimize(optim.Problem{Func: objective}, make([]float64, 4), opts.Solver)
	if err != nil {
		return nil, fmt.Errorf("FitNSS: %w", err)
	}
	return &NSS{
		Betas:      [4]float64{res.X[0], res.X[1], res.X[2], res.X[3]},
		Lambdas:    lambdas,
		Ref:        ref,
		DC:         dc,
		Objective:  res.F,
		Iterations: res.Iterations,
	}, nil
}

// Rate is the fitted zero rate at t years.
func (n *NSS) Rate(t float64) float64 {
	return NSSRate(n.Betas, n.Lambdas, t)
}

// RateAt is the fitted zero rate at a date.
func (n *NSS) RateAt(d time.Time) (float64, error) {
	t, err := n.DC.Tf(n.Ref, d)
	if err != nil {
		return math.NaN(), err
	}
	return n.Rate(t), nil
}

// Price discounts flows after the reference date on the fitted curve.
func (n *NSS) Price(flows []CashFlow) (float64, error) {
	pv := 0.0
	for _, f := range flows {
		t, err := n.DC.Tf(n.Ref, f.Date)
		if err != nil {
			return math.NaN(), err
		}
		if t <= 0 {
			continue
		}
		pv += f.Amount / math.Pow(1+n.Rate(t), t)
	}
	return pv, nil
}
