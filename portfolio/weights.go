// Package portfolio computes portfolio weights from covariance estimates and
// simulates rebalanced backtests of them.
package portfolio

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/logger"
	"github.com/meenmo/quantlib/optim"
)

// Scheme names a long-only weighting scheme.
type Scheme string

const (
	IVP Scheme = "IVP"
	MVP Scheme = "MVP"
	ERC Scheme = "ERC"
	HRP Scheme = "HRP"
	EW  Scheme = "EW"
)

// WeightOptions configure the optimised schemes.
type WeightOptions struct {
	// VolTarget is the portfolio volatility of ERC weights; config default when zero.
	VolTarget float64
	Solver    optim.Options
}

func (o WeightOptions) volTarget() float64 {
	if o.VolTarget > 0 {
		return o.VolTarget
	}
	return config.GetConfig().Portfolio.VolTarget
}

// StaticWeights dispatches on scheme. "MVR" is accepted for MVP; unknown
// schemes fall back to equal weights.
func StaticWeights(scheme Scheme, cov mat.Symmetric, opts WeightOptions) ([]float64, error) {
	switch Scheme(strings.ToUpper(string(scheme))) {
	case IVP:
		return InverseVol(cov)
	case MVP, "MVR":
		return MinVariance(cov, opts.Solver)
	case ERC:
		return EqualRiskContribution(cov, opts.volTarget(), opts.Solver)
	case HRP:
		return HierarchicalRiskParity(cov)
	case EW:
	default:
		logger.L.Warn("weighting scheme not recognised, using equal weights", "scheme", scheme)
	}
	return EqualWeights(cov.SymmetricDim()), nil
}

// EqualWeights is 1/n for each of n assets.
func EqualWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

// InverseVol sets w_i ∝ 1/σ_i with Σw = 1.
func InverseVol(cov mat.Symmetric) ([]float64, error) {
	vols := Vols(cov)
	w := make([]float64, len(vols))
	for i, v := range vols {
		if !(v > 0) {
			return nil, errs.New(errs.Precondition, "portfolio.InverseVol", i, "asset %d has volatility %g", i, v)
		}
		w[i] = 1 / v
	}
	return normalise(w), nil
}

// MinVariance minimises wᵀΣw over the simplex (Σw = 1, w ≥ 0) with basin
// hopping. The simplex is parametrised as w = z²/Σz², starting from equal
// weights; the equal weighted portfolio is returned if nothing beats it.
func MinVariance(cov mat.Symmetric, opts optim.Options) ([]float64, error) {
	n := cov.SymmetricDim()
	if err := checkCov("portfolio.MinVariance", cov); err != nil {
		return nil, err
	}
	variance := func(z []float64) float64 { return quad(cov, simplex(z)) }
	z0 := make([]float64, n)
	for i := range z0 {
		z0[i] = 1
	}
	res, err := optim.BasinHopping(optim.Problem{Func: variance}, z0, opts)
	if err != nil {
		return nil, errs.Wrap(errs.OptimisationFailed, "portfolio.MinVariance", n, err)
	}
	ew := EqualWeights(n)
	if !(res.F < quad(cov, ew)) {
		return ew, nil
	}
	return simplex(res.X), nil
}

// EqualRiskContribution finds long-only weights whose risk contributions
// w_i·(Σw)_i/σ_p² are all 1/n, scaled to portfolio volatility volTarget.
//
// It minimises the convex ½yᵀΣy - (1/n)·Σ log y_i with y = exp(u), whose
// stationary point has y_i·(Σy)_i = 1/n.
func EqualRiskContribution(cov mat.Symmetric, volTarget float64, opts optim.Options) ([]float64, error) {
	const op = "portfolio.EqualRiskContribution"
	if err := checkCov(op, cov); err != nil {
		return nil, err
	}
	if !(volTarget > 0) {
		return nil, errs.New(errs.Precondition, op, volTarget, "vol target must be positive")
	}
	y, err := riskParity(cov, opts)
	if err != nil {
		return nil, errs.Wrap(errs.OptimisationFailed, op, cov.SymmetricDim(), err)
	}
	return scaleToVol(cov, y, volTarget), nil
}

func riskParity(cov mat.Symmetric, opts optim.Options) ([]float64, error) {
	n := cov.SymmetricDim()
	vols := Vols(cov)
	target := 1 / float64(n)
	u0 := make([]float64, n)
	for i, v := range vols {
		u0[i] = -math.Log(v) - 0.5*math.Log(float64(n))
	}
	exp := func(u []float64) *mat.VecDense {
		y := mat.NewVecDense(n, nil)
		for i, v := range u {
			y.SetVec(i, math.Exp(v))
		}
		return y
	}
	p := optim.Problem{
		Func: func(u []float64) float64 {
			y := exp(u)
			f := 0.5 * mat.Inner(y, cov, y)
			for _, v := range u {
				f -= target * v
			}
			return f
		},
		Grad: func(g, u []float64) {
			y := exp(u)
			var sy mat.VecDense
			sy.MulVec(cov, y)
			for i := range g {
				g[i] = y.AtVec(i)*sy.AtVec(i) - target
			}
		},
	}
	res, err := optim.Minimize(p, u0, opts)
	if err != nil {
		return nil, err
	}
	y := exp(res.X).RawVector().Data
	rc := RiskContributions(cov, y)
	for _, c := range rc {
		if math.Abs(c-target) > 1e-5 {
			return nil, errs.New(errs.OptimisationFailed, "portfolio.riskParity", rc, "risk contributions did not equalise")
		}
	}
	return y, nil
}

// RiskContributions returns w_i·(Σw)_i/(wᵀΣw), which sums to one.
func RiskContributions(cov mat.Symmetric, w []float64) []float64 {
	wv := mat.NewVecDense(len(w), append([]float64(nil), w...))
	var sw mat.VecDense
	sw.MulVec(cov, wv)
	total := mat.Dot(wv, &sw)
	rc := make([]float64, len(w))
	for i := range w {
		rc[i] = w[i] * sw.AtVec(i) / total
	}
	return rc
}

// PortfolioVol is √(wᵀΣw).
func PortfolioVol(cov mat.Symmetric, w []float64) float64 {
	return math.Sqrt(quad(cov, w))
}

func quad(cov mat.Symmetric, w []float64) float64 {
	v := mat.NewVecDense(len(w), append([]float64(nil), w...))
	return mat.Inner(v, cov, v)
}

func simplex(z []float64) []float64 {
	w := make([]float64, len(z))
	for i, v := range z {
		w[i] = v * v
	}
	return normalise(w)
}

func normalise(w []float64) []float64 {
	s := 0.0
	for _, v := range w {
		s += v
	}
	for i := range w {
		w[i] /= s
	}
	return w
}

func scaleToVol(cov mat.Symmetric, w []float64, target float64) []float64 {
	k := target / PortfolioVol(cov, w)
	out := make([]float64, len(w))
	for i, v := range w {
		out[i] = k * v
	}
	return out
}

func checkCov(op string, cov mat.Symmetric) error {
	n := cov.SymmetricDim()
	if n == 0 {
		return errs.New(errs.Precondition, op, n, "empty covariance matrix")
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if v := cov.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return errs.New(errs.Precondition, op, [2]int{i, j}, "covariance entry (%d, %d) is %g", i, j, v)
			}
		}
		if !(cov.At(i, i) > 0) {
			return errs.New(errs.Precondition, op, i, "asset %d has non-positive variance", i)
		}
	}
	return nil
}
