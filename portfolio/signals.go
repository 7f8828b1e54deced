package portfolio

import (
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/logger"
	"github.com/meenmo/quantlib/optim"
)

// SignalScheme names a long-short weighting of a cross section of signals.
type SignalScheme string

const (
	ZScores    SignalScheme = "zscores"
	Winsorized SignalScheme = "winsorized"
	Rank       SignalScheme = "rank"
	SignalVol  SignalScheme = "vol_target"
	SignalERC  SignalScheme = "ERC"
	SignalIVP  SignalScheme = "IVP"
	SignalEW   SignalScheme = "EW"
)

const winsorizeLimit = 0.1

// needsCov reports whether scheme uses the covariance matrix.
func (s SignalScheme) needsCov() bool {
	switch s.normal() {
	case SignalVol, SignalERC, SignalIVP:
		return true
	}
	return false
}

func (s SignalScheme) normal() SignalScheme {
	switch l := strings.ToLower(string(s)); l {
	case "erc":
		return SignalERC
	case "ivp":
		return SignalIVP
	case "ew":
		return SignalEW
	default:
		return SignalScheme(l)
	}
}

// SignalWeights turns a cross section of signals into long-short weights.
// Larger signals get larger weights. Missing signals get zero weight and are
// left out of the covariance. The unconstrained schemes gross to Σ|w| = 2;
// vol_target and ERC are scaled to the portfolio volatility target. Unknown
// schemes fall back to rank weights.
func SignalWeights(signals []float64, scheme SignalScheme, cov mat.Symmetric, opts WeightOptions) ([]float64, error) {
	const op = "portfolio.SignalWeights"
	scheme = scheme.normal()
	valid := validIndex(signals)
	out := make([]float64, len(signals))
	if len(valid) == 0 {
		return out, nil
	}
	s := pick(signals, valid)

	var sub *mat.SymDense
	if scheme.needsCov() {
		if cov == nil || cov.SymmetricDim() != len(signals) {
			return nil, errs.New(errs.Precondition, op, len(signals), "covariance must match the %d signals", len(signals))
		}
		sub = subCov(cov, valid)
		if err := checkCov(op, sub); err != nil {
			return nil, err
		}
	}

	var w []float64
	var err error
	switch scheme {
	case ZScores:
		w = gross(zscores(s))
	case Winsorized:
		w = gross(winsorize(zscores(s), winsorizeLimit))
	case SignalVol:
		w, err = maxSignalAtVol(s, sub, opts.volTarget(), opts.Solver)
	case SignalERC:
		w, err = signedRiskParity(s, sub, opts.volTarget(), opts.Solver)
	case SignalIVP:
		w = make([]float64, len(s))
		vols := Vols(sub)
		for i, r := range rankBaseline(s) {
			w[i] = sign(r) / vols[i]
		}
		w = gross(w)
	case SignalEW:
		w = make([]float64, len(s))
		for i, r := range rankBaseline(s) {
			w[i] = sign(r)
		}
		w = gross(w)
	default:
		if scheme != Rank {
			logger.L.Warn("signal weighting scheme not recognised, using rank weights", "scheme", scheme)
		}
		w = gross(rankBaseline(s))
	}
	if err != nil {
		return nil, err
	}
	for k, i := range valid {
		out[i] = w[k]
	}
	return out, nil
}

func validIndex(x []float64) []int {
	var idx []int
	for i, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			idx = append(idx, i)
		}
	}
	return idx
}

func pick(x []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = x[i]
	}
	return out
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// gross scales w to Σ|w| = 2. A zero vector is returned unchanged.
func gross(w []float64) []float64 {
	s := 0.0
	for _, v := range w {
		s += math.Abs(v)
	}
	if s == 0 {
		return w
	}
	for i := range w {
		w[i] *= 2 / s
	}
	return w
}

// zscores standardises with the population standard deviation.
func zscores(x []float64) []float64 {
	out := make([]float64, len(x))
	mean, _ := stats.Mean(x)
	sd, _ := stats.StandardDeviationPopulation(x)
	if sd == 0 {
		return out
	}
	for i, v := range x {
		out[i] = (v - mean) / sd
	}
	return out
}

// winsorize clamps the lowest and highest limit fraction of x to the nearest
// kept order statistic.
func winsorize(x []float64, limit float64) []float64 {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
	out := append([]float64(nil), x...)
	lo := int(limit * float64(n))
	hi := n - int(math.Round(limit*float64(n)))
	if lo > 0 {
		for _, i := range idx[:lo] {
			out[i] = x[idx[lo]]
		}
	}
	if hi < n {
		for _, i := range idx[hi:] {
			out[i] = x[idx[hi-1]]
		}
	}
	return out
}

// ranks are 1-based with ties sharing their average rank.
func ranks(x []float64) []float64 {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
	r := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			r[idx[k]] = avg
		}
		i = j + 1
	}
	return r
}

// rankBaseline is the demeaned rank portfolio before grossing.
func rankBaseline(x []float64) []float64 {
	r := ranks(x)
	mean, _ := stats.Mean(r)
	for i := range r {
		r[i] -= mean
	}
	return r
}

// maxSignalAtVol maximises s·w subject to √(wᵀΣw) = target with each weight
// boxed between zero and the largest rank weight on the side the rank
// portfolio puts it. The box is enforced by w = lo + (hi-lo)(1+sin z)/2 and the
// volatility constraint by an augmented Lagrangian started at the penalty of
// the solver config.
func maxSignalAtVol(s []float64, cov mat.Symmetric, target float64, opts optim.Options) ([]float64, error) {
	const op = "portfolio.maxSignalAtVol"
	if !(target > 0) {
		return nil, errs.New(errs.Precondition, op, target, "vol target must be positive")
	}
	n := len(s)
	base := gross(rankBaseline(s))
	m := 0.0
	for _, v := range base {
		m = math.Max(m, math.Abs(v))
	}
	lo, hi := make([]float64, n), make([]float64, n)
	z0 := make([]float64, n)
	for i, v := range base {
		b := sign(v) * m
		lo[i], hi[i] = math.Min(b, 0), math.Max(b, 0)
		if hi[i] > lo[i] {
			// Start inside the box: sin has a flat derivative on its bounds.
			z0[i] = math.Asin(math.Max(-0.9, math.Min(0.9, 2*(v-lo[i])/(hi[i]-lo[i])-1)))
		}
	}
	box := func(z []float64) []float64 {
		w := make([]float64, n)
		for i, v := range z {
			w[i] = lo[i] + (hi[i]-lo[i])*(1+math.Sin(v))/2
		}
		return w
	}

	lambda, mu := 0.0, config.GetConfig().Solver.Penalty
	z := z0
	var w []float64
	for outer := 0; outer < 50; outer++ {
		l, u := lambda, mu
		p := optim.Problem{
			Func: func(z []float64) float64 {
				w := box(z)
				c := PortfolioVol(cov, w) - target
				f := l*c + u/2*c*c
				for i := range w {
					f -= s[i] * w[i]
				}
				return f
			},
			Grad: func(g, z []float64) {
				w := box(z)
				wv := mat.NewVecDense(n, w)
				var sw mat.VecDense
				sw.MulVec(cov, wv)
				vol := math.Sqrt(mat.Dot(wv, &sw))
				k := (l + u*(vol-target)) / vol
				for i := range g {
					dw := (hi[i] - lo[i]) * math.Cos(z[i]) / 2
					g[i] = (-s[i] + k*sw.AtVec(i)) * dw
				}
			},
		}
		res, err := optim.Minimize(p, z, opts)
		if err != nil {
			return nil, errs.Wrap(errs.OptimisationFailed, op, target, err)
		}
		z = res.X
		w = box(z)
		c := PortfolioVol(cov, w) - target
		if math.Abs(c) < 1e-9 {
			break
		}
		lambda += mu * c
	}
	if vol := PortfolioVol(cov, w); math.Abs(vol-target) > 1e-6 {
		return nil, errs.New(errs.OptimisationFailed, op, vol, "portfolio volatility %g missed target %g", vol, target)
	}
	return w, nil
}

// signedRiskParity equalises risk contributions with each position on the
// side of the rank portfolio, scaled to target. Assets with a zero rank weight
// stay out.
func signedRiskParity(s []float64, cov mat.Symmetric, target float64, opts optim.Options) ([]float64, error) {
	const op = "portfolio.signedRiskParity"
	if !(target > 0) {
		return nil, errs.New(errs.Precondition, op, target, "vol target must be positive")
	}
	signs := rankBaseline(s)
	var active []int
	for i, v := range signs {
		if signs[i] = sign(v); signs[i] != 0 {
			active = append(active, i)
		}
	}
	w := make([]float64, len(s))
	if len(active) == 0 {
		return w, nil
	}
	sub := subCov(cov, active)
	signed := mat.NewSymDense(len(active), nil)
	for a, i := range active {
		for b := a; b < len(active); b++ {
			signed.SetSym(a, b, signs[i]*signs[active[b]]*sub.At(a, b))
		}
	}
	y, err := riskParity(signed, opts)
	if err != nil {
		return nil, errs.Wrap(errs.OptimisationFailed, op, len(active), err)
	}
	y = scaleToVol(signed, y, target)
	for a, i := range active {
		w[i] = signs[i] * y[a]
	}
	return w, nil
}
