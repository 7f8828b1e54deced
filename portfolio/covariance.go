package portfolio

import (
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/utils"
)

// CovKind selects the conditional covariance estimator.
type CovKind string

const (
	Rolling   CovKind = "rolling"
	Expanding CovKind = "expanding"
	EWMA      CovKind = "ewma"
)

// AnnualisationDays converts daily variances to annual ones.
const AnnualisationDays = 252.0

// CovOptions parameterise Covariance. Zero fields take the portfolio config.
type CovOptions struct {
	Kind CovKind
	// Period is the return horizon h in business days.
	Period int
	// Window is the rolling window, and the history a series needs before its
	// conditional estimate is used.
	Window   int
	Halflife float64
	// Shrinkage pulls the correlation matrix towards the identity:
	// (1-s)·corr + s·I. Zero leaves it unchanged; must be in [0, 1).
	Shrinkage float64
}

func (o CovOptions) withDefaults() CovOptions {
	p := config.GetConfig().Portfolio
	if o.Kind == "" {
		o.Kind = Rolling
	}
	if o.Period <= 0 {
		o.Period = p.CovPeriod
	}
	if o.Window <= 0 {
		o.Window = p.CovWindow
	}
	if o.Halflife <= 0 {
		o.Halflife = p.Halflife
	}
	return o
}

// Covariance is the annualised covariance of h-day log returns of prices as
// of date d, using only data up to the previous close.
//
// Until the panel holds more than Window rows up to d the unconditional
// (full sample) covariance is returned. Afterwards the conditional estimate of
// opts.Kind is used, except for series with Window or fewer prices, whose rows
// and columns are replaced by unconditional values. Pairs are estimated over
// the dates where both returns exist.
func Covariance(prices *series.Frame, d time.Time, opts CovOptions) (*mat.SymDense, error) {
	const op = "portfolio.Covariance"
	opts = opts.withDefaults()
	if prices == nil || prices.Rows() < 2 || prices.Cols() == 0 {
		return nil, errs.New(errs.Precondition, op, nil, "need at least two dates and one column")
	}
	if opts.Shrinkage < 0 || opts.Shrinkage >= 1 {
		return nil, errs.New(errs.Precondition, op, opts.Shrinkage, "shrinkage must be in [0, 1)")
	}
	d = utils.Truncate(d)
	r := utils.SearchDate(prices.Dates, d)
	if r < len(prices.Dates) && prices.Dates[r].Equal(d) {
		r++
	}
	if r == 0 {
		return nil, errs.New(errs.Precondition, op, d.Format(time.DateOnly), "no prices on or before date")
	}

	h := opts.Period
	scale := AnnualisationDays / float64(h)
	unc := pairwiseCov(logDiff(prices.Data, h), scale)

	var cov *mat.SymDense
	if r <= opts.Window {
		cov = unc
	} else {
		past := prices.Shift(1).SliceRows(0, r)
		switch CovKind(strings.ToLower(string(opts.Kind))) {
		case Expanding:
			cov = pairwiseCov(logDiff(past.Data, h), scale)
		case EWMA:
			cov = ewmaCov(logDiff(past.Data, 1), opts.Halflife, AnnualisationDays)
		case Rolling:
			lo := max(0, past.Rows()-opts.Window)
			cov = pairwiseCov(logDiff(past.Data[lo:], h), scale)
		default:
			return nil, errs.New(errs.Precondition, op, opts.Kind, "covariance kind %q not supported", opts.Kind)
		}
		n := prices.Cols()
		for j := 0; j < n; j++ {
			if validCount(past.Data, j) > opts.Window {
				continue
			}
			for k := 0; k < n; k++ {
				cov.SetSym(j, k, unc.At(j, k))
			}
		}
	}
	if opts.Shrinkage > 0 {
		cov = shrink(cov, opts.Shrinkage)
	}
	return cov, nil
}

// Vols returns the square roots of the diagonal.
func Vols(cov mat.Symmetric) []float64 {
	n := cov.SymmetricDim()
	v := make([]float64, n)
	for i := range v {
		v[i] = math.Sqrt(cov.At(i, i))
	}
	return v
}

// Correlation rescales a covariance matrix to unit diagonal.
func Correlation(cov mat.Symmetric) *mat.SymDense {
	n := cov.SymmetricDim()
	vols := Vols(cov)
	corr := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			corr.SetSym(i, j, cov.At(i, j)/(vols[i]*vols[j]))
		}
	}
	return corr
}

func shrink(cov *mat.SymDense, s float64) *mat.SymDense {
	n := cov.SymmetricDim()
	vols := Vols(cov)
	corr := Correlation(cov)
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := (1 - s) * corr.At(i, j)
			if i == j {
				c += s
			}
			out.SetSym(i, j, c*vols[i]*vols[j])
		}
	}
	return out
}

func logDiff(rows [][]float64, h int) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(row))
		for j := range row {
			if i < h {
				out[i][j] = math.NaN()
				continue
			}
			out[i][j] = math.Log(row[j] / rows[i-h][j])
		}
	}
	return out
}

func validCount(rows [][]float64, j int) int {
	n := 0
	for _, row := range rows {
		if !math.IsNaN(row[j]) {
			n++
		}
	}
	return n
}

// pairwiseCov is the sample covariance of every column pair over their common dates.
func pairwiseCov(rows [][]float64, scale float64) *mat.SymDense {
	n := 0
	if len(rows) > 0 {
		n = len(rows[0])
	}
	cov := mat.NewSymDense(max(n, 1), nil)
	for j := 0; j < n; j++ {
		for k := j; k < n; k++ {
			var x, y []float64
			for _, row := range rows {
				if math.IsNaN(row[j]) || math.IsNaN(row[k]) || math.IsInf(row[j], 0) || math.IsInf(row[k], 0) {
					continue
				}
				x = append(x, row[j])
				y = append(y, row[k])
			}
			c := math.NaN()
			if len(x) > 1 {
				c = stat.Covariance(x, y, nil) * scale
			}
			cov.SetSym(j, k, c)
		}
	}
	return cov
}

// ewmaCov is the bias corrected exponentially weighted covariance at the last
// row. Observation i carries weight (1-α)^(T-1-i).
func ewmaCov(rows [][]float64, halflife, scale float64) *mat.SymDense {
	n := len(rows[0])
	decay := 1 - series.HalflifeAlpha(halflife)
	T := len(rows)
	w := make([]float64, T)
	for i := range w {
		w[i] = math.Pow(decay, float64(T-1-i))
	}
	cov := mat.NewSymDense(n, nil)
	for j := 0; j < n; j++ {
		for k := j; k < n; k++ {
			var sw, sw2, mx, my float64
			for i, row := range rows {
				if math.IsNaN(row[j]) || math.IsNaN(row[k]) {
					continue
				}
				sw += w[i]
				sw2 += w[i] * w[i]
				mx += w[i] * row[j]
				my += w[i] * row[k]
			}
			if sw == 0 || sw*sw == sw2 {
				cov.SetSym(j, k, math.NaN())
				continue
			}
			mx /= sw
			my /= sw
			var c float64
			for i, row := range rows {
				if math.IsNaN(row[j]) || math.IsNaN(row[k]) {
					continue
				}
				c += w[i] * (row[j] - mx) * (row[k] - my)
			}
			c /= sw
			c *= sw * sw / (sw*sw - sw2)
			cov.SetSym(j, k, c*scale)
		}
	}
	return cov
}

// subCov extracts the rows and columns idx of cov.
func subCov(cov mat.Symmetric, idx []int) *mat.SymDense {
	out := mat.NewSymDense(len(idx), nil)
	for a, i := range idx {
		for b := a; b < len(idx); b++ {
			out.SetSym(a, b, cov.At(i, idx[b]))
		}
	}
	return out
}
