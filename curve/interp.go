package curve

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

type predictor func(x float64) float64

// build fits method over the pillars. Callers guarantee x lies within [xs[0], xs[n-1]].
func build(method Method, xs, ys []float64, base float64) (predictor, error) {
	n := len(xs)
	if n == 1 {
		y := ys[0]
		return func(float64) float64 { return y }, nil
	}

	switch method {
	case Linear:
		return fitGonum(&interp.PiecewiseLinear{}, xs, ys)
	case Cubic:
		if n < 3 {
			return fitGonum(&interp.PiecewiseLinear{}, xs, ys)
		}
		return fitGonum(&interp.NaturalCubic{}, xs, ys)
	case Quadratic:
		return quadratic(xs, ys), nil
	case Nearest:
		return step(xs, ys, func(i int, x float64) int {
			// Ties go to the lower pillar.
			if x-xs[i-1] <= xs[i]-x {
				return i - 1
			}
			return i
		}), nil
	case Previous:
		return step(xs, ys, func(i int, x float64) int { return i - 1 }), nil
	case Next:
		return step(xs, ys, func(i int, x float64) int { return i }), nil
	case FlatForward:
		return flatForward(xs, ys, base)
	}
	return nil, errUnknownMethod(method)
}

func fitGonum(f interp.FittablePredictor, xs, ys []float64) (predictor, error) {
	if err := f.Fit(xs, ys); err != nil {
		return nil, err
	}
	return f.Predict, nil
}

// step returns the pillar value chosen by pick(i, x), where xs[i-1] < x < xs[i].
// Exact pillar hits return that pillar.
func step(xs, ys []float64, pick func(i int, x float64) int) predictor {
	return func(x float64) float64 {
		i := sort.SearchFloat64s(xs, x)
		if i < len(xs) && xs[i] == x {
			return ys[i]
		}
		if i == 0 {
			return ys[0]
		}
		if i >= len(xs) {
			return ys[len(ys)-1]
		}
		return ys[pick(i, x)]
	}
}

// quadratic is the Lagrange parabola through the three pillars nearest x.
func quadratic(xs, ys []float64) predictor {
	if len(xs) < 3 {
		lin := &interp.PiecewiseLinear{}
		_ = lin.Fit(xs, ys)
		return lin.Predict
	}
	return func(x float64) float64 {
		i := sort.SearchFloat64s(xs, x)
		lo := i - 2
		if i < len(xs) && xs[i] == x {
			return ys[i]
		}
		// Centre the three-point window on the bracket.
		if i > 0 && i < len(xs) && (x-xs[i-1]) > (xs[i]-x) {
			lo = i - 1
		}
		if lo < 0 {
			lo = 0
		}
		if lo > len(xs)-3 {
			lo = len(xs) - 3
		}
		x0, x1, x2 := xs[lo], xs[lo+1], xs[lo+2]
		y0, y1, y2 := ys[lo], ys[lo+1], ys[lo+2]
		l0 := (x - x1) * (x - x2) / ((x0 - x1) * (x0 - x2))
		l1 := (x - x0) * (x - x2) / ((x1 - x0) * (x1 - x2))
		l2 := (x - x0) * (x - x1) / ((x2 - x0) * (x2 - x1))
		return y0*l0 + y1*l1 + y2*l2
	}
}

// flatForward interpolates log discount factors linearly in days and converts back.
func flatForward(xs, ys []float64, base float64) (predictor, error) {
	logDF := make([]float64, len(xs))
	for i := range xs {
		logDF[i] = math.Log(RateToDiscount(ys[i], xs[i], base))
	}
	lin := &interp.PiecewiseLinear{}
	if err := lin.Fit(xs, logDF); err != nil {
		return nil, err
	}
	return func(x float64) float64 {
		return DiscountToRate(math.Exp(lin.Predict(x)), x, base)
	}, nil
}
