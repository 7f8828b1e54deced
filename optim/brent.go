package optim

import (
	"fmt"
	"math"

	"github.com/meenmo/quantlib/errs"
)

// Brent finds a root of f in [a, b] with Brent's method. f(a) and f(b) must
// bracket a sign change. It returns the root and the iterations used.
func Brent(f func(float64) float64, a, b, tol float64, maxIter int) (float64, int, error) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, 0, nil
	}
	if fb == 0 {
		return b, 0, nil
	}
	if math.IsNaN(fa) || math.IsNaN(fb) || fa*fb > 0 {
		return math.NaN(), 0, errs.New(errs.OptimisationFailed, "optim.Brent", [2]float64{a, b},
			"root is not bracketed: f(%g)=%g, f(%g)=%g", a, fa, b, fb)
	}

	c, fc := a, fa
	d := b - a
	e := d

	for iter := 1; iter <= maxIter; iter++ {
		if fb*fc > 0 {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol1 := 2*eps*math.Abs(b) + 0.5*tol
		m := 0.5 * (c - b)
		if math.Abs(m) <= tol1 || fb == 0 {
			return b, iter, nil
		}

		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			// Inverse quadratic interpolation, or secant when a == c.
			var p, q float64
			s := fb / fa
			if a == c {
				p = 2 * m * s
				q = 1 - s
			} else {
				qa := fa / fc
				r := fb / fc
				p = s * (2*m*qa*(qa-r) - (b-a)*(r-1))
				q = (qa - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			} else {
				p = -p
			}
			if 2*p < math.Min(3*m*q-math.Abs(tol1*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = m
				e = d
			}
		} else {
			d = m
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else if m > 0 {
			b += tol1
		} else {
			b -= tol1
		}
		fb = f(b)
		if math.IsNaN(fb) {
			return math.NaN(), iter, errs.New(errs.OptimisationFailed, "optim.Brent", b, "objective is NaN")
		}
	}
	return b, maxIter, errs.Wrap(errs.OptimisationFailed, "optim.Brent", b,
		fmt.Errorf("did not converge after %d iterations", maxIter))
}

const eps = 2.220446049250313e-16
