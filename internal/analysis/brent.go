package analysis

import (
	"errors"
	"math"
)

var (
	errNoSignChange    = errors.New("analysis: no sign change in bracket")
	errToleranceNotMet = errors.New("analysis: converged bracket does not meet rate tolerance")
	errIterationsSpent = errors.New("analysis: root finder iteration cap reached")
)

// brentq finds a root of f on [a, b], where f(a) and f(b) must have
// opposite signs (an endpoint evaluating to exactly zero is accepted as the
// root). It is the classic Brent method: bisection interleaved with secant
// and inverse quadratic interpolation steps, so convergence is guaranteed
// inside the bracket without derivatives.
//
// Iteration stops when the bracket narrows below xtol. The returned root is
// additionally checked against ftol: if |f(root)| still exceeds ftol the
// function crosses its target through a discontinuity rather than a zero,
// and errToleranceNotMet is returned.
func brentq(f func(float64) float64, a, b, xtol, ftol float64, maxIter int) (float64, error) {
	fa := f(a)
	if fa == 0 {
		return a, nil
	}
	fb := f(b)
	if fb == 0 {
		return b, nil
	}
	if (fa > 0) == (fb > 0) {
		return 0, errNoSignChange
	}

	c, fc := a, fa
	d := b - a
	e := d

	for iter := 0; iter < maxIter; iter++ {
		if (fb > 0) == (fc > 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol1 := 2*machineEps*math.Abs(b) + 0.5*xtol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			if math.Abs(fb) > ftol {
				return b, errToleranceNotMet
			}
			return b, nil
		}

		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			// Attempt interpolation: secant when only two points are
			// distinct, inverse quadratic otherwise.
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xm*q - math.Abs(tol1*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				// Interpolation accepted.
				e = d
				d = p / q
			} else {
				// Interpolation would leave the bracket; bisect.
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		fb = f(b)
	}

	return b, errIterationsSpent
}

const machineEps = 2.220446049250313e-16
