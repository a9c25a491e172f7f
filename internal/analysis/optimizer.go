package analysis

import "fmt"

// SolveOptions tune the headroom solver. Zero values fall back to defaults.
type SolveOptions struct {
	// Tolerance bounds how far the achieved curtailment rate may sit from
	// the target at the solved load addition. Default 1e-6.
	Tolerance float64
	// MaxDoublings caps bracket expansion when the initial upper bound does
	// not reach the target rate. Default 10.
	MaxDoublings int
	// MaxIterations caps the root finder so a single solve has bounded
	// latency. Default 100.
	MaxIterations int
}

func (o SolveOptions) withDefaults() SolveOptions {
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-6
	}
	if o.MaxDoublings <= 0 {
		o.MaxDoublings = 10
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 100
	}
	return o
}

// Headroom solves for the constant load addition (MW) whose annual
// curtailment rate equals targetRate within tolerance.
//
// The search runs in two separated phases so an unreachable target is
// diagnosed before the root finder is ever invoked:
//
//  1. Bound search: start at [0, 0.5 × max seasonal peak] and double the
//     upper bound until its curtailment rate exceeds the target, up to
//     MaxDoublings.
//  2. Bracketed solve: Brent's method on rate(x) − target over the bracket.
//
// The curtailment rate can step discontinuously (a flat demand profile jumps
// from 0 straight past small targets), in which case no load addition meets
// the target within tolerance and ErrTargetUnachievable is returned. That is
// an expected per-combination outcome, not a batch failure.
func (a *Analyzer) Headroom(ba string, targetRate float64, opts SolveOptions) (float64, error) {
	cache, ok := a.cache[ba]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownBA, ba)
	}
	if targetRate < 0 || targetRate >= 1 {
		return 0, fmt.Errorf("%w: target rate %v outside [0, 1)", ErrTargetUnachievable, targetRate)
	}
	opts = opts.withDefaults()

	rateError := func(loadMW float64) float64 {
		return cache.curtailmentRate(loadMW) - targetRate
	}

	// rate(0) is exactly 0, so a zero target is solved by a zero addition.
	// Any positive addition only raises the rate.
	if targetRate == 0 {
		return 0, nil
	}

	lo := 0.0
	hi := 0.5 * cache.peaks.Max()
	if hi <= 0 {
		return 0, fmt.Errorf("%w: %s has zero seasonal peaks", ErrBoundsNotFound, ba)
	}

	found := false
	for i := 0; i < opts.MaxDoublings; i++ {
		if rateError(hi) > 0 {
			found = true
			break
		}
		hi *= 2
	}
	if !found && rateError(hi) <= 0 {
		return 0, fmt.Errorf("%w: %s target %.4g%% not exceeded at %.0f MW", ErrBoundsNotFound, ba, targetRate*100, hi)
	}

	root, err := brentq(rateError, lo, hi, opts.Tolerance, opts.Tolerance, opts.MaxIterations)
	if err != nil {
		// Every solver outcome short of a root is unachievable from the
		// caller's point of view, including running out of iterations; a
		// single combination must never abort a batch over it.
		return 0, fmt.Errorf("%w: %s at target %.4g%%: %v", ErrTargetUnachievable, ba, targetRate*100, err)
	}
	return root, nil
}
