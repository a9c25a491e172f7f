// Package analysis implements the curtailment-enabled headroom engine: for
// each balancing authority it derives seasonal demand thresholds, evaluates
// the curtailment a constant load addition would incur over the historical
// series, and inverts that relationship to solve for the load addition that
// meets a target annual curtailment rate.
//
// The methodology follows "Rethinking Load Growth" (Norris et al., 2025):
// absolute seasonal peak thresholds, year-round evaluation with
// month-dependent thresholds, and a bracketed root search over the
// monotonic curtailment-rate curve.
package analysis

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/FrankLong1/eia-data/internal/timeseries"
)

// Analyzer owns the immutable per-BA caches and exposes the evaluator,
// solver, and aggregator over them. It is safe for concurrent use once
// constructed: all per-BA state is read-only.
type Analyzer struct {
	logger zerolog.Logger
	cache  map[string]*baCache
	bas    []string
}

// New builds per-BA caches from a dataset. BAs with no usable seasonal data
// are excluded with a warning rather than failing the run; a dataset that
// yields no usable BA at all is an error.
func New(ds *timeseries.Dataset, logger zerolog.Logger) (*Analyzer, error) {
	a := &Analyzer{
		logger: logger.With().Str("component", "analyzer").Logger(),
		cache:  make(map[string]*baCache),
	}

	hours := 0
	for _, ba := range ds.BAs() {
		cache, err := buildCache(ds.Series(ba))
		if err != nil {
			a.logger.Warn().Str("ba", ba).Err(err).Msg("excluding BA from analysis")
			continue
		}
		a.cache[ba] = cache
		a.bas = append(a.bas, ba)
		hours += cache.series.Len()
	}
	if len(a.bas) == 0 {
		return nil, fmt.Errorf("no usable balancing authorities in dataset: %w", ErrNoSeasonalData)
	}

	a.logger.Info().Int("bas", len(a.bas)).Int("hours", hours).Msg("seasonal thresholds precomputed")
	return a, nil
}

// BAs lists the balancing authorities available for analysis, sorted.
func (a *Analyzer) BAs() []string {
	out := make([]string, len(a.bas))
	copy(out, a.bas)
	return out
}

// Peaks returns the seasonal peaks for one BA.
func (a *Analyzer) Peaks(ba string) (SeasonalPeaks, error) {
	cache, ok := a.cache[ba]
	if !ok {
		return SeasonalPeaks{}, fmt.Errorf("%w: %s", ErrUnknownBA, ba)
	}
	return cache.peaks, nil
}

// LoadFactor returns mean/peak demand for one BA.
func (a *Analyzer) LoadFactor(ba string) (float64, error) {
	cache, ok := a.cache[ba]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownBA, ba)
	}
	return cache.loadFactor, nil
}

// CurtailmentRate computes the fraction of a constant load addition's
// annual energy that must be shed to keep augmented demand under the
// hour-specific seasonal threshold. The sweep is a single fused pass over
// the cached series. The result is non-decreasing in loadMW, which is what
// makes the headroom search a root-finding problem.
func (a *Analyzer) CurtailmentRate(ba string, loadMW float64) (float64, error) {
	cache, ok := a.cache[ba]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownBA, ba)
	}
	return cache.curtailmentRate(loadMW), nil
}

func (c *baCache) curtailmentRate(loadMW float64) float64 {
	totalAdded := loadMW * float64(c.series.Len())
	if totalAdded <= 0 {
		return 0
	}

	curtailed := 0.0
	demand := c.series.Demand
	for i, t := range c.thresholds {
		if excess := demand[i] + loadMW - t; excess > 0 {
			curtailed += excess
		}
	}
	return curtailed / totalAdded
}
