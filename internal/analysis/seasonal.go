package analysis

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/FrankLong1/eia-data/internal/timeseries"
)

// Season labels which historical peak caps an hour's demand.
type Season int

const (
	// SeasonSummer covers June-August plus the April-May and
	// September-October shoulders.
	SeasonSummer Season = iota
	// SeasonWinter covers December-February plus the November and March
	// shoulders.
	SeasonWinter
)

func (s Season) String() string {
	if s == SeasonWinter {
		return "winter"
	}
	return "summer"
}

// seasonByMonth assigns every calendar month to exactly one season. Keeping
// the whole mapping in one table makes the full-coverage invariant checkable
// at a glance (and in TestSeasonCoverage).
var seasonByMonth = map[time.Month]Season{
	time.January:   SeasonWinter,
	time.February:  SeasonWinter,
	time.March:     SeasonWinter,
	time.April:     SeasonSummer,
	time.May:       SeasonSummer,
	time.June:      SeasonSummer,
	time.July:      SeasonSummer,
	time.August:    SeasonSummer,
	time.September: SeasonSummer,
	time.October:   SeasonSummer,
	time.November:  SeasonWinter,
	time.December:  SeasonWinter,
}

// coreSummerMonths / coreWinterMonths are the month sets whose observed
// maxima define the seasonal peaks. Shoulder months inherit a peak but do
// not contribute to it.
var (
	coreSummerMonths = map[time.Month]bool{time.June: true, time.July: true, time.August: true}
	coreWinterMonths = map[time.Month]bool{time.December: true, time.January: true, time.February: true}
)

// SeasonOf returns the season assigned to a calendar month.
func SeasonOf(m time.Month) Season {
	return seasonByMonth[m]
}

// SeasonalPeaks holds the historical maximum demand per season for one BA.
type SeasonalPeaks struct {
	SummerMW float64
	WinterMW float64
}

// Max returns the larger of the two peaks.
func (p SeasonalPeaks) Max() float64 {
	if p.WinterMW > p.SummerMW {
		return p.WinterMW
	}
	return p.SummerMW
}

// ThresholdFor maps a month to its applicable seasonal peak.
func (p SeasonalPeaks) ThresholdFor(m time.Month) float64 {
	if SeasonOf(m) == SeasonWinter {
		return p.WinterMW
	}
	return p.SummerMW
}

// baCache is the immutable per-BA state built once and read by every
// evaluator, optimizer, and aggregator call.
type baCache struct {
	series     *timeseries.Series
	peaks      SeasonalPeaks
	thresholds []float64
	loadFactor float64
}

// buildCache computes seasonal peaks and per-hour thresholds for one BA.
// A season with no observations falls back to the other season's peak so
// every hour keeps a usable threshold; when both core month sets are empty
// the BA is unusable and ErrNoSeasonalData is returned.
func buildCache(s *timeseries.Series) (*baCache, error) {
	if s == nil || s.Len() == 0 {
		return nil, ErrNoSeasonalData
	}

	var (
		summerPeak, winterPeak float64
		summerSeen, winterSeen bool
	)
	for i, m := range s.Months {
		d := s.Demand[i]
		if coreSummerMonths[m] {
			if !summerSeen || d > summerPeak {
				summerPeak = d
				summerSeen = true
			}
		}
		if coreWinterMonths[m] {
			if !winterSeen || d > winterPeak {
				winterPeak = d
				winterSeen = true
			}
		}
	}

	switch {
	case !summerSeen && !winterSeen:
		return nil, ErrNoSeasonalData
	case !summerSeen:
		summerPeak = winterPeak
	case !winterSeen:
		winterPeak = summerPeak
	}

	peaks := SeasonalPeaks{SummerMW: summerPeak, WinterMW: winterPeak}

	thresholds := make([]float64, s.Len())
	peakDemand := 0.0
	for i, m := range s.Months {
		thresholds[i] = peaks.ThresholdFor(m)
		if s.Demand[i] > peakDemand {
			peakDemand = s.Demand[i]
		}
	}

	loadFactor := 0.0
	if peakDemand > 0 {
		loadFactor = stat.Mean(s.Demand, nil) / peakDemand
	}

	return &baCache{
		series:     s,
		peaks:      peaks,
		thresholds: thresholds,
		loadFactor: loadFactor,
	}, nil
}
