package analysis

import (
	"fmt"
)

// SeasonalSplit counts curtailed hours by the season assigned to their month.
type SeasonalSplit struct {
	SummerHours int
	WinterHours int
}

// Metrics characterises the curtailment a BA would see at a given constant
// load addition. One Metrics value becomes one row of the results table.
type Metrics struct {
	BA                    string
	TargetRate            float64
	LoadAdditionMW        float64
	CurtailmentRate       float64
	TotalCurtailmentMWh   float64
	CurtailedHours        int
	AvgEventDurationHours float64
	MaxEventDurationHours int
	AvgLoadRetention      float64
	Seasonal              SeasonalSplit
	LoadFactor            float64
	SummerPeakMW          float64
	WinterPeakMW          float64
}

// Metrics recomputes curtailment at loadMW and derives the secondary
// statistics: curtailed-hour count, consecutive-event durations, average
// retained-load fraction during curtailed hours, and the summer/winter
// split. It is a pure function of the cached series and loadMW.
func (a *Analyzer) Metrics(ba string, loadMW float64) (Metrics, error) {
	cache, ok := a.cache[ba]
	if !ok {
		return Metrics{}, fmt.Errorf("%w: %s", ErrUnknownBA, ba)
	}

	s := cache.series
	hours := s.Len()

	var (
		totalCurtailed float64
		curtailedHours int
		depthSum       float64
		split          SeasonalSplit

		events      int
		durationSum int
		maxDuration int
		run         int
	)

	for i := 0; i < hours; i++ {
		excess := s.Demand[i] + loadMW - cache.thresholds[i]
		if excess > 0 {
			totalCurtailed += excess
			curtailedHours++
			if loadMW > 0 {
				depthSum += excess / loadMW
			}
			if SeasonOf(s.Months[i]) == SeasonWinter {
				split.WinterHours++
			} else {
				split.SummerHours++
			}
			run++
			continue
		}
		if run > 0 {
			events++
			durationSum += run
			if run > maxDuration {
				maxDuration = run
			}
			run = 0
		}
	}
	if run > 0 {
		events++
		durationSum += run
		if run > maxDuration {
			maxDuration = run
		}
	}

	rate := 0.0
	if totalAdded := loadMW * float64(hours); totalAdded > 0 {
		rate = totalCurtailed / totalAdded
	}

	// With zero curtailed hours the duration stats are 0 and retention is
	// 1.0 by definition, never by division.
	avgDuration := 0.0
	retention := 1.0
	if curtailedHours > 0 {
		avgDuration = float64(durationSum) / float64(events)
		retention = 1 - depthSum/float64(curtailedHours)
	}

	return Metrics{
		BA:                    ba,
		LoadAdditionMW:        loadMW,
		CurtailmentRate:       rate,
		TotalCurtailmentMWh:   totalCurtailed,
		CurtailedHours:        curtailedHours,
		AvgEventDurationHours: avgDuration,
		MaxEventDurationHours: maxDuration,
		AvgLoadRetention:      retention,
		Seasonal:              split,
		LoadFactor:            cache.loadFactor,
		SummerPeakMW:          cache.peaks.SummerMW,
		WinterPeakMW:          cache.peaks.WinterMW,
	}, nil
}
