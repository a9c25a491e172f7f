package analysis

import (
	"testing"
	"time"
)

func TestMetricsNoCurtailment(t *testing.T) {
	// A zero addition curtails nothing, so duration stats are zero and
	// retention is exactly 1.0 by definition, not by division.
	a := spikeAnalyzer(t)
	m, err := a.Metrics("SPIKE", 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.CurtailedHours != 0 {
		t.Fatalf("curtailed hours = %d, want 0", m.CurtailedHours)
	}
	if m.AvgLoadRetention != 1.0 {
		t.Fatalf("retention = %v, want exactly 1.0", m.AvgLoadRetention)
	}
	if m.AvgEventDurationHours != 0 || m.MaxEventDurationHours != 0 {
		t.Fatalf("duration stats = (%v, %v), want (0, 0)", m.AvgEventDurationHours, m.MaxEventDurationHours)
	}
}

func TestMetricsRetentionConsistency(t *testing.T) {
	a := sineAnalyzer(t)
	for _, load := range []float64{0, 10, 50, 200, 600} {
		m, err := a.Metrics("PJM", load)
		if err != nil {
			t.Fatal(err)
		}
		if (m.CurtailedHours == 0) != (m.AvgLoadRetention == 1.0) {
			t.Errorf("load %v: curtailed hours %d with retention %v", load, m.CurtailedHours, m.AvgLoadRetention)
		}
		if m.AvgLoadRetention < 0 || m.AvgLoadRetention > 1 {
			t.Errorf("load %v: retention %v outside [0, 1]", load, m.AvgLoadRetention)
		}
	}
}

func TestMetricsEventRuns(t *testing.T) {
	// Flat 100 MW baseline. Spikes to 200 in February and July pin both
	// seasonal thresholds at 200. Two separate three-hour bumps to 160 in
	// January are the only other hours above baseline.
	febSpike := time.Date(2023, time.February, 1, 12, 0, 0, 0, time.UTC)
	julSpike := time.Date(2023, time.July, 1, 12, 0, 0, 0, time.UTC)
	bumps := map[time.Time]bool{}
	for _, day := range []int{10, 20} {
		for h := 8; h < 11; h++ {
			bumps[time.Date(2023, time.January, day, h, 0, 0, 0, time.UTC)] = true
		}
	}
	recs := generateYear("RUNS", func(ts time.Time) float64 {
		switch {
		case ts.Equal(febSpike), ts.Equal(julSpike):
			return 200
		case bumps[ts]:
			return 160
		default:
			return 100
		}
	})

	a := mustAnalyzer(t, recs)

	// With a 60 MW addition: bump hours reach 220 > 200, curtailing 20 MW
	// in two runs of 3 consecutive hours. Each spike hour reaches 260 > 200
	// and sheds the full addition, two more runs of length 1. Baseline
	// hours reach 160 at most, under both thresholds.
	m, err := a.Metrics("RUNS", 60)
	if err != nil {
		t.Fatal(err)
	}

	if m.CurtailedHours != 8 {
		t.Fatalf("curtailed hours = %d, want 8", m.CurtailedHours)
	}
	if m.MaxEventDurationHours != 3 {
		t.Errorf("max event duration = %d, want 3", m.MaxEventDurationHours)
	}
	if want := 8.0 / 4.0; !almostEqual(m.AvgEventDurationHours, want, 1e-12) {
		t.Errorf("avg event duration = %v, want %v", m.AvgEventDurationHours, want)
	}

	// Bump hours retain 40 of 60 MW (2/3); spike hours retain nothing.
	if want := (6 * (2.0 / 3.0)) / 8.0; !almostEqual(m.AvgLoadRetention, want, 1e-12) {
		t.Errorf("retention = %v, want %v", m.AvgLoadRetention, want)
	}

	if m.Seasonal.WinterHours != 7 || m.Seasonal.SummerHours != 1 {
		t.Errorf("seasonal split = %+v, want 7 winter / 1 summer", m.Seasonal)
	}

	// Rate consistency with the evaluator at the same load.
	rate, err := a.CurtailmentRate("RUNS", 60)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(rate, m.CurtailmentRate, 1e-15) {
		t.Errorf("metrics rate %v != evaluator rate %v", m.CurtailmentRate, rate)
	}
}

// spikeAnalyzer builds a year of flat 100 MW demand except a single summer
// hour at 200 MW, so the summer threshold is 200 and the winter threshold
// is 100.
func spikeAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	spikeTS := time.Date(2023, time.July, 15, 15, 0, 0, 0, time.UTC)
	recs := generateYear("SPIKE", func(ts time.Time) float64 {
		if ts.Equal(spikeTS) {
			return 200
		}
		return 100
	})
	return mustAnalyzer(t, recs)
}

func TestMetricsSeasonalSplit(t *testing.T) {
	// A 50 MW addition on the spike profile curtails every hour in
	// winter-assigned months (100 + 50 > 100) plus the lone spike hour
	// (200 + 50 > 200); summer-assigned baseline hours sit at 150 < 200.
	a := spikeAnalyzer(t)

	winterHours := 0
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for ts := start; ts.Before(start.AddDate(1, 0, 0)); ts = ts.Add(time.Hour) {
		switch ts.Month() {
		case time.November, time.December, time.January, time.February, time.March:
			winterHours++
		}
	}

	m, err := a.Metrics("SPIKE", 50)
	if err != nil {
		t.Fatal(err)
	}
	if m.SummerPeakMW != 200 || m.WinterPeakMW != 100 {
		t.Fatalf("peaks = (%v, %v), want (200, 100)", m.SummerPeakMW, m.WinterPeakMW)
	}
	if m.Seasonal.WinterHours != winterHours {
		t.Errorf("winter curtailed hours = %d, want %d", m.Seasonal.WinterHours, winterHours)
	}
	if m.Seasonal.SummerHours != 1 {
		t.Errorf("summer curtailed hours = %d, want 1 (the spike hour)", m.Seasonal.SummerHours)
	}
	if m.CurtailedHours != winterHours+1 {
		t.Errorf("curtailed hours = %d, want %d", m.CurtailedHours, winterHours+1)
	}
}
