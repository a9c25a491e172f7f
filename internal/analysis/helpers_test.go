package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/FrankLong1/eia-data/internal/timeseries"
)

func noopLogger() zerolog.Logger { return zerolog.Nop() }

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

// flatYear generates one full non-leap year (8760 hours) of constant demand.
func flatYear(ba string, demandMW float64) []timeseries.HourlyRecord {
	return generateYear(ba, func(time.Time) float64 { return demandMW })
}

// generateYear produces hourly records for all of 2023 with demand taken
// from fn.
func generateYear(ba string, fn func(time.Time) float64) []timeseries.HourlyRecord {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var recs []timeseries.HourlyRecord
	for ts := start; ts.Before(end); ts = ts.Add(time.Hour) {
		recs = append(recs, timeseries.HourlyRecord{BA: ba, Timestamp: ts, DemandMW: fn(ts)})
	}
	return recs
}

func mustAnalyzer(t *testing.T, recs []timeseries.HourlyRecord) *Analyzer {
	t.Helper()
	ds, err := timeseries.FromRecords(recs)
	if err != nil {
		t.Fatal(err)
	}
	a, err := New(ds, noopLogger())
	if err != nil {
		t.Fatal(err)
	}
	return a
}
