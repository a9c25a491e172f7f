package analysis

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/FrankLong1/eia-data/internal/timeseries"
)

func twinProfile(ts time.Time) float64 {
	hour := float64(ts.Hour())
	day := float64(ts.YearDay())
	amp := 60 + 40*math.Cos(4*math.Pi*(day-15)/365)
	return 1000 + amp*math.Sin((hour-6)*math.Pi/12)
}

func TestRunRequiresRates(t *testing.T) {
	a := sineAnalyzer(t)
	if _, err := a.Run(context.Background(), BatchOptions{}); !errors.Is(err, ErrRatesRequired) {
		t.Fatalf("err = %v, want ErrRatesRequired", err)
	}
}

func TestRunIdenticalProfilesIdenticalResults(t *testing.T) {
	// Two BAs with the same demand profile must produce identical rows:
	// no state leaks across BAs.
	recs := append(generateYear("ALPHA", twinProfile), generateYear("BRAVO", twinProfile)...)
	a := mustAnalyzer(t, recs)

	results, err := a.Run(context.Background(), BatchOptions{Rates: []float64{0.005, 0.01}})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d rows, want 4", len(results))
	}

	// Sorted output interleaves as ALPHA@0.005, ALPHA@0.01, BRAVO@0.005, BRAVO@0.01.
	for i := 0; i < 2; i++ {
		alpha, bravo := results[i], results[i+2]
		if alpha.BA != "ALPHA" || bravo.BA != "BRAVO" {
			t.Fatalf("unexpected row order: %s, %s", alpha.BA, bravo.BA)
		}
		alpha.BA, bravo.BA = "", ""
		if alpha != bravo {
			t.Errorf("rate %v: rows differ:\n%+v\n%+v", results[i].TargetRate, alpha, bravo)
		}
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	recs := append(generateYear("ALPHA", twinProfile), generateYear("BRAVO", twinProfile)...)
	rates := []float64{0.0025, 0.01}

	seq, err := mustAnalyzer(t, recs).Run(context.Background(), BatchOptions{Rates: rates, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	par, err := mustAnalyzer(t, recs).Run(context.Background(), BatchOptions{Rates: rates, Workers: 4})
	if err != nil {
		t.Fatal(err)
	}

	if len(seq) != len(par) {
		t.Fatalf("row counts differ: %d vs %d", len(seq), len(par))
	}
	for i := range seq {
		if seq[i] != par[i] {
			t.Errorf("row %d differs between sequential and parallel runs", i)
		}
	}
}

func TestRunSkipsUnachievableCombinations(t *testing.T) {
	// FLAT cannot achieve 0.5% (its rate jumps from 0 to 1); the smooth BA
	// can. The batch must keep the solvable rows and drop the rest without
	// failing.
	recs := append(generateYear("SMOOTH", twinProfile), flatYear("FLAT", 100)...)
	a := mustAnalyzer(t, recs)

	results, err := a.Run(context.Background(), BatchOptions{Rates: []float64{0.005}})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d rows, want 1", len(results))
	}
	if results[0].BA != "SMOOTH" {
		t.Errorf("surviving row is %s, want SMOOTH", results[0].BA)
	}
}

func TestRunSkipsIterationStarvedCombinations(t *testing.T) {
	// A solver that runs out of iterations is a per-combination outcome
	// like an unachievable target: the batch logs and moves on rather than
	// aborting.
	recs := append(generateYear("ALPHA", twinProfile), generateYear("BRAVO", twinProfile)...)
	a := mustAnalyzer(t, recs)

	results, err := a.Run(context.Background(), BatchOptions{
		Rates: []float64{0.01},
		Solve: SolveOptions{MaxIterations: 1},
	})
	if err != nil {
		t.Fatalf("batch failed instead of skipping: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d rows, want 0: one iteration cannot converge", len(results))
	}
}

func TestRunUnknownBARequested(t *testing.T) {
	a := sineAnalyzer(t)
	results, err := a.Run(context.Background(), BatchOptions{
		BAs:   []string{"PJM", "MISSING"},
		Rates: []float64{0.01},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.BA == "MISSING" {
			t.Fatal("row produced for BA with no data")
		}
	}
	if len(results) != 1 {
		t.Fatalf("got %d rows, want 1", len(results))
	}
}

func TestRunResultFields(t *testing.T) {
	a := sineAnalyzer(t)
	results, err := a.Run(context.Background(), BatchOptions{Rates: []float64{0.01}})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d rows, want 1", len(results))
	}

	m := results[0]
	if m.TargetRate != 0.01 {
		t.Errorf("target rate = %v", m.TargetRate)
	}
	if math.Abs(m.CurtailmentRate-0.01) > 1e-6 {
		t.Errorf("achieved rate = %v, want 0.01 within tolerance", m.CurtailmentRate)
	}
	if m.LoadAdditionMW <= 0 {
		t.Errorf("load addition = %v, want positive", m.LoadAdditionMW)
	}
	if m.CurtailedHours <= 0 {
		t.Errorf("curtailed hours = %d, want positive", m.CurtailedHours)
	}
	if m.Seasonal.SummerHours+m.Seasonal.WinterHours != m.CurtailedHours {
		t.Errorf("seasonal split %+v does not sum to curtailed hours %d", m.Seasonal, m.CurtailedHours)
	}
	if m.LoadFactor <= 0 || m.LoadFactor > 1 {
		t.Errorf("load factor = %v", m.LoadFactor)
	}
	if m.SummerPeakMW <= 0 || m.WinterPeakMW <= 0 {
		t.Errorf("peaks = (%v, %v)", m.SummerPeakMW, m.WinterPeakMW)
	}
}

func TestFromRecordsRejectsNegativeDemand(t *testing.T) {
	recs := []timeseries.HourlyRecord{
		{BA: "A", Timestamp: time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC), DemandMW: -5},
	}
	if _, err := timeseries.FromRecords(recs); !errors.Is(err, timeseries.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
