package clean

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/FrankLong1/eia-data/internal/timeseries"
)

func noopLogger() zerolog.Logger { return zerolog.Nop() }

func hourly(ba string, start time.Time, values []float64) []timeseries.HourlyRecord {
	recs := make([]timeseries.HourlyRecord, len(values))
	for i, v := range values {
		recs[i] = timeseries.HourlyRecord{BA: ba, Timestamp: start.Add(time.Duration(i) * time.Hour), DemandMW: v}
	}
	return recs
}

func TestStandardizeBA(t *testing.T) {
	cases := map[string]string{
		"CISO": "CAISO",
		"ERCO": "ERCOT",
		"NYIS": "NYISO",
		"BPAT": "BPA",
		"PJM":  "PJM", // unmapped codes pass through
	}
	for in, want := range cases {
		if got := StandardizeBA(in); got != want {
			t.Errorf("StandardizeBA(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDedupeLastWins(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	recs := []timeseries.HourlyRecord{
		{BA: "PJM", Timestamp: start, DemandMW: 100},
		{BA: "PJM", Timestamp: start.Add(time.Hour), DemandMW: 110},
		{BA: "PJM", Timestamp: start, DemandMW: 105}, // later row for the same hour
	}

	cleaned := New(Options{}, noopLogger()).Clean(recs)
	if len(cleaned) != 2 {
		t.Fatalf("got %d records, want 2", len(cleaned))
	}
	if cleaned[0].DemandMW != 105 {
		t.Errorf("duplicate hour kept %v, want the later value 105", cleaned[0].DemandMW)
	}
}

func TestCleanInterpolatesZerosAndGaps(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	values := []float64{100, 100, 0, 0, 100, 100, 100, 100, 100, 100, 100, 100}
	recs := hourly("PJM", start, values)

	cleaned := New(Options{}, noopLogger()).Clean(recs)
	if len(cleaned) != len(values) {
		t.Fatalf("got %d records, want %d", len(cleaned), len(values))
	}
	if cleaned[2].DemandMW != 100 || cleaned[3].DemandMW != 100 {
		t.Errorf("zero hours interpolated to (%v, %v), want (100, 100)", cleaned[2].DemandMW, cleaned[3].DemandMW)
	}
}

func TestCleanLinearGapFill(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	values := []float64{100, 100, 100, 100, 100, 0, 0, 0, 140, 140, 140, 140, 140}
	recs := hourly("PJM", start, values)

	cleaned := New(Options{}, noopLogger()).Clean(recs)
	want := []float64{110, 120, 130}
	for i, w := range want {
		got := cleaned[5+i].DemandMW
		if got != w {
			t.Errorf("gap hour %d filled with %v, want %v", 5+i, got, w)
		}
	}
}

func TestCleanRemovesSpikeOutlier(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	values := make([]float64, 48)
	for i := range values {
		values[i] = 100 + float64(i%24)
	}
	values[20] = 90000 // reporting glitch far outside the IQR bounds

	cleaned := New(Options{}, noopLogger()).Clean(hourly("PJM", start, values))
	if len(cleaned) != len(values) {
		t.Fatalf("got %d records, want %d", len(cleaned), len(values))
	}
	if cleaned[20].DemandMW > 200 {
		t.Errorf("spike survived cleaning: %v", cleaned[20].DemandMW)
	}
}

func TestCleanEdgeGapsExtend(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	values := []float64{0, 0, 120, 125, 130, 125, 120, 125, 130, 125, 120, 0}
	recs := hourly("PJM", start, values)

	cleaned := New(Options{}, noopLogger()).Clean(recs)
	if cleaned[0].DemandMW != 120 || cleaned[1].DemandMW != 120 {
		t.Errorf("leading gap filled with (%v, %v), want nearest value 120", cleaned[0].DemandMW, cleaned[1].DemandMW)
	}
	if cleaned[len(cleaned)-1].DemandMW != 120 {
		t.Errorf("trailing gap filled with %v, want nearest value 120", cleaned[len(cleaned)-1].DemandMW)
	}
}

func TestCleanGroupsByStandardizedLabel(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	// Raw code and standard label for the same BA must merge into one series.
	recs := append(hourly("CISO", start, []float64{100, 101, 102}),
		hourly("CAISO", start.Add(3*time.Hour), []float64{103, 104, 105})...)

	cleaned := New(Options{}, noopLogger()).Clean(recs)
	if len(cleaned) != 6 {
		t.Fatalf("got %d records, want 6", len(cleaned))
	}
	for _, r := range cleaned {
		if r.BA != "CAISO" {
			t.Fatalf("record kept label %q, want CAISO", r.BA)
		}
	}
}
