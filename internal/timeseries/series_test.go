package timeseries

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	base := HourlyRecord{BA: "PJM", Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), DemandMW: 80000}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*HourlyRecord)
	}{
		{"missing ba", func(r *HourlyRecord) { r.BA = "" }},
		{"zero timestamp", func(r *HourlyRecord) { r.Timestamp = time.Time{} }},
		{"nan demand", func(r *HourlyRecord) { r.DemandMW = math.NaN() }},
		{"inf demand", func(r *HourlyRecord) { r.DemandMW = math.Inf(1) }},
		{"negative demand", func(r *HourlyRecord) { r.DemandMW = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := base
			tc.mutate(&rec)
			err := rec.Validate()
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestFromRecordsGroupsAndSorts(t *testing.T) {
	day := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	records := []HourlyRecord{
		{BA: "MISO", Timestamp: day.Add(2 * time.Hour), DemandMW: 72000},
		{BA: "ERCOT", Timestamp: day.Add(time.Hour), DemandMW: 65000},
		{BA: "MISO", Timestamp: day, DemandMW: 70000},
		{BA: "ERCOT", Timestamp: day, DemandMW: 64000},
	}

	ds, err := FromRecords(records)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}

	bas := ds.BAs()
	if len(bas) != 2 || bas[0] != "ERCOT" || bas[1] != "MISO" {
		t.Fatalf("unexpected BA list %v", bas)
	}

	miso := ds.Series("MISO")
	if miso == nil || miso.Len() != 2 {
		t.Fatalf("unexpected MISO series %+v", miso)
	}
	if !miso.Times[0].Before(miso.Times[1]) {
		t.Fatalf("series not chronological: %v", miso.Times)
	}
	if miso.Demand[0] != 70000 {
		t.Fatalf("sort did not carry demand values: %v", miso.Demand)
	}
	if miso.Months[0] != time.July {
		t.Fatalf("months not populated: %v", miso.Months)
	}

	if ds.Series("CAISO") != nil {
		t.Fatal("expected nil series for absent BA")
	}
}

func TestFromRecordsRejectsInvalid(t *testing.T) {
	records := []HourlyRecord{
		{BA: "PJM", Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), DemandMW: 80000},
		{BA: "PJM", Timestamp: time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), DemandMW: -5},
	}
	if _, err := FromRecords(records); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	day := time.Date(2023, 12, 31, 22, 0, 0, 0, time.UTC)
	in := []HourlyRecord{
		{BA: "BPA", Timestamp: day.Add(time.Hour), DemandMW: 6100},
		{BA: "BPA", Timestamp: day, DemandMW: 6000},
	}

	ds, err := FromRecords(in)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}

	out := ds.Records()
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if !out[0].Timestamp.Equal(day) || out[0].DemandMW != 6000 {
		t.Fatalf("round trip lost ordering: %+v", out)
	}
}
