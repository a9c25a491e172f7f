// Package timeseries holds the hourly demand data model shared by the
// fetch, clean, and analysis layers.
package timeseries

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrInvalidInput marks schema-level violations in the input series. These
// indicate an upstream contract breach and abort the whole run rather than
// being recovered per record.
var ErrInvalidInput = errors.New("timeseries: invalid input")

// HourlyRecord is one observation of a balancing authority's demand.
type HourlyRecord struct {
	BA        string
	Timestamp time.Time
	DemandMW  float64
}

// Validate checks the record against the input schema.
func (r HourlyRecord) Validate() error {
	if r.BA == "" {
		return fmt.Errorf("%w: missing balancing authority", ErrInvalidInput)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp for %s", ErrInvalidInput, r.BA)
	}
	if math.IsNaN(r.DemandMW) || math.IsInf(r.DemandMW, 0) {
		return fmt.Errorf("%w: non-finite demand for %s at %s", ErrInvalidInput, r.BA, r.Timestamp.Format(time.RFC3339))
	}
	if r.DemandMW < 0 {
		return fmt.Errorf("%w: negative demand %.3f MW for %s at %s", ErrInvalidInput, r.DemandMW, r.BA, r.Timestamp.Format(time.RFC3339))
	}
	return nil
}

// Series is the full hourly history for one balancing authority, stored as
// parallel slices so the analysis layer can sweep it without per-row
// allocation. Months are extracted once at construction.
type Series struct {
	BA     string
	Times  []time.Time
	Demand []float64
	Months []time.Month
}

// Len returns the number of hours in the series.
func (s *Series) Len() int { return len(s.Demand) }

func (s *Series) append(r HourlyRecord) {
	s.Times = append(s.Times, r.Timestamp)
	s.Demand = append(s.Demand, r.DemandMW)
	s.Months = append(s.Months, r.Timestamp.Month())
}

func (s *Series) sortByTime() {
	idx := make([]int, s.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return s.Times[idx[a]].Before(s.Times[idx[b]]) })

	times := make([]time.Time, s.Len())
	demand := make([]float64, s.Len())
	months := make([]time.Month, s.Len())
	for out, in := range idx {
		times[out] = s.Times[in]
		demand[out] = s.Demand[in]
		months[out] = s.Months[in]
	}
	s.Times, s.Demand, s.Months = times, demand, months
}

// Dataset groups per-BA series and keeps a stable BA ordering.
type Dataset struct {
	bas    []string
	series map[string]*Series
}

// FromRecords validates and partitions records into per-BA series. Records
// are sorted chronologically within each BA. Duplicate (BA, timestamp) pairs
// are kept as-is here; deduplication is the cleaning layer's job and the
// analysis layer tolerates duplicates.
func FromRecords(records []HourlyRecord) (*Dataset, error) {
	ds := &Dataset{series: make(map[string]*Series)}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		s, ok := ds.series[r.BA]
		if !ok {
			s = &Series{BA: r.BA}
			ds.series[r.BA] = s
			ds.bas = append(ds.bas, r.BA)
		}
		s.append(r)
	}
	sort.Strings(ds.bas)
	for _, s := range ds.series {
		s.sortByTime()
	}
	return ds, nil
}

// BAs lists the balancing authorities present, sorted.
func (d *Dataset) BAs() []string {
	out := make([]string, len(d.bas))
	copy(out, d.bas)
	return out
}

// Series returns the series for one BA, or nil when absent.
func (d *Dataset) Series(ba string) *Series {
	return d.series[ba]
}

// Records flattens the dataset back into a single record slice, BAs in
// sorted order, each BA chronological.
func (d *Dataset) Records() []HourlyRecord {
	var out []HourlyRecord
	for _, ba := range d.bas {
		s := d.series[ba]
		for i := range s.Demand {
			out = append(out, HourlyRecord{BA: ba, Timestamp: s.Times[i], DemandMW: s.Demand[i]})
		}
	}
	return out
}
