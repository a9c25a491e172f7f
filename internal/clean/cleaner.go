// Package clean prepares raw hourly demand series for analysis: label
// standardisation, duplicate removal, gap interpolation, and outlier
// handling.
package clean

import (
	"math"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/FrankLong1/eia-data/internal/timeseries"
)

// baLabels maps raw EIA respondent codes to the names used in reporting.
var baLabels = map[string]string{
	"CPLE": "DEP",
	"DUK":  "DEC",
	"SC":   "SCP",
	"SWPP": "SPP",
	"SCEG": "DESC",
	"FPC":  "DEF",
	"CISO": "CAISO",
	"BPAT": "BPA",
	"NYIS": "NYISO",
	"ERCO": "ERCOT",
	"ISNE": "ISO-NE",
}

// StandardizeBA maps a raw respondent code to its standard label. Unknown
// codes pass through unchanged.
func StandardizeBA(code string) string {
	if mapped, ok := baLabels[code]; ok {
		return mapped
	}
	return code
}

// Options tune the cleaning pipeline.
type Options struct {
	// IQRFactor multiplies the interquartile range to set outlier bounds.
	IQRFactor float64
	// PeakFactor multiplies the 90th percentile to flag unrealistic peaks.
	PeakFactor float64
	// AbsoluteCapMW is a sanity ceiling no single BA should exceed.
	AbsoluteCapMW float64
	// MinPoints is the minimum series length for IQR detection to apply.
	MinPoints int
}

func (o Options) withDefaults() Options {
	if o.IQRFactor <= 0 {
		o.IQRFactor = 3.0
	}
	if o.PeakFactor <= 0 {
		o.PeakFactor = 2.0
	}
	if o.AbsoluteCapMW <= 0 {
		o.AbsoluteCapMW = 200000
	}
	if o.MinPoints <= 0 {
		o.MinPoints = 10
	}
	return o
}

// Cleaner runs the cleaning pipeline over raw records.
type Cleaner struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Cleaner.
func New(opts Options, logger zerolog.Logger) *Cleaner {
	return &Cleaner{
		opts:   opts.withDefaults(),
		logger: logger.With().Str("component", "cleaner").Logger(),
	}
}

// Clean standardises labels, then runs the per-BA pipeline: sort, dedupe,
// blank zeros and outliers, interpolate, and validate peaks. Records whose
// value cannot be recovered (a series with no valid observations) are
// dropped.
func (c *Cleaner) Clean(records []timeseries.HourlyRecord) []timeseries.HourlyRecord {
	byBA := make(map[string][]timeseries.HourlyRecord)
	var order []string
	for _, r := range records {
		ba := StandardizeBA(r.BA)
		if _, seen := byBA[ba]; !seen {
			order = append(order, ba)
		}
		r.BA = ba
		byBA[ba] = append(byBA[ba], r)
	}
	sort.Strings(order)

	var out []timeseries.HourlyRecord
	for _, ba := range order {
		cleaned := c.cleanSeries(ba, byBA[ba])
		out = append(out, cleaned...)
	}
	return out
}

func (c *Cleaner) cleanSeries(ba string, records []timeseries.HourlyRecord) []timeseries.HourlyRecord {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	records = dedupe(records)

	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.DemandMW
	}

	// Zero demand is treated as missing: real grids do not drop to zero,
	// these are reporting gaps.
	zeros := blankZeros(values)
	outliers := c.blankOutliers(values)
	filled := interpolate(values)
	peaks := c.blankExtremePeaks(values)
	if peaks > 0 {
		filled += interpolate(values)
	}

	c.logger.Info().Str("ba", ba).
		Int("records", len(records)).
		Int("zeros", zeros).
		Int("outliers", outliers).
		Int("extreme_peaks", peaks).
		Int("interpolated", filled).
		Msg("series cleaned")

	out := records[:0]
	for i, r := range records {
		if math.IsNaN(values[i]) {
			continue
		}
		r.DemandMW = values[i]
		out = append(out, r)
	}
	return out
}

// dedupe collapses duplicate (BA, timestamp) rows last-wins: with records
// sorted stably by time, a later input row for the same hour overrides an
// earlier one.
func dedupe(records []timeseries.HourlyRecord) []timeseries.HourlyRecord {
	if len(records) < 2 {
		return records
	}
	out := records[:0]
	for i, r := range records {
		if i+1 < len(records) && records[i+1].Timestamp.Equal(r.Timestamp) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func blankZeros(values []float64) int {
	n := 0
	for i, v := range values {
		if v == 0 {
			values[i] = math.NaN()
			n++
		}
	}
	return n
}

// blankOutliers marks values outside Q1 − f·IQR .. Q3 + f·IQR as missing.
// The upper bound is additionally capped at AbsoluteCapMW.
func (c *Cleaner) blankOutliers(values []float64) int {
	valid := validSorted(values)
	if len(valid) < c.opts.MinPoints {
		return 0
	}

	q1 := stat.Quantile(0.25, stat.Empirical, valid, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, valid, nil)
	iqr := q3 - q1

	lower := q1 - c.opts.IQRFactor*iqr
	upper := math.Min(q3+c.opts.IQRFactor*iqr, c.opts.AbsoluteCapMW)

	n := 0
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < lower || v > upper {
			values[i] = math.NaN()
			n++
		}
	}
	return n
}

// blankExtremePeaks flags values above PeakFactor × the series' 90th
// percentile. The percentile is computed from the same window being
// validated, so a lone extreme maximum also raises the bound it is checked
// against; this mirrors the established cleaning behaviour rather than a
// leave-one-out variant.
func (c *Cleaner) blankExtremePeaks(values []float64) int {
	valid := validSorted(values)
	if len(valid) < c.opts.MinPoints {
		return 0
	}

	p90 := stat.Quantile(0.90, stat.Empirical, valid, nil)
	threshold := p90 * c.opts.PeakFactor

	n := 0
	for i, v := range values {
		if !math.IsNaN(v) && v > threshold {
			values[i] = math.NaN()
			n++
		}
	}
	return n
}

// interpolate fills NaN runs linearly between their neighbours and extends
// the nearest value across leading/trailing gaps. Returns the number of
// values filled; a series with no valid observation is left untouched.
func interpolate(values []float64) int {
	first := -1
	for i, v := range values {
		if !math.IsNaN(v) {
			first = i
			break
		}
	}
	if first == -1 {
		return 0
	}

	filled := 0
	for i := 0; i < first; i++ {
		values[i] = values[first]
		filled++
	}

	prev := first
	for i := first + 1; i < len(values); i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		if gap := i - prev; gap > 1 {
			step := (values[i] - values[prev]) / float64(gap)
			for j := prev + 1; j < i; j++ {
				values[j] = values[prev] + step*float64(j-prev)
				filled++
			}
		}
		prev = i
	}

	for i := prev + 1; i < len(values); i++ {
		values[i] = values[prev]
		filled++
	}
	return filled
}

func validSorted(values []float64) []float64 {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	sort.Float64s(valid)
	return valid
}
