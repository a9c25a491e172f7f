package timeseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Timestamp layouts accepted on read. The EIA API emits hour-resolution
// periods like "2024-01-01T00"; cleaned files carry RFC3339.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15",
	"2006-01-02 15:04:05",
}

// Column aliases: first entry is the canonical header written on save.
var (
	timestampCols = []string{"timestamp", "period"}
	baCols        = []string{"balancing_authority", "respondent", "ba", "ba_code"}
	demandCols    = []string{"demand_mw", "demand", "value", "load_mw"}
)

// ReadCSV parses hourly records from a CSV stream. Header detection accepts
// both the canonical column names and the raw EIA aliases. A missing
// required column is a schema violation and fails the whole read.
func ReadCSV(r io.Reader) ([]HourlyRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	tsIdx, err := findColumn(header, timestampCols)
	if err != nil {
		return nil, err
	}
	baIdx, err := findColumn(header, baCols)
	if err != nil {
		return nil, err
	}
	demandIdx, err := findColumn(header, demandCols)
	if err != nil {
		return nil, err
	}

	var records []HourlyRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		line++

		ts, err := parseTimestamp(row[tsIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		demand, err := strconv.ParseFloat(strings.TrimSpace(row[demandIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: bad demand value %q", line, ErrInvalidInput, row[demandIdx])
		}

		rec := HourlyRecord{BA: strings.TrimSpace(row[baIdx]), Timestamp: ts, DemandMW: demand}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteCSV emits records with canonical headers.
func WriteCSV(w io.Writer, records []HourlyRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "balancing_authority", "demand_mw"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			r.BA,
			strconv.FormatFloat(r.DemandMW, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSVFile loads records from a file on disk.
func ReadCSVFile(path string) ([]HourlyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// WriteCSVFile saves records to a file on disk.
func WriteCSVFile(path string, records []HourlyRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSV(f, records)
}

func findColumn(header []string, aliases []string) (int, error) {
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		for _, alias := range aliases {
			if name == alias {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: missing required column %q", ErrInvalidInput, aliases[0])
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", ErrInvalidInput, raw)
}
