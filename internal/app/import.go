package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/FrankLong1/eia-data/internal/clean"
	"github.com/FrankLong1/eia-data/internal/timeseries"
)

// Import runs the cleaning pipeline over raw CSV files and writes one
// cleaned CSV per standardized BA.
func (a *App) Import(ctx context.Context, opts ImportOptions) error {
	inDir := opts.InputDir
	if inDir == "" {
		inDir = a.Config.Fetch.RawDir
	}
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = a.Config.Clean.CleanedDir
	}

	records, err := readCSVDir(inDir)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no usable CSV data found in %s", inDir)
	}

	cleaner := clean.New(clean.Options{
		IQRFactor:     a.Config.Clean.IQRFactor,
		PeakFactor:    a.Config.Clean.PeakFactor,
		AbsoluteCapMW: a.Config.Clean.AbsoluteCapMW,
		MinPoints:     a.Config.Clean.MinPoints,
	}, a.Logger)

	cleaned := cleaner.Clean(records)
	if len(cleaned) == 0 {
		return errors.New("cleaning removed all records")
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	byBA := make(map[string][]timeseries.HourlyRecord)
	for _, r := range cleaned {
		byBA[r.BA] = append(byBA[r.BA], r)
	}

	bas := make([]string, 0, len(byBA))
	for ba := range byBA {
		bas = append(bas, ba)
	}
	sort.Strings(bas)

	for _, ba := range bas {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(outDir, cleanedFileName(ba))
		if err := timeseries.WriteCSVFile(path, byBA[ba]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		a.Logger.Info().Str("ba", ba).Int("rows", len(byBA[ba])).Str("path", path).Msg("cleaned data written")
	}

	if opts.Persist {
		store, closeStore, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("database not configured; cannot persist cleaned data")
		}
		defer closeStore()

		if err := a.persistRecords(ctx, store, cleaned); err != nil {
			return err
		}
	}

	a.Logger.Info().Int("input_rows", len(records)).Int("output_rows", len(cleaned)).Int("bas", len(bas)).Msg("import complete")
	return nil
}

func readCSVDir(dir string) ([]timeseries.HourlyRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var records []timeseries.HourlyRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		rows, err := timeseries.ReadCSVFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		records = append(records, rows...)
	}
	return records, nil
}

func cleanedFileName(ba string) string {
	sanitized := strings.ReplaceAll(ba, "/", "_")
	return fmt.Sprintf("cleaned_%s.csv", sanitized)
}
