package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/FrankLong1/eia-data/internal/analysis"
	"github.com/FrankLong1/eia-data/internal/storage"
	"github.com/FrankLong1/eia-data/internal/timeseries"
)

// Analyze loads cleaned demand data and runs the batch headroom analysis.
// Results are printed as a table, optionally written to CSV, and optionally
// persisted to the database.
func (a *App) Analyze(ctx context.Context, opts AnalyzeOptions) error {
	if len(opts.Rates) == 0 {
		return errors.New("at least one target curtailment rate is required")
	}

	inDir := opts.InputDir
	if inDir == "" {
		inDir = a.Config.Clean.CleanedDir
	}

	records, err := readCSVDir(inDir)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no usable CSV data found in %s", inDir)
	}

	ds, err := timeseries.FromRecords(records)
	if err != nil {
		return err
	}

	analyzer, err := analysis.New(ds, a.Logger)
	if err != nil {
		return err
	}

	tolerance := opts.Tolerance
	if tolerance <= 0 {
		tolerance = a.Config.Analysis.Tolerance
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = a.Config.Analysis.Workers
	}

	results, err := analyzer.Run(ctx, analysis.BatchOptions{
		BAs:   opts.BAs,
		Rates: opts.Rates,
		Solve: analysis.SolveOptions{
			Tolerance:     tolerance,
			MaxDoublings:  a.Config.Analysis.MaxDoublings,
			MaxIterations: a.Config.Analysis.MaxIterations,
		},
		Workers: workers,
	})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		a.Logger.Warn().Msg("analysis produced no results")
		return nil
	}

	printResults(results)

	if opts.CSVPath != "" {
		if err := writeResultsCSV(opts.CSVPath, results); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.CSVPath).Int("rows", len(results)).Msg("results written")
	}

	if opts.Persist {
		store, closeStore, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("database not configured; cannot persist results")
		}
		defer closeStore()

		rows := make([]storage.HeadroomResult, len(results))
		for i, m := range results {
			rows[i] = storage.ResultFromMetrics(m)
		}
		if err := store.UpsertResults(ctx, rows); err != nil {
			return err
		}
		a.Logger.Info().Int("rows", len(rows)).Msg("results persisted")
	}

	return nil
}

func printResults(results []analysis.Metrics) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "BA\tTarget%\tHeadroom MW\tCurt. MWh\tHours\tAvg Event h\tMax Event h\tRetention\tSummer h\tWinter h")

	for _, m := range results {
		fmt.Fprintf(
			writer,
			"%s\t%.3f\t%.1f\t%.1f\t%d\t%.2f\t%d\t%.4f\t%d\t%d\n",
			m.BA,
			m.TargetRate*100,
			m.LoadAdditionMW,
			m.TotalCurtailmentMWh,
			m.CurtailedHours,
			m.AvgEventDurationHours,
			m.MaxEventDurationHours,
			m.AvgLoadRetention,
			m.Seasonal.SummerHours,
			m.Seasonal.WinterHours,
		)
	}

	writer.Flush()
}

var resultsHeader = []string{
	"balancing_authority", "target_rate", "load_addition_mw", "curtailment_rate",
	"total_curtailment_mwh", "curtailed_hours", "avg_event_duration_hours",
	"max_event_duration_hours", "avg_load_retention",
	"summer_curtailed_hours", "winter_curtailed_hours",
	"load_factor", "summer_peak_mw", "winter_peak_mw",
}

func writeResultsCSV(path string, results []analysis.Metrics) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(resultsHeader); err != nil {
		return err
	}

	for _, m := range results {
		record := []string{
			m.BA,
			formatFloat(m.TargetRate),
			formatFloat(m.LoadAdditionMW),
			formatFloat(m.CurtailmentRate),
			formatFloat(m.TotalCurtailmentMWh),
			strconv.Itoa(m.CurtailedHours),
			formatFloat(m.AvgEventDurationHours),
			strconv.Itoa(m.MaxEventDurationHours),
			formatFloat(m.AvgLoadRetention),
			strconv.Itoa(m.Seasonal.SummerHours),
			strconv.Itoa(m.Seasonal.WinterHours),
			formatFloat(m.LoadFactor),
			formatFloat(m.SummerPeakMW),
			formatFloat(m.WinterPeakMW),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
