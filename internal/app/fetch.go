package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/FrankLong1/eia-data/internal/fetch"
	"github.com/FrankLong1/eia-data/internal/storage"
	"github.com/FrankLong1/eia-data/internal/timeseries"
)

const dateLayout = "2006-01-02"

// Fetch downloads hourly demand for each requested BA and writes one raw
// CSV per BA. When Persist is set and a database is configured, rows are
// upserted as well.
func (a *App) Fetch(ctx context.Context, opts FetchOptions) error {
	bas := opts.BAs
	if len(bas) == 0 {
		bas = a.Config.Fetch.BAs
	}
	if len(bas) == 0 {
		return errors.New("no balancing authorities configured")
	}

	start, end, err := a.resolveWindow(opts.From, opts.To)
	if err != nil {
		return err
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = a.Config.Fetch.RawDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var store *storage.Store
	if opts.Persist {
		var closeStore func()
		store, closeStore, err = a.openStore(ctx)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("database not configured; cannot persist fetched data")
		}
		defer closeStore()
	}

	client := fetch.NewClient(fetch.Options{
		BaseURL:    a.Config.API.BaseURL,
		APIKey:     a.Config.API.Key,
		PageSize:   a.Config.API.PageSize,
		Timeout:    a.Config.API.RequestTimeout,
		RateLimit:  a.Config.API.RateLimit,
		MaxRetries: a.Config.API.MaxRetries,
		UserAgent:  a.Config.API.UserAgent,
	}, a.Logger)

	var fetched, failed int
	for _, ba := range bas {
		if err := ctx.Err(); err != nil {
			return err
		}

		records, err := client.FetchBA(ctx, ba, start, end)
		if err != nil {
			a.Logger.Warn().Err(err).Str("ba", ba).Msg("fetch failed; skipping BA")
			failed++
			continue
		}
		if len(records) == 0 {
			a.Logger.Warn().Str("ba", ba).Msg("no rows returned; skipping BA")
			failed++
			continue
		}

		path := filepath.Join(outDir, rawFileName(ba, start, end))
		if err := timeseries.WriteCSVFile(path, records); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		a.Logger.Info().Str("ba", ba).Int("rows", len(records)).Str("path", path).Msg("raw data written")

		if store != nil {
			if err := a.persistRecords(ctx, store, records); err != nil {
				return err
			}
		}
		fetched++
	}

	a.Logger.Info().Int("fetched", fetched).Int("failed", failed).Msg("fetch complete")
	if fetched == 0 {
		return errors.New("no balancing authorities fetched successfully")
	}
	return nil
}

func (a *App) resolveWindow(from, to *time.Time) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, a.Config.Fetch.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid fetch.start_date: %w", err)
	}
	end, err := time.Parse(dateLayout, a.Config.Fetch.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid fetch.end_date: %w", err)
	}

	if from != nil {
		start = from.UTC()
	}
	if to != nil {
		end = to.UTC()
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, errors.New("start must be before end")
	}
	return start, end, nil
}

func (a *App) persistRecords(ctx context.Context, store *storage.Store, records []timeseries.HourlyRecord) error {
	hours := make([]storage.DemandHour, len(records))
	for i, r := range records {
		hours[i] = storage.DemandHourFromRecord(r)
	}
	n, err := store.UpsertDemandHours(ctx, hours)
	if err != nil {
		return fmt.Errorf("persist demand hours: %w", err)
	}
	a.Logger.Debug().Int64("rows", n).Msg("demand hours persisted")
	return nil
}

func rawFileName(ba string, start, end time.Time) string {
	return fmt.Sprintf("%s_%s_%s_hourly_demand.csv", ba, start.Format(dateLayout), end.Format(dateLayout))
}
