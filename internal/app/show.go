package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/FrankLong1/eia-data/internal/storage"
)

// Show prints stored analysis results.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show results")
	}
	if closeStore != nil {
		defer closeStore()
	}

	var results []storage.HeadroomResult
	if opts.BA != "" {
		results, err = store.ListResultsByBA(ctx, opts.BA)
	} else {
		results, err = store.ListRecentResults(ctx, opts.Limit)
	}
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(os.Stdout, "no results found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "BA\tTarget\tHeadroom MW\tCurt. MWh\tHours\tRetention\tLoad Factor")

	for _, r := range results {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.BA,
			formatDecimal(r.TargetRate, 4),
			formatDecimal(r.LoadAdditionMW, 1),
			formatDecimal(r.TotalCurtailmentMWh, 1),
			r.CurtailedHours,
			formatDecimal(r.AvgLoadRetention, 4),
			formatDecimal(r.LoadFactor, 4),
		)
	}

	writer.Flush()
	return nil
}
