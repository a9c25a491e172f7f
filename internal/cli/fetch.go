package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/FrankLong1/eia-data/internal/app"
)

var (
	fetchBAs     []string
	fetchFrom    string
	fetchTo      string
	fetchOutDir  string
	fetchPersist bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download hourly demand data from the EIA API",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.FetchOptions{
			BAs:     fetchBAs,
			OutDir:  fetchOutDir,
			Persist: fetchPersist,
		}

		if fetchFrom != "" {
			from, err := time.Parse("2006-01-02", fetchFrom)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			opts.From = &from
		}

		if fetchTo != "" {
			to, err := time.Parse("2006-01-02", fetchTo)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			opts.To = &to
		}

		return getApp().Fetch(cmd.Context(), opts)
	},
}

func init() {
	fetchCmd.Flags().StringSliceVar(&fetchBAs, "bas", nil, "Balancing authorities to fetch (defaults to config)")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "End date (YYYY-MM-DD, exclusive)")
	fetchCmd.Flags().StringVar(&fetchOutDir, "out", "", "Output directory for raw CSV files (defaults to config)")
	fetchCmd.Flags().BoolVar(&fetchPersist, "store", false, "Also upsert fetched rows into the database")
}
