package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FrankLong1/eia-data/internal/app"
)

var (
	showBA    string
	showLimit int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display stored analysis results",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showBA == "" && showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			BA:    showBA,
			Limit: showLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().StringVar(&showBA, "ba", "", "Show all results for one balancing authority")
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of recent results to display")
}
