package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FrankLong1/eia-data/internal/app"
)

var (
	analyzeInDir     string
	analyzeBAs       []string
	analyzeRates     []float64
	analyzeTolerance float64
	analyzeWorkers   int
	analyzeCSVPath   string
	analyzePersist   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute curtailment-enabled headroom for each BA and target rate",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(analyzeRates) == 0 {
			return fmt.Errorf("--rates must be provided")
		}
		for _, r := range analyzeRates {
			if r < 0 || r >= 1 {
				return fmt.Errorf("invalid rate %v: must be in [0, 1)", r)
			}
		}

		opts := app.AnalyzeOptions{
			InputDir:  analyzeInDir,
			BAs:       analyzeBAs,
			Rates:     analyzeRates,
			Tolerance: analyzeTolerance,
			Workers:   analyzeWorkers,
			CSVPath:   analyzeCSVPath,
			Persist:   analyzePersist,
		}
		return getApp().Analyze(cmd.Context(), opts)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInDir, "in", "", "Directory of cleaned CSV files (defaults to config)")
	analyzeCmd.Flags().StringSliceVar(&analyzeBAs, "bas", nil, "Balancing authorities to analyze (defaults to all available)")
	analyzeCmd.Flags().Float64SliceVar(&analyzeRates, "rates", nil, "Target curtailment rates as fractions (required), e.g. 0.0025,0.005,0.01,0.05")
	analyzeCmd.Flags().Float64Var(&analyzeTolerance, "tolerance", 0, "Solver tolerance (defaults to config)")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Number of concurrent BA workers (defaults to config)")
	analyzeCmd.Flags().StringVar(&analyzeCSVPath, "csv", "", "Path to write results CSV")
	analyzeCmd.Flags().BoolVar(&analyzePersist, "store", false, "Also upsert results into the database")
}
