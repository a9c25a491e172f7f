package cli

import (
	"github.com/spf13/cobra"

	"github.com/FrankLong1/eia-data/internal/app"
)

var (
	exportBA          string
	exportInDir       string
	exportDemandPNG   string
	exportCurvePNG    string
	exportCurveCSV    string
	exportHeadroomPNG string
	exportRates       []float64
	exportMaxPoints   int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export demand and curtailment-curve charts for one BA",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			BA:          exportBA,
			InputDir:    exportInDir,
			DemandPNG:   exportDemandPNG,
			CurvePNG:    exportCurvePNG,
			CurveCSV:    exportCurveCSV,
			HeadroomPNG: exportHeadroomPNG,
			Rates:       exportRates,
			MaxPoints:   exportMaxPoints,
		}
		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportBA, "ba", "", "Balancing authority to export")
	exportCmd.Flags().StringVar(&exportInDir, "in", "", "Directory of cleaned CSV files (defaults to config)")
	exportCmd.Flags().StringVar(&exportDemandPNG, "demand-png", "", "Path to write demand chart PNG")
	exportCmd.Flags().StringVar(&exportCurvePNG, "curve-png", "", "Path to write curtailment curve PNG")
	exportCmd.Flags().StringVar(&exportCurveCSV, "curve-csv", "", "Path to write curtailment curve CSV")
	exportCmd.Flags().StringVar(&exportHeadroomPNG, "headroom-png", "", "Path to write headroom-by-rate bar chart PNG")
	exportCmd.Flags().Float64SliceVar(&exportRates, "rates", nil, "Target rates for the headroom chart (defaults to 0.0025,0.005,0.01,0.05)")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum chart data points (defaults to config)")
}
