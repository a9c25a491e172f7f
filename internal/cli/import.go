package cli

import (
	"github.com/spf13/cobra"

	"github.com/FrankLong1/eia-data/internal/app"
)

var (
	importInDir   string
	importOutDir  string
	importPersist bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Clean raw demand CSV files and write standardized per-BA files",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ImportOptions{
			InputDir:  importInDir,
			OutputDir: importOutDir,
			Persist:   importPersist,
		}
		return getApp().Import(cmd.Context(), opts)
	},
}

func init() {
	importCmd.Flags().StringVar(&importInDir, "in", "", "Directory of raw CSV files (defaults to config)")
	importCmd.Flags().StringVar(&importOutDir, "out", "", "Directory for cleaned CSV files (defaults to config)")
	importCmd.Flags().BoolVar(&importPersist, "store", false, "Also upsert cleaned rows into the database")
}
