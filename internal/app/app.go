package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/FrankLong1/eia-data/internal/config"
	"github.com/FrankLong1/eia-data/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// FetchOptions configure the raw data download job.
type FetchOptions struct {
	BAs     []string
	From    *time.Time
	To      *time.Time
	OutDir  string
	Persist bool
}

// ImportOptions configure the cleaning pipeline run.
type ImportOptions struct {
	InputDir  string
	OutputDir string
	Persist   bool
}

// AnalyzeOptions configure a batch headroom analysis run.
type AnalyzeOptions struct {
	InputDir  string
	BAs       []string
	Rates     []float64
	Tolerance float64
	Workers   int
	CSVPath   string
	Persist   bool
}

// ExportOptions configure chart and CSV export for one BA.
type ExportOptions struct {
	BA          string
	InputDir    string
	DemandPNG   string
	CurvePNG    string
	CurveCSV    string
	HeadroomPNG string
	Rates       []float64
	MaxPoints   int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	BA    string
	Limit int
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
