package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/FrankLong1/eia-data/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Clean    CleanConfig    `mapstructure:"clean"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Export   ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// APIConfig covers EIA API access.
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Key            string        `mapstructure:"key"`
	PageSize       int           `mapstructure:"page_size"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      time.Duration `mapstructure:"rate_limit"`
	MaxRetries     int           `mapstructure:"max_retries"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// FetchConfig sets download defaults.
type FetchConfig struct {
	BAs       []string `mapstructure:"bas"`
	StartDate string   `mapstructure:"start_date"`
	EndDate   string   `mapstructure:"end_date"`
	RawDir    string   `mapstructure:"raw_dir"`
}

// CleanConfig tunes the cleaning pipeline.
type CleanConfig struct {
	IQRFactor     float64 `mapstructure:"iqr_factor"`
	PeakFactor    float64 `mapstructure:"peak_factor"`
	AbsoluteCapMW float64 `mapstructure:"absolute_cap_mw"`
	MinPoints     int     `mapstructure:"min_points"`
	CleanedDir    string  `mapstructure:"cleaned_dir"`
}

// AnalysisConfig governs the headroom solver.
type AnalysisConfig struct {
	Tolerance     float64 `mapstructure:"tolerance"`
	MaxDoublings  int     `mapstructure:"max_doublings"`
	MaxIterations int     `mapstructure:"max_iterations"`
	Workers       int     `mapstructure:"workers"`
}

// ExportConfig sets chart/CSV export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
	ChartWidth    int `mapstructure:"chart_width"`
	ChartHeight   int `mapstructure:"chart_height"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EIADATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "eiadata")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("api.base_url", "https://api.eia.gov/v2")
	v.SetDefault("api.page_size", 5000)
	v.SetDefault("api.request_timeout", "30s")
	v.SetDefault("api.rate_limit", "100ms")
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("api.user_agent", "eiadata/1.0")

	v.SetDefault("fetch.bas", []string{
		"PJM", "MISO", "ERCO", "SWPP", "SOCO", "CISO", "ISNE", "NYIS",
		"DUK", "CPLE", "FPC", "TVA", "BPAT", "AZPS", "FPL", "PACE",
		"PACW", "PGE", "PSCO", "SRP", "SCEG", "SC",
	})
	v.SetDefault("fetch.start_date", "2016-01-01")
	v.SetDefault("fetch.end_date", "2024-12-31")
	v.SetDefault("fetch.raw_dir", "data/raw")

	v.SetDefault("clean.iqr_factor", 3.0)
	v.SetDefault("clean.peak_factor", 2.0)
	v.SetDefault("clean.absolute_cap_mw", 200000.0)
	v.SetDefault("clean.min_points", 10)
	v.SetDefault("clean.cleaned_dir", "data/cleaned")

	v.SetDefault("analysis.tolerance", 1e-6)
	v.SetDefault("analysis.max_doublings", 10)
	v.SetDefault("analysis.max_iterations", 100)
	v.SetDefault("analysis.workers", 1)

	v.SetDefault("export.max_data_points", 100000)
	v.SetDefault("export.chart_width", 1280)
	v.SetDefault("export.chart_height", 720)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.API.PageSize <= 0 {
		return fmt.Errorf("api.page_size must be greater than zero")
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries cannot be negative")
	}
	if c.Clean.IQRFactor <= 0 {
		return fmt.Errorf("clean.iqr_factor must be greater than zero")
	}
	if c.Clean.PeakFactor <= 0 {
		return fmt.Errorf("clean.peak_factor must be greater than zero")
	}
	if c.Analysis.Tolerance <= 0 {
		return fmt.Errorf("analysis.tolerance must be greater than zero")
	}
	if c.Analysis.MaxDoublings <= 0 {
		return fmt.Errorf("analysis.max_doublings must be greater than zero")
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be at least 1")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
