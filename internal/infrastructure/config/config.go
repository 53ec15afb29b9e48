package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App   AppConfig
	Log   LogConfig
	Stock StockConfig
	Sales SalesConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// StockConfig holds stock view settings
type StockConfig struct {
	PageSize          int // rows per page in the merged stock view
	LowStockThreshold int // quantity at or below which a row is flagged
	NearExpiryDays    int // look-ahead window for expiry alerts
	FetchConcurrency  int // concurrent per-product stock fetches
}

// SalesConfig holds point-of-sale settings
type SalesConfig struct {
	TaxRate float64 // e.g. 0.10 for 10%
}

// TaxRateDecimal returns the configured tax rate as a decimal.
func (s SalesConfig) TaxRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.TaxRate)
}

// Load loads configuration from a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with STOCKVIEW_ prefix (e.g. STOCKVIEW_STOCK_PAGE_SIZE)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOCKVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Stock: StockConfig{
			PageSize:          v.GetInt("stock.page_size"),
			LowStockThreshold: v.GetInt("stock.low_stock_threshold"),
			NearExpiryDays:    v.GetInt("stock.near_expiry_days"),
			FetchConcurrency:  v.GetInt("stock.fetch_concurrency"),
		},
		Sales: SalesConfig{
			TaxRate: v.GetFloat64("sales.tax_rate"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "stockview"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Stock.PageSize == 0 {
		cfg.Stock.PageSize = 7
	}
	if cfg.Stock.LowStockThreshold == 0 {
		cfg.Stock.LowStockThreshold = 5
	}
	if cfg.Stock.NearExpiryDays == 0 {
		cfg.Stock.NearExpiryDays = 30
	}
	if cfg.Stock.FetchConcurrency == 0 {
		cfg.Stock.FetchConcurrency = 8
	}
	if cfg.Sales.TaxRate == 0 {
		cfg.Sales.TaxRate = 0.10
	}
}

func (c *Config) validate() error {
	if c.Stock.PageSize <= 0 {
		return fmt.Errorf("stock.page_size must be positive")
	}
	if c.Stock.LowStockThreshold < 0 {
		return fmt.Errorf("stock.low_stock_threshold cannot be negative")
	}
	if c.Stock.NearExpiryDays < 0 {
		return fmt.Errorf("stock.near_expiry_days cannot be negative")
	}
	if c.Stock.FetchConcurrency <= 0 {
		return fmt.Errorf("stock.fetch_concurrency must be positive")
	}
	if c.Sales.TaxRate < 0 || c.Sales.TaxRate >= 1 {
		return fmt.Errorf("sales.tax_rate must be in [0, 1), got %f", c.Sales.TaxRate)
	}
	return nil
}
