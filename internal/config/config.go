package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Risk     RiskConfig     `mapstructure:"risk"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
	Feed     FeedConfig     `mapstructure:"feed"`
}

type AppConfig struct {
	LogLevel     string `mapstructure:"log_level"`
	LogPath      string `mapstructure:"log_path"`
	HTTPAddr     string `mapstructure:"http_addr"`
	StorePath    string `mapstructure:"store_path"`
	ProfilesPath string `mapstructure:"profiles_path"`
	// ReportDir, when set, receives result.json and the equity chart after
	// a replay finishes.
	ReportDir string `mapstructure:"report_dir"`
}

type EngineConfig struct {
	// InitialCapital is a decimal string so capital survives parsing exactly.
	InitialCapital string `mapstructure:"initial_capital"`
	TrackEquity    bool   `mapstructure:"track_equity"`
}

type RiskConfig struct {
	MaxPositionSize int64  `mapstructure:"max_position_size"`
	MaxOrderValue   string `mapstructure:"max_order_value"`
	MaxDailyLoss    string `mapstructure:"max_daily_loss"`
	MaxPositions    int    `mapstructure:"max_positions"`
}

type AnalyzerConfig struct {
	PeriodsPerYear int     `mapstructure:"periods_per_year"`
	RiskFreeRate   float64 `mapstructure:"risk_free_rate"`
}

type FeedConfig struct {
	// Source selects the bar source: "csv" replays a file, "binance"
	// pulls historical klines.
	Source         string `mapstructure:"source"`
	CSVPath        string `mapstructure:"csv_path"`
	Symbol         string `mapstructure:"symbol"`
	Interval       string `mapstructure:"interval"`
	Limit          int    `mapstructure:"limit"`
	BinanceBaseURL string `mapstructure:"binance_base_url"`
}

// Load reads a YAML config file, applies defaults and validates.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults()
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = ":8080"
	}
	if c.Engine.InitialCapital == "" {
		c.Engine.InitialCapital = "100000"
	}
	if c.Risk.MaxPositionSize == 0 {
		c.Risk.MaxPositionSize = 1000
	}
	if c.Risk.MaxOrderValue == "" {
		c.Risk.MaxOrderValue = "100000"
	}
	if c.Risk.MaxDailyLoss == "" {
		c.Risk.MaxDailyLoss = "10000"
	}
	if c.Risk.MaxPositions == 0 {
		c.Risk.MaxPositions = 10
	}
	if c.Analyzer.PeriodsPerYear == 0 {
		c.Analyzer.PeriodsPerYear = 252
	}
	if c.Feed.Source == "" {
		c.Feed.Source = "csv"
	}
	if c.Feed.Interval == "" {
		c.Feed.Interval = "1m"
	}
	if c.Feed.Limit == 0 {
		c.Feed.Limit = 500
	}
}

func validate(c *Config) error {
	capital, err := decimal.NewFromString(c.Engine.InitialCapital)
	if err != nil {
		return fmt.Errorf("engine.initial_capital %q is not a decimal: %w", c.Engine.InitialCapital, err)
	}
	if !capital.IsPositive() {
		return fmt.Errorf("engine.initial_capital must be positive, got %s", capital)
	}
	for name, value := range map[string]string{
		"risk.max_order_value": c.Risk.MaxOrderValue,
		"risk.max_daily_loss":  c.Risk.MaxDailyLoss,
	} {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("%s %q is not a decimal: %w", name, value, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	switch c.Feed.Source {
	case "csv":
		if c.Feed.CSVPath == "" {
			return fmt.Errorf("feed.csv_path is required for the csv source")
		}
	case "binance":
		if c.Feed.Symbol == "" {
			return fmt.Errorf("feed.symbol is required for the binance source")
		}
	default:
		return fmt.Errorf("feed.source %q is not one of csv, binance", c.Feed.Source)
	}
	return nil
}

// InitialCapital returns the parsed capital. Load has already validated it.
func (c *Config) InitialCapital() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Engine.InitialCapital)
	return d
}

// MaxOrderValue returns the parsed order-value limit.
func (c *Config) MaxOrderValue() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Risk.MaxOrderValue)
	return d
}

// MaxDailyLoss returns the parsed daily-loss limit.
func (c *Config) MaxDailyLoss() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Risk.MaxDailyLoss)
	return d
}
