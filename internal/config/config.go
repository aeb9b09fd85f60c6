// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jobsift/jobsift/internal/extract"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	Browser BrowserConfig `mapstructure:"browser"`
	DB      DBConfig      `mapstructure:"db"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ScrapeConfig governs page selection and pacing for a run.
type ScrapeConfig struct {
	BaseURL                string `mapstructure:"base_url"`
	Source                 string `mapstructure:"source"`
	Pages                  int    `mapstructure:"pages"`
	PageMin                int    `mapstructure:"page_min"`
	PageMax                int    `mapstructure:"page_max"`
	PageDelaySeconds       int    `mapstructure:"page_delay_seconds"`
	PageDelayJitterSeconds int    `mapstructure:"page_delay_jitter_seconds"`

	// StaticFetch swaps the browser session for a plain HTTP fetcher, for
	// sources that render their listings server-side.
	StaticFetch bool `mapstructure:"static_fetch"`
}

// BrowserConfig configures the headless browser session.
type BrowserConfig struct {
	Headless               bool   `mapstructure:"headless"`
	NavTimeoutSeconds      int    `mapstructure:"nav_timeout_seconds"`
	SelectorTimeoutSeconds int    `mapstructure:"selector_timeout_seconds"`
	ScreenshotDir          string `mapstructure:"screenshot_dir"`
}

// DBConfig controls access to the Postgres database.
type DBConfig struct {
	DSN                string `mapstructure:"dsn"`
	MaxConns           int    `mapstructure:"max_conns"`
	WritesPerSecond    int    `mapstructure:"writes_per_second"`
	ConnTimeoutSeconds int    `mapstructure:"conn_timeout_seconds"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JOBSIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scrape.source", extract.SourceNaukri)
	v.SetDefault("scrape.base_url", "https://www.naukri.com/software-engineer-jobs?k=software+engineer")
	v.SetDefault("scrape.pages", 4)
	v.SetDefault("scrape.page_min", 2)
	v.SetDefault("scrape.page_max", 100)
	v.SetDefault("scrape.page_delay_seconds", 4)
	v.SetDefault("scrape.page_delay_jitter_seconds", 6)
	v.SetDefault("scrape.static_fetch", false)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.nav_timeout_seconds", 90)
	v.SetDefault("browser.selector_timeout_seconds", 8)
	// Registered empty so the env-only DSN is visible to Unmarshal.
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.writes_per_second", 10)
	v.SetDefault("db.conn_timeout_seconds", 10)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9091)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scrape.BaseURL == "" {
		return fmt.Errorf("scrape.base_url must be set")
	}
	if _, err := extract.ForSource(c.Scrape.Source, nil); err != nil {
		return fmt.Errorf("scrape.source: %w", err)
	}
	if c.Scrape.Pages <= 0 {
		return fmt.Errorf("scrape.pages must be > 0")
	}
	if c.Scrape.PageMin < 1 || c.Scrape.PageMax < c.Scrape.PageMin {
		return fmt.Errorf("scrape page range [%d,%d] is invalid", c.Scrape.PageMin, c.Scrape.PageMax)
	}
	if c.Scrape.Pages > c.Scrape.PageMax-c.Scrape.PageMin+1 {
		return fmt.Errorf("scrape.pages exceeds the page range size")
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn must be set")
	}
	if c.Metrics.Enabled && c.Metrics.Port <= 0 {
		return fmt.Errorf("metrics.port must be > 0 when metrics are enabled")
	}
	return nil
}

// NavTimeout returns the navigation budget as a duration.
func (c BrowserConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSeconds) * time.Second
}

// SelectorTimeout returns the per-selector wait as a duration.
func (c BrowserConfig) SelectorTimeout() time.Duration {
	return time.Duration(c.SelectorTimeoutSeconds) * time.Second
}

// PageDelay returns the fixed part of the inter-page delay.
func (c ScrapeConfig) PageDelay() time.Duration {
	return time.Duration(c.PageDelaySeconds) * time.Second
}

// PageDelayJitter returns the random span added to the inter-page delay.
func (c ScrapeConfig) PageDelayJitter() time.Duration {
	return time.Duration(c.PageDelayJitterSeconds) * time.Second
}

// ConnTimeout returns the database connect budget as a duration.
func (c DBConfig) ConnTimeout() time.Duration {
	return time.Duration(c.ConnTimeoutSeconds) * time.Second
}
