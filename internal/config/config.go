// Package config loads the application configuration from config files and
// the environment.
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	Server  ServerConfig   `mapstructure:"server"`
	Gemini  GeminiConfig   `mapstructure:"gemini"`
	Scraper ScraperConfig  `mapstructure:"scraper"`
	Profile RuntimeProfile `mapstructure:"profile"`
	Logging LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GeminiConfig holds the generative ranking endpoint settings.
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ScraperConfig holds the fetch pacing and retry settings.
type ScraperConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MinInterval    time.Duration `mapstructure:"min_interval"`
	MaxRetries     int           `mapstructure:"max_retries"`
	BackoffBase    time.Duration `mapstructure:"backoff_base"`
	DesiredCount   int           `mapstructure:"desired_count"`
}

// RuntimeProfile bounds one aggregation run. It is constructed once at
// startup and threaded into the scheduler; nothing sniffs the environment at
// request time.
type RuntimeProfile struct {
	MaxConcurrency     int           `mapstructure:"max_concurrency"`
	PerCategoryTimeout time.Duration `mapstructure:"per_category_timeout"`
	GlobalTimeout      time.Duration `mapstructure:"global_timeout"`
	MaxCategories      int           `mapstructure:"max_categories"`
}

// LoggingConfig selects the log level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c *Config) validate() error {
	if c.Profile.MaxConcurrency < 1 {
		return fmt.Errorf("profile.max_concurrency must be at least 1, got %d", c.Profile.MaxConcurrency)
	}
	if c.Profile.MaxCategories < 1 {
		return fmt.Errorf("profile.max_categories must be at least 1, got %d", c.Profile.MaxCategories)
	}
	if c.Profile.GlobalTimeout <= 0 {
		return fmt.Errorf("profile.global_timeout must be positive, got %s", c.Profile.GlobalTimeout)
	}
	if c.Profile.PerCategoryTimeout <= 0 {
		return fmt.Errorf("profile.per_category_timeout must be positive, got %s", c.Profile.PerCategoryTimeout)
	}
	if c.Scraper.MinInterval <= 0 {
		return fmt.Errorf("scraper.min_interval must be positive, got %s", c.Scraper.MinInterval)
	}
	return nil
}
