package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads .env, an optional config.yaml, and the environment (in that
// order, later sources winning) into a validated Config.
func Load() (*Config, error) {
	// A missing .env is fine; deployments set real environment variables.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("shopapp")
	v.AutomaticEnv()

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.timeout", 15*time.Second)

	v.SetDefault("scraper.request_timeout", 10*time.Second)
	v.SetDefault("scraper.min_interval", 1500*time.Millisecond)
	v.SetDefault("scraper.max_retries", 2)
	v.SetDefault("scraper.backoff_base", 2*time.Second)
	v.SetDefault("scraper.desired_count", 3)

	v.SetDefault("profile.max_concurrency", 3)
	v.SetDefault("profile.per_category_timeout", 25*time.Second)
	v.SetDefault("profile.global_timeout", 60*time.Second)
	v.SetDefault("profile.max_categories", 3)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}
