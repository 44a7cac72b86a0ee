// Package config resolves service configuration from the environment at
// startup. Nothing in the request path reads the environment.
package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full service configuration, populated from SMART_RETAIL_*
// environment variables.
type Config struct {
	Env          string `default:"development"`
	Port         int    `default:"8080"`
	ArtifactsDir string `split_words:"true" default:"artifacts"`
	CatalogPath  string `split_words:"true" default:"artifacts/catalog_index.json"`

	// RedisURL enables the trend-report cache when set.
	RedisURL         string `split_words:"true"`
	TrendCacheTTLSec int    `split_words:"true" default:"600"`

	// ClickHouseAddr enables the prediction event store when set.
	ClickHouseAddr     string `split_words:"true"`
	ClickHousePort     int    `split_words:"true" default:"9000"`
	ClickHouseDatabase string `split_words:"true" default:"smart_retail"`
	ClickHouseUser     string `split_words:"true" default:"default"`
	ClickHousePassword string `split_words:"true"`
}

// Load reads .env when present and resolves the configuration.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("smart_retail", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
