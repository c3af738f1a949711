package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"45s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	SourceURL     string        `envconfig:"SOURCE_URL" default:"https://labdados.com/produtos"`
	SourceTimeout time.Duration `envconfig:"SOURCE_TIMEOUT" default:"30s"`

	// Empty selects the in-process fetch cache.
	RedisAddr string        `envconfig:"REDIS_ADDR" default:""`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"0s"`

	ExportSheetName string `envconfig:"EXPORT_SHEET_NAME" default:"Sheet1"`
}

// LoadConfig reads configuration from environment variables. Values from a
// .env file in the working directory fill in variables that are not set.
func LoadConfig(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return nil, fmt.Errorf("app: load env file: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SourceURL == "" {
		return nil, errors.New("source url must be provided")
	}
	if cfg.CacheTTL < 0 {
		return nil, errors.New("cache ttl must not be negative")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// SharedCache reports whether the fetch cache should live in Redis.
func (c *Config) SharedCache() bool {
	return c != nil && c.RedisAddr != ""
}
