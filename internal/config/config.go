// Package config loads space-missions settings from defaults, an optional
// YAML file and SPACE_MISSIONS_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/space-missions/internal/catalog"
	"github.com/rcliao/space-missions/internal/spacex"
)

// Config holds runtime settings.
type Config struct {
	APIURL     string        `yaml:"api_url" env:"API_URL"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RateLimit  float64       `yaml:"rate_limit" env:"RATE_LIMIT"`
	RateBurst  int           `yaml:"rate_burst" env:"RATE_BURST"`
	CatalogDSN string        `yaml:"catalog_dsn" env:"CATALOG_DSN"`
	Timezone   string        `yaml:"timezone" env:"TIMEZONE"`
	LogLevel   string        `yaml:"log_level" env:"LOG_LEVEL"`
	DataFile   string        `yaml:"data_file" env:"DATA_FILE"`
}

// EnvPrefix prefixes every environment variable name.
const EnvPrefix = "SPACE_MISSIONS_"

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:     spacex.DefaultBaseURL,
		Timeout:    30 * time.Second,
		RateLimit:  5,
		RateBurst:  2,
		CatalogDSN: catalog.MemoryDSN,
		Timezone:   "Local",
		LogLevel:   "warn",
	}
}

// Load builds a Config. path may be empty; a missing file at an explicit
// path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.APIURL == "" && c.DataFile == "" {
		errs = append(errs, errors.New("api_url or data_file is required"))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit must not be negative, got %v", c.RateLimit))
	}
	if c.RateBurst < 0 {
		errs = append(errs, fmt.Errorf("rate_burst must not be negative, got %d", c.RateBurst))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves Timezone. Empty and "Local" mean time.Local.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
