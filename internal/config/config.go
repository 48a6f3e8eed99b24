// Package config provides configuration management for the pipeline worker.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingSourceURL         = errors.New("source.url is required")
	ErrInvalidMaxPages          = errors.New("source.max_pages must be at least 1")
	ErrNoDestinations           = errors.New("at least one destination must be enabled")
	ErrMissingCSVPath           = errors.New("destinations.csv.path is required")
	ErrMissingJSONPath          = errors.New("destinations.json.path is required")
	ErrMissingDatabaseDSN       = errors.New("destinations.database.dsn is required")
	ErrMissingDatabaseTable     = errors.New("destinations.database.table is required")
	ErrInvalidDatabaseDriver    = errors.New("destinations.database.driver must be 'postgres' or 'sqlite'")
	ErrMissingSpreadsheetID     = errors.New("destinations.spreadsheet.spreadsheet_id is required")
	ErrMissingSpreadsheetSheet  = errors.New("destinations.spreadsheet.sheet is required")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete pipeline configuration.
type Config struct {
	Source       SourceConfig       `yaml:"source"`
	Destinations DestinationsConfig `yaml:"destinations"`
	Retry        RetryPolicy        `yaml:"retry"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// SourceConfig describes the catalog to scrape.
type SourceConfig struct {
	URL      string `yaml:"url"`
	MaxPages int    `yaml:"max_pages"`
}

// DestinationsConfig groups the four sink configurations.
type DestinationsConfig struct {
	CSV         CSVConfig         `yaml:"csv"`
	JSON        JSONConfig        `yaml:"json"`
	Database    DatabaseConfig    `yaml:"database"`
	Spreadsheet SpreadsheetConfig `yaml:"spreadsheet"`
}

// CSVConfig configures the CSV file destination.
type CSVConfig struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// JSONConfig configures the JSON file destination.
type JSONConfig struct {
	Path        string `yaml:"path"`
	PrettyPrint bool   `yaml:"pretty_print"`
	Enabled     bool   `yaml:"enabled"`
}

// DatabaseConfig configures the relational destination.
type DatabaseConfig struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	Table   string `yaml:"table"`
	Enabled bool   `yaml:"enabled"`
}

// SpreadsheetConfig configures the shared spreadsheet destination.
type SpreadsheetConfig struct {
	SpreadsheetID string `yaml:"spreadsheet_id"`
	Sheet         string `yaml:"sheet"`
	Token         string `yaml:"token"`
	TokenEnv      string `yaml:"token_env"`
	Endpoint      string `yaml:"endpoint"`
	Enabled       bool   `yaml:"enabled"`
}

// ResolveToken returns the API token, preferring the inline value over the
// environment variable named by token_env.
func (s *SpreadsheetConfig) ResolveToken() string {
	if s.Token != "" {
		return s.Token
	}

	if s.TokenEnv != "" {
		return os.Getenv(s.TokenEnv)
	}

	return ""
}

// RetryPolicy defines retry behavior for transient destination failures.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultRetryPolicy returns the retry policy used when the config omits one.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		InitialDelayMs:    500,
		MaxDelayMs:        30000,
		BackoffMultiplier: 2.0,
		TimeoutSec:        30,
	}
}

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source.MaxPages == 0 {
		c.Source.MaxPages = 50
	}

	if c.Destinations.Database.Driver == "" {
		c.Destinations.Database.Driver = "postgres"
	}

	if c.Destinations.Spreadsheet.Sheet == "" {
		c.Destinations.Spreadsheet.Sheet = "Sheet1"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Retry.MaxAttempts == 0 {
		c.Retry = DefaultRetryPolicy()
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return ErrMissingSourceURL
	}

	if c.Source.MaxPages < 1 {
		return ErrInvalidMaxPages
	}

	d := &c.Destinations
	if !d.CSV.Enabled && !d.JSON.Enabled && !d.Database.Enabled && !d.Spreadsheet.Enabled {
		return ErrNoDestinations
	}

	if d.CSV.Enabled && d.CSV.Path == "" {
		return ErrMissingCSVPath
	}

	if d.JSON.Enabled && d.JSON.Path == "" {
		return ErrMissingJSONPath
	}

	if d.Database.Enabled {
		if d.Database.DSN == "" {
			return ErrMissingDatabaseDSN
		}

		if d.Database.Table == "" {
			return ErrMissingDatabaseTable
		}

		if d.Database.Driver != "postgres" && d.Database.Driver != "sqlite" {
			return ErrInvalidDatabaseDriver
		}
	}

	if d.Spreadsheet.Enabled {
		if d.Spreadsheet.SpreadsheetID == "" {
			return ErrMissingSpreadsheetID
		}

		if d.Spreadsheet.Sheet == "" {
			return ErrMissingSpreadsheetSheet
		}
	}

	// Validate retry policy
	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	enabled := 0

	for _, on := range []bool{
		c.Destinations.CSV.Enabled,
		c.Destinations.JSON.Enabled,
		c.Destinations.Database.Enabled,
		c.Destinations.Spreadsheet.Enabled,
	} {
		if on {
			enabled++
		}
	}

	return fmt.Sprintf("Config{Source: %s, Destinations: %d, MaxAttempts: %d}",
		c.Source.URL, enabled, c.Retry.MaxAttempts)
}
