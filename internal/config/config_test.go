package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "pipeline.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML is a minimal valid configuration.
const validConfigYAML = `
source:
  url: "https://fashion-studio.example.com/"
  max_pages: 10
destinations:
  csv:
    path: "output/products.csv"
    enabled: true
  json:
    path: "output/products.json"
    pretty_print: true
    enabled: true
  database:
    driver: "sqlite"
    dsn: "products.db"
    table: "fashion_products"
    enabled: true
  spreadsheet:
    spreadsheet_id: "sheet-id-123"
    sheet: "Sheet1"
    token_env: "SHEETS_TOKEN"
    enabled: true
retry:
  max_attempts: 3
  initial_delay_ms: 100
  max_delay_ms: 5000
  backoff_multiplier: 2.0
  timeout_sec: 30
logging:
  level: "info"
`

func TestLoadConfig_Valid(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned unexpected error: %v", err)
	}

	if cfg.Source.URL != "https://fashion-studio.example.com/" {
		t.Errorf("Source.URL = %s", cfg.Source.URL)
	}

	if cfg.Source.MaxPages != 10 {
		t.Errorf("Source.MaxPages = %d, want 10", cfg.Source.MaxPages)
	}

	if cfg.Destinations.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %s, want sqlite", cfg.Destinations.Database.Driver)
	}

	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("Retry.MaxAttempts = %d, want 3", cfg.Retry.MaxAttempts)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := createTempConfigFile(t, `
source:
  url: "https://fashion-studio.example.com/"
destinations:
  csv:
    path: "products.csv"
    enabled: true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned unexpected error: %v", err)
	}

	if cfg.Source.MaxPages != 50 {
		t.Errorf("default MaxPages = %d, want 50", cfg.Source.MaxPages)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %s, want info", cfg.Logging.Level)
	}

	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("default Retry.MaxAttempts = %d, want 3", cfg.Retry.MaxAttempts)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig expected error for missing file")
	}
}

func TestConfig_Validate_Errors(t *testing.T) {
	base := func() Config {
		return Config{
			Source: SourceConfig{URL: "https://example.com/", MaxPages: 5},
			Destinations: DestinationsConfig{
				CSV: CSVConfig{Path: "out.csv", Enabled: true},
			},
			Retry:   DefaultRetryPolicy(),
			Logging: LoggingConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "missing source url",
			mutate:  func(c *Config) { c.Source.URL = "" },
			wantErr: ErrMissingSourceURL,
		},
		{
			name:    "invalid max pages",
			mutate:  func(c *Config) { c.Source.MaxPages = 0 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "no destinations",
			mutate:  func(c *Config) { c.Destinations.CSV.Enabled = false },
			wantErr: ErrNoDestinations,
		},
		{
			name:    "csv without path",
			mutate:  func(c *Config) { c.Destinations.CSV.Path = "" },
			wantErr: ErrMissingCSVPath,
		},
		{
			name: "json without path",
			mutate: func(c *Config) {
				c.Destinations.JSON.Enabled = true
			},
			wantErr: ErrMissingJSONPath,
		},
		{
			name: "database without dsn",
			mutate: func(c *Config) {
				c.Destinations.Database = DatabaseConfig{Enabled: true, Table: "t", Driver: "sqlite"}
			},
			wantErr: ErrMissingDatabaseDSN,
		},
		{
			name: "database without table",
			mutate: func(c *Config) {
				c.Destinations.Database = DatabaseConfig{Enabled: true, DSN: "d", Driver: "sqlite"}
			},
			wantErr: ErrMissingDatabaseTable,
		},
		{
			name: "database with bad driver",
			mutate: func(c *Config) {
				c.Destinations.Database = DatabaseConfig{Enabled: true, DSN: "d", Table: "t", Driver: "oracle"}
			},
			wantErr: ErrInvalidDatabaseDriver,
		},
		{
			name: "spreadsheet without id",
			mutate: func(c *Config) {
				c.Destinations.Spreadsheet = SpreadsheetConfig{Enabled: true, Sheet: "Sheet1"}
			},
			wantErr: ErrMissingSpreadsheetID,
		},
		{
			name:    "invalid max attempts",
			mutate:  func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantErr: ErrInvalidMaxAttempts,
		},
		{
			name:    "negative initial delay",
			mutate:  func(c *Config) { c.Retry.InitialDelayMs = -1 },
			wantErr: ErrInvalidInitialDelay,
		},
		{
			name:    "backoff below one",
			mutate:  func(c *Config) { c.Retry.BackoffMultiplier = 0.5 },
			wantErr: ErrInvalidBackoffMultiplier,
		},
		{
			name:    "invalid timeout",
			mutate:  func(c *Config) { c.Retry.TimeoutSec = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryPolicy_GetRetryDelay(t *testing.T) {
	rp := RetryPolicy{
		MaxAttempts:       5,
		InitialDelayMs:    100,
		MaxDelayMs:        1000,
		BackoffMultiplier: 2.0,
		TimeoutSec:        30,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 0},
		{2, 100 * time.Millisecond},
		{3, 200 * time.Millisecond},
		{4, 400 * time.Millisecond},
		{6, 1000 * time.Millisecond}, // capped at max delay
	}

	for _, tt := range tests {
		if got := rp.GetRetryDelay(tt.attempt); got != tt.want {
			t.Errorf("GetRetryDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestSpreadsheetConfig_ResolveToken(t *testing.T) {
	t.Setenv("TEST_SHEETS_TOKEN", "from-env")

	inline := SpreadsheetConfig{Token: "inline", TokenEnv: "TEST_SHEETS_TOKEN"}
	if got := inline.ResolveToken(); got != "inline" {
		t.Errorf("inline token = %s, want inline", got)
	}

	env := SpreadsheetConfig{TokenEnv: "TEST_SHEETS_TOKEN"}
	if got := env.ResolveToken(); got != "from-env" {
		t.Errorf("env token = %s, want from-env", got)
	}

	empty := SpreadsheetConfig{}
	if got := empty.ResolveToken(); got != "" {
		t.Errorf("empty token = %s, want empty", got)
	}
}
