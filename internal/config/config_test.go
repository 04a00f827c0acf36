package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
api:
  base_url: https://oracle.example.com
  token: abc123
  timeout: 15s
stream:
  close_retry_delay: 3s
  error_retry_delay: 8s
database:
  host: localhost
  port: 5432
  name: oracle
  user: oracleuser
  password: oraclepass
archive:
  enabled: true
  batch_size: 250
backfill:
  enabled: true
  min_score: 70
metrics:
  enabled: true
  path: /prom
logging:
  level: debug
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://oracle.example.com" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "https://oracle.example.com")
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Errorf("API.Timeout = %v, want 15s", cfg.API.Timeout)
	}
	if cfg.Stream.CloseRetryDelay != 3*time.Second {
		t.Errorf("Stream.CloseRetryDelay = %v, want 3s", cfg.Stream.CloseRetryDelay)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
	if !cfg.Archive.Enabled || cfg.Archive.BatchSize != 250 {
		t.Errorf("Archive = %+v, want enabled with batch_size 250", cfg.Archive)
	}
	if cfg.Backfill.MinScore != 70 {
		t.Errorf("Backfill.MinScore = %d, want 70", cfg.Backfill.MinScore)
	}
	if cfg.Metrics.Path != "/prom" {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, "/prom")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_ORACLE_TOKEN", "secret123")

	yaml := `
api:
  token: ${TEST_ORACLE_TOKEN}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.Token != "secret123" {
		t.Errorf("API.Token = %q, want %q", cfg.API.Token, "secret123")
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	yaml := `
api:
  base_url: https://oracle.example.com
  basurl: typo
`
	path := writeTempFile(t, yaml)

	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeTempFile(t, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed on empty file: %v", err)
	}
	if cfg.API.BaseURL != "" {
		t.Errorf("API.BaseURL = %q, want empty before defaults", cfg.API.BaseURL)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
api:
  token: abc123
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want default %v", cfg.API.Timeout, DefaultAPITimeout)
	}
	if cfg.Stream.CloseRetryDelay != DefaultCloseRetryDelay {
		t.Errorf("Stream.CloseRetryDelay = %v, want default %v", cfg.Stream.CloseRetryDelay, DefaultCloseRetryDelay)
	}
	if cfg.Stream.ErrorRetryDelay != DefaultErrorRetryDelay {
		t.Errorf("Stream.ErrorRetryDelay = %v, want default %v", cfg.Stream.ErrorRetryDelay, DefaultErrorRetryDelay)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want default %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Archive.BatchSize != DefaultBatchSize {
		t.Errorf("Archive.BatchSize = %d, want default %d", cfg.Archive.BatchSize, DefaultBatchSize)
	}
	if cfg.Metrics.Port != DefaultMetricsPort {
		t.Errorf("Metrics.Port = %d, want default %d", cfg.Metrics.Port, DefaultMetricsPort)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, DefaultLogLevel)
	}
	if cfg.Archive.Enabled || cfg.Backfill.Enabled || cfg.Metrics.Enabled {
		t.Error("enabled flags should stay off by default")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadOrDefault_InvalidFile(t *testing.T) {
	yaml := `
logging:
  level: loud
`
	path := writeTempFile(t, yaml)

	if _, err := LoadOrDefault(path); err == nil {
		t.Error("expected validation error for bad log level")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "bad base url scheme",
			mutate:  func(c *Config) { c.API.BaseURL = "ftp://oracle.example.com" },
			wantErr: `api.base_url must be an http or https URL, got "ftp://oracle.example.com"`,
		},
		{
			name:    "negative close retry delay",
			mutate:  func(c *Config) { c.Stream.CloseRetryDelay = -time.Second },
			wantErr: "stream.close_retry_delay must be > 0",
		},
		{
			name:    "archive enabled without database host",
			mutate:  func(c *Config) { c.Archive.Enabled = true },
			wantErr: "database.host is required when the archive is enabled",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *Config) {
				c.Archive.Enabled = true
				c.Database.Host = "localhost"
				c.Database.Name = "oracle"
				c.Database.User = "user"
				c.Database.Password = "pass"
				c.Database.MaxConns = 5
				c.Database.MinConns = 10
			},
			wantErr: "database.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Archive.BatchSize = 0 },
			wantErr: "archive.batch_size must be >= 1",
		},
		{
			name:    "zero backfill limit",
			mutate:  func(c *Config) { c.Backfill.Limit = 0 },
			wantErr: "backfill.limit must be >= 1",
		},
		{
			name:    "metrics port out of range",
			mutate:  func(c *Config) { c.Metrics.Port = 70000 },
			wantErr: "metrics.port must be between 1 and 65535, got 70000",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: `logging.level must be one of debug, info, warn, error, got "loud"`,
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: `logging.format must be text or json, got "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"error", "ERROR"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		got := LoggingConfig{Level: tt.level}.SlogLevel().String()
		if !strings.EqualFold(got, tt.want) {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
