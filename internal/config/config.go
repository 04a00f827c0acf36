package config

import (
	"log/slog"
	"time"

	"github.com/dynamolabs/oracle-alpha/internal/database"
)

// Config is the root configuration for a recorder instance.
type Config struct {
	API      APIConfig       `yaml:"api"`
	Stream   StreamConfig    `yaml:"stream"`
	Database database.Config `yaml:"database"`
	Archive  ArchiveConfig   `yaml:"archive"`
	Backfill BackfillConfig  `yaml:"backfill"`
	Metrics  MetricsConfig   `yaml:"metrics"`
	Logging  LoggingConfig   `yaml:"logging"`
}

// APIConfig holds ORACLE Alpha REST API settings.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Token     string        `yaml:"token"`      // Bearer token, typically ${ORACLE_API_TOKEN}
	TokenFile string        `yaml:"token_file"` // Token file path, consulted when token is empty
	Timeout   time.Duration `yaml:"timeout"`
}

// StreamConfig holds WebSocket subscriber settings.
type StreamConfig struct {
	URL               string        `yaml:"url"` // Empty derives ws(s)://…/ws from api.base_url
	CloseRetryDelay   time.Duration `yaml:"close_retry_delay"`
	ErrorRetryDelay   time.Duration `yaml:"error_retry_delay"`
	HandshakeTimeout  time.Duration `yaml:"handshake_timeout"`
	KeepaliveInterval time.Duration `yaml:"keepalive_interval"`
	StaleTimeout      time.Duration `yaml:"stale_timeout"`
	BufferSize        int           `yaml:"buffer_size"`
}

// ArchiveConfig holds signal archive writer settings. The database
// section is only required when the archive is enabled.
type ArchiveConfig struct {
	Enabled       bool          `yaml:"enabled"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	QueueSize     int           `yaml:"queue_size"`
}

// BackfillConfig holds REST backfill poller settings.
type BackfillConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	MinScore int           `yaml:"min_score"`
	Limit    int           `yaml:"limit"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// SlogLevel maps the configured level onto slog's scale. Validate
// rejects unknown values; anything else falls back to info.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
