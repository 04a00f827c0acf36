package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL           = "http://localhost:3900"
	DefaultAPITimeout        = 10 * time.Second
	DefaultCloseRetryDelay   = 2 * time.Second
	DefaultErrorRetryDelay   = 5 * time.Second
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultKeepaliveInterval = 30 * time.Second
	DefaultStaleTimeout      = 90 * time.Second
	DefaultStreamBufferSize  = 256
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultBatchSize         = 100
	DefaultFlushInterval     = 2 * time.Second
	DefaultQueueSize         = 1024
	DefaultBackfillInterval  = 30 * time.Second
	DefaultBackfillLimit     = 100
	DefaultMetricsPort       = 9090
	DefaultMetricsPath       = "/metrics"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

// Default returns a config carrying every default value. Enabled flags
// stay off; the archive, backfill, and metrics components are opt-in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	// Stream defaults. The URL stays empty; binaries derive it from the
	// API base URL when unset.
	if c.Stream.CloseRetryDelay == 0 {
		c.Stream.CloseRetryDelay = DefaultCloseRetryDelay
	}
	if c.Stream.ErrorRetryDelay == 0 {
		c.Stream.ErrorRetryDelay = DefaultErrorRetryDelay
	}
	if c.Stream.HandshakeTimeout == 0 {
		c.Stream.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Stream.KeepaliveInterval == 0 {
		c.Stream.KeepaliveInterval = DefaultKeepaliveInterval
	}
	if c.Stream.StaleTimeout == 0 {
		c.Stream.StaleTimeout = DefaultStaleTimeout
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultStreamBufferSize
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Archive defaults
	if c.Archive.BatchSize == 0 {
		c.Archive.BatchSize = DefaultBatchSize
	}
	if c.Archive.FlushInterval == 0 {
		c.Archive.FlushInterval = DefaultFlushInterval
	}
	if c.Archive.QueueSize == 0 {
		c.Archive.QueueSize = DefaultQueueSize
	}

	// Backfill defaults
	if c.Backfill.Interval == 0 {
		c.Backfill.Interval = DefaultBackfillInterval
	}
	if c.Backfill.Limit == 0 {
		c.Backfill.Limit = DefaultBackfillLimit
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}
