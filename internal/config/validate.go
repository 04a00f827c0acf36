package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must be an http or https URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be > 0")
	}

	if c.Stream.CloseRetryDelay <= 0 {
		return errors.New("stream.close_retry_delay must be > 0")
	}
	if c.Stream.ErrorRetryDelay <= 0 {
		return errors.New("stream.error_retry_delay must be > 0")
	}
	if c.Stream.BufferSize < 1 {
		return errors.New("stream.buffer_size must be >= 1")
	}

	if c.Archive.Enabled {
		if err := c.validateDatabase(); err != nil {
			return err
		}
	}
	if c.Archive.BatchSize < 1 {
		return errors.New("archive.batch_size must be >= 1")
	}
	if c.Archive.FlushInterval <= 0 {
		return errors.New("archive.flush_interval must be > 0")
	}
	if c.Archive.QueueSize < 1 {
		return errors.New("archive.queue_size must be >= 1")
	}

	if c.Backfill.Interval <= 0 {
		return errors.New("backfill.interval must be > 0")
	}
	if c.Backfill.MinScore < 0 {
		return errors.New("backfill.min_score must be >= 0")
	}
	if c.Backfill.Limit < 1 {
		return errors.New("backfill.limit must be >= 1")
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (c *Config) validateDatabase() error {
	db := c.Database
	if db.Host == "" {
		return errors.New("database.host is required when the archive is enabled")
	}
	if db.Name == "" {
		return errors.New("database.name is required when the archive is enabled")
	}
	if db.User == "" {
		return errors.New("database.user is required when the archive is enabled")
	}
	if db.Password == "" {
		return errors.New("database.password is required when the archive is enabled")
	}
	if db.MaxConns < 1 {
		return errors.New("database.max_conns must be >= 1")
	}
	if db.MinConns < 0 {
		return errors.New("database.min_conns must be >= 0")
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("database.min_conns (%d) cannot exceed max_conns (%d)", db.MinConns, db.MaxConns)
	}
	return nil
}
