package sqlite

import (
	"fmt"
	"time"
)

const (
	defaultBusyTimeout = 5000
	defaultDBFile      = "attachments.db"
	defaultMaxFileSize = 20 << 20 // 20 MiB, matches the platform upload cap
	defaultRetention   = 30 * 24 * time.Hour
	defaultSweep       = "0 3 * * *"
	defaultFetchTime   = 30 * time.Second
)

// Config holds the SQLite attachment store configuration.
type Config struct {
	// Path is the database file path. Defaults to {DataDir}/attachments.db.
	Path string `yaml:"path"`

	// WAL enables WAL journal mode for concurrent reads. Defaults to true.
	WAL *bool `yaml:"wal"`

	// BusyTimeout is the milliseconds to wait on a busy lock. Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`

	// MaxFileSize is the largest file accepted, in bytes. Defaults to 20 MiB.
	MaxFileSize int64 `yaml:"max_file_size"`

	// Retention is how long stored attachments are kept before the sweeper
	// removes them. Defaults to 720h (30 days). Zero disables sweeping.
	Retention time.Duration `yaml:"retention"`

	// SweepSchedule is the cron expression for the retention sweeper.
	// Defaults to "0 3 * * *" (daily at 03:00).
	SweepSchedule string `yaml:"sweep_schedule"`

	// FetchTimeout bounds a single download. Defaults to 30s.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

func (c *Config) defaults() {
	if c.WAL == nil {
		t := true
		c.WAL = &t
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = defaultMaxFileSize
	}
	if c.Retention == 0 {
		c.Retention = defaultRetention
	}
	if c.SweepSchedule == "" {
		c.SweepSchedule = defaultSweep
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = defaultFetchTime
	}
}

func (c *Config) walEnabled() bool {
	return c.WAL == nil || *c.WAL
}

func (c *Config) validate() error {
	if c.BusyTimeout < 0 {
		return fmt.Errorf("attachment: busy_timeout must be non-negative, got %d", c.BusyTimeout)
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("attachment: max_file_size must be non-negative, got %d", c.MaxFileSize)
	}
	if c.Retention < 0 {
		return fmt.Errorf("attachment: retention must be non-negative, got %s", c.Retention)
	}
	return nil
}
