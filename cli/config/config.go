package config

import (
	"errors"
	"fmt"
	"time"
)

// Config represents a livedraw.yaml configuration file.
// All values are optional and act as defaults for command flags.
// CLI flags always override config values.
type Config struct {
	Art          string          `yaml:"art"`
	Artwork      ArtworkConfig   `yaml:"artwork"`
	Control      ControlConfig   `yaml:"control"`
	Handshake    HandshakeConfig `yaml:"handshake"`
	PollInterval Duration        `yaml:"poll_interval"`
	Archive      ArchiveConfig   `yaml:"archive"`
	Adapter      AdapterConfig   `yaml:"adapter"`
	Metrics      MetricsConfig   `yaml:"metrics"`
}

// ArtworkConfig holds artwork construction defaults. Nil fields fall back
// to the artwork's own defaults.
type ArtworkConfig struct {
	Width   *float64 `yaml:"width,omitempty"`
	Height  *float64 `yaml:"height,omitempty"`
	Padding *float64 `yaml:"padding,omitempty"`
	Seed    *int64   `yaml:"seed,omitempty"`
	// Source is an artwork-specific input, e.g. the journal for replay.
	Source string `yaml:"source,omitempty"`
}

// ControlConfig holds control service defaults.
type ControlConfig struct {
	URL           string   `yaml:"url"`
	RetryInterval Duration `yaml:"retry_interval"`
	MaxAttempts   int      `yaml:"max_attempts"`
	Timeout       Duration `yaml:"timeout"`
}

// HandshakeConfig holds handshake directory defaults.
type HandshakeConfig struct {
	Dir string `yaml:"dir"`
}

// ArchiveConfig holds run archive defaults.
type ArchiveConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// AdapterConfig holds event mirror defaults.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// MetricsConfig holds the Prometheus endpoint address.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks enumerations and ranges. Missing values are not errors.
func (c *Config) Validate() error {
	var errs []error

	switch c.Archive.Backend {
	case "", "fs", "s3":
	default:
		errs = append(errs, fmt.Errorf("archive.backend must be fs or s3, got %q", c.Archive.Backend))
	}
	if c.Archive.Backend != "" && c.Archive.Path == "" {
		errs = append(errs, errors.New("archive.path is required when archive.backend is set"))
	}

	switch c.Adapter.Type {
	case "", "webhook", "redis":
	default:
		errs = append(errs, fmt.Errorf("adapter.type must be webhook or redis, got %q", c.Adapter.Type))
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		errs = append(errs, fmt.Errorf("adapter.retries must be >= 0, got %d", *c.Adapter.Retries))
	}

	if c.Control.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("control.max_attempts must be >= 0, got %d", c.Control.MaxAttempts))
	}
	if c.PollInterval.Duration < 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be >= 0, got %s", c.PollInterval.Duration))
	}

	return errors.Join(errs...)
}
