package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapdq/internal/cli/output"
	"github.com/leapstack-labs/leapdq/pkg/adapter"
	"github.com/leapstack-labs/leapdq/pkg/validate"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DatasetName == "" {
		return fmt.Errorf("dataset_name is required")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}

	c.Source.Type = strings.ToLower(c.Source.Type)
	if c.Source.Type == "" {
		return fmt.Errorf("source.type is required")
	}
	if !adapter.IsRegistered(c.Source.Type) {
		return &adapter.UnknownAdapterError{Type: c.Source.Type, Available: adapter.ListAdapters()}
	}

	switch c.Routing.Backend {
	case "local":
		if c.Routing.CleanDir == "" || c.Routing.QuarantineDir == "" {
			return fmt.Errorf("routing.clean_dir and routing.quarantine_dir are required for the local backend")
		}
	case "s3":
		if c.Routing.S3.Bucket == "" || c.Routing.S3.Region == "" {
			return fmt.Errorf("routing.s3.bucket and routing.s3.region are required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown routing backend %q\nHint: Use one of: local, s3", c.Routing.Backend)
	}

	switch c.Alert.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("alert.color must be auto, always or never, got %q", c.Alert.Color)
	}

	if c.Generate.Records < 0 {
		return fmt.Errorf("generate.records must not be negative")
	}

	if _, err := c.DecodeChecks(); err != nil {
		return fmt.Errorf("invalid checks: %w", err)
	}
	return nil
}

// DecodeChecks decodes the configured checks through the check registry.
func (c *Config) DecodeChecks() ([]validate.Check, error) {
	return validate.DecodeAll(c.Checks)
}

// ParseLogLevel maps a configured level name onto a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: use debug, info, warn or error", s)
	}
	return level, nil
}
