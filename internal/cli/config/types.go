// Package config provides configuration management for the leapdq CLI.
//
// Configuration is layered with koanf: built-in defaults, then leapdq.yaml,
// then a .env file, then LEAPDQ_ environment variables, then explicitly set
// command-line flags.
package config

import (
	"time"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// Config holds all CLI configuration options.
type Config struct {
	DatasetName  string            `koanf:"dataset_name"`
	LogLevel     string            `koanf:"log_level"`
	Verbose      bool              `koanf:"verbose"`
	OutputFormat string            `koanf:"output"`
	Source       core.SourceConfig `koanf:"source"`
	Routing      RoutingConfig     `koanf:"routing"`
	Alert        AlertConfig       `koanf:"alert"`
	Generate     GenerateConfig    `koanf:"generate"`
	Watch        WatchConfig       `koanf:"watch"`

	// Checks holds raw check entries; each is decoded through the check registry.
	Checks []map[string]any `koanf:"checks"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// RoutingConfig selects where validated files are moved.
type RoutingConfig struct {
	Backend       string   `koanf:"backend"`
	CleanDir      string   `koanf:"clean_dir"`
	QuarantineDir string   `koanf:"quarantine_dir"`
	S3            S3Config `koanf:"s3"`
}

// S3Config holds the object storage destination for the s3 backend.
type S3Config struct {
	Bucket         string `koanf:"bucket"`
	Region         string `koanf:"region"`
	Endpoint       string `koanf:"endpoint"`
	AccessKeyID    string `koanf:"access_key_id"`
	SecretKey      string `koanf:"secret_key"`
	ForcePathStyle bool   `koanf:"force_path_style"`
	Prefix         string `koanf:"prefix"`
}

// AlertConfig configures alert sinks.
type AlertConfig struct {
	LogFile    string `koanf:"log_file"`
	WebhookURL string `koanf:"webhook_url"`
	Color      string `koanf:"color"`
}

// GenerateConfig controls synthetic fixture generation.
type GenerateConfig struct {
	IfMissing bool  `koanf:"if_missing"`
	Records   int   `koanf:"records"`
	Seed      int64 `koanf:"seed"`
}

// WatchConfig configures the watch and schedule commands.
type WatchConfig struct {
	Dir         string        `koanf:"dir"`
	Pattern     string        `koanf:"pattern"`
	Debounce    time.Duration `koanf:"debounce"`
	Schedule    string        `koanf:"schedule"`
	MetricsAddr string        `koanf:"metrics_addr"`
}

// Default configuration values.
const (
	DefaultDatasetName   = "Transactions"
	DefaultLogLevel      = "info"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultSourceType    = "duckdb"
	DefaultSourcePath    = "data/raw/transactions.csv"
	DefaultBackend       = "local"
	DefaultCleanDir      = "data/processed"
	DefaultQuarantineDir = "data/quarantine"
	DefaultAlertLog      = "dq_alerts.log"
	DefaultColor         = "auto"
	DefaultRecords       = 1000
	DefaultWatchDir      = "data/raw"
	DefaultWatchPattern  = "*.csv"
	DefaultDebounce      = 500 * time.Millisecond
)
