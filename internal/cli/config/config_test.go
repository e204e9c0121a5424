package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/leapdq/pkg/adapters/csv"
	_ "github.com/leapstack-labs/leapdq/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapdq/pkg/adapters/postgres"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "leapdq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("source-type", "", "")
	flags.String("source-path", "", "")
	flags.String("dataset-name", "", "")
	flags.String("log-level", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.StringP("output", "o", "", "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDatasetName, cfg.DatasetName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "duckdb", cfg.Source.Type)
	assert.Equal(t, filepath.Join(dir, DefaultSourcePath), cfg.Source.Path)
	assert.Equal(t, "local", cfg.Routing.Backend)
	assert.Equal(t, filepath.Join(dir, DefaultCleanDir), cfg.Routing.CleanDir)
	assert.Equal(t, filepath.Join(dir, DefaultQuarantineDir), cfg.Routing.QuarantineDir)
	assert.Equal(t, filepath.Join(dir, DefaultAlertLog), cfg.Alert.LogFile)
	assert.True(t, cfg.Generate.IfMissing)
	assert.Equal(t, DefaultRecords, cfg.Generate.Records)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	assert.Empty(t, GetConfigFileUsed())

	checks, err := cfg.DecodeChecks()
	require.NoError(t, err)
	require.Len(t, checks, 5)
	assert.Equal(t, "schema", checks[0].Kind())
	assert.Equal(t, "categorical", checks[4].Kind())
}

func TestLoadConfig_FileSearchedUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
dataset_name: Orders
source:
  type: csv
  path: in/orders.csv
routing:
  clean_dir: out/ok
watch:
  debounce: 2s
checks:
  - kind: nulls
    columns: [order_id]
    threshold: 0.1
`)
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	t.Chdir(sub)
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, "Orders", cfg.DatasetName)
	assert.Equal(t, "csv", cfg.Source.Type)
	assert.Equal(t, filepath.Join(root, "in", "orders.csv"), cfg.Source.Path)
	assert.Equal(t, filepath.Join(root, "out", "ok"), cfg.Routing.CleanDir)
	assert.Equal(t, filepath.Join(root, DefaultQuarantineDir), cfg.Routing.QuarantineDir, "unset keys keep defaults")
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, filepath.Join(root, "leapdq.yaml"), GetConfigFileUsed())

	checks, err := cfg.DecodeChecks()
	require.NoError(t, err)
	require.Len(t, checks, 1, "file checks replace the defaults")
	assert.Equal(t, "nulls", checks[0].Kind())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
dataset_name: FromFile
log_level: warn
source:
  type: csv
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEAPDQ_ALERT__WEBHOOK_URL=https://hooks.example.com/dq\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("LEAPDQ_ALERT__WEBHOOK_URL") })
	t.Setenv("LEAPDQ_DATASET_NAME", "FromEnv")
	t.Setenv("LEAPDQ_GENERATE__RECORDS", "50")
	t.Chdir(dir)
	ResetConfig()

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--source-path", "batch.csv", "-v"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "FromEnv", cfg.DatasetName, "env overrides file")
	assert.Equal(t, 50, cfg.Generate.Records, "env values are weakly typed")
	assert.Equal(t, "https://hooks.example.com/dq", cfg.Alert.WebhookURL, ".env is merged into the environment")
	assert.Equal(t, filepath.Join(dir, "batch.csv"), cfg.Source.Path, "flag paths are relative to the working directory")
	assert.Equal(t, "csv", cfg.Source.Type)
	assert.Equal(t, "debug", cfg.LogLevel, "verbose implies debug")
}

func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEAPDQ_SOURCE__TYPE", "postgres")
	ResetConfig()

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--source-type", "csv", "--dataset-name", "Flagged"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Source.Type)
	assert.Equal(t, "Flagged", cfg.DatasetName)
}

func TestLoadConfig_ExpandsSecrets(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
source:
  type: postgres
  host: db.internal
  database: dq
  user: ${DQ_TEST_USER}
  password: ${DQ_TEST_PASSWORD}
  table: transactions
`)
	t.Setenv("DQ_TEST_USER", "auditor")
	t.Setenv("DQ_TEST_PASSWORD", "s3cret")
	t.Chdir(dir)
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "auditor", cfg.Source.User)
	assert.Equal(t, "s3cret", cfg.Source.Password)
}

func TestLoadConfig_ExplicitFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	ResetConfig()

	_, err := LoadConfig("does-not-exist.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatasetName: "Transactions",
			LogLevel:    "info",
			Source:      sourceOf("csv"),
			Routing:     RoutingConfig{Backend: "local", CleanDir: "c", QuarantineDir: "q"},
			Alert:       AlertConfig{Color: "auto"},
			Checks:      DefaultChecks(),
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		errSubstr string
	}{
		{name: "valid", mutate: func(_ *Config) {}},
		{name: "source type is case-insensitive", mutate: func(c *Config) { c.Source.Type = "DuckDB" }},
		{name: "missing dataset name", mutate: func(c *Config) { c.DatasetName = "" }, errSubstr: "dataset_name is required"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, errSubstr: "invalid log_level"},
		{name: "missing source type", mutate: func(c *Config) { c.Source.Type = "" }, errSubstr: "source.type is required"},
		{name: "unknown source type", mutate: func(c *Config) { c.Source.Type = "mysql" }, errSubstr: "unknown source type"},
		{name: "unknown backend", mutate: func(c *Config) { c.Routing.Backend = "ftp" }, errSubstr: "unknown routing backend"},
		{
			name:      "s3 without bucket",
			mutate: func(c *Config) {
				c.Routing.Backend = "s3"
				c.Routing.S3.Region = "eu-west-1"
			},
			errSubstr: "routing.s3.bucket",
		},
		{
			name: "s3 complete",
			mutate: func(c *Config) {
				c.Routing.Backend = "s3"
				c.Routing.S3 = S3Config{Bucket: "dq", Region: "eu-west-1"}
			},
		},
		{name: "bad output format", mutate: func(c *Config) { c.OutputFormat = "xml" }, errSubstr: "unknown output format"},
		{name: "bad color", mutate: func(c *Config) { c.Alert.Color = "rainbow" }, errSubstr: "alert.color"},
		{name: "negative records", mutate: func(c *Config) { c.Generate.Records = -1 }, errSubstr: "generate.records"},
		{
			name:      "invalid check",
			mutate:    func(c *Config) { c.Checks = append(c.Checks, map[string]any{"kind": "regex"}) },
			errSubstr: "checks[5]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultDatasetName, cfg.DatasetName)
	assert.Equal(t, DefaultSourceType, cfg.Source.Type)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	assert.True(t, cfg.Generate.IfMissing)
	assert.Len(t, cfg.Checks, len(DefaultChecks()))
	require.NoError(t, cfg.Validate())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "source.path", envKey("LEAPDQ_SOURCE__PATH"))
	assert.Equal(t, "routing.s3.bucket", envKey("LEAPDQ_ROUTING__S3__BUCKET"))
	assert.Equal(t, "dataset_name", envKey("LEAPDQ_DATASET_NAME"))
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DQ_TEST_VAR", "value")
	assert.Equal(t, "x-value-y", expandEnvVars("x-${DQ_TEST_VAR}-y"))
	assert.Equal(t, "${DQ_TEST_UNSET_VAR}", expandEnvVars("${DQ_TEST_UNSET_VAR}"))
}

func sourceOf(typ string) core.SourceConfig {
	return core.SourceConfig{Type: typ}
}
