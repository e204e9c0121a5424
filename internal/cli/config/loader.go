package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// EnvPrefix prefixes every environment variable read into the config.
// A double underscore separates nested keys: LEAPDQ_SOURCE__PATH -> source.path.
const EnvPrefix = "LEAPDQ_"

// configFileNames are searched in order in each candidate directory.
var configFileNames = []string{"leapdq.yaml", "leapdq.yml"}

// flagKeys maps flag names onto config keys where they differ from the
// kebab-to-snake default.
var flagKeys = map[string]string{
	"source-type": "source.type",
	"source-path": "source.path",
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// configIn returns the config file inside dir, if any.
func configIn(dir string) string {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a leapdq config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if found := configIn(dir); found != "" {
			return found
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

func defaults() map[string]any {
	return map[string]any{
		"dataset_name":           DefaultDatasetName,
		"log_level":              DefaultLogLevel,
		"verbose":                false,
		"output":                 DefaultOutput,
		"source.type":            DefaultSourceType,
		"source.path":            DefaultSourcePath,
		"routing.backend":        DefaultBackend,
		"routing.clean_dir":      DefaultCleanDir,
		"routing.quarantine_dir": DefaultQuarantineDir,
		"alert.log_file":         DefaultAlertLog,
		"alert.color":            DefaultColor,
		"generate.if_missing":    true,
		"generate.records":       DefaultRecords,
		"generate.seed":          0,
		"watch.dir":              DefaultWatchDir,
		"watch.pattern":          DefaultWatchPattern,
		"watch.debounce":         DefaultDebounce.String(),
		"checks":                 DefaultChecks(),
	}
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > .env file > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file. An explicit file anchors the project root.
	configFileUsed = cfgFile
	if configFileUsed == "" {
		configFileUsed = findConfigUpward(cwd)
	}
	projectRoot := cwd
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 3. Merge .env from the project root into the process environment.
	// Variables that are already set win over the file.
	if dotenv := filepath.Join(projectRoot, ".env"); fileExists(dotenv) {
		if err := godotenv.Load(dotenv); err != nil {
			return nil, fmt.Errorf("error reading %s: %w", dotenv, err)
		}
	}

	// 4. Load environment variables (LEAPDQ_ prefix)
	// Transform: LEAPDQ_SOURCE__PATH -> source.path
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Load flags (highest priority - overrides env vars and config file)
	var flagSourcePath string
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				// Transform kebab-case to snake_case for config keys
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
		if flags.Changed("source-path") {
			if v, _ := flags.GetString("source-path"); v != "" {
				flagSourcePath, _ = filepath.Abs(v)
			}
		}
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}

	// 7. Resolve relative paths against the project root. A path given as a
	// flag is relative to the working directory instead.
	cfg.ProjectRoot = projectRoot
	if flagSourcePath != "" {
		cfg.Source.Path = flagSourcePath
	} else if !strings.Contains(cfg.Source.Path, "://") {
		cfg.Source.Path = resolvePathRelativeTo(cfg.Source.Path, projectRoot)
	}
	cfg.Routing.CleanDir = resolvePathRelativeTo(cfg.Routing.CleanDir, projectRoot)
	cfg.Routing.QuarantineDir = resolvePathRelativeTo(cfg.Routing.QuarantineDir, projectRoot)
	cfg.Alert.LogFile = resolvePathRelativeTo(cfg.Alert.LogFile, projectRoot)
	cfg.Watch.Dir = resolvePathRelativeTo(cfg.Watch.Dir, projectRoot)

	expandSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Store config for access by commands
	currentConfig = &cfg
	return &cfg, nil
}

// envKey maps LEAPDQ_ROUTING__CLEAN_DIR onto routing.clean_dir.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandSecrets expands environment variables in credential fields.
func expandSecrets(cfg *Config) {
	cfg.Source.Host = expandEnvVars(cfg.Source.Host)
	cfg.Source.Database = expandEnvVars(cfg.Source.Database)
	cfg.Source.User = expandEnvVars(cfg.Source.User)
	cfg.Source.Password = expandEnvVars(cfg.Source.Password)
	cfg.Routing.S3.AccessKeyID = expandEnvVars(cfg.Routing.S3.AccessKeyID)
	cfg.Routing.S3.SecretKey = expandEnvVars(cfg.Routing.S3.SecretKey)
	cfg.Alert.WebhookURL = expandEnvVars(cfg.Alert.WebhookURL)
}

// Default returns the built-in configuration without reading files,
// environment variables or flags.
func Default() *Config {
	kd := koanf.New(".")
	_ = kd.Load(confmap.Provider(defaults(), "."), nil)
	var cfg Config
	_ = kd.Unmarshal("", &cfg)
	return &cfg
}
