package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapdq/internal/cli/config"
	"github.com/leapstack-labs/leapdq/internal/generate"
)

// projectConfig is the leapdq.yaml written by init.
type projectConfig struct {
	DatasetName string           `yaml:"dataset_name"`
	LogLevel    string           `yaml:"log_level"`
	Source      map[string]any   `yaml:"source"`
	Routing     map[string]any   `yaml:"routing"`
	Alert       map[string]any   `yaml:"alert"`
	Generate    map[string]any   `yaml:"generate"`
	Watch       map[string]any   `yaml:"watch"`
	Checks      []map[string]any `yaml:"checks"`
}

func defaultProjectConfig() projectConfig {
	return projectConfig{
		DatasetName: config.DefaultDatasetName,
		LogLevel:    config.DefaultLogLevel,
		Source: map[string]any{
			"type": "csv",
			"path": config.DefaultSourcePath,
		},
		Routing: map[string]any{
			"backend":        config.DefaultBackend,
			"clean_dir":      config.DefaultCleanDir,
			"quarantine_dir": config.DefaultQuarantineDir,
		},
		Alert: map[string]any{
			"log_file": config.DefaultAlertLog,
			"color":    config.DefaultColor,
		},
		Generate: map[string]any{
			"if_missing": true,
			"records":    config.DefaultRecords,
		},
		Watch: map[string]any{
			"dir":      config.DefaultWatchDir,
			"pattern":  config.DefaultWatchPattern,
			"debounce": config.DefaultDebounce.String(),
		},
		Checks: config.DefaultChecks(),
	}
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new leapdq project",
		Long: `Initialize a new leapdq project with a default configuration.

This creates:
  - leapdq.yaml with the transactions rule set
  - data/raw/ landing directory
  - data/processed/ and data/quarantine/ routing directories

Use --example to also write a synthetic transactions batch to data/raw/.`,
		Example: `  # Initialize in current directory
  leapdq init

  # Initialize with a sample batch
  leapdq init --example

  # Initialize in a new directory
  leapdq init my-project

  # Force overwrite existing config
  leapdq init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(NewCommandContext(cmd), dir, force, example)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Write a synthetic transactions batch")

	return cmd
}

func runInit(cmdCtx *CommandContext, dir string, force, example bool) error {
	r := cmdCtx.Renderer

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, "leapdq.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("leapdq.yaml already exists. Use --force to overwrite")
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(defaultProjectConfig()); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	r.StatusLine("leapdq.yaml", "success", "")

	for _, d := range []string{config.DefaultWatchDir, config.DefaultCleanDir, config.DefaultQuarantineDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
		r.StatusLine(d+"/", "success", "")
	}

	if example {
		n, err := generate.WriteFile(filepath.Join(dir, config.DefaultSourcePath), generate.Options{Records: config.DefaultRecords})
		if err != nil {
			return fmt.Errorf("failed to write example batch: %w", err)
		}
		r.StatusLine(config.DefaultSourcePath, "success", fmt.Sprintf("%d records", n))
	}

	r.Println("")
	r.Success("leapdq project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  leapdq checks     List the available check kinds")
	r.Println("  leapdq validate   Dry-run the checks against data/raw/transactions.csv")
	r.Println("  leapdq run        Validate, route and alert")
	return nil
}
