package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdq/internal/generate"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	Records int
	Seed    int64
	Out     string
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic transactions batch",
		Long: `Write a synthetic transactions CSV with injected data-quality issues:
missing user ids, repeated transaction ids, negative amounts and unknown
statuses. Useful for demos and for exercising the checks.`,
		Example: `  # Write the configured source file
  leapdq generate

  # Write 5000 records reproducibly to a custom path
  leapdq generate --records 5000 --seed 42 --out /tmp/batch.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Records, "records", 0, "Number of base records (default from generate.records)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Random seed; 0 picks one (default from generate.seed)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output path (default: source.path)")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	gen := generate.Options{Records: cfg.Generate.Records, Seed: cfg.Generate.Seed}
	if cmd.Flags().Changed("records") {
		gen.Records = opts.Records
	}
	if cmd.Flags().Changed("seed") {
		gen.Seed = opts.Seed
	}
	out := opts.Out
	if out == "" {
		out = cfg.Source.Path
	}
	if out == "" {
		return fmt.Errorf("no output path: set --out or source.path")
	}

	n, err := generate.WriteFile(out, gen)
	if err != nil {
		return fmt.Errorf("failed to generate batch: %w", err)
	}

	cmdCtx.Logger.Info("generated synthetic batch", "path", out, "records", n)
	cmdCtx.Renderer.Success(fmt.Sprintf("Generated %d records at %s (including injected errors)", n, out))
	return nil
}
