package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdq/internal/pipeline"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a batch without routing or alerting",
		Long: `Load the source and evaluate every configured check, then print the report.

Nothing is moved and no alert is sent. The command fails when any check
fails, which makes it suitable as a pre-commit or CI gate.`,
		Example: `  # Dry-run the configured batch
  leapdq validate

  # Validate another file and print the report as JSON
  leapdq validate incoming.csv -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args)
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	ctx := cmd.Context()

	p, err := buildPipeline(ctx, cmdCtx.Cfg, cmdCtx.Logger, PipelineOptions{})
	if err != nil {
		return err
	}

	var res *pipeline.Result
	if len(args) > 0 {
		res, err = p.ValidateFile(ctx, args[0])
	} else {
		res, err = p.Validate(ctx)
	}
	if err != nil {
		return err
	}

	if err := renderResult(cmdCtx.Renderer, res); err != nil {
		return err
	}
	if res.Report.HasFailures() {
		return ErrChecksFailed
	}
	return nil
}
