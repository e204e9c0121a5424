package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdq/internal/cli/output"
	"github.com/leapstack-labs/leapdq/internal/pipeline"
)

// ErrChecksFailed is returned when a strict run or a validate finds failures.
var ErrChecksFailed = errors.New("data quality checks failed")

// RunOptions holds options for the run command.
type RunOptions struct {
	JSONOutput bool
	Strict     bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Validate a batch, route it and send an alert",
		Long: `Load the configured source, evaluate every configured check, move the
batch file to the clean or quarantine area and send an alert.

A file argument overrides source.path. Failed checks are reported but do not
fail the command unless --strict is set.`,
		Example: `  # Validate the configured batch
  leapdq run

  # Validate a specific file
  leapdq run data/raw/transactions_2024-06-01.csv

  # Fail the command when any check fails (CI gates)
  leapdq run --strict

  # Emit JSON lines for progress tracking
  leapdq run --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "Output as JSON lines for progress tracking")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit non-zero when any check fails")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *RunOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	ctx := cmd.Context()

	p, err := buildPipeline(ctx, cmdCtx.Cfg, cmdCtx.Logger, PipelineOptions{
		AlertOut: alertWriter(cmd, r, opts.JSONOutput),
	})
	if err != nil {
		return err
	}

	source := cmdCtx.Cfg.Source.Path
	if len(args) > 0 {
		source = args[0]
	}

	runID := uuid.New()
	ctx = pipeline.WithRunID(ctx, runID)
	if opts.JSONOutput {
		emitRunEvent(cmd, output.RunEvent{
			Event:   "run_start",
			RunID:   runID.String(),
			Dataset: cmdCtx.Cfg.DatasetName,
			Source:  source,
		})
	}

	var res *pipeline.Result
	if len(args) > 0 {
		res, err = p.RunFile(ctx, args[0])
	} else {
		res, err = p.Run(ctx)
	}

	if opts.JSONOutput {
		return finishJSON(cmd, runID.String(), res, err, opts.Strict)
	}
	if res == nil {
		return err
	}

	if rerr := renderResult(r, res); rerr != nil {
		return rerr
	}
	if err != nil {
		return err
	}
	if opts.Strict && res.Report.HasFailures() {
		return ErrChecksFailed
	}
	return nil
}

func finishJSON(cmd *cobra.Command, eventID string, res *pipeline.Result, runErr error, strict bool) error {
	if res == nil {
		emitRunEvent(cmd, output.RunEvent{
			Event:  "run_complete",
			RunID:  eventID,
			Status: "error",
			Error:  runErr.Error(),
		})
		return runErr
	}

	for _, f := range res.Report.Failures {
		emitRunEvent(cmd, output.RunEvent{
			Event:   "check_failed",
			RunID:   res.RunID.String(),
			Check:   f.Check,
			Message: f.Message,
		})
	}

	status := "passed"
	if res.Report.HasFailures() {
		status = "failed"
	}
	event := output.RunEvent{
		Event:        "run_complete",
		RunID:        res.RunID.String(),
		Dataset:      res.Report.DatasetName,
		Source:       res.Source,
		Status:       status,
		Outcome:      string(res.Outcome),
		Level:        string(res.Level),
		Destination:  res.Destination,
		TotalRecords: res.Report.TotalRecords,
		Passed:       res.Report.PassedChecks,
		Failed:       res.Report.FailedChecks,
		TotalMS:      res.Duration.Milliseconds(),
	}
	if runErr != nil {
		event.Error = runErr.Error()
	}
	emitRunEvent(cmd, event)

	if runErr != nil {
		return runErr
	}
	if strict && res.Report.HasFailures() {
		return ErrChecksFailed
	}
	return nil
}

// emitRunEvent outputs a run event as a JSON line.
func emitRunEvent(cmd *cobra.Command, event output.RunEvent) {
	event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	data, _ := json.Marshal(event)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
}
