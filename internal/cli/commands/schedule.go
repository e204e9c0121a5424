package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdq/internal/pipeline"
	"github.com/leapstack-labs/leapdq/internal/schedule"
)

// ScheduleOptions holds options for the schedule command.
type ScheduleOptions struct {
	Cron        string
	MetricsAddr string
	Now         bool
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand() *cobra.Command {
	opts := &ScheduleOptions{}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Validate the configured source on a cron schedule",
		Long: `Run the pipeline against the configured source on a standard five-field cron
schedule until interrupted. A tick that arrives while a run is still in
progress is skipped.

With --metrics-addr a server exposes /metrics, /healthz and /report.`,
		Example: `  # Every five minutes
  leapdq schedule --cron "*/5 * * * *"

  # Hourly, running once right away, with metrics
  leapdq schedule --cron @hourly --now --metrics-addr :9108`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchedule(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Cron, "cron", "", "Cron expression (default from watch.schedule)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve metrics on this address (e.g. :9108)")
	cmd.Flags().BoolVar(&opts.Now, "now", false, "Run once immediately before the first tick")

	return cmd
}

func runSchedule(cmd *cobra.Command, opts *ScheduleOptions) error {
	d := newDaemon(cmd, opts.MetricsAddr)
	spec := firstNonEmpty(opts.Cron, d.cmdCtx.Cfg.Watch.Schedule)

	return d.run(cmd, func(ctx context.Context, p *pipeline.Pipeline) error {
		job := func(ctx context.Context) error {
			res, err := p.Run(ctx)
			if res != nil {
				d.cmdCtx.Renderer.StatusLine(res.Source, statusOf(res), fmt.Sprintf("%s -> %s", res.Outcome, res.Destination))
			}
			return err
		}

		s, err := schedule.New(spec, job, d.cmdCtx.Logger)
		if err != nil {
			return err
		}
		if opts.Now {
			if err := job(ctx); err != nil {
				d.cmdCtx.Logger.Error("initial run failed", "error", err)
			}
		}
		if err := s.Start(ctx); err != nil {
			return err
		}
		if next := s.NextRun(); next != nil {
			d.cmdCtx.Renderer.Muted(fmt.Sprintf("Next run at %s (Ctrl+C to stop)", next.Format("2006-01-02 15:04:05")))
		}
		<-ctx.Done()
		s.Stop()
		return nil
	})
}
