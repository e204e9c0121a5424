package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdq/internal/pipeline"
	"github.com/leapstack-labs/leapdq/internal/watch"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Dir         string
	Pattern     string
	Debounce    time.Duration
	MetricsAddr string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Validate batches as they land in a directory",
		Long: `Watch a landing directory and run the pipeline on every file matching the
pattern once writes to it have settled. Runs are serialized.

With --metrics-addr a server exposes /metrics, /healthz and /report.`,
		Example: `  # Watch the configured landing directory
  leapdq watch

  # Watch another directory and expose metrics
  leapdq watch --dir /srv/landing --pattern "*.csv" --metrics-addr :9108`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "Directory to watch (default from watch.dir)")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", "", "File name glob (default from watch.pattern)")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "Quiet period before a file is processed (default from watch.debounce)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve metrics on this address (e.g. :9108)")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *WatchOptions) error {
	d := newDaemon(cmd, opts.MetricsAddr)
	cfg := d.cmdCtx.Cfg

	w := &watch.Watcher{
		Dir:      firstNonEmpty(opts.Dir, cfg.Watch.Dir),
		Pattern:  firstNonEmpty(opts.Pattern, cfg.Watch.Pattern),
		Debounce: cfg.Watch.Debounce,
		Logger:   d.cmdCtx.Logger,
	}
	if opts.Debounce > 0 {
		w.Debounce = opts.Debounce
	}
	if w.Dir == "" {
		return fmt.Errorf("no directory to watch: set --dir or watch.dir")
	}

	return d.run(cmd, func(ctx context.Context, p *pipeline.Pipeline) error {
		w.Handle = func(ctx context.Context, path string) error {
			res, err := p.RunFile(ctx, path)
			if res != nil {
				d.cmdCtx.Renderer.StatusLine(path, statusOf(res), fmt.Sprintf("%s -> %s", res.Outcome, res.Destination))
			}
			return err
		}
		d.cmdCtx.Renderer.Muted(fmt.Sprintf("Watching %s for %s (Ctrl+C to stop)", w.Dir, w.Pattern))
		return w.Run(ctx)
	})
}

func statusOf(res *pipeline.Result) string {
	if res.Report.HasFailures() {
		return "failed"
	}
	return "success"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
