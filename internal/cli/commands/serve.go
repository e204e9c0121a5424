package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapdq/internal/metrics"
	"github.com/leapstack-labs/leapdq/internal/pipeline"
	"github.com/leapstack-labs/leapdq/internal/server"
)

// daemon runs a long-lived pipeline driver next to the optional metrics server
// until interrupted.
type daemon struct {
	cmdCtx      *CommandContext
	metricsAddr string
}

func newDaemon(cmd *cobra.Command, metricsAddr string) *daemon {
	cmdCtx := NewCommandContext(cmd)
	if metricsAddr == "" {
		metricsAddr = cmdCtx.Cfg.Watch.MetricsAddr
	}
	return &daemon{cmdCtx: cmdCtx, metricsAddr: metricsAddr}
}

// run builds the pipeline and hands it to drive. drive must return when ctx
// is cancelled.
func (d *daemon) run(cmd *cobra.Command, drive func(ctx context.Context, p *pipeline.Pipeline) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var collector *metrics.Collector
	if d.metricsAddr != "" {
		collector = metrics.NewCollector(nil)
	}

	p, err := buildPipeline(ctx, d.cmdCtx.Cfg, d.cmdCtx.Logger, PipelineOptions{
		AlertOut: alertWriter(cmd, d.cmdCtx.Renderer, false),
		Metrics:  collector,
	})
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	if collector != nil {
		srv := server.New(server.Config{
			Addr:    d.metricsAddr,
			Results: p,
			Metrics: collector,
			Logger:  d.cmdCtx.Logger,
		})
		eg.Go(func() error {
			if err := srv.Serve(egctx); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	eg.Go(func() error {
		return drive(egctx, p)
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	d.cmdCtx.Logger.Debug("stopped")
	return nil
}
