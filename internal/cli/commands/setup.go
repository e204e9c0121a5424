package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdq/internal/alert"
	"github.com/leapstack-labs/leapdq/internal/cli/config"
	"github.com/leapstack-labs/leapdq/internal/cli/output"
	"github.com/leapstack-labs/leapdq/internal/generate"
	"github.com/leapstack-labs/leapdq/internal/metrics"
	"github.com/leapstack-labs/leapdq/internal/pipeline"
	"github.com/leapstack-labs/leapdq/internal/router"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or built-in defaults when
// none has been loaded (commands constructed directly in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// PipelineOptions tunes how a pipeline is assembled for a command.
type PipelineOptions struct {
	// AlertOut receives the console alert. Nil disables the console sink.
	AlertOut io.Writer
	// Metrics records runs when set.
	Metrics *metrics.Collector
}

// buildPipeline wires a pipeline from configuration: decoded checks, the
// routing backend, alert sinks and optional fixture generation.
func buildPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts PipelineOptions) (*pipeline.Pipeline, error) {
	checks, err := cfg.DecodeChecks()
	if err != nil {
		return nil, fmt.Errorf("invalid checks: %w", err)
	}

	rt, err := buildRouter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var gen *generate.Options
	if cfg.Generate.IfMissing {
		gen = &generate.Options{Records: cfg.Generate.Records, Seed: cfg.Generate.Seed}
	}

	return pipeline.New(pipeline.Config{
		DatasetName: cfg.DatasetName,
		Source:      cfg.Source,
		Checks:      checks,
		Router:      rt,
		Sink:        buildSink(cfg, opts.AlertOut),
		Metrics:     opts.Metrics,
		Generate:    gen,
		Logger:      logger,
	}), nil
}

func buildRouter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (router.Router, error) {
	switch cfg.Routing.Backend {
	case "s3":
		s3cfg := cfg.Routing.S3
		rt, err := router.NewS3(ctx, router.S3Config{
			Bucket:         s3cfg.Bucket,
			Region:         s3cfg.Region,
			Endpoint:       s3cfg.Endpoint,
			AccessKeyID:    s3cfg.AccessKeyID,
			SecretKey:      s3cfg.SecretKey,
			ForcePathStyle: s3cfg.ForcePathStyle,
			Prefix:         s3cfg.Prefix,
		}, router.WithS3RouterOptions(router.WithLogger(logger)))
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 router: %w", err)
		}
		return rt, nil
	default:
		return router.NewLocal(cfg.Routing.CleanDir, cfg.Routing.QuarantineDir, router.WithLogger(logger)), nil
	}
}

func buildSink(cfg *config.Config, consoleOut io.Writer) alert.Sink {
	var sinks alert.Multi
	if consoleOut != nil {
		sinks = append(sinks, alert.NewConsole(consoleOut, cfg.Alert.Color))
	}
	if cfg.Alert.LogFile != "" {
		sinks = append(sinks, alert.NewFile(cfg.Alert.LogFile))
	}
	if cfg.Alert.WebhookURL != "" {
		sinks = append(sinks, alert.NewWebhook(cfg.Alert.WebhookURL, nil))
	}
	return sinks
}

// alertWriter picks where the console alert goes: machine-readable modes keep
// stdout clean by sending it to stderr.
func alertWriter(cmd *cobra.Command, r *output.Renderer, jsonEvents bool) io.Writer {
	if jsonEvents {
		return cmd.ErrOrStderr()
	}
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
