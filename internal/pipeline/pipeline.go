// Package pipeline orchestrates one validation run: ingest a batch through a
// source adapter, evaluate the configured checks, route the batch file by
// outcome, send an alert and record metrics.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapdq/internal/alert"
	"github.com/leapstack-labs/leapdq/internal/generate"
	"github.com/leapstack-labs/leapdq/internal/metrics"
	"github.com/leapstack-labs/leapdq/internal/router"
	"github.com/leapstack-labs/leapdq/pkg/adapter"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/validate"
)

// ErrIngest marks runs that failed before any check was evaluated.
var ErrIngest = errors.New("ingest failed")

// Config wires a pipeline. Router, Sink, Metrics and Generate are optional.
type Config struct {
	DatasetName string
	Source      core.SourceConfig
	Checks      []validate.Check

	Router  router.Router
	Sink    alert.Sink
	Metrics *metrics.Collector

	// Generate, when set, writes a synthetic batch to a missing file source.
	Generate *generate.Options

	Logger *slog.Logger
	Now    func() time.Time
}

type runIDKey struct{}

// WithRunID makes runs started with the returned context use id instead of a
// fresh one, so callers can correlate their own events.
func WithRunID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

func runIDFrom(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(runIDKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.New()
}

// Result describes a finished run.
type Result struct {
	RunID       uuid.UUID      `json:"run_id" yaml:"run_id"`
	Source      string         `json:"source" yaml:"source"`
	Report      core.Report    `json:"report" yaml:"report"`
	Level       alert.Level    `json:"level" yaml:"level"`
	Outcome     router.Outcome `json:"outcome" yaml:"outcome"`
	Destination string         `json:"destination,omitempty" yaml:"destination,omitempty"`
	StartedAt   time.Time      `json:"started_at" yaml:"started_at"`
	Duration    time.Duration  `json:"duration_ns" yaml:"duration_ns"`
}

// Pipeline runs validations. Runs are serialized.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	runMu sync.Mutex

	lastMu sync.RWMutex
	last   *Result
}

// New creates a pipeline.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{cfg: cfg, logger: logger, now: now}
}

// Run validates the configured source.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	return p.run(ctx, p.cfg.Source, true)
}

// RunFile validates path using the configured source type and options.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Result, error) {
	src := p.cfg.Source
	src.Path = path
	return p.run(ctx, src, true)
}

// Validate ingests and validates the configured source without routing,
// alerting or recording metrics.
func (p *Pipeline) Validate(ctx context.Context) (*Result, error) {
	return p.run(ctx, p.cfg.Source, false)
}

// ValidateFile is Validate for an explicit path.
func (p *Pipeline) ValidateFile(ctx context.Context, path string) (*Result, error) {
	src := p.cfg.Source
	src.Path = path
	return p.run(ctx, src, false)
}

// LastResult returns the most recent completed run, or nil.
func (p *Pipeline) LastResult() *Result {
	p.lastMu.RLock()
	defer p.lastMu.RUnlock()
	if p.last == nil {
		return nil
	}
	res := *p.last
	res.Report = p.last.Report.Clone()
	return &res
}

func (p *Pipeline) run(ctx context.Context, src core.SourceConfig, act bool) (*Result, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := p.now()
	res := &Result{
		RunID:     runIDFrom(ctx),
		Source:    src.Path,
		StartedAt: start,
	}
	logger := p.logger.With(slog.String("run_id", res.RunID.String()))
	logger.Info("run started",
		slog.String("dataset", p.cfg.DatasetName),
		slog.String("source_type", src.Type),
		slog.String("source", src.Path))

	ds, fileBacked, err := p.ingest(ctx, src, logger)
	if err != nil {
		if act && p.cfg.Metrics != nil {
			p.cfg.Metrics.RecordIngestError()
		}
		logger.Error("ingest failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrIngest, err)
	}

	v := validate.New(ds, p.cfg.DatasetName, validate.WithLogger(logger))
	validate.Apply(v, p.cfg.Checks)
	res.Report = v.Report()
	res.Level = alert.LevelFor(res.Report)
	res.Outcome = router.OutcomeFor(res.Report)

	logger.Info("validation finished",
		slog.Int("records", res.Report.TotalRecords),
		slog.Int("passed", res.Report.PassedChecks),
		slog.Int("failed", res.Report.FailedChecks))

	if !act {
		res.Duration = p.now().Sub(start)
		return res, nil
	}

	var routeErr error
	if p.cfg.Router != nil && fileBacked {
		dest, err := p.cfg.Router.Route(ctx, src.Path, res.Outcome)
		if err != nil {
			routeErr = fmt.Errorf("route batch: %w", err)
			logger.Error("routing failed", slog.String("error", err.Error()))
		} else {
			res.Destination = dest
		}
	}

	if p.cfg.Sink != nil {
		if err := p.cfg.Sink.Send(ctx, alert.New(res.Report, p.now())); err != nil {
			logger.Error("alert delivery failed", slog.String("error", err.Error()))
		}
	}

	end := p.now()
	res.Duration = end.Sub(start)
	if p.cfg.Metrics != nil {
		p.cfg.Metrics.RecordRun(res.Report, string(res.Outcome), res.Duration, end)
	}

	p.lastMu.Lock()
	p.last = res
	p.lastMu.Unlock()

	logger.Info("run complete",
		slog.String("outcome", string(res.Outcome)),
		slog.String("level", string(res.Level)),
		slog.Duration("duration", res.Duration))
	return res, routeErr
}

// ingest loads the batch and reports whether it came from a local file.
func (p *Pipeline) ingest(ctx context.Context, src core.SourceConfig, logger *slog.Logger) (*core.Dataset, bool, error) {
	a, err := adapter.NewAdapter(src, logger)
	if err != nil {
		return nil, false, err
	}
	fileBacked := a.FileBacked() && src.Path != "" && !strings.Contains(src.Path, "://")

	if fileBacked && p.cfg.Generate != nil {
		if _, err := os.Stat(src.Path); errors.Is(err, os.ErrNotExist) {
			n, err := generate.WriteFile(src.Path, *p.cfg.Generate)
			if err != nil {
				return nil, false, fmt.Errorf("generate batch: %w", err)
			}
			logger.Info("generated synthetic batch", slog.String("path", src.Path), slog.Int("records", n))
		}
	}

	if err := a.Connect(ctx, src); err != nil {
		return nil, false, fmt.Errorf("connect %s source: %w", a.Type(), err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close adapter", slog.String("error", err.Error()))
		}
	}()

	ds, err := a.Load(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load %s source: %w", a.Type(), err)
	}
	return ds, fileBacked, nil
}
