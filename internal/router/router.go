// Package router moves a validated batch file to its destination: the clean
// area when every check passed, the quarantine area otherwise.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// Outcome is the routing decision for a batch.
type Outcome string

// Routing outcomes.
const (
	Clean      Outcome = "clean"
	Quarantine Outcome = "quarantine"
)

// OutcomeFor quarantines any batch with at least one failed check.
func OutcomeFor(r core.Report) Outcome {
	if r.HasFailures() {
		return Quarantine
	}
	return Clean
}

// tag is the marker placed in destination file names.
func (o Outcome) tag() string {
	if o == Quarantine {
		return "bad"
	}
	return "clean"
}

// ErrNotFileBacked is returned when the source is not a local regular file.
var ErrNotFileBacked = errors.New("source is not a local file")

// Router moves a source file according to an outcome and returns where it went.
type Router interface {
	Route(ctx context.Context, src string, outcome Outcome) (string, error)
}

// StampLayout is the timestamp suffix layout of destination names.
const StampLayout = "20060102150405"

// DestName builds "<stem>_<clean|bad>_<YYYYMMDDHHMMSS><ext>" for src.
func DestName(src string, outcome Outcome, now time.Time) string {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_%s_%s%s", stem, outcome.tag(), now.Format(StampLayout), ext)
}

// Option configures a router.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *slog.Logger
}

// WithClock overrides the clock used for destination timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the router logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// checkSource returns ErrNotFileBacked unless src is a regular file.
func checkSource(src string) error {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist", ErrNotFileBacked, src)
		}
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotFileBacked, src)
	}
	return nil
}
