// Package alert formats validation reports as alerts and delivers them to
// sinks: the console, an append-only log file and an HTTP webhook.
package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// Level is the severity attached to an alert.
type Level string

// Alert levels.
const (
	Info     Level = "INFO"
	Warning  Level = "WARNING"
	Critical Level = "CRITICAL"
)

// LevelFor returns Critical when the report has failures and Info otherwise.
func LevelFor(r core.Report) Level {
	if r.HasFailures() {
		return Critical
	}
	return Info
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToUpper(s)); l {
	case Info, Warning, Critical:
		return l, nil
	}
	return "", fmt.Errorf("unknown alert level %q", s)
}

// TimeLayout renders the alert timestamp.
const TimeLayout = "2006-01-02 15:04:05"

const rule = "=================================================="

// Alert is a report delivered at a level and time.
type Alert struct {
	Level  Level
	Time   time.Time
	Report core.Report
}

// New builds an alert for r at the level LevelFor picks.
func New(r core.Report, ts time.Time) Alert {
	return Alert{Level: LevelFor(r), Time: ts, Report: r}
}

// Format renders the alert block: a timestamped header, the report totals and
// one line per failure, framed by rules.
func Format(r core.Report, level Level, ts time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s] DATA QUALITY ALERT - Level: %s\n", ts.Format(TimeLayout), level)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Dataset: %s\n", r.DatasetName)
	fmt.Fprintf(&b, "Total Records: %d\n", r.TotalRecords)
	fmt.Fprintf(&b, "Passed Checks: %d\n", r.PassedChecks)
	fmt.Fprintf(&b, "Failed Checks: %d\n", r.FailedChecks)
	if len(r.Failures) > 0 {
		b.WriteString("\nFAILURE DETAILS:\n")
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "- %s: %s\n", f.Check, f.Message)
		}
	}
	b.WriteString(rule + "\n")
	return b.String()
}

// String renders a as its alert block.
func (a Alert) String() string {
	return Format(a.Report, a.Level, a.Time)
}

// Sink delivers alerts.
type Sink interface {
	Send(ctx context.Context, a Alert) error
}

// Multi fans an alert out to every sink. Delivery continues past failures
// and the errors are joined.
type Multi []Sink

// Send implements Sink.
func (m Multi) Send(ctx context.Context, a Alert) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Send(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, a Alert) error

// Send implements Sink.
func (f SinkFunc) Send(ctx context.Context, a Alert) error { return f(ctx, a) }
