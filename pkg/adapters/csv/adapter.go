// Package csv provides a dependency-free CSV ingestion adapter for leapdq.
//
// Unlike the duckdb adapter it needs no cgo, which makes it the default for
// small batches and constrained build environments.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/adapter"
	"github.com/leapstack-labs/leapdq/pkg/core"
)

// Adapter implements the adapter.Adapter interface for local CSV files.
type Adapter struct {
	cfg    core.SourceConfig
	nulls  map[string]bool
	logger *slog.Logger
}

// New creates a new CSV adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{logger: logger}
}

// Type returns the registered adapter name.
func (a *Adapter) Type() string { return "csv" }

// FileBacked reports true.
func (a *Adapter) FileBacked() bool { return true }

// Connect validates the configuration. The file is opened by Load.
func (a *Adapter) Connect(_ context.Context, cfg core.SourceConfig) error {
	if cfg.Path == "" {
		return fmt.Errorf("csv source needs a path")
	}
	if d := cfg.Option("delimiter", ","); len([]rune(d)) != 1 {
		return fmt.Errorf("csv delimiter must be a single character, got %q", d)
	}
	a.cfg = cfg
	a.nulls = nullSet(cfg.NullValues())
	return nil
}

// Close is a no-op.
func (a *Adapter) Close() error { return nil }

// Load reads the whole file. Empty cells and null_values tokens become null.
func (a *Adapter) Load(ctx context.Context) (*core.Dataset, error) {
	f, err := os.Open(a.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.Comma = []rune(a.cfg.Option("delimiter", ","))[0]
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty csv file: %s", a.cfg.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var headers []string
	var pending []string
	if strings.ToLower(a.cfg.Option("header", "true")) != "false" {
		headers = append(headers, first...)
	} else {
		headers = make([]string, len(first))
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i+1)
		}
		pending = append(pending, first...)
	}

	ds := core.NewDataset(headers)
	appendRecord := func(record []string) error {
		if len(record) > len(headers) {
			line, _ := reader.FieldPos(0)
			return fmt.Errorf("parse csv: line %d has %d fields, header has %d", line, len(record), len(headers))
		}
		row := make([]any, len(headers))
		for i, cell := range record {
			row[i] = inferValue(cell, a.nulls)
		}
		return ds.AppendRow(row...)
	}

	if pending != nil {
		if err := appendRecord(pending); err != nil {
			return nil, err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if err := appendRecord(record); err != nil {
			return nil, err
		}
	}

	a.logger.Debug("csv loaded",
		slog.String("path", a.cfg.Path),
		slog.Int("columns", len(headers)),
		slog.Int("rows", ds.Len()))
	return ds, nil
}

var timeLayouts = []string{time.RFC3339Nano, core.TimestampLayout, time.DateOnly}

var defaultNulls = nullSet(core.SourceConfig{}.NullValues())

func nullSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}

// InferValue parses a cell as int64, float64, bool or timestamp, falling
// back to the trimmed string. Empty cells and the default null tokens
// (NA, NULL, None, ...) are null.
func InferValue(s string) any {
	return inferValue(s, defaultNulls)
}

func inferValue(s string, nulls map[string]bool) any {
	s = strings.TrimSpace(s)
	if s == "" || nulls[s] {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return s
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
