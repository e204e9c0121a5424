// Package duckdb provides a DuckDB ingestion adapter for leapdq.
//
// Files are read in place through DuckDB's table functions, so CSV, Parquet
// and JSON inputs share one loading path and get DuckDB's type inference.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapdq/pkg/adapter"
	"github.com/leapstack-labs/leapdq/pkg/core"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
	params *Params
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Type returns the registered adapter name.
func (a *Adapter) Type() string { return "duckdb" }

// FileBacked reports whether the source path is a local file.
func (a *Adapter) FileBacked() bool {
	return a.Cfg.Path != "" && !strings.Contains(a.Cfg.Path, "://")
}

// Connect opens an in-memory DuckDB database and applies the configured
// extensions and settings.
func (a *Adapter) Connect(ctx context.Context, cfg core.SourceConfig) error {
	params, err := ParseParams(cfg.Options)
	if err != nil {
		return err
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.params = params

	if err := a.setup(ctx); err != nil {
		_ = db.Close()
		a.DB = nil
		return err
	}
	return nil
}

func (a *Adapter) setup(ctx context.Context) error {
	for _, ext := range a.params.Extensions {
		if ext == "" {
			continue
		}
		a.Logger.Debug("loading duckdb extension", slog.String("extension", ext))
		if _, err := a.DB.ExecContext(ctx, fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	names := make([]string, 0, len(a.params.Settings))
	for name := range a.params.Settings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		stmt := fmt.Sprintf("SET %s = %s", name, quote(a.params.Settings[name]))
		if _, err := a.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the configured file, or runs the configured query.
func (a *Adapter) Load(ctx context.Context) (*core.Dataset, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if a.Cfg.Query != "" {
		return a.QueryDataset(ctx, a.Cfg.Query)
	}
	if a.Cfg.Path == "" {
		return nil, fmt.Errorf("duckdb source needs a path or a query")
	}

	path := a.Cfg.Path
	if a.FileBacked() {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = abs
	}

	stmt := fmt.Sprintf("SELECT * FROM %s", a.readFunc(path))
	a.Logger.Debug("loading file", slog.String("path", path))
	return a.QueryDataset(ctx, stmt)
}

// readFunc picks the DuckDB table function for a path by its extension.
func (a *Adapter) readFunc(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return fmt.Sprintf("read_parquet(%s)", quote(path))
	case ".json", ".jsonl", ".ndjson":
		return fmt.Sprintf("read_json_auto(%s)", quote(path))
	default:
		header := true
		if a.params != nil && a.params.Header != nil {
			header = *a.params.Header
		}
		args := fmt.Sprintf("%s, header=%t", quote(path), header)
		if a.params != nil && a.params.Delimiter != "" {
			args += ", delim=" + quote(a.params.Delimiter)
		}
		nulls := a.Cfg.NullValues()
		for i, tok := range nulls {
			nulls[i] = quote(tok)
		}
		args += ", nullstr=[" + strings.Join(nulls, ", ") + "]"
		return fmt.Sprintf("read_csv_auto(%s)", args)
	}
}

// quote renders s as a SQL string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
