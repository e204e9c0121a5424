// Package sqlite provides a SQLite ingestion adapter for leapdq.
//
// The database is opened read-only; validation never writes to the source.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapdq/pkg/adapter"
	"github.com/leapstack-labs/leapdq/pkg/core"

	// sqlite driver
	_ "modernc.org/sqlite"
)

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
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
func (a *Adapter) Type() string { return "sqlite" }

// FileBacked reports false: the database file is not a batch to route.
func (a *Adapter) FileBacked() bool { return false }

// Connect opens the database file named by cfg.Path.
func (a *Adapter) Connect(ctx context.Context, cfg core.SourceConfig) error {
	if cfg.Path == "" {
		return fmt.Errorf("sqlite source needs a path")
	}

	db, err := sql.Open("sqlite", "file:"+cfg.Path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// Load runs the configured query (or selects the configured table).
func (a *Adapter) Load(ctx context.Context) (*core.Dataset, error) {
	stmt, err := a.SelectStatement()
	if err != nil {
		return nil, err
	}
	return a.QueryDataset(ctx, stmt)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
