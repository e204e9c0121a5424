// Package postgres provides a PostgreSQL ingestion adapter for leapdq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/leapstack-labs/leapdq/pkg/adapter"
	"github.com/leapstack-labs/leapdq/pkg/core"
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
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
func (a *Adapter) Type() string { return "postgres" }

// FileBacked reports false: tables are never routed.
func (a *Adapter) FileBacked() bool { return false }

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg core.SourceConfig) error {
	dsn := buildPostgresDSN(cfg)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
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

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg core.SourceConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, cfg.Option("sslmode", "disable"))

	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
