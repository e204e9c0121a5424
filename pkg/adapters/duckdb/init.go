// Package duckdb provides a DuckDB ingestion adapter for leapdq.
//
// This file registers the DuckDB adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/leapdq/pkg/adapters/duckdb"
package duckdb

import (
	"log/slog"

	"github.com/leapstack-labs/leapdq/pkg/adapter"
)

func init() {
	adapter.Register(adapter.SourceDef{
		Type:        "duckdb",
		Description: "Local CSV, Parquet or JSON files read in place by an in-memory DuckDB",
		Options:     []string{"delimiter", "header", "null_values", "extensions", "setting.<name>"},
		New:         func(logger *slog.Logger) adapter.Adapter { return New(logger) },
	})
}
