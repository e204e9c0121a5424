package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/leapdq/pkg/adapter"
)

func init() {
	adapter.Register(adapter.SourceDef{
		Type:        "postgres",
		Description: "A PostgreSQL table or query",
		Options:     []string{"sslmode"},
		New:         func(logger *slog.Logger) adapter.Adapter { return New(logger) },
	})
}
