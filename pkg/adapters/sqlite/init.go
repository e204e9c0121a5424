package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/leapdq/pkg/adapter"
)

func init() {
	adapter.Register(adapter.SourceDef{
		Type:        "sqlite",
		Description: "A table or query in a SQLite database file, opened read-only",
		New:         func(logger *slog.Logger) adapter.Adapter { return New(logger) },
	})
}
