package csv

import (
	"log/slog"

	"github.com/leapstack-labs/leapdq/pkg/adapter"
)

func init() {
	adapter.Register(adapter.SourceDef{
		Type:        "csv",
		Description: "Local CSV files parsed without cgo",
		Options:     []string{"delimiter", "header", "null_values"},
		New:         func(logger *slog.Logger) adapter.Adapter { return New(logger) },
	})
}
