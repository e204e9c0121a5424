// Package adapter provides the ingestion adapter contract for leapdq.
//
// An adapter turns a configured source (a local file or a database table)
// into a core.Dataset that the validation engine can inspect. Concrete
// implementations live in pkg/adapters/ subdirectories and register
// themselves from init().
package adapter

import (
	"context"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// Adapter defines the interface that all ingestion adapters must implement.
type Adapter interface {
	// Connect prepares the adapter for the configured source.
	Connect(ctx context.Context, cfg core.SourceConfig) error

	// Load reads the whole source into memory.
	Load(ctx context.Context) (*core.Dataset, error)

	// Close releases any connection or file handle.
	Close() error

	// Type returns the registered adapter name.
	Type() string

	// FileBacked reports whether the source is a local file that the
	// router may move after validation.
	FileBacked() bool
}
