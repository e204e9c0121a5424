package adapter

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// Factory builds an unconnected adapter. A nil logger means discard.
type Factory func(*slog.Logger) Adapter

// SourceDef describes one source type that can appear in source.type.
type SourceDef struct {
	Type        string
	Description string

	// Options lists the keys the adapter reads from source.options.
	Options []string

	New Factory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]SourceDef)
)

// Register adds a source type. Adapters call it from init(); registering the
// same type twice, or a definition without a type or factory, panics.
func Register(def SourceDef) {
	if def.Type == "" || def.New == nil {
		panic("adapter: Register needs a type and a factory")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[def.Type]; dup {
		panic(fmt.Sprintf("adapter: source type %q registered twice", def.Type))
	}
	registry[def.Type] = def
}

// Lookup returns the definition for a source type.
func Lookup(sourceType string) (SourceDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := registry[sourceType]
	return def, ok
}

// Sources returns every registered definition sorted by type.
func Sources() []SourceDef {
	registryMu.RLock()
	defer registryMu.RUnlock()
	defs := make([]SourceDef, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Type < defs[j].Type })
	return defs
}

// ListAdapters returns the registered source types, sorted.
func ListAdapters() []string {
	defs := Sources()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Type
	}
	return names
}

// IsRegistered reports whether a source type is registered.
func IsRegistered(sourceType string) bool {
	_, ok := Lookup(sourceType)
	return ok
}

// NewAdapter builds the adapter for cfg.Type. Unknown options are not
// checked here; each adapter validates its own options in Connect.
func NewAdapter(cfg core.SourceConfig, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("source type not specified")
	}
	def, ok := Lookup(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{Type: cfg.Type, Available: ListAdapters()}
	}
	return def.New(logger), nil
}

// UnknownAdapterError is returned for a source.type nobody registered.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown source type %q (available: %s)\nHint: set source.type in leapdq.yaml, or import the adapter package that registers it",
		e.Type, strings.Join(e.Available, ", "))
}
