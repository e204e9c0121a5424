package adapter

import (
	"context"
	"log/slog"
	"testing"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	BaseSQLAdapter
}

func (stubAdapter) Type() string     { return "stub" }
func (stubAdapter) FileBacked() bool { return false }
func (stubAdapter) Load(_ context.Context) (*core.Dataset, error) {
	return core.NewDataset(nil), nil
}
func (stubAdapter) Connect(context.Context, core.SourceConfig) error { return nil }

func init() {
	Register(SourceDef{
		Type:        "stub",
		Description: "Empty dataset for registry tests",
		Options:     []string{"rows"},
		New:         func(*slog.Logger) Adapter { return &stubAdapter{} },
	})
	Register(SourceDef{Type: "a_stub", New: func(*slog.Logger) Adapter { return &stubAdapter{} }})
}

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "fake_db",
		Available: []string{"csv", "duckdb"},
	}

	msg := err.Error()
	assert.Contains(t, msg, `"fake_db"`)
	assert.Contains(t, msg, "available: csv, duckdb")
	assert.Contains(t, msg, "source.type in leapdq.yaml")
}

func TestLookup(t *testing.T) {
	def, ok := Lookup("stub")
	require.True(t, ok)
	assert.Equal(t, "Empty dataset for registry tests", def.Description)
	assert.Equal(t, []string{"rows"}, def.Options)
	assert.True(t, IsRegistered("stub"))
	assert.Contains(t, ListAdapters(), "stub")

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestSources_Sorted(t *testing.T) {
	types := ListAdapters()
	require.GreaterOrEqual(t, len(types), 2)
	assert.IsIncreasing(t, types)
	assert.Equal(t, "a_stub", Sources()[0].Type)
}

func TestRegister_Panics(t *testing.T) {
	factory := func(*slog.Logger) Adapter { return &stubAdapter{} }

	assert.Panics(t, func() { Register(SourceDef{Type: "stub", New: factory}) }, "duplicate type")
	assert.Panics(t, func() { Register(SourceDef{New: factory}) }, "missing type")
	assert.Panics(t, func() { Register(SourceDef{Type: "no_factory"}) }, "missing factory")
	assert.False(t, IsRegistered("no_factory"))
}

func TestNewAdapter(t *testing.T) {
	adp, err := NewAdapter(core.SourceConfig{Type: "stub"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "stub", adp.Type())
}

func TestNewAdapter_EmptyType(t *testing.T) {
	_, err := NewAdapter(core.SourceConfig{}, nil)
	require.Error(t, err)
	assert.Equal(t, "source type not specified", err.Error())
}

func TestNewAdapter_UnknownType(t *testing.T) {
	_, err := NewAdapter(core.SourceConfig{Type: "unknown_adapter"}, nil)
	require.Error(t, err)

	var unknownErr *UnknownAdapterError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "unknown_adapter", unknownErr.Type)
	assert.Contains(t, unknownErr.Available, "stub")
}
