package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdq/internal/testutil"
)

func TestMatch(t *testing.T) {
	w := &Watcher{Pattern: "*.csv"}
	assert.True(t, w.Match("/data/raw/transactions.csv"))
	assert.False(t, w.Match("/data/raw/transactions.csv.tmp"))
	assert.False(t, w.Match("/data/raw/notes.txt"))

	assert.True(t, (&Watcher{}).Match("anything"))
}

func TestRun_Validation(t *testing.T) {
	err := (&Watcher{Dir: t.TempDir()}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler is required")

	noop := func(context.Context, string) error { return nil }
	err = (&Watcher{Dir: t.TempDir(), Pattern: "[", Handle: noop}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid watch pattern")

	err = (&Watcher{Dir: filepath.Join(t.TempDir(), "missing"), Handle: noop}).Run(context.Background())
	require.Error(t, err)
}

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) handle(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestRun_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := &Watcher{
		Dir:      dir,
		Pattern:  "*.csv",
		Debounce: 100 * time.Millisecond,
		Handle:   rec.handle,
		Logger:   testutil.NewTestLogger(t),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	batch := filepath.Join(dir, "batch.csv")
	f, err := os.Create(batch)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.WriteString("a,b\n")
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, f.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o600))

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, []string{batch}, rec.snapshot())

	cancel()
	require.NoError(t, <-done)
}

func TestRun_CancelDropsPending(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := &Watcher{Dir: dir, Debounce: time.Hour, Handle: rec.handle}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "batch.csv"), []byte("a\n"), 0o600))
	time.Sleep(100 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Empty(t, rec.snapshot())
}
