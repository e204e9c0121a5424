// Package watch hands new or rewritten batch files in a directory to a
// handler once writes have settled.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Watcher.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// Handler processes a settled file.
type Handler func(ctx context.Context, path string) error

// Watcher watches one directory, non-recursively.
type Watcher struct {
	Dir      string
	Pattern  string
	Debounce time.Duration
	Handle   Handler
	Logger   *slog.Logger

	mu     sync.Mutex
	seq    uint64
	timers map[string]pending
	wg     sync.WaitGroup
}

type pending struct {
	timer *time.Timer
	id    uint64
}

// Match reports whether the base name of path matches the pattern.
// An empty pattern matches everything.
func (w *Watcher) Match(path string) bool {
	if w.Pattern == "" {
		return true
	}
	ok, err := filepath.Match(w.Pattern, filepath.Base(path))
	return err == nil && ok
}

// Run watches until ctx is cancelled, then waits for in-flight handlers.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Handle == nil {
		return errors.New("watch handler is required")
	}
	if _, err := filepath.Match(w.Pattern, ""); err != nil {
		return fmt.Errorf("invalid watch pattern %q: %w", w.Pattern, err)
	}
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}
	logger.Info("watching for batches", slog.String("dir", w.Dir), slog.String("pattern", w.Pattern))

	w.mu.Lock()
	w.timers = make(map[string]pending)
	w.mu.Unlock()
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !w.Match(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name, debounce, logger)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

// schedule (re)arms the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// A stopped timer hands its wait group slot to the replacement.
	if p, ok := w.timers[path]; !ok || !p.timer.Stop() {
		w.wg.Add(1)
	}
	w.seq++
	id := w.seq
	w.timers[path] = pending{
		timer: time.AfterFunc(debounce, func() { w.fire(ctx, path, id, logger) }),
		id:    id,
	}
}

func (w *Watcher) fire(ctx context.Context, path string, id uint64, logger *slog.Logger) {
	defer w.wg.Done()

	w.mu.Lock()
	if p, ok := w.timers[path]; ok && p.id == id {
		delete(w.timers, path)
	}
	w.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	logger.Debug("batch settled", slog.String("path", path))
	if err := w.Handle(ctx, path); err != nil {
		logger.Error("batch handling failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

// stop cancels pending timers and waits for running handlers.
func (w *Watcher) stop() {
	w.mu.Lock()
	for path, p := range w.timers {
		if p.timer.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
