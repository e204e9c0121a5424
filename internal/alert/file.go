package alert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File appends alert blocks to a log file, creating it on first use.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file sink appending to path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the log file path.
func (f *File) Path() string { return f.path }

// Send implements Sink.
func (f *File) Send(_ context.Context, a Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create alert log directory: %w", err)
		}
	}
	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open alert log: %w", err)
	}
	if _, err := fh.WriteString(a.String() + "\n"); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write alert log: %w", err)
	}
	return fh.Close()
}
