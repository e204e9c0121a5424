package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Local moves files between directories on the local filesystem.
type Local struct {
	cleanDir      string
	quarantineDir string
	opts          options
}

// NewLocal creates a local router.
func NewLocal(cleanDir, quarantineDir string, opts ...Option) *Local {
	return &Local{
		cleanDir:      cleanDir,
		quarantineDir: quarantineDir,
		opts:          buildOptions(opts),
	}
}

// Dir returns the destination directory for outcome.
func (l *Local) Dir(outcome Outcome) string {
	if outcome == Quarantine {
		return l.quarantineDir
	}
	return l.cleanDir
}

// Route implements Router. The destination directory is created on demand.
// Moves across filesystems fall back to copy and remove.
func (l *Local) Route(ctx context.Context, src string, outcome Outcome) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkSource(src); err != nil {
		return "", err
	}

	dir := l.Dir(outcome)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create %s directory: %w", outcome, err)
	}
	dest := filepath.Join(dir, DestName(src, outcome, l.opts.now()))

	if err := os.Rename(src, dest); err != nil {
		l.opts.logger.Debug("rename failed, copying instead", slog.String("error", err.Error()))
		if cerr := moveByCopy(src, dest); cerr != nil {
			return "", fmt.Errorf("move %s to %s: %w", src, dest, errors.Join(err, cerr))
		}
	}

	l.opts.logger.Info("batch routed",
		slog.String("outcome", string(outcome)),
		slog.String("from", src),
		slog.String("to", dest))
	return dest, nil
}

func moveByCopy(src, dest string) error {
	in, err := os.Open(src) //nolint:gosec // src is the configured batch file
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600) //nolint:gosec // dest is built from configured directories
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return err
	}
	return os.Remove(src)
}
