// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapdq/internal/cli/output"
)

// CleanBatch is a transactions batch that passes the default checks.
const CleanBatch = `transaction_id,user_id,amount,timestamp,status
TXN_0,1001,10.50,2024-01-01 10:00:00,COMPLETED
TXN_1,1002,99.99,2024-01-01 11:00:00,PENDING
TXN_2,1003,250.00,2024-01-02 09:30:00,FAILED
`

// DirtyBatch fails the user_id null, duplicate, range and status checks.
const DirtyBatch = `transaction_id,user_id,amount,timestamp,status
TXN_0,1001,10.50,2024-01-01 10:00:00,COMPLETED
TXN_1,,-5.00,2024-01-01 11:00:00,UNKNOWN_STATUS
TXN_0,1001,10.50,2024-01-01 10:00:00,COMPLETED
`

// Project is a temporary leapdq project.
type Project struct {
	Root       string
	ConfigPath string
	BatchPath  string
}

// SetupTestProject creates a temporary project whose csv source holds batch.
// An empty batch leaves the source file absent.
func SetupTestProject(t *testing.T, batch string) *Project {
	t.Helper()

	tmpDir := t.TempDir()
	p := &Project{
		Root:       tmpDir,
		ConfigPath: filepath.Join(tmpDir, "leapdq.yaml"),
		BatchPath:  filepath.Join(tmpDir, "data", "raw", "transactions.csv"),
	}

	cfg := `dataset_name: Transactions
source:
  type: csv
  path: data/raw/transactions.csv
routing:
  backend: local
  clean_dir: data/processed
  quarantine_dir: data/quarantine
alert:
  log_file: dq_alerts.log
  color: never
generate:
  if_missing: false
`
	if err := os.WriteFile(p.ConfigPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("failed to create leapdq.yaml: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(p.BatchPath), 0o750); err != nil {
		t.Fatalf("failed to create data/raw: %v", err)
	}
	if batch != "" {
		if err := os.WriteFile(p.BatchPath, []byte(batch), 0o600); err != nil {
			t.Fatalf("failed to create batch: %v", err)
		}
	}

	return p
}

// Path joins elem onto the project root.
func (p *Project) Path(elem ...string) string {
	return filepath.Join(append([]string{p.Root}, elem...)...)
}

// Files lists the base names in a project directory.
func (p *Project) Files(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(p.Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
