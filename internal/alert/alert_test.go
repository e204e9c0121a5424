package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func failingReport() core.Report {
	r := core.NewReport("Transactions", 1010)
	r.PassedChecks = 3
	r.FailedChecks = 2
	r.Failures = []core.Failure{
		{Check: "Null Check (user_id)", Message: "Null percentage 4.95% exceeds threshold 0.00%"},
		{Check: "Category Check (status)", Message: "Found invalid values: [UNKNOWN_STATUS]"},
	}
	return r
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, Critical, LevelFor(failingReport()))
	assert.Equal(t, Info, LevelFor(core.NewReport("x", 0)))
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, Warning, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	want := `
[2024-03-01 12:30:00] DATA QUALITY ALERT - Level: CRITICAL
==================================================
Dataset: Transactions
Total Records: 1010
Passed Checks: 3
Failed Checks: 2

FAILURE DETAILS:
- Null Check (user_id): Null percentage 4.95% exceeds threshold 0.00%
- Category Check (status): Found invalid values: [UNKNOWN_STATUS]
==================================================
`
	assert.Equal(t, want, Format(failingReport(), Critical, ts))
}

func TestFormat_NoFailures(t *testing.T) {
	r := core.NewReport("Transactions", 10)
	r.PassedChecks = 7
	got := Format(r, Info, ts)
	assert.NotContains(t, got, "FAILURE DETAILS")
	assert.Contains(t, got, "Level: INFO")
	assert.Contains(t, got, "Passed Checks: 7\nFailed Checks: 0\n")
}

func TestConsole(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		c := NewConsole(&buf, "never")
		require.NoError(t, c.Send(context.Background(), New(failingReport(), ts)))
		assert.Equal(t, Format(failingReport(), Critical, ts)+"\n", buf.String())
	})

	t.Run("auto is plain for non-terminals", func(t *testing.T) {
		var buf bytes.Buffer
		c := NewConsole(&buf, "auto")
		require.NoError(t, c.Send(context.Background(), New(failingReport(), ts)))
		assert.NotContains(t, buf.String(), "\x1b[")
	})

	t.Run("colored", func(t *testing.T) {
		var buf bytes.Buffer
		c := NewConsole(&buf, "always")
		require.NoError(t, c.Send(context.Background(), New(failingReport(), ts)))
		assert.Contains(t, buf.String(), "\x1b[")
		assert.Contains(t, buf.String(), "DATA QUALITY ALERT")
	})
}

func TestFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dq_alerts.log")
	f := NewFile(path)
	ctx := context.Background()

	require.NoError(t, f.Send(ctx, New(failingReport(), ts)))
	require.NoError(t, f.Send(ctx, New(core.NewReport("Transactions", 0), ts)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Equal(t, 2, strings.Count(content, "DATA QUALITY ALERT"))
	assert.True(t, strings.HasPrefix(content, Format(failingReport(), Critical, ts)+"\n"))
	assert.True(t, strings.HasSuffix(content, "==\n\n"))
}

func TestWebhook(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, srv.Client())
	require.NoError(t, wh.Send(context.Background(), New(failingReport(), ts)))

	assert.Equal(t, Critical, got.Level)
	assert.True(t, ts.Equal(got.Timestamp))
	assert.Equal(t, 2, got.Report.FailedChecks)
	assert.Len(t, got.Report.Failures, 2)
	assert.Contains(t, got.Text, "FAILURE DETAILS")
}

func TestWebhook_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL, nil).Send(context.Background(), New(failingReport(), ts))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestMulti_JoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	var delivered int
	m := Multi{
		SinkFunc(func(context.Context, Alert) error { return errA }),
		nil,
		SinkFunc(func(context.Context, Alert) error { delivered++; return nil }),
	}

	err := m.Send(context.Background(), New(failingReport(), ts))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.Equal(t, 1, delivered, "later sinks still receive the alert")
}
