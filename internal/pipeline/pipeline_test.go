package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdq/internal/alert"
	"github.com/leapstack-labs/leapdq/internal/generate"
	"github.com/leapstack-labs/leapdq/internal/metrics"
	"github.com/leapstack-labs/leapdq/internal/router"
	"github.com/leapstack-labs/leapdq/pkg/adapter"
	_ "github.com/leapstack-labs/leapdq/pkg/adapters/csv"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/validate"
)

// memoryAdapter serves a fixed dataset and is never file backed.
type memoryAdapter struct{}

func (memoryAdapter) Connect(context.Context, core.SourceConfig) error { return nil }
func (memoryAdapter) Close() error                                      { return nil }
func (memoryAdapter) Type() string                                      { return "memory" }
func (memoryAdapter) FileBacked() bool                                  { return false }
func (memoryAdapter) Load(context.Context) (*core.Dataset, error) {
	return core.FromRecords([]string{"id"}, []map[string]any{{"id": int64(1)}, {"id": int64(2)}}), nil
}

func init() {
	adapter.Register(adapter.SourceDef{
		Type: "memory",
		New:  func(*slog.Logger) adapter.Adapter { return memoryAdapter{} },
	})
}

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func clock() time.Time { return fixedNow }

const cleanCSV = "transaction_id,user_id,amount,timestamp,status\n" +
	"TXN_0,1001,10.50,2024-01-01 10:00:00,COMPLETED\n" +
	"TXN_1,1002,99.99,2024-01-01 11:00:00,PENDING\n"

const dirtyCSV = "transaction_id,user_id,amount,timestamp,status\n" +
	"TXN_0,1001,10.50,2024-01-01 10:00:00,COMPLETED\n" +
	"TXN_1,,-5.00,2024-01-01 11:00:00,UNKNOWN_STATUS\n" +
	"TXN_0,1001,10.50,2024-01-01 10:00:00,COMPLETED\n"

func transactionChecks(t *testing.T) []validate.Check {
	t.Helper()
	checks, err := validate.DecodeAll([]map[string]any{
		{"kind": "schema", "columns": []any{"transaction_id", "user_id", "amount", "timestamp", "status"}},
		{"kind": "nulls", "columns": []any{"user_id", "transaction_id", "amount"}, "threshold": 0.0},
		{"kind": "duplicates", "subset": []any{"transaction_id"}, "threshold": 0.0},
		{"kind": "range", "column": "amount", "min": 0},
		{"kind": "categorical", "column": "status", "allowed": []any{"COMPLETED", "PENDING", "FAILED"}},
	})
	require.NoError(t, err)
	return checks
}

type captureSink struct {
	mu     sync.Mutex
	alerts []alert.Alert
}

func (s *captureSink) Send(_ context.Context, a alert.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return nil
}

type fixture struct {
	root    string
	raw     string
	sink    *captureSink
	metrics *metrics.Collector
	p       *Pipeline
}

func newFixture(t *testing.T, content string) *fixture {
	t.Helper()
	root := t.TempDir()
	raw := filepath.Join(root, "raw", "transactions.csv")
	if content != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(raw), 0o750))
		require.NoError(t, os.WriteFile(raw, []byte(content), 0o600))
	}

	f := &fixture{
		root:    root,
		raw:     raw,
		sink:    &captureSink{},
		metrics: metrics.NewCollector(nil),
	}
	f.p = New(Config{
		DatasetName: "Transactions",
		Source:      core.SourceConfig{Type: "csv", Path: raw},
		Checks:      transactionChecks(t),
		Router: router.NewLocal(
			filepath.Join(root, "processed"),
			filepath.Join(root, "quarantine"),
			router.WithClock(clock)),
		Sink:    f.sink,
		Metrics: f.metrics,
		Now:     clock,
	})
	return f
}

func TestRun_CleanBatch(t *testing.T) {
	f := newFixture(t, cleanCSV)

	res, err := f.p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Report.TotalRecords)
	assert.Equal(t, 7, res.Report.PassedChecks)
	assert.Equal(t, 0, res.Report.FailedChecks)
	assert.Equal(t, router.Clean, res.Outcome)
	assert.Equal(t, alert.Info, res.Level)
	assert.Equal(t, filepath.Join(f.root, "processed", "transactions_clean_20240102030405.csv"), res.Destination)
	assert.FileExists(t, res.Destination)
	assert.NoFileExists(t, f.raw)
	assert.NotEqual(t, uuid.Nil, res.RunID)

	require.Len(t, f.sink.alerts, 1)
	assert.Equal(t, alert.Info, f.sink.alerts[0].Level)
	count, err := testutil.GatherAndCount(f.metrics.Registry(), "leapdq_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRun_DirtyBatchIsQuarantined(t *testing.T) {
	f := newFixture(t, dirtyCSV)

	res, err := f.p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, router.Quarantine, res.Outcome)
	assert.Equal(t, alert.Critical, res.Level)
	assert.Equal(t, 3, res.Report.PassedChecks)
	assert.Equal(t, 4, res.Report.FailedChecks)
	assert.Equal(t, filepath.Join(f.root, "quarantine", "transactions_bad_20240102030405.csv"), res.Destination)

	require.Len(t, f.sink.alerts, 1)
	assert.Contains(t, f.sink.alerts[0].String(), "DATA QUALITY ALERT - Level: CRITICAL")
}

func TestRun_IngestFailure(t *testing.T) {
	f := newFixture(t, "")

	res, err := f.p.Run(context.Background())
	require.ErrorIs(t, err, ErrIngest)
	assert.Nil(t, res)
	assert.Empty(t, f.sink.alerts)
	assert.Nil(t, f.p.LastResult())
}

func TestRun_GeneratesMissingBatch(t *testing.T) {
	f := newFixture(t, "")
	f.p.cfg.Generate = &generate.Options{Records: 50, Seed: 9, Now: clock}

	res, err := f.p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 60, res.Report.TotalRecords)
	assert.Equal(t, router.Quarantine, res.Outcome, "generated batches carry duplicates")
}

func TestRun_UsesRunIDFromContext(t *testing.T) {
	f := newFixture(t, cleanCSV)
	id := uuid.New()

	res, err := f.p.Run(WithRunID(context.Background(), id))
	require.NoError(t, err)
	assert.Equal(t, id, res.RunID)
}

func TestRunFile_OverridesPath(t *testing.T) {
	f := newFixture(t, "")
	other := filepath.Join(f.root, "incoming", "batch.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(other), 0o750))
	require.NoError(t, os.WriteFile(other, []byte(cleanCSV), 0o600))

	res, err := f.p.RunFile(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, other, res.Source)
	assert.Equal(t, filepath.Join(f.root, "processed", "batch_clean_20240102030405.csv"), res.Destination)
}

func TestValidate_DoesNotRouteOrAlert(t *testing.T) {
	f := newFixture(t, dirtyCSV)

	res, err := f.p.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, router.Quarantine, res.Outcome)
	assert.Empty(t, res.Destination)
	assert.FileExists(t, f.raw)
	assert.Empty(t, f.sink.alerts)
	assert.Nil(t, f.p.LastResult())
}

func TestRun_NonFileSourceIsNotRouted(t *testing.T) {
	f := newFixture(t, "")
	f.p.cfg.Source = core.SourceConfig{Type: "memory"}
	f.p.cfg.Checks = nil

	res, err := f.p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, router.Clean, res.Outcome)
	assert.Empty(t, res.Destination)
	require.Len(t, f.sink.alerts, 1)
}

func TestRun_RoutingErrorStillAlerts(t *testing.T) {
	f := newFixture(t, cleanCSV)
	f.p.cfg.Router = routerFunc(func(context.Context, string, router.Outcome) (string, error) {
		return "", errors.New("disk full")
	})

	res, err := f.p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NotNil(t, res)
	assert.Len(t, f.sink.alerts, 1)
	assert.NotNil(t, f.p.LastResult())
}

func TestRun_AlertFailureDoesNotFailRun(t *testing.T) {
	f := newFixture(t, cleanCSV)
	f.p.cfg.Sink = alert.SinkFunc(func(context.Context, alert.Alert) error {
		return errors.New("webhook down")
	})

	_, err := f.p.Run(context.Background())
	require.NoError(t, err)
}

func TestLastResult_IsACopy(t *testing.T) {
	f := newFixture(t, dirtyCSV)
	_, err := f.p.Run(context.Background())
	require.NoError(t, err)

	last := f.p.LastResult()
	require.NotNil(t, last)
	last.Report.Failures[0].Message = "changed"
	assert.NotEqual(t, "changed", f.p.LastResult().Report.Failures[0].Message)
}

type routerFunc func(ctx context.Context, src string, o router.Outcome) (string, error)

func (f routerFunc) Route(ctx context.Context, src string, o router.Outcome) (string, error) {
	return f(ctx, src, o)
}
