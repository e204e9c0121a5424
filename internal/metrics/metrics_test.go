package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

func TestCollector_RecordRun(t *testing.T) {
	c := NewCollector(nil)
	at := time.Unix(1700000000, 0)

	r := core.NewReport("Transactions", 1010)
	r.PassedChecks = 3
	r.FailedChecks = 4
	c.RecordRun(r, "quarantine", 250*time.Millisecond, at)

	clean := core.NewReport("Transactions", 20)
	clean.PassedChecks = 7
	c.RecordRun(clean, "clean", time.Second, at.Add(time.Minute))

	assert.InDelta(t, 1, testutil.ToFloat64(c.runsTotal.WithLabelValues("quarantine")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.runsTotal.WithLabelValues("clean")), 0)
	assert.InDelta(t, 10, testutil.ToFloat64(c.checksTotal.WithLabelValues("passed")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(c.checksTotal.WithLabelValues("failed")), 0)
	assert.InDelta(t, 20, testutil.ToFloat64(c.records), 0)
	assert.InDelta(t, 1700000060, testutil.ToFloat64(c.lastRunSeconds), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(c.runDuration))
}

func TestCollector_RecordIngestError(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.RecordIngestError()
	c.RecordIngestError()
	assert.InDelta(t, 2, testutil.ToFloat64(c.ingestErrors), 0)
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(nil)
	c.RecordIngestError()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "leapdq_ingest_errors_total 1")
}
