// Package metrics exposes pipeline run statistics as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

const namespace = "leapdq"

// Collector records run statistics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	checksTotal    *prometheus.CounterVec
	records        prometheus.Gauge
	runDuration    prometheus.Histogram
	ingestErrors   prometheus.Counter
	lastRunSeconds prometheus.Gauge
}

// NewCollector creates a collector. If registry is nil a fresh one is used.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Validation runs by routing outcome.",
		}, []string{"outcome"}),
		checksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Evaluated sub-checks by result.",
		}, []string{"result"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Record count of the last validated batch.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a validation run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		ingestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_errors_total",
			Help:      "Runs aborted because the batch could not be loaded.",
		}),
		lastRunSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
	}

	registry.MustRegister(
		c.runsTotal,
		c.checksTotal,
		c.records,
		c.runDuration,
		c.ingestErrors,
		c.lastRunSeconds,
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRun records a completed run.
func (c *Collector) RecordRun(r core.Report, outcome string, duration time.Duration, at time.Time) {
	c.runsTotal.WithLabelValues(outcome).Inc()
	c.checksTotal.WithLabelValues("passed").Add(float64(r.PassedChecks))
	c.checksTotal.WithLabelValues("failed").Add(float64(r.FailedChecks))
	c.records.Set(float64(r.TotalRecords))
	c.runDuration.Observe(duration.Seconds())
	c.lastRunSeconds.Set(float64(at.Unix()))
}

// RecordIngestError records a run that failed before validation.
func (c *Collector) RecordIngestError() {
	c.ingestErrors.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
