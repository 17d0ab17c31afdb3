package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/branched-services/go-risk/pkg/risk"
)

// Verify interface compliance at compile time.
var _ risk.Recorder = (*Metrics)(nil)

// Metrics holds the Prometheus collectors for the risk service.
// It implements risk.Recorder so the engine can report recalculations
// without depending on this package.
type Metrics struct {
	registry *prometheus.Registry

	recalcDuration prometheus.Histogram
	recalcTotal    prometheus.Counter
	sampleSize     prometheus.Gauge
	requestsTotal  *prometheus.CounterVec
}

// NewMetrics creates and registers all service collectors on a dedicated
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recalcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "risk",
			Name:      "recalc_duration_seconds",
			Help:      "Time spent recomputing the risk report.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		recalcTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risk",
			Name:      "recalc_total",
			Help:      "Number of completed report recalculations.",
		}),
		sampleSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "risk",
			Name:      "sample_size",
			Help:      "Observations in the window at the last recalculation.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "risk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.recalcDuration,
		m.recalcTotal,
		m.sampleSize,
		m.requestsTotal,
	)
	return m
}

// RecalcCompleted implements risk.Recorder.
func (m *Metrics) RecalcCompleted(elapsed time.Duration, sampleSize int) {
	m.recalcDuration.Observe(elapsed.Seconds())
	m.recalcTotal.Inc()
	m.sampleSize.Set(float64(sampleSize))
}

// ObserveRequest counts a finished HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int) {
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
