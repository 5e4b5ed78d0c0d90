package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
)

// MetricsCollector records request, envelope and lifecycle metrics.
// One collector lives as long as its adapter, across every reset cycle.
type MetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge
	envelopesTotal  *prometheus.CounterVec
	phasesTotal     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetricsCollector creates the collector and registers it with reg.
func NewMetricsCollector(opts mwopts.MetricsOptions, reg *prometheus.Registry) (*MetricsCollector, error) {
	m := &MetricsCollector{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      "requests_active",
			Help:      "Current number of in-flight requests.",
		}),
		envelopesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      "envelopes_total",
			Help:      "Response envelopes built, by outcome.",
		}, []string{"outcome"}),
		phasesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      "lifecycle_phases_total",
			Help:      "Lifecycle phases run by the adapter.",
		}, []string{"phase", "result"}),
		gatherer: reg,
	}

	for _, c := range []prometheus.Collector{
		m.requestsTotal, m.requestDuration, m.activeRequests, m.envelopesTotal, m.phasesTotal,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware records request count, latency and in-flight requests.
// Unmatched requests are labelled with an empty route.
func (m *MetricsCollector) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.activeRequests.Inc()
		defer m.activeRequests.Dec()

		c.Next()

		route := c.FullPath()
		m.requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveEnvelope counts one built envelope.
func (m *MetricsCollector) ObserveEnvelope(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.envelopesTotal.WithLabelValues(outcome).Inc()
}

// ObservePhase counts one lifecycle phase.
func (m *MetricsCollector) ObservePhase(phase string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.phasesTotal.WithLabelValues(phase, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
