package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
)

func newCollector(t *testing.T) (*MetricsCollector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := NewMetricsCollector(*mwopts.NewMetricsOptions(), reg)
	require.NoError(t, err)
	return m, reg
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, _ := newCollector(t)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/1", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeRequests))
}

func TestObserveEnvelopeAndPhase(t *testing.T) {
	m, _ := newCollector(t)

	m.ObserveEnvelope(true)
	m.ObserveEnvelope(false)
	m.ObserveEnvelope(false)
	m.ObservePhase("before_mount", nil)
	m.ObservePhase("on_mount", errors.New("bind"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.envelopesTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.envelopesTotal.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.phasesTotal.WithLabelValues("on_mount", "error")))
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetricsCollector(*mwopts.NewMetricsOptions(), reg)
	require.NoError(t, err)
	_, err = NewMetricsCollector(*mwopts.NewMetricsOptions(), reg)
	assert.Error(t, err)
}

func TestHandlerExposition(t *testing.T) {
	m, _ := newCollector(t)
	m.ObserveEnvelope(true)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `ginsvc_http_envelopes_total{outcome="success"} 1`))
}
