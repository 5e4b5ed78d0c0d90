package resilience

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
	apierrors "github.com/kart-io/ginsvc/pkg/utils/errors"
)

func TestRateLimiterPerClient(t *testing.T) {
	l := NewRateLimiter(mwopts.RateLimitOptions{RequestsPerSecond: 0.001, Burst: 2, MaxClients: 10})

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "separate bucket per client")
}

func TestRateLimiterBoundedClients(t *testing.T) {
	l := NewRateLimiter(mwopts.RateLimitOptions{RequestsPerSecond: 1, Burst: 1, MaxClients: 2})
	l.Allow("a")
	l.Allow("b")
	l.Allow("c")
	assert.LessOrEqual(t, len(l.buckets), 2)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	opts := mwopts.NewRateLimitOptions()
	opts.Enabled = true
	opts.RequestsPerSecond = 0.5
	opts.Burst = 1
	opts.SkipPaths = []string{"/health"}

	var lastErr error
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			lastErr = c.Errors.Last().Err
		}
	})
	r.Use(RateLimitWithOptions(*opts))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, lastErr)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	fr, ok := apierrors.As(lastErr)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, fr.HTTPStatus())
	assert.Equal(t, "2", w.Header().Get("Retry-After"))

	for i := 0; i < 3; i++ {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
