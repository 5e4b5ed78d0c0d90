package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kart-io/ginsvc/pkg/infra/middleware/common"
	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		header   string
		incoming string
		check    func(t *testing.T, id string)
	}{
		{
			name:  "generated",
			check: func(t *testing.T, id string) { assert.Len(t, id, 26) },
		},
		{
			name:     "propagated",
			incoming: "req-123",
			check:    func(t *testing.T, id string) { assert.Equal(t, "req-123", id) },
		},
		{
			name:     "oversized replaced",
			incoming: strings.Repeat("x", 200),
			check:    func(t *testing.T, id string) { assert.Len(t, id, 26) },
		},
		{
			name:     "custom header",
			header:   "X-Trace",
			incoming: "trace-1",
			check:    func(t *testing.T, id string) { assert.Equal(t, "trace-1", id) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := mwopts.NewRequestIDOptions()
			if tt.header != "" {
				opts.Header = tt.header
			}

			var fromGin, fromCtx string
			r := gin.New()
			r.Use(RequestIDWithOptions(*opts))
			r.GET("/", func(c *gin.Context) {
				fromGin = common.RequestID(c)
				fromCtx = common.GetRequestID(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(opts.Header, tt.incoming)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			tt.check(t, fromGin)
			assert.Equal(t, fromGin, fromCtx)
			assert.Equal(t, fromGin, w.Header().Get(opts.Header))
		})
	}
}
