package common

import (
	"context"
	"crypto/tls"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDContext(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", GetRequestID(ctx))
}

func TestNewRequestIDMonotonic(t *testing.T) {
	a := NewRequestID()
	b := NewRequestID()

	_, err := ulid.ParseStrict(a)
	require.NoError(t, err)
	assert.Len(t, a, 26)
	assert.Less(t, a, b)
}

func TestScheme(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		setup func(c *gin.Context)
		want  string
	}{
		{name: "plain", setup: func(*gin.Context) {}, want: "http"},
		{name: "tls", setup: func(c *gin.Context) { c.Request.TLS = &tls.ConnectionState{} }, want: "https"},
		{name: "forwarded", setup: func(c *gin.Context) { c.Request.Header.Set("X-Forwarded-Proto", "HTTPS") }, want: "https"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/", nil)
			tt.setup(c)
			assert.Equal(t, tt.want, Scheme(c))
		})
	}
}
