package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/ginsvc/pkg/infra/appctx"
	"github.com/kart-io/ginsvc/pkg/infra/middleware/cookie"
	httpsrv "github.com/kart-io/ginsvc/pkg/infra/server/http"
	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
	httpopts "github.com/kart-io/ginsvc/pkg/options/server/http"
	"github.com/kart-io/ginsvc/pkg/utils/response"
)

const secret = "keyboard cat"

func newServer(t *testing.T) *httpsrv.Server {
	t.Helper()
	opts := httpopts.NewOptions()
	opts.Host = "127.0.0.1"
	opts.Port = 0
	opts.Mode = gin.TestMode
	opts.Middleware.AccessLog.Enabled = false
	opts.Middleware.ApplyOptions(mwopts.WithCookieSecret(secret))

	srv := httpsrv.NewServer(opts, Routes())
	app := appctx.New()
	require.NoError(t, app.MountService(context.Background(), "http", srv))
	t.Cleanup(func() { _ = app.EjectAllServices(context.Background()) })
	return srv
}

func do(srv *httpsrv.Server, req *http.Request) (*httptest.ResponseRecorder, *response.Envelope) {
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	env := &response.Envelope{}
	_ = env.UnmarshalJSON(w.Body.Bytes())
	return w, env
}

func TestDemoRoutes(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name        string
		target      string
		wantStatus  int
		wantSuccess bool
		wantCode    int
		wantMessage string
	}{
		{"test", "/test", http.StatusOK, true, 0, "Ok!"},
		{"fail", "/fail", http.StatusOK, false, 1, "Ok!"},
		{"throw", "/throw", http.StatusInternalServerError, false, -50, "Whops! Something went wrong!"},
		{"no session", "/session", http.StatusUnauthorized, false, -10, "No session"},
		{"version", "/version", http.StatusOK, true, 0, ""},
		{"unknown", "/unknown", http.StatusNotFound, false, 0, "Page not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(srv, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantSuccess, env.Success)
			assert.Equal(t, tt.wantCode, env.Code)
			assert.Equal(t, tt.wantMessage, env.Message)
		})
	}
}

func TestSessionWithSignedCookie(t *testing.T) {
	srv := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(&http.Cookie{Name: "user", Value: url.QueryEscape("s:" + cookie.Sign("gopher", secret))})
	w, env := do(srv, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"user": "gopher"}, env.Data)
}

func TestSessionWithTamperedCookie(t *testing.T) {
	srv := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(&http.Cookie{Name: "user", Value: url.QueryEscape("s:" + cookie.Sign("gopher", "other secret"))})
	w, _ := do(srv, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlainCookies(t *testing.T) {
	srv := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/cookies", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	w, env := do(srv, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"theme": "dark"}, env.Data)
}
