package cookie

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
)

func TestSignUnsign(t *testing.T) {
	signed := Sign("hello", "tobiiscool")
	// reference value from the cookie-signature test-suite
	assert.Equal(t, "hello.DGDUkGlIkCzPz+C0B064FNgHdEjox7ch8tOBGslZ5QI", signed)

	v, ok := Unsign(signed, []string{"tobiiscool"})
	require.True(t, ok)
	assert.Equal(t, "hello", v)

	_, ok = Unsign(signed, []string{"luna"})
	assert.False(t, ok)
	_, ok = Unsign("nodot", []string{"tobiiscool"})
	assert.False(t, ok)
	_, ok = Unsign(signed+"x", []string{"tobiiscool"})
	assert.False(t, ok)
}

func TestUnsignRotatedSecret(t *testing.T) {
	signed := Sign("v", "old")
	v, ok := Unsign(signed, []string{"new", "old"})
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func run(t *testing.T, opts *mwopts.CookieOptions, cookieHeader string) (plain, signed map[string]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Parser(opts))
	r.GET("/", func(c *gin.Context) {
		plain = Cookies(c)
		signed = map[string]string{}
		for _, name := range []string{"session", "tampered", "theme"} {
			if v, ok := SignedCookie(c, name); ok {
				signed[name] = v
			}
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", cookieHeader)
	r.ServeHTTP(httptest.NewRecorder(), req)
	return plain, signed
}

func TestParserWithSecret(t *testing.T) {
	opts := mwopts.NewCookieOptions()
	opts.Secret = "k"

	good := url.QueryEscape("s:" + Sign("user-1", "k"))
	bad := url.QueryEscape("s:" + Sign("admin", "other"))
	plain, signed := run(t, opts, "session="+good+"; tampered="+bad+"; theme=dark%20blue")

	assert.Equal(t, map[string]string{"theme": "dark blue"}, plain)
	assert.Equal(t, map[string]string{"session": "user-1"}, signed)
}

func TestParserWithoutSecretKeepsRawValues(t *testing.T) {
	raw := url.QueryEscape("s:" + Sign("user-1", "k"))
	plain, signed := run(t, nil, "session="+raw)

	assert.Equal(t, "s:"+Sign("user-1", "k"), plain["session"])
	assert.Empty(t, signed)
}

func TestParserNoDecode(t *testing.T) {
	opts := &mwopts.CookieOptions{Secret: "k", Decode: false}
	plain, _ := run(t, opts, "theme=dark%20blue")
	assert.Equal(t, "dark%20blue", plain["theme"])
}

func TestSetSignedRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	opts := &mwopts.CookieOptions{Secret: "k", Decode: true}

	r := gin.New()
	r.Use(Parser(opts))
	r.GET("/set", func(c *gin.Context) {
		SetSigned(c, "k", &http.Cookie{Name: "session", Value: "u 1/2", HttpOnly: true})
		c.Status(http.StatusNoContent)
	})
	r.GET("/get", func(c *gin.Context) {
		v, ok := SignedCookie(c, "session")
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.String(http.StatusOK, v)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "/", cookies[0].Path)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u 1/2", w.Body.String())
}
