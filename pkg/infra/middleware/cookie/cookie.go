// Package cookie parses request cookies and verifies signed ones.
//
// Signed cookies use the "s:<value>.<signature>" form, where signature is
// the unpadded base64 HMAC-SHA256 of value under the secret. This is the
// format produced by the cookie-signature family of libraries, so cookies
// can be shared with services written against them.
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/ginsvc/pkg/infra/middleware/common"
	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
)

const signedPrefix = "s:"

// Parser returns a middleware that stores plain cookies and verified signed
// cookies on the gin context. A nil opts parses plain cookies only.
// Signed cookies that fail verification are dropped from both maps.
func Parser(opts *mwopts.CookieOptions) gin.HandlerFunc {
	var (
		secrets []string
		decode  = true
	)
	if opts != nil {
		secrets = opts.AllSecrets()
		decode = opts.Decode
	}

	return func(c *gin.Context) {
		plain := make(map[string]string)
		signed := make(map[string]string)

		for _, ck := range c.Request.Cookies() {
			if _, seen := plain[ck.Name]; seen {
				continue
			}
			if _, seen := signed[ck.Name]; seen {
				continue
			}
			val := ck.Value
			if decode {
				if v, err := url.QueryUnescape(val); err == nil {
					val = v
				}
			}
			if len(secrets) > 0 && strings.HasPrefix(val, signedPrefix) {
				if v, ok := Unsign(val[len(signedPrefix):], secrets); ok {
					signed[ck.Name] = v
				}
				continue
			}
			plain[ck.Name] = val
		}

		c.Set(common.KeyCookies, plain)
		c.Set(common.KeySignedCookies, signed)
		c.Next()
	}
}

// Cookie returns a parsed plain cookie.
func Cookie(c *gin.Context, name string) (string, bool) {
	return lookup(c, common.KeyCookies, name)
}

// SignedCookie returns a verified signed cookie.
func SignedCookie(c *gin.Context, name string) (string, bool) {
	return lookup(c, common.KeySignedCookies, name)
}

// Cookies returns all parsed plain cookies.
func Cookies(c *gin.Context) map[string]string {
	m, _ := c.Get(common.KeyCookies)
	cookies, _ := m.(map[string]string)
	return cookies
}

func lookup(c *gin.Context, key, name string) (string, bool) {
	m, ok := c.Get(key)
	if !ok {
		return "", false
	}
	cookies, _ := m.(map[string]string)
	v, ok := cookies[name]
	return v, ok
}

// Sign returns value signed with secret, without the "s:" prefix.
func Sign(value, secret string) string {
	return value + "." + signature(value, secret)
}

// Unsign verifies signed against each secret in order and returns the
// original value.
func Unsign(signed string, secrets []string) (string, bool) {
	i := strings.LastIndexByte(signed, '.')
	if i < 0 {
		return "", false
	}
	value, mac := signed[:i], signed[i+1:]
	for _, secret := range secrets {
		expected := signature(value, secret)
		if subtle.ConstantTimeCompare([]byte(mac), []byte(expected)) == 1 {
			return value, true
		}
	}
	return "", false
}

func signature(value, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write([]byte(value))
	return base64.RawStdEncoding.EncodeToString(h.Sum(nil))
}

// SetSigned writes a signed cookie. The value is URL-encoded the same way
// gin's SetCookie does, so Parser decodes it back.
func SetSigned(c *gin.Context, secret string, ck *http.Cookie) {
	out := *ck
	out.Value = url.QueryEscape(signedPrefix + Sign(ck.Value, secret))
	if out.Path == "" {
		out.Path = "/"
	}
	http.SetCookie(c.Writer, &out)
}
