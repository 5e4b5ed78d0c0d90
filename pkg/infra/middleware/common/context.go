// Package common provides helpers shared by the middleware subpackages.
package common

import (
	"context"
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// HeaderXRequestID is the default request ID header.
const HeaderXRequestID = "X-Request-ID"

// Gin context keys written by the middleware.
const (
	// KeyRequestID holds the request ID string.
	KeyRequestID = "ginsvc.request_id"
	// KeyBody holds the parsed request body.
	KeyBody = "ginsvc.body"
	// KeyCookies holds map[string]string of plain cookies.
	KeyCookies = "ginsvc.cookies"
	// KeySignedCookies holds map[string]string of verified signed cookies.
	KeySignedCookies = "ginsvc.signed_cookies"
)

// RequestIDKey is the context.Context key for the request ID.
type RequestIDKey struct{}

// GetRequestID returns the request ID from ctx, or "".
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID stores the request ID in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, requestID)
}

// RequestID returns the request ID recorded on c, or "".
func RequestID(c *gin.Context) string {
	return c.GetString(KeyRequestID)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewRequestID returns a new ULID string. IDs from one process sort by
// creation time.
func NewRequestID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Scheme returns "https" for TLS or X-Forwarded-Proto: https requests,
// otherwise "http".
func Scheme(c *gin.Context) string {
	if c.Request.TLS != nil {
		return "https"
	}
	if strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		return "https"
	}
	return "http"
}

// AbortWithError records err on c and stops the handler chain without
// writing a response. The adapter's error handler renders it.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
