// Package middleware holds request-scoped middleware shared by every
// adapter instance; specialised middleware live in the subpackages.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/ginsvc/pkg/infra/middleware/common"
	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
)

// RequestID returns a middleware that adds a request ID with default options.
func RequestID() gin.HandlerFunc {
	return RequestIDWithOptions(*mwopts.NewRequestIDOptions())
}

// RequestIDWithOptions reuses an incoming request ID header or generates a
// ULID, then exposes it on the response header, the gin context and the
// request's context.Context.
func RequestIDWithOptions(opts mwopts.RequestIDOptions) gin.HandlerFunc {
	header := opts.Header
	if header == "" {
		header = common.HeaderXRequestID
	}

	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" || len(id) > 128 {
			id = common.NewRequestID()
		}

		c.Set(common.KeyRequestID, id)
		c.Header(header, id)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), id))

		c.Next()
	}
}
