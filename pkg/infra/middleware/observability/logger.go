// Package observability provides access logging and Prometheus metrics
// middleware.
package observability

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/ginsvc/pkg/infra/middleware/common"
	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
)

// fieldsPool reuses the key/value slices handed to the logger.
var fieldsPool = sync.Pool{
	New: func() any {
		s := make([]any, 0, 16)
		return &s
	},
}

// AccessLog returns a middleware that logs HTTP requests with default options.
func AccessLog() gin.HandlerFunc {
	return AccessLogWithOptions(*mwopts.NewAccessLogOptions())
}

// AccessLogWithOptions logs one structured line per request after the
// chain finishes. Server errors log at error level, client errors at warn.
func AccessLogWithOptions(opts mwopts.AccessLogOptions) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := fieldsPool.Get().(*[]any)
		defer func() {
			*fields = (*fields)[:0]
			fieldsPool.Put(fields)
		}()

		status := c.Writer.Status()
		*fields = append(*fields,
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"remote_addr", c.ClientIP(),
			"latency", latency.String(),
			"latency_ms", latency.Milliseconds(),
			"bytes", c.Writer.Size(),
		)
		if id := common.RequestID(c); id != "" {
			*fields = append(*fields, "request_id", id)
		}
		if len(c.Errors) > 0 {
			*fields = append(*fields, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			logger.Errorw("HTTP Request", (*fields)...)
		case status >= 400:
			logger.Warnw("HTTP Request", (*fields)...)
		default:
			logger.Infow("HTTP Request", (*fields)...)
		}
	}
}
