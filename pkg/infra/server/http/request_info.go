package http

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/ginsvc/pkg/infra/middleware/bodyparser"
	"github.com/kart-io/ginsvc/pkg/infra/middleware/common"
)

// NewRequestInfo snapshots c's request.
func NewRequestInfo(c *gin.Context) RequestInfo {
	r := c.Request
	return RequestInfo{
		URL:       common.Scheme(c) + "://" + r.Host + r.URL.RequestURI(),
		Method:    r.Method,
		Path:      r.URL.Path,
		Body:      bodyparser.Body(c),
		Query:     r.URL.Query(),
		Headers:   r.Header.Clone(),
		RequestID: common.RequestID(c),
	}
}
