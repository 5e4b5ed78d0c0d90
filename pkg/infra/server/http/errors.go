package http

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/ginsvc/pkg/infra/middleware/common"
)

var (
	// ErrInvalidTransition is returned when a lifecycle phase is called out
	// of order.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	// ErrInterceptorsFrozen is returned by SetInterceptors once the adapter
	// has started mounting.
	ErrInterceptorsFrozen = errors.New("interceptors are frozen after mount")
	// ErrRouteRegistration wraps panics raised while registering routes.
	ErrRouteRegistration = errors.New("route registration failed")
)

// errorFunnel runs the rest of the chain and turns the last signaled error
// or a panic into a failure envelope. Errors raised after the response was
// written are only logged.
func (s *Server) errorFunnel() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// 客户端断开时由 net/http 处理
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err := panicError(rec)
			logger.Errorw("Recovered from panic",
				"name", s.name,
				"path", c.Request.URL.Path,
				"request_id", common.RequestID(c),
				"error", err,
				"stack", string(debug.Stack()),
			)
			c.Abort()
			s.handleError(c, err)
		}()

		c.Next()

		if last := c.Errors.Last(); last != nil {
			s.handleError(c, last.Err)
		}
	}
}

func (s *Server) handleError(c *gin.Context, err error) {
	if c.Writer.Written() {
		logger.Warnw("Error signaled after the response was written",
			"name", s.name,
			"path", c.Request.URL.Path,
			"request_id", common.RequestID(c),
			"error", err,
		)
		return
	}

	info := NewRequestInfo(c)
	var res ErrorResult
	if hook := s.interceptors.OnError; hook != nil {
		res = hook(info, err, s, s.app)
	} else {
		res = defaultErrorResult(err)
	}
	status := res.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	env := s.buildFailure(c, info, res.Code, res.Message, res.Error, err)
	WriteEnvelope(c, status, env)
}

// notFound is the terminal handler for unmatched routes.
func (s *Server) notFound(c *gin.Context) {
	info := NewRequestInfo(c)
	res := defaultNotFoundResult()
	if hook := s.interceptors.On404; hook != nil {
		res = hook(info, s, s.app)
	}
	env := s.buildFailure(c, info, res.Code, res.Message, nil, nil)
	WriteEnvelope(c, http.StatusNotFound, env)
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", rec)
}
