package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/ginsvc/pkg/infra/appctx"
	"github.com/kart-io/ginsvc/pkg/infra/middleware/common"
	apierrors "github.com/kart-io/ginsvc/pkg/utils/errors"
	"github.com/kart-io/ginsvc/pkg/utils/json"
	"github.com/kart-io/ginsvc/pkg/utils/response"
)

const (
	keyServer = "ginsvc.server"
	keyApp    = "ginsvc.app"

	contentTypeJSON = "application/json; charset=utf-8"
)

// FromContext returns the adapter serving c, or nil when c did not come
// through an adapter.
func FromContext(c *gin.Context) *Server {
	if v, ok := c.Get(keyServer); ok {
		if s, ok := v.(*Server); ok {
			return s
		}
	}
	return nil
}

// AppContext returns the application context the serving adapter is
// mounted in, or nil.
func AppContext(c *gin.Context) *appctx.Context {
	if v, ok := c.Get(keyApp); ok {
		if app, ok := v.(*appctx.Context); ok {
			return app
		}
	}
	return nil
}

// SuccessResponse builds a success envelope and hands it to the
// OnSuccessResponse interceptor of the serving adapter. It does not write
// anything.
func SuccessResponse(c *gin.Context, data any, message string) *response.Envelope {
	env := response.Success(data, message)
	if s := FromContext(c); s != nil {
		s.observeSuccess(c, env)
	}
	return env
}

// FailureResponse builds a failure envelope and hands it to the
// OnFailedResponse interceptor of the serving adapter together with detail.
// It does not write anything.
func FailureResponse(c *gin.Context, code int, message string, errBody any, detail error) *response.Envelope {
	env := response.Failure(code, message, errBody)
	if s := FromContext(c); s != nil {
		s.observeFailure(c, nil, env, detail)
	}
	return env
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, data any, message string) {
	WriteEnvelope(c, http.StatusOK, SuccessResponse(c, data, message))
}

// Fail writes a failure envelope with the given HTTP status.
func Fail(c *gin.Context, status, code int, message string, errBody any) {
	WriteEnvelope(c, status, FailureResponse(c, code, message, errBody, nil))
}

// SignalError hands err to the adapter's error handler and stops the
// handler chain. Nothing is written until the chain unwinds.
func SignalError(c *gin.Context, err error) {
	common.AbortWithError(c, err)
}

// WriteEnvelope encodes env and writes it with status. An envelope that
// cannot be encoded is replaced by the unhandled-error envelope with 500.
func WriteEnvelope(c *gin.Context, status int, env *response.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		logger.Errorw("Failed to encode response envelope",
			"path", c.Request.URL.Path,
			"request_id", common.RequestID(c),
			"error", err,
		)
		status = apierrors.ErrUnhandled.HTTPStatus()
		data, _ = json.Marshal(response.FromFailedResponse(apierrors.ErrUnhandled))
	}
	c.Data(status, contentTypeJSON, data)
}
