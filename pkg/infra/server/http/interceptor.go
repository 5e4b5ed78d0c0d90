package http

import (
	"net/http"
	"net/url"

	"github.com/kart-io/ginsvc/pkg/infra/appctx"
	apierrors "github.com/kart-io/ginsvc/pkg/utils/errors"
	"github.com/kart-io/ginsvc/pkg/utils/response"
)

// RequestInfo is a snapshot of the request handed to interceptors.
type RequestInfo struct {
	// URL is scheme://host followed by the original request URI.
	URL string
	// Method is the HTTP method.
	Method string
	// Path is the URL path without the query string.
	Path string
	// Body is the parsed body (map[string]any, []any, form values) or nil.
	Body any
	// Query holds the query parameters.
	Query url.Values
	// Headers is a copy of the request headers.
	Headers http.Header
	// RequestID is the request ID when the request ID middleware is enabled.
	RequestID string
}

// NotFoundResult is what an On404 interceptor returns.
type NotFoundResult struct {
	Message string
	Code    int
}

// ErrorResult is what an OnError interceptor returns.
type ErrorResult struct {
	Message string
	Code    int
	// Error is sent as the envelope's errorBody.
	Error any
	// StatusCode is the HTTP status; 0 means 500.
	StatusCode int
}

// Hook signatures.
type (
	// SuccessHook observes every success envelope.
	SuccessHook func(info RequestInfo, env *response.Envelope, srv *Server, app *appctx.Context)
	// FailureHook observes every failure envelope. detail is the error that
	// caused it, nil for envelopes built by handlers or the 404 handler.
	FailureHook func(info RequestInfo, env *response.Envelope, srv *Server, app *appctx.Context, detail error)
	// NotFoundHook decides the 404 envelope.
	NotFoundHook func(info RequestInfo, srv *Server, app *appctx.Context) NotFoundResult
	// ErrorHook decides the envelope and status for a signaled error or panic.
	ErrorHook func(info RequestInfo, err error, srv *Server, app *appctx.Context) ErrorResult
	// ConnectionHook observes the listener opening and closing.
	ConnectionHook func(host string, port int, srv *Server, app *appctx.Context)
)

// Interceptors holds at most one function per hook. Nil hooks use the
// defaults.
type Interceptors struct {
	OnSuccessResponse SuccessHook
	OnFailedResponse  FailureHook
	On404             NotFoundHook
	OnError           ErrorHook
	OnReady           ConnectionHook
	OnDisconnected    ConnectionHook
}

func defaultNotFoundResult() NotFoundResult {
	return NotFoundResult{
		Message: apierrors.MessagePageNotFound,
		Code:    apierrors.CodePageNotFound,
	}
}

// defaultErrorResult honours a FailedResponse anywhere in the chain and
// hides everything else behind the unhandled error.
func defaultErrorResult(err error) ErrorResult {
	if fr, ok := apierrors.As(err); ok {
		return ErrorResult{
			Message:    fr.Message,
			Code:       fr.Code,
			Error:      fr.ErrBody,
			StatusCode: fr.HTTPStatus(),
		}
	}
	return ErrorResult{
		Message:    apierrors.ErrUnhandled.Message,
		Code:       apierrors.ErrUnhandled.Code,
		StatusCode: apierrors.ErrUnhandled.HTTPStatus(),
	}
}
