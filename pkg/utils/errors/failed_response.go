// Package errors defines FailedResponse, the structured error that route
// handlers and middleware hand to the adapter's error path.
//
// A FailedResponse carries everything the error handler needs to render a
// failure envelope:
//
//	code       application error code (envelope "code")
//	message    human readable message (envelope "message")
//	errBody    optional payload (envelope "errorBody")
//	statusCode HTTP status, 500 when unset
//	reason     snapshot of the wrapped cause taken at construction
//
// Usage:
//
//	// predefined
//	return errors.ErrInvalidBody.WithCause(err)
//
//	// ad hoc
//	return errors.New(-51, "quota exhausted").WithStatus(http.StatusForbidden)
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// DefaultStatusCode is used when a FailedResponse has no explicit status.
const DefaultStatusCode = http.StatusInternalServerError

// FailedResponse is an error that maps onto a failure envelope.
// Values are immutable; the With* methods return modified copies.
type FailedResponse struct {
	// Code is the application error code.
	Code int `json:"code"`

	// Message is the human readable message.
	Message string `json:"message"`

	// ErrBody is an optional payload rendered as "errorBody".
	ErrBody any `json:"errorBody,omitempty"`

	// StatusCode is the HTTP status to respond with.
	StatusCode int `json:"-"`

	// Reason is the message or stack snapshot of the cause.
	Reason string `json:"-"`

	cause error
}

// New creates a FailedResponse with the default status code.
func New(code int, message string) *FailedResponse {
	return &FailedResponse{
		Code:       code,
		Message:    message,
		StatusCode: DefaultStatusCode,
	}
}

// Error implements the error interface.
func (e *FailedResponse) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("failed response %d: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("failed response %d: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *FailedResponse) Unwrap() error {
	return e.cause
}

// Is matches another FailedResponse with the same code.
func (e *FailedResponse) Is(target error) bool {
	t, ok := target.(*FailedResponse)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// HTTPStatus returns StatusCode, falling back to DefaultStatusCode.
func (e *FailedResponse) HTTPStatus() int {
	if e.StatusCode <= 0 {
		return DefaultStatusCode
	}
	return e.StatusCode
}

func (e *FailedResponse) clone() *FailedResponse {
	c := *e
	return &c
}

// WithCause returns a copy wrapping cause. The cause is snapshotted into
// Reason immediately so later mutation of the cause does not leak into logs.
func (e *FailedResponse) WithCause(cause error) *FailedResponse {
	c := e.clone()
	c.cause = cause
	c.Reason = reasonOf(cause)
	return c
}

// WithReason returns a copy whose Reason is built from an arbitrary value.
func (e *FailedResponse) WithReason(reason any) *FailedResponse {
	c := e.clone()
	if err, ok := reason.(error); ok {
		c.cause = err
	}
	c.Reason = reasonOf(reason)
	return c
}

// WithMessage returns a copy with a different message.
func (e *FailedResponse) WithMessage(msg string) *FailedResponse {
	c := e.clone()
	c.Message = msg
	return c
}

// WithMessagef returns a copy with a formatted message.
func (e *FailedResponse) WithMessagef(format string, args ...any) *FailedResponse {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithBody returns a copy carrying body as errorBody.
func (e *FailedResponse) WithBody(body any) *FailedResponse {
	c := e.clone()
	c.ErrBody = body
	return c
}

// WithStatus returns a copy with a different HTTP status.
func (e *FailedResponse) WithStatus(status int) *FailedResponse {
	c := e.clone()
	c.StatusCode = status
	return c
}

// Format supports %+v to include the reason.
func (e *FailedResponse) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "code=%d status=%d message=%q", e.Code, e.HTTPStatus(), e.Message)
			if e.Reason != "" {
				_, _ = fmt.Fprintf(s, "\n%s", e.Reason)
			}
			return
		}
		_, _ = fmt.Fprint(s, e.Error())
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// As extracts a FailedResponse from err's chain.
func As(err error) (*FailedResponse, bool) {
	if err == nil {
		return nil, false
	}
	var fr *FailedResponse
	if stderrors.As(err, &fr) {
		return fr, true
	}
	return nil, false
}

// reasonOf prefers a stack (%+v on errors that carry one), then the
// message, then the value's string form.
func reasonOf(reason any) string {
	switch r := reason.(type) {
	case nil:
		return ""
	case error:
		if full := fmt.Sprintf("%+v", r); full != "" {
			return full
		}
		return r.Error()
	case string:
		return r
	case fmt.Stringer:
		return r.String()
	default:
		return fmt.Sprint(r)
	}
}
