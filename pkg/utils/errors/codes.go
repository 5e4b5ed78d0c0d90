package errors

import "net/http"

// Default messages used by the adapter when no interceptor overrides them.
const (
	MessagePageNotFound = "Page not found"
	MessageUnhandled    = "Whops! Something went wrong!"
)

// Default codes.
const (
	CodePageNotFound    = 0
	CodeInvalidBody     = -40
	CodeBodyTooLarge    = -41
	CodeTooManyRequests = -42
	CodeUnhandled       = -50
)

var (
	// ErrPageNotFound is the default result for unmatched routes.
	ErrPageNotFound = Register(New(CodePageNotFound, MessagePageNotFound).WithStatus(http.StatusNotFound))

	// ErrUnhandled is the default result for route-signaled errors.
	ErrUnhandled = Register(New(CodeUnhandled, MessageUnhandled))

	// ErrInvalidBody is returned by the body parsers for malformed input.
	ErrInvalidBody = Register(New(CodeInvalidBody, "Invalid request body").WithStatus(http.StatusBadRequest))

	// ErrBodyTooLarge is returned by the body parsers when a limit is exceeded.
	ErrBodyTooLarge = Register(New(CodeBodyTooLarge, "Request body too large").WithStatus(http.StatusRequestEntityTooLarge))

	// ErrTooManyRequests is returned by the rate limiter.
	ErrTooManyRequests = Register(New(CodeTooManyRequests, "Too many requests").WithStatus(http.StatusTooManyRequests))
)
