package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	e := New(12, "boom")
	assert.Equal(t, 12, e.Code)
	assert.Equal(t, "boom", e.Message)
	assert.Equal(t, http.StatusInternalServerError, e.StatusCode)
	assert.Nil(t, e.ErrBody)
	assert.Empty(t, e.Reason)
	assert.Nil(t, e.Unwrap())
}

func TestWithMethodsCopy(t *testing.T) {
	base := New(1, "base")
	cause := stderrors.New("disk full")

	derived := base.
		WithBody(map[string]string{"field": "name"}).
		WithStatus(http.StatusConflict).
		WithCause(cause).
		WithMessage("changed")

	assert.Equal(t, "base", base.Message)
	assert.Nil(t, base.ErrBody)
	assert.Equal(t, http.StatusInternalServerError, base.StatusCode)

	assert.Equal(t, "changed", derived.Message)
	assert.Equal(t, http.StatusConflict, derived.HTTPStatus())
	assert.Equal(t, "disk full", derived.Reason)
	assert.ErrorIs(t, derived, cause)
}

func TestWithReason(t *testing.T) {
	tests := []struct {
		name   string
		reason any
		want   string
	}{
		{name: "error", reason: stderrors.New("bad"), want: "bad"},
		{name: "string", reason: "plain", want: "plain"},
		{name: "number", reason: 42, want: "42"},
		{name: "nil", reason: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(1, "x").WithReason(tt.reason).Reason)
		})
	}
}

func TestHTTPStatusFallback(t *testing.T) {
	e := &FailedResponse{Code: 3}
	assert.Equal(t, DefaultStatusCode, e.HTTPStatus())
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrInvalidBody.WithCause(stderrors.New("eof")))

	fr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidBody, fr.Code)
	assert.Equal(t, http.StatusBadRequest, fr.HTTPStatus())
	assert.True(t, stderrors.Is(wrapped, ErrInvalidBody))

	_, ok = As(stderrors.New("plain"))
	assert.False(t, ok)
	_, ok = As(nil)
	assert.False(t, ok)
}

func TestFormat(t *testing.T) {
	e := New(-7, "nope").WithCause(stderrors.New("root"))
	assert.Equal(t, "failed response -7: nope: root", fmt.Sprintf("%v", e))
	assert.Contains(t, fmt.Sprintf("%+v", e), "code=-7 status=500")
	assert.Contains(t, fmt.Sprintf("%+v", e), "root")
}

func TestRegistry(t *testing.T) {
	fr, ok := Lookup(CodeUnhandled)
	require.True(t, ok)
	assert.Equal(t, MessageUnhandled, fr.Message)

	fr, ok = Lookup(CodePageNotFound)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, fr.StatusCode)

	assert.Panics(t, func() { Register(New(CodeUnhandled, "dup")) })
	assert.Contains(t, Codes(), CodeTooManyRequests)
}
