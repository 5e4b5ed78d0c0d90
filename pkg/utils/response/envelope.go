// Package response defines the JSON envelope every adapter response uses.
//
// Success:
//
//	{"success":true,"data":<any>,"message":<string>}
//
// Failure:
//
//	{"success":false,"code":<int>,"message":<string>,"errorBody":<any>}
//
// data and message are omitted from success envelopes when empty. Failure
// envelopes always carry code and message, errorBody only when non-nil.
package response

import (
	"github.com/kart-io/ginsvc/pkg/utils/errors"
	"github.com/kart-io/ginsvc/pkg/utils/json"
)

// Envelope is the uniform response wrapper.
type Envelope struct {
	Success   bool
	Data      any
	Message   string
	Code      int
	ErrorBody any
}

type successWire struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type failureWire struct {
	Success   bool   `json:"success"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorBody any    `json:"errorBody,omitempty"`
}

// Success builds a success envelope.
func Success(data any, message string) *Envelope {
	return &Envelope{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// Failure builds a failure envelope.
func Failure(code int, message string, errBody any) *Envelope {
	return &Envelope{
		Code:      code,
		Message:   message,
		ErrorBody: errBody,
	}
}

// FromFailedResponse builds a failure envelope from a FailedResponse.
func FromFailedResponse(e *errors.FailedResponse) *Envelope {
	if e == nil {
		return FromFailedResponse(errors.ErrUnhandled)
	}
	return Failure(e.Code, e.Message, e.ErrBody)
}

// MarshalJSON implements json.Marshaler with the success/failure shapes.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	if e.Success {
		return json.Marshal(successWire{
			Success: true,
			Data:    e.Data,
			Message: e.Message,
		})
	}
	return json.Marshal(failureWire{
		Code:      e.Code,
		Message:   e.Message,
		ErrorBody: e.ErrorBody,
	})
}

// UnmarshalJSON decodes either shape.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var wire struct {
		Success   bool   `json:"success"`
		Data      any    `json:"data"`
		Message   string `json:"message"`
		Code      int    `json:"code"`
		ErrorBody any    `json:"errorBody"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*e = Envelope{
		Success:   wire.Success,
		Data:      wire.Data,
		Message:   wire.Message,
		Code:      wire.Code,
		ErrorBody: wire.ErrorBody,
	}
	return nil
}
