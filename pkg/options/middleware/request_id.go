package middleware

import (
	"github.com/kart-io/ginsvc/pkg/options"
	"github.com/spf13/pflag"
)

var _ Config = (*RequestIDOptions)(nil)

// RequestIDOptions defines request ID middleware options.
type RequestIDOptions struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Header  string `json:"header" mapstructure:"header" validate:"required_if=Enabled true"`
}

// NewRequestIDOptions creates default request ID middleware options.
func NewRequestIDOptions() *RequestIDOptions {
	return &RequestIDOptions{
		Enabled: true,
		Header:  "X-Request-ID",
	}
}

// AddFlags adds flags for request ID options to the specified FlagSet.
func (o *RequestIDOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...) + "middleware.request-id."

	fs.BoolVar(&o.Enabled, prefix+"enabled", o.Enabled, "Attach a ULID request ID to every request.")
	fs.StringVar(&o.Header, prefix+"header", o.Header, "Request ID header name.")
}

// Validate validates the request ID options.
func (o *RequestIDOptions) Validate() []error {
	if o == nil {
		return nil
	}
	return options.ValidateStruct("middleware.request-id.", o)
}

// Complete completes the request ID options with defaults.
func (o *RequestIDOptions) Complete() error {
	return nil
}
