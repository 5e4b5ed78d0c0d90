package middleware

import (
	"github.com/kart-io/ginsvc/pkg/options"
	"github.com/spf13/pflag"
)

var _ Config = (*AccessLogOptions)(nil)

// AccessLogOptions defines access log middleware options.
type AccessLogOptions struct {
	Enabled   bool     `json:"enabled" mapstructure:"enabled"`
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`
}

// NewAccessLogOptions creates default access log middleware options.
func NewAccessLogOptions() *AccessLogOptions {
	return &AccessLogOptions{
		Enabled:   true,
		SkipPaths: []string{"/metrics"},
	}
}

// AddFlags adds flags for access log options to the specified FlagSet.
func (o *AccessLogOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...) + "middleware.access-log."

	fs.BoolVar(&o.Enabled, prefix+"enabled", o.Enabled, "Log one structured line per request.")
	fs.StringSliceVar(&o.SkipPaths, prefix+"skip-paths", o.SkipPaths, "Paths to skip logging.")
}

// Validate validates the access log options.
func (o *AccessLogOptions) Validate() []error {
	return nil
}

// Complete completes the access log options with defaults.
func (o *AccessLogOptions) Complete() error {
	return nil
}
