package middleware

import (
	"errors"

	"github.com/kart-io/ginsvc/pkg/options"
	"github.com/spf13/pflag"
)

var _ Config = (*MetricsOptions)(nil)

// MetricsOptions defines metrics options.
type MetricsOptions struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Path      string `json:"path" mapstructure:"path" validate:"omitempty,startswith=/"`
	Namespace string `json:"namespace" mapstructure:"namespace" validate:"required_if=Enabled true"`
	Subsystem string `json:"subsystem" mapstructure:"subsystem"`
}

// NewMetricsOptions creates default metrics options (disabled).
func NewMetricsOptions() *MetricsOptions {
	return &MetricsOptions{
		Path:      "/metrics",
		Namespace: "ginsvc",
		Subsystem: "http",
	}
}

// AddFlags adds flags for metrics options to the specified FlagSet.
func (o *MetricsOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...) + "middleware.metrics."

	fs.BoolVar(&o.Enabled, prefix+"enabled", o.Enabled, "Collect Prometheus metrics and expose them on the metrics path.")
	fs.StringVar(&o.Path, prefix+"path", o.Path, "Metrics endpoint path.")
	fs.StringVar(&o.Namespace, prefix+"namespace", o.Namespace, "Metrics namespace.")
	fs.StringVar(&o.Subsystem, prefix+"subsystem", o.Subsystem, "Metrics subsystem.")
}

// Validate validates the metrics options.
func (o *MetricsOptions) Validate() []error {
	if o == nil {
		return nil
	}
	errs := options.ValidateStruct("middleware.metrics.", o)
	if o.Enabled && o.Path == "" {
		errs = append(errs, errors.New("middleware.metrics.path: required when metrics are enabled"))
	}
	return errs
}

// Complete completes the metrics options with defaults.
func (o *MetricsOptions) Complete() error {
	return nil
}
