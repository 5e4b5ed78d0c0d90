// Package options contains flags and options for the ginsvc server.
package options

import (
	"fmt"

	"github.com/spf13/viper"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/ginsvc/pkg/app/cliflag"
	logopts "github.com/kart-io/ginsvc/pkg/options/logger"
	httpopts "github.com/kart-io/ginsvc/pkg/options/server/http"
)

// ServerOptions contains the configuration of the server.
type ServerOptions struct {
	// HTTPOptions configures the HTTP adapter and its middleware.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions configures the global logger.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// WatchConfig remounts the HTTP adapter when the config file changes.
	WatchConfig bool `json:"watch-config" mapstructure:"watch-config"`
}

// NewServerOptions creates ServerOptions with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions: httpopts.NewOptions(),
		LogOptions:  logopts.NewOptions(),
		WatchConfig: true,
	}
}

// Flags returns the flags grouped by section.
func (o *ServerOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))

	fs := fss.FlagSet("misc")
	fs.BoolVar(&o.WatchConfig, "watch-config", o.WatchConfig, "Remount the HTTP server when the config file changes.")

	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if o.HTTPOptions == nil {
		o.HTTPOptions = httpopts.NewOptions()
	}
	if o.LogOptions == nil {
		o.LogOptions = logopts.NewOptions()
	}
	if err := o.HTTPOptions.Complete(); err != nil {
		return err
	}
	return o.LogOptions.Complete()
}

// Validate checks whether the options are valid.
func (o *ServerOptions) Validate() error {
	var errs []error
	errs = append(errs, o.HTTPOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	return utilerrors.NewAggregate(errs)
}

// ReloadHTTP returns a copy of the HTTP options overlaid with the "http"
// section of v. Keys missing from v keep their current values.
func (o *ServerOptions) ReloadHTTP(v *viper.Viper) (*httpopts.Options, error) {
	next := o.HTTPOptions.DeepCopy()
	if err := v.UnmarshalKey("http", next); err != nil {
		return nil, fmt.Errorf("unmarshal http options: %w", err)
	}
	if err := next.Complete(); err != nil {
		return nil, err
	}
	if err := utilerrors.NewAggregate(next.Validate()); err != nil {
		return nil, err
	}
	return next, nil
}
