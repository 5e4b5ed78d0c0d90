// Package http provides HTTP server configuration options.
package http

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/ginsvc/pkg/options"
	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

const (
	// DefaultPort is used when no port is configured.
	DefaultPort = 3000
	// DefaultHost is used when no host is configured.
	DefaultHost = "localhost"
)

// Options contains the HTTP server configuration.
type Options struct {
	// Port to listen on; 0 picks an ephemeral port.
	Port int `json:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	// Host to bind.
	Host string `json:"host" mapstructure:"host" validate:"required"`
	// Mode is the gin mode (debug, release, test).
	Mode string `json:"mode" mapstructure:"mode" validate:"oneof=debug release test"`
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `json:"read-timeout" mapstructure:"read-timeout" validate:"gte=0"`
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout" validate:"gte=0"`
	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `json:"idle-timeout" mapstructure:"idle-timeout" validate:"gte=0"`
	// ShutdownTimeout bounds the graceful close of the listener.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout" validate:"gt=0"`
	// TrustedProxies lists the proxy IPs or CIDRs whose forwarding headers
	// are believed when resolving the client IP. Empty trusts none.
	TrustedProxies []string `json:"trusted-proxies" mapstructure:"trusted-proxies" validate:"dive,cidr|ip"`

	// Middleware holds the middleware configuration.
	Middleware *mwopts.Options `json:"middleware" mapstructure:"middleware" validate:"-"`
}

// Option is a function that configures Options.
type Option func(*Options)

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		Port:            DefaultPort,
		Host:            DefaultHost,
		Mode:            gin.ReleaseMode,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Middleware:      mwopts.NewOptions(),
	}
}

// AddFlags adds flags for HTTP options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...) + "http."

	fs.IntVar(&o.Port, prefix+"port", o.Port, "Port the HTTP server listens on (0 picks a free port).")
	fs.StringVar(&o.Host, prefix+"host", o.Host, "Host the HTTP server binds to.")
	fs.StringVar(&o.Mode, prefix+"mode", o.Mode, "Gin mode: debug, release or test.")
	fs.DurationVar(&o.ReadTimeout, prefix+"read-timeout", o.ReadTimeout, "Timeout for reading the entire request.")
	fs.DurationVar(&o.WriteTimeout, prefix+"write-timeout", o.WriteTimeout, "Timeout before timing out writes of the response.")
	fs.DurationVar(&o.IdleTimeout, prefix+"idle-timeout", o.IdleTimeout, "Maximum amount of time to wait for the next request.")
	fs.DurationVar(&o.ShutdownTimeout, prefix+"shutdown-timeout", o.ShutdownTimeout, "Maximum time to wait for in-flight requests when closing the listener.")
	fs.StringSliceVar(&o.TrustedProxies, prefix+"trusted-proxies", o.TrustedProxies, "Proxy IPs or CIDRs trusted for X-Forwarded-For and X-Real-IP.")

	if o.Middleware == nil {
		o.Middleware = mwopts.NewOptions()
	}
	o.Middleware.AddFlags(fs, prefixes...)
}

// Validate validates the HTTP options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	errs := options.ValidateStruct("http.", o)
	if o.Middleware != nil {
		errs = append(errs, o.Middleware.Validate()...)
	}
	return errs
}

// Complete completes the HTTP options with defaults.
func (o *Options) Complete() error {
	if o.Host == "" {
		o.Host = DefaultHost
	}
	if o.Mode == "" {
		o.Mode = gin.ReleaseMode
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	if o.Middleware == nil {
		o.Middleware = mwopts.NewOptions()
	}
	return o.Middleware.Complete()
}

// Addr returns host:port.
func (o *Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// DeepCopy returns a copy that shares no mutable state with o.
func (o *Options) DeepCopy() *Options {
	if o == nil {
		return nil
	}
	out := *o
	if o.TrustedProxies != nil {
		out.TrustedProxies = append([]string(nil), o.TrustedProxies...)
	}
	if o.Middleware != nil {
		out.Middleware = o.Middleware.DeepCopy()
	}
	return &out
}

// String implements fmt.Stringer.
func (o *Options) String() string {
	return fmt.Sprintf("http(%s, mode=%s)", o.Addr(), o.Mode)
}

// WithPort sets the listen port.
func WithPort(port int) Option {
	return func(o *Options) {
		o.Port = port
	}
}

// WithHost sets the bind host.
func WithHost(host string) Option {
	return func(o *Options) {
		o.Host = host
	}
}

// WithShutdownTimeout sets the graceful close timeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ShutdownTimeout = d
	}
}

// WithMiddleware applies middleware options.
func WithMiddleware(opts ...mwopts.Option) Option {
	return func(o *Options) {
		if o.Middleware == nil {
			o.Middleware = mwopts.NewOptions()
		}
		o.Middleware.ApplyOptions(opts...)
	}
}

// ApplyOptions applies the given options to the Options.
func (o *Options) ApplyOptions(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}
