package middleware

import (
	"errors"
	"net/http"

	"github.com/kart-io/ginsvc/pkg/options"
	"github.com/spf13/pflag"
)

var _ Config = (*CORSOptions)(nil)

// CORSOptions defines CORS middleware options.
type CORSOptions struct {
	AllowOrigins     []string `json:"allow-origins" mapstructure:"allow-origins"`
	AllowMethods     []string `json:"allow-methods" mapstructure:"allow-methods"`
	AllowHeaders     []string `json:"allow-headers" mapstructure:"allow-headers"`
	ExposeHeaders    []string `json:"expose-headers" mapstructure:"expose-headers"`
	AllowCredentials bool     `json:"allow-credentials" mapstructure:"allow-credentials"`
	// MaxAge 预检请求缓存时间（秒），0 表示不发送 Access-Control-Max-Age。
	MaxAge int `json:"max-age" mapstructure:"max-age" validate:"gte=0"`
	// Debug 打开 rs/cors 的调试日志。
	Debug bool `json:"debug" mapstructure:"debug"`
}

// NewCORSOptions creates default CORS options. The defaults allow any
// origin with the common methods, like the cors() defaults of most
// frameworks.
func NewCORSOptions() *CORSOptions {
	return &CORSOptions{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete,
		},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
	}
}

// AddFlags adds flags for CORS options to the specified FlagSet.
func (o *CORSOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...) + "middleware.cors."

	fs.StringSliceVar(&o.AllowOrigins, prefix+"allow-origins", o.AllowOrigins, "CORS allowed origins.")
	fs.StringSliceVar(&o.AllowMethods, prefix+"allow-methods", o.AllowMethods, "CORS allowed methods.")
	fs.StringSliceVar(&o.AllowHeaders, prefix+"allow-headers", o.AllowHeaders, "CORS allowed headers.")
	fs.StringSliceVar(&o.ExposeHeaders, prefix+"expose-headers", o.ExposeHeaders, "CORS exposed headers.")
	fs.BoolVar(&o.AllowCredentials, prefix+"allow-credentials", o.AllowCredentials, "CORS allow credentials.")
	fs.IntVar(&o.MaxAge, prefix+"max-age", o.MaxAge, "CORS preflight max age in seconds.")
}

// Validate validates the CORS options.
func (o *CORSOptions) Validate() []error {
	if o == nil {
		return nil
	}
	errs := options.ValidateStruct("middleware.cors.", o)
	if len(o.AllowOrigins) == 0 {
		errs = append(errs, errors.New("middleware.cors.allow-origins: must be explicitly configured, empty list not allowed"))
	}
	if o.AllowCredentials {
		for _, origin := range o.AllowOrigins {
			if origin == "*" {
				errs = append(errs, errors.New("middleware.cors: wildcard origin cannot be combined with allow-credentials"))
				break
			}
		}
	}
	return errs
}

// Complete completes the CORS options with defaults.
func (o *CORSOptions) Complete() error {
	return nil
}
