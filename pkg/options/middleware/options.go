package middleware

import (
	"github.com/kart-io/ginsvc/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options 聚合 HTTP 适配器安装的所有中间件配置。
//
// CORS、SecurityHeaders、BodyParser 始终安装，nil 时使用默认值。
// Cookie 为 nil 时 cookie 解析器只解析未签名 cookie。
// RequestID、AccessLog、RateLimit、Metrics 由各自的 Enabled 字段控制。
type Options struct {
	CORS            *CORSOptions            `json:"cors" mapstructure:"cors"`
	SecurityHeaders *SecurityHeadersOptions `json:"security-headers" mapstructure:"security-headers"`
	Cookie          *CookieOptions          `json:"cookie" mapstructure:"cookie"`
	BodyParser      *BodyParserOptions      `json:"body-parser" mapstructure:"body-parser"`
	RequestID       *RequestIDOptions       `json:"request-id" mapstructure:"request-id"`
	AccessLog       *AccessLogOptions       `json:"access-log" mapstructure:"access-log"`
	RateLimit       *RateLimitOptions       `json:"rate-limit" mapstructure:"rate-limit"`
	Metrics         *MetricsOptions         `json:"metrics" mapstructure:"metrics"`

	// cookie flags land here until Complete sees one of them set.
	cookieFlags  *CookieOptions
	cookieFS     *pflag.FlagSet
	cookiePrefix string
}

// Option is a function that configures Options.
type Option func(*Options)

// NewOptions 创建默认中间件选项。Cookie 默认不配置。
func NewOptions() *Options {
	return &Options{
		CORS:            NewCORSOptions(),
		SecurityHeaders: NewSecurityHeadersOptions(),
		BodyParser:      NewBodyParserOptions(),
		RequestID:       NewRequestIDOptions(),
		AccessLog:       NewAccessLogOptions(),
		RateLimit:       NewRateLimitOptions(),
		Metrics:         NewMetricsOptions(),
	}
}

func (o *Options) configs() []Config {
	var cfgs []Config
	// 跳过 nil 指针，避免接口持有 typed nil
	if o.CORS != nil {
		cfgs = append(cfgs, o.CORS)
	}
	if o.SecurityHeaders != nil {
		cfgs = append(cfgs, o.SecurityHeaders)
	}
	if o.Cookie != nil {
		cfgs = append(cfgs, o.Cookie)
	}
	if o.BodyParser != nil {
		cfgs = append(cfgs, o.BodyParser)
	}
	if o.RequestID != nil {
		cfgs = append(cfgs, o.RequestID)
	}
	if o.AccessLog != nil {
		cfgs = append(cfgs, o.AccessLog)
	}
	if o.RateLimit != nil {
		cfgs = append(cfgs, o.RateLimit)
	}
	if o.Metrics != nil {
		cfgs = append(cfgs, o.Metrics)
	}
	return cfgs
}

// AddFlags adds flags for every configured middleware. Without a cookie
// section the cookie flags are still registered, and setting any of them
// supplies the section.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	for _, cfg := range o.configs() {
		cfg.AddFlags(fs, prefixes...)
	}
	if o.Cookie == nil {
		o.cookieFlags = NewCookieOptions()
		o.cookieFlags.AddFlags(fs, prefixes...)
		o.cookieFS = fs
		o.cookiePrefix = options.Join(prefixes...) + "middleware.cookie."
	}
}

// applyCookieFlags copies the cookie flags set on the command line into the
// cookie section, creating it when needed.
func (o *Options) applyCookieFlags() {
	if o.cookieFlags == nil || o.cookieFS == nil {
		return
	}
	changed := func(name string) bool {
		return o.cookieFS.Changed(o.cookiePrefix + name)
	}
	if !changed("secret") && !changed("secrets") && !changed("decode") {
		return
	}
	if o.Cookie == nil {
		o.Cookie = NewCookieOptions()
	}
	if changed("secret") {
		o.Cookie.Secret = o.cookieFlags.Secret
	}
	if changed("secrets") {
		o.Cookie.Secrets = cloneStrings(o.cookieFlags.Secrets)
	}
	if changed("decode") {
		o.Cookie.Decode = o.cookieFlags.Decode
	}
}

// Validate validates every configured middleware.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	for _, cfg := range o.configs() {
		errs = append(errs, cfg.Validate()...)
	}
	return errs
}

// Complete fills nil sections with defaults and merges cookie flags. A
// cookie section stays nil unless it was supplied.
func (o *Options) Complete() error {
	if o.CORS == nil {
		o.CORS = NewCORSOptions()
	}
	if o.SecurityHeaders == nil {
		o.SecurityHeaders = NewSecurityHeadersOptions()
	}
	if o.BodyParser == nil {
		o.BodyParser = NewBodyParserOptions()
	}
	if o.RequestID == nil {
		o.RequestID = &RequestIDOptions{}
	}
	if o.AccessLog == nil {
		o.AccessLog = &AccessLogOptions{}
	}
	if o.RateLimit == nil {
		o.RateLimit = NewRateLimitOptions()
	}
	if o.Metrics == nil {
		o.Metrics = NewMetricsOptions()
	}
	o.applyCookieFlags()
	for _, cfg := range o.configs() {
		if err := cfg.Complete(); err != nil {
			return err
		}
	}
	return nil
}

// WithCookieSecret enables signed cookies.
func WithCookieSecret(secret string, previous ...string) Option {
	return func(o *Options) {
		if o.Cookie == nil {
			o.Cookie = NewCookieOptions()
		}
		o.Cookie.Secret = secret
		o.Cookie.Secrets = previous
	}
}

// WithCORS replaces the CORS options.
func WithCORS(c *CORSOptions) Option {
	return func(o *Options) {
		o.CORS = c
	}
}

// WithRateLimit enables the rate limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *Options) {
		if o.RateLimit == nil {
			o.RateLimit = NewRateLimitOptions()
		}
		o.RateLimit.Enabled = true
		o.RateLimit.RequestsPerSecond = rps
		o.RateLimit.Burst = burst
	}
}

// WithMetrics enables metrics collection.
func WithMetrics() Option {
	return func(o *Options) {
		if o.Metrics == nil {
			o.Metrics = NewMetricsOptions()
		}
		o.Metrics.Enabled = true
	}
}

// ApplyOptions applies the given options.
func (o *Options) ApplyOptions(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// DeepCopy returns a copy that shares no mutable state with o.
func (o *Options) DeepCopy() *Options {
	if o == nil {
		return nil
	}
	out := &Options{}
	if o.CORS != nil {
		c := *o.CORS
		c.AllowOrigins = cloneStrings(o.CORS.AllowOrigins)
		c.AllowMethods = cloneStrings(o.CORS.AllowMethods)
		c.AllowHeaders = cloneStrings(o.CORS.AllowHeaders)
		c.ExposeHeaders = cloneStrings(o.CORS.ExposeHeaders)
		out.CORS = &c
	}
	if o.SecurityHeaders != nil {
		c := *o.SecurityHeaders
		out.SecurityHeaders = &c
	}
	if o.Cookie != nil {
		c := *o.Cookie
		c.Secrets = cloneStrings(o.Cookie.Secrets)
		out.Cookie = &c
	}
	if o.BodyParser != nil {
		c := *o.BodyParser
		out.BodyParser = &c
	}
	if o.RequestID != nil {
		c := *o.RequestID
		out.RequestID = &c
	}
	if o.AccessLog != nil {
		c := *o.AccessLog
		c.SkipPaths = cloneStrings(o.AccessLog.SkipPaths)
		out.AccessLog = &c
	}
	if o.RateLimit != nil {
		c := *o.RateLimit
		c.SkipPaths = cloneStrings(o.RateLimit.SkipPaths)
		out.RateLimit = &c
	}
	if o.Metrics != nil {
		c := *o.Metrics
		out.Metrics = &c
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
