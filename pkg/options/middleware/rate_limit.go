package middleware

import (
	"github.com/kart-io/ginsvc/pkg/options"
	"github.com/spf13/pflag"
)

var _ Config = (*RateLimitOptions)(nil)

// RateLimitOptions 定义限流中间件的配置选项（令牌桶，按客户端 IP）。
type RateLimitOptions struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// RequestsPerSecond 每个客户端每秒补充的令牌数。
	RequestsPerSecond float64 `json:"requests-per-second" mapstructure:"requests-per-second" validate:"gt=0"`

	// Burst 令牌桶容量。
	Burst int `json:"burst" mapstructure:"burst" validate:"gt=0"`

	// SkipPaths 是跳过限流的路径列表。
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`

	// MaxClients 内存中最多跟踪的客户端数量，超出时清空重建。
	MaxClients int `json:"max-clients" mapstructure:"max-clients" validate:"gt=0"`
}

// NewRateLimitOptions 创建默认的限流选项（默认关闭）。
func NewRateLimitOptions() *RateLimitOptions {
	return &RateLimitOptions{
		Enabled:           false,
		RequestsPerSecond: 10,
		Burst:             20,
		SkipPaths:         []string{},
		MaxClients:        10000,
	}
}

// AddFlags 为限流选项添加标志到指定的 FlagSet。
func (o *RateLimitOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...) + "middleware.rate-limit."

	fs.BoolVar(&o.Enabled, prefix+"enabled", o.Enabled, "Enable per-client rate limiting.")
	fs.Float64Var(&o.RequestsPerSecond, prefix+"requests-per-second", o.RequestsPerSecond, "Sustained requests per second per client.")
	fs.IntVar(&o.Burst, prefix+"burst", o.Burst, "Maximum burst size per client.")
	fs.StringSliceVar(&o.SkipPaths, prefix+"skip-paths", o.SkipPaths, "List of paths to skip rate limiting.")
	fs.IntVar(&o.MaxClients, prefix+"max-clients", o.MaxClients, "Maximum number of tracked clients.")
}

// Validate 验证限流选项。
func (o *RateLimitOptions) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}
	return options.ValidateStruct("middleware.rate-limit.", o)
}

// Complete 完成限流选项的默认值设置。
func (o *RateLimitOptions) Complete() error {
	return nil
}
