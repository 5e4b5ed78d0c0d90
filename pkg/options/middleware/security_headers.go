package middleware

import (
	"github.com/kart-io/ginsvc/pkg/options"
	"github.com/spf13/pflag"
)

var _ Config = (*SecurityHeadersOptions)(nil)

// SecurityHeadersOptions 定义安全头中间件的配置选项。
type SecurityHeadersOptions struct {
	// EnableHSTS 启用 Strict-Transport-Security 头（仅 HTTPS 请求）。
	EnableHSTS bool `json:"enable-hsts" mapstructure:"enable-hsts"`
	// HSTSMaxAge 是 HSTS max-age（秒）。
	HSTSMaxAge int `json:"hsts-max-age" mapstructure:"hsts-max-age" validate:"gte=0"`
	// HSTSIncludeSubdomains 在 HSTS 中包含子域。
	HSTSIncludeSubdomains bool `json:"hsts-include-subdomains" mapstructure:"hsts-include-subdomains"`
	// HSTSPreload 启用 HSTS 预加载。
	HSTSPreload bool `json:"hsts-preload" mapstructure:"hsts-preload"`

	// FrameOptions 是 X-Frame-Options 的值，空字符串表示不设置。
	FrameOptions string `json:"frame-options" mapstructure:"frame-options" validate:"omitempty,oneof=DENY SAMEORIGIN"`

	// EnableContentTypeOptions 启用 X-Content-Type-Options: nosniff。
	EnableContentTypeOptions bool `json:"enable-content-type-options" mapstructure:"enable-content-type-options"`

	// XSSProtection 是 X-XSS-Protection 的值。
	XSSProtection string `json:"xss-protection" mapstructure:"xss-protection"`

	// ContentSecurityPolicy 是 Content-Security-Policy 头的值。
	ContentSecurityPolicy string `json:"content-security-policy" mapstructure:"content-security-policy"`
	// ReferrerPolicy 是 Referrer-Policy 头的值。
	ReferrerPolicy string `json:"referrer-policy" mapstructure:"referrer-policy"`

	// CrossOriginOpenerPolicy 是 Cross-Origin-Opener-Policy 头的值。
	CrossOriginOpenerPolicy string `json:"cross-origin-opener-policy" mapstructure:"cross-origin-opener-policy"`
	// CrossOriginResourcePolicy 是 Cross-Origin-Resource-Policy 头的值。
	CrossOriginResourcePolicy string `json:"cross-origin-resource-policy" mapstructure:"cross-origin-resource-policy"`
	// DNSPrefetchControl 是 X-DNS-Prefetch-Control 头的值。
	DNSPrefetchControl string `json:"dns-prefetch-control" mapstructure:"dns-prefetch-control" validate:"omitempty,oneof=on off"`
}

// NewSecurityHeadersOptions 创建默认的安全头选项。
func NewSecurityHeadersOptions() *SecurityHeadersOptions {
	return &SecurityHeadersOptions{
		EnableHSTS:            true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,

		FrameOptions:             "SAMEORIGIN",
		EnableContentTypeOptions: true,
		XSSProtection:            "0",

		ContentSecurityPolicy:     "default-src 'self'",
		ReferrerPolicy:            "no-referrer",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		DNSPrefetchControl:        "off",
	}
}

// AddFlags 为安全头选项添加标志到指定的 FlagSet。
func (o *SecurityHeadersOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...) + "middleware.security-headers."

	fs.BoolVar(&o.EnableHSTS, prefix+"enable-hsts", o.EnableHSTS, "Enable Strict-Transport-Security header.")
	fs.IntVar(&o.HSTSMaxAge, prefix+"hsts-max-age", o.HSTSMaxAge, "HSTS max-age in seconds.")
	fs.BoolVar(&o.HSTSIncludeSubdomains, prefix+"hsts-include-subdomains", o.HSTSIncludeSubdomains, "Include subdomains in HSTS.")
	fs.BoolVar(&o.HSTSPreload, prefix+"hsts-preload", o.HSTSPreload, "Enable HSTS preload.")
	fs.StringVar(&o.FrameOptions, prefix+"frame-options", o.FrameOptions, "X-Frame-Options header value (DENY, SAMEORIGIN); empty disables it.")
	fs.BoolVar(&o.EnableContentTypeOptions, prefix+"enable-content-type-options", o.EnableContentTypeOptions, "Enable X-Content-Type-Options header.")
	fs.StringVar(&o.XSSProtection, prefix+"xss-protection", o.XSSProtection, "X-XSS-Protection header value.")
	fs.StringVar(&o.ContentSecurityPolicy, prefix+"content-security-policy", o.ContentSecurityPolicy, "Content-Security-Policy header value.")
	fs.StringVar(&o.ReferrerPolicy, prefix+"referrer-policy", o.ReferrerPolicy, "Referrer-Policy header value.")
	fs.StringVar(&o.CrossOriginOpenerPolicy, prefix+"cross-origin-opener-policy", o.CrossOriginOpenerPolicy, "Cross-Origin-Opener-Policy header value.")
	fs.StringVar(&o.CrossOriginResourcePolicy, prefix+"cross-origin-resource-policy", o.CrossOriginResourcePolicy, "Cross-Origin-Resource-Policy header value.")
	fs.StringVar(&o.DNSPrefetchControl, prefix+"dns-prefetch-control", o.DNSPrefetchControl, "X-DNS-Prefetch-Control header value (on, off).")
}

// Validate 验证安全头选项。
func (o *SecurityHeadersOptions) Validate() []error {
	if o == nil {
		return nil
	}
	return options.ValidateStruct("middleware.security-headers.", o)
}

// Complete 完成安全头选项的默认值设置。
func (o *SecurityHeadersOptions) Complete() error {
	return nil
}
