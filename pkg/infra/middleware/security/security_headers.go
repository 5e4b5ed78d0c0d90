// Package security provides the security header and CORS middleware.
package security

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/ginsvc/pkg/infra/middleware/common"
	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
)

// Security header constants.
const (
	HeaderXFrameOptions             = "X-Frame-Options"
	HeaderXContentTypeOptions       = "X-Content-Type-Options"
	HeaderXXSSProtection            = "X-XSS-Protection"
	HeaderContentSecurityPolicy     = "Content-Security-Policy"
	HeaderReferrerPolicy            = "Referrer-Policy"
	HeaderStrictTransportSecurity   = "Strict-Transport-Security"
	HeaderCrossOriginOpenerPolicy   = "Cross-Origin-Opener-Policy"
	HeaderCrossOriginResourcePolicy = "Cross-Origin-Resource-Policy"
	HeaderXDNSPrefetchControl       = "X-DNS-Prefetch-Control"
	HeaderXPoweredBy                = "X-Powered-By"
)

// SecurityHeaders returns a middleware that adds security headers with default options.
func SecurityHeaders() gin.HandlerFunc {
	return SecurityHeadersWithOptions(*mwopts.NewSecurityHeadersOptions())
}

// SecurityHeadersWithOptions returns a middleware that sets the configured
// security headers on every response and strips X-Powered-By.
func SecurityHeadersWithOptions(opts mwopts.SecurityHeadersOptions) gin.HandlerFunc {
	// 固定头在构造时计算一次
	static := make([][2]string, 0, 8)
	add := func(name, value string) {
		if value != "" {
			static = append(static, [2]string{name, value})
		}
	}
	add(HeaderContentSecurityPolicy, opts.ContentSecurityPolicy)
	add(HeaderCrossOriginOpenerPolicy, opts.CrossOriginOpenerPolicy)
	add(HeaderCrossOriginResourcePolicy, opts.CrossOriginResourcePolicy)
	add(HeaderReferrerPolicy, opts.ReferrerPolicy)
	add(HeaderXDNSPrefetchControl, opts.DNSPrefetchControl)
	add(HeaderXFrameOptions, opts.FrameOptions)
	add(HeaderXXSSProtection, opts.XSSProtection)
	if opts.EnableContentTypeOptions {
		add(HeaderXContentTypeOptions, "nosniff")
	}

	hsts := "max-age=" + strconv.Itoa(opts.HSTSMaxAge)
	if opts.HSTSIncludeSubdomains {
		hsts += "; includeSubDomains"
	}
	if opts.HSTSPreload {
		hsts += "; preload"
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range static {
			h.Set(kv[0], kv[1])
		}
		if opts.EnableHSTS && common.Scheme(c) == "https" {
			h.Set(HeaderStrictTransportSecurity, hsts)
		}
		h.Del(HeaderXPoweredBy)

		c.Next()
	}
}
