package security

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/rs/cors"

	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
)

// CORSWithOptions returns a gin middleware backed by rs/cors.
// Preflight requests are answered here and never reach routes.
func CORSWithOptions(opts mwopts.CORSOptions) gin.HandlerFunc {
	copts := cors.Options{
		AllowedOrigins:   opts.AllowOrigins,
		AllowedMethods:   opts.AllowMethods,
		AllowedHeaders:   opts.AllowHeaders,
		ExposedHeaders:   opts.ExposeHeaders,
		AllowCredentials: opts.AllowCredentials,
		MaxAge:           opts.MaxAge,
		// 预检请求在此处直接返回 204
		OptionsPassthrough:   false,
		OptionsSuccessStatus: http.StatusNoContent,
	}
	if opts.Debug {
		copts.Logger = corsLogger{}
	}
	c := cors.New(copts)

	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		if isPreflight(ctx.Request) {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

type corsLogger struct{}

func (corsLogger) Printf(format string, args ...any) {
	logger.Debugf("[cors] "+format, args...)
}
