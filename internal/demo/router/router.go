// Package router holds the demo routes served by ginsvc.
package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/ginsvc/pkg/app"
	"github.com/kart-io/ginsvc/pkg/infra/middleware/bodyparser"
	"github.com/kart-io/ginsvc/pkg/infra/middleware/cookie"
	httpsrv "github.com/kart-io/ginsvc/pkg/infra/server/http"
	apierrors "github.com/kart-io/ginsvc/pkg/utils/errors"
)

// ErrCustom is what /throw signals.
var ErrCustom = errors.New("This is a custom error")

// ErrNoSession is returned by /session without a valid signed cookie.
var ErrNoSession = apierrors.Register(
	apierrors.New(-10, "No session").WithStatus(http.StatusUnauthorized),
)

// Routes returns the demo routers.
func Routes() []httpsrv.Router {
	return []httpsrv.Router{
		httpsrv.RouterFunc(demo),
		httpsrv.RouterFunc(system),
	}
}

func demo(r gin.IRouter) {
	r.GET("/test", func(c *gin.Context) {
		httpsrv.OK(c, gin.H{"ok": 1}, "Ok!")
	})
	r.GET("/fail", func(c *gin.Context) {
		httpsrv.Fail(c, http.StatusOK, 1, "Ok!", nil)
	})
	r.GET("/throw", func(c *gin.Context) {
		httpsrv.SignalError(c, ErrCustom)
	})
	r.POST("/echo", func(c *gin.Context) {
		httpsrv.OK(c, bodyparser.Body(c), "")
	})
	r.GET("/cookies", func(c *gin.Context) {
		httpsrv.OK(c, cookie.Cookies(c), "")
	})
	r.GET("/session", func(c *gin.Context) {
		user, ok := cookie.SignedCookie(c, "user")
		if !ok {
			httpsrv.SignalError(c, ErrNoSession)
			return
		}
		httpsrv.OK(c, gin.H{"user": user}, "")
	})
}

func system(r gin.IRouter) {
	r.GET("/version", func(c *gin.Context) {
		info := app.GetVersionInfo()
		httpsrv.OK(c, gin.H{
			"gitVersion": info.GitVersion,
			"gitCommit":  info.GitCommit,
			"buildDate":  info.BuildDate,
			"goVersion":  info.GoVersion,
			"platform":   info.Platform,
		}, "")
	})
}
