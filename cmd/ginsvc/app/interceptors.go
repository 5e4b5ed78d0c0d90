package app

import (
	"github.com/kart-io/logger"

	"github.com/kart-io/ginsvc/pkg/infra/appctx"
	httpsrv "github.com/kart-io/ginsvc/pkg/infra/server/http"
	"github.com/kart-io/ginsvc/pkg/utils/response"
)

func interceptors() httpsrv.Interceptors {
	return httpsrv.Interceptors{
		OnFailedResponse: func(info httpsrv.RequestInfo, env *response.Envelope, _ *httpsrv.Server, _ *appctx.Context, detail error) {
			if detail == nil {
				return
			}
			logger.Warnw("Request failed",
				"method", info.Method,
				"path", info.Path,
				"request_id", info.RequestID,
				"code", env.Code,
				"error", detail,
			)
		},
		OnReady: func(host string, port int, srv *httpsrv.Server, _ *appctx.Context) {
			logger.Infow("HTTP server ready", "name", srv.Name(), "host", host, "port", port)
		},
		OnDisconnected: func(host string, port int, srv *httpsrv.Server, _ *appctx.Context) {
			logger.Infow("HTTP server disconnected", "name", srv.Name(), "host", host, "port", port)
		},
	}
}
