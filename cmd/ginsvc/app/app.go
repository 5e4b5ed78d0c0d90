// Package app provides the ginsvc server application.
package app

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"
	"github.com/spf13/viper"

	"github.com/kart-io/ginsvc/cmd/ginsvc/app/options"
	"github.com/kart-io/ginsvc/internal/demo/router"
	"github.com/kart-io/ginsvc/pkg/app"
	"github.com/kart-io/ginsvc/pkg/infra/appctx"
	"github.com/kart-io/ginsvc/pkg/infra/config"
	infralogger "github.com/kart-io/ginsvc/pkg/infra/logger"
	httpsrv "github.com/kart-io/ginsvc/pkg/infra/server/http"
	httpopts "github.com/kart-io/ginsvc/pkg/options/server/http"
	"github.com/kart-io/ginsvc/pkg/utils/json"
)

const (
	appName        = "ginsvc"
	httpService    = "http"
	appDescription = `ginsvc serves gin routes under a managed lifecycle.

Every response uses the same JSON envelope:
  success: {"success":true,"data":...,"message":"..."}
  failure: {"success":false,"code":N,"message":"...","errorBody":...}

Examples:
  # Start with default configuration
  ginsvc

  # Listen on all interfaces
  ginsvc --http.host=0.0.0.0 --http.port=8080

  # Use config file; edits remount the HTTP server
  ginsvc -c /etc/ginsvc/ginsvc.yaml

Configuration:
  Configuration can be provided via:
  - Command-line flags (highest priority)
  - Environment variables (prefix: GINSVC_)
  - Configuration file (YAML)
  - Default values (lowest priority)`
)

// NewApp creates the ginsvc application.
func NewApp() *app.App {
	opts := options.NewServerOptions()

	return app.NewApp(appName,
		app.WithShortDescription("Lifecycle-managed gin server"),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func(ctx context.Context, v *viper.Viper) error {
			return Run(ctx, opts, v)
		}),
	)
}

// Run mounts the HTTP server and blocks until the process is asked to stop.
func Run(ctx context.Context, opts *options.ServerOptions, v *viper.Viper) error {
	if err := opts.LogOptions.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Flush() }()

	logger.Infow("Starting ginsvc",
		"app", appName,
		"version", app.GetVersion(),
		"http", opts.HTTPOptions.String(),
		"sonic", json.IsUsingSonic(),
	)

	appCtx := appctx.New()
	if err := appCtx.MountService(ctx, httpService, newHTTPServer(opts.HTTPOptions)); err != nil {
		return err
	}

	if opts.WatchConfig && v.ConfigFileUsed() != "" {
		w := config.NewWatcher(v, opts.HTTPOptions.ShutdownTimeout*2)
		w.Subscribe(httpService, config.RemountHandler(appCtx, httpService, func(v *viper.Viper) (appctx.Service, error) {
			next, err := opts.ReloadHTTP(v)
			if err != nil {
				return nil, err
			}
			return newHTTPServer(next), nil
		}))
		w.Subscribe("log", infralogger.NewReloader(opts.LogOptions, "log").Handler())
		w.Start()
		defer w.Stop()
	}

	return appCtx.Run(ctx, opts.HTTPOptions.ShutdownTimeout)
}

func newHTTPServer(opts *httpopts.Options) *httpsrv.Server {
	return httpsrv.NewServer(opts, router.Routes(),
		httpsrv.WithName(httpService),
		httpsrv.WithInterceptors(interceptors()),
	)
}
