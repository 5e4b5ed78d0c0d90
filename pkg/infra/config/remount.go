package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/kart-io/logger"
	"github.com/spf13/viper"

	"github.com/kart-io/ginsvc/pkg/infra/appctx"
)

// ServiceFactory builds a service from the configuration in v.
type ServiceFactory func(v *viper.Viper) (appctx.Service, error)

// RemountHandler returns a handler that replaces the service mounted as
// name with a fresh one built from the new configuration.
//
// A build error leaves the running service untouched. Once the old
// service is ejected there is nothing to fall back to, so a failed mount
// leaves name unmounted until the next change.
func RemountHandler(app *appctx.Context, name string, build ServiceFactory) ChangeHandler {
	return func(ctx context.Context, v *viper.Viper) error {
		next, err := build(v)
		if err != nil {
			return fmt.Errorf("build %s from new config: %w", name, err)
		}

		if err := app.EjectService(ctx, name); err != nil && !errors.Is(err, appctx.ErrServiceNotFound) {
			return fmt.Errorf("eject %s: %w", name, err)
		}
		if err := app.MountService(ctx, name, next); err != nil {
			return fmt.Errorf("mount %s: %w", name, err)
		}

		logger.Infow("Service remounted with new configuration", "service", name)
		return nil
	}
}
