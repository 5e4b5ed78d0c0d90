// Package logger keeps the global logger in step with the configuration
// file.
package logger

import (
	"context"
	"fmt"
	"sync"

	"github.com/kart-io/logger"
	"github.com/spf13/viper"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/ginsvc/pkg/infra/config"
	logopts "github.com/kart-io/ginsvc/pkg/options/logger"
)

// Reloader re-initializes the global logger from a config section.
type Reloader struct {
	mu      sync.Mutex
	key     string
	current *logopts.Options
}

// NewReloader creates a Reloader for the options under key ("log").
// current must be the options the global logger was built from.
func NewReloader(current *logopts.Options, key string) *Reloader {
	return &Reloader{key: key, current: cloneOptions(current)}
}

// Handler returns the watcher handler.
func (r *Reloader) Handler() config.ChangeHandler {
	return func(_ context.Context, v *viper.Viper) error {
		return r.Reload(v)
	}
}

// Reload applies the section of v to the global logger. Keys missing from
// v keep their current values. On error the running logger is kept.
func (r *Reloader) Reload(v *viper.Viper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := cloneOptions(r.current)
	if err := v.UnmarshalKey(r.key, next); err != nil {
		return fmt.Errorf("unmarshal %s options: %w", r.key, err)
	}
	if err := utilerrors.NewAggregate(next.Validate()); err != nil {
		return fmt.Errorf("invalid %s options: %w", r.key, err)
	}
	if err := next.Init(); err != nil {
		return fmt.Errorf("apply %s options: %w", r.key, err)
	}

	r.current = next
	logger.Infow("Logger configuration reloaded",
		"level", next.Level, "format", next.Format, "development", next.Development)
	return nil
}

// Options returns a copy of the options in effect.
func (r *Reloader) Options() *logopts.Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneOptions(r.current)
}

func cloneOptions(o *logopts.Options) *logopts.Options {
	if o == nil || o.LogOption == nil {
		return logopts.NewOptions()
	}
	lo := *o.LogOption
	lo.OutputPaths = append([]string(nil), o.OutputPaths...)
	if o.Rotation != nil {
		rot := *o.Rotation
		lo.Rotation = &rot
	}
	if o.OTLP != nil {
		otlp := *o.OTLP
		lo.OTLP = &otlp
	}
	return &logopts.Options{LogOption: &lo}
}
