package config

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kart-io/logger"
	"github.com/spf13/viper"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// ChangeHandler reacts to a configuration change. v holds the new
// configuration.
type ChangeHandler func(ctx context.Context, v *viper.Viper) error

// Watcher notifies subscribed handlers when the configuration file changes.
type Watcher struct {
	viper   *viper.Viper
	timeout time.Duration

	mu       sync.RWMutex
	ids      []string
	handlers map[string]ChangeHandler
	watching bool

	// notifyMu keeps change notifications from overlapping.
	notifyMu sync.Mutex
}

// NewWatcher creates a watcher for v. timeout bounds one round of
// handlers; zero means no bound.
func NewWatcher(v *viper.Viper, timeout time.Duration) *Watcher {
	return &Watcher{
		viper:    v,
		timeout:  timeout,
		handlers: make(map[string]ChangeHandler),
	}
}

// Subscribe registers handler under id. An existing handler with the same
// id is replaced in place.
func (w *Watcher) Subscribe(id string, handler ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.handlers[id]; !ok {
		w.ids = append(w.ids, id)
	}
	w.handlers[id] = handler
	logger.Infow("Config watcher: handler subscribed", "id", id)
}

// Unsubscribe removes the handler registered under id.
func (w *Watcher) Unsubscribe(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.handlers[id]; !ok {
		return
	}
	delete(w.handlers, id)
	w.ids = slices.DeleteFunc(w.ids, func(s string) bool { return s == id })
	logger.Infow("Config watcher: handler unsubscribed", "id", id)
}

// Start begins watching the file. Calling it again is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return
	}
	w.watching = true
	w.mu.Unlock()

	w.viper.OnConfigChange(func(e fsnotify.Event) {
		if !w.IsWatching() {
			return
		}
		logger.Infow("Config file changed", "file", e.Name, "op", e.Op.String())
		if err := w.Notify(context.Background()); err != nil {
			logger.Errorw("Config watcher: change not fully applied", "error", err)
		}
	})
	w.viper.WatchConfig()

	logger.Info("Config watcher: started")
}

// Stop makes the watcher ignore further file events. viper keeps its
// fsnotify watch open until the process exits.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watching {
		return
	}
	w.watching = false
	logger.Info("Config watcher: stopped")
}

// IsWatching reports whether file events are being handled.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// HandlerCount returns the number of subscribed handlers.
func (w *Watcher) HandlerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.handlers)
}

// Notify runs every handler in subscription order. A failing handler does
// not stop the others; failures are returned aggregated.
func (w *Watcher) Notify(ctx context.Context) error {
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	w.mu.RLock()
	ids := slices.Clone(w.ids)
	handlers := make([]ChangeHandler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, w.handlers[id])
	}
	w.mu.RUnlock()

	var errs []error
	for i, h := range handlers {
		if err := h(ctx, w.viper); err != nil {
			logger.Errorw("Config watcher: handler failed", "id", ids[i], "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", ids[i], err))
			continue
		}
		logger.Infow("Config watcher: handler applied change", "id", ids[i])
	}
	return utilerrors.NewAggregate(errs)
}
