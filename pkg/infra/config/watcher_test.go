package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestSubscribeReplacesInPlace(t *testing.T) {
	w := NewWatcher(viper.New(), 0)

	var calls []string
	var mu sync.Mutex
	record := func(s string) ChangeHandler {
		return func(context.Context, *viper.Viper) error {
			mu.Lock()
			calls = append(calls, s)
			mu.Unlock()
			return nil
		}
	}

	w.Subscribe("a", record("a1"))
	w.Subscribe("b", record("b"))
	w.Subscribe("a", record("a2"))

	if got := w.HandlerCount(); got != 2 {
		t.Fatalf("HandlerCount() = %d, want 2", got)
	}
	if err := w.Notify(context.Background()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if want := []string{"a2", "b"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}

	w.Unsubscribe("a")
	w.Unsubscribe("missing")
	if got := w.HandlerCount(); got != 1 {
		t.Errorf("HandlerCount() after unsubscribe = %d, want 1", got)
	}
}

func TestNotifyContinuesAfterFailure(t *testing.T) {
	w := NewWatcher(viper.New(), time.Second)

	ran := false
	w.Subscribe("broken", func(context.Context, *viper.Viper) error {
		return errors.New("nope")
	})
	w.Subscribe("ok", func(ctx context.Context, _ *viper.Viper) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("handler context has no deadline")
		}
		ran = true
		return nil
	})

	err := w.Notify(context.Background())
	if err == nil || !strings.Contains(err.Error(), "broken: nope") {
		t.Fatalf("Notify() error = %v, want broken: nope", err)
	}
	if !ran {
		t.Error("handler after the failing one did not run")
	}
}

func TestStartStop(t *testing.T) {
	w := NewWatcher(newFileViper(t, "http:\n  port: 3000\n"), 0)
	if w.IsWatching() {
		t.Fatal("watching before Start")
	}
	w.Start()
	w.Start()
	if !w.IsWatching() {
		t.Fatal("not watching after Start")
	}
	w.Stop()
	if w.IsWatching() {
		t.Error("still watching after Stop")
	}
}

func TestWatcherFileChange(t *testing.T) {
	if testing.Short() {
		t.Skip("fsnotify test")
	}
	v := newFileViper(t, "http:\n  port: 3000\n")
	w := NewWatcher(v, 0)

	ports := make(chan int, 4)
	w.Subscribe("port", func(_ context.Context, v *viper.Viper) error {
		ports <- v.GetInt("http.port")
		return nil
	})
	w.Start()
	defer w.Stop()

	if err := os.WriteFile(v.ConfigFileUsed(), []byte("http:\n  port: 4000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case p := <-ports:
			if p == 4000 {
				return
			}
		case <-deadline:
			t.Fatal("change was not observed")
		}
	}
}

func newFileViper(t *testing.T, content string) *viper.Viper {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	return v
}
