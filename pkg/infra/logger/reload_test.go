package logger

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logopts "github.com/kart-io/ginsvc/pkg/options/logger"
)

func TestReloader(t *testing.T) {
	start := logopts.NewOptions()
	start.Level = "INFO"
	r := NewReloader(start, "log")

	v := viper.New()
	v.Set("log.level", "DEBUG")
	require.NoError(t, r.Handler()(context.Background(), v))

	got := r.Options()
	assert.Equal(t, "DEBUG", got.Level)
	assert.Equal(t, start.Format, got.Format, "keys missing from the file keep their values")
	assert.Equal(t, "INFO", start.Level, "caller's options must not change")
}

func TestReloaderRejectsInvalidLevel(t *testing.T) {
	r := NewReloader(logopts.NewOptions(), "log")

	v := viper.New()
	v.Set("log.level", "LOUD")
	require.Error(t, r.Reload(v))
	assert.Equal(t, "INFO", r.Options().Level)
}
