package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/ginsvc/pkg/app/cliflag"
)

type testOptions struct {
	HTTP struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"http"`
	Token string `mapstructure:"token"`

	completed   bool
	validateErr error
}

func (o *testOptions) Flags() cliflag.NamedFlagSets {
	var fss cliflag.NamedFlagSets
	fs := fss.FlagSet("http")
	fs.StringVar(&o.HTTP.Host, "http.host", "localhost", "host")
	fs.IntVar(&o.HTTP.Port, "http.port", 3000, "port")
	return fss
}

func (o *testOptions) Complete() error {
	o.completed = true
	return nil
}

func (o *testOptions) Validate() error {
	return o.validateErr
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "testapp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestApp_ConfigPrecedence(t *testing.T) {
	path := writeConfig(t, "http:\n  host: file-host\n  port: 4000\ntoken: ${TESTAPP_SECRET}\n")
	t.Setenv("TESTAPP_SECRET", "s3cret")
	t.Setenv("TESTAPP_HTTP_HOST", "env-host")

	opts := &testOptions{}
	var gotViper *viper.Viper
	a := NewApp("testapp",
		WithNoVersion(),
		WithOptions(opts),
		WithRunFunc(func(_ context.Context, v *viper.Viper) error {
			gotViper = v
			return nil
		}),
	)
	a.Command().SetArgs([]string{"-c", path, "--http.port", "5000"})
	require.NoError(t, a.Command().Execute())

	assert.True(t, opts.completed)
	assert.Equal(t, "env-host", opts.HTTP.Host)
	assert.Equal(t, 5000, opts.HTTP.Port)
	assert.Equal(t, "s3cret", opts.Token)
	assert.Same(t, a.Viper(), gotViper)
	assert.Equal(t, path, gotViper.ConfigFileUsed())
}

func TestApp_MissingConfigIsFine(t *testing.T) {
	t.Chdir(t.TempDir())

	opts := &testOptions{}
	a := NewApp("testapp-none", WithNoVersion(), WithOptions(opts))
	a.Command().SetArgs(nil)
	require.NoError(t, a.Command().Execute())
	assert.Equal(t, "localhost", opts.HTTP.Host)
	assert.Equal(t, 3000, opts.HTTP.Port)
}

func TestApp_BrokenConfig(t *testing.T) {
	path := writeConfig(t, "http: [unterminated\n")

	a := NewApp("testapp", WithNoVersion(), WithSilence(), WithOptions(&testOptions{}))
	a.Command().SetArgs([]string{"-c", path})
	err := a.Command().Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestApp_ValidateError(t *testing.T) {
	opts := &testOptions{validateErr: errors.New("invalid")}
	ran := false
	a := NewApp("testapp", WithNoVersion(), WithNoConfig(), WithSilence(), WithOptions(opts),
		WithRunFunc(func(context.Context, *viper.Viper) error {
			ran = true
			return nil
		}))
	a.Command().SetArgs(nil)

	assert.EqualError(t, a.Command().Execute(), "invalid")
	assert.False(t, ran)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("EXPAND_A", "alpha")
	v := viper.New()
	v.Set("a", "${EXPAND_A}-$EXPAND_A")
	v.Set("b", "${EXPAND_UNSET_VAR}")
	v.Set("c", 3)

	expandEnvVars(v)

	assert.Equal(t, "alpha-alpha", v.GetString("a"))
	assert.Equal(t, "${EXPAND_UNSET_VAR}", v.GetString("b"))
	assert.Equal(t, 3, v.GetInt("c"))
}
