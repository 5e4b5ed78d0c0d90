package options

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerOptions_Flags(t *testing.T) {
	o := NewServerOptions()
	fss := o.Flags()

	assert.Equal(t, []string{"http", "log", "misc"}, fss.Order)
	require.NotNil(t, fss.FlagSets["http"].Lookup("http.port"))
	require.NotNil(t, fss.FlagSets["log"].Lookup("log.level"))

	require.NoError(t, fss.FlagSets["http"].Set("http.port", "8080"))
	assert.Equal(t, 8080, o.HTTPOptions.Port)
}

func TestServerOptions_Validate(t *testing.T) {
	o := NewServerOptions()
	require.NoError(t, o.Complete())
	assert.NoError(t, o.Validate())

	o.HTTPOptions.Port = -1
	o.HTTPOptions.Host = ""
	err := o.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "http.port"), err.Error())
}

func TestServerOptions_ReloadHTTP(t *testing.T) {
	o := NewServerOptions()
	o.HTTPOptions.Host = "0.0.0.0"
	require.NoError(t, o.Complete())

	v := viper.New()
	v.Set("http.port", 4000)

	next, err := o.ReloadHTTP(v)
	require.NoError(t, err)
	assert.Equal(t, 4000, next.Port)
	assert.Equal(t, "0.0.0.0", next.Host)
	assert.Equal(t, 3000, o.HTTPOptions.Port, "current options must not change")

	v.Set("http.port", 70000)
	_, err = o.ReloadHTTP(v)
	assert.Error(t, err)
}
