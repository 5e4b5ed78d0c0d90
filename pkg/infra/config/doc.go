// Package config watches the configuration file and reacts to changes.
//
// A Watcher wraps a viper instance that already read its file. Handlers
// subscribed to it run one after another, in subscription order, every
// time the file changes:
//
//	w := config.NewWatcher(v, 15*time.Second)
//	w.Subscribe("http", config.RemountHandler(app, "http", buildHTTP))
//	w.Start()
//
// RemountHandler replaces a service mounted in an appctx.Context with one
// built from the new configuration. The replacement is built before the
// running service is ejected, so a configuration that does not build
// leaves the running service alone.
package config
