// Package main is the entry point for the ginsvc demo server.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/ginsvc/cmd/ginsvc/app"
)

func main() {
	app.NewApp().Run()
}
