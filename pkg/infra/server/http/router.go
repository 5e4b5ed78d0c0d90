package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// Router registers a group of routes on the engine.
type Router interface {
	RegisterRoutes(r gin.IRouter)
}

// RouterFunc adapts a plain function to Router.
type RouterFunc func(r gin.IRouter)

// RegisterRoutes implements Router.
func (f RouterFunc) RegisterRoutes(r gin.IRouter) {
	f(r)
}

// registerRoutes turns gin's registration panics (duplicate or malformed
// paths) into errors. Routes registered before the panic stay in place.
func registerRoutes(r gin.IRouter, router Router) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrRouteRegistration, rec)
		}
	}()
	router.RegisterRoutes(r)
	return nil
}
