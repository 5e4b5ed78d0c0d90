package appctx

import "errors"

var (
	// ErrServiceExists is returned when mounting under a taken name.
	ErrServiceExists = errors.New("service already mounted")
	// ErrServiceNotFound is returned for unknown service names.
	ErrServiceNotFound = errors.New("service not found")
	// ErrInvalidState is returned when an operation does not fit the
	// service's current state.
	ErrInvalidState = errors.New("invalid service state")
)
