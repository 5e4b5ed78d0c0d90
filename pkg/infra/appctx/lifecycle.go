// Package appctx is the application context that owns named services and
// drives them through their lifecycle.
//
// A service is mounted once, may be reset any number of times, and is
// ejected once:
//
//	Unmounted --BeforeMount,OnMount,AfterMount--> Mounted
//	Mounted   --BeforeReset,OnReset,AfterReset--> Mounted
//	Mounted   --OnEject,AfterEject-------------> Ejected
//
// Lifecycle operations on one Context are serialized.
package appctx

import "context"

// Service is a component whose lifecycle is driven by a Context.
type Service interface {
	// BeforeMount prepares the service and binds it to app.
	BeforeMount(ctx context.Context, app *Context) error
	// OnMount starts the service.
	OnMount(ctx context.Context) error
	// AfterMount runs once the service is started.
	AfterMount(ctx context.Context) error

	// BeforeReset stops the running instance.
	BeforeReset(ctx context.Context) error
	// OnReset starts a fresh instance.
	OnReset(ctx context.Context) error
	// AfterReset runs once the fresh instance is started.
	AfterReset(ctx context.Context) error

	// OnEject stops the service for good.
	OnEject(ctx context.Context) error
	// AfterEject runs once the service is stopped.
	AfterEject(ctx context.Context) error
}

// Phase names one lifecycle hook.
type Phase string

// Lifecycle phases in execution order.
const (
	PhaseBeforeMount Phase = "before_mount"
	PhaseOnMount     Phase = "on_mount"
	PhaseAfterMount  Phase = "after_mount"
	PhaseBeforeReset Phase = "before_reset"
	PhaseOnReset     Phase = "on_reset"
	PhaseAfterReset  Phase = "after_reset"
	PhaseOnEject     Phase = "on_eject"
	PhaseAfterEject  Phase = "after_eject"
)

// State is where a service stands in its lifecycle.
type State int

const (
	// StateUnmounted means not mounted yet.
	StateUnmounted State = iota
	// StateMounted means started and serving.
	StateMounted
	// StateReset means a reset cycle is in progress or failed part way.
	StateReset
	// StateEjected is terminal.
	StateEjected
)

func (s State) String() string {
	switch s {
	case StateUnmounted:
		return "unmounted"
	case StateMounted:
		return "mounted"
	case StateReset:
		return "reset"
	case StateEjected:
		return "ejected"
	default:
		return "unknown"
	}
}

// Named is implemented by services that expose a display name.
type Named interface {
	Name() string
}
