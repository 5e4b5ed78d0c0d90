package appctx

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/kart-io/logger"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// Context owns a set of named services. The zero value is not usable; use New.
//
// Lifecycle operations (mount, reset, eject) hold an operation lock while
// the service hooks run, so hooks must not start another lifecycle
// operation on the same Context. Read accessors never block on it.
type Context struct {
	opMu sync.Mutex
	reg  *registry
}

// New creates an empty Context.
func New() *Context {
	return &Context{reg: newRegistry()}
}

// MountService registers svc under name and runs BeforeMount, OnMount and
// AfterMount. A failed mount unregisters the name again; when OnMount had
// already started the service, it is ejected first.
//
// ctx is checked once before BeforeMount. Once started, the mount runs to
// completion or to the first failing phase.
func (c *Context) MountService(ctx context.Context, name string, svc Service) error {
	if name == "" {
		return errors.New("service name cannot be empty")
	}
	if svc == nil {
		return errors.New("service cannot be nil")
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	e, ok := c.reg.add(name, svc)
	if !ok {
		return fmt.Errorf("%w: %s", ErrServiceExists, name)
	}

	if err := ctx.Err(); err != nil {
		c.reg.remove(name)
		return fmt.Errorf("service %s: %s: %w", name, PhaseBeforeMount, err)
	}

	done, err := c.run(ctx, e, PhaseBeforeMount, PhaseOnMount, PhaseAfterMount)
	if err != nil {
		if done >= 2 {
			// OnMount 已启动服务，注销前先停掉
			if _, cerr := c.run(context.WithoutCancel(ctx), e, PhaseOnEject, PhaseAfterEject); cerr != nil {
				logger.Errorw("Failed to clean up after mount failure", "service", name, "error", cerr)
			}
		}
		c.reg.remove(name)
		logger.Errorw("Failed to mount service", "service", name, "error", err)
		return err
	}
	c.reg.setState(e, StateMounted)
	logger.Infow("Service mounted", "service", name)
	return nil
}

// ResetService runs BeforeReset, OnReset and AfterReset on a mounted
// service. If a phase fails the service stays in StateReset, from which it
// can only be ejected.
func (c *Context) ResetService(ctx context.Context, name string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.reset(ctx, name)
}

// ResetAllServices resets every service in mount order and stops at the
// first failure.
func (c *Context) ResetAllServices(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	for _, name := range c.reg.names() {
		if err := c.reset(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) reset(ctx context.Context, name string) error {
	e, ok := c.reg.get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	if st := c.reg.stateOf(e); st != StateMounted {
		return fmt.Errorf("%w: cannot reset %s while %s", ErrInvalidState, name, st)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("service %s: %s: %w", name, PhaseBeforeReset, err)
	}

	c.reg.setState(e, StateReset)
	if _, err := c.run(ctx, e, PhaseBeforeReset, PhaseOnReset, PhaseAfterReset); err != nil {
		logger.Errorw("Failed to reset service", "service", name, "error", err)
		return err
	}
	c.reg.setState(e, StateMounted)
	logger.Infow("Service reset", "service", name)
	return nil
}

// EjectService runs OnEject and AfterEject and unregisters the service.
// If OnEject fails the service stays registered in its previous state.
// Once OnEject succeeded the service is unregistered even when AfterEject
// fails.
//
// ctx is handed to the hooks but never stops the eject: AfterEject runs
// with ctx's values and without its deadline.
func (c *Context) EjectService(ctx context.Context, name string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.eject(ctx, name)
}

// EjectAllServices ejects every service in reverse mount order. It keeps
// going after failures and returns them aggregated.
func (c *Context) EjectAllServices(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	names := c.reg.names()
	slices.Reverse(names)

	var errs []error
	for _, name := range names {
		if err := c.eject(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return utilerrors.NewAggregate(errs)
}

func (c *Context) eject(ctx context.Context, name string) error {
	e, ok := c.reg.get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	if st := c.reg.stateOf(e); st != StateMounted && st != StateReset {
		return fmt.Errorf("%w: cannot eject %s while %s", ErrInvalidState, name, st)
	}

	if _, err := c.run(ctx, e, PhaseOnEject); err != nil {
		logger.Errorw("Failed to eject service", "service", name, "error", err)
		return err
	}

	_, err := c.run(context.WithoutCancel(ctx), e, PhaseAfterEject)
	c.reg.setState(e, StateEjected)
	c.reg.remove(name)
	if err != nil {
		logger.Errorw("Service ejected with errors", "service", name, "error", err)
		return err
	}
	logger.Infow("Service ejected", "service", name)
	return nil
}

// Service returns the service registered under name.
func (c *Context) Service(name string) (Service, bool) {
	e, ok := c.reg.get(name)
	if !ok {
		return nil, false
	}
	return e.svc, true
}

// State returns the lifecycle state of the named service.
func (c *Context) State(name string) (State, bool) {
	e, ok := c.reg.get(name)
	if !ok {
		return StateUnmounted, false
	}
	return c.reg.stateOf(e), true
}

// Names returns the registered service names in mount order.
func (c *Context) Names() []string {
	return c.reg.names()
}

// run calls phases in order and stops at the first error. It returns how
// many phases completed.
func (c *Context) run(ctx context.Context, e *entry, phases ...Phase) (int, error) {
	for i, p := range phases {
		logger.Debugw("Running lifecycle phase", "service", e.name, "phase", string(p))
		if err := c.call(ctx, e.svc, p); err != nil {
			return i, fmt.Errorf("service %s: %s: %w", e.name, p, err)
		}
	}
	return len(phases), nil
}

func (c *Context) call(ctx context.Context, svc Service, p Phase) error {
	switch p {
	case PhaseBeforeMount:
		return svc.BeforeMount(ctx, c)
	case PhaseOnMount:
		return svc.OnMount(ctx)
	case PhaseAfterMount:
		return svc.AfterMount(ctx)
	case PhaseBeforeReset:
		return svc.BeforeReset(ctx)
	case PhaseOnReset:
		return svc.OnReset(ctx)
	case PhaseAfterReset:
		return svc.AfterReset(ctx)
	case PhaseOnEject:
		return svc.OnEject(ctx)
	case PhaseAfterEject:
		return svc.AfterEject(ctx)
	default:
		return fmt.Errorf("unknown phase %q", p)
	}
}
