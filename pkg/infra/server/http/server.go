// Package http plugs a gin engine into the application context as a
// lifecycle-managed service.
//
// Every mount or reset builds a fresh engine, installs the fixed
// middleware, the caller's routes, a not-found handler and the error
// handler, and starts listening. Handlers answer through SuccessResponse
// and FailureResponse (or OK and Fail), which hand every envelope to the
// registered Interceptors.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/prometheus/client_golang/prometheus"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/ginsvc/pkg/infra/appctx"
	"github.com/kart-io/ginsvc/pkg/infra/middleware"
	"github.com/kart-io/ginsvc/pkg/infra/middleware/bodyparser"
	"github.com/kart-io/ginsvc/pkg/infra/middleware/cookie"
	"github.com/kart-io/ginsvc/pkg/infra/middleware/observability"
	"github.com/kart-io/ginsvc/pkg/infra/middleware/resilience"
	"github.com/kart-io/ginsvc/pkg/infra/middleware/security"
	httpopts "github.com/kart-io/ginsvc/pkg/options/server/http"
	"github.com/kart-io/ginsvc/pkg/utils/response"
)

const defaultName = "http"

var (
	_ appctx.Service = (*Server)(nil)
	_ appctx.Named   = (*Server)(nil)
)

// Option configures a Server.
type Option func(*Server)

// WithInterceptors sets the interceptors.
func WithInterceptors(i Interceptors) Option {
	return func(s *Server) {
		s.interceptors = i
	}
}

// WithName sets the name used in logs.
func WithName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.name = name
		}
	}
}

// WithMetricsRegistry sets the registry the metrics are registered with
// when metrics are enabled. A private registry is used otherwise.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// allowed lists, per phase, the phases that may have completed last.
var allowed = map[appctx.Phase][]appctx.Phase{
	appctx.PhaseBeforeMount: {""},
	appctx.PhaseOnMount:     {appctx.PhaseBeforeMount},
	appctx.PhaseAfterMount:  {appctx.PhaseOnMount},
	appctx.PhaseBeforeReset: {appctx.PhaseAfterMount, appctx.PhaseAfterReset},
	appctx.PhaseOnReset:     {appctx.PhaseBeforeReset},
	appctx.PhaseAfterReset:  {appctx.PhaseOnReset},
	appctx.PhaseOnEject: {
		appctx.PhaseOnMount, appctx.PhaseAfterMount,
		appctx.PhaseBeforeReset, appctx.PhaseOnReset, appctx.PhaseAfterReset,
	},
	appctx.PhaseAfterEject: {appctx.PhaseOnEject},
}

// Server is the lifecycle-managed gin adapter.
//
// Phase methods are serialized. Hooks run on the phase goroutine and may
// call the read accessors, but must not call phase methods.
type Server struct {
	name     string
	opts     *httpopts.Options
	routes   []Router
	registry *prometheus.Registry

	// phaseMu serializes phases; mu guards the fields below it.
	phaseMu sync.Mutex
	mu      sync.Mutex

	last         appctx.Phase
	state        appctx.State
	interceptors Interceptors
	frozen       bool
	app          *appctx.Context
	metrics      *observability.MetricsCollector

	engine    *gin.Engine
	server    *http.Server
	listener  net.Listener
	serveDone chan struct{}
	port      int
}

// NewServer creates an adapter for routes. opts is copied; a nil opts uses
// the defaults.
func NewServer(opts *httpopts.Options, routes []Router, fns ...Option) *Server {
	if opts == nil {
		opts = httpopts.NewOptions()
	}
	s := &Server{
		name:   defaultName,
		opts:   opts.DeepCopy(),
		routes: append([]Router(nil), routes...),
		state:  appctx.StateUnmounted,
	}
	for _, fn := range fns {
		fn(s)
	}
	return s
}

// SetInterceptors replaces the interceptors. It fails once BeforeMount ran.
func (s *Server) SetInterceptors(i Interceptors) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return ErrInterceptorsFrozen
	}
	s.interceptors = i
	return nil
}

// Name returns the adapter name.
func (s *Server) Name() string {
	return s.name
}

// Options returns the adapter's copy of its options.
func (s *Server) Options() *httpopts.Options {
	return s.opts.DeepCopy()
}

// Engine returns the current engine, nil before BeforeMount.
func (s *Server) Engine() *gin.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// Addr returns the bound address, or "" when not listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Port returns the last bound port.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// State returns the lifecycle state.
func (s *Server) State() appctx.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BeforeMount validates the options, freezes the interceptors and creates
// the engine.
func (s *Server) BeforeMount(_ context.Context, app *appctx.Context) error {
	return s.phase(appctx.PhaseBeforeMount, func() error {
		if err := s.opts.Complete(); err != nil {
			return err
		}
		if errs := s.opts.Validate(); len(errs) > 0 {
			return utilerrors.NewAggregate(errs)
		}

		s.mu.Lock()
		s.frozen = true
		s.app = app
		s.mu.Unlock()

		if s.opts.Middleware.Metrics.Enabled && s.metrics == nil {
			reg := s.registry
			if reg == nil {
				reg = prometheus.NewRegistry()
			}
			m, err := observability.NewMetricsCollector(*s.opts.Middleware.Metrics, reg)
			if err != nil {
				return fmt.Errorf("register metrics: %w", err)
			}
			s.metrics = m
		}

		s.setEngine(s.createEngine())
		return nil
	})
}

// OnMount attaches the routes and starts listening.
func (s *Server) OnMount(_ context.Context) error {
	return s.phase(appctx.PhaseOnMount, func() error {
		engine := s.Engine()
		if err := s.attach(engine); err != nil {
			return err
		}
		return s.listen(engine)
	})
}

// AfterMount reports the listener as ready.
func (s *Server) AfterMount(_ context.Context) error {
	return s.phase(appctx.PhaseAfterMount, func() error {
		s.setState(appctx.StateMounted)
		s.ready()
		return nil
	})
}

// BeforeReset closes the listener.
func (s *Server) BeforeReset(ctx context.Context) error {
	return s.phase(appctx.PhaseBeforeReset, func() error {
		s.setState(appctx.StateReset)
		if err := s.close(ctx); err != nil {
			return err
		}
		s.disconnected()
		return nil
	})
}

// OnReset builds a fresh engine with the same routes and listens again.
func (s *Server) OnReset(_ context.Context) error {
	return s.phase(appctx.PhaseOnReset, func() error {
		engine := s.createEngine()
		s.setEngine(engine)
		if err := s.attach(engine); err != nil {
			return err
		}
		return s.listen(engine)
	})
}

// AfterReset reports the listener as ready.
func (s *Server) AfterReset(_ context.Context) error {
	return s.phase(appctx.PhaseAfterReset, func() error {
		s.setState(appctx.StateMounted)
		s.ready()
		return nil
	})
}

// OnEject closes the listener for good.
func (s *Server) OnEject(ctx context.Context) error {
	return s.phase(appctx.PhaseOnEject, func() error {
		if err := s.close(ctx); err != nil {
			return err
		}
		s.setState(appctx.StateEjected)
		return nil
	})
}

// AfterEject reports the listener as closed.
func (s *Server) AfterEject(_ context.Context) error {
	return s.phase(appctx.PhaseAfterEject, func() error {
		s.disconnected()
		return nil
	})
}

func (s *Server) phase(p appctx.Phase, fn func() error) error {
	s.phaseMu.Lock()
	defer s.phaseMu.Unlock()

	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	var err error
	if !phaseAllowed(last, p) {
		err = fmt.Errorf("%w: %s after %q", ErrInvalidTransition, p, last)
	} else {
		err = fn()
	}

	if s.metrics != nil {
		s.metrics.ObservePhase(string(p), err)
	}
	if err != nil {
		logger.Errorw("HTTP lifecycle phase failed", "name", s.name, "phase", string(p), "error", err)
		return err
	}

	s.mu.Lock()
	s.last = p
	s.mu.Unlock()
	logger.Debugw("HTTP lifecycle phase done", "name", s.name, "phase", string(p))
	return nil
}

func phaseAllowed(last, p appctx.Phase) bool {
	for _, prev := range allowed[p] {
		if prev == last {
			return true
		}
	}
	return false
}

// createEngine builds an engine with the fixed middleware.
func (s *Server) createEngine() *gin.Engine {
	gin.SetMode(s.opts.Mode)
	engine := gin.New()
	// 选项已校验，正常不会出错
	if err := engine.SetTrustedProxies(s.opts.TrustedProxies); err != nil {
		logger.Warnw("Invalid trusted proxies", "name", s.name, "error", err)
	}

	mw := s.opts.Middleware

	// 观测类中间件在最外层，才能看到错误处理后的最终状态码
	if mw.RequestID.Enabled {
		engine.Use(middleware.RequestIDWithOptions(*mw.RequestID))
	}
	if mw.AccessLog.Enabled {
		engine.Use(observability.AccessLogWithOptions(*mw.AccessLog))
	}
	if s.metrics != nil {
		engine.Use(s.metrics.Middleware())
	}

	engine.Use(
		s.errorFunnel(),
		cookie.Parser(mw.Cookie),
		bodyparser.JSON(mw.BodyParser),
		bodyparser.URLEncoded(mw.BodyParser),
		security.SecurityHeadersWithOptions(*mw.SecurityHeaders),
		security.CORSWithOptions(*mw.CORS),
	)

	if mw.RateLimit.Enabled {
		engine.Use(resilience.RateLimitWithOptions(*mw.RateLimit))
	}
	return engine
}

// attach installs the context injection, the metrics endpoint, the routes
// and the not-found handler.
func (s *Server) attach(engine *gin.Engine) error {
	app := s.app
	engine.Use(func(c *gin.Context) {
		c.Set(keyServer, s)
		c.Set(keyApp, app)
		c.Next()
	})

	if s.metrics != nil {
		engine.GET(s.opts.Middleware.Metrics.Path, gin.WrapH(s.metrics.Handler()))
	}

	for i, r := range s.routes {
		if r == nil {
			continue
		}
		if err := registerRoutes(engine, r); err != nil {
			return fmt.Errorf("router #%d: %w", i, err)
		}
	}

	engine.NoRoute(s.notFound)
	return nil
}

// listen binds synchronously so bind errors fail the phase, then serves
// in the background.
func (s *Server) listen(engine *gin.Engine) error {
	addr := s.opts.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:      engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}
	done := make(chan struct{})

	s.mu.Lock()
	s.server = srv
	s.listener = ln
	s.serveDone = done
	s.port = portOf(ln.Addr())
	s.mu.Unlock()

	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("HTTP server stopped unexpectedly", "name", s.name, "addr", addr, "error", err)
		}
	}()

	logger.Infow("HTTP server listening", "name", s.name, "host", s.opts.Host, "port", s.Port())
	return nil
}

// close shuts the server down gracefully within ShutdownTimeout and forces
// the remaining connections closed when that expires. The caller's
// deadline does not shorten ShutdownTimeout. It returns once the serve
// loop has exited.
func (s *Server) close(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.server, s.serveDone
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("Graceful shutdown incomplete, closing connections",
			"name", s.name, "timeout", s.opts.ShutdownTimeout.String(), "error", err)
		if cerr := srv.Close(); cerr != nil {
			return fmt.Errorf("close http server: %w", cerr)
		}
	}
	<-done

	s.mu.Lock()
	s.server = nil
	s.listener = nil
	s.serveDone = nil
	s.mu.Unlock()

	logger.Infow("HTTP server closed", "name", s.name, "host", s.opts.Host, "port", s.Port())
	return nil
}

func (s *Server) ready() {
	if hook := s.interceptors.OnReady; hook != nil {
		hook(s.opts.Host, s.Port(), s, s.app)
	}
}

func (s *Server) disconnected() {
	if hook := s.interceptors.OnDisconnected; hook != nil {
		hook(s.opts.Host, s.Port(), s, s.app)
	}
}

func (s *Server) setEngine(e *gin.Engine) {
	s.mu.Lock()
	s.engine = e
	s.mu.Unlock()
}

func (s *Server) setState(st appctx.State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Server) observeSuccess(c *gin.Context, env *response.Envelope) {
	if s.metrics != nil {
		s.metrics.ObserveEnvelope(true)
	}
	if hook := s.interceptors.OnSuccessResponse; hook != nil {
		hook(NewRequestInfo(c), env, s, s.app)
	}
}

func (s *Server) observeFailure(c *gin.Context, info *RequestInfo, env *response.Envelope, detail error) {
	if s.metrics != nil {
		s.metrics.ObserveEnvelope(false)
	}
	hook := s.interceptors.OnFailedResponse
	if hook == nil {
		return
	}
	if info == nil {
		ri := NewRequestInfo(c)
		info = &ri
	}
	hook(*info, env, s, s.app, detail)
}

func (s *Server) buildFailure(c *gin.Context, info RequestInfo, code int, message string, errBody any, detail error) *response.Envelope {
	env := response.Failure(code, message, errBody)
	s.observeFailure(c, &info, env, detail)
	return env
}

func portOf(addr net.Addr) int {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	_, p, err := net.SplitHostPort(addr.String())
	if err != nil {
		return 0
	}
	port, _ := strconv.Atoi(p)
	return port
}
