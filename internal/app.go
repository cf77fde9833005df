package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/text/language"

	"github.com/go-strada/strada/pkg/cache"
	"github.com/go-strada/strada/pkg/cookie"
	"github.com/go-strada/strada/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App orchestrates the application lifecycle: it owns the route registry,
// dispatches requests through matched chains, and manages graceful
// shutdown. App is immutable after creation - all configuration is done
// via New(), and the route table freezes before New returns.
type App struct {
	registry                *registry
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	logger                  *slog.Logger
	cookieManager           *cookie.Manager
	sessionManager          *SessionManager
	handlerFactory          HandlerFactory
	controllerScanner       ControllerScanner
	scheduler               *scheduler
	assetCache              *cache.Memory[string]
	localeMatcher           language.Matcher
	locales                 []language.Tag
	upgrader                websocket.Upgrader
	baseDomain              string
	assetMaxAge             time.Duration
	formatters              []Formatter
	middlewares             []Middleware
	handlers                []Handler
	routeFns                []func(Router)
	controllers             []any
	assetMounts             []assetMount
	schedules               []scheduledTask
}

// assetMount is a pending Assets registration from WithAssets.
type assetMount struct {
	fsys   fs.FS
	prefix string
	subDir string
}

// New creates a new application with the given options. Registration
// problems (invalid route patterns, controllers without a scanner,
// prototype routes without a handler factory, bad cron expressions) fail
// New instead of surfacing at request time.
//
// Example:
//
//	app, err := strada.New(
//	    strada.WithMiddleware(middlewares.Recover()),
//	    strada.WithHandlers(
//	        handlers.NewAuth(repo),
//	        handlers.NewPages(repo),
//	    ),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		logger:        logger.NewNope(), // Default: noop logger (before options)
		cookieManager: cookie.New(),     // Default: cookie manager (no secret)
		formatters:    defaultFormatters(),
		upgrader:      defaultUpgrader(),
		assetMaxAge:   time.Hour,
	}

	for _, opt := range opts {
		opt(a)
	}

	// Inject app's logger into session manager
	if a.sessionManager != nil {
		a.sessionManager.SetLogger(a.logger)
	}
	if a.errorHandler == nil {
		a.errorHandler = DefaultErrorHandler
	}
	a.assetCache = cache.NewMemory[string](cache.WithMaxEntries(4096))

	if err := a.setupRoutes(); err != nil {
		return nil, err
	}

	if len(a.schedules) > 0 {
		s, err := newScheduler(a.logger, a.schedules)
		if err != nil {
			return nil, err
		}
		a.scheduler = s
	}

	return a, nil
}

// setupRoutes builds the route registry. Registration order fixes chain
// order: global middlewares first, then health endpoints, then routes,
// handlers and controllers in option order, then asset mounts. Derived
// HEAD/OPTIONS routes are appended by the builder and the whole table
// freezes.
func (a *App) setupRoutes() error {
	b := &registryBuilder{}
	root := &router{app: a, b: b}

	root.Use(a.middlewares...)

	if a.healthConfig != nil {
		root.GET(a.healthConfig.livenessPath, livenessHandler())
		root.GET(a.healthConfig.readinessPath, readinessHandler(a.healthConfig.checks, a.logger))
	}

	for _, fn := range a.routeFns {
		fn(root)
	}
	for _, h := range a.handlers {
		root.Register(h)
	}

	if len(a.controllers) > 0 && a.controllerScanner == nil {
		return errors.New("controllers registered without a controller scanner")
	}
	for _, ctrl := range a.controllers {
		specs, err := a.controllerScanner(ctrl)
		if err != nil {
			return fmt.Errorf("scan controller %T: %w", ctrl, err)
		}
		for _, spec := range specs {
			rt := b.handle(strings.ToUpper(spec.Method), spec.Path, spec.Handler)
			if spec.Name != "" {
				rt.Named(spec.Name)
			}
			if spec.Scope == ScopePrototype {
				rt.Prototype()
			}
		}
	}

	for _, m := range a.assetMounts {
		fsys := m.fsys
		if m.subDir != "" {
			sub, err := fs.Sub(m.fsys, m.subDir)
			if err != nil {
				return fmt.Errorf("assets %s: %w", m.prefix, err)
			}
			fsys = sub
		}
		root.Assets(m.prefix, fsys)
	}

	reg, err := b.build()
	if err != nil {
		return err
	}

	if a.handlerFactory == nil {
		for _, rt := range reg.routes {
			if rt.scope == ScopePrototype && !rt.derived {
				return fmt.Errorf("route %s: prototype scope requires a handler factory", rt.name)
			}
		}
	}

	a.registry = reg
	return nil
}

// Routes returns the frozen route table, derived routes included.
func (a *App) Routes() []*Route {
	return a.registry.Routes()
}

// Run starts a single-domain HTTP server and blocks until shutdown.
// This is a convenience method for the common single-app case.
// Scheduled tasks start automatically before serving requests and stop
// gracefully during shutdown.
//
// Example:
//
//	app, err := strada.New(
//	    strada.WithHandlers(handlers.NewLandingHandler()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = app.Run(":8080", strada.Logger(slog))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	startupHooks := cfg.startupHooks
	shutdownHooks := cfg.shutdownHooks

	// Auto-register scheduler hooks if configured
	if a.scheduler != nil {
		startupHooks = append([]func(context.Context) error{a.scheduler.startFunc()}, startupHooks...)
		shutdownHooks = append(shutdownHooks, a.scheduler.stopFunc())
	}

	return runServer(runtimeConfig{
		handler:         a,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// Scheduler hooks are also needed by the multi-domain Run in run.go.
func (a *App) schedulerHooks() (startup, shutdown []func(context.Context) error) {
	if a.scheduler == nil {
		return nil, nil
	}
	return []func(context.Context) error{a.scheduler.startFunc()},
		[]func(context.Context) error{a.scheduler.stopFunc()}
}

// RequestIDKey is the context key under which the request ID middleware
// stores the generated ID. DefaultErrorHandler picks the value up for
// error payloads.
type RequestIDKey struct{}

// errorResponse is the JSON error payload shape.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// DefaultErrorHandler renders errors with content negotiation: JSON for
// JSON clients, an HTML error page for browsers, plain text otherwise.
// *HTTPError values keep their status and message; anything else becomes
// a generic 500 so internals never leak to clients. Custom error handlers
// set via WithErrorHandler may delegate to it.
func DefaultErrorHandler(c Context, err error) error {
	if c.Written() {
		c.LogDebug("error after response committed", slog.Any("error", err))
		return nil
	}

	httpErr := AsHTTPError(err)
	if httpErr == nil {
		httpErr = httpErrorFor(err)
	}
	if httpErr.RequestID == "" {
		if rid, ok := c.Get(RequestIDKey{}).(string); ok {
			clone := *httpErr
			clone.RequestID = rid
			httpErr = &clone
		}
	}

	if httpErr.Code >= 500 {
		c.LogError("request failed",
			slog.Any("error", err),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
		)
	}

	accept := c.Header("Accept")
	switch {
	case strings.Contains(accept, "text/html"):
		return c.Render(httpErr.Code, errorPage(httpErr.Code, httpErr.Message))
	case strings.Contains(accept, "application/json") || accept == "" || strings.HasPrefix(accept, "*/*"):
		return c.JSON(httpErr.Code, errorResponse{
			Error:     httpErr.Message,
			Code:      httpErr.ErrorCode,
			RequestID: httpErr.RequestID,
		})
	default:
		return c.String(httpErr.Code, fmt.Sprintf("%d %s", httpErr.Code, httpErr.Message))
	}
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        healthChecks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	strada.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(healthChecks)
		}
		c.checks[name] = fn
	}
}
