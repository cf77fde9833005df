package strada

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/text/language"

	"github.com/go-strada/strada/internal"
	"github.com/go-strada/strada/pkg/cookie"
	"github.com/go-strada/strada/pkg/hostrouter"
	"github.com/go-strada/strada/pkg/logger"
	"github.com/go-strada/strada/pkg/session"
)

// Type aliases - public API
type (
	// App orchestrates the application lifecycle.
	// It manages HTTP routing, filters, middleware, and graceful shutdown.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// FilterFunc is the signature for route filters. A filter decides
	// whether and when to call the rest of the chain via next.
	FilterFunc = internal.FilterFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// Route is a registered route. Returned from registration methods so
	// callers can name it or change its scope before the app starts.
	Route = internal.Route

	// RouteSpec describes a route discovered by a ControllerScanner.
	RouteSpec = internal.RouteSpec

	// Scope controls handler instantiation: singleton or per-request.
	Scope = internal.Scope

	// HandlerFactory creates per-request handlers for prototype routes.
	HandlerFactory = internal.HandlerFactory

	// HandlerFactoryFunc adapts a function to the HandlerFactory interface.
	HandlerFactoryFunc = internal.HandlerFactoryFunc

	// ControllerScanner turns an annotated controller value into routes.
	ControllerScanner = internal.ControllerScanner

	// Formatter renders negotiated response bodies for c.Send.
	Formatter = internal.Formatter

	// Markdown marks a string as markdown source for formatters.
	Markdown = internal.Markdown

	// WebSocketHandler handles an upgraded WebSocket connection.
	WebSocketHandler = internal.WebSocketHandler

	// Component is the interface for renderable templates.
	Component = internal.Component

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// CheckFunc is a readiness check function.
	CheckFunc = internal.CheckFunc

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// Session represents a user session.
	Session = session.Session

	// SessionStore defines the interface for session persistence.
	SessionStore = session.Store

	// ResponseWriter wraps http.ResponseWriter with write hooks and
	// status/size capture.
	ResponseWriter = internal.ResponseWriter

	// HTTPError is an error with an associated HTTP status code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// NotFoundError reports that no route matched the request path.
	NotFoundError = internal.NotFoundError

	// MethodNotAllowedError reports that the path matched but the method
	// did not. Allow lists the methods that would have matched.
	MethodNotAllowedError = internal.MethodNotAllowedError

	// HandlerError wraps an error returned by a route's handler chain.
	HandlerError = internal.HandlerError

	// HostRoutes maps host patterns to HTTP handlers.
	// Patterns: "api.example.com" (exact) or "*.example.com" (wildcard)
	HostRoutes = hostrouter.Routes
)

// Route scopes.
const (
	// ScopeSingleton reuses one handler instance for every request.
	ScopeSingleton = internal.ScopeSingleton
	// ScopePrototype creates a fresh handler per request via the
	// configured HandlerFactory.
	ScopePrototype = internal.ScopePrototype
)

// ErrInvalidPattern is returned (wrapped) from New when a route pattern
// cannot be compiled.
var ErrInvalidPattern = internal.ErrInvalidPattern

// Constructors

// New creates a new application with the given options.
// The App is immutable after creation: all routes are registered and
// frozen before New returns.
//
// Example:
//
//	app, err := strada.New(
//	    strada.WithMiddleware(middlewares.Recover()),
//	    strada.WithRoutes(func(r strada.Router) {
//	        r.GET("/", home)
//	        r.GET("/users/{id}", showUser).Named("user.show")
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = app.Run(":8080", strada.Logger(slog))
func New(opts ...Option) (*App, error) {
	return internal.New(opts...)
}

// Run starts a multi-domain HTTP server and blocks until shutdown.
// Use this for composing multiple Apps under different domain patterns.
//
// Example:
//
//	api, _ := strada.New(
//	    strada.WithHandlers(handlers.NewAPIHandler()),
//	)
//
//	website, _ := strada.New(
//	    strada.WithHandlers(handlers.NewLandingHandler()),
//	)
//
//	err := strada.Run(
//	    strada.Domain("api.acme.com", api),
//	    strada.Domain("*.acme.com", website),
//	    strada.Address(":8080"),
//	    strada.Logger(slog),
//	)
func Run(opts ...RunOption) error {
	return internal.Run(opts...)
}

// App options

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided, before any route filters.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithRoutes registers routes with a plain function.
// Useful for small apps that don't need handler structs.
//
// Example:
//
//	strada.WithRoutes(func(r strada.Router) {
//	    r.GET("/", home)
//	    r.Filter("/admin/**", requireAdmin)
//	})
func WithRoutes(fn ...func(Router)) Option {
	return internal.WithRoutes(fn...)
}

// WithControllers registers controller values to be scanned for routes.
// Requires a ControllerScanner configured via WithControllerScanner.
func WithControllers(controllers ...any) Option {
	return internal.WithControllers(controllers...)
}

// WithControllerScanner sets the scanner used to discover routes on
// values registered via WithControllers.
func WithControllerScanner(s ControllerScanner) Option {
	return internal.WithControllerScanner(s)
}

// WithHandlerFactory sets the factory used to build per-request handlers
// for routes registered with the prototype scope.
func WithHandlerFactory(f HandlerFactory) Option {
	return internal.WithHandlerFactory(f)
}

// WithAssets mounts a static file handler under the given prefix.
// Directory listings are disabled. Responses carry strong ETags and
// default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	strada.New(
//	    strada.WithAssets("/static", assets, "public"),
//	)
func WithAssets(prefix string, fsys fs.FS, subDir string) Option {
	return internal.WithAssets(prefix, fsys, subDir)
}

// WithAssetMaxAge sets the Cache-Control max-age for static assets.
// Defaults to one hour.
func WithAssetMaxAge(d time.Duration) Option {
	return internal.WithAssetMaxAge(d)
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler returns a non-nil error.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
// The Allow header is set before the handler runs.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	strada.WithHealthChecks(
//	    strada.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id, user_id).
//
// Example:
//
//	strada.New(
//	    strada.WithLogger("api", requestIDExtractor, userIDExtractor),
//	)
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
//
// Example:
//
//	customLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	strada.New(
//	    strada.WithCustomLogger(customLogger),
//	)
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithBaseDomain configures the base domain for subdomain extraction.
// This enables c.Subdomain() to work without parameters.
//
// Example:
//
//	strada.New(
//	    strada.WithBaseDomain("example.com"),
//	)
func WithBaseDomain(domain string) Option {
	return internal.WithBaseDomain(domain)
}

// WithCookieOptions configures the cookie manager.
//
// Example:
//
//	strada.New(
//	    strada.WithCookieOptions(
//	        strada.WithCookieSecret(os.Getenv("COOKIE_SECRET")),
//	        strada.WithCookieSecure(true),
//	    ),
//	)
func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// WithFormatter registers response formatters for content negotiation.
// Formatters are consulted in order against the request's Accept header
// by c.Send. JSON, HTML, and plain text formatters are always available
// as fallbacks.
func WithFormatter(f ...Formatter) Option {
	return internal.WithFormatter(f...)
}

// WithLocales sets the languages the app serves, in preference order.
// The first tag is the fallback when nothing matches Accept-Language.
//
// Example:
//
//	strada.New(
//	    strada.WithLocales(language.English, language.German),
//	)
func WithLocales(tags ...language.Tag) Option {
	return internal.WithLocales(tags...)
}

// WithWebSocketUpgrader sets a custom upgrader for WebSocket routes.
// Use this to restrict origins or tune buffer sizes.
func WithWebSocketUpgrader(u websocket.Upgrader) Option {
	return internal.WithWebSocketUpgrader(u)
}

// WithSchedule registers a background task on a cron schedule.
// The scheduler starts with the app and stops during shutdown.
//
// Example:
//
//	strada.WithSchedule("@every 1h", cleanupSessions)
//	strada.WithSchedule("0 3 * * *", rebuildIndex)
func WithSchedule(spec string, task func(context.Context) error) Option {
	return internal.WithSchedule(spec, task)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
func WithReadinessCheck(name string, fn CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address sets the HTTP server address.
// Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the application logger.
// If nil, logging is disabled.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run during server startup.
// Hooks are called in the order they were registered, after the port is bound
// but before serving requests. If any hook fails, the server stops and
// returns the error.
//
// Example:
//
//	strada.StartupHook(warmCache)
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
// Each hook receives a context with the shutdown timeout.
//
// Example:
//
//	strada.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// Domain maps a host pattern to an App.
// Patterns: "api.example.com" (exact) or "*.example.com" (wildcard)
//
// Example:
//
//	strada.Run(
//	    strada.Domain("api.acme.com", apiApp),
//	    strada.Domain("*.acme.com", tenantApp),
//	)
func Domain(pattern string, app *App) RunOption {
	return internal.Domain(pattern, app)
}

// Fallback sets the default App for requests that don't match any domain.
// If no domains are configured, the fallback becomes the main handler.
//
// Example:
//
//	strada.Run(
//	    strada.Domain("api.acme.com", apiApp),
//	    strada.Fallback(landingApp),
//	)
func Fallback(app *App) RunOption {
	return internal.Fallback(app)
}

// WithContext sets a custom base context for signal handling.
// Useful for testing or when integrating with existing context hierarchies.
// Defaults to context.Background() if not set.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Context helpers

// ContextValue retrieves a typed value from the context.
// Returns the zero value of T if the key is not found or type assertion fails.
//
// Example:
//
//	type tenantKey struct{}
//
//	tenant := strada.ContextValue[string](c, tenantKey{})
//	user := strada.ContextValue[*User](c, userKey{})
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param retrieves a typed path variable from the context.
// Returns the zero value of T if the variable is missing or unparseable.
//
// Example:
//
//	id := strada.Param[int64](c, "id")
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query retrieves a typed query parameter from the context.
// Returns the zero value of T if the parameter is missing or unparseable.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault retrieves a typed query parameter or a default.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.QueryDefault[T](c, name, defaultValue)
}

// TraceEcho is a handler for TRACE routes that echoes the request back
// to the client as message/http, as described by RFC 9110.
func TraceEcho(c Context) error {
	return internal.TraceEcho(c)
}

// DefaultErrorHandler converts handler errors to HTTP responses,
// negotiating JSON or HTML via the Accept header. Use it as the tail
// of a custom error handler to keep the default rendering.
func DefaultErrorHandler(c Context, err error) error {
	return internal.DefaultErrorHandler(c, err)
}

// HTTP errors

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithErrorCode attaches a machine-readable error code.
func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

// WithRequestID attaches a request ID for correlation.
func WithRequestID(id string) HTTPErrorOption {
	return internal.WithRequestID(id)
}

// WithError attaches an underlying error for unwrapping.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// ErrBadRequest creates a 400 error.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrUnauthorized creates a 401 error.
func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

// ErrForbidden creates a 403 error.
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

// ErrNotFound creates a 404 error.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrConflict creates a 409 error.
func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(message, opts...)
}

// ErrUnsupportedMedia creates a 415 error.
func ErrUnsupportedMedia(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnsupportedMedia(message, opts...)
}

// ErrUnprocessable creates a 422 error.
func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

// ErrInternal creates a 500 error.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// ErrServiceUnavailable creates a 503 error.
func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(message, opts...)
}

// IsHTTPError reports whether err is or wraps an *HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsHTTPError extracts the *HTTPError from err's chain.
// Returns nil if none is present.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Cookie options

// WithCookieSecret sets the secret for signing and encryption.
// Must be at least 32 bytes.
func WithCookieSecret(secret string) CookieOption {
	return cookie.WithSecret(secret)
}

// WithCookieDomain sets the cookie domain.
func WithCookieDomain(domain string) CookieOption {
	return cookie.WithDomain(domain)
}

// WithCookiePath sets the cookie path.
func WithCookiePath(path string) CookieOption {
	return cookie.WithPath(path)
}

// WithCookieSecure sets the Secure flag.
func WithCookieSecure(secure bool) CookieOption {
	return cookie.WithSecure(secure)
}

// WithCookieHTTPOnly sets the HttpOnly flag.
func WithCookieHTTPOnly(httpOnly bool) CookieOption {
	return cookie.WithHTTPOnly(httpOnly)
}

// WithCookieSameSite sets the SameSite attribute.
func WithCookieSameSite(ss http.SameSite) CookieOption {
	return cookie.WithSameSite(ss)
}

// Cookie errors for checking return values.
var (
	ErrCookieNotFound  = cookie.ErrNotFound
	ErrCookieNoSecret  = cookie.ErrNoSecret
	ErrCookieBadSecret = cookie.ErrBadSecret
	ErrCookieBadSig    = cookie.ErrBadSig
	ErrCookieDecrypt   = cookie.ErrDecrypt
)

// Session options

// WithSession enables server-side session management.
// A SessionStore implementation must be provided (e.g., the postgres or
// redis store from pkg/session).
// Sessions are loaded lazily and saved automatically before the response
// is written.
//
// Example:
//
//	store := session.NewPostgresStore(pool)
//	strada.New(
//	    strada.WithSession(store,
//	        strada.WithSessionCookieName("__sid"),
//	        strada.WithSessionMaxAge(86400 * 30),
//	    ),
//	)
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithSessionCookieName sets the session cookie name.
// Defaults to "__sid".
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionMaxAge sets the session max age in seconds.
// Defaults to 30 days.
func WithSessionMaxAge(seconds int) SessionOption {
	return internal.WithSessionMaxAge(seconds)
}

// WithSessionTouchInterval sets how often idle sessions are persisted
// to extend their expiry. Defaults to 5 minutes.
func WithSessionTouchInterval(d time.Duration) SessionOption {
	return internal.WithSessionTouchInterval(d)
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return internal.WithSessionDomain(domain)
}

// WithSessionPath sets the session cookie path.
// Defaults to "/".
func WithSessionPath(path string) SessionOption {
	return internal.WithSessionPath(path)
}

// WithSessionSecure sets the session cookie Secure flag.
// Defaults to false (should be true in production with HTTPS).
func WithSessionSecure(secure bool) SessionOption {
	return internal.WithSessionSecure(secure)
}

// WithSessionHTTPOnly sets the session cookie HttpOnly flag.
// Defaults to true (recommended for security).
func WithSessionHTTPOnly(httpOnly bool) SessionOption {
	return internal.WithSessionHTTPOnly(httpOnly)
}

// WithSessionSameSite sets the session cookie SameSite attribute.
// Defaults to SameSiteLaxMode.
func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return internal.WithSessionSameSite(sameSite)
}

// Session errors for checking return values.
var (
	ErrSessionNotConfigured = session.ErrNotConfigured
	ErrSessionNotFound      = session.ErrNotFound
	ErrSessionExpired       = session.ErrExpired
	ErrSessionInvalidToken  = session.ErrInvalidToken
)

// SessionValue is a typed helper to retrieve session values with type safety.
// Returns an error if the key doesn't exist or type assertion fails.
//
// Example:
//
//	theme, err := strada.SessionValue[string](sess, "theme")
func SessionValue[T any](sess *Session, key string) (T, error) {
	return session.Value[T](sess, key)
}

// SessionValueOr is a typed helper that returns a default value if the key
// doesn't exist or type assertion fails.
//
// Example:
//
//	theme := strada.SessionValueOr(sess, "theme", "light")
func SessionValueOr[T any](sess *Session, key string, defaultVal T) T {
	return session.ValueOr(sess, key, defaultVal)
}
