package internal

import (
	"context"
	"io/fs"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/text/language"

	"github.com/go-strada/strada/pkg/cookie"
	"github.com/go-strada/strada/pkg/logger"
	"github.com/go-strada/strada/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithBaseDomain configures the base domain for subdomain extraction.
// This enables c.Subdomain() to work without parameters.
//
// Example:
//
//	strada.New(
//	    strada.WithBaseDomain("example.com"),
//	)
func WithBaseDomain(domain string) Option {
	return func(a *App) {
		a.baseDomain = domain
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided, ahead of every route.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithRoutes registers routes with a plain function, for small apps that
// don't need the Handler interface.
//
// Example:
//
//	strada.New(
//	    strada.WithRoutes(func(r strada.Router) {
//	        r.GET("/", home)
//	        r.GET("/posts/{slug}", showPost)
//	    }),
//	)
func WithRoutes(fn ...func(Router)) Option {
	return func(a *App) {
		a.routeFns = append(a.routeFns, fn...)
	}
}

// WithAssets serves files from fsys under prefix/**. Pass subDir to strip
// an embed directory prefix; leave it empty to serve fsys as-is.
// Directory listings are disabled. Responses carry a strong ETag and
// cache headers.
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
	return func(a *App) {
		a.assetMounts = append(a.assetMounts, assetMount{fsys: fsys, prefix: prefix, subDir: subDir})
	}
}

// WithAssetMaxAge sets the Cache-Control max-age for asset responses.
// Defaults to one hour.
func WithAssetMaxAge(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.assetMaxAge = d
		}
	}
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler returns a non-nil error. The handler may delegate
// to strada.DefaultErrorHandler for cases it doesn't care about.
//
// Example:
//
//	strada.WithErrorHandler(func(c strada.Context, err error) error {
//	    if errors.Is(err, storage.ErrQuotaExceeded) {
//	        return c.JSON(http.StatusTooManyRequests, map[string]string{
//	            "error": "quota exceeded",
//	        })
//	    }
//	    return strada.DefaultErrorHandler(c, err)
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
//
// Example:
//
//	strada.WithNotFoundHandler(func(c strada.Context) error {
//	    return c.String(http.StatusNotFound, "Page not found")
//	})
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler. The Allow header
// is already set when the handler runs.
//
// Example:
//
//	strada.WithMethodNotAllowedHandler(func(c strada.Context) error {
//	    return c.String(http.StatusMethodNotAllowed, "Method not allowed")
//	})
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	strada.WithHealthChecks(
//	    strada.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    strada.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(healthChecks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
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
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
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
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
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
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookieManager = cookie.New(opts...)
	}
}

// WithSession enables server-side session management.
// A session.Store implementation must be provided (memory, Redis or
// Postgres). Sessions are loaded lazily and saved automatically before
// the response is written.
//
// Example:
//
//	store := session.NewPostgresStore(pool)
//	strada.New(
//	    strada.WithSession(store,
//	        strada.WithSessionCookieName("__sid"),
//	        strada.WithSessionMaxAge(86400 * 30),
//	        strada.WithSessionSecure(true),
//	    ),
//	)
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessionManager = NewSessionManager(store, opts...)
	}
}

// WithHandlerFactory sets the factory consulted for prototype-scoped
// routes. The factory receives the route name and returns a fresh handler
// for each request, so per-request handler state never leaks between
// requests.
func WithHandlerFactory(f HandlerFactory) Option {
	return func(a *App) {
		a.handlerFactory = f
	}
}

// WithControllerScanner sets the scanner that turns controller values
// into route specs. The scanner is the integration point for generated
// route tables; the core never reflects over controllers itself.
func WithControllerScanner(s ControllerScanner) Option {
	return func(a *App) {
		a.controllerScanner = s
	}
}

// WithControllers registers controller values to be scanned during setup.
// Requires WithControllerScanner.
func WithControllers(controllers ...any) Option {
	return func(a *App) {
		a.controllers = append(a.controllers, controllers...)
	}
}

// WithFormatter appends body formatters for c.Send content negotiation.
// Defaults (JSON, HTML, plain text) stay registered; custom formatters
// are consulted after them in the order provided.
func WithFormatter(f ...Formatter) Option {
	return func(a *App) {
		a.formatters = append(a.formatters, f...)
	}
}

// WithLocales sets the languages c.Locale matches Accept-Language
// against. The first tag is the fallback.
//
// Example:
//
//	strada.New(
//	    strada.WithLocales(language.English, language.German),
//	)
func WithLocales(tags ...language.Tag) Option {
	return func(a *App) {
		if len(tags) > 0 {
			a.locales = tags
			a.localeMatcher = language.NewMatcher(tags)
		}
	}
}

// WithWebSocketUpgrader replaces the default websocket upgrader, for
// custom buffer sizes, subprotocols or origin checks.
func WithWebSocketUpgrader(u websocket.Upgrader) Option {
	return func(a *App) {
		a.upgrader = u
	}
}

// WithSchedule runs task on a cron schedule while the server is running.
// Accepts standard 5-field cron expressions plus the @every, @hourly,
// @daily and @weekly shortcuts. Invalid expressions fail New.
//
// Example:
//
//	strada.New(
//	    strada.WithSchedule("@every 10m", cleanupExpiredSessions),
//	    strada.WithSchedule("0 3 * * *", rebuildSearchIndex),
//	)
func WithSchedule(spec string, task func(context.Context) error) Option {
	return func(a *App) {
		a.schedules = append(a.schedules, scheduledTask{spec: spec, task: task})
	}
}
