// Package strada provides a small, opinionated framework for building
// web applications and HTTP APIs in Go.
//
// Strada is built around a script-style routing core: routes are declared
// in order, matched in order, and composed through filters that decide
// whether to pass control down the chain. There is no hidden magic - the
// framework is a thin orchestration layer while business logic stays in
// plain Go handlers.
//
// # Quick Start
//
// Create a new application with strada.New(), configure it with options,
// and call Run() to start the HTTP server:
//
//	app, err := strada.New(
//	    strada.WithLogger("web"),
//	    strada.WithRoutes(func(r strada.Router) {
//	        r.GET("/", func(c strada.Context) error {
//	            return c.String(200, "hello")
//	        })
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routing
//
// Patterns support exact segments, single-segment wildcards (*), named
// variables (:id or {id}), regex-constrained variables ({id:[0-9]+}),
// and multi-segment tails (**). Routes match in registration order.
//
//	r.GET("/users/{id}", showUser)
//	r.GET("/files/**", serveFile)   // tail available as c.Param("*")
//	r.ANY("/proxy/**", proxy)
//
// HEAD requests fall back to GET routes, and OPTIONS is answered with an
// Allow header, unless those methods are registered explicitly.
//
// # Handlers
//
// Handlers implement the [Handler] interface to declare routes:
//
//	type AuthHandler struct {
//	    repo *repository.Queries
//	}
//
//	func NewAuth(repo *repository.Queries) *AuthHandler {
//	    return &AuthHandler{repo: repo}
//	}
//
//	func (h *AuthHandler) Routes(r strada.Router) {
//	    r.GET("/login", h.showLogin)
//	    r.POST("/login", h.handleLogin)
//	    r.POST("/logout", h.handleLogout)
//	}
//
//	func (h *AuthHandler) showLogin(c strada.Context) error {
//	    return c.Render(200, views.LoginPage())
//	}
//
// # Filters
//
// Filters are routes that wrap everything registered after their pattern.
// A filter receives the rest of the chain as next and decides whether,
// when, and how to call it:
//
//	r.Filter("/admin/**", func(c strada.Context, next strada.HandlerFunc) error {
//	    if !c.IsAuthenticated() {
//	        return c.Redirect(303, "/login")
//	    }
//	    return next(c)
//	})
//
// # Middleware
//
// Middleware wraps handlers to add cross-cutting concerns and applies to
// every route, before any filter:
//
//	func Logger(log *slog.Logger) strada.Middleware {
//	    return func(next strada.HandlerFunc) strada.HandlerFunc {
//	        return func(c strada.Context) error {
//	            start := time.Now()
//	            err := next(c)
//	            log.Info("request",
//	                "method", c.Method(),
//	                "path", c.Path(),
//	                "duration", time.Since(start),
//	            )
//	            return err
//	        }
//	    }
//	}
//
// # Shutdown
//
// The application handles SIGINT/SIGTERM for graceful shutdown.
// Register cleanup functions with ShutdownHook:
//
//	app.Run(":8080",
//	    strada.ShutdownHook(func(ctx context.Context) error {
//	        pool.Close()
//	        return nil
//	    }),
//	)
package strada
