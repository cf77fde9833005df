// Package internal provides the core types and implementation for the Strada framework.
//
// This package is internal and should not be used directly. Import "github.com/go-strada/strada"
// instead, which re-exports the public API.
//
// # Core Types
//
// The package defines the fundamental types that users interact with:
//
//   - App: Orchestrates route registration, dispatch, and graceful shutdown
//   - Context: Provides request/response access, identity, and helper methods
//   - Router: Interface handlers use to declare routes with HTTP methods and grouping
//   - Handler: Interface implemented by types that declare routes on a router
//   - HandlerFunc: Signature for individual route handlers that return errors
//   - FilterFunc: Route-shaped interceptor that receives the rest of the chain as next
//   - Middleware: Wraps handlers to add cross-cutting concerns like auth or logging
//   - ErrorHandler: Custom error handling function for handler errors
//   - Route: A single registration with its pattern, method, name, and scope
//   - HandlerFactory: Creates per-request handlers for prototype-scoped routes
//
// # Routing Model
//
// Routes dispatch in registration order, not by specificity. For each request
// the app collects every route whose method and pattern match, in the order
// they were declared, and runs them as a chain. Filters pass control onward
// with next; the first route that writes a response ends the request. HEAD
// and OPTIONS are answered automatically for paths that only register other
// methods, and an explicit registration always wins over the derived one.
//
// Patterns support exact segments, single-segment wildcards (*), deep
// wildcards (**), and named variables with optional regex constraints:
//
//	r.GET("/users/{id}", h.showUser)
//	r.GET("/users/{id:\\d+}/orders", h.listOrders)
//	r.Filter("/admin/**", h.requireAdmin)
//	r.GET("/files/**", h.serveFile) // tail available as c.Param("*")
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context. The Deadline, Done, Err, and Value
// methods delegate to the underlying request context:
//
//	func (h *Handler) getUser(c internal.Context) error {
//	    // Pass c directly to database calls, HTTP clients, etc.
//	    user, err := h.repo.GetUser(c, userID)
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(200, user)
//	}
//
// # Application Structure
//
// Create an application with New() and configure it using options. New
// validates every registered pattern and fails instead of deferring errors
// to request time:
//
//	app, err := internal.New(
//	    internal.WithHandlers(authHandler, pageHandler),
//	    internal.WithMiddleware(loggingMiddleware, panicMiddleware),
//	    internal.WithHealthChecks(internal.WithReadinessCheck("db", dbCheck)),
//	)
//
// # Handler Pattern
//
// Handlers implement the Handler interface and declare routes:
//
//	type AuthHandler struct {
//	    repo *repository.Queries
//	}
//
//	func (h *AuthHandler) Routes(r internal.Router) {
//	    r.GET("/login", h.showLogin)
//	    r.POST("/login", h.handleLogin)
//	}
//
// Handlers receive dependencies via constructor injection, not context helpers.
// This keeps handler logic explicit and testable.
//
// # Identity Methods
//
// Context provides convenience methods for checking user identity. These are
// shortcuts over the session system: they load the session lazily on first
// access and return safe defaults when no session is configured:
//
//   - UserID() string: Returns the authenticated user's ID, or empty string
//   - IsAuthenticated() bool: Returns true if a user is associated with the session
//
// Example:
//
//	func (h *Handler) showProfile(c internal.Context) error {
//	    if !c.IsAuthenticated() {
//	        return c.Redirect(302, "/login")
//	    }
//	    user, err := h.repo.GetUser(c, c.UserID())
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(200, user)
//	}
//
// # Request Handling
//
// Each request receives a Context with comprehensive helper methods:
//
//	func (h *AuthHandler) handleLogin(c internal.Context) error {
//	    var form LoginForm
//	    if err := c.Bind(&form); err != nil {
//	        return err // renders a 400 with details
//	    }
//
//	    // Process login...
//	    return c.JSON(http.StatusOK, result)
//	}
//
// Types implementing Validatable are validated after binding; a validation
// failure surfaces as a 400 HTTPError.
//
// # Middleware
//
// Middleware wraps handlers to add cross-cutting concerns:
//
//	func LoggingMiddleware(next internal.HandlerFunc) internal.HandlerFunc {
//	    return func(c internal.Context) error {
//	        start := time.Now()
//	        err := next(c)
//	        duration := time.Since(start)
//	        c.LogInfo("request processed", "duration", duration)
//	        return err
//	    }
//	}
//
// Middleware applies to every matched chain, before the first route runs.
// For path-scoped interception prefer a Filter, which participates in
// ordered dispatch like any other route.
//
// # Error Handling
//
// Errors returned from handlers trigger the ErrorHandler. The handler
// writes the response itself and returns nil; a non-nil return means the
// error handler failed and the dispatcher falls back to a bare 500:
//
//	func customErrorHandler(c internal.Context, err error) error {
//	    if statusCode := getStatusCode(err); statusCode > 0 {
//	        return c.String(statusCode, err.Error())
//	    }
//	    c.LogError("unhandled error", "error", err)
//	    return internal.DefaultErrorHandler(c, err)
//	}
//
// # Server Runtime
//
// Start the server with app.Run() or use the package-level Run() for
// multi-domain deployments:
//
//	// Single app
//	err := app.Run(":8080", internal.Logger(log))
//
//	// Multi-domain
//	err := internal.Run(
//	    internal.Domain("api.example.com", apiApp),
//	    internal.Domain("*.example.com", tenantApp),
//	    internal.Address(":8080"),
//	)
//
// # Features
//
// The Context provides helpers for common request patterns:
//   - JSON encoding/decoding
//   - Form, query, and JSON binding with validation
//   - Content negotiation via c.Send and pluggable formatters
//   - Markdown rendering with HTML sanitization
//   - Cookie management (plain, signed, encrypted, flash)
//   - Session management (load, create, authenticate, destroy)
//   - Identity shortcuts (UserID, IsAuthenticated)
//   - Standard library context.Context compatibility
//   - Locale negotiation against configured languages
//   - Structured logging with request-scoped values
//   - Domain and subdomain extraction
//   - Custom context values
//
// # Design Principles
//
//   - No magic: Explicit code, predictable dispatch, no service containers
//   - Registration order is law: what you declare first runs first
//   - Flat handlers: Business logic in handlers, extract to services only when shared
//   - Constructor injection: All dependencies visible in main.go
//   - Framework, not boilerplate: Provides utilities, not business logic
//
// See the strada package documentation for the public API and usage examples.
package internal
