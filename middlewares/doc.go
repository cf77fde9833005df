// Package middlewares provides HTTP middleware for Strada applications.
//
// This package includes five essential middlewares:
//
// # Request ID
//
// RequestID middleware assigns a unique ID to each request for tracing and debugging.
// It checks incoming headers for existing IDs or generates new ones using ULID.
//
//	app, err := strada.New(
//	    strada.WithMiddleware(
//	        middlewares.RequestID(),
//	    ),
//	)
//
// Use RequestIDExtractor() with WithLogger for automatic request_id in all logs:
//
//	app, err := strada.New(
//	    strada.WithLogger("api", middlewares.RequestIDExtractor()),
//	    strada.WithMiddleware(
//	        middlewares.RequestID(),
//	    ),
//	)
//
// # Recover
//
// Recover middleware catches panics and converts them to typed errors.
// The PanicError can be handled by the global ErrorHandler.
//
//	app, err := strada.New(
//	    strada.WithMiddleware(
//	        middlewares.Recover(),
//	    ),
//	    strada.WithErrorHandler(func(c strada.Context, err error) error {
//	        if middlewares.IsPanicError(err) {
//	            pe, _ := middlewares.AsPanicError(err)
//	            c.LogError("panic", "value", pe.Value, "stack", string(pe.Stack))
//	            return c.String(500, "Internal Server Error")
//	        }
//	        return strada.DefaultErrorHandler(c, err)
//	    }),
//	)
//
// # Timeout
//
// Timeout middleware enforces request timeouts and returns typed TimeoutError.
// Note: The handler goroutine continues after timeout; use context.Done() for early termination.
//
//	app, err := strada.New(
//	    strada.WithMiddleware(
//	        middlewares.Timeout(5*time.Second),
//	    ),
//	    strada.WithErrorHandler(func(c strada.Context, err error) error {
//	        if middlewares.IsTimeoutError(err) {
//	            return c.String(504, "Gateway Timeout")
//	        }
//	        return strada.DefaultErrorHandler(c, err)
//	    }),
//	)
//
// # CORS
//
// CORS middleware handles Cross-Origin Resource Sharing headers.
// It processes preflight (OPTIONS) requests and adds CORS headers to all responses.
//
//	app, err := strada.New(
//	    strada.WithMiddleware(
//	        middlewares.CORS(),  // Allow all origins (default)
//	    ),
//	)
//
// Configure specific origins and credentials:
//
//	app, err := strada.New(
//	    strada.WithMiddleware(
//	        middlewares.CORS(
//	            middlewares.WithAllowOrigins("https://app.example.com"),
//	            middlewares.WithAllowCredentials(),
//	        ),
//	    ),
//	)
//
// Use dynamic origin validation:
//
//	app, err := strada.New(
//	    strada.WithMiddleware(
//	        middlewares.CORS(
//	            middlewares.WithAllowOriginFunc(func(origin string) bool {
//	                // Custom logic to validate origin
//	                return strings.HasSuffix(origin, ".example.com")
//	            }),
//	        ),
//	    ),
//	)
//
// # Locale
//
// Locale middleware resolves the request language from an explicit query
// parameter, a cookie, or the Accept-Language header, matched against the
// languages the app supports. The resolved tag is returned by c.Locale().
//
//	app, err := strada.New(
//	    strada.WithMiddleware(
//	        middlewares.Locale([]language.Tag{language.English, language.German}),
//	    ),
//	)
//
// # Recommended Middleware Order
//
// Apply middlewares in this order for best results:
//
//	strada.WithMiddleware(
//	    middlewares.CORS(),       // First: handle preflight before other processing
//	    middlewares.RequestID(),  // Second: assign ID for all subsequent logging
//	    middlewares.Recover(),    // Third: catch panics from timeout and handlers
//	    middlewares.Timeout(5*time.Second), // Fourth: enforce timeout
//	)
//
// # Complete Example
//
//	import (
//	    "github.com/go-strada/strada"
//	    "github.com/go-strada/strada/middlewares"
//	)
//
//	app, err := strada.New(
//	    strada.WithLogger("api", middlewares.RequestIDExtractor()),
//	    strada.WithMiddleware(
//	        middlewares.CORS(),
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	        middlewares.Timeout(5*time.Second),
//	    ),
//	    strada.WithErrorHandler(func(c strada.Context, err error) error {
//	        switch {
//	        case middlewares.IsPanicError(err):
//	            return c.String(500, "Internal Server Error")
//	        case middlewares.IsTimeoutError(err):
//	            return c.String(504, "Gateway Timeout")
//	        default:
//	            return strada.DefaultErrorHandler(c, err)
//	        }
//	    }),
//	)
package middlewares
