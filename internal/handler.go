package internal

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Handler declares routes on a router. It is the explicit-registration
// counterpart of annotation-scanned controllers: a controller type
// implements Routes and registers its endpoints itself.
//
// Example:
//
//	type AuthHandler struct {
//	    repo *repository.Queries
//	}
//
//	func (h *AuthHandler) Routes(r strada.Router) {
//	    r.GET("/login", h.showLogin)
//	    r.POST("/login", h.handleLogin)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for terminal route handlers. A terminal
// handler produces the response and ends the chain; routes registered
// after it for the same request never run.
// Returning a non-nil error hands the request to the error handler.
type HandlerFunc func(c Context) error

// FilterFunc is the signature for chain filters. A filter continues the
// chain by calling next (usually with its own Context) or short-circuits
// by not calling it. next is safe to call at most once per request; extra
// calls past the end of the chain are no-ops.
//
// Example:
//
//	r.Filter("/admin/**", func(c strada.Context, next strada.HandlerFunc) error {
//	    if !isAdmin(c) {
//	        return strada.ErrForbidden("admin only")
//	    }
//	    return next(c)
//	})
type FilterFunc func(c Context, next HandlerFunc) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns. It is the
// wrap-style equivalent of FilterFunc and is adapted onto the dispatch
// chain when registered with Use.
//
// Example:
//
//	func Auth(next strada.HandlerFunc) strada.HandlerFunc {
//	    return func(c strada.Context) error {
//	        if !isAuthenticated(c) {
//	            return c.Redirect(302, "/login")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers. It must commit a
// response; if it returns an error itself, the dispatcher logs the failure
// and writes a plain 500.
type ErrorHandler func(Context, error) error

// HandlerFactory supplies handler values for prototype-scoped routes. The
// dispatcher calls Create once per request with the route name; the core
// never constructs handlers itself. Implementations typically delegate to
// a dependency-injection container or a registration table.
type HandlerFactory interface {
	Create(routeName string) (HandlerFunc, error)
}

// HandlerFactoryFunc adapts a function to the HandlerFactory interface.
type HandlerFactoryFunc func(routeName string) (HandlerFunc, error)

func (f HandlerFactoryFunc) Create(routeName string) (HandlerFunc, error) {
	return f(routeName)
}

// RouteSpec is one route emitted by an external controller scanner
// (code generation, config files). The core consumes specs as-is and
// performs no reflection.
type RouteSpec struct {
	Handler HandlerFunc
	Method  string
	Path    string
	Name    string
	Scope   Scope
}

// ControllerScanner turns an application controller value into the routes
// it declares. Supplied via WithControllerScanner; consumed by New for
// every value passed to WithControllers.
type ControllerScanner func(controller any) ([]RouteSpec, error)

// TraceEcho reflects the request line and headers back as a message/http
// response, the diagnostic behavior defined for the TRACE method. TRACE
// routes are never synthesized; opt in explicitly:
//
//	r.TRACE("/**", strada.TraceEcho)
func TraceEcho(c Context) error {
	r := c.Request()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\r\n", r.Method, r.URL.RequestURI(), r.Proto)
	for _, name := range slices.Sorted(maps.Keys(r.Header)) {
		for _, v := range r.Header[name] {
			fmt.Fprintf(&b, "%s: %s\r\n", name, v)
		}
	}

	c.SetHeader("Content-Type", "message/http")
	rw := c.ResponseWriter()
	rw.WriteHeader(http.StatusOK)
	_, err := rw.Write([]byte(b.String()))
	return err
}
