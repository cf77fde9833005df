package internal

import "fmt"

// Scope controls how a route's handler is instantiated across requests.
type Scope uint8

const (
	// ScopeSingleton shares one handler value across all requests. The
	// framework tags the contract but cannot verify it: a singleton handler
	// must be stateless or synchronize internally.
	ScopeSingleton Scope = iota

	// ScopePrototype resolves a fresh handler per request through the
	// application's HandlerFactory.
	ScopePrototype
)

func (s Scope) String() string {
	switch s {
	case ScopeSingleton:
		return "singleton"
	case ScopePrototype:
		return "prototype"
	default:
		return fmt.Sprintf("scope(%d)", uint8(s))
	}
}

// Route binds an HTTP method, a compiled path pattern, and a handler or
// filter, together with a name and an instantiation scope. Routes are
// created during the single-threaded configuration phase and frozen when
// the registry is built; after that they are immutable and safe to share.
//
// Registration returns *Route so metadata can be chained:
//
//	r.GET("/users/{id}", show).Named("users.show").Prototype()
type Route struct {
	pattern *pattern
	handler HandlerFunc
	filter  FilterFunc
	origin  *Route
	method  string
	name    string
	scope   Scope
	derived bool
	frozen  bool
}

// Named sets a human-readable route identifier. The default is derived
// from the method and pattern, e.g. "GET /users/{id}".
func (rt *Route) Named(name string) *Route {
	rt.mutable("Named")
	if name != "" {
		rt.name = name
	}
	return rt
}

// Prototype marks the route's handler for per-request instantiation via
// the application's HandlerFactory. New fails if no factory is configured.
func (rt *Route) Prototype() *Route {
	rt.mutable("Prototype")
	rt.scope = ScopePrototype
	return rt
}

// Singleton marks the route's handler as shared across requests. This is
// the default scope.
func (rt *Route) Singleton() *Route {
	rt.mutable("Singleton")
	rt.scope = ScopeSingleton
	return rt
}

func (rt *Route) mutable(op string) {
	if rt.frozen {
		panic(fmt.Sprintf("strada: Route.%s called after the application started; routes are immutable once built", op))
	}
}

// Name returns the route identifier.
func (rt *Route) Name() string {
	return rt.name
}

// Method returns the route's HTTP method, "*" for any-method routes.
func (rt *Route) Method() string {
	return rt.method
}

// Pattern returns the normalized path pattern source.
func (rt *Route) Pattern() string {
	return rt.pattern.String()
}

// Scope returns the handler instantiation scope.
func (rt *Route) Scope() Scope {
	return rt.scope
}

// Derived reports whether the route was synthesized at build time
// (automatic HEAD/OPTIONS routes) rather than registered by the user.
func (rt *Route) Derived() bool {
	return rt.derived
}

// IsFilter reports whether the route participates in chains as a filter
// rather than a terminal handler.
func (rt *Route) IsFilter() bool {
	return rt.filter != nil
}

func (rt *Route) String() string {
	return rt.name
}

func defaultRouteName(method, pattern string) string {
	return method + " " + pattern
}
