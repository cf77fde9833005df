package internal

import (
	"fmt"
	"net/http"
	"strings"
)

// methodAny marks routes that match every HTTP method (filters, ANY).
const methodAny = "*"

// registryBuilder accumulates routes during the configuration phase.
// Pattern compile errors are recorded and surface from build, so New can
// fail with the first broken registration instead of panicking mid-setup.
type registryBuilder struct {
	routes []*Route
	err    error
}

func (b *registryBuilder) handle(method, path string, h HandlerFunc) *Route {
	p, err := compilePattern(path)
	if err != nil {
		return b.fail(method, path, err)
	}
	rt := &Route{
		pattern: p,
		handler: h,
		method:  method,
		name:    defaultRouteName(method, p.raw),
	}
	b.routes = append(b.routes, rt)
	return rt
}

func (b *registryBuilder) filter(path string, f FilterFunc) *Route {
	p, err := compilePattern(path)
	if err != nil {
		return b.fail(methodAny, path, err)
	}
	rt := &Route{
		pattern: p,
		filter:  f,
		method:  methodAny,
		name:    defaultRouteName(methodAny, p.raw),
	}
	b.routes = append(b.routes, rt)
	return rt
}

// fail records the first registration error and returns a detached route
// so call sites can keep chaining without nil checks.
func (b *registryBuilder) fail(method, path string, err error) *Route {
	if b.err == nil {
		b.err = fmt.Errorf("route %s %s: %w", method, path, err)
	}
	return &Route{
		pattern: &pattern{raw: normalizePath(path), static: true},
		method:  method,
		name:    defaultRouteName(method, path),
	}
}

// build derives HEAD and OPTIONS routes, freezes everything and returns
// the immutable registry the dispatcher reads from.
func (b *registryBuilder) build() (*registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	all := append(b.routes, deriveRoutes(b.routes)...)
	for _, rt := range all {
		rt.frozen = true
	}
	return &registry{routes: all}, nil
}

// deriveRoutes synthesizes HEAD and OPTIONS per distinct pattern string
// that has at least one GET route. HEAD reuses the first GET handler
// (net/http drops the body, so headers match the GET response). OPTIONS
// replies 200 with an Allow header listing the methods registered at that
// exact pattern string, in first-registration order. A user-registered
// HEAD or OPTIONS at the same pattern string suppresses the derived one;
// an equivalent pattern spelled differently does not.
func deriveRoutes(routes []*Route) []*Route {
	type patternInfo struct {
		firstGET   *Route
		methods    []string
		hasHEAD    bool
		hasOPTIONS bool
	}
	var order []string
	seen := make(map[string]*patternInfo)
	for _, rt := range routes {
		if rt.method == methodAny {
			continue
		}
		info, ok := seen[rt.pattern.raw]
		if !ok {
			info = &patternInfo{}
			seen[rt.pattern.raw] = info
			order = append(order, rt.pattern.raw)
		}
		switch rt.method {
		case "HEAD":
			info.hasHEAD = true
		case "OPTIONS":
			info.hasOPTIONS = true
		case "GET":
			if info.firstGET == nil {
				info.firstGET = rt
			}
		}
		if !contains(info.methods, rt.method) {
			info.methods = append(info.methods, rt.method)
		}
	}

	var derived []*Route
	for _, raw := range order {
		info := seen[raw]
		if info.firstGET == nil {
			continue
		}
		if !info.hasHEAD {
			derived = append(derived, &Route{
				pattern: info.firstGET.pattern,
				handler: info.firstGET.handler,
				origin:  info.firstGET,
				method:  "HEAD",
				name:    defaultRouteName("HEAD", raw),
				scope:   info.firstGET.scope,
				derived: true,
			})
		}
		if !info.hasOPTIONS {
			derived = append(derived, &Route{
				pattern: info.firstGET.pattern,
				handler: allowHandler(strings.Join(info.methods, ", ")),
				method:  "OPTIONS",
				name:    defaultRouteName("OPTIONS", raw),
				derived: true,
			})
		}
	}
	return derived
}

func allowHandler(allow string) HandlerFunc {
	return func(c Context) error {
		c.SetHeader("Allow", allow)
		return c.NoContent(http.StatusOK)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// routeMatch pairs a matched route with the path variables its pattern
// captured. The chain rebinds them on the context before each link runs.
type routeMatch struct {
	route  *Route
	params map[string]string
}

// registry is the immutable route table built once at startup.
type registry struct {
	routes []*Route
}

// Find returns every route matching method and path, in registration
// order with derived routes last. pathMatched reports whether any
// method-specific route matched the path regardless of method, which is
// what separates 405 from 404 when the match list comes back empty.
func (reg *registry) Find(method, path string) (matches []routeMatch, pathMatched bool) {
	for _, rt := range reg.routes {
		params, ok := rt.pattern.match(path)
		if !ok {
			continue
		}
		if rt.method != methodAny {
			pathMatched = true
		}
		if rt.method == methodAny || rt.method == method {
			matches = append(matches, routeMatch{route: rt, params: params})
		}
	}
	return matches, pathMatched
}

// allowedMethods lists the user-registered methods whose routes match
// path, deduplicated in registration order. Used for the Allow header on
// 405 responses; derived routes are skipped so HEAD and OPTIONS only show
// up when the user registered them.
func (reg *registry) allowedMethods(path string) []string {
	var allowed []string
	for _, rt := range reg.routes {
		if rt.method == methodAny || rt.derived {
			continue
		}
		if _, ok := rt.pattern.match(path); !ok {
			continue
		}
		if !contains(allowed, rt.method) {
			allowed = append(allowed, rt.method)
		}
	}
	return allowed
}

// Routes returns the built route table for introspection and logging.
func (reg *registry) Routes() []*Route {
	out := make([]*Route, len(reg.routes))
	copy(out, reg.routes)
	return out
}
