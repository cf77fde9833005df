package internal

import "io/fs"

// Router is the interface handlers use to declare routes.
// Registration order is significant: every route whose pattern and method
// match a request joins that request's chain, in registration order, so
// filters must be registered before the terminal handlers they wrap.
type Router interface {
	// GET registers a terminal handler for GET requests.
	GET(path string, h HandlerFunc) *Route

	// POST registers a terminal handler for POST requests.
	POST(path string, h HandlerFunc) *Route

	// PUT registers a terminal handler for PUT requests.
	PUT(path string, h HandlerFunc) *Route

	// PATCH registers a terminal handler for PATCH requests.
	PATCH(path string, h HandlerFunc) *Route

	// DELETE registers a terminal handler for DELETE requests.
	DELETE(path string, h HandlerFunc) *Route

	// HEAD registers a terminal handler for HEAD requests.
	HEAD(path string, h HandlerFunc) *Route

	// OPTIONS registers a terminal handler for OPTIONS requests.
	OPTIONS(path string, h HandlerFunc) *Route

	// TRACE registers a terminal handler for TRACE requests.
	TRACE(path string, h HandlerFunc) *Route

	// CONNECT registers a terminal handler for CONNECT requests.
	CONNECT(path string, h HandlerFunc) *Route

	// ANY registers a terminal handler matching every HTTP method.
	ANY(path string, h HandlerFunc) *Route

	// Filter registers a chain filter matching every HTTP method at path.
	// The filter decides whether to call next; skipping it ends the chain.
	Filter(path string, f FilterFunc) *Route

	// Use registers wrap-style middlewares as filters at /** under the
	// current prefix. Each middleware becomes its own chain link, in
	// argument order.
	Use(mw ...Middleware)

	// Route creates a route group with a pattern prefix.
	// All routes defined inside fn share the pattern prefix.
	Route(prefix string, fn func(r Router))

	// Assets serves files from fsys under prefix/**. Responses carry
	// ETag, Cache-Control and nosniff headers; directory paths get 404.
	Assets(prefix string, fsys fs.FS) *Route

	// WebSocket registers a GET route that upgrades the connection and
	// hands it to h.
	WebSocket(path string, h WebSocketHandler) *Route

	// Register mounts a controller's routes at the current prefix.
	Register(h Handler)
}

// router is the registry-backed Router implementation. Route groups are
// routers sharing the same builder with an extended prefix.
type router struct {
	app    *App
	b      *registryBuilder
	prefix string
}

func (r *router) join(path string) string {
	return joinPattern(r.prefix, path)
}

func (r *router) GET(path string, h HandlerFunc) *Route {
	return r.b.handle("GET", r.join(path), h)
}

func (r *router) POST(path string, h HandlerFunc) *Route {
	return r.b.handle("POST", r.join(path), h)
}

func (r *router) PUT(path string, h HandlerFunc) *Route {
	return r.b.handle("PUT", r.join(path), h)
}

func (r *router) PATCH(path string, h HandlerFunc) *Route {
	return r.b.handle("PATCH", r.join(path), h)
}

func (r *router) DELETE(path string, h HandlerFunc) *Route {
	return r.b.handle("DELETE", r.join(path), h)
}

func (r *router) HEAD(path string, h HandlerFunc) *Route {
	return r.b.handle("HEAD", r.join(path), h)
}

func (r *router) OPTIONS(path string, h HandlerFunc) *Route {
	return r.b.handle("OPTIONS", r.join(path), h)
}

func (r *router) TRACE(path string, h HandlerFunc) *Route {
	return r.b.handle("TRACE", r.join(path), h)
}

func (r *router) CONNECT(path string, h HandlerFunc) *Route {
	return r.b.handle("CONNECT", r.join(path), h)
}

func (r *router) ANY(path string, h HandlerFunc) *Route {
	return r.b.handle(methodAny, r.join(path), h)
}

func (r *router) Filter(path string, f FilterFunc) *Route {
	return r.b.filter(r.join(path), f)
}

func (r *router) Use(mw ...Middleware) {
	pattern := r.join("/**")
	for _, m := range mw {
		r.b.filter(pattern, adaptMiddleware(m))
	}
}

func (r *router) Route(prefix string, fn func(Router)) {
	fn(&router{app: r.app, b: r.b, prefix: r.join(prefix)})
}

func (r *router) Assets(prefix string, fsys fs.FS) *Route {
	pattern := joinPattern(r.join(prefix), "/**")
	return r.b.handle("GET", pattern, assetHandler(r.app, fsys)).Named("assets " + pattern)
}

func (r *router) WebSocket(path string, h WebSocketHandler) *Route {
	pattern := r.join(path)
	return r.b.handle("GET", pattern, websocketHandler(r.app, h)).Named("ws " + pattern)
}

func (r *router) Register(h Handler) {
	h.Routes(r)
}

// adaptMiddleware converts a wrap-style Middleware into a chain filter.
// The middleware wraps the chain continuation, so code written against
// the classic func(next HandlerFunc) HandlerFunc shape joins the chain
// without changes.
func adaptMiddleware(mw Middleware) FilterFunc {
	return func(c Context, next HandlerFunc) error {
		return mw(next)(c)
	}
}
