package internal

// chain runs the matched routes of a single request as one ordered
// pipeline. Filters receive the continuation and decide whether to call
// it; terminal handlers end the chain by not continuing. The cursor
// advances before a link executes, so no link can run twice even when a
// filter calls next repeatedly.
type chain struct {
	rc      *requestContext
	matches []routeMatch
	factory HandlerFactory
	pos     int
}

func newChain(rc *requestContext, matches []routeMatch, factory HandlerFactory) *chain {
	return &chain{rc: rc, matches: matches, factory: factory}
}

func (ch *chain) run() error {
	return ch.next(ch.rc)
}

// next executes the link at the cursor. It is handed to filters as their
// continuation; calling it past the last link is a no-op, which is how a
// terminal route ends the chain. Each link rebinds the context to its own
// route and captured params before running.
func (ch *chain) next(c Context) error {
	if ch.pos >= len(ch.matches) {
		return nil
	}
	m := ch.matches[ch.pos]
	ch.pos++
	ch.rc.setRoute(m.route, m.params)

	if m.route.filter != nil {
		if err := m.route.filter(c, ch.next); err != nil {
			return wrapHandlerError(m.route.name, err)
		}
		return nil
	}

	h, err := ch.resolve(m.route)
	if err != nil {
		return wrapHandlerError(m.route.name, err)
	}
	if err := h(c); err != nil {
		return wrapHandlerError(m.route.name, err)
	}
	return nil
}

// resolve picks the handler for a terminal link. Prototype-scoped routes
// go through the handler factory on every request; derived routes resolve
// through the route they were derived from, so a derived HEAD shares the
// GET route's scope and factory key.
func (ch *chain) resolve(rt *Route) (HandlerFunc, error) {
	target := rt
	if rt.origin != nil {
		target = rt.origin
	}
	if target.scope == ScopePrototype && ch.factory != nil {
		return ch.factory.Create(target.name)
	}
	return target.handler, nil
}
