package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
)

// dispatchState tracks a request through the dispatcher lifecycle.
type dispatchState uint8

const (
	stateReceived dispatchState = iota
	stateMatching
	stateExecuting
	stateCompleted
	stateFailed
)

func (s dispatchState) String() string {
	switch s {
	case stateReceived:
		return "received"
	case stateMatching:
		return "matching"
	case stateExecuting:
		return "executing"
	case stateCompleted:
		return "completed"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ServeHTTP makes App a http.Handler. Every request flows through the
// dispatcher: match routes, run the chain, route failures to the error
// handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.dispatch(w, r)
}

func (a *App) dispatch(w http.ResponseWriter, r *http.Request) {
	state := stateReceived
	rw := newResponseWriter(w)
	c := newContext(rw, r, a)
	path := normalizePath(r.URL.Path)

	defer func() {
		a.logger.DebugContext(r.Context(), "request dispatched",
			slog.String("method", r.Method),
			slog.String("path", path),
			slog.String("state", state.String()),
			slog.Int("status", rw.Status()),
		)
	}()

	state = stateMatching
	matches, pathMatched := a.registry.Find(r.Method, path)
	if len(matches) == 0 {
		state = stateFailed
		if pathMatched {
			allow := a.registry.allowedMethods(path)
			c.SetHeader("Allow", strings.Join(allow, ", "))
			a.fail(c, &MethodNotAllowedError{Method: r.Method, Path: path, Allow: allow})
		} else {
			a.fail(c, &NotFoundError{Method: r.Method, Path: path})
		}
		return
	}

	state = stateExecuting
	err := a.runChain(c, matches)
	switch {
	case err != nil:
		state = stateFailed
		a.fail(c, err)
	case !rw.Written():
		// Chain ran out of links without anyone committing a response.
		state = stateFailed
		a.fail(c, &NotFoundError{Method: r.Method, Path: path})
	default:
		state = stateCompleted
	}
}

// runChain executes the matched chain, converting handler panics into
// handler errors so a panicking route cannot take the server down.
func (a *App) runChain(c *requestContext, matches []routeMatch) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.ErrorContext(c.Request().Context(), "handler panic",
				slog.Any("panic", rec),
				slog.String("route", c.routeName()),
				slog.String("stack", string(debug.Stack())),
			)
			err = wrapHandlerError(c.routeName(), fmt.Errorf("panic: %v", rec))
		}
	}()
	return newChain(c, matches, a.handlerFactory).run()
}

// fail routes an error to the error handler exactly once. Custom 404 and
// 405 handlers intercept their error types first; whatever they return
// still goes through the error handler. A failing error handler never
// propagates: it is logged under ErrErrorHandler and, if nothing was
// written yet, the client gets a bare 500.
func (a *App) fail(c *requestContext, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			a.lastResort(c, fmt.Errorf("%w: panic: %v", ErrErrorHandler, rec))
		}
	}()

	if h := a.failHandlerFor(err); h != nil {
		hErr := h(c)
		if hErr == nil {
			return
		}
		err = hErr
	}

	if hErr := a.errorHandler(c, err); hErr != nil {
		a.lastResort(c, fmt.Errorf("%w: %v", ErrErrorHandler, hErr))
	}
}

func (a *App) failHandlerFor(err error) HandlerFunc {
	var nfErr *NotFoundError
	if a.notFoundHandler != nil && errors.As(err, &nfErr) {
		return a.notFoundHandler
	}
	var mnaErr *MethodNotAllowedError
	if a.methodNotAllowedHandler != nil && errors.As(err, &mnaErr) {
		return a.methodNotAllowedHandler
	}
	return nil
}

func (a *App) lastResort(c *requestContext, err error) {
	a.logger.ErrorContext(c.Request().Context(), "error handler failed",
		slog.Any("error", err),
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
	)
	if !c.response.Written() {
		http.Error(c.response, "Internal Server Error", http.StatusInternalServerError)
	}
}
