package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Registration and dispatch failures produced by the router itself.
var (
	// ErrInvalidPattern wraps route pattern syntax errors. It surfaces from
	// New and aborts application startup.
	ErrInvalidPattern = errors.New("invalid route pattern")

	// ErrErrorHandler marks a failure inside the error handler itself. The
	// dispatcher logs it and falls back to a plain 500; it never propagates.
	ErrErrorHandler = errors.New("error handler failed")
)

// NotFoundError is reported when no route matches the request path, or when
// a matched chain finishes without committing a response.
type NotFoundError struct {
	Method string
	Path   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no route for %s %s", e.Method, e.Path)
}

// MethodNotAllowedError is reported when the path matches at least one
// route pattern but none for the request method. Allow holds the methods
// registered for the path, in registration order.
type MethodNotAllowedError struct {
	Method string
	Path   string
	Allow  []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method %s not allowed for %s (allow: %s)", e.Method, e.Path, strings.Join(e.Allow, ", "))
}

// HandlerError wraps an error returned (or a panic raised) by a route
// handler, naming the route it came from. Errors are wrapped once: the
// innermost failing route wins.
type HandlerError struct {
	Err   error
	Route string
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s: %v", e.Route, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// wrapHandlerError attaches route attribution to err unless it already
// carries one from a link deeper in the chain.
func wrapHandlerError(route string, err error) error {
	if err == nil {
		return nil
	}
	var he *HandlerError
	if errors.As(err, &he) {
		return err
	}
	return &HandlerError{Route: route, Err: err}
}

// HTTPError is a renderable HTTP failure: status code, user-facing message,
// and optional machine-readable metadata. Handlers return it to control the
// response the error handler renders.
type HTTPError struct {
	// Err is the underlying cause (logged, never exposed to clients).
	Err error

	// Message is the user-facing error message.
	Message string

	// ErrorCode is an application-specific code for client-side handling.
	ErrorCode string

	// RequestID is the request tracking ID, when known.
	RequestID string

	// Code is the HTTP status code.
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusConflict, message, opts...)
}

func ErrUnsupportedMedia(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnsupportedMediaType, message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, opts...)
}

// IsHTTPError reports whether err is or wraps an HTTPError.
func IsHTTPError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he)
}

// AsHTTPError extracts the HTTPError from err, unwrapping as needed.
// Returns nil if none is present.
func AsHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return nil
}

// httpErrorFor maps any dispatch error to the HTTPError the default error
// handler renders. Unknown errors become an opaque 500.
func httpErrorFor(err error) *HTTPError {
	if he := AsHTTPError(err); he != nil {
		return he
	}

	var nf *NotFoundError
	if errors.As(err, &nf) {
		return ErrNotFound(http.StatusText(http.StatusNotFound), WithError(err), WithErrorCode("not_found"))
	}

	var mna *MethodNotAllowedError
	if errors.As(err, &mna) {
		return NewHTTPError(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed),
			WithError(err), WithErrorCode("method_not_allowed"))
	}

	return ErrInternal(http.StatusText(http.StatusInternalServerError), WithError(err), WithErrorCode("internal_error"))
}
