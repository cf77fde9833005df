package internal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/go-strada/strada/pkg/cookie"
	"github.com/go-strada/strada/pkg/hostrouter"
	"github.com/go-strada/strada/pkg/session"
)

// Component is the interface for renderable templates.
// This is compatible with templ.Component.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the underlying request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Method returns the HTTP method of the request.
	Method() string

	// Path returns the normalized request path the router matched on.
	Path() string

	// Route returns the route currently executing in the chain.
	// Filters see themselves while they run, then the downstream route
	// after next returns. Returns nil outside the chain.
	Route() *Route

	// Param returns the path variable captured by the current route's
	// pattern. The "*" name holds the tail matched by a ** segment.
	// Returns empty string if the variable doesn't exist.
	Param(name string) string

	// Params returns a copy of all captured path variables.
	Params() map[string]string

	// Query returns the query parameter value by name.
	// Returns empty string if the parameter doesn't exist.
	Query(name string) string

	// QueryDefault returns the query parameter value or a default.
	QueryDefault(name, defaultValue string) string

	// Form returns the form value by name.
	// Calls ParseForm/ParseMultipartForm internally on first access.
	// Returns empty string if the field doesn't exist.
	Form(name string) string

	// FormFile returns the first file for the given form key.
	// Returns the file, its header, and any error.
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)

	// Domain returns the normalized domain from the request Host header.
	// Strips port, handles IPv6, and converts to lowercase.
	Domain() string

	// Subdomain extracts the subdomain from the request.
	// Uses the base domain configured via WithBaseDomain.
	// Returns empty string if no base domain configured or host doesn't match.
	Subdomain() string

	// ClientIP returns the originating client address, honoring
	// X-Forwarded-For and X-Real-IP before falling back to RemoteAddr.
	ClientIP() string

	// Locale resolves the request language from Accept-Language against
	// the languages configured via WithLocales.
	Locale() language.Tag

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// HTML writes an HTML response with the given status code.
	HTML(code int, html string) error

	// Markdown renders markdown source to sanitized HTML with the given
	// status code.
	Markdown(code int, src string) error

	// Send negotiates a body formatter via the Accept header and writes v
	// with the given status code. Falls back to JSON when nothing matches.
	Send(code int, v any) error

	// Render renders a component with the given status code.
	// Compatible with templ.Component.
	Render(code int, component Component) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Redirect redirects to the given URL with the given status code.
	// The special target "back" redirects to the Referer, or "/" when
	// there is none.
	Redirect(code int, url string) error

	// Error creates and returns an HTTPError without writing a response.
	// The error should be returned from the handler to trigger the error handler.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Bind decodes the request body into v based on Content-Type (JSON or
	// form). Types implementing Validatable are validated after decode.
	Bind(v any) error

	// BindJSON decodes the JSON body into v and validates it.
	BindJSON(v any) error

	// BindForm decodes form data into v and validates it.
	BindForm(v any) error

	// BindQuery decodes query parameters into v and validates it.
	BindQuery(v any) error

	// Written returns true if a response has already been written.
	Written() bool

	// Logger returns the logger for advanced usage.
	Logger() *slog.Logger

	// LogDebug logs a debug message with optional attributes.
	LogDebug(msg string, attrs ...any)

	// LogInfo logs an info message with optional attributes.
	LogInfo(msg string, attrs ...any)

	// LogWarn logs a warning message with optional attributes.
	LogWarn(msg string, attrs ...any)

	// LogError logs an error message with optional attributes.
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	// The value can be retrieved using Get or from c.Context().Value(key).
	Set(key any, value any)

	// Get retrieves a value from the request context.
	// Returns nil if the key is not found.
	Get(key any) any

	// Cookie returns a plain cookie value.
	Cookie(name string) (string, error)

	// SetCookie sets a plain cookie.
	SetCookie(name, value string, maxAge int)

	// DeleteCookie removes a cookie.
	DeleteCookie(name string)

	// CookieSigned returns a signed cookie value.
	// Returns cookie.ErrNoSecret if no secret is configured.
	CookieSigned(name string) (string, error)

	// SetCookieSigned sets a signed cookie.
	// Returns cookie.ErrNoSecret if no secret is configured.
	SetCookieSigned(name, value string, maxAge int) error

	// CookieEncrypted returns an encrypted cookie value.
	// Returns cookie.ErrNoSecret if no secret is configured.
	CookieEncrypted(name string) (string, error)

	// SetCookieEncrypted sets an encrypted cookie.
	// Returns cookie.ErrNoSecret if no secret is configured.
	SetCookieEncrypted(name, value string, maxAge int) error

	// Flash reads and deletes a flash message.
	// Returns cookie.ErrNoSecret if no secret is configured.
	Flash(key string, dest any) error

	// SetFlash sets a flash message.
	// Returns cookie.ErrNoSecret if no secret is configured.
	SetFlash(key string, value any) error

	// Session returns the current session, loading or creating it as needed.
	// Returns session.ErrNotConfigured if WithSession was not called.
	Session() (*session.Session, error)

	// InitSession creates a new session for this request.
	// Returns session.ErrNotConfigured if WithSession was not called.
	InitSession() error

	// AuthenticateSession associates a user with the session and rotates the token.
	// Creates a new session if one doesn't exist.
	// Returns session.ErrNotConfigured if WithSession was not called.
	AuthenticateSession(userID string) error

	// UserID returns the authenticated user's ID from the session.
	// Loads the session lazily on first call.
	// Returns empty string if no session, no session manager, or no user.
	UserID() string

	// IsAuthenticated returns true if a user is associated with the session.
	IsAuthenticated() bool

	// SessionValue retrieves a typed value from the session.
	// Returns session.ErrNotConfigured if WithSession was not called.
	// Returns session.ErrNotFound if no session exists.
	SessionValue(key string) (any, error)

	// SetSessionValue stores a value in the session.
	// Returns session.ErrNotConfigured if WithSession was not called.
	// Returns session.ErrNotFound if no session exists.
	SetSessionValue(key string, val any) error

	// DeleteSessionValue removes a value from the session.
	// Returns session.ErrNotConfigured if WithSession was not called.
	// Returns session.ErrNotFound if no session exists.
	DeleteSessionValue(key string) error

	// DestroySession removes the session and clears the cookie.
	// Returns session.ErrNotConfigured if WithSession was not called.
	DestroySession() error

	// ResponseWriter returns the underlying ResponseWriter for advanced usage.
	ResponseWriter() *ResponseWriter
}

// requestContext implements the Context interface.
type requestContext struct {
	response      *ResponseWriter
	request       *http.Request
	logger        *slog.Logger
	cookieManager *cookie.Manager

	// Current chain position
	route  *Route
	params map[string]string
	path   string

	// Session management
	sessionManager *SessionManager
	session        *session.Session

	// Rendering
	formatters    []Formatter
	localeMatcher language.Matcher
	locales       []language.Tag

	baseDomain string

	sessionLoaded         bool
	sessionHookRegistered bool
}

// newContext creates a new context over the wrapped response writer.
func newContext(rw *ResponseWriter, r *http.Request, app *App) *requestContext {
	return &requestContext{
		request:        r,
		response:       rw,
		logger:         app.logger,
		cookieManager:  app.cookieManager,
		sessionManager: app.sessionManager,
		formatters:     app.formatters,
		localeMatcher:  app.localeMatcher,
		locales:        app.locales,
		baseDomain:     app.baseDomain,
	}
}

// setRoute rebinds the context to the chain link about to execute.
func (c *requestContext) setRoute(rt *Route, params map[string]string) {
	c.route = rt
	c.params = params
}

func (c *requestContext) routeName() string {
	if c.route == nil {
		return ""
	}
	return c.route.name
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Method() string {
	return c.request.Method
}

func (c *requestContext) Path() string {
	if c.path == "" {
		c.path = normalizePath(c.request.URL.Path)
	}
	return c.path
}

func (c *requestContext) Route() *Route {
	return c.route
}

func (c *requestContext) Param(name string) string {
	return c.params[name]
}

func (c *requestContext) Params() map[string]string {
	if c.params == nil {
		return map[string]string{}
	}
	return maps.Clone(c.params)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	v := c.request.URL.Query().Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Domain() string {
	return hostrouter.GetDomain(c.request)
}

func (c *requestContext) Subdomain() string {
	if c.baseDomain == "" {
		return ""
	}
	return hostrouter.GetSubdomain(c.request, c.baseDomain)
}

func (c *requestContext) ClientIP() string {
	return clientIP(c.request)
}

// clientIP resolves the originating client address. Proxy headers win
// over RemoteAddr so the value survives load balancers.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		if ip := strings.TrimSpace(fwd); ip != "" {
			return ip
		}
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LocaleKey is the context key for a middleware-resolved language tag.
// Locale consults it before negotiating Accept-Language.
type LocaleKey struct{}

func (c *requestContext) Locale() language.Tag {
	if tag, ok := c.Get(LocaleKey{}).(language.Tag); ok {
		return tag
	}
	tags, _, err := language.ParseAcceptLanguage(c.request.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		tags = []language.Tag{language.Und}
	}
	if c.localeMatcher != nil {
		// Match by index: the returned tag can carry extension subtags
		// the caller never configured.
		_, i, _ := c.localeMatcher.Match(tags...)
		return c.locales[i]
	}
	return tags[0]
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) HTML(code int, html string) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(html))
	return err
}

func (c *requestContext) Markdown(code int, src string) error {
	html, err := renderMarkdown([]byte(src))
	if err != nil {
		return err
	}
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	_, err = c.response.Write(html)
	return err
}

func (c *requestContext) Send(code int, v any) error {
	f := negotiateFormatter(c.request.Header.Get("Accept"), c.formatters)
	c.response.Header().Set("Content-Type", f.ContentType())
	c.response.WriteHeader(code)
	return f.Format(c.response, v)
}

func (c *requestContext) Render(code int, component Component) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	return component.Render(c.request.Context(), c.response)
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	if url == "back" {
		url = c.request.Header.Get("Referer")
		if url == "" {
			url = "/"
		}
	}
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	err := NewHTTPError(code, message)
	for _, opt := range opts {
		opt(err)
	}
	return err
}

func (c *requestContext) Bind(v any) error {
	ct := c.request.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		return c.BindJSON(v)
	}
	return c.BindForm(v)
}

func (c *requestContext) BindJSON(v any) error {
	return bindJSON(c.request, v)
}

func (c *requestContext) BindForm(v any) error {
	return bindForm(c.request, v)
}

func (c *requestContext) BindQuery(v any) error {
	return bindQuery(c.request, v)
}

func (c *requestContext) Written() bool {
	return c.response.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.cookieManager.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.cookieManager.Set(c.response, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) {
	c.cookieManager.Delete(c.response, name)
}

func (c *requestContext) CookieSigned(name string) (string, error) {
	return c.cookieManager.GetSigned(c.request, name)
}

func (c *requestContext) SetCookieSigned(name, value string, maxAge int) error {
	return c.cookieManager.SetSigned(c.response, name, value, maxAge)
}

func (c *requestContext) CookieEncrypted(name string) (string, error) {
	return c.cookieManager.GetEncrypted(c.request, name)
}

func (c *requestContext) SetCookieEncrypted(name, value string, maxAge int) error {
	return c.cookieManager.SetEncrypted(c.response, name, value, maxAge)
}

func (c *requestContext) Flash(key string, dest any) error {
	return c.cookieManager.Flash(c.response, c.request, key, dest)
}

func (c *requestContext) SetFlash(key string, value any) error {
	return c.cookieManager.SetFlash(c.response, key, value)
}

// registerSessionHook ensures the session flush hook is registered once.
// It runs before the response is written to persist any session changes.
func (c *requestContext) registerSessionHook() {
	if c.sessionHookRegistered || c.sessionManager == nil {
		return
	}
	c.sessionHookRegistered = true
	c.response.OnBeforeWrite(func() {
		if c.session != nil && c.session.IsDirty() {
			// Best-effort save; errors are logged but not propagated
			// to avoid interrupting response rendering
			if err := c.sessionManager.Store().Update(c.Context(), c.session); err != nil {
				c.logger.ErrorContext(c.Context(), "failed to save session", "error", err)
				return
			}
			c.session.ClearDirty()
		}
	})
}

// Session returns the current session, loading it from the store if needed.
// Returns session.ErrNotConfigured if WithSession was not called.
func (c *requestContext) Session() (*session.Session, error) {
	if c.sessionManager == nil {
		return nil, session.ErrNotConfigured
	}

	c.registerSessionHook()

	if c.sessionLoaded {
		return c.session, nil
	}

	sess, err := c.sessionManager.LoadSession(c.Context(), c.request)
	if err != nil {
		return nil, err
	}

	c.session = sess
	c.sessionLoaded = true
	return c.session, nil
}

// InitSession creates a new session for this request.
// Returns session.ErrNotConfigured if WithSession was not called.
func (c *requestContext) InitSession() error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}

	c.registerSessionHook()

	sess, err := c.sessionManager.CreateSession(c.Context(), c.request)
	if err != nil {
		return err
	}

	c.session = sess
	c.sessionLoaded = true
	c.sessionManager.SaveSession(c.response, sess)
	return nil
}

// AuthenticateSession associates a user with the session and rotates the token.
// Creates a new session if one doesn't exist.
// Returns session.ErrNotConfigured if WithSession was not called.
func (c *requestContext) AuthenticateSession(userID string) error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}

	sess, err := c.Session()
	if err != nil {
		c.logger.WarnContext(c.Context(), "failed to load session", "error", err)
	}
	if sess == nil {
		if err := c.InitSession(); err != nil {
			return err
		}
		sess = c.session
	}

	sess.UserID = &userID
	sess.MarkDirty()

	// Rotate token to prevent session fixation attacks
	if err := c.sessionManager.RotateToken(c.Context(), sess); err != nil {
		return err
	}

	c.sessionManager.SaveSession(c.response, sess)
	return nil
}

func (c *requestContext) UserID() string {
	sess := c.session
	if !c.sessionLoaded {
		var err error
		sess, err = c.Session()
		if err != nil {
			return ""
		}
	}
	if sess == nil || sess.UserID == nil {
		return ""
	}
	return *sess.UserID
}

func (c *requestContext) IsAuthenticated() bool {
	return c.UserID() != ""
}

func (c *requestContext) SessionValue(key string) (any, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, session.ErrNotFound
	}

	val, ok := sess.GetValue(key)
	if !ok {
		return nil, nil
	}
	return val, nil
}

func (c *requestContext) SetSessionValue(key string, val any) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if sess == nil {
		return session.ErrNotFound
	}

	sess.SetValue(key, val)
	return nil
}

func (c *requestContext) DeleteSessionValue(key string) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if sess == nil {
		return session.ErrNotFound
	}

	sess.DeleteValue(key)
	return nil
}

func (c *requestContext) DestroySession() error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}

	if c.session != nil {
		if err := c.sessionManager.Store().Delete(c.Context(), c.session.ID); err != nil {
			return err
		}
	}

	c.sessionManager.DeleteSession(c.response)

	// Mark as loaded (with nil) to prevent reload
	c.session = nil
	c.sessionLoaded = true

	return nil
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.response
}
