package strada_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-strada/strada"
	"github.com/go-strada/strada/pkg/session"
)

// testHandler is a simple handler for testing.
type testHandler struct {
	message string
}

func (h *testHandler) Routes(r strada.Router) {
	r.GET("/", h.index)
	r.GET("/json", h.jsonResponse)
	r.GET("/user/{id}", h.getUser)
	r.POST("/echo", h.echo)
	r.Route("/api", func(r strada.Router) {
		r.GET("/health", h.health)
	})
}

func (h *testHandler) index(c strada.Context) error {
	return c.String(http.StatusOK, h.message)
}

func (h *testHandler) jsonResponse(c strada.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *testHandler) getUser(c strada.Context) error {
	id := c.Param("id")
	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

func (h *testHandler) echo(c strada.Context) error {
	body, _ := io.ReadAll(c.Request().Body)
	return c.String(http.StatusOK, string(body))
}

func (h *testHandler) health(c strada.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// testMiddleware adds a header to all responses.
func testMiddleware(headerName, headerValue string) strada.Middleware {
	return func(next strada.HandlerFunc) strada.HandlerFunc {
		return func(c strada.Context) error {
			c.SetHeader(headerName, headerValue)
			return next(c)
		}
	}
}

func serve(t *testing.T, app *strada.App, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(method, target, body))
	return w
}

func TestNew(t *testing.T) {
	app, err := strada.New()
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if app == nil {
		t.Fatal("New() returned nil app")
	}
}

func TestNewInvalidPattern(t *testing.T) {
	_, err := strada.New(
		strada.WithRoutes(func(r strada.Router) {
			r.GET("/users/{id:[0-9+}", func(c strada.Context) error { return nil })
		}),
	)
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
	if !errors.Is(err, strada.ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestHandlerRoutes(t *testing.T) {
	app, err := strada.New(
		strada.WithHandlers(&testHandler{message: "hello"}),
	)
	if err != nil {
		t.Fatal(err)
	}

	w := serve(t, app, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Errorf("GET / status = %d, want 200", w.Code)
	}
	if w.Body.String() != "hello" {
		t.Errorf("GET / body = %q, want %q", w.Body.String(), "hello")
	}

	w = serve(t, app, http.MethodGet, "/user/42", nil)
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["id"] != "42" {
		t.Errorf("param id = %q, want %q", resp["id"], "42")
	}

	w = serve(t, app, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("GET /api/health status = %d, want 200", w.Code)
	}

	w = serve(t, app, http.MethodPost, "/echo", strings.NewReader("ping"))
	if w.Body.String() != "ping" {
		t.Errorf("POST /echo body = %q, want %q", w.Body.String(), "ping")
	}
}

func TestMiddlewareApplied(t *testing.T) {
	app, err := strada.New(
		strada.WithHandlers(&testHandler{message: "hello"}),
		strada.WithMiddleware(testMiddleware("X-Test", "value")),
	)
	if err != nil {
		t.Fatal(err)
	}

	w := serve(t, app, http.MethodGet, "/", nil)
	if got := w.Header().Get("X-Test"); got != "value" {
		t.Errorf("X-Test header = %q, want %q", got, "value")
	}
}

func TestFilterShortCircuit(t *testing.T) {
	var reached bool
	app, err := strada.New(
		strada.WithRoutes(func(r strada.Router) {
			r.Filter("/admin/**", func(c strada.Context, next strada.HandlerFunc) error {
				if c.Header("X-Admin") == "" {
					return c.NoContent(http.StatusForbidden)
				}
				return next(c)
			})
			r.GET("/admin/panel", func(c strada.Context) error {
				reached = true
				return c.String(http.StatusOK, "panel")
			})
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	w := serve(t, app, http.MethodGet, "/admin/panel", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if reached {
		t.Error("handler ran despite filter short-circuit")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/panel", nil)
	req.Header.Set("X-Admin", "1")
	app.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status with header = %d, want 200", w.Code)
	}
	if !reached {
		t.Error("handler did not run after filter passed")
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	app, err := strada.New(
		strada.WithHandlers(&testHandler{message: "hello"}),
	)
	if err != nil {
		t.Fatal(err)
	}

	w := serve(t, app, http.MethodGet, "/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", w.Code)
	}

	w = serve(t, app, http.MethodDelete, "/json", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong method status = %d, want 405", w.Code)
	}
	if allow := w.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Errorf("Allow header = %q, want it to contain GET", allow)
	}
}

func TestTypedHelpers(t *testing.T) {
	type userKey struct{}

	app, err := strada.New(
		strada.WithRoutes(func(r strada.Router) {
			r.GET("/items/{id}", func(c strada.Context) error {
				c.Set(userKey{}, "u_123")

				if got := strada.Param[int64](c, "id"); got != 77 {
					t.Errorf("Param[int64] = %d, want 77", got)
				}
				if got := strada.Query[bool](c, "full"); !got {
					t.Error("Query[bool] = false, want true")
				}
				if got := strada.QueryDefault(c, "page", 1); got != 1 {
					t.Errorf("QueryDefault = %d, want 1", got)
				}
				if got := strada.ContextValue[string](c, userKey{}); got != "u_123" {
					t.Errorf("ContextValue = %q, want %q", got, "u_123")
				}
				return c.NoContent(http.StatusOK)
			})
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	w := serve(t, app, http.MethodGet, "/items/77?full=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHTTPErrorHelpers(t *testing.T) {
	he := strada.ErrNotFound("user not found", strada.WithErrorCode("user_not_found"))
	if he.Code != http.StatusNotFound {
		t.Errorf("Code = %d, want 404", he.Code)
	}
	if he.ErrorCode != "user_not_found" {
		t.Errorf("ErrorCode = %q, want %q", he.ErrorCode, "user_not_found")
	}

	wrapped := strada.ErrInternal("boom", strada.WithError(io.ErrUnexpectedEOF))
	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Error("expected wrapped error to match io.ErrUnexpectedEOF")
	}

	if !strada.IsHTTPError(wrapped) {
		t.Error("IsHTTPError = false, want true")
	}
	if got := strada.AsHTTPError(wrapped); got == nil || got.Code != http.StatusInternalServerError {
		t.Errorf("AsHTTPError = %v, want a 500 error", got)
	}
	if strada.IsHTTPError(errors.New("plain")) {
		t.Error("IsHTTPError(plain) = true, want false")
	}
}

func TestErrorRendering(t *testing.T) {
	app, err := strada.New(
		strada.WithRoutes(func(r strada.Router) {
			r.GET("/fail", func(c strada.Context) error {
				return strada.ErrUnprocessable("bad input", strada.WithErrorCode("bad_input"))
			})
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set("Accept", "application/json")
	app.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["error"] != "bad input" {
		t.Errorf("error = %q, want %q", resp["error"], "bad input")
	}
	if resp["code"] != "bad_input" {
		t.Errorf("code = %q, want %q", resp["code"], "bad_input")
	}
}

func TestSessionValueHelpers(t *testing.T) {
	sess := newTestSession()
	sess.SetValue("theme", "dark")
	sess.SetValue("count", 3)

	theme, err := strada.SessionValue[string](sess, "theme")
	if err != nil {
		t.Fatalf("SessionValue: %v", err)
	}
	if theme != "dark" {
		t.Errorf("theme = %q, want %q", theme, "dark")
	}

	if _, err := strada.SessionValue[string](sess, "missing"); !errors.Is(err, strada.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	if got := strada.SessionValueOr(sess, "count", 0); got != 3 {
		t.Errorf("count = %d, want 3", got)
	}
	if got := strada.SessionValueOr(sess, "missing", 9); got != 9 {
		t.Errorf("default = %d, want 9", got)
	}
}

func TestRouteNaming(t *testing.T) {
	app, err := strada.New(
		strada.WithRoutes(func(r strada.Router) {
			r.GET("/users/{id}", func(c strada.Context) error {
				return c.NoContent(http.StatusOK)
			}).Named("user.show")
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, rt := range app.Routes() {
		if rt.Name() == "user.show" {
			found = true
			if rt.Method() != http.MethodGet {
				t.Errorf("method = %q, want GET", rt.Method())
			}
		}
	}
	if !found {
		t.Error("named route not found in app.Routes()")
	}
}

func newTestSession() *strada.Session {
	return session.New("sess_1", "tok_1", time.Now().Add(time.Hour))
}
