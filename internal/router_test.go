package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
)

func TestRouter_GroupPrefix(t *testing.T) {
	app := newTestApp(t, WithRoutes(func(r Router) {
		r.Route("/api", func(api Router) {
			api.Route("/v1", func(v1 Router) {
				v1.GET("/users", func(c Context) error {
					return c.String(http.StatusOK, "v1 users")
				})
			})
		})
	}))

	w := doRequest(app, http.MethodGet, "/api/v1/users")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "v1 users" {
		t.Errorf("body = %q", w.Body.String())
	}

	// The unprefixed path does not exist.
	w = doRequest(app, http.MethodGet, "/users")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRouter_GroupMiddlewareScoped(t *testing.T) {
	var hits int
	counter := func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			hits++
			return next(c)
		}
	}

	app := newTestApp(t, WithRoutes(func(r Router) {
		r.GET("/public", func(c Context) error {
			return c.NoContent(http.StatusOK)
		})
		r.Route("/admin", func(admin Router) {
			admin.Use(counter)
			admin.GET("/panel", func(c Context) error {
				return c.NoContent(http.StatusOK)
			})
		})
	}))

	doRequest(app, http.MethodGet, "/public")
	if hits != 0 {
		t.Errorf("middleware ran outside its group: hits = %d", hits)
	}

	doRequest(app, http.MethodGet, "/admin/panel")
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
}

func TestRouter_UseOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(c Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}

	app := newTestApp(t, WithRoutes(func(r Router) {
		r.Use(tag("outer"), tag("inner"))
		r.GET("/", func(c Context) error {
			order = append(order, "handler")
			return c.NoContent(http.StatusOK)
		})
	}))

	doRequest(app, http.MethodGet, "/")
	want := []string{"outer", "inner", "handler"}
	if !equalStrings(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestRouter_ANY(t *testing.T) {
	app := newTestApp(t, WithRoutes(func(r Router) {
		r.ANY("/webhook", func(c Context) error {
			return c.String(http.StatusOK, c.Method())
		})
	}))

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		w := doRequest(app, method, "/webhook")
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", method, w.Code)
		}
		if w.Body.String() != method {
			t.Errorf("%s: body = %q", method, w.Body.String())
		}
	}
}

type fakeController struct{}

func (fakeController) Routes(r Router) {
	r.GET("/things", func(c Context) error {
		return c.String(http.StatusOK, "things")
	})
}

func TestRouter_RegisterInGroup(t *testing.T) {
	app := newTestApp(t, WithRoutes(func(r Router) {
		r.Route("/api", func(api Router) {
			api.Register(fakeController{})
		})
	}))

	w := doRequest(app, http.MethodGet, "/api/things")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRouter_WithHandlersOption(t *testing.T) {
	app := newTestApp(t, WithHandlers(fakeController{}))

	w := doRequest(app, http.MethodGet, "/things")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func assetApp(t *testing.T) *App {
	t.Helper()
	fsys := fstest.MapFS{
		"app.js":      &fstest.MapFile{Data: []byte("console.log('hi')"), ModTime: time.Now()},
		"css/app.css": &fstest.MapFile{Data: []byte("body{margin:0}"), ModTime: time.Now()},
	}
	return newTestApp(t, WithRoutes(func(r Router) {
		r.Assets("/static", fsys)
	}))
}

func TestRouter_AssetsServesFile(t *testing.T) {
	app := assetApp(t)

	w := doRequest(app, http.MethodGet, "/static/app.js")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "console.log('hi')" {
		t.Errorf("body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "javascript") {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("ETag") == "" {
		t.Error("ETag missing")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("nosniff missing")
	}
	if cc := w.Header().Get("Cache-Control"); !strings.HasPrefix(cc, "public, max-age=") {
		t.Errorf("Cache-Control = %q", cc)
	}
}

func TestRouter_AssetsNestedFile(t *testing.T) {
	app := assetApp(t)

	w := doRequest(app, http.MethodGet, "/static/css/app.css")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "css") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRouter_AssetsConditionalGet(t *testing.T) {
	app := assetApp(t)

	first := doRequest(app, http.MethodGet, "/static/app.js")
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("ETag missing")
	}

	req := httptest.NewRequest(http.MethodGet, "/static/app.js", nil)
	req.Header.Set("If-None-Match", etag)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("304 body = %q, want empty", w.Body.String())
	}
}

func TestRouter_AssetsMissing(t *testing.T) {
	app := assetApp(t)

	for _, target := range []string{
		"/static/missing.js",
		"/static/css",          // directory
		"/static/../secret.js", // traversal
	} {
		w := doRequest(app, http.MethodGet, target)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, w.Code)
		}
	}
}

func TestRouter_AssetsDerivedHEAD(t *testing.T) {
	app := assetApp(t)

	w := doRequest(app, http.MethodHead, "/static/app.js")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRouter_WebSocketRejectsPlainGET(t *testing.T) {
	app := newTestApp(t, WithRoutes(func(r Router) {
		r.WebSocket("/ws", func(c Context, conn *websocket.Conn) error {
			return nil
		})
	}))

	// No upgrade headers: the handshake fails and the upgrader writes the
	// error response itself.
	w := doRequest(app, http.MethodGet, "/ws")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRouter_RouteNames(t *testing.T) {
	app := newTestApp(t, WithRoutes(func(r Router) {
		r.GET("/users", func(c Context) error { return nil }).Named("users.list")
		r.POST("/users", func(c Context) error { return nil })
	}))

	var names []string
	for _, rt := range app.Routes() {
		if !rt.Derived() {
			names = append(names, rt.Name())
		}
	}
	want := []string{"users.list", "POST /users"}
	if !equalStrings(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}
