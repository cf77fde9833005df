package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/go-strada/strada/internal"
	"github.com/go-strada/strada/middlewares"
)

func TestLocale(t *testing.T) {
	t.Parallel()

	supported := []language.Tag{language.English, language.German, language.French}

	resolveVia := func(t *testing.T, req *http.Request, opts ...middlewares.LocaleOption) language.Tag {
		t.Helper()

		rec := httptest.NewRecorder()
		ctx := newTestContext(rec, req)

		mw := middlewares.Locale(supported, opts...)
		var resolved language.Tag
		handler := mw(func(c internal.Context) error {
			resolved = middlewares.GetLocale(c)
			return c.NoContent(http.StatusOK)
		})

		require.NoError(t, handler(ctx))
		return resolved
	}

	t.Run("query parameter wins", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/?lang=de", nil)
		req.Header.Set("Accept-Language", "fr")
		require.Equal(t, language.German, resolveVia(t, req))
	})

	t.Run("cookie used when no query parameter", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "lang", Value: "fr"})
		require.Equal(t, language.French, resolveVia(t, req))
	})

	t.Run("accept-language fallback", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "de-CH, de;q=0.9, en;q=0.8")
		require.Equal(t, language.German, resolveVia(t, req))
	})

	t.Run("first supported tag when nothing matches", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "ja")
		require.Equal(t, language.English, resolveVia(t, req))
	})

	t.Run("no signals resolves to default", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.Equal(t, language.English, resolveVia(t, req))
	})

	t.Run("unparseable explicit language falls back to header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/?lang=!!!", nil)
		req.Header.Set("Accept-Language", "de")
		require.Equal(t, language.German, resolveVia(t, req))
	})

	t.Run("custom query parameter name", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/?locale=fr", nil)
		require.Equal(t, language.French, resolveVia(t, req, middlewares.WithLocaleQuery("locale")))
	})

	t.Run("custom cookie name", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "__locale", Value: "de"})
		require.Equal(t, language.German, resolveVia(t, req, middlewares.WithLocaleCookie("__locale")))
	})

	t.Run("custom extractor chain", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Lang", "fr")
		ext := internal.NewExtractor(internal.FromHeader("X-Lang"))
		require.Equal(t, language.French, resolveVia(t, req, middlewares.WithLocaleExtractor(ext)))
	})

	t.Run("resolved tag visible via c.Locale", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/?lang=de", nil)
		rec := httptest.NewRecorder()
		ctx := newTestContext(rec, req)

		mw := middlewares.Locale(supported)
		handler := mw(func(c internal.Context) error {
			require.Equal(t, language.German, c.Locale())
			return c.NoContent(http.StatusOK)
		})

		require.NoError(t, handler(ctx))
	})
}

func TestGetLocaleWithoutMiddleware(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ctx := newTestContext(rec, req)

	require.Equal(t, language.Und, middlewares.GetLocale(ctx))
}
