package middlewares

import (
	"golang.org/x/text/language"

	"github.com/go-strada/strada/internal"
)

// LocaleConfig configures the Locale middleware.
type LocaleConfig struct {
	Extractor    internal.Extractor
	QueryParam   string
	CookieName   string
	extractorSet bool
}

// LocaleOption configures LocaleConfig.
type LocaleOption func(*LocaleConfig)

// WithLocaleQuery sets the query parameter checked for an explicit language.
// Defaults to "lang".
func WithLocaleQuery(name string) LocaleOption {
	return func(cfg *LocaleConfig) {
		cfg.QueryParam = name
	}
}

// WithLocaleCookie sets the cookie checked for a persisted language.
// Defaults to "lang".
func WithLocaleCookie(name string) LocaleOption {
	return func(cfg *LocaleConfig) {
		cfg.CookieName = name
	}
}

// WithLocaleExtractor sets a custom language extractor chain.
// When set, it completely replaces the query/cookie defaults.
func WithLocaleExtractor(ext internal.Extractor) LocaleOption {
	return func(cfg *LocaleConfig) {
		cfg.Extractor = ext
		cfg.extractorSet = true
	}
}

// Locale returns middleware that resolves the request language against the
// supported tags and stores it in the context. Resolution order: query
// parameter, cookie, then the Accept-Language header. The resolved tag is
// returned by c.Locale() and GetLocale for the rest of the request.
//
// The first supported tag is the fallback when nothing matches.
func Locale(supported []language.Tag, opts ...LocaleOption) internal.Middleware {
	if len(supported) == 0 {
		supported = []language.Tag{language.English}
	}

	cfg := &LocaleConfig{
		QueryParam: "lang",
		CookieName: "lang",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if !cfg.extractorSet {
		cfg.Extractor = internal.NewExtractor(
			internal.FromQuery(cfg.QueryParam),
			internal.FromCookie(cfg.CookieName),
		)
	}

	matcher := language.NewMatcher(supported)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if raw, ok := cfg.Extractor.Extract(c); ok && raw != "" {
				if tag, err := language.Parse(raw); err == nil {
					// Match by index: the returned tag can carry extension
					// subtags the caller never configured.
					_, i, _ := matcher.Match(tag)
					c.Set(internal.LocaleKey{}, supported[i])
					return next(c)
				}
			}

			tags, _, err := language.ParseAcceptLanguage(c.Header("Accept-Language"))
			if err != nil || len(tags) == 0 {
				tags = []language.Tag{language.Und}
			}
			_, i, _ := matcher.Match(tags...)
			c.Set(internal.LocaleKey{}, supported[i])

			return next(c)
		}
	}
}

// GetLocale extracts the resolved language from the context.
// Returns language.Und if the Locale middleware is not used.
func GetLocale(c internal.Context) language.Tag {
	if v, ok := c.Get(internal.LocaleKey{}).(language.Tag); ok {
		return v
	}
	return language.Und
}
