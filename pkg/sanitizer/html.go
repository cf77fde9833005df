package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	safePolicy   *bluemonday.Policy
	ugcPolicy    *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		// StrictPolicy strips ALL HTML, returns plain text
		strictPolicy = bluemonday.StrictPolicy()

		// SafePolicy allows basic formatting for user-generated content
		safePolicy = bluemonday.NewPolicy()
		safePolicy.AllowStandardURLs()
		safePolicy.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		safePolicy.AllowAttrs("href").OnElements("a")
		safePolicy.RequireNoFollowOnLinks(true)

		// UGCPolicy additionally keeps headings, images, and tables,
		// matching what markdown rendering produces
		ugcPolicy = bluemonday.UGCPolicy()
	})
}

// StripHTML removes all HTML tags, returning plain text.
// Use for fields that must never contain markup (names, titles, search queries).
func StripHTML(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}

// SanitizeHTML allows safe formatting tags (p, a, strong, em, lists, code).
// Use for user-generated content that needs basic HTML formatting.
// Strips all dangerous elements and attributes including scripts, event handlers,
// and javascript: URLs.
func SanitizeHTML(s string) string {
	initPolicies()
	return safePolicy.Sanitize(s)
}

// SanitizeUGC allows the richer element set produced by markdown rendering:
// everything SanitizeHTML permits plus headings, images, and tables.
// Scripts, event handlers, and javascript: URLs are still stripped.
func SanitizeUGC(s string) string {
	initPolicies()
	return ugcPolicy.Sanitize(s)
}

// SanitizeUGCBytes is SanitizeUGC for byte slices, avoiding a copy when
// the caller already holds rendered output in a buffer.
func SanitizeUGCBytes(b []byte) []byte {
	initPolicies()
	return ugcPolicy.SanitizeBytes(b)
}

// SanitizeHTMLCustom applies a custom bluemonday policy.
// Returns input unchanged if policy is nil.
func SanitizeHTMLCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
