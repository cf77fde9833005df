package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/go-strada/strada/pkg/sanitizer"
)

// Markdown marks a string as markdown source. The HTML formatter renders
// it through goldmark and sanitizes the result, so handlers can return
// user-provided markdown safely.
type Markdown string

// Formatter converts a handler value into a response body for one content
// type. Send picks a formatter by matching the request Accept header
// against ContentType in registration order, falling back to the first
// formatter (JSON by default).
type Formatter interface {
	ContentType() string
	Format(w io.Writer, v any) error
}

func defaultFormatters() []Formatter {
	return []Formatter{jsonFormatter{}, htmlFormatter{}, textFormatter{}}
}

// negotiateFormatter walks the Accept header in order and returns the
// first formatter whose content type is acceptable.
func negotiateFormatter(accept string, formatters []Formatter) Formatter {
	if len(formatters) == 0 {
		return jsonFormatter{}
	}
	for _, part := range strings.Split(accept, ",") {
		mt := strings.TrimSpace(part)
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
		if mt == "" {
			continue
		}
		for _, f := range formatters {
			if mediaTypeMatches(mt, f.ContentType()) {
				return f
			}
		}
	}
	return formatters[0]
}

func mediaTypeMatches(accept, contentType string) bool {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	switch {
	case accept == "*/*":
		return true
	case strings.HasSuffix(accept, "/*"):
		return strings.HasPrefix(contentType, accept[:len(accept)-1])
	default:
		return accept == contentType
	}
}

type jsonFormatter struct{}

func (jsonFormatter) ContentType() string { return "application/json; charset=utf-8" }

func (jsonFormatter) Format(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

type textFormatter struct{}

func (textFormatter) ContentType() string { return "text/plain; charset=utf-8" }

func (textFormatter) Format(w io.Writer, v any) error {
	var err error
	switch t := v.(type) {
	case string:
		_, err = io.WriteString(w, t)
	case []byte:
		_, err = w.Write(t)
	case fmt.Stringer:
		_, err = io.WriteString(w, t.String())
	default:
		_, err = fmt.Fprint(w, v)
	}
	return err
}

// htmlFormatter writes components, pre-rendered HTML and markdown.
// Plain strings and template.HTML pass through unescaped, matching
// c.HTML; anything else is escaped.
type htmlFormatter struct{}

func (htmlFormatter) ContentType() string { return "text/html; charset=utf-8" }

func (htmlFormatter) Format(w io.Writer, v any) error {
	var err error
	switch t := v.(type) {
	case Component:
		err = t.Render(context.Background(), w)
	case template.HTML:
		_, err = io.WriteString(w, string(t))
	case Markdown:
		var html []byte
		if html, err = renderMarkdown([]byte(t)); err == nil {
			_, err = w.Write(html)
		}
	case string:
		_, err = io.WriteString(w, t)
	case []byte:
		_, err = w.Write(t)
	default:
		_, err = io.WriteString(w, template.HTMLEscapeString(fmt.Sprint(v)))
	}
	return err
}

// Raw HTML passes through goldmark and gets sanitized afterwards, so
// markdown from untrusted sources cannot inject scripts.
var markdownConverter = goldmark.New(
	goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
)

func renderMarkdown(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdownConverter.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return sanitizer.SanitizeUGCBytes(buf.Bytes()), nil
}

const errorPageHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%d %s</title></head>
<body style="font-family:sans-serif;text-align:center;padding-top:4rem">
<h1>%d</h1>
<p>%s</p>
</body>
</html>
`

// errorPage is the default HTML error response. It is a plain component,
// so a custom error handler can reuse or replace it with a generated
// template.
func errorPage(code int, message string) Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, errorPageHTML,
			code, template.HTMLEscapeString(http.StatusText(code)),
			code, template.HTMLEscapeString(message),
		)
		return err
	})
}
