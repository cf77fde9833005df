package internal

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern grammar, segment based:
//
//	/users            literal segments
//	/users/{id}       captures one segment under "id"
//	/users/:id        same, colon form (whole segment only)
//	/users/{id:\d+}   capture with anchored regex constraint
//	/files/*          exactly one segment, no capture
//	/files/**         zero or more segments, tail exposed under "*"
//	/files/*.js       wildcards and captures may be embedded in a segment
//
// Patterns compile once at registration and are immutable afterwards.
type segmentKind uint8

const (
	segLiteral segmentKind = iota
	segOne                 // *
	segDeep                // **
	segNamed               // {name} or :name
	segRegex               // segment with embedded wildcards/captures or a regex constraint
)

type patternSegment struct {
	re      *regexp.Regexp
	literal string
	name    string
	kind    segmentKind
}

// pattern is a compiled route path pattern.
// Safe for concurrent use; match never mutates the pattern.
type pattern struct {
	raw      string
	segments []patternSegment
	captures int
	static   bool
}

// compilePattern parses raw into a pattern. The returned error wraps
// ErrInvalidPattern and is fatal at registration time.
func compilePattern(raw string) (*pattern, error) {
	normalized := normalizePath(raw)

	p := &pattern{raw: normalized, static: true}
	for _, part := range splitPath(normalized) {
		seg, err := compileSegment(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, raw, err)
		}
		if seg.kind != segLiteral {
			p.static = false
		}
		switch seg.kind {
		case segNamed, segDeep:
			p.captures++
		case segRegex:
			for _, name := range seg.re.SubexpNames() {
				if name != "" {
					p.captures++
				}
			}
		}
		p.segments = append(p.segments, seg)
	}

	return p, nil
}

func compileSegment(part string) (patternSegment, error) {
	switch {
	case part == "*":
		return patternSegment{kind: segOne}, nil

	case part == "**":
		return patternSegment{kind: segDeep}, nil

	case strings.Contains(part, "**"):
		return patternSegment{}, fmt.Errorf("%q: ** must be a whole segment", part)

	case strings.HasPrefix(part, ":"):
		name := part[1:]
		if !isVarName(name) {
			return patternSegment{}, fmt.Errorf("%q: invalid variable name", part)
		}
		return patternSegment{kind: segNamed, name: name}, nil

	case !strings.ContainsAny(part, "{}*"):
		return patternSegment{kind: segLiteral, literal: part}, nil
	}

	// Whole-segment {name} without a constraint needs no regexp.
	if name, constraint, ok := parseBraced(part); ok && constraint == "" && isVarName(name) {
		return patternSegment{kind: segNamed, name: name}, nil
	}

	re, err := segmentRegexp(part)
	if err != nil {
		return patternSegment{}, err
	}
	return patternSegment{kind: segRegex, re: re}, nil
}

// parseBraced reports whether part is exactly one {name} or {name:constraint}
// group spanning the whole segment.
func parseBraced(part string) (name, constraint string, ok bool) {
	if len(part) < 2 || part[0] != '{' || part[len(part)-1] != '}' {
		return "", "", false
	}
	inner := part[1 : len(part)-1]
	if strings.ContainsAny(inner, "{}") {
		return "", "", false
	}
	name, constraint, _ = strings.Cut(inner, ":")
	return name, constraint, true
}

// segmentRegexp builds an anchored regexp for a segment mixing literals,
// * wildcards, and {name} or {name:constraint} captures.
func segmentRegexp(part string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")

	for i := 0; i < len(part); i++ {
		switch part[i] {
		case '*':
			b.WriteString("[^/]*")
		case '}':
			return nil, fmt.Errorf("%q: unbalanced braces", part)
		case '{':
			end, err := closingBrace(part, i)
			if err != nil {
				return nil, err
			}
			name, constraint, _ := strings.Cut(part[i+1:end], ":")
			if !isVarName(name) {
				return nil, fmt.Errorf("%q: invalid variable name %q", part, name)
			}
			if constraint == "" {
				constraint = "[^/]+"
			}
			fmt.Fprintf(&b, "(?P<%s>%s)", name, constraint)
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(part[i : i+1]))
		}
	}

	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("%q: bad regex: %w", part, err)
	}
	return re, nil
}

// closingBrace finds the brace matching part[open], tracking nesting so
// regex quantifiers like {2,3} inside a constraint stay intact.
func closingBrace(part string, open int) (int, error) {
	depth := 0
	for i := open; i < len(part); i++ {
		switch part[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%q: unbalanced braces", part)
}

func isVarName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

// match tests a normalized request path against the pattern and extracts
// variable bindings. Returns nil, false on no match. The returned map is
// nil when the pattern captures nothing.
func (p *pattern) match(path string) (map[string]string, bool) {
	if p.static {
		if path == p.raw {
			return nil, true
		}
		return nil, false
	}

	var params map[string]string
	if p.captures > 0 {
		params = make(map[string]string, p.captures)
	}
	if !matchSegments(p.segments, splitPath(path), params) {
		return nil, false
	}
	return params, true
}

// matchSegments is the recursive core. ** consumes greedily: the longest
// remainder that still lets the rest of the pattern match wins.
func matchSegments(segs []patternSegment, parts []string, params map[string]string) bool {
	if len(segs) == 0 {
		return len(parts) == 0
	}

	seg := segs[0]
	if seg.kind == segDeep {
		for take := len(parts); take >= 0; take-- {
			if matchSegments(segs[1:], parts[take:], params) {
				if params != nil {
					params["*"] = strings.Join(parts[:take], "/")
				}
				return true
			}
		}
		return false
	}

	if len(parts) == 0 {
		return false
	}

	switch seg.kind {
	case segLiteral:
		if parts[0] != seg.literal {
			return false
		}
	case segOne:
		// any single segment
	case segNamed:
		params[seg.name] = parts[0]
	case segRegex:
		m := seg.re.FindStringSubmatch(parts[0])
		if m == nil {
			return false
		}
		for i, name := range seg.re.SubexpNames() {
			if name != "" {
				params[name] = m[i]
			}
		}
	}

	return matchSegments(segs[1:], parts[1:], params)
}

// String returns the normalized pattern source.
func (p *pattern) String() string {
	return p.raw
}

// normalizePath ensures a leading slash, collapses duplicate slashes, and
// strips the trailing slash (except for the root path).
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// splitPath splits a normalized path into segments. The root path has none.
func splitPath(p string) []string {
	if p == "/" {
		return nil
	}
	return strings.Split(p[1:], "/")
}

// joinPattern prefixes a route path with a group prefix.
func joinPattern(prefix, path string) string {
	if prefix == "" {
		return path
	}
	return normalizePath(prefix + "/" + strings.TrimPrefix(path, "/"))
}
