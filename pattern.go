// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"fmt"
	"net/url"
	"strings"
)

// WildcardKey is the reserved parameter name the trailing wildcard binds to.
const WildcardKey = "*"

type segmentKind uint8

const (
	segLiteral segmentKind = iota
	segParam
	segWildcard
)

type segment struct {
	kind segmentKind
	// literal text or parameter name
	value string
}

// Pattern is a compiled path template made of literal segments, named
// parameters (":name") and an optional trailing wildcard ("*"). Matching is
// a single left to right walk over the path segments; there is no
// backtracking.
type Pattern struct {
	raw      string
	segments []segment
	// "*" on its own: every path, no bindings
	any bool
}

// characters that would make a template look like a regular expression
const regexMeta = `()[]{}?+\|^$`

// ParsePattern validates and compiles a path template. An empty template is
// equivalent to "/" and only matches the root path.
func ParsePattern(raw string) (*Pattern, error) {
	p := &Pattern{raw: raw}
	if raw == WildcardKey {
		p.any = true
		return p, nil
	}
	trimmed := strings.TrimPrefix(raw, "/")
	if trimmed != "" && !strings.HasPrefix(raw, "/") {
		return nil, fmt.Errorf("%w %q: must start with '/'", ErrInvalidPattern, raw)
	}
	trimmed = strings.TrimSuffix(trimmed, "/")
	if trimmed == "" {
		return p, nil
	}
	seen := map[string]bool{}
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		switch {
		case part == "":
			return nil, fmt.Errorf("%w %q: empty segment", ErrInvalidPattern, raw)
		case part == WildcardKey:
			if i != len(parts)-1 {
				return nil, fmt.Errorf("%w %q: wildcard must be the last segment", ErrInvalidPattern, raw)
			}
			p.segments = append(p.segments, segment{kind: segWildcard})
		case part[0] == ':':
			name := part[1:]
			if !validParamName(name) {
				return nil, fmt.Errorf("%w %q: bad parameter name %q", ErrInvalidPattern, raw, name)
			}
			if seen[name] {
				return nil, fmt.Errorf("%w %q: duplicate parameter %q", ErrInvalidPattern, raw, name)
			}
			seen[name] = true
			p.segments = append(p.segments, segment{kind: segParam, value: name})
		default:
			if strings.Contains(part, WildcardKey) || strings.ContainsAny(part, regexMeta) {
				return nil, fmt.Errorf("%w %q: unsupported characters in segment %q", ErrInvalidPattern, raw, part)
			}
			p.segments = append(p.segments, segment{kind: segLiteral, value: part})
		}
	}
	return p, nil
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(raw string) *Pattern {
	p, err := ParsePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}

func (p *Pattern) String() string { return p.raw }

// HasWildcard reports whether the template ends in "*" or is "*" itself.
func (p *Pattern) HasWildcard() bool {
	if p.any {
		return true
	}
	n := len(p.segments)
	return n > 0 && p.segments[n-1].kind == segWildcard
}

// MatchResult is the outcome of matching one template against one path.
type MatchResult struct {
	Matched bool
	Params  Params
}

// Match compiles pattern and matches it against path. An invalid pattern
// never matches.
func Match(pattern, path string) MatchResult {
	p, err := ParsePattern(pattern)
	if err != nil {
		return MatchResult{}
	}
	params, ok := p.Match(path)
	return MatchResult{Matched: ok, Params: params}
}

// Match reports whether path satisfies the template exactly and returns the
// extracted parameters. path is expected in its escaped form; parameter
// values are unescaped.
func (p *Pattern) Match(path string) (Params, bool) {
	return p.match(path, false)
}

// MatchPrefix is like Match but also accepts paths that continue below the
// template ("/api" matches "/api/users"). Used for middleware entries.
func (p *Pattern) MatchPrefix(path string) (Params, bool) {
	return p.match(path, true)
}

func (p *Pattern) match(path string, prefix bool) (Params, bool) {
	params := Params{}
	if p.any {
		return params, true
	}
	parts := splitPath(path)
	for i, seg := range p.segments {
		if seg.kind == segWildcard {
			params[WildcardKey] = unescape(strings.Join(parts[i:], "/"))
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}
		switch seg.kind {
		case segLiteral:
			if unescape(parts[i]) != seg.value {
				return nil, false
			}
		case segParam:
			if parts[i] == "" {
				return nil, false
			}
			params[seg.value] = unescape(parts[i])
		}
	}
	if !prefix && len(parts) != len(p.segments) {
		return nil, false
	}
	return params, true
}

// splitPath turns "/a/b/" into ["a", "b"] and "/" into an empty slice.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '%') {
		return s
	}
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

// prefixOf returns the part of path a prefix match consumed, e.g. "/api" for
// the template "/api" and the path "/api/users". Empty for wildcard
// templates and the root.
func (p *Pattern) prefixOf(path string) string {
	if p.HasWildcard() {
		return ""
	}
	parts := splitPath(path)
	n := min(len(p.segments), len(parts))
	if n == 0 {
		return ""
	}
	return "/" + strings.Join(parts[:n], "/")
}
