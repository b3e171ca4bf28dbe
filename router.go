// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"fmt"
	"strings"
)

// Router is a set of registered entries. A Server is a Router; standalone
// Routers group entries that are later mounted under a prefix:
//
//	api := web.NewRouter()
//	api.Get("/users/:id", getUser)
//	s.Mount("/api", api)
//
// Registration panics on an invalid pattern or handler; use Handle to get
// pattern errors back instead.
type Router struct {
	registry registry
}

func NewRouter() *Router {
	return &Router{}
}

// Handle registers handlers for method ("GET", "POST", ...) on pattern. Use
// MethodAny to bind every method. Every handler becomes its own entry, in
// the order given.
func (r *Router) Handle(method, pattern string, handlers ...any) error {
	return r.add(KindRoute, strings.ToUpper(method), pattern, handlers)
}

func (r *Router) add(kind Kind, method, pattern string, handlers []any) error {
	p, err := ParsePattern(pattern)
	if err != nil {
		return err
	}
	if len(handlers) == 0 {
		return fmt.Errorf("web: no handler given for %s %s", method, pattern)
	}
	// convert them all first so a bad handler registers nothing
	entries := make([]*entry, len(handlers))
	for i, h := range handlers {
		e := &entry{method: method, pattern: p, kind: kind}
		if kind == KindError {
			e.errh = fixErrorHandlerSignature(h)
		} else {
			e.handler = fixHandlerSignature(h)
		}
		entries[i] = e
	}
	for _, e := range entries {
		r.registry.add(e)
	}
	return nil
}

func (r *Router) mustAdd(kind Kind, method, pattern string, handlers []any) {
	if err := r.add(kind, method, pattern, handlers); err != nil {
		panic(err)
	}
}

// Adds a handler for the 'GET' http method.
func (r *Router) Get(pattern string, handlers ...any) {
	r.mustAdd(KindRoute, "GET", pattern, handlers)
}

// Adds a handler for the 'POST' http method.
func (r *Router) Post(pattern string, handlers ...any) {
	r.mustAdd(KindRoute, "POST", pattern, handlers)
}

// Adds a handler for the 'PUT' http method.
func (r *Router) Put(pattern string, handlers ...any) {
	r.mustAdd(KindRoute, "PUT", pattern, handlers)
}

// Adds a handler for the 'DELETE' http method.
func (r *Router) Delete(pattern string, handlers ...any) {
	r.mustAdd(KindRoute, "DELETE", pattern, handlers)
}

func (r *Router) Patch(pattern string, handlers ...any) {
	r.mustAdd(KindRoute, "PATCH", pattern, handlers)
}

func (r *Router) Options(pattern string, handlers ...any) {
	r.mustAdd(KindRoute, "OPTIONS", pattern, handlers)
}

// Head routes take precedence over the GET route of the same path only if
// registered first.
func (r *Router) Head(pattern string, handlers ...any) {
	r.mustAdd(KindRoute, "HEAD", pattern, handlers)
}

// All binds handlers to every method.
func (r *Router) All(pattern string, handlers ...any) {
	r.mustAdd(KindRoute, MethodAny, pattern, handlers)
}

// Use adds middleware for every method. An optional leading string is the
// path it applies to, "*" (everything) by default. A path without a trailing
// wildcard matches itself and everything below it, so Use("/api", mw) runs
// for /api and /api/users alike.
func (r *Router) Use(args ...any) {
	pattern, handlers := splitPatternArg(args)
	r.mustAdd(KindUse, MethodAny, pattern, handlers)
}

// UseError adds error entries, with the same optional leading path as Use.
// They only run once the chain has failed, in registration order.
func (r *Router) UseError(args ...any) {
	pattern, handlers := splitPatternArg(args)
	r.mustAdd(KindError, MethodAny, pattern, handlers)
}

func splitPatternArg(args []any) (string, []any) {
	if len(args) > 0 {
		if p, ok := args[0].(string); ok {
			return p, args[1:]
		}
	}
	return WildcardKey, args
}

// Routes lists every entry in registration order.
func (r *Router) Routes() []RouteInfo {
	return r.registry.routes()
}

// Mount copies the entries of child under prefix. Entries added to child
// afterwards are not picked up.
func (r *Router) Mount(prefix string, child *Router) {
	if _, err := ParsePattern(prefix); err != nil {
		panic(err)
	}
	for _, e := range child.registry.all() {
		p := MustParsePattern(joinPattern(prefix, e.pattern.String(), e.kind))
		r.registry.add(&entry{
			method:  e.method,
			pattern: p,
			handler: e.handler,
			errh:    e.errh,
			kind:    e.kind,
		})
	}
}

func joinPattern(prefix, pattern string, kind Kind) string {
	prefix = strings.TrimSuffix(prefix, "/")
	switch {
	case pattern == WildcardKey && kind == KindUse:
		if prefix == "" {
			return WildcardKey
		}
		return prefix
	case pattern == WildcardKey:
		return prefix + "/*"
	case pattern == "" || pattern == "/":
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	return prefix + pattern
}

// RouteBuilder registers several methods on one path:
//
//	s.Route("/book").Get(list).Post(create)
type RouteBuilder struct {
	r       *Router
	pattern string
}

func (r *Router) Route(pattern string) *RouteBuilder {
	MustParsePattern(pattern)
	return &RouteBuilder{r: r, pattern: pattern}
}

func (b *RouteBuilder) Get(handlers ...any) *RouteBuilder {
	b.r.Get(b.pattern, handlers...)
	return b
}

func (b *RouteBuilder) Post(handlers ...any) *RouteBuilder {
	b.r.Post(b.pattern, handlers...)
	return b
}

func (b *RouteBuilder) Put(handlers ...any) *RouteBuilder {
	b.r.Put(b.pattern, handlers...)
	return b
}

func (b *RouteBuilder) Delete(handlers ...any) *RouteBuilder {
	b.r.Delete(b.pattern, handlers...)
	return b
}

func (b *RouteBuilder) Patch(handlers ...any) *RouteBuilder {
	b.r.Patch(b.pattern, handlers...)
	return b
}

func (b *RouteBuilder) Options(handlers ...any) *RouteBuilder {
	b.r.Options(b.pattern, handlers...)
	return b
}

func (b *RouteBuilder) Head(handlers ...any) *RouteBuilder {
	b.r.Head(b.pattern, handlers...)
	return b
}

func (b *RouteBuilder) All(handlers ...any) *RouteBuilder {
	b.r.All(b.pattern, handlers...)
	return b
}

func (b *RouteBuilder) Use(handlers ...any) *RouteBuilder {
	b.r.mustAdd(KindUse, MethodAny, b.pattern, handlers)
	return b
}
