// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"sync"
	"sync/atomic"
)

// MethodAny is the method of entries bound to every HTTP method.
const MethodAny = "ANY"

// Kind tells the executor how an entry takes part in a chain.
type Kind uint8

const (
	// KindRoute entries run when both method and path match exactly.
	KindRoute Kind = iota
	// KindUse entries are middleware: any method, path matched as a prefix.
	KindUse
	// KindError entries only run once the chain has failed.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindRoute:
		return "route"
	case KindUse:
		return "use"
	case KindError:
		return "error"
	}
	return "unknown"
}

// entry is one registered handler. Immutable once appended.
type entry struct {
	method  string
	pattern *Pattern
	handler HandlerFunc
	errh    ErrorHandlerFunc
	kind    Kind
	seq     uint64
}

func (e *entry) matchMethod(method string) bool {
	switch {
	case e.kind != KindRoute, e.method == MethodAny, e.method == method:
		return true
	case method == "HEAD" && e.method == "GET":
		return true
	}
	return false
}

func (e *entry) match(path string) (Params, bool) {
	if e.kind == KindRoute || e.pattern.HasWildcard() {
		return e.pattern.Match(path)
	}
	return e.pattern.MatchPrefix(path)
}

// RouteInfo describes a registered entry for introspection.
type RouteInfo struct {
	Method  string
	Pattern string
	Kind    Kind
	Seq     uint64
}

// registry is the append-only routing table. Readers load an immutable
// snapshot without locking; writers copy on append.
type registry struct {
	mu      sync.Mutex
	next    uint64
	entries atomic.Pointer[[]*entry]
}

func (r *registry) add(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cur []*entry
	if p := r.entries.Load(); p != nil {
		cur = *p
	}
	e.seq = r.next
	r.next++
	next := make([]*entry, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, e)
	r.entries.Store(&next)
}

// all returns every entry in registration order. The slice must not be
// modified.
func (r *registry) all() []*entry {
	if p := r.entries.Load(); p != nil {
		return *p
	}
	return nil
}

func (r *registry) routes() []RouteInfo {
	all := r.all()
	infos := make([]RouteInfo, len(all))
	for i, e := range all {
		infos[i] = RouteInfo{Method: e.method, Pattern: e.pattern.String(), Kind: e.kind, Seq: e.seq}
	}
	return infos
}
