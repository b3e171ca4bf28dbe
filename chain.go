// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// this file is about what happens to a request once the body has been read:
// the matching entries are lined up and run one by one, each handing over to
// the next through its continuation, until one of them answers or fails.

package web

import (
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ChainState is the lifecycle of the chain serving one request.
type ChainState int32

const (
	StateIdle ChainState = iota
	StateRunning
	// response sent, or the chain ran out and a 404 was issued
	StateCompleted
	// an error entry was invoked or a default error response issued
	StateFailed
)

func (st ChainState) String() string {
	switch st {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// step is a matched entry together with the parameters its own pattern bound.
type step struct {
	e      *entry
	params Params
	// path prefix consumed by a middleware entry
	base string
}

type chain struct {
	s   *Server
	req *Request
	res *Response
	log *logrus.Entry

	steps []step
	state atomic.Int32

	mu          sync.Mutex
	err         error
	routeParams Params
}

func newChain(s *Server, req *Request, res *Response) *chain {
	return &chain{
		s:   s,
		req: req,
		res: res,
		log: s.Logger.WithFields(logrus.Fields{"method": req.Method, "path": req.Path}),
	}
}

// resolve lines up the normal entries matching the request, in registration
// order.
func resolve(entries []*entry, method, path string, kinds ...Kind) []step {
	var steps []step
	for _, e := range entries {
		if !kindIn(e.kind, kinds) || !e.matchMethod(method) {
			continue
		}
		if params, ok := e.match(path); ok {
			st := step{e: e, params: params}
			if e.kind != KindRoute {
				st.base = e.pattern.prefixOf(path)
			}
			steps = append(steps, st)
		}
	}
	return steps
}

func kindIn(k Kind, kinds []Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func (c *chain) State() ChainState {
	st := ChainState(c.state.Load())
	if st == StateRunning && c.res.Sent() {
		c.state.CompareAndSwap(int32(StateRunning), int32(StateCompleted))
		return StateCompleted
	}
	return st
}

// Err is the error the chain failed with, ErrNoRouteMatched for a 404, or nil.
func (c *chain) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *chain) setErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// RouteParams are the parameters bound by the last route entry that ran.
func (c *chain) RouteParams() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.routeParams
}

// abort fails the chain before any entry has run.
func (c *chain) abort(err error) {
	if c.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		c.fail(c.req, err)
	}
}

// run starts the chain. It returns when the entries that ran synchronously
// have returned, which is not necessarily when the response is sent.
func (c *chain) run() {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return
	}
	c.steps = resolve(c.s.registry.all(), c.req.Method, c.req.Path, KindRoute, KindUse)
	c.call(c.req, 0)
}

// call runs the entry at i with its own view of from, the request as the
// previous entry left it.
func (c *chain) call(from *Request, i int) {
	if c.State() != StateRunning {
		return
	}
	if i >= len(c.steps) {
		c.notFound()
		return
	}
	st := c.steps[i]
	req := from.view(st.params, st.base)
	if st.e.kind == KindRoute {
		c.mu.Lock()
		c.routeParams = st.params
		c.mu.Unlock()
	}

	var called atomic.Bool
	next := func(errs ...error) {
		if !called.CompareAndSwap(false, true) {
			c.log.WithField("entry", st.e.seq).Debug("next called more than once, ignoring")
			return
		}
		if err := firstError(errs); err != nil {
			c.fail(req, err)
			return
		}
		c.call(req, i+1)
	}
	if err := c.protect(func() { st.e.handler(req, c.res, next) }); err != nil {
		called.Store(true)
		c.fail(req, err)
	}
}

// fail switches the chain to error dispatch. Only the first failure counts,
// and none once the response is out.
func (c *chain) fail(from *Request, err error) {
	if c.State() != StateRunning || !c.state.CompareAndSwap(int32(StateRunning), int32(StateFailed)) {
		c.log.WithError(err).Debug("error after the chain finished, ignoring")
		return
	}
	c.setErr(err)
	errSteps := resolve(c.s.registry.all(), c.req.Method, c.req.Path, KindError)
	c.dispatch(from, errSteps, 0, err)
}

// dispatch hands err to the error entry at i, falling back to the default
// response once they are exhausted.
func (c *chain) dispatch(from *Request, steps []step, i int, err error) {
	if c.res.Sent() {
		c.log.WithError(err).Debug("response already sent, dropping error")
		return
	}
	if i >= len(steps) {
		c.defaultError(err)
		return
	}
	st := steps[i]
	req := from.view(st.params, st.base)

	var called atomic.Bool
	next := func(errs ...error) {
		if !called.CompareAndSwap(false, true) {
			c.log.WithField("entry", st.e.seq).Debug("next called more than once, ignoring")
			return
		}
		nextErr := err
		if e := firstError(errs); e != nil {
			nextErr = e
			c.setErr(e)
		}
		c.dispatch(req, steps, i+1, nextErr)
	}
	if perr := c.protect(func() { st.e.errh(err, req, c.res, next) }); perr != nil {
		if called.CompareAndSwap(false, true) {
			c.setErr(perr)
			c.dispatch(req, steps, i+1, perr)
		}
	}
}

func (c *chain) defaultError(err error) {
	code, msg := errorStatus(err)
	entry := c.log.WithError(err).WithField("status", code)
	var stack []byte
	var perr *PanicError
	if errors.As(err, &perr) {
		stack = perr.Stack
		entry = entry.WithField("stack", string(stack))
	}
	if code >= 500 {
		entry.Error("handler failed")
	} else {
		entry.Info("request rejected")
	}
	if !c.s.Config.Development {
		stack = nil
	}
	c.res.sendError(code, msg, stack)
}

func (c *chain) notFound() {
	if !c.state.CompareAndSwap(int32(StateRunning), int32(StateCompleted)) {
		return
	}
	c.setErr(ErrNoRouteMatched)
	c.res.sendError(404, "Cannot "+c.req.Method+" "+c.req.Path, nil)
}

// timeout is called by the server when Config.HandlerTimeout elapses. The
// error entries get a chance to answer on a fresh view of the request, the
// entries still running keep theirs; if nobody answers, a 503 is forced.
func (c *chain) timeout() {
	if c.State() == StateRunning {
		c.fail(c.req, ErrHandlerTimeout)
	}
	if !c.res.Sent() {
		c.setErr(ErrHandlerTimeout)
		c.res.sendError(503, ErrHandlerTimeout.Error(), nil)
	}
}

// protect calls f and turns a panic into an error. WebError panics (as raised
// by Params.GetString) are always recovered; anything else only when
// Config.RecoverPanic is set.
func (c *chain) protect(f func()) (err error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		if werr, ok := v.(WebError); ok {
			err = werr
			return
		}
		if !c.s.Config.RecoverPanic {
			panic(v)
		}
		err = &PanicError{Value: v, Stack: debug.Stack()}
	}()
	f()
	return nil
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
