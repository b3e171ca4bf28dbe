// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"fmt"
	"net/http"
)

// Next hands control to the following entry of the chain. Calling it with a
// non-nil error skips the remaining normal entries and starts error
// dispatch. Only the first call made by a handler invocation counts.
type Next func(err ...error)

// HandlerFunc is the uniform signature every registered handler is turned
// into.
type HandlerFunc func(req *Request, res *Response, next Next)

// ErrorHandlerFunc handles a failed chain. It either responds, or passes the
// error (possibly a different one) on with next.
type ErrorHandlerFunc func(err error, req *Request, res *Response, next Next)

// Beat the supplied handler into the uniform signature. Accepted shapes:
//
//   - HandlerFunc and func(*Request, *Response, Next)
//   - func(*Request, *Response) error
//   - func(*Request, *Response)
//   - func(*Request) (any, error): the first return value is sent
//   - http.Handler, http.HandlerFunc and plain func(http.ResponseWriter, *http.Request)
//   - func(http.Handler) http.Handler middleware
//
// The short forms without a Next argument continue the chain when they
// return without error and without having sent a response, so they can be
// used both as middleware and as terminal handlers.
//
// Panics for anything else: a bad handler is a programming error that should
// surface at registration, not on the first request.
func fixHandlerSignature(h any) HandlerFunc {
	switch f := h.(type) {
	case nil:
		panic("web: nil handler")
	case HandlerFunc:
		return f
	case func(*Request, *Response, Next):
		return f
	case func(*Request, *Response) error:
		return func(req *Request, res *Response, next Next) {
			if err := f(req, res); err != nil {
				next(err)
				return
			}
			if !res.Sent() {
				next()
			}
		}
	case func(*Request, *Response):
		return func(req *Request, res *Response, next Next) {
			f(req, res)
			if !res.Sent() {
				next()
			}
		}
	case func(*Request) (any, error):
		return func(req *Request, res *Response, next Next) {
			v, err := f(req)
			if err != nil {
				next(err)
				return
			}
			if v == nil {
				next()
				return
			}
			res.Send(v)
		}
	case func(http.Handler) http.Handler:
		return adaptMiddleware(f)
	case func(http.ResponseWriter, *http.Request):
		return fixHandlerSignature(http.HandlerFunc(f))
	case http.Handler:
		return func(req *Request, res *Response, next Next) {
			f.ServeHTTP(res, req.HTTPRequest())
			res.End()
		}
	}
	panic(fmt.Sprintf("web: unsupported handler type %T", h))
}

// adaptMiddleware runs a net/http style middleware as a chain entry. The
// chain continues when the middleware calls its inner handler; a middleware
// that answers on its own ends the response.
//
// Downstream entries write to the Response directly, so a middleware that
// wraps the ResponseWriter does not observe their output.
func adaptMiddleware(mw func(http.Handler) http.Handler) HandlerFunc {
	return func(req *Request, res *Response, next Next) {
		called := false
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			req.adoptHTTPRequest(r)
			next()
		})
		mw(inner).ServeHTTP(res, req.HTTPRequest())
		if !called {
			res.End()
		}
	}
}

func fixErrorHandlerSignature(h any) ErrorHandlerFunc {
	switch f := h.(type) {
	case nil:
		panic("web: nil error handler")
	case ErrorHandlerFunc:
		return f
	case func(error, *Request, *Response, Next):
		return f
	case func(error, *Request, *Response):
		return func(err error, req *Request, res *Response, next Next) {
			f(err, req, res)
			if !res.Sent() {
				next(err)
			}
		}
	}
	panic(fmt.Sprintf("web: unsupported error handler type %T", h))
}
