// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"context"
	"io"
	"net/http"
)

// Transport is what the engine needs from the layer that owns the
// connection: a parsed request and the primitives to answer it. The engine
// guarantees WriteHeader is called at most once, before any Write, and End
// exactly once, last.
type Transport interface {
	Method() string
	// Path returns the request path in its escaped form.
	Path() string
	RawQuery() string
	Header() http.Header
	Body() io.Reader
	RemoteAddr() string
	Context() context.Context

	ResponseHeader() http.Header
	WriteHeader(status int)
	Write(data []byte) (int, error)
	End() error
}

// httpTransport adapts the net/http server.
type httpTransport struct {
	w http.ResponseWriter
	r *http.Request
}

func (t *httpTransport) Method() string              { return t.r.Method }
func (t *httpTransport) Path() string                { return t.r.URL.EscapedPath() }
func (t *httpTransport) RawQuery() string            { return t.r.URL.RawQuery }
func (t *httpTransport) Header() http.Header         { return t.r.Header }
func (t *httpTransport) RemoteAddr() string          { return t.r.RemoteAddr }
func (t *httpTransport) Context() context.Context    { return t.r.Context() }
func (t *httpTransport) ResponseHeader() http.Header { return t.w.Header() }
func (t *httpTransport) WriteHeader(status int)      { t.w.WriteHeader(status) }

func (t *httpTransport) Write(data []byte) (int, error) { return t.w.Write(data) }

func (t *httpTransport) Body() io.Reader {
	if t.r.Body == nil {
		return http.NoBody
	}
	return t.r.Body
}

// End is a no-op: net/http completes the response when ServeHTTP returns,
// which the server only does once the response has been sent.
func (t *httpTransport) End() error { return nil }

// ServeHTTP makes the server a net/http handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.Serve(&httpTransport{w: w, r: req})
}
