// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/valyala/fasthttp"
)

// fastTransport adapts a fasthttp request. Response headers are collected in
// an http.Header and copied over when the status line is written.
type fastTransport struct {
	ctx    *fasthttp.RequestCtx
	header http.Header
	resh   http.Header
}

func newFastTransport(ctx *fasthttp.RequestCtx) *fastTransport {
	t := &fastTransport{ctx: ctx, header: http.Header{}, resh: http.Header{}}
	ctx.Request.Header.VisitAll(func(k, v []byte) {
		t.header.Add(string(k), string(v))
	})
	if host := ctx.Host(); len(host) > 0 && t.header.Get("Host") == "" {
		t.header.Set("Host", string(host))
	}
	return t
}

func (t *fastTransport) Method() string              { return string(t.ctx.Method()) }
func (t *fastTransport) RawQuery() string            { return string(t.ctx.URI().QueryString()) }
func (t *fastTransport) Header() http.Header         { return t.header }
func (t *fastTransport) RemoteAddr() string          { return t.ctx.RemoteAddr().String() }
func (t *fastTransport) Context() context.Context    { return t.ctx }
func (t *fastTransport) ResponseHeader() http.Header { return t.resh }
func (t *fastTransport) End() error                  { return nil }

// Path keeps the escaped form so the router sees what net/http would.
func (t *fastTransport) Path() string {
	if p := t.ctx.URI().PathOriginal(); len(p) > 0 {
		return string(p)
	}
	return string(t.ctx.Path())
}

func (t *fastTransport) Body() io.Reader {
	if r := t.ctx.RequestBodyStream(); r != nil {
		return r
	}
	return bytes.NewReader(t.ctx.PostBody())
}

func (t *fastTransport) WriteHeader(status int) {
	t.ctx.SetStatusCode(status)
	for k, vs := range t.resh {
		// fasthttp sets the length from the body it buffered
		if k == "Content-Length" {
			continue
		}
		for i, v := range vs {
			if i == 0 {
				t.ctx.Response.Header.Set(k, v)
			} else {
				t.ctx.Response.Header.Add(k, v)
			}
		}
	}
}

func (t *fastTransport) Write(data []byte) (int, error) { return t.ctx.Write(data) }

// FastHTTPHandler serves a fasthttp request through the server, so a Server
// can be passed as a fasthttp.RequestHandler.
func (s *Server) FastHTTPHandler(ctx *fasthttp.RequestCtx) {
	s.Serve(newFastTransport(ctx))
}
