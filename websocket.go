// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strings"

	"golang.org/x/net/websocket"
)

// WebsocketHandler serves one websocket connection. The returned error is
// only logged: the connection has left HTTP by the time it is known.
type WebsocketHandler func(req *Request, ws *websocket.Conn) error

var errNotHijackable = errors.New("web: transport does not support hijacking")

// Websocket registers h for websocket upgrade requests on pattern. Plain GET
// requests for the same path fall through to later entries.
func (r *Router) Websocket(pattern string, h WebsocketHandler) {
	r.mustAdd(KindRoute, "GET", pattern, []any{websocketEntry(h)})
}

func websocketEntry(h WebsocketHandler) HandlerFunc {
	return func(req *Request, res *Response, next Next) {
		if !strings.EqualFold(req.HeaderValue("Upgrade"), "websocket") {
			next()
			return
		}
		if _, ok := res.t.(*httpTransport); !ok {
			next(WebError{http.StatusNotImplemented, "websockets need the net/http transport"})
			return
		}
		websocket.Handler(func(ws *websocket.Conn) {
			if err := h(req, ws); err != nil {
				req.Server.Logger.WithError(err).WithField("path", req.Path).Warn("websocket handler")
			}
		}).ServeHTTP(res, req.HTTPRequest())
		// the handshake failed before hijacking
		res.End()
	}
}

// Hijack hands the underlying connection over to the caller, as
// http.Hijacker. The response counts as sent afterwards.
func (res *Response) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	ht, ok := res.t.(*httpTransport)
	if !ok {
		return nil, nil, errNotHijackable
	}
	res.mu.Lock()
	defer res.mu.Unlock()
	if res.Sent() {
		return nil, nil, ErrResponseSent
	}
	conn, rw, err := http.NewResponseController(ht.w).Hijack()
	if err != nil {
		return nil, nil, err
	}
	res.started = true
	res.sent.Store(true)
	close(res.done)
	return conn, rw, nil
}

// Websocket registers a websocket handler on the global server.
func Websocket(pattern string, h WebsocketHandler) {
	mainServer.Websocket(pattern, h)
}
