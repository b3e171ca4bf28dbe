// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Request is the handler-facing view of one incoming request. It lives for
// the duration of that request only and is never shared with another one.
type Request struct {
	Method string
	// Escaped request path, without the query string.
	Path string
	// Parsed query string.
	Query url.Values
	// Request headers. Lookups through Get and HeaderValue are case
	// insensitive.
	Header http.Header
	// Parameters bound by the pattern of the entry currently executing.
	Params Params
	// Path prefix matched by the middleware entry currently executing:
	// "/api" inside Use("/api", mw) for a request to /api/users.
	BaseURL string
	// Decoded body: nil for methods without a body, map[string]string for
	// urlencoded forms, the JSON value for application/json and the raw text
	// otherwise.
	Body any
	// Body bytes as read from the transport.
	RawBody    []byte
	RemoteAddr string
	Server     *Server

	t       Transport
	ctx     context.Context
	httpReq *http.Request

	// shared by every view of the request
	locals *requestLocals
}

type requestLocals struct {
	mu   sync.RWMutex
	vals map[string]any
}

func newRequest(s *Server, t Transport) *Request {
	query, _ := url.ParseQuery(t.RawQuery())
	req := &Request{
		Method:     strings.ToUpper(t.Method()),
		Path:       t.Path(),
		Query:      query,
		Header:     t.Header(),
		Params:     Params{},
		RemoteAddr: t.RemoteAddr(),
		Server:     s,
		t:          t,
		ctx:        t.Context(),
		locals:     &requestLocals{},
	}
	if req.Path == "" {
		req.Path = "/"
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if ht, ok := t.(*httpTransport); ok {
		req.httpReq = ht.r
	}
	return req
}

// Context returns the context of the request. It is cancelled when the
// client goes away.
func (req *Request) Context() context.Context {
	if req.ctx == nil {
		return context.Background()
	}
	return req.ctx
}

// HeaderValue returns the first value of the named request header.
func (req *Request) HeaderValue(name string) string {
	return req.Header.Get(name)
}

// Param returns the named route parameter, falling back to the query string.
func (req *Request) Param(name string) string {
	if v, ok := req.Params[name]; ok {
		return v
	}
	return req.Query.Get(name)
}

// QueryValue returns the first query string value for name.
func (req *Request) QueryValue(name string) string {
	return req.Query.Get(name)
}

// view returns the copy of req handed to one entry of the chain, bound to
// that entry's parameters. Fields an entry sets before continuing are seen
// by the entries after it; values attached with Set are shared by all views.
func (req *Request) view(params Params, base string) *Request {
	v := *req
	v.Params, v.BaseURL = params, base
	return &v
}

// Set attaches a value to the request for later entries of the chain.
func (req *Request) Set(key string, v any) {
	l := req.locals
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.vals == nil {
		l.vals = make(map[string]any)
	}
	l.vals[key] = v
}

// Get returns a value attached with Set, or nil.
func (req *Request) Get(key string) any {
	v, _ := req.Lookup(key)
	return v
}

// Lookup is like Get but also reports whether the key was set.
func (req *Request) Lookup(key string) (any, bool) {
	l := req.locals
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.vals[key]
	return v, ok
}

// Cookies parses the Cookie headers of the request.
func (req *Request) Cookies() []*http.Cookie {
	var cookies []*http.Cookie
	for _, line := range req.Header.Values("Cookie") {
		parsed, err := http.ParseCookie(line)
		if err != nil {
			continue
		}
		cookies = append(cookies, parsed...)
	}
	return cookies
}

// Cookie returns the value of the named request cookie.
func (req *Request) Cookie(name string) (string, bool) {
	for _, c := range req.Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// BasicAuth returns the decoded user and password from the Authorization
// header.
func (req *Request) BasicAuth() (string, string, error) {
	auth := req.Header.Get("Authorization")
	scheme, encoded, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Basic") {
		return "", "", errors.New("Not Basic Authentication")
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", err
	}
	user, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", errors.New("Error delimiting authString into username/password. Malformed input: " + encoded)
	}
	return user, password, nil
}

// Bind decodes the JSON body into v. Decoding failures are reported as a 400
// WebError so they can be passed straight to next.
func (req *Request) Bind(v any) error {
	if len(req.RawBody) == 0 {
		return WebError{http.StatusBadRequest, "request body is empty"}
	}
	if err := json.Unmarshal(req.RawBody, v); err != nil {
		return WebError{http.StatusBadRequest, "invalid JSON body: " + err.Error()}
	}
	return nil
}

// HTTPRequest returns a net/http view of the request for code written
// against the standard library. With the net/http transport this is the
// original request; other transports get an equivalent copy.
func (req *Request) HTTPRequest() *http.Request {
	if req.httpReq != nil {
		return req.httpReq
	}
	target := req.Path
	if q := req.Query.Encode(); q != "" {
		target += "?" + q
	}
	hr, err := http.NewRequestWithContext(req.Context(), req.Method, target, bytes.NewReader(req.RawBody))
	if err != nil {
		hr, _ = http.NewRequestWithContext(req.Context(), req.Method, "/", bytes.NewReader(req.RawBody))
	}
	hr.Header = req.Header
	hr.Host = req.Header.Get("Host")
	hr.RemoteAddr = req.RemoteAddr
	req.httpReq = hr
	return hr
}

// adoptHTTPRequest picks up a request replaced by net/http middleware, most
// often to carry context values.
func (req *Request) adoptHTTPRequest(r *http.Request) {
	if r == nil {
		return
	}
	req.httpReq = r
	req.ctx = r.Context()
}
