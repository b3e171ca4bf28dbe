// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Response is the handler-facing view of the reply to one request. Every
// mutating method is a no-op once the response has been sent, and returns the
// response so calls can be chained:
//
//	res.Status(201).SetHeader("X-Id", id).JSON(item)
//
// Response also implements http.ResponseWriter so standard library handlers
// and fmt.Fprint can write to it. Bytes written that way are streamed and the
// response is only sent once End is called.
type Response struct {
	t      Transport
	req    *Request
	server *Server
	header http.Header

	// guards status, started and the transport
	mu       sync.Mutex
	status   atomic.Int32
	started  bool
	hooksRan bool
	size     int
	sent     atomic.Bool
	done     chan struct{}

	// callbacks executed once, after all headers have been set
	afterHeaders []func(*Response)
	// body data is written here. can be wrapped by afterheaders functions
	bodyWriter io.Writer
	// closed in reverse order when the response ends
	closers []io.Closer
}

func newResponse(s *Server, req *Request, t Transport) *Response {
	res := &Response{
		t:          t,
		req:        req,
		server:     s,
		header:     t.ResponseHeader(),
		done:       make(chan struct{}),
		bodyWriter: transportWriter{t},
	}
	res.status.Store(http.StatusOK)
	if req.Method == "HEAD" {
		res.bodyWriter = discardHead{}
	}
	return res
}

// Sent reports whether the response has been ended.
func (res *Response) Sent() bool { return res.sent.Load() }

// Done is closed once the response has been sent.
func (res *Response) Done() <-chan struct{} { return res.done }

// HeadersWritten reports whether the status line has gone out.
func (res *Response) HeadersWritten() bool {
	res.mu.Lock()
	defer res.mu.Unlock()
	return res.started
}

// StatusCode returns the status set so far (200 by default).
func (res *Response) StatusCode() int {
	return int(res.status.Load())
}

// Size returns the number of body bytes written.
func (res *Response) Size() int {
	res.mu.Lock()
	defer res.mu.Unlock()
	return res.size
}

// Header gives direct access to the response header map.
func (res *Response) Header() http.Header { return res.header }

// Status sets the status code of the response.
func (res *Response) Status(code int) *Response {
	res.mu.Lock()
	defer res.mu.Unlock()
	if res.Sent() || res.started {
		return res
	}
	res.status.Store(int32(code))
	return res
}

// SetHeader replaces the named response header.
func (res *Response) SetHeader(name, value string) *Response {
	res.mu.Lock()
	defer res.mu.Unlock()
	if !res.Sent() {
		res.header.Set(name, value)
	}
	return res
}

// AddHeader appends a value to the named response header.
func (res *Response) AddHeader(name, value string) *Response {
	res.mu.Lock()
	defer res.mu.Unlock()
	if !res.Sent() {
		res.header.Add(name, value)
	}
	return res
}

// GetHeader returns the first value of the named response header.
func (res *Response) GetHeader(name string) string {
	res.mu.Lock()
	defer res.mu.Unlock()
	return res.header.Get(name)
}

// Sets the content type by extension, as defined in the mime package.
// For example, res.ContentType("json") sets the content-type to "application/json"
// if the supplied extension contains a slash (/) it is set as the content-type
// verbatim without passing it to mime.  returns the content type as it was
// set, or an empty string if none was found.
func (res *Response) ContentType(ext string) string {
	ctype := ""
	if strings.ContainsRune(ext, '/') {
		ctype = ext
	} else {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		ctype = mime.TypeByExtension(ext)
	}
	if ctype != "" {
		res.SetHeader("Content-Type", ctype)
	}
	return ctype
}

// Type is the chainable form of ContentType.
func (res *Response) Type(ext string) *Response {
	res.ContentType(ext)
	return res
}

// WriteHeader sends the status line and headers. Part of
// http.ResponseWriter.
func (res *Response) WriteHeader(status int) {
	res.mu.Lock()
	defer res.mu.Unlock()
	if res.Sent() || res.started {
		return
	}
	res.status.Store(int32(status))
	res.startLocked()
}

// Write streams body data. Part of http.ResponseWriter.
func (res *Response) Write(data []byte) (int, error) {
	res.mu.Lock()
	defer res.mu.Unlock()
	if res.Sent() {
		return 0, ErrResponseSent
	}
	res.startLocked()
	n, err := res.bodyWriter.Write(data)
	res.size += n
	return n, err
}

// WriteString streams a string body chunk.
func (res *Response) WriteString(content string) (int, error) {
	return res.Write([]byte(content))
}

// Send ends the response with body. Strings are sent as HTML, byte slices as
// binary data, readers are copied, nil sends an empty body and anything else
// is encoded as JSON. An explicitly set Content-Type is kept.
func (res *Response) Send(body any) *Response {
	if res.Sent() {
		return res
	}
	switch v := body.(type) {
	case nil:
		return res.send("", nil)
	case string:
		return res.send("text/html; charset=utf-8", []byte(v))
	case []byte:
		return res.send("application/octet-stream", v)
	case io.Reader:
		if res.GetHeader("Content-Type") == "" {
			res.SetHeader("Content-Type", "application/octet-stream")
		}
		if _, err := io.Copy(res, v); err != nil && !errors.Is(err, ErrResponseSent) {
			res.server.Logger.WithError(err).Warn("copying response body")
		}
		return res.End()
	case error:
		return res.JSON(newErrorBody(res.StatusCode(), v.Error()))
	}
	data, err := json.Marshal(body)
	if err != nil {
		return res.encodeFailed(err)
	}
	return res.send("application/json; charset=utf-8", data)
}

// JSON ends the response with the JSON encoding of v.
func (res *Response) JSON(v any) *Response {
	if res.Sent() {
		return res
	}
	data, err := json.Marshal(v)
	if err != nil {
		return res.encodeFailed(err)
	}
	res.SetHeader("Content-Type", "application/json; charset=utf-8")
	return res.send("", data)
}

// SendStatus ends the response with code and its status text.
func (res *Response) SendStatus(code int) *Response {
	return res.Status(code).Type("text/plain; charset=utf-8").Send(http.StatusText(code))
}

// Redirect sends a redirect to location. The status defaults to 302 Found.
func (res *Response) Redirect(location string, code ...int) *Response {
	status := http.StatusFound
	if len(code) > 0 {
		status = code[0]
	}
	return res.Status(status).
		SetHeader("Location", location).
		Send("Redirecting to: " + location)
}

// End sends the response, writing payload first if given. Payload elements
// may be strings, byte slices, io.WriterTo or io.Reader values.
func (res *Response) End(payload ...any) *Response {
	if res.Sent() {
		return res
	}
	for _, p := range payload {
		if err := res.writeAnything(p); err != nil {
			res.server.Logger.WithError(err).Warn("writing response payload")
		}
	}
	res.mu.Lock()
	defer res.mu.Unlock()
	res.finishLocked()
	return res
}

// Best-effort serialization of response data
func (res *Response) writeAnything(i any) error {
	switch typed := i.(type) {
	case nil:
		return nil
	case string:
		_, err := res.Write([]byte(typed))
		return err
	case []byte:
		_, err := res.Write(typed)
		return err
	case io.WriterTo:
		_, err := typed.WriteTo(res)
		return err
	case io.Reader:
		_, err := io.Copy(res, typed)
		return err
	}
	return fmt.Errorf("cannot serialize %T for writing to client", i)
}

// send writes a complete body and ends the response. ctype is only applied
// when no Content-Type has been set.
func (res *Response) send(ctype string, data []byte) *Response {
	res.mu.Lock()
	defer res.mu.Unlock()
	if res.Sent() {
		return res
	}
	if ctype != "" && res.header.Get("Content-Type") == "" {
		res.header.Set("Content-Type", ctype)
	}
	if !res.started {
		res.header.Set("Content-Length", strconv.Itoa(len(data)))
	}
	res.startLocked()
	if len(data) > 0 {
		n, err := res.bodyWriter.Write(data)
		res.size += n
		if err != nil {
			res.server.Logger.WithError(err).Debug("writing response body")
		}
	}
	res.finishLocked()
	return res
}

func (res *Response) finishLocked() {
	if res.Sent() {
		return
	}
	res.startLocked()
	if err := res.closeWriters(); err != nil {
		res.server.Logger.WithError(err).Debug("closing response writers")
	}
	if err := res.t.End(); err != nil {
		res.server.Logger.WithError(err).Debug("ending response")
	}
	res.sent.Store(true)
	close(res.done)
}

func (res *Response) encodeFailed(err error) *Response {
	res.server.Logger.WithError(err).Error("encoding response body")
	return res.sendError(http.StatusInternalServerError, "Internal server error", nil)
}

// sendError writes a synthesized JSON failure response unless one was
// already sent.
func (res *Response) sendError(code int, message string, stack []byte) *Response {
	body := newErrorBody(code, message)
	if len(stack) > 0 {
		body.Stack = string(stack)
	}
	data, _ := json.Marshal(body)
	res.mu.Lock()
	if !res.started {
		res.status.Store(int32(code))
		res.header.Del("Content-Encoding")
		res.header.Set("Content-Type", "application/json; charset=utf-8")
	}
	res.mu.Unlock()
	return res.send("", data)
}

// abandon marks the response sent without writing anything, for clients
// that went away. Later writes from still running handlers are dropped.
func (res *Response) abandon() {
	res.mu.Lock()
	defer res.mu.Unlock()
	if res.Sent() {
		return
	}
	res.sent.Store(true)
	close(res.done)
}

// Abort ends the response with status and a plain body.
func (res *Response) Abort(status int, body string) *Response {
	return res.Status(status).Type("text/plain; charset=utf-8").Send(body)
}

func (res *Response) NotModified() *Response {
	return res.Status(http.StatusNotModified).End()
}

func (res *Response) NotFound(message string) *Response {
	return res.Abort(http.StatusNotFound, message)
}

func (res *Response) NotAcceptable(message string) *Response {
	return res.Abort(http.StatusNotAcceptable, message)
}

func (res *Response) Unauthorized(message string) *Response {
	return res.Abort(http.StatusUnauthorized, message)
}
