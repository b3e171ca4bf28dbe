// Copyright © 2009--2013 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"io"
	"net/http"
)

// transportWriter feeds body bytes to the transport. It is the innermost
// body writer; wrappers installed with WrapBodyWriter sit on top of it.
type transportWriter struct{ t Transport }

func (w transportWriter) Write(data []byte) (int, error) { return w.t.Write(data) }

// discardHead drops body bytes for HEAD requests while keeping the headers.
type discardHead struct{}

func (discardHead) Write(data []byte) (int, error) { return len(data), nil }

// run the after-headers callbacks exactly once. Caller holds res.mu.
func (res *Response) triggerAfterHeaders() {
	if res.hooksRan {
		return
	}
	res.hooksRan = true
	for _, f := range res.afterHeaders {
		f(res)
	}
}

// Flush the status line and headers to the transport. Caller holds res.mu.
func (res *Response) startLocked() {
	if res.started {
		return
	}
	res.triggerAfterHeaders()
	res.started = true
	res.t.WriteHeader(res.StatusCode())
}

// Close the body writers in reverse order: closing an outer writer can flush
// pending data to an underlying one. Caller holds res.mu.
func (res *Response) closeWriters() error {
	var err error
	for i := range res.closers {
		c := res.closers[len(res.closers)-i-1]
		if err2 := c.Close(); err == nil && err2 != nil {
			err = err2
		}
	}
	res.closers = nil
	return err
}

// WrapBodyWriter installs a writer around the body stream, e.g. a
// compressor. Call it from an after-headers callback or before anything is
// written; it has no effect once the headers are out.
func (res *Response) WrapBodyWriter(f func(w io.Writer) io.Writer) {
	if res.started {
		return
	}
	res.bodyWriter = f(res.bodyWriter)
	if c, ok := res.bodyWriter.(io.Closer); ok {
		res.closers = append(res.closers, c)
	}
}

// AddAfterHeaderFunc adds a callback to execute when all headers have been
// set and body data is about to be written. Callbacks run with the response
// locked: they go through Header() and WrapBodyWriter, not the setters.
func (res *Response) AddAfterHeaderFunc(f func(*Response)) {
	res.mu.Lock()
	defer res.mu.Unlock()
	res.afterHeaders = append(res.afterHeaders, f)
}

// Return true if the status code indicates succesful handling: 1xx, 2xx or
// 3xx.
func httpSuccess(status int) bool {
	return status >= 100 && status <= 399
}

// Success is true if the status code set so far indicates success.
func (res *Response) Success() bool {
	return httpSuccess(res.StatusCode())
}

var _ http.ResponseWriter = (*Response)(nil)
