// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidPattern is wrapped by every pattern validation failure.
	ErrInvalidPattern = errors.New("web: invalid route pattern")
	// ErrNoRouteMatched is reported to the access logger when no entry
	// matched the request and a 404 was synthesized.
	ErrNoRouteMatched = errors.New("web: no route matched")
	// ErrResponseSent is returned by Response.Write once the response has
	// been ended. The chaining methods drop such writes silently.
	ErrResponseSent = errors.New("web: response already sent")
	// ErrHandlerTimeout is dispatched when Config.HandlerTimeout elapses.
	ErrHandlerTimeout = errors.New("web: handler timeout")
)

// WebError is an error carrying the HTTP status that should be sent to the
// client. Handlers return it (or pass it to next) to pick the status of the
// default error response.
type WebError struct {
	Code int
	Err  string
}

func (err WebError) Error() string {
	return err.Err
}

// NewWebError is a shorthand for WebError{code, fmt.Sprintf(format, args...)}.
func NewWebError(code int, format string, args ...any) WebError {
	return WebError{Code: code, Err: fmt.Sprintf(format, args...)}
}

// BodyDecodeError describes a body that could not be decoded according to its
// declared content type. It is logged and never aborts a request: the body
// degrades to raw text.
type BodyDecodeError struct {
	MediaType string
	Err       error
}

func (e *BodyDecodeError) Error() string {
	return fmt.Sprintf("web: decoding %s body: %v", e.MediaType, e.Err)
}

func (e *BodyDecodeError) Unwrap() error { return e.Err }

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// errorStatus picks the status code and client message for err.
func errorStatus(err error) (int, string) {
	var werr WebError
	if errors.As(err, &werr) && werr.Code != 0 {
		return werr.Code, werr.Err
	}
	var pwerr *WebError
	if errors.As(err, &pwerr) && pwerr != nil && pwerr.Code != 0 {
		return pwerr.Code, pwerr.Err
	}
	if errors.Is(err, ErrHandlerTimeout) {
		return http.StatusServiceUnavailable, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

// errorBody is the JSON payload of every synthesized failure response.
type errorBody struct {
	Error   string `json:"error" xml:"error" yaml:"error"`
	Message string `json:"message" xml:"message" yaml:"message"`
	Stack   string `json:"stack,omitempty" xml:"stack,omitempty" yaml:"stack,omitempty"`
}

func newErrorBody(code int, message string) errorBody {
	return errorBody{Error: http.StatusText(code), Message: message}
}
