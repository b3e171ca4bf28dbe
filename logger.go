// Copyright © 2009--2013 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// Log one request by calling every method in the order defined below. Logging
// may be done in a separate goroutine from handling. Arguments are passed by
// reference for efficiency but MUST NOT be changed!
type OneAccessLogger interface {
	// Called with the incoming request, before the body is read
	LogRequest(*Request)
	// Parameters bound by the route that handled the request
	LogParams(Params)
	// Called when headers are set by handler and will be written to client
	LogHeader(status int, header http.Header)
	// Called when response has been written to client. If an error occurred at
	// any point during handling it is passed as an argument. Otherwise err is
	// nil.
	LogDone(err error)
}

type plainOneAccessLogger struct{ *logrus.Entry }

func (l plainOneAccessLogger) LogRequest(req *Request) {
	l.Infof("%s %s", req.Method, req.Path)
}

func (l plainOneAccessLogger) LogParams(p Params) {
	if len(p) > 0 {
		l.Infof("Params: %v", p)
	}
}

func (l plainOneAccessLogger) LogHeader(status int, h http.Header) {
	l.WithField("status", status).Debug("headers written")
}

func (l plainOneAccessLogger) LogDone(err error) {
	if err != nil {
		l.WithError(err).Debug("request failed")
	}
}

type coloredOneAccessLogger struct{ plainOneAccessLogger }

func (l coloredOneAccessLogger) LogRequest(req *Request) {
	l.Infof("%s%s %s%s", ttyCodes.green, req.Method, req.Path, ttyCodes.reset)
}

func (l coloredOneAccessLogger) LogParams(p Params) {
	if len(p) > 0 {
		l.Infof("%sParams: %v%s", ttyCodes.white, p, ttyCodes.reset)
	}
}

// Factory function that generates new one-shot access loggers
type AccessLogger func(*Server) OneAccessLogger

// Simple stateless access logger that prints all requests to server.Logger
func DefaultAccessLogger(s *Server) OneAccessLogger {
	plain := plainOneAccessLogger{logrus.NewEntry(s.Logger)}
	if s.Config.ColorOutput {
		return coloredOneAccessLogger{plain}
	}
	return plain
}
