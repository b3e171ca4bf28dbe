// Copyright © 2009--2013 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// this file is about the actual handling of a request: it comes in, what
// happens? the body is read, the matching entries are lined up and run, and
// the server waits until one of them has answered.

package web

import (
	"context"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

type Server struct {
	Router
	Config ServerConfig
	Logger *logrus.Logger
	// Creates the access logger of every request. nil disables access
	// logging.
	AccessLogger AccessLogger
	Env          map[string]any
	// Passed verbatim to every handler on every request, as req.Server.User
	User any
	// Where Response.SetSession keeps its data. In memory by default.
	SessionStorage SessionStorage

	parsersMu   sync.RWMutex
	bodyParsers map[string]BodyParser

	// listeners, so they can be closed
	mu   sync.Mutex
	l    net.Listener
	fast *fasthttp.Server

	keysMu    sync.Mutex
	keySecret string
	encKey    []byte
	signKey   []byte
}

var mainServer = NewServer()

// Configuration of the shared server
var Config = &mainServer.Config

func NewServer() *Server {
	return NewServerWithConfig(DefaultConfig())
}

func NewServerWithConfig(conf ServerConfig) *Server {
	s := &Server{
		Config:         conf,
		Logger:         logrus.New(),
		AccessLogger:   DefaultAccessLogger,
		Env:            map[string]any{},
		SessionStorage: NewMemoryStore(),
		bodyParsers: map[string]BodyParser{
			"application/json":                  JSONParser,
			"application/x-www-form-urlencoded": FormParser,
			"multipart/form-data":               MultipartParser,
		},
	}
	if lvl, err := logrus.ParseLevel(conf.LogLevel); err == nil {
		s.Logger.SetLevel(lvl)
	}
	// Set two commonly used mimetypes that are often not set by default
	// Handy for robots.txt and favicon.ico
	mime.AddExtensionType(".txt", "text/plain; charset=utf-8")
	mime.AddExtensionType(".ico", "image/x-icon")
	return s
}

func (s *Server) SetLogger(logger *logrus.Logger) {
	s.Logger = logger
}

// Serve answers one request arriving over t. It returns once the response
// has been sent, the request context is done or Config.HandlerTimeout has
// elapsed. A handler that neither answers nor calls next keeps the request
// waiting; that is the handler's responsibility.
func (s *Server) Serve(t Transport) {
	start := time.Now()
	req := newRequest(s, t)
	res := newResponse(s, req, t)
	c := newChain(s, req, res)
	// captured before middleware gets a chance to replace it
	ctx := req.Context()

	res.SetHeader("Server", "web.go")
	res.SetHeader("Date", webTime(start.UTC()))

	var alog OneAccessLogger
	var paramsLogged atomic.Bool
	if s.AccessLogger != nil {
		alog = s.AccessLogger(s)
		alog.LogRequest(req)
		res.AddAfterHeaderFunc(func(res *Response) {
			paramsLogged.Store(true)
			alog.LogParams(c.RouteParams())
			alog.LogHeader(res.StatusCode(), res.Header())
		})
	}

	if err := s.decodeBody(req); err != nil {
		c.abort(err)
	} else if s.Config.HandlerTimeout > 0 {
		go c.run()
	} else {
		c.run()
	}
	s.wait(ctx, c)
	req.removeUploads()

	if alog != nil {
		if !paramsLogged.Load() {
			alog.LogParams(c.RouteParams())
		}
		alog.LogDone(c.Err())
	}
	c.log.WithFields(logrus.Fields{
		"status":   res.StatusCode(),
		"duration": time.Since(start),
		"state":    c.State(),
	}).Debug("request done")
}

func (s *Server) wait(ctx context.Context, c *chain) {
	var timeout <-chan time.Time
	if s.Config.HandlerTimeout > 0 {
		timer := time.NewTimer(s.Config.HandlerTimeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case <-c.res.Done():
	case <-ctx.Done():
		c.log.Debug("client went away before the response was sent")
		c.res.abandon()
	case <-timeout:
		c.timeout()
	}
}

func webTime(t time.Time) string {
	ftime := t.Format(time.RFC1123)
	if strings.HasSuffix(ftime, "UTC") {
		ftime = ftime[0:len(ftime)-3] + "GMT"
	}
	return ftime
}

// Package wide proxy functions for global web server object

// Adds a handler for the 'GET' http method on the global server.
func Get(pattern string, handlers ...any) { mainServer.Get(pattern, handlers...) }

// Adds a handler for the 'POST' http method on the global server.
func Post(pattern string, handlers ...any) { mainServer.Post(pattern, handlers...) }

// Adds a handler for the 'PUT' http method on the global server.
func Put(pattern string, handlers ...any) { mainServer.Put(pattern, handlers...) }

// Adds a handler for the 'DELETE' http method on the global server.
func Delete(pattern string, handlers ...any) { mainServer.Delete(pattern, handlers...) }

func Patch(pattern string, handlers ...any) { mainServer.Patch(pattern, handlers...) }

func Options(pattern string, handlers ...any) { mainServer.Options(pattern, handlers...) }

func Head(pattern string, handlers ...any) { mainServer.Head(pattern, handlers...) }

func All(pattern string, handlers ...any) { mainServer.All(pattern, handlers...) }

func Use(args ...any) { mainServer.Use(args...) }

func UseError(args ...any) { mainServer.UseError(args...) }

func Handle(method, pattern string, handlers ...any) error {
	return mainServer.Handle(method, pattern, handlers...)
}

func Mount(prefix string, child *Router) { mainServer.Mount(prefix, child) }

// Set a logger to be used by the global web server
func SetLogger(logger *logrus.Logger) {
	mainServer.Logger = logger
}

// The global web server as an object implementing the http.Handler interface
func GetHTTPHandler() http.Handler {
	return mainServer
}
