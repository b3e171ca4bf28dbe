// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/http/fcgi"
	"strings"

	"github.com/valyala/fasthttp"
)

func (s *Server) listen(network, addr string) (net.Listener, error) {
	l, err := net.Listen(network, addr)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.l = l
	s.mu.Unlock()
	return l, nil
}

// Listen for HTTP connections
func (s *Server) Run(addr string) error {
	l, err := s.listen("tcp", addr)
	if err != nil {
		return err
	}
	defer l.Close()
	s.Logger.WithField("addr", addr).Info("web.go serving")
	return http.Serve(l, s)
}

// Listen for HTTPS connections
func (s *Server) RunTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("opening certificate: %w", err)
	}
	l, err := s.listen("tcp", addr)
	if err != nil {
		return err
	}
	defer l.Close()
	srv := &http.Server{Handler: s}
	tlsListener := tls.NewListener(l, &tls.Config{Certificates: []tls.Certificate{cert}})
	s.Logger.WithField("addr", addr).Info("web.go serving with TLS")
	return srv.Serve(tlsListener)
}

// Runs the web application and serves fcgi requests for this Server object.
// An addr of the form "unix:/path/to/socket" listens on a unix socket.
func (s *Server) RunFcgi(addr string) error {
	network := "tcp"
	if path, ok := strings.CutPrefix(addr, "unix:"); ok {
		network, addr = "unix", path
	}
	l, err := s.listen(network, addr)
	if err != nil {
		return err
	}
	defer l.Close()
	s.Logger.WithField("addr", addr).Info("web.go serving fcgi")
	return fcgi.Serve(l, s)
}

// Runs the web application on a fasthttp server instead of net/http.
func (s *Server) RunFastHTTP(addr string) error {
	srv := &fasthttp.Server{
		Handler:           s.FastHTTPHandler,
		Name:              "web.go",
		StreamRequestBody: true,
		Logger:            s.Logger,
	}
	if s.Config.MaxBodyBytes > 0 {
		srv.MaxRequestBodySize = int(s.Config.MaxBodyBytes)
	}
	s.mu.Lock()
	s.fast = srv
	s.mu.Unlock()
	s.Logger.WithField("addr", addr).Info("web.go serving with fasthttp")
	return srv.ListenAndServe(addr)
}

// Stops the web server
func (s *Server) Close() error {
	s.mu.Lock()
	l, fast := s.l, s.fast
	s.l, s.fast = nil, nil
	s.mu.Unlock()
	var err error
	if l != nil {
		err = l.Close()
	}
	if fast != nil {
		if ferr := fast.Shutdown(); err == nil {
			err = ferr
		}
	}
	return err
}

// Runs the web application and serves http requests
func Run(addr string) error {
	return mainServer.Run(addr)
}

// Runs the secure web application and serves https requests
func RunTLS(addr, certFile, keyFile string) error {
	return mainServer.RunTLS(addr, certFile, keyFile)
}

// Runs the web application by serving fastcgi requests
func RunFcgi(addr string) error {
	return mainServer.RunFcgi(addr)
}

func RunFastHTTP(addr string) error {
	return mainServer.RunFastHTTP(addr)
}

// Stop the global web server
func Close() error {
	return mainServer.Close()
}
