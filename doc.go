// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Simple web framework.
//
// At the core of web.go are request handlers:
//
//	func helloworld(req *web.Request, res *web.Response) {
//		res.Send("hello, world")
//	}
//
// These are hooked up to the routing table using web.go:
//
//	func main() {
//		web.Get("/", helloworld)
//		web.Run("127.0.0.1:9999")
//	}
//
// Now visit http://127.0.0.1:9999 to see the greeting
//
// Route patterns are made of literal segments, named parameters and an
// optional trailing wildcard:
//
//	web.Get("/hello/:name", func(req *web.Request, res *web.Response) {
//		res.Send("hello, " + req.Param("name"))
//	})
//	web.Get("/files/*", serveFile) // req.Params.Wildcard()
//
// Visit http://127.0.0.1:9999/hello/fidodido to see 'hello, fidodido'
//
// Every request runs through a chain: the middleware (Use) and routes whose
// pattern matches, in registration order. A handler taking a third web.Next
// argument decides whether the chain goes on:
//
//	web.Use(func(req *web.Request, res *web.Response, next web.Next) {
//		if req.HeaderValue("X-Token") == "" {
//			next(web.WebError{Code: 401, Err: "no token"})
//			return
//		}
//		next()
//	})
//
// Passing an error to next skips the remaining routes and runs the error
// entries (UseError). If none of them answers, the error is sent as JSON
// with the status of the WebError, or 500. A request nothing answers gets a
// 404.
//
// Request bodies of POST, PUT and PATCH requests are read and decoded before
// the chain starts: JSON, urlencoded and multipart forms by default, more with
// Server.RegisterBodyParser.
//
// Servers run on net/http (Run, RunTLS, RunFcgi, or as an http.Handler) or
// on fasthttp (RunFastHTTP, Server.FastHTTPHandler).
//
// See the examples directory for more examples.
package web
