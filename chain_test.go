// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteParams(t *testing.T) {
	s, _ := newTestServer()
	var got Params
	s.Get("/users/:id", func(req *Request, res *Response) {
		got = req.Params
		res.Send("user " + req.Params["id"])
	})
	testRouting(t, s, Test{method: "GET", path: "/users/42", expectedStatus: 200, expectedBody: "user 42"})
	assert.Equal(t, Params{"id": "42"}, got)
}

func TestWildcardRoute(t *testing.T) {
	s, _ := newTestServer()
	s.Get("/static/*", func(req *Request, res *Response) {
		res.Send(req.Params.Wildcard())
	})
	testRouting(t, s, Test{method: "GET", path: "/static/css/app.css", expectedStatus: 200, expectedBody: "css/app.css"})
}

func TestNotFound(t *testing.T) {
	s, _ := newTestServer()
	testFull(t, s, Test{
		method:          "GET",
		path:            "/anything",
		expectedStatus:  404,
		expectedBody:    `{"error":"Not Found","message":"Cannot GET /anything"}`,
		expectedHeaders: jsonHeader(),
	})
}

func TestChainExhausted(t *testing.T) {
	s, _ := newTestServer()
	s.Use(func(req *Request, res *Response, next Next) { next() })
	testRouting(t, s, Test{
		method:         "POST",
		path:           "/nothing",
		expectedStatus: 404,
		expectedBody:   `{"error":"Not Found","message":"Cannot POST /nothing"}`,
	})
}

func TestContextThreading(t *testing.T) {
	s, _ := newTestServer()
	s.Use(func(req *Request, res *Response, next Next) {
		req.Set("customProperty", "x")
		next()
	})
	s.Get("/", func(req *Request, res *Response) {
		res.Send(req.Get("customProperty"))
	})
	testRouting(t, s, Test{method: "GET", path: "/", expectedStatus: 200, expectedBody: "x"})
}

func TestChainOrder(t *testing.T) {
	s, _ := newTestServer()
	var order []string
	mw := func(name string) HandlerFunc {
		return func(req *Request, res *Response, next Next) {
			order = append(order, name)
			next()
		}
	}
	s.Use(mw("a"))
	s.Use("/x", mw("b"))
	s.Use("/other", mw("skipped"))
	s.Get("/x", mw("c"), func(req *Request, res *Response) {
		order = append(order, "route")
		res.Send("done")
	})
	s.Get("/x", mw("never"))
	testRouting(t, s, Test{method: "GET", path: "/x", expectedStatus: 200, expectedBody: "done"})
	assert.Equal(t, []string{"a", "b", "c", "route"}, order)
}

func TestSuspendedChain(t *testing.T) {
	s, _ := newTestServer()
	s.Config.HandlerTimeout = 50 * time.Millisecond
	var reached atomic.Bool
	s.Use(func(req *Request, res *Response, next Next) {})
	s.Get("/", func(req *Request, res *Response) {
		reached.Store(true)
		res.Send("unreachable")
	})
	testRouting(t, s, Test{
		method:         "GET",
		path:           "/",
		expectedStatus: 503,
		expectedBody:   `{"error":"Service Unavailable","message":"web: handler timeout"}`,
	})
	assert.False(t, reached.Load())
}

func TestErrorSkipsRemainingEntries(t *testing.T) {
	s, _ := newTestServer()
	var reached bool
	var got error
	boom := errors.New("boom")
	s.Use(func(req *Request, res *Response, next Next) { next(boom) })
	s.Get("/", func(req *Request, res *Response) { reached = true })
	s.UseError(func(err error, req *Request, res *Response, next Next) {
		got = err
		res.Status(http.StatusTeapot).Send("handled")
	})
	testRouting(t, s, Test{method: "GET", path: "/", expectedStatus: 418, expectedBody: "handled"})
	assert.False(t, reached)
	assert.Same(t, boom, got)
}

func TestErrorEntriesChain(t *testing.T) {
	s, _ := newTestServer()
	first, second := errors.New("first"), errors.New("second")
	var seen []error
	s.Get("/", func(req *Request, res *Response) error { return first })
	s.UseError(func(err error, req *Request, res *Response, next Next) {
		seen = append(seen, err)
		next(second)
	})
	s.UseError("/elsewhere", func(err error, req *Request, res *Response, next Next) {
		t.Error("error entry for another path ran")
	})
	s.UseError(func(err error, req *Request, res *Response, next Next) {
		seen = append(seen, err)
		next()
	})
	testRouting(t, s, Test{
		method:         "GET",
		path:           "/",
		expectedStatus: 500,
		expectedBody:   `{"error":"Internal Server Error","message":"second"}`,
	})
	assert.Equal(t, []error{first, second}, seen)
}

func TestThreeArgErrorHandler(t *testing.T) {
	s, _ := newTestServer()
	var calls int
	s.Get("/", func(req *Request, res *Response) error { return errors.New("x") })
	s.UseError(func(err error, req *Request, res *Response) { calls++ })
	testRouting(t, s, Test{
		method:         "GET",
		path:           "/",
		expectedStatus: 500,
		expectedBody:   `{"error":"Internal Server Error","message":"x"}`,
	})
	assert.Equal(t, 1, calls)
}

func TestWebErrorStatus(t *testing.T) {
	s, _ := newTestServer()
	s.Get("/secret", func(req *Request, res *Response) error {
		return WebError{http.StatusForbidden, "nope"}
	})
	testFull(t, s, Test{
		method:          "GET",
		path:            "/secret",
		expectedStatus:  403,
		expectedBody:    `{"error":"Forbidden","message":"nope"}`,
		expectedHeaders: jsonHeader(),
	})
}

func TestPanicRecovered(t *testing.T) {
	s, hook := newTestServer()
	s.Get("/", func(req *Request, res *Response) { panic("boom") })
	testRouting(t, s, Test{
		method:         "GET",
		path:           "/",
		expectedStatus: 500,
		expectedBody:   `{"error":"Internal Server Error","message":"boom"}`,
	})
	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			logged = true
			assert.Contains(t, e.Data, "stack")
		}
	}
	assert.True(t, logged)
}

func TestPanicRoutedToErrorEntry(t *testing.T) {
	s, _ := newTestServer()
	s.Get("/", func(req *Request, res *Response) { panic(errors.New("kaput")) })
	s.UseError(func(err error, req *Request, res *Response, next Next) {
		var perr *PanicError
		if assert.ErrorAs(t, err, &perr) {
			assert.NotEmpty(t, perr.Stack)
		}
		res.Status(500).Send("custom: " + err.Error())
	})
	testRouting(t, s, Test{method: "GET", path: "/", expectedStatus: 500, expectedBody: "custom: kaput"})
}

func TestPanicNotRecovered(t *testing.T) {
	s, _ := newTestServer()
	s.Config.RecoverPanic = false
	s.Get("/", func(req *Request, res *Response) { panic("boom") })
	assert.Panics(t, func() { doRequest(s, "GET", "/", "", nil) })
}

func TestDevelopmentStack(t *testing.T) {
	s, _ := newTestServer()
	s.Config.Development = true
	s.Get("/", func(req *Request, res *Response) { panic("boom") })
	rec := doRequest(s, "GET", "/", "", nil)
	assert.Equal(t, 500, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stack":"goroutine`)
}

func TestDuplicateNext(t *testing.T) {
	s, hook := newTestServer()
	var hits int
	s.Use(func(req *Request, res *Response, next Next) {
		next()
		next()
	})
	s.Get("/", func(req *Request, res *Response) {
		hits++
		res.Send("once")
	})
	testRouting(t, s, Test{method: "GET", path: "/", expectedStatus: 200, expectedBody: "once"})
	assert.Equal(t, 1, hits)
	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Message == "next called more than once, ignoring" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestNextAfterSend(t *testing.T) {
	s, _ := newTestServer()
	s.Get("/", func(req *Request, res *Response, next Next) {
		res.Send("first")
		next()
	})
	s.Get("/", func(req *Request, res *Response) {
		t.Error("entry after a sent response ran")
	})
	testRouting(t, s, Test{method: "GET", path: "/", expectedStatus: 200, expectedBody: "first"})
}

func TestAsyncNext(t *testing.T) {
	s, _ := newTestServer()
	s.Use(func(req *Request, res *Response, next Next) {
		go func() {
			time.Sleep(10 * time.Millisecond)
			req.Set("async", "yes")
			next()
		}()
	})
	s.Get("/", func(req *Request, res *Response) {
		res.Send(req.Get("async").(string))
	})
	testRouting(t, s, Test{method: "GET", path: "/", expectedStatus: 200, expectedBody: "yes"})
}

func TestParamsScopedToEntry(t *testing.T) {
	s, _ := newTestServer()
	var before, after Params
	s.Use("/users/:id", func(req *Request, res *Response, next Next) {
		before = req.Params
		next()
		after = req.Params
	})
	s.Get("/users/:id/posts/:post", func(req *Request, res *Response) {
		res.Send(req.Params["id"] + "/" + req.Params["post"])
	})
	testRouting(t, s, Test{method: "GET", path: "/users/7/posts/9", expectedStatus: 200, expectedBody: "7/9"})
	assert.Equal(t, Params{"id": "7"}, before)
	assert.Equal(t, Params{"id": "7"}, after)
}

func TestHeadMatchesGet(t *testing.T) {
	s, _ := newTestServer()
	s.Get("/x", func(req *Request, res *Response) { res.Send("hello") })
	rec := testRouting(t, s, Test{method: "HEAD", path: "/x", expectedStatus: 200, expectedBody: ""})
	assert.Equal(t, "5", rec.Header().Get("Content-Length"))
}

func TestMethodMismatch(t *testing.T) {
	s, _ := newTestServer()
	s.Post("/x", func(req *Request, res *Response) { res.Send("posted") })
	testRouting(t, s, Test{
		method:         "GET",
		path:           "/x",
		expectedStatus: 404,
		expectedBody:   `{"error":"Not Found","message":"Cannot GET /x"}`,
	})
	testRouting(t, s, Test{method: "POST", path: "/x", expectedStatus: 200, expectedBody: "posted"})
}

func TestAllMethods(t *testing.T) {
	s, _ := newTestServer()
	s.All("/any", func(req *Request, res *Response) { res.Send(req.Method) })
	for _, m := range []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"} {
		testRouting(t, s, Test{method: m, path: "/any", expectedStatus: 200, expectedBody: m})
	}
}

func TestRouteBuilder(t *testing.T) {
	s, _ := newTestServer()
	s.Route("/book").
		Get(func(req *Request, res *Response) { res.Send("list") }).
		Post(func(req *Request, res *Response) { res.Status(201).Send("created") })
	testRouting(t, s, Test{method: "GET", path: "/book", expectedStatus: 200, expectedBody: "list"})
	testRouting(t, s, Test{method: "POST", path: "/book", expectedStatus: 201, expectedBody: "created"})
}

func TestRoutesIntrospection(t *testing.T) {
	s, _ := newTestServer()
	s.Use(func(req *Request, res *Response, next Next) { next() })
	s.Get("/a", func(req *Request, res *Response) {})
	s.UseError(func(err error, req *Request, res *Response) {})
	routes := s.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, RouteInfo{Method: MethodAny, Pattern: "*", Kind: KindUse, Seq: 0}, routes[0])
	assert.Equal(t, RouteInfo{Method: "GET", Pattern: "/a", Kind: KindRoute, Seq: 1}, routes[1])
	assert.Equal(t, KindError, routes[2].Kind)
}

func TestInvalidRegistration(t *testing.T) {
	s, _ := newTestServer()
	err := s.Handle("GET", "/a/*/b", func(req *Request, res *Response) {})
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.Panics(t, func() { s.Get("/(.*)", func(req *Request, res *Response) {}) })
	assert.Panics(t, func() { s.Get("/ok", 42) })
	assert.Empty(t, s.Routes())
}

func TestMount(t *testing.T) {
	s, _ := newTestServer()
	api := NewRouter()
	api.Use(func(req *Request, res *Response, next Next) {
		res.SetHeader("X-Api", "1")
		next()
	})
	api.Get("/users/:id", func(req *Request, res *Response) {
		res.Send("user " + req.Params["id"])
	})
	api.Get("/", func(req *Request, res *Response) { res.Send("api root") })
	s.Mount("/api", api)

	rec := testRouting(t, s, Test{method: "GET", path: "/api/users/3", expectedStatus: 200, expectedBody: "user 3"})
	assert.Equal(t, "1", rec.Header().Get("X-Api"))
	testRouting(t, s, Test{method: "GET", path: "/api", expectedStatus: 200, expectedBody: "api root"})
	rec = testRouting(t, s, Test{
		method:         "GET",
		path:           "/users/3",
		expectedStatus: 404,
		expectedBody:   `{"error":"Not Found","message":"Cannot GET /users/3"}`,
	})
	assert.Empty(t, rec.Header().Get("X-Api"))
}

func TestJoinPattern(t *testing.T) {
	assert.Equal(t, "/api", joinPattern("/api", "*", KindUse))
	assert.Equal(t, "/api/*", joinPattern("/api/", "*", KindRoute))
	assert.Equal(t, "/api", joinPattern("/api", "/", KindRoute))
	assert.Equal(t, "/api/x/:id", joinPattern("/api", "/x/:id", KindRoute))
	assert.Equal(t, "*", joinPattern("/", "*", KindUse))
}

func newTestChain(s *Server, method, path string) *chain {
	t := &httpTransport{w: httptest.NewRecorder(), r: httptest.NewRequest(method, path, nil)}
	req := newRequest(s, t)
	return newChain(s, req, newResponse(s, req, t))
}

func TestChainStates(t *testing.T) {
	s, _ := newTestServer()
	s.Get("/ok", func(req *Request, res *Response) { res.Send("ok") })
	s.Get("/fail", func(req *Request, res *Response) error { return errors.New("no") })

	c := newTestChain(s, "GET", "/ok")
	assert.Equal(t, StateIdle, c.State())
	c.run()
	assert.Equal(t, StateCompleted, c.State())
	assert.NoError(t, c.Err())

	c = newTestChain(s, "GET", "/fail")
	c.run()
	assert.Equal(t, StateFailed, c.State())
	assert.EqualError(t, c.Err(), "no")

	c = newTestChain(s, "GET", "/missing")
	c.run()
	assert.Equal(t, StateCompleted, c.State())
	assert.ErrorIs(t, c.Err(), ErrNoRouteMatched)
}

func TestAsyncNextKeepsParams(t *testing.T) {
	s, _ := newTestServer()
	started := make(chan struct{})
	own := make(chan Params, 1)
	s.Use("/users/:id", func(req *Request, res *Response, next Next) {
		go next()
		<-started
		own <- req.Params
	})
	s.Get("/users/:id/posts/:post", func(req *Request, res *Response) {
		close(started)
		time.Sleep(20 * time.Millisecond)
		res.Send("id=" + req.Params["id"] + " post=" + req.Params["post"])
	})
	testRouting(t, s, Test{method: "GET", path: "/users/7/posts/9", expectedStatus: 200, expectedBody: "id=7 post=9"})
	assert.Equal(t, Params{"id": "7"}, <-own)
}

// error entries answering a timeout do not share the request with the
// entry that is still running
func TestTimeoutWithErrorEntries(t *testing.T) {
	s, _ := newTestServer()
	s.Config.HandlerTimeout = 10 * time.Millisecond
	finished := make(chan string, 1)
	s.Get("/slow/:id", func(req *Request, res *Response) {
		time.Sleep(30 * time.Millisecond)
		res.SetHeader("X-Late", "1").Send("late")
		finished <- req.Params["id"]
	})
	var seen error
	s.UseError(func(err error, req *Request, res *Response, next Next) {
		seen = err
		req.Params = Params{"replaced": "yes"}
		next()
	})
	rec := testRouting(t, s, Test{
		method:         "GET",
		path:           "/slow/4",
		expectedStatus: 503,
		expectedBody:   `{"error":"Service Unavailable","message":"web: handler timeout"}`,
	})
	assert.ErrorIs(t, seen, ErrHandlerTimeout)
	assert.Equal(t, "4", <-finished)
	assert.Empty(t, rec.Header().Get("X-Late"))
}

func TestFailAfterSend(t *testing.T) {
	s, _ := newTestServer()
	s.Get("/err", func(req *Request, res *Response) error {
		res.Send("done")
		return errors.New("too late")
	})
	s.Get("/panic", func(req *Request, res *Response) {
		res.Send("done")
		panic("too late")
	})
	for _, path := range []string{"/err", "/panic"} {
		c := newTestChain(s, "GET", path)
		c.run()
		assert.Equal(t, StateCompleted, c.State(), path)
		assert.NoError(t, c.Err(), path)
	}
}
