// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secureCookieServer() *Server {
	s, _ := newTestServer()
	s.Config.CookieSecret = "7C19QRmwf3mHZ9CPAaPQ0hsWeufKd"
	s.Get("/set", func(req *Request, res *Response) error {
		if err := res.SetSecureCookie("user", "alice", nil); err != nil {
			return err
		}
		res.Send("set")
		return nil
	})
	s.Get("/get", func(req *Request, res *Response) {
		v, ok := req.SecureCookie("user")
		if !ok {
			res.Status(401).Send("no cookie")
			return
		}
		res.Send(v)
	})
	return s
}

// cookieHeader turns the Set-Cookie lines of a response into a request
// Cookie header
func cookieHeader(setCookies []string) http.Header {
	var pairs []string
	for _, line := range setCookies {
		pair, _, _ := strings.Cut(line, ";")
		pairs = append(pairs, pair)
	}
	h := http.Header{}
	h.Set("Cookie", strings.Join(pairs, "; "))
	return h
}

func TestSecureCookieRoundTrip(t *testing.T) {
	s := secureCookieServer()
	rec := doRequest(s, "GET", "/set", "", nil)
	require.Equal(t, 200, rec.Code)
	setCookies := rec.Header().Values("Set-Cookie")
	require.Len(t, setCookies, 1)
	assert.NotContains(t, setCookies[0], "alice")

	testRouting(t, s, Test{method: "GET", path: "/get", headers: cookieHeader(setCookies), expectedStatus: 200, expectedBody: "alice"})
}

func TestSecureCookieTampered(t *testing.T) {
	s := secureCookieServer()
	rec := doRequest(s, "GET", "/set", "", nil)
	pair, _, _ := strings.Cut(rec.Header().Get("Set-Cookie"), ";")
	name, value, _ := strings.Cut(pair, "=")
	// flip the first character of the ciphertext
	flipped := "A"
	if value[0] == 'A' {
		flipped = "B"
	}
	h := http.Header{}
	h.Set("Cookie", name+"="+flipped+value[1:])
	testRouting(t, s, Test{method: "GET", path: "/get", headers: h, expectedStatus: 401, expectedBody: "no cookie"})

	h.Set("Cookie", "user=alice")
	testRouting(t, s, Test{method: "GET", path: "/get", headers: h, expectedStatus: 401, expectedBody: "no cookie"})
}

func TestSecureCookieNeedsSecret(t *testing.T) {
	s := secureCookieServer()
	s.Config.CookieSecret = ""
	rec := doRequest(s, "GET", "/set", "", nil)
	assert.Equal(t, 500, rec.Code)
	assert.Contains(t, rec.Body.String(), "Secret Key for secure cookies has not been set")
}

func TestEncryptDecrypt(t *testing.T) {
	key := genKey("secret", "salt")
	for _, plain := range []string{"", "x", strings.Repeat("long value ", 20)} {
		ct, err := encrypt([]byte(plain), key)
		require.NoError(t, err)
		pt, err := decrypt(ct, key)
		require.NoError(t, err)
		assert.Equal(t, plain, string(pt))
	}
	_, err := decrypt([]byte("short"), key)
	assert.Error(t, err)
}

func TestFlash(t *testing.T) {
	s := secureCookieServer()
	s.Get("/flash", func(req *Request, res *Response) error {
		if err := res.SetFlashNotice("saved"); err != nil {
			return err
		}
		res.Redirect("/show")
		return nil
	})
	s.Get("/show", func(req *Request, res *Response) {
		res.Send(res.GetFlash())
	})
	rec := doRequest(s, "GET", "/flash", "", nil)
	require.Equal(t, 302, rec.Code)

	rec = doRequest(s, "GET", "/show", "", cookieHeader(rec.Header().Values("Set-Cookie")))
	assert.Equal(t, `{"Alert":"","Notice":"saved"}`, rec.Body.String())
	// the notice is cleared once read
	cleared := rec.Header().Get("Set-Cookie")
	assert.Contains(t, cleared, FlashNoticeKey+"=")
	assert.Contains(t, cleared, "Max-Age=0")
}
