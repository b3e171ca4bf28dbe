// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"net/http"
	"time"
)

// CookieOptions are the attributes of a cookie set with Response.Cookie. A
// zero MaxAge makes a session cookie.
type CookieOptions struct {
	MaxAge   time.Duration
	HTTPOnly bool
	Secure   bool
	// Defaults to "/"
	Path     string
	Domain   string
	SameSite http.SameSite
}

// NewCookie is a helper method that returns a new http.Cookie object.
// Duration is specified in seconds. If the duration is zero, the cookie is permanent.
func NewCookie(name string, value string, age int64) *http.Cookie {
	var utctime time.Time
	if age == 0 {
		// 2^31 - 1 seconds (roughly 2038)
		utctime = time.Unix(2147483647, 0)
	} else {
		utctime = time.Unix(time.Now().Unix()+age, 0)
	}
	return &http.Cookie{Name: name, Value: value, Expires: utctime, Path: "/"}
}

// Cookie adds a Set-Cookie header. Invalid cookies are dropped and logged.
func (res *Response) Cookie(name, value string, opts *CookieOptions) *Response {
	c := &http.Cookie{Name: name, Value: value, Path: "/"}
	if opts != nil {
		if opts.MaxAge > 0 {
			c.MaxAge = int(opts.MaxAge / time.Second)
			c.Expires = time.Now().Add(opts.MaxAge).UTC()
		}
		c.HttpOnly = opts.HTTPOnly
		c.Secure = opts.Secure
		c.Domain = opts.Domain
		c.SameSite = opts.SameSite
		if opts.Path != "" {
			c.Path = opts.Path
		}
	}
	return res.SetCookie(c)
}

// SetCookie adds a Set-Cookie header for an already built cookie.
func (res *Response) SetCookie(c *http.Cookie) *Response {
	if err := c.Valid(); err != nil {
		res.server.Logger.WithError(err).WithField("cookie", c.Name).Warn("dropping invalid cookie")
		return res
	}
	return res.AddHeader("Set-Cookie", c.String())
}

// ClearCookie expires the named cookie on the client.
func (res *Response) ClearCookie(name string, opts *CookieOptions) *Response {
	c := &http.Cookie{Name: name, Path: "/", MaxAge: -1, Expires: time.Unix(0, 0)}
	if opts != nil {
		c.Domain = opts.Domain
		if opts.Path != "" {
			c.Path = opts.Path
		}
	}
	return res.SetCookie(c)
}
