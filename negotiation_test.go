// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"encoding/xml"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type negotiated struct {
	XMLName xml.Name `xml:"item" json:"-" yaml:"-"`
	Name    string   `xml:"name" json:"name" yaml:"name"`
}

func (n negotiated) String() string { return "item " + n.Name }

func accept(value string) http.Header {
	h := http.Header{}
	h.Set("Accept", value)
	return h
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		header string
		offers []string
		want   string
	}{
		{"", []string{"json", "html"}, "json"},
		{"text/html", []string{"json", "html"}, "html"},
		{"text/html, application/json;q=0.5", []string{"json", "html"}, "html"},
		{"application/json;q=0.5, text/*", []string{"application/json", "text/plain"}, "text/plain"},
		{"*/*", []string{"xml", "json"}, "xml"},
		{"image/png", []string{"json", "html"}, ""},
		{"text/*;q=0", []string{"html"}, ""},
	}
	for _, tt := range tests {
		s, _ := newTestServer()
		offers := tt.offers
		s.Get("/", func(req *Request, res *Response) { res.Send(req.Accepts(offers...)) })
		var h http.Header
		if tt.header != "" {
			h = accept(tt.header)
		}
		rec := doRequest(s, "GET", "/", "", h)
		assert.Equal(t, tt.want, rec.Body.String(), "Accept: %s", tt.header)
	}
}

func TestNegotiate(t *testing.T) {
	s, _ := newTestServer()
	s.Get("/item", func(req *Request, res *Response) { res.Negotiate(negotiated{Name: "pen"}) })

	rec := doRequest(s, "GET", "/item", "", nil)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"name":"pen"}`, rec.Body.String())
	assert.Equal(t, "Accept", rec.Header().Get("Vary"))

	rec = doRequest(s, "GET", "/item", "", accept("application/xml"))
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, xml.Header+"<item><name>pen</name></item>", rec.Body.String())

	rec = doRequest(s, "GET", "/item", "", accept("application/yaml"))
	assert.Equal(t, "name: pen\n", rec.Body.String())

	rec = doRequest(s, "GET", "/item", "", accept("text/plain"))
	assert.Equal(t, "item pen", rec.Body.String())
}

func TestNegotiateNotAcceptable(t *testing.T) {
	s, _ := newTestServer()
	s.Get("/item", func(req *Request, res *Response) { res.Negotiate(negotiated{Name: "pen"}) })
	rec := doRequest(s, "GET", "/item", "", accept("image/png"))
	assert.Equal(t, 406, rec.Code)
	assert.Contains(t, rec.Body.String(), "application/json")
}
