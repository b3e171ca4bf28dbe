// Copyright © 2009--2013 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// content codings Compress can apply, preferred first
var codings = []struct {
	name string
	wrap func(w io.Writer) io.Writer
}{
	{"gzip", func(w io.Writer) io.Writer { return gzip.NewWriter(w) }},
	{"deflate", func(w io.Writer) io.Writer {
		fw, _ := flate.NewWriter(w, flate.DefaultCompression)
		return fw
	}},
}

// media types worth compressing, matched as prefixes
var textualTypes = []string{
	"text/",
	"application/json",
	"application/xml",
	"application/javascript",
	"application/yaml",
}

func textual(ctype string) bool {
	for _, t := range textualTypes {
		if strings.HasPrefix(ctype, t) {
			return true
		}
	}
	return false
}

// pickCoding chooses a coding from an Accept-Encoding header: the supported
// one with the highest quality, earlier entries of codings on a tie. ""
// means the body goes out as is.
func pickCoding(header string) string {
	quality := map[string]float64{}
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			quality[name] = acceptQ(params)
		}
	}
	best, bestQ := "", 0.0
	for _, c := range codings {
		q, ok := quality[c.name]
		if !ok {
			q = quality["*"]
		}
		if q > bestQ {
			best, bestQ = c.name, q
		}
	}
	return best
}

// Compress encodes textual responses with gzip or deflate when the client
// accepts it. The decision is taken once the handler has set the headers.
func Compress(req *Request, res *Response, next Next) {
	coding := pickCoding(req.HeaderValue("Accept-Encoding"))
	res.AddAfterHeaderFunc(func(res *Response) {
		h := res.Header()
		h.Add("Vary", "Accept-Encoding")
		switch {
		case coding == "", h.Get("Content-Encoding") != "", !textual(h.Get("Content-Type")):
			return
		case res.StatusCode() == http.StatusNoContent, res.StatusCode() == http.StatusNotModified:
			return
		}
		for _, c := range codings {
			if c.name == coding {
				res.WrapBodyWriter(c.wrap)
			}
		}
		h.Set("Content-Encoding", coding)
		h.Del("Content-Length")
	})
	next()
}
