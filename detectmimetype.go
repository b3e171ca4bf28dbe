// Copyright © 2009--2013 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"mime"
	"path"
)

// GuessMimetype fills in the Content-Type of successful responses that have
// none, from the extension of the request path: /app.css goes out as
// text/css.
func GuessMimetype(req *Request, res *Response, next Next) {
	if guess := typeByPath(req.Path); guess != "" {
		res.AddAfterHeaderFunc(func(res *Response) {
			h := res.Header()
			if h.Get("Content-Type") == "" && res.Success() {
				h.Set("Content-Type", guess)
			}
		})
	}
	next()
}

func typeByPath(p string) string {
	ext := path.Ext(unescape(p))
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(ext)
}
