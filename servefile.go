// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Default
func defaultStaticDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "static"
	}
	return filepath.Join(filepath.Dir(exe), "static")
}

// If this path corresponds to a static file return its location
func findFile(staticDirs []string, urlPath string) string {
	if len(staticDirs) == 0 {
		staticDirs = []string{defaultStaticDir()}
	}
	// path.Clean on a rooted path never climbs above the root
	clean := path.Clean("/" + urlPath)
	for _, staticDir := range staticDirs {
		staticFile := filepath.Join(staticDir, filepath.FromSlash(clean))
		if fileExists(staticFile) {
			return staticFile
		}
	}
	// Try to serve index.html || index.htm
	indexFilenames := []string{"index.html", "index.htm"}
	for _, staticDir := range staticDirs {
		dir := filepath.Join(staticDir, filepath.FromSlash(clean))
		if !dirExists(dir) {
			continue
		}
		for _, indexFilename := range indexFilenames {
			if indexPath := filepath.Join(dir, indexFilename); fileExists(indexPath) {
				return indexPath
			}
		}
	}
	return ""
}

// Static returns middleware serving GET and HEAD requests from the first of
// dirs holding the requested file. Other requests, and files that don't
// exist, go on down the chain. Without dirs, Config.StaticDirs is used, and
// failing that the "static" directory next to the executable.
//
// Mounted with a path, the path is stripped: Use("/assets", Static("public"))
// serves /assets/app.css from public/app.css.
func Static(dirs ...string) HandlerFunc {
	return func(req *Request, res *Response, next Next) {
		if req.Method != "GET" && req.Method != "HEAD" {
			next()
			return
		}
		staticDirs := dirs
		if len(staticDirs) == 0 {
			staticDirs = req.Server.Config.StaticDirs
		}
		rel := unescape(req.Path)
		if w, ok := req.Params[WildcardKey]; ok {
			rel = w
		} else if req.BaseURL != "" {
			rel = strings.TrimPrefix(rel, unescape(req.BaseURL))
		}
		file := findFile(staticDirs, rel)
		if file == "" {
			next()
			return
		}
		http.ServeFile(res, req.HTTPRequest(), file)
		res.End()
	}
}
