// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// BodyParser decodes a complete request body of one media type. params are
// the parameters of the Content-Type header, e.g. the multipart boundary.
type BodyParser func(data []byte, params map[string]string) (any, error)

// JSONParser decodes any JSON document into maps, slices and scalars.
func JSONParser(data []byte, _ map[string]string) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// FormParser decodes an urlencoded form into flat key/value pairs; for
// repeated keys the first value wins.
func FormParser(data []byte, _ map[string]string) (any, error) {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, err
	}
	form := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			form[k] = v[0]
		}
	}
	return form, nil
}

// YAMLParser decodes a YAML document. Not registered by default.
func YAMLParser(data []byte, _ map[string]string) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Parts of a multipart body beyond this much memory go to temporary files.
const multipartMemory = 32 << 20

var errNoBoundary = errors.New("multipart body without boundary")

// MultipartParser decodes multipart/form-data into a *multipart.Form with
// both the plain values and the file headers. Temporary files are removed
// once the response has been sent.
func MultipartParser(data []byte, params map[string]string) (any, error) {
	boundary := params["boundary"]
	if boundary == "" {
		return nil, errNoBoundary
	}
	form, err := multipart.NewReader(bytes.NewReader(data), boundary).ReadForm(multipartMemory)
	if err != nil {
		return nil, err
	}
	return form, nil
}

// FormValue returns the first value of a field of an urlencoded or
// multipart form body.
func (req *Request) FormValue(name string) string {
	switch form := req.Body.(type) {
	case map[string]string:
		return form[name]
	case *multipart.Form:
		if vs := form.Value[name]; len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

// FormFile returns the first file uploaded as name in a multipart body.
func (req *Request) FormFile(name string) (*multipart.FileHeader, bool) {
	form, ok := req.Body.(*multipart.Form)
	if !ok {
		return nil, false
	}
	if fhs := form.File[name]; len(fhs) > 0 {
		return fhs[0], true
	}
	return nil, false
}

// removeUploads drops the temporary files of a multipart body.
func (req *Request) removeUploads() {
	if form, ok := req.Body.(*multipart.Form); ok {
		if err := form.RemoveAll(); err != nil {
			req.Server.Logger.WithError(err).Warn("removing uploaded files")
		}
	}
}

// RegisterBodyParser sets the decoder used for bodies of mediaType
// ("application/json", "application/x-www-form-urlencoded", ...).
func (s *Server) RegisterBodyParser(mediaType string, p BodyParser) {
	s.parsersMu.Lock()
	defer s.parsersMu.Unlock()
	s.bodyParsers[strings.ToLower(mediaType)] = p
}

func (s *Server) bodyParser(mediaType string) BodyParser {
	s.parsersMu.RLock()
	defer s.parsersMu.RUnlock()
	if p, ok := s.bodyParsers[mediaType]; ok {
		return p
	}
	if strings.HasSuffix(mediaType, "+json") {
		return s.bodyParsers["application/json"]
	}
	return nil
}

// methods that conventionally carry a body
func hasBody(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}

var errBodyTooLarge = WebError{http.StatusRequestEntityTooLarge, "request body too large"}

// decodeBody reads and decodes the request body before the chain starts.
// Only an oversized body fails the request; read errors, timeouts and
// decoding errors degrade to whatever could be read.
func (s *Server) decodeBody(req *Request) error {
	if !hasBody(req.Method) {
		return nil
	}
	raw, err := readBody(req.Context(), req.t.Body(), s.Config.BodyTimeout, s.Config.MaxBodyBytes)
	switch {
	case errors.Is(err, errBodyTooLarge):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		s.Logger.WithField("path", req.Path).Warn("body read timed out, continuing with partial body")
	case err != nil:
		s.Logger.WithError(err).WithField("path", req.Path).Warn("reading request body")
	}
	req.RawBody = raw
	if req.httpReq != nil {
		req.httpReq.Body = io.NopCloser(bytes.NewReader(raw))
	}
	if len(raw) == 0 {
		return nil
	}
	mediaType, params, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	parse := s.bodyParser(strings.ToLower(mediaType))
	if parse == nil {
		req.Body = string(raw)
		return nil
	}
	body, err := parse(raw, params)
	if err != nil {
		s.Logger.WithError(&BodyDecodeError{MediaType: mediaType, Err: err}).Debug("falling back to raw body")
		req.Body = string(raw)
		return nil
	}
	req.Body = body
	return nil
}

// bodyBuffer collects what the reader goroutine has read so far.
type bodyBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *bodyBuffer) append(p []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Write(p)
	return b.buf.Len()
}

func (b *bodyBuffer) snapshot() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

// readBody reads r to completion, or until timeout elapses or ctx is done,
// whichever comes first. In the latter cases the bytes buffered so far are
// returned along with context.DeadlineExceeded or the context error. A
// non-positive timeout waits for the whole body.
func readBody(ctx context.Context, r io.Reader, timeout time.Duration, limit int64) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	var buf bodyBuffer
	done := make(chan error, 1)
	go func() {
		chunk := make([]byte, 32*1024)
		for {
			n, err := r.Read(chunk)
			if n > 0 {
				if size := buf.append(chunk[:n]); limit > 0 && int64(size) > limit {
					done <- errBodyTooLarge
					return
				}
			}
			if err == io.EOF {
				done <- nil
				return
			}
			if err != nil {
				done <- err
				return
			}
		}
	}()

	var timeoutC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}
	select {
	case err := <-done:
		return buf.snapshot(), err
	case <-timeoutC:
		return buf.snapshot(), context.DeadlineExceeded
	case <-ctx.Done():
		return buf.snapshot(), ctx.Err()
	}
}
