// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

type MimeEncoder func(any) ([]byte, error)

var encoders = struct {
	sync.RWMutex
	byType map[string]MimeEncoder
	// registration order, the order Negotiate offers them in
	order []string
}{byType: map[string]MimeEncoder{}}

// Register a new mimetype and how it should be encoded by Response.Negotiate
func RegisterMimeEncoder(mimetype string, enc MimeEncoder) {
	encoders.Lock()
	defer encoders.Unlock()
	if _, ok := encoders.byType[mimetype]; !ok {
		encoders.order = append(encoders.order, mimetype)
	}
	encoders.byType[mimetype] = enc
}

func mimeEncoder(mimetype string) MimeEncoder {
	encoders.RLock()
	defer encoders.RUnlock()
	return encoders.byType[mimetype]
}

func encoderTypes() []string {
	encoders.RLock()
	defer encoders.RUnlock()
	return append([]string(nil), encoders.order...)
}

// Default encoders
func JSONencoder(content any) ([]byte, error) {
	return json.Marshal(content)
}

func XMLencoder(content any) ([]byte, error) {
	var encoded bytes.Buffer
	encoded.WriteString(xml.Header)
	enc := xml.NewEncoder(&encoded)
	if err := enc.Encode(content); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func YAMLencoder(content any) ([]byte, error) {
	return yaml.Marshal(content)
}

// TextEncoder formats content with fmt.
func TextEncoder(content any) ([]byte, error) {
	return []byte(fmt.Sprint(content)), nil
}

func init() {
	RegisterMimeEncoder("application/json", JSONencoder)
	RegisterMimeEncoder("application/xml", XMLencoder)
	RegisterMimeEncoder("application/yaml", YAMLencoder)
	RegisterMimeEncoder("text/plain", TextEncoder)
}

func (res *Response) encode(ctype string, enc MimeEncoder, v any) *Response {
	if res.Sent() {
		return res
	}
	data, err := enc(v)
	if err != nil {
		return res.encodeFailed(err)
	}
	res.SetHeader("Content-Type", ctype)
	return res.send("", data)
}

// XML ends the response with the XML encoding of v.
func (res *Response) XML(v any) *Response {
	return res.encode("application/xml; charset=utf-8", XMLencoder, v)
}

// YAML ends the response with the YAML encoding of v.
func (res *Response) YAML(v any) *Response {
	return res.encode("application/yaml; charset=utf-8", YAMLencoder, v)
}
