// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

type acceptRange struct {
	main, sub string
	q         float64
}

// parseAccept parses an Accept header, best ranges first. Ranges of equal
// quality keep the client's order.
func parseAccept(header string) []acceptRange {
	var ranges []acceptRange
	for _, part := range strings.Split(header, ",") {
		mediaRange, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		main, sub, ok := strings.Cut(strings.ToLower(strings.TrimSpace(mediaRange)), "/")
		if !ok || main == "" || sub == "" {
			continue
		}
		ranges = append(ranges, acceptRange{main: main, sub: sub, q: acceptQ(params)})
	}
	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].q > ranges[j].q })
	return ranges
}

// acceptQ reads the q parameter of one element of an Accept style header,
// 1 when absent or malformed.
func acceptQ(params string) float64 {
	for _, p := range strings.Split(params, ";") {
		k, v, _ := strings.Cut(strings.TrimSpace(p), "=")
		if strings.EqualFold(k, "q") {
			if q, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return q
			}
		}
	}
	return 1
}

// how closely r matches main/sub, 0 for no match
func (r acceptRange) specificity(main, sub string) int {
	switch {
	case r.main == main && r.sub == sub:
		return 3
	case r.main == main && r.sub == "*":
		return 2
	case r.main == "*" && r.sub == "*":
		return 1
	}
	return 0
}

// quality of mediaType under ranges: the q of the most specific matching
// range, 0 if none matches
func quality(ranges []acceptRange, mediaType string) float64 {
	main, sub, _ := strings.Cut(mediaType, "/")
	best, q := 0, 0.0
	for _, r := range ranges {
		if s := r.specificity(main, sub); s > best {
			best, q = s, r.q
		}
	}
	return q
}

// offerType turns "json" or ".json" into a media type, leaving full types
// alone.
func offerType(offer string) string {
	if strings.ContainsRune(offer, '/') {
		mt, _, err := mime.ParseMediaType(offer)
		if err != nil {
			return strings.ToLower(offer)
		}
		return mt
	}
	if !strings.HasPrefix(offer, ".") {
		offer = "." + offer
	}
	mt, _, _ := mime.ParseMediaType(mime.TypeByExtension(offer))
	return mt
}

// Accepts returns the offer the client prefers according to its Accept
// header, or "" if it accepts none of them. Offers are media types or file
// extensions ("json"). Without an Accept header the first offer wins.
func (req *Request) Accepts(offers ...string) string {
	header := req.HeaderValue("Accept")
	if header == "" {
		if len(offers) > 0 {
			return offers[0]
		}
		return ""
	}
	ranges := parseAccept(header)
	best, bestQ := "", 0.0
	for _, offer := range offers {
		if q := quality(ranges, offerType(offer)); q > bestQ {
			best, bestQ = offer, q
		}
	}
	return best
}

// Negotiate ends the response with v encoded in the registered format the
// client prefers (see RegisterMimeEncoder). If it accepts none of them the
// response is a 406.
func (res *Response) Negotiate(v any) *Response {
	ctype := res.req.Accepts(encoderTypes()...)
	if ctype == "" {
		return res.sendError(http.StatusNotAcceptable, "Acceptable: "+strings.Join(encoderTypes(), ", "), nil)
	}
	res.AddHeader("Vary", "Accept")
	return res.encode(ctype+"; charset=utf-8", mimeEncoder(ctype), v)
}
