// XSRF support
// install the XSRF middleware with web.Use
// call XSRFFormField to get a hidden form field, then add to the form
// POST, PUT, PATCH and DELETE requests without a valid token fail with 403

package web

import (
	"html"
	"net/http"

	"golang.org/x/net/xsrftoken"
)

const xsrfKey = "_xsrf"

type XSRFOptions struct {
	Secret string
	// Identifies the client the token is issued to. Requests for which it
	// returns "" are not protected.
	UserID func(*Request) string
	// Form field and header the token is read from. Default "_xsrf" and
	// "X-XSRF-Token".
	FormField string
	Header    string
}

// XSRF returns middleware that issues a token per user and rejects unsafe
// requests that do not echo it back.
func XSRF(opts XSRFOptions) HandlerFunc {
	if opts.FormField == "" {
		opts.FormField = xsrfKey
	}
	if opts.Header == "" {
		opts.Header = "X-XSRF-Token"
	}
	return func(req *Request, res *Response, next Next) {
		if opts.UserID == nil {
			next()
			return
		}
		uid := opts.UserID(req)
		if uid == "" {
			next()
			return
		}
		token, ok := req.SecureCookie(xsrfKey)
		if !ok || !xsrftoken.Valid(token, opts.Secret, uid, "POST") {
			token = xsrftoken.Generate(opts.Secret, uid, "POST")
			err := res.SetSecureCookie(xsrfKey, token, &CookieOptions{MaxAge: xsrftoken.Timeout, HTTPOnly: true})
			if err != nil {
				req.Server.Logger.WithError(err).Warn("storing xsrf token")
			}
		}
		req.Set(xsrfKey, token)

		switch req.Method {
		case "POST", "PUT", "PATCH", "DELETE":
			if !xsrftoken.Valid(submittedXSRFToken(req, opts), opts.Secret, uid, "POST") {
				next(WebError{http.StatusForbidden, "invalid XSRF token"})
				return
			}
		}
		next()
	}
}

func submittedXSRFToken(req *Request, opts XSRFOptions) string {
	if t := req.HeaderValue(opts.Header); t != "" {
		return t
	}
	return req.FormValue(opts.FormField)
}

// XSRFToken returns the token issued to the current request by the XSRF
// middleware.
func XSRFToken(req *Request) string {
	t, _ := req.Get(xsrfKey).(string)
	return t
}

func XSRFFormField(req *Request) string {
	return "<input type=\"hidden\" name=\"_xsrf\" value=\"" +
		html.EscapeString(XSRFToken(req)) + "\"/>"
}
