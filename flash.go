// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import "time"

type Flash struct {
	Alert  string
	Notice string
}

var FlashAlertKey string = "ZQFA"
var FlashNoticeKey string = "ZQFN"

var flashOptions = &CookieOptions{MaxAge: time.Minute, HTTPOnly: true}

// SetFlashAlert stores an alert for the next request, in a secure cookie.
func (res *Response) SetFlashAlert(msg string) error {
	return res.SetSecureCookie(FlashAlertKey, msg, flashOptions)
}

func (res *Response) SetFlashNotice(msg string) error {
	return res.SetSecureCookie(FlashNoticeKey, msg, flashOptions)
}

// GetFlash returns the messages set by the previous request and clears them.
func (res *Response) GetFlash() *Flash {
	flash := &Flash{}
	var ok bool
	flash.Alert, ok = res.req.SecureCookie(FlashAlertKey)
	if ok {
		res.ClearCookie(FlashAlertKey, nil)
	}
	flash.Notice, ok = res.req.SecureCookie(FlashNoticeKey)
	if ok {
		res.ClearCookie(FlashNoticeKey, nil)
	}
	return flash
}
