// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"os"

	"golang.org/x/term"
)

var ttyCodes struct {
	green string
	white string
	reset string
}

func init() {
	setTTYColors(term.IsTerminal(int(os.Stdout.Fd())))
}

// setTTYColors switches the access log escape codes on or off.
func setTTYColors(enabled bool) {
	if !enabled {
		ttyCodes.green, ttyCodes.white, ttyCodes.reset = "", "", ""
		return
	}
	ttyCodes.green = ttyBold("32")
	ttyCodes.white = ttyBold("37")
	ttyCodes.reset = ttyEscape("0")
}

func ttyBold(code string) string {
	return ttyEscape("1;" + code)
}

func ttyEscape(code string) string {
	return "\x1b[" + code + "m"
}
