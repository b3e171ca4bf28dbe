// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func echoWebsocket(req *Request, ws *websocket.Conn) error {
	var msg string
	if err := websocket.Message.Receive(ws, &msg); err != nil {
		return err
	}
	return websocket.Message.Send(ws, req.Param("room")+": "+msg)
}

func TestWebsocketEcho(t *testing.T) {
	s, _ := newTestServer()
	s.Websocket("/ws/:room", echoWebsocket)
	s.Get("/ws/:room", func(req *Request, res *Response) { res.Send("plain") })
	srv := httptest.NewServer(s)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/lobby"
	ws, err := websocket.Dial(url, "", srv.URL)
	require.NoError(t, err)
	defer ws.Close()
	require.NoError(t, websocket.Message.Send(ws, "hi"))
	var reply string
	require.NoError(t, websocket.Message.Receive(ws, &reply))
	assert.Equal(t, "lobby: hi", reply)

	// without the upgrade the request goes on to the next entry
	resp, err := http.Get(srv.URL + "/ws/lobby")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

func TestWebsocketNeedsHTTPTransport(t *testing.T) {
	s, _ := newTestServer()
	s.Websocket("/ws", echoWebsocket)
	client := serveFast(t, s)

	req, _ := http.NewRequest("GET", "http://web.go/ws", nil)
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 501, resp.StatusCode)
}
