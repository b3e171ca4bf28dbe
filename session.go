// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

var SessionKey string = "ZQSESSID"
var sessionIDLen int = 36

// SessionStorage keeps session data on the server, keyed by the session id
// stored in the client's SessionKey cookie.
type SessionStorage interface {
	SetSession(sessionID string, key string, data []byte)
	GetSession(sessionID string, key string) []byte
	ClearSession(sessionID string, key string)
}

func newSessionID() string {
	b := make([]byte, sessionIDLen/2)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

func (res *Response) SetSession(key string, data []byte) {
	res.server.SessionStorage.SetSession(res.SessionID(), key, data)
}

func (res *Response) GetSession(key string) []byte {
	return res.server.SessionStorage.GetSession(res.SessionID(), key)
}

func (res *Response) ClearSession(key string) {
	res.server.SessionStorage.ClearSession(res.SessionID(), key)
}

// AbandonSession drops the session cookie. Data stays in the storage.
func (res *Response) AbandonSession() {
	res.ClearCookie(SessionKey, nil)
	res.req.Set(SessionKey, "")
}

// SessionID returns the id of the client's session, starting a new one if
// the request carries none.
func (res *Response) SessionID() string {
	if id, _ := res.req.Get(SessionKey).(string); id != "" {
		return id
	}
	id, ok := res.req.Cookie(SessionKey)
	if !ok || len(id) != sessionIDLen {
		id = newSessionID()
		res.Cookie(SessionKey, id, &CookieOptions{HTTPOnly: true})
	}
	res.req.Set(SessionKey, id)
	return id
}

// Simple session storage using memory, handy for development
// **NEVER** use it in production!!!
type memoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() SessionStorage {
	return &memoryStore{data: make(map[string][]byte)}
}

func (ms *memoryStore) SetSession(sessionID string, key string, data []byte) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.data[sessionID+key] = data
}

func (ms *memoryStore) GetSession(sessionID string, key string) []byte {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.data[sessionID+key]
}

func (ms *memoryStore) ClearSession(sessionID string, key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.data, sessionID+key)
}
