// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 64000
	keySize          = 32
)

var (
	ErrMissingCookieSecret = errors.New("Secret Key for secure cookies has not been set. Assign one to web.Config.CookieSecret.")
	ErrInvalidCookie       = errors.New("web: secure cookie is malformed or was tampered with")
)

// cookieKeys derives the encryption and signing keys from
// Config.CookieSecret, once per secret.
func (s *Server) cookieKeys() (enc, sig []byte, err error) {
	secret := s.Config.CookieSecret
	if secret == "" {
		return nil, nil, ErrMissingCookieSecret
	}
	s.keysMu.Lock()
	defer s.keysMu.Unlock()
	if s.keySecret != secret || s.encKey == nil {
		s.encKey = genKey(secret, "encryption key salt")
		s.signKey = genKey(secret, "signature key salt")
		s.keySecret = secret
	}
	return s.encKey, s.signKey, nil
}

// SetSecureCookie sets an encrypted and signed cookie readable with
// Request.SecureCookie.
func (res *Response) SetSecureCookie(name, val string, opts *CookieOptions) error {
	encKey, signKey, err := res.server.cookieKeys()
	if err != nil {
		return err
	}
	ciphertext, err := encrypt([]byte(val), encKey)
	if err != nil {
		return err
	}
	sig := sign(ciphertext, signKey)
	data := base64.RawURLEncoding.EncodeToString(ciphertext) + "." + base64.RawURLEncoding.EncodeToString(sig)
	res.Cookie(name, data, opts)
	return nil
}

// SecureCookie returns the decrypted value of a cookie set with
// SetSecureCookie. ok is false if it is missing or does not verify.
func (req *Request) SecureCookie(name string) (string, bool) {
	raw, ok := req.Cookie(name)
	if !ok {
		return "", false
	}
	val, err := req.Server.decodeSecureCookie(raw)
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *Server) decodeSecureCookie(raw string) (string, error) {
	encKey, signKey, err := s.cookieKeys()
	if err != nil {
		return "", err
	}
	encoded, encodedSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrInvalidCookie
	}
	ciphertext, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidCookie
	}
	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil {
		return "", ErrInvalidCookie
	}
	if !hmac.Equal(sign(ciphertext, signKey), sig) {
		return "", ErrInvalidCookie
	}
	plaintext, err := decrypt(ciphertext, encKey)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func genKey(password string, salt string) []byte {
	return pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, keySize, sha512.New)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	aesCipher, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	ciphertext := make([]byte, aes.BlockSize+len(plaintext))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}
	stream := cipher.NewCTR(aesCipher, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], plaintext)
	return ciphertext, nil
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	if len(ciphertext) < aes.BlockSize {
		return nil, errors.New("Invalid cipher text")
	}
	aesCipher, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	plaintext := make([]byte, len(ciphertext)-aes.BlockSize)
	stream := cipher.NewCTR(aesCipher, ciphertext[:aes.BlockSize])
	stream.XORKeyStream(plaintext, ciphertext[aes.BlockSize:])
	return plaintext, nil
}

func sign(data []byte, key []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}
