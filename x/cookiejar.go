// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

// Package x holds low-level capabilities shared across the identity
// endpoint: the cookie-bound message protocol, input validation, and the
// anti-forgery gate. None of it is specific to login or logout semantics.
package x

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"
)

// ErrCookieIDMismatch is returned when a cookie's stored id does not match
// the id it was read under — the envelope protects against cross-flow
// confusion by failing closed rather than returning another flow's payload.
var ErrCookieIDMismatch = errors.New("cookie id does not match requested id")

// ErrMessageNotFound is returned when no cookie of the given name is present
// on the request, or it fails to decode/verify.
var ErrMessageNotFound = errors.New("cookie not present or invalid")

// envelope is what actually goes into the signed cookie value: the id it is
// addressed by, plus the caller's payload. Storing the id inside the signed
// envelope (rather than trusting the cookie name or an unsigned query
// parameter) is what lets MessageStore.Read fail when ids don't match.
type envelope[T any] struct {
	ID      string
	Payload T
}

// MessageStore is the capability named in the design notes: a typed,
// per-id message envelope with put/read/clear. The browser-cookie
// implementation below is one of several possible backends; see
// x/sqlmessagestore.go for an alternate, DB-backed implementation and
// x/memorymessagestore.go (test-only) for an in-process one.
type MessageStore[T any] interface {
	Put(w http.ResponseWriter, r *http.Request, id string, payload T) error
	Read(r *http.Request, id string) (T, error)
	Clear(w http.ResponseWriter, r *http.Request, id string)
}

// CookieMessageStore is the default MessageStore backend: an opaque signed
// (and, when a block key is configured, encrypted) envelope keyed by id and
// addressed through one cookie per id (name = prefix + "." + id). Keying by
// id rather than overwriting a single cookie is what lets multiple
// concurrent flows share a browser.
type CookieMessageStore[T any] struct {
	sc         *securecookie.SecureCookie
	namePrefix string
	path       string
	maxAge     time.Duration
	secure     bool
}

// NewCookieMessageStore constructs a CookieMessageStore. hashKey must be 32
// or 64 bytes; blockKey may be nil to sign-only (no encryption), 16/24/32
// bytes to additionally encrypt the envelope.
func NewCookieMessageStore[T any](namePrefix string, hashKey, blockKey []byte, path string, maxAge time.Duration, secure bool) *CookieMessageStore[T] {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(maxAge.Seconds()))
	return &CookieMessageStore[T]{sc: sc, namePrefix: namePrefix, path: path, maxAge: maxAge, secure: secure}
}

func (s *CookieMessageStore[T]) cookieName(id string) string {
	return s.namePrefix + "." + id
}

func (s *CookieMessageStore[T]) Put(w http.ResponseWriter, r *http.Request, id string, payload T) error {
	env := envelope[T]{ID: id, Payload: payload}
	encoded, err := s.sc.Encode(s.cookieName(id), env)
	if err != nil {
		return errors.Wrap(err, "unable to encode message cookie")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName(id),
		Value:    encoded,
		Path:     s.path,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.maxAge.Seconds()),
	})
	return nil
}

func (s *CookieMessageStore[T]) Read(r *http.Request, id string) (T, error) {
	var env envelope[T]
	var zero T

	c, err := r.Cookie(s.cookieName(id))
	if err != nil {
		return zero, errors.WithStack(ErrMessageNotFound)
	}
	if err := s.sc.Decode(s.cookieName(id), c.Value, &env); err != nil {
		return zero, errors.WithStack(ErrMessageNotFound)
	}
	if env.ID != id {
		return zero, errors.WithStack(ErrCookieIDMismatch)
	}
	return env.Payload, nil
}

func (s *CookieMessageStore[T]) Clear(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName(id),
		Value:    "",
		Path:     s.path,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// SessionCookie carries a single opaque session id, minted on each
// successful full sign-in and cleared on sign-out. Unlike MessageStore it
// is not keyed by an external id — there is exactly one per browser.
type SessionCookie struct {
	name   string
	path   string
	secure bool
}

func NewSessionCookie(name, path string, secure bool) *SessionCookie {
	return &SessionCookie{name: name, path: path, secure: secure}
}

func (s *SessionCookie) Issue(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    sessionID,
		Path:     s.path,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *SessionCookie) Read(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (s *SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     s.path,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// LastUserNameCookie remembers the last successful local username purely
// for display convenience. It is set only on local login success, full or
// partial (never on an external sign-in), and is not signed: it carries no
// security relevance, only a display hint.
type LastUserNameCookie struct {
	name   string
	path   string
	maxAge time.Duration
	secure bool
}

func NewLastUserNameCookie(name, path string, maxAge time.Duration, secure bool) *LastUserNameCookie {
	return &LastUserNameCookie{name: name, path: path, maxAge: maxAge, secure: secure}
}

func (c *LastUserNameCookie) Set(w http.ResponseWriter, username string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    username,
		Path:     c.path,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.maxAge.Seconds()),
	})
}

func (c *LastUserNameCookie) Get(r *http.Request) (string, bool) {
	cc, err := r.Cookie(c.name)
	if err != nil || cc.Value == "" {
		return "", false
	}
	return cc.Value, true
}
