// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package x

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	ClientID  string
	ReturnURL string
}

func TestCookieMessageStore_PutAndRead(t *testing.T) {
	store := NewCookieMessageStore[samplePayload]("idsrv.test", []byte("0123456789abcdef0123456789abcdef"), nil, "/", 10*time.Minute, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login?signin=abc", nil)
	require.NoError(t, store.Put(rec, req, "abc", samplePayload{ClientID: "c1", ReturnURL: "https://rp/cb"}))

	req2 := httptest.NewRequest(http.MethodGet, "/login?signin=abc", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}

	got, err := store.Read(req2, "abc")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ClientID)
	assert.Equal(t, "https://rp/cb", got.ReturnURL)
}

func TestCookieMessageStore_ReadMissing(t *testing.T) {
	store := NewCookieMessageStore[samplePayload]("idsrv.test", []byte("0123456789abcdef0123456789abcdef"), nil, "/", 10*time.Minute, false)
	req := httptest.NewRequest(http.MethodGet, "/login?signin=abc", nil)

	_, err := store.Read(req, "abc")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestCookieMessageStore_WrongIDRejected(t *testing.T) {
	store := NewCookieMessageStore[samplePayload]("idsrv.test", []byte("0123456789abcdef0123456789abcdef"), nil, "/", 10*time.Minute, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login?signin=abc", nil)
	require.NoError(t, store.Put(rec, req, "abc", samplePayload{ClientID: "c1"}))

	req2 := httptest.NewRequest(http.MethodGet, "/login?signin=xyz", nil)
	for _, c := range rec.Result().Cookies() {
		// Relabel the cookie minted for id "abc" so it's presented for "xyz" —
		// the name is part of the signed envelope, so this must fail closed.
		c.Name = store.cookieName("xyz")
		req2.AddCookie(c)
	}

	_, err := store.Read(req2, "xyz")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestCookieMessageStore_Clear(t *testing.T) {
	store := NewCookieMessageStore[samplePayload]("idsrv.test", []byte("0123456789abcdef0123456789abcdef"), nil, "/", 10*time.Minute, false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login?signin=abc", nil)
	store.Clear(rec, req, "abc")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSessionCookie_IssueReadClear(t *testing.T) {
	sc := NewSessionCookie("idsrv.session", "/", false)
	rec := httptest.NewRecorder()
	sc.Issue(rec, "session-123")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	v, ok := sc.Read(req)
	require.True(t, ok)
	assert.Equal(t, "session-123", v)

	rec2 := httptest.NewRecorder()
	sc.Clear(rec2)
	cleared := rec2.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}
