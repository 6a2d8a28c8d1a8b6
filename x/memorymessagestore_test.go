// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package x

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryMessageStore_PutReadClear(t *testing.T) {
	store := NewMemoryMessageStore[samplePayload]()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/login?signin=abc", nil)

	require.NoError(t, store.Put(rec, req, "abc", samplePayload{ClientID: "c1", ReturnURL: "https://rp/cb"}))

	got, err := store.Read(req, "abc")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ClientID)

	store.Clear(rec, req, "abc")
	_, err = store.Read(req, "abc")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestMemoryMessageStore_ReadMissing(t *testing.T) {
	store := NewMemoryMessageStore[samplePayload]()
	req := httptest.NewRequest("GET", "/login?signin=abc", nil)

	_, err := store.Read(req, "abc")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}
