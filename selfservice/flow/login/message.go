// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

// Package login implements the login side of the flow controller: the
// SignInMessage envelope, the five login-facing HTTP handlers, the
// partial-login resume machinery, and the login-page view-model assembly
// .
package login

import (
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/ory/idsrv-login/selfservice/flow"
	"github.com/ory/idsrv-login/x"
)

// MessageManager owns the SignInMessage envelope: minting a signInId for a
// new flow and reading/clearing the message bound to one.
type MessageManager struct {
	store x.MessageStore[flow.SignInMessage]
}

func NewMessageManager(store x.MessageStore[flow.SignInMessage]) *MessageManager {
	return &MessageManager{store: store}
}

// Start persists message under a freshly minted signInId and returns it.
// This is what the upstream authorize endpoint calls before redirecting the
// browser here; it lives in this package because the id it
// mints is this package's to own.
func (m *MessageManager) Start(w http.ResponseWriter, r *http.Request, message flow.SignInMessage) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(err, "generating sign-in id")
	}
	signInID := id.String()
	if err := m.store.Put(w, r, signInID, message); err != nil {
		return "", errors.Wrap(err, "persisting sign-in message")
	}
	return signInID, nil
}

// Load reads the SignInMessage bound to signInID, translating a missing or
// mismatched envelope into flow.ErrNoSignInCookie, the
// "Unknown signInId cookie" error category).
func (m *MessageManager) Load(r *http.Request, signInID string) (*flow.SignInMessage, error) {
	msg, err := m.store.Read(r, signInID)
	if err != nil {
		return nil, errors.WithStack(flow.ErrNoSignInCookie)
	}
	return &msg, nil
}

// Clear removes the SignInMessage bound to signInID. Called once a full
// sign-in has been issued; never called for a partial sign-in, which
// still needs the message at resume time.
func (m *MessageManager) Clear(w http.ResponseWriter, r *http.Request, signInID string) {
	m.store.Clear(w, r, signInID)
}
