// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

// Package logout implements the sign-out side of the flow controller: the
// SignOutMessage envelope, the prompt-or-forward GET handler, and the
// cleanup-and-render POST handler.
package logout

import (
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/ory/idsrv-login/selfservice/flow"
	"github.com/ory/idsrv-login/x"
)

// MessageManager owns the SignOutMessage envelope, mirroring login's
// MessageManager but keyed by signOutId.
type MessageManager struct {
	store x.MessageStore[flow.SignOutMessage]
}

func NewMessageManager(store x.MessageStore[flow.SignOutMessage]) *MessageManager {
	return &MessageManager{store: store}
}

func (m *MessageManager) Start(w http.ResponseWriter, r *http.Request, message flow.SignOutMessage) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(err, "generating sign-out id")
	}
	signOutID := id.String()
	if err := m.store.Put(w, r, signOutID, message); err != nil {
		return "", errors.Wrap(err, "persisting sign-out message")
	}
	return signOutID, nil
}

// Load reads the SignOutMessage bound to signOutID. Unlike login's Load,
// a missing message is not itself an error here (a missing message means "no
// SignOutMessage bound to id" as a normal, clientless logout) — callers
// check the returned bool rather than an error.
func (m *MessageManager) Load(r *http.Request, signOutID string) (*flow.SignOutMessage, bool) {
	if signOutID == "" {
		return nil, false
	}
	msg, err := m.store.Read(r, signOutID)
	if err != nil {
		return nil, false
	}
	return &msg, true
}

func (m *MessageManager) Clear(w http.ResponseWriter, r *http.Request, signOutID string) {
	if signOutID == "" {
		return
	}
	m.store.Clear(w, r, signOutID)
}
