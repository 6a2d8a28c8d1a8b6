// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package x

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
	"github.com/ory/pop/v6"
	"github.com/ory/x/sqlxx"
	"github.com/pkg/errors"
)

// messageRecord is the pop-mapped row behind SQLMessageStore. It mirrors the
// teacher's login Flow model's persistence idiom (TableName/WhereID, an
// AfterFind hook, a JSON payload column) but carries an opaque
// JSON blob instead of a login-flow-shaped row, since this backend serves
// both SignInMessage and SignOutMessage (and anything else callers address
// by id).
type messageRecord struct {
	ID        uuid.UUID            `db:"id"`
	NID       uuid.UUID            `db:"nid"`
	Payload   sqlxx.JSONRawMessage `db:"payload"`
	CreatedAt time.Time            `db:"created_at"`
	UpdatedAt time.Time            `db:"updated_at"`
}

func (messageRecord) TableName(ctx context.Context) string {
	return "identity_flow_messages"
}

func (messageRecord) WhereID(ctx context.Context, alias string) string {
	return fmt.Sprintf("%s.%s = ? AND %s.%s = ?", alias, "id", alias, "nid")
}

func (m *messageRecord) AfterFind(*pop.Connection) error {
	if len(m.Payload) == 0 {
		m.Payload = []byte("{}")
	}
	return nil
}

// SQLMessageStore is the horizontally-scalable alternative to
// CookieMessageStore: the envelope lives in a database row addressed by a
// uuid id instead of in a signed browser cookie, so a flow survives a
// request landing on a different instance behind a load balancer without
// sticky sessions. Ids passed to it must be valid UUID strings; the cookie
// backend has no such constraint.
type SQLMessageStore[T any] struct {
	conn *pop.Connection
	nid  uuid.UUID
}

// NewSQLMessageStore constructs a backend bound to a single network id
// (tenant), matching the multi-tenant NID column convention common to
// this style of flow persistence.
func NewSQLMessageStore[T any](conn *pop.Connection, nid uuid.UUID) *SQLMessageStore[T] {
	return &SQLMessageStore[T]{conn: conn, nid: nid}
}

func (s *SQLMessageStore[T]) Put(_ http.ResponseWriter, r *http.Request, id string, payload T) error {
	rid, err := uuid.FromString(id)
	if err != nil {
		return errors.Wrap(err, "sql message store requires a uuid id")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "unable to marshal message payload")
	}
	rec := &messageRecord{ID: rid, NID: s.nid, Payload: raw}
	return s.conn.WithContext(r.Context()).Create(rec)
}

func (s *SQLMessageStore[T]) Read(r *http.Request, id string) (T, error) {
	var zero T
	rid, err := uuid.FromString(id)
	if err != nil {
		return zero, errors.Wrap(err, "sql message store requires a uuid id")
	}

	var rec messageRecord
	if err := s.conn.WithContext(r.Context()).
		Where("id = ? AND nid = ?", rid, s.nid).
		First(&rec); err != nil {
		return zero, errors.WithStack(ErrMessageNotFound)
	}

	var payload T
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return zero, errors.Wrap(err, "unable to unmarshal message payload")
	}
	return payload, nil
}

func (s *SQLMessageStore[T]) Clear(_ http.ResponseWriter, r *http.Request, id string) {
	rid, err := uuid.FromString(id)
	if err != nil {
		return
	}
	_ = s.conn.WithContext(r.Context()).Destroy(&messageRecord{ID: rid, NID: s.nid})
}
