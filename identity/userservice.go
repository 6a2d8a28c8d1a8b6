// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"

	"github.com/ory/idsrv-login/selfservice/flow"
)

// UserService is the pluggable credential-verification policy the flow
// controller calls into. It never returns an error for rejected credentials
// — that case is the nil *flow.AuthenticateResult case;
// Go errors are reserved for the service itself failing (network, backing
// store, panics recovered upstream), which the controller answers with a
// generic error page, reporting the error only to the event sink. A
// message meant for the user is returned as a flow.NewErrorResult
// (KindError) instead, and is shown verbatim.
type UserService interface {
	// PreAuthenticate runs before any page is rendered (S0); returning a
	// non-nil result short-circuits straight to S6/S5/error without ever
	// prompting the user. Most deployments return nil, nil here.
	PreAuthenticate(ctx context.Context, message *flow.SignInMessage) (*flow.AuthenticateResult, error)

	// AuthenticateLocal validates a username/password pair.
	AuthenticateLocal(ctx context.Context, username, password string, message *flow.SignInMessage) (*flow.AuthenticateResult, error)

	// AuthenticateExternal maps an external identity to a local subject.
	AuthenticateExternal(ctx context.Context, external *flow.ExternalIdentity, message *flow.SignInMessage) (*flow.AuthenticateResult, error)

	// SignOut is invoked once per logout, only when the caller was
	// authenticated.
	SignOut(ctx context.Context, principal *flow.ClaimsPrincipal) error
}
