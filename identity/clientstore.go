// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package identity

import "context"

// Client is the subset of client (relying party) metadata the flow
// controller needs: its display name and whether it opted out of local
// login. Which external providers it whitelists is answered by
// ClientStore.IsValidIdentityProvider, not carried here.
type Client struct {
	ID               string
	Name             string
	EnableLocalLogin bool
}

// ClientStore is the client metadata lookup the flow controller treats as
// an external collaborator.
type ClientStore interface {
	// GetClient returns the client bound to clientID, or nil if clientID is
	// empty (no client bound to this flow — spec's IsLocalLoginAllowed
	// treats an absent client as "no client-level restriction").
	GetClient(ctx context.Context, clientID string) (*Client, error)

	// IsValidIdentityProvider reports whether provider is in clientID's
	// whitelist.
	IsValidIdentityProvider(ctx context.Context, clientID, provider string) (bool, error)
}
