// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

// Package hostbridge captures the host-level federated authentication
// framework as a narrow capability (DESIGN NOTES): challenge an external
// provider, read back what a callback produced, and hold identities under
// one of three named authentication schemes. The flow controller depends
// only on the Bridge interface, which is what makes the controller testable
// without a real OIDC host.
package hostbridge

import (
	"net/http"
	"time"

	"github.com/ory/idsrv-login/selfservice/flow"
)

// AuthScheme names one of the three cookie-backed authentication schemes
// the host bridge may hold an identity under.
type AuthScheme string

const (
	SchemePrimary  AuthScheme = "primary"
	SchemeExternal AuthScheme = "external"
	SchemePartial  AuthScheme = "partial"
)

// AllSchemes lists every scheme SignInAndRedirect must clear before issuing
// the next identity.
var AllSchemes = []AuthScheme{SchemePrimary, SchemeExternal, SchemePartial}

// SignInProperties controls the cookie issued for SchemePrimary: whether it
// persists across browser restarts and, if so, its explicit expiry.
type SignInProperties struct {
	IsPersistent bool
	ExpiresUTC   *time.Time
}

// Bridge is the host auth bridge capability the flow controller consumes.
// It deliberately does not expose provider configuration, token exchange
// mechanics, or anything OIDC-specific: those live in the concrete
// implementation (oidc.go) and in tests (memory.go).
type Bridge interface {
	// Challenge answers the request itself with a 401 that drives the
	// redirect to the named external provider, stashing signInID so the
	// callback can recover the originating flow.
	Challenge(w http.ResponseWriter, r *http.Request, provider, signInID string) error

	// ConfiguredProviders lists every external provider scheme known to the
	// host, independent of what any particular client allows.
	ConfiguredProviders() []string

	// GetExternalSignInID recovers the signInID stashed by Challenge,
	// reading it back from whatever the external round-trip preserved.
	GetExternalSignInID(r *http.Request) (string, bool)

	// GetExternalIdentity completes the external provider's callback
	// (token exchange + verification) and returns the resulting principal.
	GetExternalIdentity(r *http.Request) (*flow.ClaimsPrincipal, error)

	// GetPartialSignInIdentity returns the principal parked under
	// SchemePartial, if any.
	GetPartialSignInIdentity(r *http.Request) (*flow.ClaimsPrincipal, bool)

	// GetPrincipal returns the principal held under the given scheme, if
	// any. Used by the logout flow to check whether the caller is
	// currently authenticated under SchemePrimary.
	GetPrincipal(r *http.Request, scheme AuthScheme) (*flow.ClaimsPrincipal, bool)

	// SignIn clears all three schemes and issues principal under scheme.
	SignIn(w http.ResponseWriter, r *http.Request, scheme AuthScheme, principal *flow.ClaimsPrincipal, props SignInProperties) error

	// SignOut clears the given schemes (or all three if none given).
	SignOut(w http.ResponseWriter, r *http.Request, schemes ...AuthScheme)
}
