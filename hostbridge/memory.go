// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package hostbridge

import (
	"net/http"
	"sort"

	"github.com/pkg/errors"

	"github.com/ory/idsrv-login/selfservice/flow"
)

// MemoryBridge is an in-process Bridge implementation for controller unit
// tests: it needs no real OIDC host, storing scheme identities in a plain
// map keyed by scheme and the single pending external challenge in plain
// fields. The request is never consulted, so one MemoryBridge models one
// browser, exactly the capability DESIGN NOTES calls out as enabling
// "in-process tests without a real OIDC host".
type MemoryBridge struct {
	Providers []string

	// ExternalIdentityToReturn is what GetExternalIdentity hands back on the
	// next call; tests set it up front to script a callback result.
	ExternalIdentityToReturn *flow.ClaimsPrincipal
	ExternalIdentityErr      error

	pendingSignInID string
	pendingProvider string
	hasPending      bool

	schemes map[AuthScheme]*flow.ClaimsPrincipal
}

func NewMemoryBridge(providers ...string) *MemoryBridge {
	return &MemoryBridge{Providers: providers, schemes: map[AuthScheme]*flow.ClaimsPrincipal{}}
}

func (m *MemoryBridge) ConfiguredProviders() []string {
	out := append([]string(nil), m.Providers...)
	sort.Strings(out)
	return out
}

func (m *MemoryBridge) Challenge(w http.ResponseWriter, r *http.Request, provider, signInID string) error {
	found := false
	for _, p := range m.Providers {
		if p == provider {
			found = true
			break
		}
	}
	if !found {
		return errors.Errorf("provider %q is not configured on this host", provider)
	}
	m.pendingSignInID = signInID
	m.pendingProvider = provider
	m.hasPending = true
	w.WriteHeader(http.StatusUnauthorized)
	return nil
}

func (m *MemoryBridge) GetExternalSignInID(r *http.Request) (string, bool) {
	if !m.hasPending {
		return "", false
	}
	return m.pendingSignInID, true
}

func (m *MemoryBridge) GetExternalIdentity(r *http.Request) (*flow.ClaimsPrincipal, error) {
	if m.ExternalIdentityErr != nil {
		return nil, m.ExternalIdentityErr
	}
	return m.ExternalIdentityToReturn, nil
}

func (m *MemoryBridge) GetPartialSignInIdentity(r *http.Request) (*flow.ClaimsPrincipal, bool) {
	p, ok := m.schemes[SchemePartial]
	return p, ok
}

func (m *MemoryBridge) GetPrincipal(r *http.Request, scheme AuthScheme) (*flow.ClaimsPrincipal, bool) {
	p, ok := m.schemes[scheme]
	return p, ok
}

func (m *MemoryBridge) SignIn(w http.ResponseWriter, r *http.Request, scheme AuthScheme, principal *flow.ClaimsPrincipal, props SignInProperties) error {
	m.SignOut(w, r, AllSchemes...)
	m.schemes[scheme] = principal
	return nil
}

func (m *MemoryBridge) SignOut(w http.ResponseWriter, r *http.Request, schemes ...AuthScheme) {
	if len(schemes) == 0 {
		schemes = AllSchemes
	}
	for _, s := range schemes {
		delete(m.schemes, s)
	}
}

var _ Bridge = (*MemoryBridge)(nil)
var _ Bridge = (*OIDCBridge)(nil)
