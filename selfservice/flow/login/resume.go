// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package login

import (
	"github.com/pkg/errors"

	"github.com/ory/idsrv-login/selfservice/flow"
)

// ErrNoResumeClaim is returned when a partial-sign-in principal does not
// carry the PartialLoginResumeId:{resume} claim expected at resume time;
// this is treated as unrecoverable (no fallback rendering).
var ErrNoResumeClaim = errors.New("partial sign-in principal is missing its resume claim")

// OriginalSignInID reads the claim type PartialLoginResumeId:{resumeID}
// from principal and returns its value, which is the flow's original
// signInId.
func OriginalSignInID(principal *flow.ClaimsPrincipal, resumeID string) (string, error) {
	claim, ok := principal.FindFirst(flow.PartialLoginResumeIDClaimType(resumeID))
	if !ok {
		return "", errors.WithStack(ErrNoResumeClaim)
	}
	return claim.Value, nil
}

// IsPromotable reports whether principal already carries every claim in
// AuthenticateResultClaimTypes and can be promoted to a full sign-in
// without another call into AuthenticateExternal (spec P4).
func IsPromotable(principal *flow.ClaimsPrincipal) bool {
	return principal.HasAllResultClaims()
}

// PromoteToFull strips the three bookkeeping claims (PartialLoginReturnUrl,
// ExternalProviderUserId, PartialLoginResumeId:{resumeID}) from principal so
// none of them survive into the final, fully promoted principal.
func PromoteToFull(principal *flow.ClaimsPrincipal, resumeID string) {
	principal.RemoveClaimsOfType(
		flow.ClaimPartialLoginReturnUrl,
		flow.ClaimExternalProviderUserId,
		flow.PartialLoginResumeIDClaimType(resumeID),
	)
}

// RebuildExternalIdentity reconstructs the ExternalIdentity that originally
// produced principal, for re-invoking AuthenticateExternal at resume time
// for the non-promotable resume branch. The ExternalProviderUserId
// claim's issuer names the provider and its value names the provider id.
func RebuildExternalIdentity(principal *flow.ClaimsPrincipal) (*flow.ExternalIdentity, error) {
	claim, ok := principal.FindFirst(flow.ClaimExternalProviderUserId)
	if !ok {
		return nil, errors.New("partial sign-in principal is missing its ExternalProviderUserId claim")
	}
	claims := make([]flow.Claim, 0, len(principal.Claims))
	for _, c := range principal.Claims {
		claims = append(claims, flow.Claim{Type: c.Type, Value: c.Value, Issuer: c.Issuer})
	}
	return &flow.ExternalIdentity{
		Provider:   claim.Issuer,
		ProviderID: claim.Value,
		Claims:     claims,
	}, nil
}
