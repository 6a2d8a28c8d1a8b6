// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimsPrincipal_FindFirstAndHasClaim(t *testing.T) {
	p := NewClaimsPrincipal(
		Claim{Type: "sub", Value: "alice", Issuer: "primary"},
		Claim{Type: "idp", Value: "goog", Issuer: "goog"},
	)

	c, ok := p.FindFirst("sub")
	require.True(t, ok)
	assert.Equal(t, "alice", c.Value)

	assert.True(t, p.HasClaim("idp"))
	assert.False(t, p.HasClaim("amr"))
}

func TestClaimsPrincipal_RemoveClaimsOfType(t *testing.T) {
	p := NewClaimsPrincipal(
		Claim{Type: "sub", Value: "alice"},
		Claim{Type: ClaimPartialLoginReturnUrl, Value: "https://idsvr/resume"},
		Claim{Type: PartialLoginResumeIDClaimType("R1"), Value: "abc"},
	)

	p.RemoveClaimsOfType(ClaimPartialLoginReturnUrl, PartialLoginResumeIDClaimType("R1"))

	assert.True(t, p.HasClaim("sub"))
	assert.False(t, p.HasClaim(ClaimPartialLoginReturnUrl))
	assert.False(t, p.HasClaim(PartialLoginResumeIDClaimType("R1")))
}

func TestClaimsPrincipal_HasAllResultClaims(t *testing.T) {
	p := NewClaimsPrincipal(Claim{Type: "sub", Value: "alice"})
	assert.False(t, p.HasAllResultClaims())

	for _, ct := range AuthenticateResultClaimTypes {
		p.AddClaim(Claim{Type: ct, Value: "x"})
	}
	assert.True(t, p.HasAllResultClaims())
}

func TestClaimsPrincipal_Clone(t *testing.T) {
	p := NewClaimsPrincipal(Claim{Type: "sub", Value: "alice"})
	clone := p.Clone()
	clone.AddClaim(Claim{Type: "idp", Value: "goog"})

	assert.Len(t, p.Claims, 1)
	assert.Len(t, clone.Claims, 2)
}

func TestPartialLoginResumeIDClaimType_Format(t *testing.T) {
	assert.Equal(t, "PartialLoginResumeId:abc123", PartialLoginResumeIDClaimType("abc123"))
}
