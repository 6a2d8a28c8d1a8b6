// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthenticateResult_Variants(t *testing.T) {
	var absent *AuthenticateResult
	assert.False(t, absent.IsFull())
	assert.False(t, absent.IsPartial())
	assert.False(t, absent.IsError())
	assert.Nil(t, absent.Principal())

	full := NewFullResult(NewClaimsPrincipal(Claim{Type: "sub", Value: "alice"}))
	assert.True(t, full.IsFull())
	assert.False(t, full.IsPartial())
	assert.Equal(t, "alice", mustClaim(t, full.Principal(), "sub").Value)

	partial := NewPartialResult(NewClaimsPrincipal(), "~/register")
	assert.True(t, partial.IsPartial())
	assert.Equal(t, "~/register", partial.PartialSignInRedirectPath)

	errResult := NewErrorResult("backend unavailable")
	assert.True(t, errResult.IsError())
	assert.Equal(t, "backend unavailable", errResult.Message)
	assert.Nil(t, errResult.Principal())
}

func mustClaim(t *testing.T, p *ClaimsPrincipal, claimType string) Claim {
	t.Helper()
	c, ok := p.FindFirst(claimType)
	if !ok {
		t.Fatalf("expected claim %q", claimType)
	}
	return c
}
