// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

// Package flow holds the types shared by the login and logout sub-packages:
// the authentication state machine's result shapes, the claims-principal
// representation, the external-identity bridge payload, and the well-known
// claim types exchanged with the host auth bridge.
package flow

import (
	"fmt"

	"github.com/pkg/errors"
)

// State names a node of the authentication state machine described in the
// flow controller design. Every node of the graph is named here, including
// the transient S2/S3/S4 states, which are never persisted.
type State string

const (
	StateStart             State = "start"
	StatePreAuth           State = "pre_auth"
	StateLocalPrompt       State = "local_prompt"
	StateExternalChallenge State = "external_challenge"
	StateExternalCallback  State = "external_callback"
	StatePartial           State = "partial"
	StateFullSignIn        State = "full_sign_in"
	StateLogoutPrompt      State = "logout_prompt"
	StateLoggedOut         State = "logged_out"
)

// BuiltInIdentityProvider is the idp claim value naming this server's own
// local credential validation, as opposed to any federated external scheme.
const BuiltInIdentityProvider = "idsrv"

// Claim types exchanged with the host auth bridge. These two, together with
// the formatted PartialLoginResumeIDClaimType below, are the three
// "bookkeeping" claims: they must never survive into a final, fully
// promoted principal.
const (
	ClaimPartialLoginReturnUrl  = "PartialLoginReturnUrl"
	ClaimExternalProviderUserId = "ExternalProviderUserId"
)

// PartialLoginResumeIDClaimType formats the runtime claim type naming a
// partial-login continuation. The same resumeID both names this claim type
// and parametrizes the resume URL; preserve the exact formatting everywhere
// it is used.
func PartialLoginResumeIDClaimType(resumeID string) string {
	return fmt.Sprintf("PartialLoginResumeId:%s", resumeID)
}

// AuthenticateResultClaimTypes is the set of claim types a Full result's
// principal is required to carry (subject, name, authentication method,
// authentication time, identity provider). A Partial result's principal is
// not held to this bar.
var AuthenticateResultClaimTypes = []string{
	"sub",
	"name",
	"amr",
	"auth_time",
	"idp",
}

// Kind discriminates the three non-absent AuthenticateResult variants.
type Kind int

const (
	// KindFull: authentication is complete.
	KindFull Kind = iota + 1
	// KindPartial: authentication is suspended pending an additional step.
	KindPartial
	// KindError: the user service itself failed; message is safe to display.
	KindError
)

// AuthenticateResult is the tagged variant returned by the user service:
// exactly one of Full, Partial, Error, or the absent (null) value modelled
// by a nil *AuthenticateResult. Do not smuggle these through a single
// mutable object with boolean flags — construct via the New* helpers.
type AuthenticateResult struct {
	kind Kind

	principal *ClaimsPrincipal

	// PartialSignInRedirectPath is set only for KindPartial.
	PartialSignInRedirectPath string

	// Message is set only for KindError and is treated as an
	// already-localized string safe to display verbatim.
	Message string
}

func NewFullResult(p *ClaimsPrincipal) *AuthenticateResult {
	return &AuthenticateResult{kind: KindFull, principal: p}
}

func NewPartialResult(p *ClaimsPrincipal, redirectPath string) *AuthenticateResult {
	return &AuthenticateResult{kind: KindPartial, principal: p, PartialSignInRedirectPath: redirectPath}
}

func NewErrorResult(message string) *AuthenticateResult {
	return &AuthenticateResult{kind: KindError, Message: message}
}

func (r *AuthenticateResult) IsFull() bool    { return r != nil && r.kind == KindFull }
func (r *AuthenticateResult) IsPartial() bool { return r != nil && r.kind == KindPartial }
func (r *AuthenticateResult) IsError() bool   { return r != nil && r.kind == KindError }

// Principal returns the carried principal. Callers must check IsFull/IsPartial
// first; calling this on an Error or absent result returns nil.
func (r *AuthenticateResult) Principal() *ClaimsPrincipal {
	if r == nil {
		return nil
	}
	return r.principal
}

// ExternalIdentity is derived from the identity a host bridge produces after
// an external IdP callback.
type ExternalIdentity struct {
	Provider   string
	ProviderID string
	Claims     []Claim
}

// ErrNoSignInCookie is returned when a signInId does not resolve to a stored
// SignInMessage — either it never existed or its envelope failed to
// validate (wrong id, corrupt signature, or expired).
var ErrNoSignInCookie = errors.New("no matching sign-in message for this id")
