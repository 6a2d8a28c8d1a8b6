// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package hostbridge

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	oidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/securecookie"
	"github.com/ory/x/stringsx"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/ory/idsrv-login/selfservice/flow"
)

// ProviderConfig describes one configured external identity provider.
type ProviderConfig struct {
	Name         string
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

type configuredProvider struct {
	cfg      ProviderConfig
	oauth2   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// stateClaim is what survives the external round-trip inside the signed
// state cookie: the originating signInID and the provider chosen.
type stateClaim struct {
	Nonce    string
	SignInID string
	Provider string
}

// OIDCBridge is the production Bridge implementation: external challenge and
// callback are backed by golang.org/x/oauth2 + coreos/go-oidc; the three
// authentication schemes are held in individually signed, HttpOnly cookies.
type OIDCBridge struct {
	providers map[string]*configuredProvider

	state   *securecookie.SecureCookie
	schemes map[AuthScheme]*securecookie.SecureCookie

	cookiePath string
	secure     bool
	httpClient *http.Client
}

// NewOIDCBridge constructs a bridge with the given providers configured and
// resolved against their issuers. hashKey/blockKey sign/encrypt every
// scheme and state cookie; they must be generated once per deployment and
// kept stable across instances sharing cookies.
func NewOIDCBridge(ctx context.Context, providers []ProviderConfig, hashKey, blockKey []byte, cookiePath string, secure bool) (*OIDCBridge, error) {
	b := &OIDCBridge{
		providers:  map[string]*configuredProvider{},
		state:      securecookie.New(hashKey, blockKey),
		schemes:    map[AuthScheme]*securecookie.SecureCookie{},
		cookiePath: cookiePath,
		secure:     secure,
		httpClient: http.DefaultClient,
	}
	for _, s := range AllSchemes {
		b.schemes[s] = securecookie.New(hashKey, blockKey)
	}
	for _, p := range providers {
		pctx := oidc.ClientContext(ctx, b.httpClient)
		op, err := oidc.NewProvider(pctx, p.IssuerURL)
		if err != nil {
			return nil, errors.Wrapf(err, "constructing oidc provider %q", p.Name)
		}
		scopes := p.Scopes
		if len(scopes) == 0 {
			scopes = []string{oidc.ScopeOpenID, "profile", "email"}
		}
		b.providers[p.Name] = &configuredProvider{
			cfg: p,
			oauth2: &oauth2.Config{
				ClientID:     p.ClientID,
				ClientSecret: p.ClientSecret,
				Endpoint:     op.Endpoint(),
				RedirectURL:  p.RedirectURL,
				Scopes:       scopes,
			},
			verifier: op.Verifier(&oidc.Config{ClientID: p.ClientID}),
		}
	}
	return b, nil
}

func (b *OIDCBridge) ConfiguredProviders() []string {
	names := make([]string, 0, len(b.providers))
	for name := range b.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const stateCookieName = "idsrv.external.state"

func (b *OIDCBridge) Challenge(w http.ResponseWriter, r *http.Request, provider, signInID string) error {
	p, ok := b.providers[provider]
	if !ok {
		return errors.Errorf("provider %q is not configured on this host", provider)
	}

	nonce, err := randomToken(16)
	if err != nil {
		return err
	}
	state := stateClaim{Nonce: nonce, SignInID: signInID, Provider: provider}
	encoded, err := b.state.Encode(stateCookieName, state)
	if err != nil {
		return errors.Wrap(err, "encoding external challenge state")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    encoded,
		Path:     b.cookiePath,
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((10 * time.Minute).Seconds()),
	})

	// A challenge answers 401, with the provider redirect in the Location
	// header for the host framework to forward the browser to.
	w.Header().Set("Location", p.oauth2.AuthCodeURL(nonce))
	w.WriteHeader(http.StatusUnauthorized)
	return nil
}

func (b *OIDCBridge) readState(r *http.Request) (stateClaim, error) {
	var state stateClaim
	c, err := r.Cookie(stateCookieName)
	if err != nil {
		return state, errors.WithStack(errExternalStateMissing)
	}
	if err := b.state.Decode(stateCookieName, c.Value, &state); err != nil {
		return state, errors.WithStack(errExternalStateMissing)
	}
	if state.Nonce != r.URL.Query().Get("state") {
		return state, errors.WithStack(errExternalStateMismatch)
	}
	return state, nil
}

var (
	errExternalStateMissing  = errors.New("no external challenge state cookie")
	errExternalStateMismatch = errors.New("external challenge state does not match")
)

func (b *OIDCBridge) GetExternalSignInID(r *http.Request) (string, bool) {
	state, err := b.readState(r)
	if err != nil {
		return "", false
	}
	return state.SignInID, true
}

func (b *OIDCBridge) GetExternalIdentity(r *http.Request) (*flow.ClaimsPrincipal, error) {
	state, err := b.readState(r)
	if err != nil {
		return nil, err
	}
	p, ok := b.providers[state.Provider]
	if !ok {
		return nil, errors.Errorf("provider %q is not configured on this host", state.Provider)
	}

	ctx := oidc.ClientContext(r.Context(), b.httpClient)
	code := r.URL.Query().Get("code")
	tok, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "exchanging external authorization code")
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("external token response did not include an id_token")
	}
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.Wrap(err, "verifying external id_token")
	}

	var claimsJSON map[string]interface{}
	if err := idToken.Claims(&claimsJSON); err != nil {
		return nil, errors.Wrap(err, "decoding external id_token claims")
	}
	raw, err := json.Marshal(claimsJSON)
	if err != nil {
		return nil, errors.Wrap(err, "re-marshaling external id_token claims")
	}

	principal := flow.NewClaimsPrincipal()
	subject := gjson.GetBytes(raw, "sub").String()
	name := stringsx.Coalesce(gjson.GetBytes(raw, "name").String(), gjson.GetBytes(raw, "email").String())
	principal.AddClaim(flow.Claim{Type: "sub", Value: subject, Issuer: state.Provider})
	if name != "" {
		principal.AddClaim(flow.Claim{Type: "name", Value: name, Issuer: state.Provider})
	}
	principal.AddClaim(flow.Claim{Type: "idp", Value: state.Provider, Issuer: state.Provider})
	return principal, nil
}

func (b *OIDCBridge) GetPartialSignInIdentity(r *http.Request) (*flow.ClaimsPrincipal, bool) {
	return b.readScheme(r, SchemePartial)
}

func (b *OIDCBridge) GetPrincipal(r *http.Request, scheme AuthScheme) (*flow.ClaimsPrincipal, bool) {
	return b.readScheme(r, scheme)
}

func (b *OIDCBridge) SignIn(w http.ResponseWriter, r *http.Request, scheme AuthScheme, principal *flow.ClaimsPrincipal, props SignInProperties) error {
	b.SignOut(w, r, AllSchemes...)

	sc, ok := b.schemes[scheme]
	if !ok {
		return errors.Errorf("unknown authentication scheme %q", scheme)
	}
	encoded, err := sc.Encode(string(scheme), principal)
	if err != nil {
		return errors.Wrap(err, "encoding scheme cookie")
	}
	cookie := &http.Cookie{
		Name:     string(scheme),
		Value:    encoded,
		Path:     b.cookiePath,
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if props.IsPersistent {
		if props.ExpiresUTC != nil {
			cookie.Expires = *props.ExpiresUTC
		} else {
			cookie.MaxAge = int((30 * 24 * time.Hour).Seconds())
		}
	}
	http.SetCookie(w, cookie)
	return nil
}

func (b *OIDCBridge) SignOut(w http.ResponseWriter, r *http.Request, schemes ...AuthScheme) {
	if len(schemes) == 0 {
		schemes = AllSchemes
	}
	for _, s := range schemes {
		http.SetCookie(w, &http.Cookie{
			Name:     string(s),
			Value:    "",
			Path:     b.cookiePath,
			HttpOnly: true,
			Secure:   b.secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

func (b *OIDCBridge) readScheme(r *http.Request, scheme AuthScheme) (*flow.ClaimsPrincipal, bool) {
	sc, ok := b.schemes[scheme]
	if !ok {
		return nil, false
	}
	c, err := r.Cookie(string(scheme))
	if err != nil {
		return nil, false
	}
	var principal flow.ClaimsPrincipal
	if err := sc.Decode(string(scheme), c.Value, &principal); err != nil {
		return nil, false
	}
	return &principal, true
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generating random token")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

