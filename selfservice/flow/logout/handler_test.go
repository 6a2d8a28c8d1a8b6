// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package logout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ory/idsrv-login/eventservice"
	"github.com/ory/idsrv-login/hostbridge"
	"github.com/ory/idsrv-login/identity"
	"github.com/ory/idsrv-login/selfservice/flow"
	"github.com/ory/idsrv-login/ui"
	"github.com/ory/idsrv-login/x"
)

type fakeConfig struct {
	enableSignOutPrompt bool
}

func (c *fakeConfig) EnableLocalLogin(context.Context) bool            { return true }
func (c *fakeConfig) EnableLoginHint(context.Context) bool             { return true }
func (c *fakeConfig) EnableSignOutPrompt(context.Context) bool         { return c.enableSignOutPrompt }
func (c *fakeConfig) RememberMeDuration(context.Context) time.Duration { return time.Hour }
func (c *fakeConfig) DefaultPersistent(context.Context) bool           { return false }
func (c *fakeConfig) SelfPublicURL(context.Context) *url.URL {
	u, _ := url.Parse("https://idsvr.test")
	return u
}
func (c *fakeConfig) SiteName(context.Context) string       { return "Test RP" }
func (c *fakeConfig) CookieHashKey(context.Context) []byte  { return nil }
func (c *fakeConfig) CookieBlockKey(context.Context) []byte { return nil }
func (c *fakeConfig) CookieSecure(context.Context) bool     { return false }

type fakeClientStore struct {
	clients map[string]*identity.Client
}

func (s *fakeClientStore) GetClient(ctx context.Context, clientID string) (*identity.Client, error) {
	if clientID == "" {
		return nil, nil
	}
	return s.clients[clientID], nil
}

func (s *fakeClientStore) IsValidIdentityProvider(ctx context.Context, clientID, provider string) (bool, error) {
	return true, nil
}

type fakeUserService struct {
	signOutCalls int
}

func (s *fakeUserService) PreAuthenticate(ctx context.Context, message *flow.SignInMessage) (*flow.AuthenticateResult, error) {
	return nil, nil
}

func (s *fakeUserService) AuthenticateLocal(ctx context.Context, username, password string, message *flow.SignInMessage) (*flow.AuthenticateResult, error) {
	return nil, nil
}

func (s *fakeUserService) AuthenticateExternal(ctx context.Context, external *flow.ExternalIdentity, message *flow.SignInMessage) (*flow.AuthenticateResult, error) {
	return nil, nil
}

func (s *fakeUserService) SignOut(ctx context.Context, principal *flow.ClaimsPrincipal) error {
	s.signOutCalls++
	return nil
}

type recordingEvents struct {
	emitted []eventservice.Name
}

func (r *recordingEvents) Emit(name eventservice.Name, fields eventservice.Fields) {
	r.emitted = append(r.emitted, name)
}

func newTestHandler(cfg *fakeConfig, clients *fakeClientStore, users *fakeUserService, bridge hostbridge.Bridge) (*Handler, *MessageManager) {
	store := x.NewMemoryMessageStore[flow.SignOutMessage]()
	messages := NewMessageManager(store)
	views := ui.NewDefaultService()
	sessions := x.NewSessionCookie("idsrv.session", "/", false)

	h := NewHandler(cfg, messages, bridge, clients, users, &recordingEvents{}, views, sessions, nil)
	return h, messages
}

func TestLogout_UnauthenticatedForwardsStraightToLoggedOut(t *testing.T) {
	cfg := &fakeConfig{enableSignOutPrompt: true}
	clients := &fakeClientStore{clients: map[string]*identity.Client{}}
	users := &fakeUserService{}
	bridge := hostbridge.NewMemoryBridge()

	h, _ := newTestHandler(cfg, clients, users, bridge)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signed out")
	assert.Equal(t, 0, users.signOutCalls, "an unauthenticated caller has nothing to sign out of")
}

func TestLogout_AuthenticatedWithClientSkipsPrompt(t *testing.T) {
	cfg := &fakeConfig{enableSignOutPrompt: true}
	clients := &fakeClientStore{clients: map[string]*identity.Client{"c1": {ID: "c1", Name: "Acme"}}}
	users := &fakeUserService{}
	bridge := hostbridge.NewMemoryBridge()

	h, messages := newTestHandler(cfg, clients, users, bridge)

	rec0 := httptest.NewRecorder()
	req0 := httptest.NewRequest(http.MethodGet, "/logout?id=out1", nil)
	require.NoError(t, messages.store.Put(rec0, req0, "out1", flow.SignOutMessage{ClientID: "c1", ReturnURL: "https://rp/bye"}))

	principal := flow.NewClaimsPrincipal(flow.Claim{Type: "sub", Value: "alice"}, flow.Claim{Type: "idp", Value: "goog"})
	require.NoError(t, bridge.SignIn(httptest.NewRecorder(), req0, hostbridge.SchemePrimary, principal, hostbridge.SignInProperties{}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/logout?id=out1", nil)
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signed out", "a logout bound to a client forwards straight to cleanup, never the prompt")
	assert.Equal(t, 1, users.signOutCalls)

	_, ok := bridge.GetPrincipal(req, hostbridge.SchemePrimary)
	assert.False(t, ok, "SignOut must clear the primary scheme")
}

func TestLogout_AuthenticatedNoClientPromptsWhenEnabled(t *testing.T) {
	cfg := &fakeConfig{enableSignOutPrompt: true}
	clients := &fakeClientStore{clients: map[string]*identity.Client{}}
	users := &fakeUserService{}
	bridge := hostbridge.NewMemoryBridge()

	h, _ := newTestHandler(cfg, clients, users, bridge)

	req0 := httptest.NewRequest(http.MethodGet, "/logout", nil)
	principal := flow.NewClaimsPrincipal(flow.Claim{Type: "sub", Value: "alice"})
	require.NoError(t, bridge.SignIn(httptest.NewRecorder(), req0, hostbridge.SchemePrimary, principal, hostbridge.SignInProperties{}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign out of")
	assert.Equal(t, 0, users.signOutCalls, "the prompt renders without signing the caller out yet")
}

func TestLogout_PromptDisabledForwardsToCleanup(t *testing.T) {
	cfg := &fakeConfig{enableSignOutPrompt: false}
	clients := &fakeClientStore{clients: map[string]*identity.Client{}}
	users := &fakeUserService{}
	bridge := hostbridge.NewMemoryBridge()

	h, _ := newTestHandler(cfg, clients, users, bridge)

	req0 := httptest.NewRequest(http.MethodGet, "/logout", nil)
	principal := flow.NewClaimsPrincipal(flow.Claim{Type: "sub", Value: "alice"})
	require.NoError(t, bridge.SignIn(httptest.NewRecorder(), req0, hostbridge.SchemePrimary, principal, hostbridge.SignInProperties{}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signed out")
	assert.Equal(t, 1, users.signOutCalls)
}

func TestSubmitLogout_ClearsSessionAndRendersLoggedOut(t *testing.T) {
	cfg := &fakeConfig{enableSignOutPrompt: true}
	clients := &fakeClientStore{clients: map[string]*identity.Client{"c1": {ID: "c1", Name: "Acme"}}}
	users := &fakeUserService{}
	bridge := hostbridge.NewMemoryBridge()

	h, messages := newTestHandler(cfg, clients, users, bridge)

	req0 := httptest.NewRequest(http.MethodGet, "/logout?id=out1", nil)
	require.NoError(t, messages.store.Put(httptest.NewRecorder(), req0, "out1", flow.SignOutMessage{ClientID: "c1", ReturnURL: "https://rp/bye"}))
	principal := flow.NewClaimsPrincipal(flow.Claim{Type: "sub", Value: "alice"})
	require.NoError(t, bridge.SignIn(httptest.NewRecorder(), req0, hostbridge.SchemePrimary, principal, hostbridge.SignInProperties{}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout?id=out1", nil)
	h.SubmitLogout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://rp/bye")
	assert.Equal(t, 1, users.signOutCalls)

	_, hasMessage := messages.Load(req, "out1")
	assert.False(t, hasMessage, "the sign-out message must be cleared once consumed")
}
