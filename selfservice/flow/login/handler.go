// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package login

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ory/x/urlx"

	"github.com/ory/idsrv-login/driver/config"
	"github.com/ory/idsrv-login/eventservice"
	"github.com/ory/idsrv-login/hostbridge"
	"github.com/ory/idsrv-login/identity"
	"github.com/ory/idsrv-login/selfservice/flow"
	"github.com/ory/idsrv-login/ui"
	"github.com/ory/idsrv-login/x"
)

// Route paths mounted under the identity server's base path.
const (
	RouteLogin                 = "/login"
	RouteLoginExternal         = "/external"
	RouteLoginExternalCallback = "/callback"
	RouteResume                = "/resume"
)

// Handler wires every collaborator the login side of the flow controller
// depends on and exposes the five HTTP handlers that drive the state
// machine. One Handler is constructed once per process and is safe for
// concurrent use: it carries no per-request mutable state of its own.
type Handler struct {
	c config.Provider

	messages *MessageManager
	bridge   hostbridge.Bridge
	users    identity.UserService
	clients  identity.ClientStore
	events   eventservice.Service
	views    ui.Service

	lastUserName *x.LastUserNameCookie
	sessions     *x.SessionCookie

	hydra *HydraAdapter
}

func NewHandler(
	c config.Provider,
	messages *MessageManager,
	bridge hostbridge.Bridge,
	users identity.UserService,
	clients identity.ClientStore,
	events eventservice.Service,
	views ui.Service,
	lastUserName *x.LastUserNameCookie,
	sessions *x.SessionCookie,
	hydra *HydraAdapter,
) *Handler {
	return &Handler{
		c:            c,
		messages:     messages,
		bridge:       bridge,
		users:        users,
		clients:      clients,
		events:       events,
		views:        views,
		lastUserName: lastUserName,
		sessions:     sessions,
		hydra:        hydra,
	}
}

// Login is GET /login (S0 Start).
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signInID := r.URL.Query().Get("signin")
	if err := x.CheckInputLength(signInID); err != nil {
		h.renderError(w, r, "", "")
		return
	}

	message, err := h.messages.Load(r, signInID)
	if err != nil {
		h.renderError(w, r, signInID, "No matching sign-in request was found.")
		return
	}

	client, err := h.clients.GetClient(ctx, message.ClientID)
	if err != nil {
		emitEndpointFailure(h.events, "Authenticate", err.Error())
		h.renderError(w, r, signInID, "")
		return
	}

	result, err := h.users.PreAuthenticate(ctx, message)
	if err != nil {
		emitEndpointFailure(h.events, "Authenticate", err.Error())
		h.renderError(w, r, signInID, "")
		return
	}
	if result != nil {
		if result.IsError() {
			emitPreLoginFailure(h.events, signInID, message.ClientID, result.Message)
			h.renderError(w, r, signInID, result.Message)
			return
		}
		emitPreLoginSuccess(h.events, signInID, message.ClientID)
		h.SignInAndRedirect(w, r, signInID, message, result, nil)
		return
	}

	if message.IdP != "" && h.isProviderEligible(ctx, message.ClientID, message.IdP) {
		if err := h.bridge.Challenge(w, r, message.IdP, signInID); err != nil {
			emitEndpointFailure(h.events, "Authenticate", err.Error())
			h.renderError(w, r, signInID, "")
		}
		return
	}

	h.renderLoginPage(w, r, signInID, client, message, "", nil, "")
}

// SubmitLogin is POST /login (S2 -> S6 | S5 | S2(error) | error page).
func (h *Handler) SubmitLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.c.EnableLocalLogin(ctx) {
		http.Error(w, "local login is disabled", http.StatusMethodNotAllowed)
		return
	}

	signInID := r.URL.Query().Get("signin")
	if err := x.CheckInputLength(signInID); err != nil {
		h.renderError(w, r, "", "")
		return
	}

	message, err := h.messages.Load(r, signInID)
	if err != nil {
		h.renderError(w, r, signInID, "No matching sign-in request was found.")
		return
	}

	client, err := h.clients.GetClient(ctx, message.ClientID)
	if err != nil {
		emitEndpointFailure(h.events, "Authenticate", err.Error())
		h.renderError(w, r, signInID, "")
		return
	}
	if !isLocalLoginAllowed(h.c.EnableLocalLogin(ctx), client) {
		http.Error(w, "local login is disabled for this client", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderLoginPage(w, r, signInID, client, message, "", nil, "Username or password is invalid.")
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	rememberMe := parseRememberMe(r)

	if len(username) > x.MaxInputParamLength || len(password) > x.MaxInputParamLength {
		h.renderLoginPage(w, r, signInID, client, message, username, rememberMe, "")
		return
	}

	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		h.renderLoginPage(w, r, signInID, client, message, username, rememberMe, "Username and password are required.")
		return
	}

	result, err := h.users.AuthenticateLocal(ctx, username, password, message)
	if err != nil {
		wrapped := x.WrapServiceFailure(err, "AuthenticateLocal")
		emitLocalLoginFailure(h.events, signInID, username, wrapped.Error())
		h.renderError(w, r, signInID, "")
		return
	}
	if result == nil {
		emitLocalLoginFailure(h.events, signInID, username, "invalid credentials")
		h.renderLoginPage(w, r, signInID, client, message, username, rememberMe, "Invalid username or password.")
		return
	}
	if result.IsError() {
		emitLocalLoginFailure(h.events, signInID, username, result.Message)
		h.renderLoginPage(w, r, signInID, client, message, username, rememberMe, result.Message)
		return
	}

	h.lastUserName.Set(w, username)
	emitLocalLoginSuccess(h.events, signInID, username)
	h.SignInAndRedirect(w, r, signInID, message, result, rememberMe)
}

// LoginExternal is GET /external (S0/S2 -> S3).
func (h *Handler) LoginExternal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signInID := r.URL.Query().Get("signin")
	provider := r.URL.Query().Get("provider")
	if err := x.CheckInputLength(signInID); err != nil {
		h.renderError(w, r, "", "")
		return
	}
	if err := x.CheckInputLength(provider); err != nil {
		h.renderError(w, r, signInID, "")
		return
	}

	message, err := h.messages.Load(r, signInID)
	if err != nil {
		h.renderError(w, r, signInID, "No matching sign-in request was found.")
		return
	}

	if !h.isProviderEligible(ctx, message.ClientID, provider) {
		emitEndpointFailure(h.events, "Authenticate", "provider not allowed for client")
		h.renderError(w, r, signInID, "")
		return
	}

	if err := h.bridge.Challenge(w, r, provider, signInID); err != nil {
		emitEndpointFailure(h.events, "Authenticate", err.Error())
		h.renderError(w, r, signInID, "")
	}
}

// LoginExternalCallback is GET /callback (S3 -> S4 -> S6 | S5 | S2(error)).
func (h *Handler) LoginExternalCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errToken := r.URL.Query().Get("error"); errToken != "" {
		truncated := x.TruncateForDisplay(errToken)
		emitExternalLoginError(h.events, truncated)
		h.renderError(w, r, "", "The external identity provider reported an error: "+truncated)
		return
	}

	signInID, ok := h.bridge.GetExternalSignInID(r)
	if !ok {
		h.renderError(w, r, "", "")
		return
	}

	message, err := h.messages.Load(r, signInID)
	if err != nil {
		h.renderError(w, r, signInID, "No matching sign-in request was found.")
		return
	}

	principal, err := h.bridge.GetExternalIdentity(r)
	if err != nil {
		emitExternalLoginFailure(h.events, signInID, message.IdP, err.Error())
		h.renderError(w, r, signInID, "")
		return
	}

	external, ok := externalIdentityFromPrincipal(principal)
	if !ok {
		client, _ := h.clients.GetClient(ctx, message.ClientID)
		h.renderLoginPage(w, r, signInID, client, message, "", nil, "No matching external account was found.")
		return
	}

	result, err := h.users.AuthenticateExternal(ctx, external, message)
	h.handleAuthenticateResult(w, r, signInID, message, result, err, external.Provider)
}

// ResumeLoginFromRedirect is GET /resume (S5 -> S4' -> S6 | S5 | S2(error)).
func (h *Handler) ResumeLoginFromRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resumeID := r.URL.Query().Get("resume")
	if err := x.CheckInputLength(resumeID); err != nil {
		h.renderError(w, r, "", "")
		return
	}

	principal, ok := h.bridge.GetPartialSignInIdentity(r)
	if !ok {
		h.renderError(w, r, "", "")
		return
	}

	signInID, err := OriginalSignInID(principal, resumeID)
	if err != nil {
		h.renderError(w, r, "", "")
		return
	}

	message, err := h.messages.Load(r, signInID)
	if err != nil {
		h.renderError(w, r, signInID, "No matching sign-in request was found.")
		return
	}

	if IsPromotable(principal) {
		PromoteToFull(principal, resumeID)
		result := flow.NewFullResult(principal)
		emitPartialLoginComplete(h.events, signInID, resumeID)
		h.SignInAndRedirect(w, r, signInID, message, result, nil)
		return
	}

	external, err := RebuildExternalIdentity(principal)
	if err != nil {
		h.renderError(w, r, signInID, "")
		return
	}

	result, err := h.users.AuthenticateExternal(ctx, external, message)
	h.handleAuthenticateResult(w, r, signInID, message, result, err, external.Provider)
}

func (h *Handler) handleAuthenticateResult(w http.ResponseWriter, r *http.Request, signInID string, message *flow.SignInMessage, result *flow.AuthenticateResult, err error, provider string) {
	ctx := r.Context()
	if err != nil {
		wrapped := x.WrapServiceFailure(err, "AuthenticateExternal")
		emitExternalLoginFailure(h.events, signInID, provider, wrapped.Error())
		h.renderError(w, r, signInID, "")
		return
	}
	if result == nil {
		emitExternalLoginFailure(h.events, signInID, provider, "invalid credentials")
		client, _ := h.clients.GetClient(ctx, message.ClientID)
		h.renderLoginPage(w, r, signInID, client, message, "", nil, "Invalid username or password.")
		return
	}
	if result.IsError() {
		emitExternalLoginFailure(h.events, signInID, provider, result.Message)
		client, _ := h.clients.GetClient(ctx, message.ClientID)
		h.renderLoginPage(w, r, signInID, client, message, "", nil, result.Message)
		return
	}
	emitExternalLoginSuccess(h.events, signInID, provider)
	h.SignInAndRedirect(w, r, signInID, message, result, nil)
}

// SignInAndRedirect implements IssueAuthenticationCookie plus the redirect
// computation: partial results are parked under the partial scheme with a
// freshly minted resume claim pair; full results clear the sign-in message
// and redirect to the original return URL (or, when an OAuth2 login
// challenge is attached, to whatever accepting it resolves to). Both kinds
// get a fresh session id before the redirect.
func (h *Handler) SignInAndRedirect(w http.ResponseWriter, r *http.Request, signInID string, message *flow.SignInMessage, result *flow.AuthenticateResult, rememberMe *bool) {
	ctx := r.Context()
	principal := result.Principal()
	base := h.c.SelfPublicURL(ctx)

	var redirectTo string
	if result.IsPartial() {
		resumeID, err := newRandomID()
		if err != nil {
			h.renderError(w, r, signInID, "")
			return
		}
		resumeURL := urlx.CopyWithQuery(urlx.AppendPaths(base, RouteResume), url.Values{"resume": {resumeID}}).String()
		principal.AddClaim(flow.Claim{Type: flow.ClaimPartialLoginReturnUrl, Value: resumeURL, Issuer: flow.BuiltInIdentityProvider})
		principal.AddClaim(flow.Claim{Type: flow.PartialLoginResumeIDClaimType(resumeID), Value: signInID, Issuer: flow.BuiltInIdentityProvider})

		if err := h.bridge.SignIn(w, r, hostbridge.SchemePartial, principal, hostbridge.SignInProperties{}); err != nil {
			h.renderError(w, r, signInID, "")
			return
		}
		redirectTo = resolvePartialRedirect(base, result.PartialSignInRedirectPath)
	} else {
		h.messages.Clear(w, r, signInID)
		props := h.computePersistence(ctx, rememberMe)
		if err := h.bridge.SignIn(w, r, hostbridge.SchemePrimary, principal, props); err != nil {
			h.renderError(w, r, signInID, "")
			return
		}
		redirectTo = message.ReturnURL
		if message.OAuth2LoginChallenge != "" && h.hydra != nil {
			if subject, ok := principal.FindFirst("sub"); ok {
				if to, err := h.hydra.AcceptLoginChallenge(ctx, message.OAuth2LoginChallenge, subject.Value, rememberMe != nil && *rememberMe); err == nil {
					redirectTo = to
				}
			}
		}
	}

	if sessionID, err := newRandomID(); err == nil {
		h.sessions.Issue(w, sessionID)
	}

	http.Redirect(w, r, redirectTo, http.StatusFound)
}
