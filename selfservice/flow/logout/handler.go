// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package logout

import (
	"net/http"

	"github.com/ory/idsrv-login/driver/config"
	"github.com/ory/idsrv-login/eventservice"
	"github.com/ory/idsrv-login/hostbridge"
	"github.com/ory/idsrv-login/identity"
	"github.com/ory/idsrv-login/selfservice/flow"
	"github.com/ory/idsrv-login/ui"
	"github.com/ory/idsrv-login/x"
)

const (
	RouteLogout = "/logout"
)

// Handler wires the logout side of the flow controller.
type Handler struct {
	c config.Provider

	messages *MessageManager
	bridge   hostbridge.Bridge
	clients  identity.ClientStore
	users    identity.UserService
	events   eventservice.Service
	views    ui.Service

	sessions *x.SessionCookie
	iframes  IframeRenderer
}

func NewHandler(
	c config.Provider,
	messages *MessageManager,
	bridge hostbridge.Bridge,
	clients identity.ClientStore,
	users identity.UserService,
	events eventservice.Service,
	views ui.Service,
	sessions *x.SessionCookie,
	iframes IframeRenderer,
) *Handler {
	if iframes == nil {
		iframes = NoopIframeRenderer{}
	}
	return &Handler{
		c:        c,
		messages: messages,
		bridge:   bridge,
		clients:  clients,
		users:    users,
		events:   events,
		views:    views,
		sessions: sessions,
		iframes:  iframes,
	}
}

// Logout is GET /logout (S7 LogoutPrompt, or a silent forward to the POST
// cleanup path).
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signOutID := r.URL.Query().Get("id")
	if err := x.CheckInputLength(signOutID); err != nil {
		h.renderError(w, r, "", "")
		return
	}

	if _, authenticated := h.bridge.GetPrincipal(r, hostbridge.SchemePrimary); !authenticated {
		h.signOutAndRender(w, r, signOutID)
		return
	}

	message, hasMessage := h.messages.Load(r, signOutID)
	if hasMessage && message.ClientID != "" {
		h.signOutAndRender(w, r, signOutID)
		return
	}

	if !h.c.EnableSignOutPrompt(ctx) {
		h.signOutAndRender(w, r, signOutID)
		return
	}

	clientName := ""
	if hasMessage {
		if client, err := h.clients.GetClient(ctx, message.ClientID); err == nil && client != nil {
			clientName = client.Name
		}
	}
	h.views.RenderLogout(w, r, BuildLogoutViewModel(r, signOutID, clientName))
}

// SubmitLogout is POST /logout (S7 -> S8 LoggedOut).
func (h *Handler) SubmitLogout(w http.ResponseWriter, r *http.Request) {
	signOutID := r.URL.Query().Get("id")
	if err := x.CheckInputLength(signOutID); err != nil {
		h.renderError(w, r, "", "")
		return
	}
	h.signOutAndRender(w, r, signOutID)
}

// signOutAndRender is the shared cleanup-and-render path both the
// auto-forwarded GET and the real POST execute.
func (h *Handler) signOutAndRender(w http.ResponseWriter, r *http.Request, signOutID string) {
	ctx := r.Context()

	message, hasMessage := h.messages.Load(r, signOutID)
	principal, authenticated := h.bridge.GetPrincipal(r, hostbridge.SchemePrimary)

	h.sessions.Clear(w)
	h.messages.Clear(w, r, signOutID)
	h.bridge.SignOut(w, r, hostbridge.AllSchemes...)

	if authenticated {
		if idp, ok := principal.FindFirst("idp"); ok && idp.Value != "" && idp.Value != flow.BuiltInIdentityProvider {
			// Federated sessions also get signed out of the provider's own
			// scheme, named by the idp claim.
			h.bridge.SignOut(w, r, hostbridge.AuthScheme(idp.Value))
		}
		if err := h.users.SignOut(ctx, principal); err != nil {
			emitEndpointFailure(h.events, "SignOut", err.Error())
		}
		emitLogout(h.events, signOutID, clientIDOf(message))
	}

	clientName, returnURL, clientID := "", "", ""
	if hasMessage {
		returnURL = message.ReturnURL
		clientID = message.ClientID
		if client, err := h.clients.GetClient(ctx, clientID); err == nil && client != nil {
			clientName = client.Name
		}
	}

	iframeURLs := h.iframes.RenderIframeURLs(r, clientID)
	h.views.RenderLoggedOut(w, r, BuildLoggedOutViewModel(signOutID, clientName, returnURL, iframeURLs))
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, signOutID, message string) {
	h.views.RenderError(w, r, &ui.ErrorViewModel{RequestID: signOutID, Message: message})
}

func clientIDOf(m *flow.SignOutMessage) string {
	if m == nil {
		return ""
	}
	return m.ClientID
}
