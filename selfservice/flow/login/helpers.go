// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package login

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/ory/x/urlx"

	"github.com/ory/idsrv-login/hostbridge"
	"github.com/ory/idsrv-login/identity"
	"github.com/ory/idsrv-login/selfservice/flow"
	"github.com/ory/idsrv-login/ui"
)

func isLocalLoginAllowed(serverFlag bool, client *identity.Client) bool {
	if !serverFlag {
		return false
	}
	if client == nil {
		return true
	}
	return client.EnableLocalLogin
}

func (h *Handler) isProviderEligible(ctx context.Context, clientID, provider string) bool {
	ok, err := h.clients.IsValidIdentityProvider(ctx, clientID, provider)
	if err != nil || !ok {
		return false
	}
	for _, p := range h.bridge.ConfiguredProviders() {
		if p == provider {
			return true
		}
	}
	return false
}

// computePersistence implements the rememberMe persistence truth table:
// true -> persistent with explicit expiry; false -> non-persistent;
// nil (not prompted) -> persistent iff the server default is persistent.
func (h *Handler) computePersistence(ctx context.Context, rememberMe *bool) hostbridge.SignInProperties {
	if rememberMe != nil {
		if *rememberMe {
			exp := time.Now().UTC().Add(h.c.RememberMeDuration(ctx))
			return hostbridge.SignInProperties{IsPersistent: true, ExpiresUTC: &exp}
		}
		return hostbridge.SignInProperties{IsPersistent: false}
	}
	return hostbridge.SignInProperties{IsPersistent: h.c.DefaultPersistent(ctx)}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, signInID, message string) {
	h.views.RenderError(w, r, &ui.ErrorViewModel{RequestID: signInID, Message: message})
}

func (h *Handler) renderLoginPage(w http.ResponseWriter, r *http.Request, signInID string, client *identity.Client, message *flow.SignInMessage, username string, rememberMe *bool, errMsg string) {
	ctx := r.Context()
	allowLocal := isLocalLoginAllowed(h.c.EnableLocalLogin(ctx), client)
	configured := h.bridge.ConfiguredProviders()
	eligible := EligibleExternalProviders(configured, func(p string) bool {
		return h.isProviderEligible(ctx, message.ClientID, p)
	})

	if !allowLocal {
		if len(eligible) == 0 {
			h.renderError(w, r, signInID, "No sign-in method is available for this client.")
			return
		}
		if len(eligible) == 1 {
			if err := h.bridge.Challenge(w, r, eligible[0], signInID); err != nil {
				h.renderError(w, r, signInID, "")
			}
			return
		}
	}

	resolvedUsername := ResolveUsername(r, username, message, h.c.EnableLoginHint(ctx), h.lastUserName)
	rememberMeVal := h.c.DefaultPersistent(ctx)
	if rememberMe != nil {
		rememberMeVal = *rememberMe
	}

	base := h.c.SelfPublicURL(ctx)
	model := BuildLoginViewModel(r, signInID, h.c.SiteName(ctx), base, eligible, func(p string) string {
		return urlx.CopyWithQuery(urlx.AppendPaths(base, RouteLoginExternal), url.Values{"signin": {signInID}, "provider": {p}}).String()
	}, resolvedUsername, errMsg, allowLocal, true, rememberMeVal)

	h.views.RenderLogin(w, r, model)
}

func parseRememberMe(r *http.Request) *bool {
	raw := r.PostForm.Get("rememberMe")
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// externalIdentityFromPrincipal reduces a host-bridge principal to an
// ExternalIdentity by selecting the subject/unique-id claim ("sub"); absent
// means the callback produced no usable identity.
func externalIdentityFromPrincipal(principal *flow.ClaimsPrincipal) (*flow.ExternalIdentity, bool) {
	sub, ok := principal.FindFirst("sub")
	if !ok {
		return nil, false
	}
	provider := sub.Issuer
	if idp, ok := principal.FindFirst("idp"); ok && idp.Value != "" {
		provider = idp.Value
	}
	return &flow.ExternalIdentity{
		Provider:   provider,
		ProviderID: sub.Value,
		Claims:     append([]flow.Claim(nil), principal.Claims...),
	}, true
}

func newRandomID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// resolvePartialRedirect strips the "~/" app-relative prefix a partial
// result's redirect path carries and replaces it with the identity server's
// own base path.
func resolvePartialRedirect(base *url.URL, path string) string {
	trimmed := strings.TrimPrefix(path, "~/")
	trimmed = strings.TrimPrefix(trimmed, "/")
	return urlx.AppendPaths(base, trimmed).String()
}
