// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package login

import (
	"net/http"
	"net/url"

	"github.com/ory/x/stringsx"
	"github.com/ory/x/urlx"

	"github.com/ory/idsrv-login/selfservice/flow"
	"github.com/ory/idsrv-login/ui"
	"github.com/ory/idsrv-login/x"
)

// EligibleExternalProviders intersects the host's configured providers with
// the client's whitelist ("eligible for this client"), as decided by
// isAllowed. A nil isAllowed allows every configured provider.
func EligibleExternalProviders(configured []string, isAllowed func(provider string) bool) []string {
	out := make([]string, 0, len(configured))
	for _, p := range configured {
		if isAllowed == nil || isAllowed(p) {
			out = append(out, p)
		}
	}
	return out
}

// ResolveUsername implements a fixed precedence: submitted value →
// LoginHint (if enableLoginHint) → LastUserName cookie. Per the open
// question, this is read-only precedence; it does not affect when
// LastUserName is written (local success always writes it, unconditionally).
func ResolveUsername(r *http.Request, submitted string, message *flow.SignInMessage, enableLoginHint bool, lastUserName *x.LastUserNameCookie) string {
	var hint string
	if enableLoginHint && message != nil {
		hint = message.LoginHint
	}
	var last string
	if lastUserName != nil {
		last, _ = lastUserName.Get(r)
	}
	return stringsx.Coalesce(submitted, hint, last)
}

// BuildLoginViewModel assembles the view model consumed by the view
// service's login page.
func BuildLoginViewModel(r *http.Request, signInID, siteName string, base *url.URL, providers []string, providerHref func(provider string) string, username, errMsg string, allowLocalLogin, allowRememberMe, rememberMe bool) *ui.LoginViewModel {
	links := make([]ui.ExternalProviderLink, 0, len(providers))
	for _, p := range providers {
		links = append(links, ui.ExternalProviderLink{Name: p, Href: providerHref(p)})
	}

	return &ui.LoginViewModel{
		RequestID:                signInID,
		SiteName:                 siteName,
		SiteURL:                  base.String(),
		VisibleExternalProviders: links,
		AdditionalLinks:          additionalLoginLinks(base, signInID),
		ErrorMessage:             errMsg,
		AllowLocalLogin:          allowLocalLogin,
		AllowRememberMe:          allowRememberMe,
		RememberMe:               rememberMe,
		Username:                 username,
		AntiForgeryToken:         x.AntiForgeryToken(r),
	}
}

func additionalLoginLinks(base *url.URL, signInID string) []ui.PageLink {
	register := urlx.CopyWithQuery(urlx.AppendPaths(base, "registration"), url.Values{"signin": {signInID}})
	return []ui.PageLink{
		{Text: "Create an account", Href: register.String()},
	}
}
