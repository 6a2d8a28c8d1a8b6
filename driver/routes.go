// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

// Package driver assembles the flow controller's collaborators into a
// runnable HTTP server: one place that knows every concrete type, behind
// which everything else talks only to interfaces.
package driver

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/ory/idsrv-login/selfservice/flow/login"
	"github.com/ory/idsrv-login/selfservice/flow/logout"
	"github.com/ory/idsrv-login/x"
)

// NewRouter mounts the routes named in the external interface: the five
// login-facing handlers plus the two logout handlers. The anti-forgery gate
// wraps the whole router so GET pages get a token cookie minted for the
// forms they render and every state-changing POST is verified against it.
func NewRouter(loginHandler *login.Handler, logoutHandler *logout.Handler) http.Handler {
	r := httprouter.New()

	r.GET(login.RouteLogin, adapt(loginHandler.Login))
	r.POST(login.RouteLogin, adapt(loginHandler.SubmitLogin))
	r.GET(login.RouteLoginExternal, adapt(loginHandler.LoginExternal))
	r.GET(login.RouteLoginExternalCallback, adapt(loginHandler.LoginExternalCallback))
	r.GET(login.RouteResume, adapt(loginHandler.ResumeLoginFromRedirect))

	r.GET(logout.RouteLogout, adapt(logoutHandler.Logout))
	r.POST(logout.RouteLogout, adapt(logoutHandler.SubmitLogout))

	return x.ProtectAntiForgery(r)
}

func adapt(h http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h(w, r)
	}
}
