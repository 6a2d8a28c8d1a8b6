// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"context"
	"net/http"
	"time"

	"github.com/ory/x/logrusx"

	"github.com/ory/idsrv-login/driver/config"
	"github.com/ory/idsrv-login/eventservice"
	"github.com/ory/idsrv-login/hostbridge"
	"github.com/ory/idsrv-login/identity"
	"github.com/ory/idsrv-login/selfservice/flow"
	loginflow "github.com/ory/idsrv-login/selfservice/flow/login"
	logoutflow "github.com/ory/idsrv-login/selfservice/flow/logout"
	"github.com/ory/idsrv-login/ui"
	"github.com/ory/idsrv-login/x"
)

// Dependencies names every external collaborator carved out of the
// core: credential policy, client metadata, the host auth bridge, and
// (optionally) view rendering, an OAuth2 login-challenge broker, and a
// front-channel logout iframe renderer. Only Config, Users, Clients, and
// Bridge are required; the rest fall back to sane defaults.
type Dependencies struct {
	Config config.Provider

	Users   identity.UserService
	Clients identity.ClientStore
	Bridge  hostbridge.Bridge

	Views   ui.Service
	Hydra   *loginflow.HydraAdapter
	Iframes logoutflow.IframeRenderer
}

// Registry wires every collaborator into the login and logout handlers and
// the router that exposes them: one construction site that knows every
// concrete type.
type Registry struct {
	Config config.Provider

	Login  *loginflow.Handler
	Logout *logoutflow.Handler
	Router http.Handler
}

func NewRegistry(ctx context.Context, deps Dependencies) *Registry {
	c := deps.Config
	const cookiePath = "/"

	logger := logrusx.New("idsrv-login", "")
	events := eventservice.NewLogrusService(logger)

	views := deps.Views
	if views == nil {
		views = ui.NewDefaultService()
	}

	hashKey := c.CookieHashKey(ctx)
	blockKey := c.CookieBlockKey(ctx)
	secure := c.CookieSecure(ctx)

	signInStore := x.NewCookieMessageStore[flow.SignInMessage]("idsrv.signin", hashKey, blockKey, cookiePath, 30*time.Minute, secure)
	signOutStore := x.NewCookieMessageStore[flow.SignOutMessage]("idsrv.signout", hashKey, blockKey, cookiePath, 30*time.Minute, secure)

	lastUserName := x.NewLastUserNameCookie("idsrv.last_username", cookiePath, 365*24*time.Hour, secure)
	sessions := x.NewSessionCookie("idsrv.session", cookiePath, secure)

	loginMessages := loginflow.NewMessageManager(signInStore)
	logoutMessages := logoutflow.NewMessageManager(signOutStore)

	loginHandler := loginflow.NewHandler(c, loginMessages, deps.Bridge, deps.Users, deps.Clients, events, views, lastUserName, sessions, deps.Hydra)
	logoutHandler := logoutflow.NewHandler(c, logoutMessages, deps.Bridge, deps.Clients, deps.Users, events, views, sessions, deps.Iframes)

	return &Registry{
		Config: c,
		Login:  loginHandler,
		Logout: logoutHandler,
		Router: NewRouter(loginHandler, logoutHandler),
	}
}
