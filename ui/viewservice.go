// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

// Package ui assembles and renders the view models the flow controller
// hands off at the end of every non-redirect transition. The HTML
// templating itself (ViewService's concrete implementation) is named in
// as an external collaborator; only the view-model shapes and the
// assembly logic that fills them in are this repository's concern.
package ui

import (
	"html/template"
	"net/http"
)

// ExternalProviderLink is one entry in a LoginViewModel's provider list.
type ExternalProviderLink struct {
	Name string
	Href string
}

// PageLink is an additional login-page link rendered against the base URL
// and the flow's signInId.
type PageLink struct {
	Text string
	Href string
}

// LoginViewModel is the model handed to the view service for the login
// page.
type LoginViewModel struct {
	RequestID string

	SiteName string
	SiteURL  string

	VisibleExternalProviders []ExternalProviderLink
	AdditionalLinks          []PageLink

	ErrorMessage string

	AllowLocalLogin bool
	AllowRememberMe bool
	RememberMe      bool

	Username string

	AntiForgeryToken string
}

// LogoutViewModel is the model handed to the view service for the logout
// confirmation prompt.
type LogoutViewModel struct {
	RequestID        string
	ClientName       string
	AntiForgeryToken string
}

// LoggedOutViewModel is the model handed to the view service for the
// logged-out landing page.
type LoggedOutViewModel struct {
	RequestID         string
	ClientName        string
	ReturnURL         string
	ProtocolIframeURLs []string
}

// ErrorViewModel is the model handed to the view service for the generic
// error page. Message is either empty (a value was simply too
// long or missing and must never be echoed) or a trusted, already
// user-facing string.
type ErrorViewModel struct {
	RequestID string
	Message   string
}

// Service is the view-templating capability the flow controller depends on.
// Templating itself is out of scope; DefaultService below is a minimal
// html/template-backed implementation sufficient for tests and for
// deployments that don't bring their own.
type Service interface {
	RenderLogin(w http.ResponseWriter, r *http.Request, model *LoginViewModel)
	RenderLogout(w http.ResponseWriter, r *http.Request, model *LogoutViewModel)
	RenderLoggedOut(w http.ResponseWriter, r *http.Request, model *LoggedOutViewModel)
	RenderError(w http.ResponseWriter, r *http.Request, model *ErrorViewModel)
}

// DefaultService renders each view model through a bare html/template,
// adequate for tests and for local development; production deployments are
// expected to supply their own Service backed by whatever templating or
// SPA bundling they use.
type DefaultService struct {
	login     *template.Template
	logout    *template.Template
	loggedOut *template.Template
	errorPage *template.Template
}

func NewDefaultService() *DefaultService {
	return &DefaultService{
		login:     template.Must(template.New("login").Parse(loginTemplate)),
		logout:    template.Must(template.New("logout").Parse(logoutTemplate)),
		loggedOut: template.Must(template.New("logged_out").Parse(loggedOutTemplate)),
		errorPage: template.Must(template.New("error").Parse(errorTemplate)),
	}
}

func (s *DefaultService) RenderLogin(w http.ResponseWriter, r *http.Request, model *LoginViewModel) {
	render(w, s.login, model)
}

func (s *DefaultService) RenderLogout(w http.ResponseWriter, r *http.Request, model *LogoutViewModel) {
	render(w, s.logout, model)
}

func (s *DefaultService) RenderLoggedOut(w http.ResponseWriter, r *http.Request, model *LoggedOutViewModel) {
	render(w, s.loggedOut, model)
}

func (s *DefaultService) RenderError(w http.ResponseWriter, r *http.Request, model *ErrorViewModel) {
	render(w, s.errorPage, model)
}

func render(w http.ResponseWriter, t *template.Template, model interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = t.Execute(w, model)
}

const loginTemplate = `<!doctype html><html><body>
<h1>Sign in</h1>
{{if .ErrorMessage}}<p class="error">{{.ErrorMessage}}</p>{{end}}
<form method="POST" action="/login?signin={{.RequestID}}">
<input type="hidden" name="csrf_token" value="{{.AntiForgeryToken}}">
<input type="text" name="username" value="{{.Username}}">
<input type="password" name="password">
{{if .AllowRememberMe}}<input type="checkbox" name="rememberMe" {{if .RememberMe}}checked{{end}}>{{end}}
<button type="submit">Sign in</button>
</form>
{{range .VisibleExternalProviders}}<a href="{{.Href}}">{{.Name}}</a>{{end}}
{{range .AdditionalLinks}}<a href="{{.Href}}">{{.Text}}</a>{{end}}
</body></html>`

const logoutTemplate = `<!doctype html><html><body>
<h1>Sign out of {{.ClientName}}?</h1>
<form method="POST" action="/logout?id={{.RequestID}}">
<input type="hidden" name="csrf_token" value="{{.AntiForgeryToken}}">
<button type="submit">Sign out</button>
</form>
</body></html>`

const loggedOutTemplate = `<!doctype html><html><body>
<h1>You have been signed out</h1>
{{range .ProtocolIframeURLs}}<iframe src="{{.}}"></iframe>{{end}}
{{if .ReturnURL}}<a href="{{.ReturnURL}}">Return to {{.ClientName}}</a>{{end}}
</body></html>`

const errorTemplate = `<!doctype html><html><body>
<h1>Something went wrong</h1>
{{if .Message}}<p>{{.Message}}</p>{{end}}
</body></html>`
