// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package x

import (
	"net/http"

	"github.com/ory/nosurf"
)

// AntiForgeryField is the form field name the double-submit token must
// arrive under on every state-changing POST.
const AntiForgeryField = "csrf_token"

// ProtectAntiForgery wraps next with Ory's nosurf double-submit CSRF
// middleware: a signed token cookie is compared against the same token
// carried in the request (form field or X-CSRF-Token header). A mismatch is
// rejected with a 400 before next ever runs, so the controller never sees
// a forged POST. Wrap the whole router, not just the POST routes: GET
// requests are never rejected (safe methods skip verification) but still
// need the middleware to mint the token cookie the rendered form embeds.
func ProtectAntiForgery(next http.Handler) http.Handler {
	h := nosurf.New(next)
	h.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "anti-forgery token validation failed", http.StatusBadRequest)
	}))
	return h
}

// AntiForgeryToken returns the token to embed in a rendered form's hidden
// csrf_token field (and the same value nosurf expects to see double-submitted
// on the next POST).
func AntiForgeryToken(r *http.Request) string {
	return nosurf.Token(r)
}
