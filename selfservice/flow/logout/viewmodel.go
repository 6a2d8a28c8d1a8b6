// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package logout

import (
	"net/http"

	"github.com/ory/idsrv-login/ui"
	"github.com/ory/idsrv-login/x"
)

// IframeRenderer produces the set of protocol front-channel logout iframe
// URLs for a client. Rendering the protocol/discovery side of these URLs is
// out of scope here; NoopIframeRenderer is a trivial stand-in for
// deployments or tests that don't need any.
type IframeRenderer interface {
	RenderIframeURLs(r *http.Request, clientID string) []string
}

type NoopIframeRenderer struct{}

func (NoopIframeRenderer) RenderIframeURLs(r *http.Request, clientID string) []string { return nil }

func BuildLogoutViewModel(r *http.Request, signOutID, clientName string) *ui.LogoutViewModel {
	return &ui.LogoutViewModel{
		RequestID:        signOutID,
		ClientName:       clientName,
		AntiForgeryToken: x.AntiForgeryToken(r),
	}
}

func BuildLoggedOutViewModel(signOutID, clientName, returnURL string, iframeURLs []string) *ui.LoggedOutViewModel {
	return &ui.LoggedOutViewModel{
		RequestID:          signOutID,
		ClientName:         clientName,
		ReturnURL:          returnURL,
		ProtocolIframeURLs: iframeURLs,
	}
}
