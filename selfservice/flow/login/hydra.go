// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package login

import (
	"context"

	hydraclientgo "github.com/ory/hydra-client-go/v2"
	"github.com/pkg/errors"
)

// HydraAdapter correlates a SignInMessage carrying an OAuth2LoginChallenge
// with an upstream OAuth2 login-challenge broker. Deployments whose
// authorize endpoint is not itself such a broker never construct one;
// SignInAndRedirect skips this entirely when SignInMessage.OAuth2LoginChallenge
// is empty.
type HydraAdapter struct {
	admin *hydraclientgo.APIClient
}

func NewHydraAdapter(admin *hydraclientgo.APIClient) *HydraAdapter {
	return &HydraAdapter{admin: admin}
}

// AcceptLoginChallenge tells the broker the subject identified by the
// principal completed authentication and returns the redirect URL the
// browser must be sent to instead of the plain returnUrl.
func (h *HydraAdapter) AcceptLoginChallenge(ctx context.Context, challenge, subject string, remember bool) (string, error) {
	body := hydraclientgo.AcceptOAuth2LoginRequest{
		Subject:  subject,
		Remember: &remember,
	}
	resp, _, err := h.admin.OAuth2API.AcceptOAuth2LoginRequest(ctx).
		LoginChallenge(challenge).
		AcceptOAuth2LoginRequest(body).
		Execute()
	if err != nil {
		return "", errors.Wrap(err, "accepting oauth2 login challenge")
	}
	return resp.RedirectTo, nil
}
