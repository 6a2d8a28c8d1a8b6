// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package login

import (
	"github.com/ory/idsrv-login/eventservice"
)

func emitPreLoginSuccess(e eventservice.Service, signInID, clientID string) {
	e.Emit(eventservice.PreLoginSuccess, eventservice.Fields{"signin_id": signInID, "client_id": clientID})
}

func emitPreLoginFailure(e eventservice.Service, signInID, clientID, message string) {
	e.Emit(eventservice.PreLoginFailure, eventservice.Fields{"signin_id": signInID, "client_id": clientID, "message": message})
}

func emitLocalLoginSuccess(e eventservice.Service, signInID, username string) {
	e.Emit(eventservice.LocalLoginSuccess, eventservice.Fields{"signin_id": signInID, "username": username})
}

func emitLocalLoginFailure(e eventservice.Service, signInID, username, reason string) {
	e.Emit(eventservice.LocalLoginFailure, eventservice.Fields{"signin_id": signInID, "username": username, "reason": reason})
}

func emitExternalLoginSuccess(e eventservice.Service, signInID, provider string) {
	e.Emit(eventservice.ExternalLoginSuccess, eventservice.Fields{"signin_id": signInID, "provider": provider})
}

func emitExternalLoginFailure(e eventservice.Service, signInID, provider, reason string) {
	e.Emit(eventservice.ExternalLoginFailure, eventservice.Fields{"signin_id": signInID, "provider": provider, "reason": reason})
}

func emitExternalLoginError(e eventservice.Service, errorToken string) {
	e.Emit(eventservice.ExternalLoginError, eventservice.Fields{"error": errorToken})
}

func emitPartialLoginComplete(e eventservice.Service, signInID, resumeID string) {
	e.Emit(eventservice.PartialLoginComplete, eventservice.Fields{"signin_id": signInID, "resume_id": resumeID})
}

func emitEndpointFailure(e eventservice.Service, operation, reason string) {
	e.Emit(eventservice.EndpointFailure, eventservice.Fields{"operation": operation, "reason": reason})
}
