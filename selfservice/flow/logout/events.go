// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package logout

import "github.com/ory/idsrv-login/eventservice"

func emitLogout(e eventservice.Service, signOutID, clientID string) {
	e.Emit(eventservice.Logout, eventservice.Fields{"signout_id": signOutID, "client_id": clientID})
}

func emitEndpointFailure(e eventservice.Service, operation, reason string) {
	e.Emit(eventservice.EndpointFailure, eventservice.Fields{"operation": operation, "reason": reason})
}
