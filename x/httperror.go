// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package x

import (
	"github.com/ory/herodot"
	"github.com/pkg/errors"
)

// WrapServiceFailure classifies an internal collaborator's error (a failed
// user-service or host-bridge call, never a rejected credential) into an
// ory/herodot typed error: reason is a short operation label safe to log,
// the original error becomes the typed error's debug detail. Callers log
// or emit the result; they must never forward it to the browser directly
// (no exception is ever surfaced as a stack trace to the end user) — render
// a generic error page instead and use this only for the server-side event.
func WrapServiceFailure(err error, reason string) error {
	return errors.WithStack(herodot.ErrInternalServerError.WithReason(reason).WithDebug(err.Error()))
}
