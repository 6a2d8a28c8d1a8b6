// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package x

import "github.com/pkg/errors"

// MaxInputParamLength bounds every user-controlled string parameter read by
// the flow controller: signin, the logout id, resume, provider, and the
// external error query. Anything longer is rejected outright (no cookie
// write, no event emission, no user-service call), except the external
// error query, which is cut to this length by TruncateForDisplay instead.
const MaxInputParamLength = 100

// ErrInputTooLong is returned by CheckInputLength for any user-controlled
// parameter exceeding MaxInputParamLength.
var ErrInputTooLong = errors.New("input parameter exceeds maximum length")

// CheckInputLength enforces MaxInputParamLength on a single query/form value.
// Callers must run this before touching any cookie, event, or user-service
// call for the given value.
func CheckInputLength(value string) error {
	if len(value) > MaxInputParamLength {
		return errors.WithStack(ErrInputTooLong)
	}
	return nil
}

// TruncateForDisplay bounds a value to MaxInputParamLength for safe
// inclusion in a rendered error message (used only for values callers
// explicitly allows to be echoed in truncated form, e.g. the external
// provider's `?error=`; ordinary oversize input is never echoed at all).
func TruncateForDisplay(value string) string {
	if len(value) <= MaxInputParamLength {
		return value
	}
	return value[:MaxInputParamLength]
}
