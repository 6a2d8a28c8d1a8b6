// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package x

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckInputLength(t *testing.T) {
	assert.NoError(t, CheckInputLength(strings.Repeat("a", MaxInputParamLength)))
	assert.ErrorIs(t, CheckInputLength(strings.Repeat("a", MaxInputParamLength+1)), ErrInputTooLong)
}

func TestTruncateForDisplay(t *testing.T) {
	short := "access_denied"
	assert.Equal(t, short, TruncateForDisplay(short))

	long := strings.Repeat("x", MaxInputParamLength+50)
	assert.Len(t, TruncateForDisplay(long), MaxInputParamLength)
}
