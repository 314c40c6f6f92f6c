// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/platform/sec"
)

/*
TestHashPassword_Salted verifies two hashes of the same password differ and
both still verify.
*/
func TestHashPassword_Salted(t *testing.T) {
	first, err := sec.HashPassword("correct horse")
	require.NoError(t, err)
	second, err := sec.HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotContains(t, first, "correct horse")
	assert.True(t, sec.CheckPasswordHash("correct horse", first))
	assert.True(t, sec.CheckPasswordHash("correct horse", second))
	assert.False(t, sec.CheckPasswordHash("wrong", first))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := sec.HashPassword(strings.Repeat("a", sec.MaxPasswordBytes+8))
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = sec.HashPassword(strings.Repeat("a", sec.MaxPasswordBytes))
	assert.NoError(t, err)
}

func TestRandomToken(t *testing.T) {
	first, err := sec.RandomToken(32)
	require.NoError(t, err)
	second, err := sec.RandomToken(32)
	require.NoError(t, err)

	assert.Len(t, first, 43)
	assert.NotEqual(t, first, second)
}

func TestPrincipal_CanAdminister(t *testing.T) {
	var anonymous *sec.Principal
	assert.False(t, anonymous.CanAdminister())
	assert.False(t, (&sec.Principal{}).CanAdminister())
	assert.True(t, (&sec.Principal{IsAdmin: true}).CanAdminister())
}
