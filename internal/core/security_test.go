// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	valid, err := VerifyPassword("correct-horse-battery", hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = VerifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	first, err := HashPassword("same-password")
	require.NoError(t, err)

	second, err := HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"not-a-hash",
		"$bcrypt$v=19$m=65536,t=1,p=4$abc$def",
		"$argon2id$v=19$m=65536,t=1,p=4$not-base64!!$def",
	}

	for _, encoded := range cases {
		_, err := VerifyPassword("anything", encoded)
		assert.Error(t, err, "hash %q should be rejected", encoded)
	}
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	hash, err := HashPassword("real-password")
	require.NoError(t, err)

	valid, err := VerifyPasswordTimingSafe("real-password", &hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = VerifyPasswordTimingSafe("wrong-password", &hash)
	require.NoError(t, err)
	assert.False(t, valid)

	// Missing hash still runs a full verification but always reports false.
	valid, err = VerifyPasswordTimingSafe("real-password", nil)
	require.NoError(t, err)
	assert.False(t, valid)

	empty := ""
	valid, err = VerifyPasswordTimingSafe("real-password", &empty)
	require.NoError(t, err)
	assert.False(t, valid)
}
