package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-password", hash)

	require.True(t, VerifyPassword(hash, "s3cret-password"))
	require.False(t, VerifyPassword(hash, "wrong-password"))
}

func TestGenerateTokenIsRandomAndURLSafe(t *testing.T) {
	first, err := GenerateToken(48)
	require.NoError(t, err)
	second, err := GenerateToken(48)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.NotContains(t, first, "+")
	require.NotContains(t, first, "/")
}
