package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	require.NoError(t, err)

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, decoded, 32)

	other, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

func TestGenerateTokenRejectsNonPositiveLength(t *testing.T) {
	_, err := GenerateToken(0)
	require.Error(t, err)

	_, err = GenerateToken(-1)
	require.Error(t, err)
}

func TestHashTokenIsDeterministic(t *testing.T) {
	first := HashToken("abc123")
	second := HashToken("abc123")
	require.Equal(t, first, second)
	require.Len(t, first, 64)

	require.NotEqual(t, first, HashToken("abc124"))
}

func TestSecureCompare(t *testing.T) {
	require.True(t, SecureCompare("same", "same"))
	require.False(t, SecureCompare("same", "different"))
	require.False(t, SecureCompare("same", "sam"))
	require.True(t, SecureCompare("", ""))
}
