package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJWT(t *testing.T) {
	InitJWT("test-secret")

	t.Run("RoundTrip", func(t *testing.T) {
		token, err := GenerateJWT(42, "admin@example.com")
		require.NoError(t, err)

		claims, err := ValidateJWT(token)
		require.NoError(t, err)
		require.Equal(t, 42, claims.UserID)
		require.Equal(t, "admin@example.com", claims.Email)
	})

	t.Run("TamperedTokenFails", func(t *testing.T) {
		token, err := GenerateJWT(42, "admin@example.com")
		require.NoError(t, err)

		_, err = ValidateJWT(token + "x")
		require.Error(t, err)
	})

	t.Run("WrongSecretFails", func(t *testing.T) {
		token, err := GenerateJWT(42, "admin@example.com")
		require.NoError(t, err)

		InitJWT("another-secret")
		defer InitJWT("test-secret")

		_, err = ValidateJWT(token)
		require.Error(t, err)
	})
}
