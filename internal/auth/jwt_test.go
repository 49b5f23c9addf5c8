package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJWTSecretRequiresEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	assert.Error(t, InitJWTSecret())

	t.Setenv("JWT_SECRET", "test-secret")
	assert.NoError(t, InitJWTSecret())
}

func TestGenerateAndVerifyRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, InitJWTSecret())

	tokenString, err := GenerateJWT(42, "sid-abc")
	require.NoError(t, err)

	token, err := VerifyJWT(tokenString)
	require.NoError(t, err)

	userID, sessionID, err := SessionClaims(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, "sid-abc", sessionID)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, InitJWTSecret())

	tokenString, err := GenerateJWT(1, "sid")
	require.NoError(t, err)

	_, err = VerifyJWT(tokenString + "x")
	assert.Error(t, err)
}

func TestVerifyRejectsTokenSignedWithOtherSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	require.NoError(t, InitJWTSecret())

	tokenString, err := GenerateJWT(1, "sid")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-b")
	require.NoError(t, InitJWTSecret())

	_, err = VerifyJWT(tokenString)
	assert.Error(t, err)
}
