package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emor3457/isg-y-netim-sistemi-program/config"
)

func setupJWTConfig(t *testing.T) {
	t.Helper()
	config.JWTKey = []byte("test-signing-key")
	config.JWTExpiration = time.Hour
}

func TestJWTRoundTrip(t *testing.T) {
	setupJWTConfig(t)

	token, err := GenerateJWT("64f1a2b3c4d5e6f708192a3b", "Ayse Demir", "safety_manager", "64f1a2b3c4d5e6f708192a3c")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)

	assert.Equal(t, "64f1a2b3c4d5e6f708192a3b", claims.UserID)
	assert.Equal(t, "Ayse Demir", claims.Name)
	assert.Equal(t, "safety_manager", claims.Role)
	assert.Equal(t, "64f1a2b3c4d5e6f708192a3c", claims.OrganizationID)
}

func TestValidateJWTRejectsTampered(t *testing.T) {
	setupJWTConfig(t)

	token, err := GenerateJWT("64f1a2b3c4d5e6f708192a3b", "Ayse Demir", "viewer", "64f1a2b3c4d5e6f708192a3c")
	require.NoError(t, err)

	_, err = ValidateJWT(token + "x")
	assert.Error(t, err)
}

func TestValidateJWTRejectsWrongKey(t *testing.T) {
	setupJWTConfig(t)

	token, err := GenerateJWT("64f1a2b3c4d5e6f708192a3b", "Ayse Demir", "viewer", "64f1a2b3c4d5e6f708192a3c")
	require.NoError(t, err)

	config.JWTKey = []byte("different-key")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpired(t *testing.T) {
	setupJWTConfig(t)
	config.JWTExpiration = -time.Minute

	token, err := GenerateJWT("64f1a2b3c4d5e6f708192a3b", "Ayse Demir", "viewer", "64f1a2b3c4d5e6f708192a3c")
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
}
