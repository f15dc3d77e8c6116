package users_services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_GetUserIDFromToken_WithIssuedToken_ReturnsSubject(t *testing.T) {
	service := NewAuthService("secret")
	userID := uuid.New()

	token, err := service.IssueToken(userID, time.Hour)
	require.NoError(t, err)

	parsed, err := service.GetUserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func Test_GetUserIDFromToken_WithExpiredToken_ReturnsError(t *testing.T) {
	service := NewAuthService("secret")

	token, err := service.IssueToken(uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = service.GetUserIDFromToken(token)
	assert.Error(t, err)
}

func Test_GetUserIDFromToken_WithWrongSecret_ReturnsError(t *testing.T) {
	issuer := NewAuthService("secret-a")
	verifier := NewAuthService("secret-b")

	token, err := issuer.IssueToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = verifier.GetUserIDFromToken(token)
	assert.Error(t, err)
}

func Test_GetUserIDFromToken_WithGarbageToken_ReturnsError(t *testing.T) {
	service := NewAuthService("secret")

	_, err := service.GetUserIDFromToken("not-a-jwt")
	assert.Error(t, err)
}
