package jwtauth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "heirloom/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	service := NewService("test-signing-key", "heirloom-test")
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
}

func TestValidateToken(t *testing.T) {
	service := NewService("test-signing-key", "heirloom-test")

	t.Run("expired token is unauthorized", func(t *testing.T) {
		token, err := service.GenerateAccessToken(uuid.New(), -time.Minute)
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		other := NewService("different-key", "heirloom-test")
		token, err := other.GenerateAccessToken(uuid.New(), time.Hour)
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := service.ValidateToken("not.a.token")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
