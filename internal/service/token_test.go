package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenService_ValidateToken(t *testing.T) {
	svc := NewTokenService("test-secret")
	userID := uuid.New()

	t.Run("should accept a valid token", func(t *testing.T) {
		tokenString := signTestToken(t, "test-secret", jwt.MapClaims{
			"user_id":  userID.String(),
			"username": "casey",
			"exp":      time.Now().Add(time.Hour).Unix(),
		})

		claims, err := svc.ValidateToken(tokenString)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "casey", claims.Username)
	})

	t.Run("should reject a token signed with another secret", func(t *testing.T) {
		tokenString := signTestToken(t, "wrong-secret", jwt.MapClaims{
			"user_id": userID.String(),
			"exp":     time.Now().Add(time.Hour).Unix(),
		})

		_, err := svc.ValidateToken(tokenString)
		assert.Error(t, err)
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		tokenString := signTestToken(t, "test-secret", jwt.MapClaims{
			"user_id": userID.String(),
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})

		_, err := svc.ValidateToken(tokenString)
		assert.Error(t, err)
	})

	t.Run("should reject missing user id claim", func(t *testing.T) {
		tokenString := signTestToken(t, "test-secret", jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := svc.ValidateToken(tokenString)
		assert.Error(t, err)
	})
}
