package service

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wellspring-app/nutrition-service/internal/types"
)

// TokenService validates bearer tokens issued by the main journal backend
// using the shared HMAC secret. Authentication is fully delegated: this
// service never issues tokens or stores users.
type TokenService struct {
	jwtSecret string
}

// NewTokenService creates a token validator with the shared secret.
func NewTokenService(jwtSecret string) *TokenService {
	return &TokenService{jwtSecret: jwtSecret}
}

// ValidateToken parses and verifies a JWT, returning its claims.
func (s *TokenService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}

	username, _ := claims["username"].(string)

	return &types.TokenClaims{
		UserID:   userID,
		Username: username,
	}, nil
}
