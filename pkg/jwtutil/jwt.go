package jwtutil

import (
	"errors"
	"time"

	"catalog-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

var secret = []byte("defaultsecretkey")

// AdminClaims represents the JWT claims of a back office user
type AdminClaims struct {
	Email  string `json:"email"`
	UserID uint   `json:"user_id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Initialize sets the signing key shared with the issuing service
func Initialize(cfg *config.JWTConfig) {
	if cfg != nil && cfg.SigningKey != "" {
		secret = []byte(cfg.SigningKey)
	}
}

// GenerateToken signs claims valid for ttl
func GenerateToken(userID uint, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Email:  email,
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AdminClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
