package services

import (
	"fmt"
	"time"

	"scratchoff-backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService is the identity provider. Identities are opaque stable strings
// with anonymous-session semantics; the rest of the system treats them as
// uninterpreted keys.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

type IdentityClaims struct {
	Identity string `json:"identity"`
	jwt.RegisteredClaims
}

func NewJWTService(cfg *config.Config) *JWTService {
	return &JWTService{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
	}
}

func (s *JWTService) IssueToken(identity string) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) ValidateToken(tokenString string) (*IdentityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid || claims.Identity == "" {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
