package services_test

import (
	"testing"
	"time"

	"scratchoff-backend/internal/config"
	"scratchoff-backend/internal/services"
)

func TestJWTRoundtrip(t *testing.T) {
	jwtService := services.NewJWTService(&config.Config{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	})

	token, err := jwtService.IssueToken("player_abc")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.Identity != "player_abc" {
		t.Errorf("Expected identity player_abc, got %s", claims.Identity)
	}

	if _, err := jwtService.ValidateToken(token + "x"); err == nil {
		t.Error("Tampered token should fail validation")
	}

	other := services.NewJWTService(&config.Config{
		JWTSecret: "different-secret",
		TokenTTL:  time.Hour,
	})
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("Token signed with another secret should fail validation")
	}
}
