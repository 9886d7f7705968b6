package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"scratchoff-backend/internal/services"
)

type AuthHandler struct {
	jwtService *services.JWTService
}

func NewAuthHandler(jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
	}
}

// Anonymous mints a fresh opaque identity and a token for it. Clients keep
// the token for the session's lifetime; losing it means losing the identity,
// which is acceptable under anonymous-session semantics.
func (h *AuthHandler) Anonymous(c *gin.Context) {
	identity := "player_" + uuid.New().String()

	token, err := h.jwtService.IssueToken(identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"identity": identity,
		"token":    token,
	})
}
