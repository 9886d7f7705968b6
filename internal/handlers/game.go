package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"scratchoff-backend/internal/models"
	"scratchoff-backend/internal/services"
)

type GameHandler struct {
	gameEngine   *services.GameEngine
	redisService *services.RedisService
}

func NewGameHandler(gameEngine *services.GameEngine, redisService *services.RedisService) *GameHandler {
	return &GameHandler{
		gameEngine:   gameEngine,
		redisService: redisService,
	}
}

func (h *GameHandler) GetGame(c *gin.Context) {
	state, err := h.gameEngine.GetState(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrGameNotFound) {
			// The client falls back to generating a fresh local deck.
			c.JSON(http.StatusNotFound, gin.H{"error": "No game in progress"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load game"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": state})
}

func (h *GameHandler) GenerateDeck(c *gin.Context) {
	var req models.GenerateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	state, err := h.gameEngine.GenerateDeck(c.Request.Context(), req.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to generate deck",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": state})
}

func (h *GameHandler) ClaimCard(c *gin.Context) {
	identity := c.GetString("identity")

	cardID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card id"})
		return
	}

	// Rate limit: claim spam is the cheapest way to hammer the deck CAS.
	allowed, err := h.redisService.CheckRateLimit(c.Request.Context(), identity, "claim",
		services.DefaultRateLimitClaims, time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many claim attempts. Please wait."})
		return
	}

	claimed, err := h.gameEngine.Claim(c.Request.Context(), cardID, identity)
	if err != nil {
		h.writeCoreError(c, err, "Failed to claim card")
		return
	}

	// A rejected claim is an expected outcome, not a fault: the caller
	// picks another card.
	c.JSON(http.StatusOK, gin.H{"claimed": claimed})
}

func (h *GameHandler) UpdateProgress(c *gin.Context) {
	identity := c.GetString("identity")

	cardID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card id"})
		return
	}

	var req models.ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if err := h.gameEngine.UpdateProgress(c.Request.Context(), cardID, identity, req.Percent); err != nil {
		h.writeCoreError(c, err, "Failed to update progress")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) CompleteCard(c *gin.Context) {
	identity := c.GetString("identity")

	cardID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card id"})
		return
	}

	if err := h.gameEngine.Complete(c.Request.Context(), cardID, identity); err != nil {
		h.writeCoreError(c, err, "Failed to complete card")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) ResetLocks(c *gin.Context) {
	if err := h.gameEngine.ResetAllLocks(c.Request.Context()); err != nil {
		h.writeCoreError(c, err, "Failed to reset locks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SweepStale is the crowdsourced reclamation path: any client that observed
// expired locks reports the candidates here. Staleness is re-validated inside
// the transaction, so a false report completes nothing.
func (h *GameHandler) SweepStale(c *gin.Context) {
	var req models.SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	completed, err := h.gameEngine.ForceCompleteStale(c.Request.Context(), req.CardIDs)
	if err != nil {
		h.writeCoreError(c, err, "Failed to sweep stale cards")
		return
	}

	c.JSON(http.StatusOK, gin.H{"completed": completed})
}

func (h *GameHandler) SaveSnapshot(c *gin.Context) {
	var req models.SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	id, err := h.gameEngine.SaveSnapshot(c.Request.Context(), req.Config, req.Deck)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save snapshot"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshot_id": id})
}

func (h *GameHandler) GetSnapshot(c *gin.Context) {
	snapshot, err := h.gameEngine.LoadSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrSnapshotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Snapshot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load snapshot"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshot": snapshot})
}

func (h *GameHandler) writeCoreError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, services.ErrGameNotFound), errors.Is(err, services.ErrCardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotCardOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrIdentityRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrTxConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   msg,
			"details": err.Error(),
		})
	}
}
