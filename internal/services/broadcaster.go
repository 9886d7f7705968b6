package services

import "scratchoff-backend/internal/models"

type Broadcaster interface {
	BroadcastState(state *models.GameState)
}
