package services

import "time"

const (
	KeyGameState  = "game:%s:state"
	KeyGameEvents = "game:%s:events"
	KeySnapshot   = "snapshot:%s"
	KeyRateLimit  = "ratelimit:%s:%s"

	TTLSnapshot = 30 * 24 * time.Hour // 30 days

	DefaultRateLimitClaims = 60 // Max 60 claim attempts per minute
)
