package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"scratchoff-backend/internal/config"
	"scratchoff-backend/internal/handlers"
	"scratchoff-backend/internal/middleware"
	"scratchoff-backend/internal/models"
	"scratchoff-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisService.Close()

	jwtService := services.NewJWTService(cfg)
	gameEngine := services.NewGameEngine(redisService, cfg.ClientStaleAfter, cfg.SweepStaleAfter)

	ctx := context.Background()

	reclaimer := services.NewReclaimer(gameEngine, cfg.SweepInterval)
	if err := reclaimer.Start(ctx); err != nil {
		log.Fatalf("Failed to start reclaimer: %v", err)
	}
	defer reclaimer.Stop()

	wsHandler := handlers.NewWebSocketHandler()

	// Every committed deck change fans out to connected clients. The server
	// also runs the crowdsourced sweep on each notification, so thin clients
	// that never report stale locks still benefit from it.
	unsubscribe := redisService.Subscribe(ctx, func(state *models.GameState) {
		wsHandler.BroadcastState(state)

		if ids := services.StaleCardIDs(state, cfg.ClientStaleAfter); len(ids) > 0 {
			if _, err := gameEngine.ForceCompleteStale(ctx, ids); err != nil {
				log.WithError(err).Warn("Notification-driven sweep failed")
			}
		}
	})
	defer unsubscribe()

	authHandler := handlers.NewAuthHandler(jwtService)
	gameHandler := handlers.NewGameHandler(gameEngine, redisService)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/anonymous", authHandler.Anonymous)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/ws", wsHandler.HandleWebSocket)

		game := protected.Group("/game")
		{
			game.GET("", gameHandler.GetGame)
			game.POST("/deck", gameHandler.GenerateDeck)

			game.POST("/cards/:id/claim", gameHandler.ClaimCard)
			game.POST("/cards/:id/progress", gameHandler.UpdateProgress)
			game.POST("/cards/:id/complete", gameHandler.CompleteCard)

			game.POST("/locks/reset", gameHandler.ResetLocks)
			game.POST("/sweep", gameHandler.SweepStale)
		}

		snapshots := protected.Group("/snapshots")
		{
			snapshots.POST("", gameHandler.SaveSnapshot)
			snapshots.GET("/:id", gameHandler.GetSnapshot)
		}
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Infof("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
