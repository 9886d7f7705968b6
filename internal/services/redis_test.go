package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"scratchoff-backend/internal/config"
	"scratchoff-backend/internal/models"
	"scratchoff-backend/internal/services"
)

func setupTestRedis(t *testing.T) *services.RedisService {
	t.Helper()

	cfg := &config.Config{
		RedisURL:     "localhost:6379",
		RedisPass:    "",
		RedisDB:      0,
		GameID:       "test_scratchoff",
		TxMaxRetries: 16,
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return redisService
}

func TestRedisGameRoundtrip(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	ctx := context.Background()
	defer redisService.DeleteGame(ctx)

	cfg := models.GameConfig{
		TotalCards: 9,
		Tiers:      []models.PrizeTier{{Count: 2, Amount: 100}},
		WinMessage: "You won!",
	}
	state := &models.GameState{
		Config: cfg,
		Deck:   services.GenerateDeck(cfg),
	}

	if err := redisService.SaveGame(ctx, state); err != nil {
		t.Fatalf("Failed to save game: %v", err)
	}

	loaded, err := redisService.GetGame(ctx)
	if err != nil {
		t.Fatalf("Failed to load game: %v", err)
	}

	if len(loaded.Deck) != 9 {
		t.Errorf("Expected 9 cards, got %d", len(loaded.Deck))
	}
	if loaded.Config.WinMessage != "You won!" {
		t.Errorf("Config should roundtrip, got %q", loaded.Config.WinMessage)
	}
	if loaded.UpdatedAt == 0 {
		t.Error("SaveGame should stamp updated_at")
	}
}

func TestRedisGameNotFound(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	ctx := context.Background()
	redisService.DeleteGame(ctx)

	if _, err := redisService.GetGame(ctx); err != services.ErrGameNotFound {
		t.Errorf("Expected ErrGameNotFound, got %v", err)
	}

	_, err := redisService.UpdateGame(ctx, func(state *models.GameState) (bool, error) {
		return false, nil
	})
	if err != services.ErrGameNotFound {
		t.Errorf("UpdateGame on a missing document should fail, got %v", err)
	}
}

func TestRedisClaimRace(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	ctx := context.Background()
	defer redisService.DeleteGame(ctx)

	engine := services.NewGameEngine(redisService, 45*time.Second, time.Minute)

	cfg := models.GameConfig{
		TotalCards: 4,
		Tiers:      []models.PrizeTier{{Count: 1, Amount: 100}},
	}
	if _, err := engine.GenerateDeck(ctx, cfg); err != nil {
		t.Fatalf("Failed to generate deck: %v", err)
	}

	identities := []string{"racer_a", "racer_b", "racer_c", "racer_d"}
	results := make([]bool, len(identities))

	var wg sync.WaitGroup
	for i, identity := range identities {
		wg.Add(1)
		go func(i int, identity string) {
			defer wg.Done()
			claimed, err := engine.Claim(ctx, 1, identity)
			if err != nil {
				t.Errorf("Claim by %s errored: %v", identity, err)
				return
			}
			results[i] = claimed
		}(i, identity)
	}
	wg.Wait()

	winners := 0
	for _, claimed := range results {
		if claimed {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("Exactly one racer must win the claim, got %d", winners)
	}

	state, err := redisService.GetGame(ctx)
	if err != nil {
		t.Fatal(err)
	}
	card := state.CardByID(1)
	if card.Status != models.CardScratching || card.LockedBy == "" {
		t.Errorf("Card should end scratching with one owner, got %+v", card)
	}
}

func TestRedisSnapshots(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	ctx := context.Background()

	cfg := models.GameConfig{
		TotalCards: 4,
		Tiers:      []models.PrizeTier{{Count: 1, Amount: 100}},
	}
	deck := services.GenerateDeck(cfg)

	id, err := redisService.SaveSnapshot(ctx, cfg, deck)
	if err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}
	defer redisService.DeleteSnapshot(ctx, id)

	snapshot, err := redisService.GetSnapshot(ctx, id)
	if err != nil {
		t.Fatalf("Failed to load snapshot: %v", err)
	}

	if snapshot.ID != id || len(snapshot.Deck) != 4 {
		t.Errorf("Snapshot should roundtrip, got id=%s cards=%d", snapshot.ID, len(snapshot.Deck))
	}
	if snapshot.CreatedAt == 0 {
		t.Error("Snapshot should carry created_at")
	}

	if _, err := redisService.GetSnapshot(ctx, "does-not-exist"); err != services.ErrSnapshotNotFound {
		t.Errorf("Expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestRedisSubscribeDeliversChanges(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	ctx := context.Background()
	defer redisService.DeleteGame(ctx)

	received := make(chan *models.GameState, 8)
	unsubscribe := redisService.Subscribe(ctx, func(state *models.GameState) {
		received <- state
	})
	defer unsubscribe()

	// Subscription setup is asynchronous.
	time.Sleep(100 * time.Millisecond)

	cfg := models.GameConfig{
		TotalCards: 4,
		Tiers:      []models.PrizeTier{{Count: 1, Amount: 100}},
	}
	state := &models.GameState{Config: cfg, Deck: services.GenerateDeck(cfg)}
	if err := redisService.SaveGame(ctx, state); err != nil {
		t.Fatalf("Failed to save game: %v", err)
	}

	select {
	case got := <-received:
		if len(got.Deck) != 4 {
			t.Errorf("Expected pushed state with 4 cards, got %d", len(got.Deck))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a change notification")
	}
}
