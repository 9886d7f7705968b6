package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scratchoff-backend/internal/config"
	"scratchoff-backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// GameStore is the repository contract the engine runs against. The canonical
// game document is read and written as one unit; UpdateGame is the only
// mutation path for individual cards.
type GameStore interface {
	GetGame(ctx context.Context) (*models.GameState, error)
	SaveGame(ctx context.Context, state *models.GameState) error
	UpdateGame(ctx context.Context, mutate func(state *models.GameState) (bool, error)) (*models.GameState, error)
	SaveSnapshot(ctx context.Context, cfg models.GameConfig, deck []models.Card) (string, error)
	GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error)
}

type RedisService struct {
	client       *redis.Client
	gameKey      string
	eventChannel string
	maxRetries   int
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{
		client:       client,
		gameKey:      fmt.Sprintf(KeyGameState, cfg.GameID),
		eventChannel: fmt.Sprintf(KeyGameEvents, cfg.GameID),
		maxRetries:   cfg.TxMaxRetries,
	}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func (s *RedisService) GetGame(ctx context.Context) (*models.GameState, error) {
	data, err := s.client.Get(ctx, s.gameKey).Result()
	if err == redis.Nil {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game state: %v", err)
	}

	var state models.GameState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %v", err)
	}

	state.Normalize()
	return &state, nil
}

// SaveGame replaces the canonical document wholesale. A full replacement also
// discards every lock, so deck regeneration doubles as a global reset.
func (s *RedisService) SaveGame(ctx context.Context, state *models.GameState) error {
	state.UpdatedAt = time.Now().UnixMilli()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %v", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.gameKey, data, 0)
	pipe.Publish(ctx, s.eventChannel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save game state: %v", err)
	}

	return nil
}

// UpdateGame runs mutate inside a WATCH/MULTI/EXEC optimistic transaction
// over the whole deck. The write is rejected by Redis if the document changed
// between read and write; the attempt is retried up to the configured bound
// before surfacing ErrTxConflict. mutate returns whether it changed the
// state; returning false commits nothing. Errors from mutate abort the
// transaction with no partial effects.
func (s *RedisService) UpdateGame(ctx context.Context, mutate func(state *models.GameState) (bool, error)) (*models.GameState, error) {
	var result *models.GameState

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, s.gameKey).Result()
		if err == redis.Nil {
			return ErrGameNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get game state: %v", err)
		}

		var state models.GameState
		if err := json.Unmarshal([]byte(data), &state); err != nil {
			return fmt.Errorf("failed to unmarshal game state: %v", err)
		}
		state.Normalize()

		changed, err := mutate(&state)
		if err != nil {
			return err
		}
		if !changed {
			result = &state
			return nil
		}

		state.UpdatedAt = time.Now().UnixMilli()
		out, err := json.Marshal(&state)
		if err != nil {
			return fmt.Errorf("failed to marshal game state: %v", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.gameKey, out, 0)
			pipe.Publish(ctx, s.eventChannel, out)
			return nil
		})
		if err == nil {
			result = &state
		}
		return err
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.client.Watch(ctx, txf, s.gameKey)
		if err == nil {
			return result, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return nil, err
	}

	return nil, ErrTxConflict
}

func (s *RedisService) SaveSnapshot(ctx context.Context, cfg models.GameConfig, deck []models.Card) (string, error) {
	snapshot := &models.Snapshot{
		ID:        uuid.New().String(),
		Config:    cfg,
		Deck:      deck,
		CreatedAt: time.Now().UnixMilli(),
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %v", err)
	}

	key := fmt.Sprintf(KeySnapshot, snapshot.ID)
	if err := s.client.Set(ctx, key, data, TTLSnapshot).Err(); err != nil {
		return "", fmt.Errorf("failed to save snapshot: %v", err)
	}

	return snapshot.ID, nil
}

func (s *RedisService) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	key := fmt.Sprintf(KeySnapshot, id)

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %v", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %v", err)
	}

	return &snapshot, nil
}

// Subscribe delivers every committed deck change to onChange until the
// returned unsubscribe function is called. Delivery is push-based and
// eventually consistent; observers must tolerate a slightly stale deck.
func (s *RedisService) Subscribe(ctx context.Context, onChange func(state *models.GameState)) func() {
	pubsub := s.client.Subscribe(ctx, s.eventChannel)

	go func() {
		for msg := range pubsub.Channel() {
			var state models.GameState
			if err := json.Unmarshal([]byte(msg.Payload), &state); err != nil {
				log.WithError(err).Warn("Dropping malformed game event")
				continue
			}
			state.Normalize()
			onChange(&state)
		}
	}()

	return func() {
		pubsub.Close()
	}
}

func (s *RedisService) CheckRateLimit(ctx context.Context, identity, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, identity, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

func (s *RedisService) DeleteGame(ctx context.Context) error {
	return s.client.Del(ctx, s.gameKey).Err()
}

func (s *RedisService) DeleteSnapshot(ctx context.Context, id string) error {
	return s.client.Del(ctx, fmt.Sprintf(KeySnapshot, id)).Err()
}
