package services

import (
	"context"
	"time"

	"scratchoff-backend/internal/models"

	log "github.com/sirupsen/logrus"
)

// AutoCompleteProgress is the scratch percentage at or above which a held
// card is considered finished in spirit: claiming a new card force-completes
// it instead of rejecting the claim.
const AutoCompleteProgress = 90

// GameEngine enforces the card state machine:
//
//	available -> scratching -> completed
//
// scratching -> available exists only through ResetAllLocks, and completed is
// terminal for the deck's lifetime. Every transition runs as one atomic
// read-modify-write over the whole deck through the store, so a transition
// either commits in full or leaves the document untouched.
type GameEngine struct {
	store            GameStore
	clientStaleAfter time.Duration
	sweepStaleAfter  time.Duration
}

func NewGameEngine(store GameStore, clientStaleAfter, sweepStaleAfter time.Duration) *GameEngine {
	return &GameEngine{
		store:            store,
		clientStaleAfter: clientStaleAfter,
		sweepStaleAfter:  sweepStaleAfter,
	}
}

// GenerateDeck builds a fresh deck and replaces the canonical document.
// Replacement implicitly releases every lock.
func (ge *GameEngine) GenerateDeck(ctx context.Context, cfg models.GameConfig) (*models.GameState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	state := &models.GameState{
		Config: cfg,
		Deck:   GenerateDeck(cfg),
	}

	if err := ge.store.SaveGame(ctx, state); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"total_cards": cfg.TotalCards,
		"tiers":       len(cfg.Tiers),
	}).Info("Generated new deck")

	return state, nil
}

func (ge *GameEngine) GetState(ctx context.Context) (*models.GameState, error) {
	return ge.store.GetGame(ctx)
}

// Claim locks an available card for identity. It returns false without error
// when the claim is rejected: the card is taken, or the identity already
// holds a card that is still truly in progress. A held card at or beyond
// AutoCompleteProgress is force-completed inside the same transaction that
// grants the new claim. A rejected claim commits nothing, including the
// auto-complete.
func (ge *GameEngine) Claim(ctx context.Context, cardID int, identity string) (bool, error) {
	if identity == "" {
		return false, ErrIdentityRequired
	}

	claimed := false
	_, err := ge.store.UpdateGame(ctx, func(state *models.GameState) (bool, error) {
		claimed = false

		target := state.CardByID(cardID)
		if target == nil {
			return false, ErrCardNotFound
		}
		if target.Status != models.CardAvailable {
			return false, nil
		}

		for i := range state.Deck {
			held := &state.Deck[i]
			if held.ID == cardID || held.Status != models.CardScratching || held.LockedBy != identity {
				continue
			}
			if held.Progress < AutoCompleteProgress {
				// One truly-in-progress card per identity.
				return false, nil
			}
			completeCard(held)
		}

		target.Status = models.CardScratching
		target.LockedBy = identity
		target.LockedAt = time.Now().UnixMilli()
		target.Progress = 0

		claimed = true
		return true, nil
	})
	if err != nil {
		return false, err
	}

	return claimed, nil
}

// UpdateProgress records the scratch percentage, clamped to 0..100. The value
// is advisory and deliberately not forced monotonic; last write wins under
// the transaction's serialization.
func (ge *GameEngine) UpdateProgress(ctx context.Context, cardID int, identity string, percent float64) error {
	if identity == "" {
		return ErrIdentityRequired
	}

	_, err := ge.store.UpdateGame(ctx, func(state *models.GameState) (bool, error) {
		card := state.CardByID(cardID)
		if card == nil {
			return false, ErrCardNotFound
		}
		if card.Status != models.CardScratching || card.LockedBy != identity {
			return false, ErrNotCardOwner
		}

		card.Progress = clampPercent(percent)
		return true, nil
	})
	return err
}

// Complete finishes the card held by identity. Completing an already
// completed card is a harmless no-op regardless of who its locker was, since
// the lock fields are reset on completion. The prize outcome was fixed at
// generation time and is not recomputed here.
func (ge *GameEngine) Complete(ctx context.Context, cardID int, identity string) error {
	if identity == "" {
		return ErrIdentityRequired
	}

	_, err := ge.store.UpdateGame(ctx, func(state *models.GameState) (bool, error) {
		card := state.CardByID(cardID)
		if card == nil {
			return false, ErrCardNotFound
		}
		if card.Status == models.CardCompleted {
			return false, nil
		}
		if card.LockedBy != identity {
			return false, ErrNotCardOwner
		}

		completeCard(card)
		return true, nil
	})
	return err
}

// ForceCompleteStale is the crowdsourced sweep entry point: candidates
// reported by any observer are re-validated inside the transaction against
// the client staleness window, so an early or false trigger commits nothing.
func (ge *GameEngine) ForceCompleteStale(ctx context.Context, cardIDs []int) (int, error) {
	return ge.forceCompleteStale(ctx, cardIDs, ge.clientStaleAfter)
}

// SweepStaleCards scans the whole deck with the scheduled-sweep window. It
// runs with no candidate list so reclamation works even when no client is
// connected.
func (ge *GameEngine) SweepStaleCards(ctx context.Context) (int, error) {
	return ge.forceCompleteStale(ctx, nil, ge.sweepStaleAfter)
}

func (ge *GameEngine) forceCompleteStale(ctx context.Context, cardIDs []int, staleAfter time.Duration) (int, error) {
	completed := 0
	_, err := ge.store.UpdateGame(ctx, func(state *models.GameState) (bool, error) {
		completed = 0
		cutoff := time.Now().UnixMilli() - staleAfter.Milliseconds()

		sweep := func(card *models.Card) {
			if card == nil || card.Status != models.CardScratching {
				return
			}
			// A missing locked_at counts as immediately stale.
			if card.LockedAt != 0 && card.LockedAt > cutoff {
				return
			}
			completeCard(card)
			completed++
		}

		if cardIDs == nil {
			for i := range state.Deck {
				sweep(&state.Deck[i])
			}
		} else {
			for _, id := range cardIDs {
				sweep(state.CardByID(id))
			}
		}

		return completed > 0, nil
	})
	if err != nil {
		return 0, err
	}

	if completed > 0 {
		log.WithField("completed", completed).Info("Force-completed stale cards")
	}
	return completed, nil
}

// StaleCardIDs reports cards in an observed state whose lock looks expired.
// Observers feed the result to ForceCompleteStale, which re-validates under
// the transaction; a stale observation is therefore harmless.
func StaleCardIDs(state *models.GameState, staleAfter time.Duration) []int {
	cutoff := time.Now().UnixMilli() - staleAfter.Milliseconds()

	var ids []int
	for i := range state.Deck {
		card := &state.Deck[i]
		if card.Status != models.CardScratching {
			continue
		}
		if card.LockedAt == 0 || card.LockedAt <= cutoff {
			ids = append(ids, card.ID)
		}
	}
	return ids
}

// ResetAllLocks reverts every scratching card to available. Deadlock
// recovery only; normal abandonment goes through the stale sweeps so the
// abandonment penalty applies.
func (ge *GameEngine) ResetAllLocks(ctx context.Context) error {
	_, err := ge.store.UpdateGame(ctx, func(state *models.GameState) (bool, error) {
		changed := false
		for i := range state.Deck {
			card := &state.Deck[i]
			if card.Status != models.CardScratching {
				continue
			}
			card.Status = models.CardAvailable
			card.LockedBy = ""
			card.LockedAt = 0
			card.Progress = 0
			changed = true
		}
		return changed, nil
	})
	return err
}

func (ge *GameEngine) SaveSnapshot(ctx context.Context, cfg models.GameConfig, deck []models.Card) (string, error) {
	return ge.store.SaveSnapshot(ctx, cfg, deck)
}

func (ge *GameEngine) LoadSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	return ge.store.GetSnapshot(ctx, id)
}

func completeCard(card *models.Card) {
	card.Status = models.CardCompleted
	card.IsPlayed = true
	card.IsRevealed = true
	card.Progress = 100
	card.LockedBy = ""
	card.LockedAt = 0
}

func clampPercent(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
