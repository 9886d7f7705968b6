package models

// Normalize upgrades documents written by older deployments to the current
// schema. Early decks carried only the is_played flag; status is derived from
// it when absent. It also repairs lock fields that cannot be valid for the
// card's status, so consumers never see a completed card that still looks
// locked.
func (s *GameState) Normalize() {
	for i := range s.Deck {
		card := &s.Deck[i]

		if card.Status == "" {
			if card.IsPlayed {
				card.Status = CardCompleted
			} else {
				card.Status = CardAvailable
			}
		}

		switch card.Status {
		case CardCompleted:
			card.IsPlayed = true
			card.IsRevealed = true
			card.Progress = 100
			card.LockedBy = ""
			card.LockedAt = 0
		case CardAvailable:
			card.IsPlayed = false
			card.LockedBy = ""
			card.LockedAt = 0
			card.Progress = 0
		}
		// A scratching card with a missing locked_at is left alone here;
		// the stale sweeps treat it as immediately reclaimable.
	}
}
