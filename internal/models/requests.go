package models

import "fmt"

type GenerateDeckRequest struct {
	Config GameConfig `json:"config" binding:"required"`
}

type ProgressRequest struct {
	Percent float64 `json:"percent"`
}

type SweepRequest struct {
	CardIDs []int `json:"card_ids" binding:"required"`
}

type SnapshotRequest struct {
	Config GameConfig `json:"config" binding:"required"`
	Deck   []Card     `json:"deck" binding:"required"`
}

func (c *GameConfig) Validate() error {
	if c.TotalCards < 1 {
		return fmt.Errorf("total_cards must be positive")
	}

	winners := 0
	for i, tier := range c.Tiers {
		if tier.Count < 0 {
			return fmt.Errorf("tier %d: count must not be negative", i)
		}
		if tier.Amount < 0 {
			return fmt.Errorf("tier %d: amount must not be negative", i)
		}
		winners += tier.Count
	}

	if winners > c.TotalCards {
		return fmt.Errorf("tier counts (%d) exceed total_cards (%d)", winners, c.TotalCards)
	}

	return nil
}

func (r *SweepRequest) Validate() error {
	if len(r.CardIDs) == 0 {
		return fmt.Errorf("card_ids must not be empty")
	}
	if len(r.CardIDs) > 1000 {
		return fmt.Errorf("too many card ids in one sweep")
	}
	return nil
}
