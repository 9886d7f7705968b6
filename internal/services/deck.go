package services

import (
	"math/rand"

	"scratchoff-backend/internal/models"
)

// Prize slots on a card face: two comparison rows plus the bonus spot.
const (
	slotRowOne = iota
	slotRowTwo
	slotBonus
	slotCount
)

var decoyAmounts = []int64{5, 10, 20, 25, 50, 100, 250, 500}

// GenerateDeck produces the full deck for a config: one winning card per unit
// of tier count, padded with losers up to TotalCards, shuffled, with ids
// assigned by final position so the id is a grid label rather than a
// generation-order label.
func GenerateDeck(cfg models.GameConfig) []models.Card {
	deck := make([]models.Card, 0, cfg.TotalCards)

	for _, tier := range cfg.Tiers {
		if tier.Amount <= 0 {
			continue
		}
		for i := 0; i < tier.Count && len(deck) < cfg.TotalCards; i++ {
			deck = append(deck, newWinningCard(tier.Amount))
		}
	}

	for len(deck) < cfg.TotalCards {
		deck = append(deck, newLosingCard())
	}

	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	for i := range deck {
		deck[i].ID = i + 1
	}

	return deck
}

func newWinningCard(amount int64) models.Card {
	var prizes [slotCount]int64

	// Sometimes the amount is split across two slots; the first part takes
	// the rounding remainder so the parts always sum to the tier amount.
	if amount > 1 && rand.Intn(2) == 0 {
		first := rand.Intn(slotCount)
		second := rand.Intn(slotCount)
		for second == first {
			second = rand.Intn(slotCount)
		}
		half := amount / 2
		prizes[first] = amount - half
		prizes[second] = half
	} else {
		prizes[rand.Intn(slotCount)] = amount
	}

	card := models.Card{
		Status:           models.CardAvailable,
		IsWin:            true,
		TotalPrizeAmount: amount,
		Games:            make([]models.GameRow, 2),
	}

	for i := 0; i < 2; i++ {
		if prizes[i] > 0 {
			card.Games[i] = winningRow(prizes[i])
		} else {
			card.Games[i] = losingRow(decoyAmount(amount))
		}
	}

	if prizes[slotBonus] > 0 {
		card.BonusPrize = prizes[slotBonus]
		card.IsBonusWin = true
	} else {
		card.BonusPrize = decoyAmount(amount)
	}

	return card
}

func newLosingCard() models.Card {
	return models.Card{
		Status:     models.CardAvailable,
		Games:      []models.GameRow{losingRow(decoyAmount(0)), losingRow(decoyAmount(0))},
		BonusPrize: decoyAmount(0),
	}
}

// winningRow draws my > house, both 1..9, never equal.
func winningRow(prize int64) models.GameRow {
	house := rand.Intn(8) + 1 // 1..8
	my := house + 1 + rand.Intn(9-house)
	return models.GameRow{My: my, House: house, Prize: prize, IsWin: true}
}

// losingRow draws my < house. The decoy prize is cosmetic only.
func losingRow(decoy int64) models.GameRow {
	my := rand.Intn(8) + 1
	house := my + 1 + rand.Intn(9-my)
	return models.GameRow{My: my, House: house, Prize: decoy, IsWin: false}
}

// decoyAmount returns a plausible display amount that never matches the real
// target, so a losing row cannot be mistaken for the winning one.
func decoyAmount(avoid int64) int64 {
	for {
		v := decoyAmounts[rand.Intn(len(decoyAmounts))]
		if v != avoid {
			return v
		}
	}
}
