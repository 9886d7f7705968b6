package services_test

import (
	"testing"

	"scratchoff-backend/internal/models"
	"scratchoff-backend/internal/services"
)

func TestGenerateDeckPrizeDistribution(t *testing.T) {
	cfg := models.GameConfig{
		TotalCards: 50,
		Tiers: []models.PrizeTier{
			{Count: 3, Amount: 100},
			{Count: 2, Amount: 250},
			{Count: 1, Amount: 1000},
		},
	}

	deck := services.GenerateDeck(cfg)

	if len(deck) != cfg.TotalCards {
		t.Fatalf("Expected %d cards, got %d", cfg.TotalCards, len(deck))
	}

	prizes := make(map[int64]int)
	for _, card := range deck {
		if card.TotalPrizeAmount > 0 {
			prizes[card.TotalPrizeAmount]++
		}
	}

	want := map[int64]int{100: 3, 250: 2, 1000: 1}
	for amount, count := range want {
		if prizes[amount] != count {
			t.Errorf("Expected %d cards worth %d, got %d", count, amount, prizes[amount])
		}
	}
	if len(prizes) != len(want) {
		t.Errorf("Unexpected prize amounts in deck: %v", prizes)
	}
}

func TestGenerateDeckCardInvariants(t *testing.T) {
	cfg := models.GameConfig{
		TotalCards: 100,
		Tiers:      []models.PrizeTier{{Count: 20, Amount: 100}, {Count: 5, Amount: 333}},
	}

	deck := services.GenerateDeck(cfg)

	seen := make(map[int]bool)
	for _, card := range deck {
		if card.Status != models.CardAvailable {
			t.Fatalf("Card %d: new cards must be available, got %s", card.ID, card.Status)
		}
		if card.ID < 1 || card.ID > cfg.TotalCards || seen[card.ID] {
			t.Fatalf("Card ids must be a permutation of 1..%d, saw %d", cfg.TotalCards, card.ID)
		}
		seen[card.ID] = true

		if len(card.Games) != 2 {
			t.Fatalf("Card %d: expected 2 rows, got %d", card.ID, len(card.Games))
		}

		var rowTotal int64
		for _, row := range card.Games {
			if row.My < 1 || row.My > 9 || row.House < 1 || row.House > 9 {
				t.Errorf("Card %d: row numbers out of 1..9: %d vs %d", card.ID, row.My, row.House)
			}
			if row.My == row.House {
				t.Errorf("Card %d: row draw not allowed", card.ID)
			}
			if row.IsWin && row.My <= row.House {
				t.Errorf("Card %d: winning row must have my > house", card.ID)
			}
			if !row.IsWin {
				if row.My >= row.House {
					t.Errorf("Card %d: losing row must have my < house", card.ID)
				}
				if row.Prize == 0 {
					t.Errorf("Card %d: losing row should show a nonzero decoy", card.ID)
				}
				if card.IsWin && row.Prize == card.TotalPrizeAmount {
					t.Errorf("Card %d: decoy must not equal the real amount", card.ID)
				}
			} else {
				rowTotal += row.Prize
			}
		}

		if card.IsBonusWin {
			rowTotal += card.BonusPrize
		} else if card.IsWin && card.BonusPrize == card.TotalPrizeAmount {
			t.Errorf("Card %d: bonus decoy must not equal the real amount", card.ID)
		}

		if rowTotal != card.TotalPrizeAmount {
			t.Errorf("Card %d: won slots sum to %d, want %d", card.ID, rowTotal, card.TotalPrizeAmount)
		}

		if card.IsWin != (card.TotalPrizeAmount > 0) {
			t.Errorf("Card %d: is_win must track a positive total", card.ID)
		}
	}
}

func TestGenerateDeckExampleScenario(t *testing.T) {
	cfg := models.GameConfig{
		TotalCards: 4,
		Tiers:      []models.PrizeTier{{Count: 1, Amount: 100}},
	}

	deck := services.GenerateDeck(cfg)

	if len(deck) != 4 {
		t.Fatalf("Expected 4 cards, got %d", len(deck))
	}

	winners, losers := 0, 0
	for _, card := range deck {
		switch card.TotalPrizeAmount {
		case 100:
			winners++
		case 0:
			losers++
		default:
			t.Errorf("Unexpected prize amount %d", card.TotalPrizeAmount)
		}
	}

	if winners != 1 || losers != 3 {
		t.Errorf("Expected 1 winner and 3 losers, got %d and %d", winners, losers)
	}
}
