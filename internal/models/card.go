package models

type CardStatus string

const (
	CardAvailable  CardStatus = "available"
	CardScratching CardStatus = "scratching"
	CardCompleted  CardStatus = "completed"
)

// PrizeTier declares that Count cards in the deck each pay Amount in total.
type PrizeTier struct {
	Count  int   `json:"count" redis:"count"`
	Amount int64 `json:"amount" redis:"amount"`
}

type GameConfig struct {
	Tiers      []PrizeTier `json:"tiers" redis:"tiers"`
	TotalCards int         `json:"total_cards" redis:"total_cards"`

	WinMessage  string `json:"win_message" redis:"win_message"`
	LoseMessage string `json:"lose_message" redis:"lose_message"`

	// Presentation-only fields, stored and served verbatim.
	CoverImage   string `json:"cover_image,omitempty" redis:"cover_image"`
	ScratchSound string `json:"scratch_sound,omitempty" redis:"scratch_sound"`
	WinSound     string `json:"win_sound,omitempty" redis:"win_sound"`
}

// GameRow is one my-number-vs-house-number comparison on a card face.
// My and House are 1..9 and never equal: a winning row has My > House,
// a losing row My < House. Prize on a losing row is a cosmetic decoy and
// never contributes to the card total.
type GameRow struct {
	My    int   `json:"my"`
	House int   `json:"house"`
	Prize int64 `json:"prize"`
	IsWin bool  `json:"is_win"`
}

type Card struct {
	ID     int        `json:"id"`
	IsWin  bool       `json:"is_win"`
	Status CardStatus `json:"status"`

	Games      []GameRow `json:"games"`
	BonusPrize int64     `json:"bonus_prize"`
	IsBonusWin bool      `json:"is_bonus_win"`

	// Fixed at generation time; never recomputed on completion.
	TotalPrizeAmount int64 `json:"total_prize_amount"`

	Progress float64 `json:"progress"`
	LockedBy string  `json:"locked_by,omitempty"`
	LockedAt int64   `json:"locked_at,omitempty"` // epoch millis

	IsPlayed   bool `json:"is_played"`
	IsRevealed bool `json:"is_revealed"`
}

// GameState is the single canonical document for one running game.
type GameState struct {
	Config    GameConfig `json:"config"`
	Deck      []Card     `json:"deck"`
	UpdatedAt int64      `json:"updated_at"`
}

// Snapshot is an immutable, independently addressable copy of a deck.
type Snapshot struct {
	ID        string     `json:"id"`
	Config    GameConfig `json:"config"`
	Deck      []Card     `json:"deck"`
	CreatedAt int64      `json:"created_at"`
}

func (s *GameState) CardByID(id int) *Card {
	for i := range s.Deck {
		if s.Deck[i].ID == id {
			return &s.Deck[i]
		}
	}
	return nil
}
