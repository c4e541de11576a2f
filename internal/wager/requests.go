package wager

// CreateMarketRequest describes a new market. A zero RoundLength selects the
// service default.
type CreateMarketRequest struct {
	Asset       string `json:"asset" validate:"required,asset"`
	MaxBet      uint64 `json:"max_bet" validate:"gt=0"`
	RoundLength int64  `json:"round_length,omitempty" validate:"gte=0"`
}

// PlaceBetRequest stakes Amount on OutcomeID for RoundID of MarketID
type PlaceBetRequest struct {
	MarketID  uint64 `json:"market_id"`
	RoundID   uint64 `json:"round_id"`
	OutcomeID uint64 `json:"outcome_id"`
	Amount    uint64 `json:"amount" validate:"gt=0"`
}
