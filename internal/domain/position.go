package domain

// Position is a single accepted bet. Everything except Open is immutable.
type Position struct {
	ID        uint64   `json:"id"`
	MarketID  uint64   `json:"market_id"`
	OutcomeID uint64   `json:"outcome_id"`
	RoundID   uint64   `json:"round_id"`
	Amount    uint64   `json:"amount"`
	Holder    Identity `json:"holder"`
	PlacedAt  int64    `json:"placed_at"`
	Open      bool     `json:"open"`
}

// Settlement describes how a claimed payout was split
type Settlement struct {
	PositionID   uint64   `json:"position_id"`
	Holder       Identity `json:"holder"`
	Payout       uint64   `json:"payout"`
	Fee          uint64   `json:"fee"`
	HolderAmount uint64   `json:"holder_amount"`
	SettledAt    int64    `json:"settled_at"`
}
