package domain

// MarketCreatedPayload is the event payload for market.created events
type MarketCreatedPayload struct {
	MarketID    uint64   `json:"market_id"`
	Asset       string   `json:"asset"`
	MaxBet      uint64   `json:"max_bet"`
	RoundLength int64    `json:"round_length"`
	Creator     Identity `json:"creator"`
	Timestamp   int64    `json:"timestamp"`
}

// MarketUpdatedPayload is the event payload for market.updated events
type MarketUpdatedPayload struct {
	MarketID  uint64   `json:"market_id"`
	Field     string   `json:"field"`
	Value     any      `json:"value"`
	Caller    Identity `json:"caller"`
	Timestamp int64    `json:"timestamp"`
}

// BetPlacedPayload is the event payload for bet.placed events
type BetPlacedPayload struct {
	MarketID   uint64   `json:"market_id"`
	RoundID    uint64   `json:"round_id"`
	OutcomeID  uint64   `json:"outcome_id"`
	Amount     uint64   `json:"amount"`
	PositionID uint64   `json:"position_id"`
	Caller     Identity `json:"caller"`
	Timestamp  int64    `json:"timestamp"`
}

// RoundResolvedPayload is the event payload for round.resolved events
type RoundResolvedPayload struct {
	MarketID  uint64   `json:"market_id"`
	RoundID   uint64   `json:"round_id"`
	Winners   []uint64 `json:"winners"`
	Overwrote bool     `json:"overwrote"`
	Caller    Identity `json:"caller"`
	Timestamp int64    `json:"timestamp"`
}

// PositionSettledPayload is the event payload for position.settled events
type PositionSettledPayload struct {
	PositionID   uint64   `json:"position_id"`
	MarketID     uint64   `json:"market_id"`
	Payout       uint64   `json:"payout"`
	Fee          uint64   `json:"fee"`
	HolderAmount uint64   `json:"holder_amount"`
	Caller       Identity `json:"caller"`
	Timestamp    int64    `json:"timestamp"`
}

// GovernanceUpdatedPayload is the event payload for governance.updated events
type GovernanceUpdatedPayload struct {
	Field     string   `json:"field"`
	Value     any      `json:"value"`
	Caller    Identity `json:"caller"`
	Timestamp int64    `json:"timestamp"`
}

// PoolEmergencyPayload is the event payload for pool.emergency events
type PoolEmergencyPayload struct {
	MarketID  uint64   `json:"market_id"`
	Direction string   `json:"direction"` // "withdraw" or "deposit"
	Amount    uint64   `json:"amount"`
	Caller    Identity `json:"caller"`
	Timestamp int64    `json:"timestamp"`
}
