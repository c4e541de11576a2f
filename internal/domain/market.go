package domain

import (
	"math"
	"math/bits"
	"slices"
)

// Market is a betting venue bound to one asset pool. Totals are kept per
// outcome (all-time, across every round) and per round.
type Market struct {
	ID           uint64 `json:"id"`
	Asset        string `json:"asset"`
	MaxBet       uint64 `json:"max_bet"`
	CreatedAt    int64  `json:"created_at"`
	RoundLength  int64  `json:"round_length"`
	CurrentRound uint64 `json:"current_round"`
	Paused       bool   `json:"paused"`

	// Outcomes lists every outcome id ever bet on, in first-bet order
	Outcomes []uint64 `json:"outcomes"`

	OutcomeTotals   map[uint64]uint64   `json:"outcome_totals"`
	RoundTotals     map[uint64]uint64   `json:"round_totals"`
	RoundWeights    map[uint64]uint64   `json:"round_weights"`
	Resolutions     map[uint64]int64    `json:"resolutions"`
	WinningOutcomes map[uint64][]uint64 `json:"winning_outcomes"`
}

// NewMarket returns a market with empty counters
func NewMarket(id uint64, asset string, maxBet uint64, createdAt, roundLength int64) *Market {
	return &Market{
		ID:              id,
		Asset:           asset,
		MaxBet:          maxBet,
		CreatedAt:       createdAt,
		RoundLength:     roundLength,
		OutcomeTotals:   make(map[uint64]uint64),
		RoundTotals:     make(map[uint64]uint64),
		RoundWeights:    make(map[uint64]uint64),
		Resolutions:     make(map[uint64]int64),
		WinningOutcomes: make(map[uint64][]uint64),
	}
}

// Weight returns the weight for a round and whether it was set explicitly.
// Unset rounds weigh Scale (1.0).
func (m *Market) Weight(round uint64) (uint64, bool) {
	if w, ok := m.RoundWeights[round]; ok {
		return w, true
	}
	return Scale, false
}

// IsResolved reports whether the round has a resolution entry
func (m *Market) IsResolved(round uint64) bool {
	_, ok := m.Resolutions[round]
	return ok
}

// IsWinner reports whether outcome is among the round's declared winners
func (m *Market) IsWinner(round, outcome uint64) bool {
	return slices.Contains(m.WinningOutcomes[round], outcome)
}

// RoundDeadline is the first second at which bets on round are rejected:
// the start of the following round. Deadlines past the int64 range saturate
// to NoDeadline.
func (m *Market) RoundDeadline(round uint64) int64 {
	if round == math.MaxUint64 || m.RoundLength < 0 {
		return NoDeadline
	}
	hi, span := bits.Mul64(round+1, uint64(m.RoundLength))
	if hi != 0 || span > math.MaxInt64 {
		return NoDeadline
	}
	if m.CreatedAt > 0 && int64(span) > math.MaxInt64-m.CreatedAt {
		return NoDeadline
	}
	return m.CreatedAt + int64(span)
}

// HasOutcome reports whether outcome has been registered on this market
func (m *Market) HasOutcome(outcome uint64) bool {
	return slices.Contains(m.Outcomes, outcome)
}

// Clone returns a deep copy so callers can mutate without aliasing store state
func (m *Market) Clone() *Market {
	if m == nil {
		return nil
	}
	c := *m
	c.Outcomes = slices.Clone(m.Outcomes)
	c.OutcomeTotals = cloneMap(m.OutcomeTotals)
	c.RoundTotals = cloneMap(m.RoundTotals)
	c.RoundWeights = cloneMap(m.RoundWeights)
	c.Resolutions = cloneMap(m.Resolutions)
	c.WinningOutcomes = make(map[uint64][]uint64, len(m.WinningOutcomes))
	for k, v := range m.WinningOutcomes {
		c.WinningOutcomes[k] = slices.Clone(v)
	}
	return &c
}

func cloneMap[V any](src map[uint64]V) map[uint64]V {
	dst := make(map[uint64]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// RoundStatus is a read-only view of one round of a market
type RoundStatus struct {
	MarketID   uint64   `json:"market_id"`
	RoundID    uint64   `json:"round_id"`
	Total      uint64   `json:"total"`
	Weight     uint64   `json:"weight"`
	WeightSet  bool     `json:"weight_set"`
	Deadline   int64    `json:"deadline"`
	Resolved   bool     `json:"resolved"`
	ResolvedAt int64    `json:"resolved_at,omitempty"`
	Winners    []uint64 `json:"winners,omitempty"`
}
