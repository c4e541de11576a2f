package postgres

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/osse101/roundpool/internal/domain"
)

// Amounts and ids travel as decimal text so the full uint64 range survives
// the NUMERIC(20, 0) columns.

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseU64(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value %q: %w", s, err)
	}
	return v, nil
}

func identityFromBytes(b []byte) domain.Identity {
	return common.BytesToAddress(b)
}

func identitiesToBytes(ids []domain.Identity) [][]byte {
	out := make([][]byte, len(ids))
	for i, id := range ids {
		out[i] = id.Bytes()
	}
	return out
}

func identitiesFromBytes(bs [][]byte) []domain.Identity {
	out := make([]domain.Identity, len(bs))
	for i, b := range bs {
		out[i] = identityFromBytes(b)
	}
	return out
}

// marketState is the JSONB document holding a market's per-outcome and
// per-round maps
type marketState struct {
	Outcomes        []uint64            `json:"outcomes"`
	OutcomeTotals   map[uint64]uint64   `json:"outcome_totals"`
	RoundTotals     map[uint64]uint64   `json:"round_totals"`
	RoundWeights    map[uint64]uint64   `json:"round_weights"`
	Resolutions     map[uint64]int64    `json:"resolutions"`
	WinningOutcomes map[uint64][]uint64 `json:"winning_outcomes"`
}

func encodeMarketState(m *domain.Market) ([]byte, error) {
	data, err := json.Marshal(marketState{
		Outcomes:        m.Outcomes,
		OutcomeTotals:   m.OutcomeTotals,
		RoundTotals:     m.RoundTotals,
		RoundWeights:    m.RoundWeights,
		Resolutions:     m.Resolutions,
		WinningOutcomes: m.WinningOutcomes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode market state: %w", err)
	}
	return data, nil
}

func decodeMarketState(data []byte, m *domain.Market) error {
	var s marketState
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode market state: %w", err)
	}

	m.Outcomes = s.Outcomes
	m.OutcomeTotals = orEmpty(s.OutcomeTotals)
	m.RoundTotals = orEmpty(s.RoundTotals)
	m.RoundWeights = orEmpty(s.RoundWeights)
	m.Resolutions = orEmpty(s.Resolutions)
	m.WinningOutcomes = orEmpty(s.WinningOutcomes)
	return nil
}

func orEmpty[V any](m map[uint64]V) map[uint64]V {
	if m == nil {
		return make(map[uint64]V)
	}
	return m
}
