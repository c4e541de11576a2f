package wager

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/roundpool/internal/domain"
)

func resolvedMarket(round uint64, winners ...uint64) *domain.Market {
	m := domain.NewMarket(7, testAsset, testMaxBet, 0, testRoundLength)
	m.Resolutions[round] = 100
	m.WinningOutcomes[round] = winners
	return m
}

func stake(m *domain.Market, round, outcome, amount uint64) *domain.Position {
	m.RoundTotals[round] += amount
	m.OutcomeTotals[outcome] += amount
	return &domain.Position{MarketID: m.ID, RoundID: round, OutcomeID: outcome, Amount: amount, Open: true}
}

func TestComputePayout(t *testing.T) {
	tests := []struct {
		name    string
		setup   func() (*domain.Market, *domain.Position)
		want    uint64
		wantErr error
	}{
		{
			name: "single winner takes the pool",
			setup: func() (*domain.Market, *domain.Position) {
				m := resolvedMarket(0, 1)
				p := stake(m, 0, 1, 100)
				stake(m, 0, 2, 100)
				return m, p
			},
			want: 200,
		},
		{
			name: "loser gets nothing",
			setup: func() (*domain.Market, *domain.Position) {
				m := resolvedMarket(0, 1)
				stake(m, 0, 1, 100)
				return m, stake(m, 0, 2, 100)
			},
			want: 0,
		},
		{
			name: "two winners split pro rata",
			setup: func() (*domain.Market, *domain.Position) {
				m := resolvedMarket(0, 1, 2)
				p := stake(m, 0, 1, 100)
				stake(m, 0, 2, 50)
				stake(m, 0, 3, 150)
				return m, p
			},
			want: 200,
		},
		{
			name: "weight scales the pool",
			setup: func() (*domain.Market, *domain.Position) {
				m := resolvedMarket(0, 1)
				m.RoundWeights[0] = 15_000
				p := stake(m, 0, 1, 100)
				stake(m, 0, 2, 100)
				return m, p
			},
			want: 300,
		},
		{
			name: "result is floored",
			setup: func() (*domain.Market, *domain.Position) {
				m := resolvedMarket(0, 1)
				p := stake(m, 0, 1, 100)
				stake(m, 0, 1, 200)
				stake(m, 0, 2, 701)
				return m, p
			},
			// 1001 * 100 / 300 = 333.67
			want: 333,
		},
		{
			name: "earlier rounds carry forward",
			setup: func() (*domain.Market, *domain.Position) {
				m := resolvedMarket(2, 5)
				stake(m, 0, 1, 40)
				stake(m, 1, 2, 60)
				p := stake(m, 2, 5, 100)
				stake(m, 3, 9, 1000)
				return m, p
			},
			want: 200,
		},
		{
			name: "zero winner sum pays zero",
			setup: func() (*domain.Market, *domain.Position) {
				m := resolvedMarket(0, 1)
				m.RoundTotals[0] = 100
				return m, &domain.Position{MarketID: m.ID, RoundID: 0, OutcomeID: 1, Amount: 100, Open: true}
			},
			want: 0,
		},
		{
			name: "unresolved round",
			setup: func() (*domain.Market, *domain.Position) {
				m := domain.NewMarket(7, testAsset, testMaxBet, 0, testRoundLength)
				return m, stake(m, 0, 1, 100)
			},
			wantErr: domain.ErrStateConflict,
		},
		{
			name: "large stakes do not overflow",
			setup: func() (*domain.Market, *domain.Position) {
				m := resolvedMarket(0, 1)
				p := stake(m, 0, 1, math.MaxUint64/2)
				stake(m, 0, 2, math.MaxUint64/4)
				return m, p
			},
			want: math.MaxUint64/2 + math.MaxUint64/4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, p := tt.setup()
			got, err := ComputePayout(m, p)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputePayout_WrongMarket(t *testing.T) {
	m := resolvedMarket(0, 1)
	p := stake(m, 0, 1, 100)
	p.MarketID = m.ID + 1

	_, err := ComputePayout(m, p)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestFee(t *testing.T) {
	tests := []struct {
		name           string
		payout, amount uint64
		rate           uint64
		want           uint64
	}{
		{"profit at default rate", 200, 100, domain.DefaultFeeRate, 10},
		{"principal only", 100, 100, domain.DefaultFeeRate, 0},
		{"partial loss", 50, 100, domain.DefaultFeeRate, 0},
		{"floored", 333, 100, domain.DefaultFeeRate, 23},
		{"max rate", 1100, 100, domain.MaxFeeRate, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fee(tt.payout, tt.amount, tt.rate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got, tt.payout)
		})
	}
}
