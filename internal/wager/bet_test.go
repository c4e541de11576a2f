package wager

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/roundpool/internal/domain"
)

func TestPlaceBet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.newMarket(t)

	p := f.bet(t, user1, m.ID, 0, outcomeB, 100)
	assert.Equal(t, uint64(0), p.ID)
	assert.True(t, p.Open)
	assert.Equal(t, user1, p.Holder)
	assert.Equal(t, f.clock.Now().Unix(), p.PlacedAt)

	f.bet(t, user2, m.ID, 0, outcomeA, 50)
	f.bet(t, user2, m.ID, 1, outcomeB, 25)

	got, err := f.svc.GetMarket(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{outcomeB, outcomeA}, got.Outcomes)
	assert.Equal(t, map[uint64]uint64{outcomeA: 50, outcomeB: 125}, got.OutcomeTotals)
	assert.Equal(t, map[uint64]uint64{0: 150, 1: 25}, got.RoundTotals)

	assert.Equal(t, uint64(175), f.pool(t, m.ID))
	assert.Equal(t, uint64(testFunding-75), f.balance(t, user2))

	positions, err := f.svc.ListPositions(ctx, user2)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, uint64(1), positions[0].ID)
	assert.Equal(t, uint64(2), positions[1].ID)
}

func TestPlaceBet_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.newMarket(t)
	paused := f.newMarket(t)
	require.NoError(t, f.svc.SetPaused(ctx, deployer, paused.ID, true))
	f.bet(t, user1, m.ID, 2, outcomeA, 10)
	require.NoError(t, f.svc.Resolve(ctx, deployer, m.ID, 2, []uint64{outcomeA}))

	tests := []struct {
		name    string
		caller  domain.Identity
		req     PlaceBetRequest
		wantErr []error
	}{
		{"zero amount", user1, PlaceBetRequest{MarketID: m.ID, Amount: 0}, []error{domain.ErrInvalidArgument, domain.ErrZeroAmount}},
		{"zero caller", domain.ZeroIdentity, PlaceBetRequest{MarketID: m.ID, Amount: 1}, []error{domain.ErrInvalidArgument}},
		{"unknown market", user1, PlaceBetRequest{MarketID: 99, Amount: 1}, []error{domain.ErrNotFound}},
		{"paused", user1, PlaceBetRequest{MarketID: paused.ID, Amount: 1}, []error{domain.ErrStateConflict, domain.ErrMarketPaused}},
		{"above max bet", user1, PlaceBetRequest{MarketID: m.ID, Amount: testMaxBet + 1}, []error{domain.ErrInsufficientFunds, domain.ErrBetAboveMax}},
		{"resolved round", user1, PlaceBetRequest{MarketID: m.ID, RoundID: 2, Amount: 1}, []error{domain.ErrStateConflict, domain.ErrRoundResolved}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.PlaceBet(ctx, tt.caller, tt.req)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}

	assert.Equal(t, uint64(10), f.pool(t, m.ID))
	assert.Equal(t, uint64(testFunding-10), f.balance(t, user1))
}

func TestPlaceBet_BalanceTooLow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, err := f.svc.CreateMarket(ctx, deployer, CreateMarketRequest{Asset: testAsset, MaxBet: testFunding * 2})
	require.NoError(t, err)

	_, err = f.svc.PlaceBet(ctx, user1, PlaceBetRequest{MarketID: m.ID, Amount: testFunding + 1})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.ErrorIs(t, err, domain.ErrBalanceTooLow)
	assert.Equal(t, uint64(testFunding), f.balance(t, user1))
}

func TestPlaceBet_RoundWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.newMarket(t)

	f.clock.Advance(testRoundLength*time.Second - time.Second)
	f.bet(t, user1, m.ID, 0, outcomeA, 1)

	f.clock.Advance(time.Second)
	_, err := f.svc.PlaceBet(ctx, user1, PlaceBetRequest{MarketID: m.ID, RoundID: 0, OutcomeID: outcomeA, Amount: 1})
	assert.ErrorIs(t, err, domain.ErrRoundEnded)

	// the current round and rounds that have not started yet are open
	f.bet(t, user1, m.ID, 1, outcomeA, 1)
	f.bet(t, user1, m.ID, 50, outcomeA, 1)

	status, err := f.svc.RoundStatus(ctx, m.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, m.CreatedAt+2*testRoundLength, status.Deadline)
	assert.Equal(t, uint64(1), status.Total)
	assert.False(t, status.Resolved)
}

func TestPlaceBet_FarRoundsStayOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.newMarket(t)

	f.bet(t, user1, m.ID, 1<<60-1, outcomeA, 1)
	f.bet(t, user1, m.ID, math.MaxUint64, outcomeA, 1)

	status, err := f.svc.RoundStatus(ctx, m.ID, 1<<60-1)
	require.NoError(t, err)
	assert.Equal(t, domain.NoDeadline, status.Deadline)

	require.NoError(t, f.svc.SetRoundLength(ctx, deployer, m.ID, math.MaxInt64))
	f.clock.Advance(2 * testRoundLength * time.Second)
	f.bet(t, user2, m.ID, 0, outcomeA, 1)

	status, err = f.svc.RoundStatus(ctx, m.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.NoDeadline, status.Deadline)
}

func TestPlaceBet_RoundLengthChangeMovesDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.newMarket(t)

	f.clock.Advance(2 * testRoundLength * time.Second)
	_, err := f.svc.PlaceBet(ctx, user1, PlaceBetRequest{MarketID: m.ID, RoundID: 1, Amount: 1})
	require.ErrorIs(t, err, domain.ErrRoundEnded)

	require.NoError(t, f.svc.SetRoundLength(ctx, deployer, m.ID, 3*testRoundLength))
	f.bet(t, user1, m.ID, 1, outcomeA, 1)
}
