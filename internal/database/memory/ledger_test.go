package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/repository"
)

var (
	deployer = domain.Identity{0xd1}
	treasury = domain.Identity{0xf1}
	holder   = domain.Identity{0x01}
)

func newLedger() *Ledger {
	return NewLedger(domain.NewGovernance(deployer, treasury))
}

func TestLedger_CommitAllocatesDenseIDs(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	tx, err := l.BeginLedgerTx(ctx)
	require.NoError(t, err)
	for range 3 {
		require.NoError(t, tx.CreateMarket(ctx, domain.NewMarket(0, "USDC", 10, 0, 60)))
	}
	pos := &domain.Position{MarketID: 2, Amount: 5, Holder: holder, Open: true}
	require.NoError(t, tx.CreatePosition(ctx, pos))
	require.NoError(t, tx.Commit(ctx))

	markets, err := l.ListMarkets(ctx)
	require.NoError(t, err)
	require.Len(t, markets, 3)
	for i, m := range markets {
		assert.Equal(t, uint64(i), m.ID)
	}

	positions, err := l.ListPositionsByHolder(ctx, holder)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, uint64(0), positions[0].ID)
}

func TestLedger_RollbackLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	tx, err := l.BeginLedgerTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateMarket(ctx, domain.NewMarket(0, "USDC", 10, 0, 60)))
	gov, err := tx.GetGovernanceForUpdate(ctx)
	require.NoError(t, err)
	gov.FeeRate = 1
	require.NoError(t, tx.SaveGovernance(ctx, gov))
	require.NoError(t, tx.CreatePosition(ctx, &domain.Position{Holder: holder}))
	require.NoError(t, tx.Rollback(ctx))

	m, err := l.GetMarket(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, m)
	stored, err := l.GetGovernance(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFeeRate, stored.FeeRate)

	// counters were not advanced by the discarded transaction
	tx, err = l.BeginLedgerTx(ctx)
	require.NoError(t, err)
	market := domain.NewMarket(0, "USDC", 10, 0, 60)
	require.NoError(t, tx.CreateMarket(ctx, market))
	assert.Equal(t, uint64(0), market.ID)
	require.NoError(t, tx.Commit(ctx))
}

func TestLedger_ReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	tx, err := l.BeginLedgerTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateMarket(ctx, domain.NewMarket(0, "USDC", 10, 0, 60)))
	require.NoError(t, tx.Commit(ctx))

	m, err := l.GetMarket(ctx, 0)
	require.NoError(t, err)
	m.Paused = true
	m.RoundTotals[0] = 100

	again, err := l.GetMarket(ctx, 0)
	require.NoError(t, err)
	assert.False(t, again.Paused)
	assert.Empty(t, again.RoundTotals)
}

func TestLedger_UpdateInsideTx(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	tx, err := l.BeginLedgerTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateMarket(ctx, domain.NewMarket(0, "USDC", 10, 0, 60)))
	require.NoError(t, tx.CreatePosition(ctx, &domain.Position{Holder: holder, Open: true}))
	require.NoError(t, tx.Commit(ctx))

	tx, err = l.BeginLedgerTx(ctx)
	require.NoError(t, err)
	m, err := tx.GetMarketForUpdate(ctx, 0)
	require.NoError(t, err)
	m.CurrentRound = 4
	require.NoError(t, tx.SaveMarket(ctx, m))
	p, err := tx.GetPositionForUpdate(ctx, 0)
	require.NoError(t, err)
	p.Open = false
	require.NoError(t, tx.SavePosition(ctx, p))

	missing, err := tx.GetPositionForUpdate(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, missing)

	// uncommitted changes are invisible outside the transaction
	outside, err := l.GetPosition(ctx, 0)
	require.NoError(t, err)
	assert.True(t, outside.Open)

	require.NoError(t, tx.Commit(ctx))

	stored, err := l.GetMarket(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), stored.CurrentRound)
	settled, err := l.GetPosition(ctx, 0)
	require.NoError(t, err)
	assert.False(t, settled.Open)
}

func TestLedger_ClosedTx(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	tx, err := l.BeginLedgerTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.ErrorIs(t, tx.Commit(ctx), repository.ErrTxClosed)
	assert.ErrorIs(t, tx.Rollback(ctx), repository.ErrTxClosed)
	_, err = tx.GetMarketForUpdate(ctx, 0)
	assert.ErrorIs(t, err, repository.ErrTxClosed)

	// SafeRollback after commit is silent
	repository.SafeRollback(ctx, tx)
}

func TestLedger_BeginWaitsForOpenTx(t *testing.T) {
	l := newLedger()

	tx, err := l.BeginLedgerTx(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.BeginLedgerTx(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, tx.Rollback(context.Background()))
	next, err := l.BeginLedgerTx(context.Background())
	require.NoError(t, err)
	require.NoError(t, next.Rollback(context.Background()))
}
