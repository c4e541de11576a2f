package wager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/osse101/roundpool/internal/concurrency"
	"github.com/osse101/roundpool/internal/custody"
	"github.com/osse101/roundpool/internal/database/memory"
	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/event"
	"github.com/osse101/roundpool/internal/repository"
)

const (
	testAsset       = "USDC"
	testMaxBet      = 1000
	testRoundLength = 3600
	testFunding     = 10_000
)

var (
	deployer = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	treasury = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	admin    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	user1    = common.HexToAddress("0x0000000000000000000000000000000000000001")
	user2    = common.HexToAddress("0x0000000000000000000000000000000000000002")
	user3    = common.HexToAddress("0x0000000000000000000000000000000000000003")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000ee")
)

// fixture wires the service to in-memory collaborators
type fixture struct {
	svc    Service
	ledger *memory.Ledger
	vault  *custody.MemoryVault
	clock  *clockwork.FakeClock
	events *eventRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ledger := memory.NewLedger(domain.NewGovernance(deployer, treasury))
	vault := custody.NewMemoryVault()
	for _, id := range []domain.Identity{deployer, user1, user2, user3, stranger} {
		require.NoError(t, vault.Mint(id, testAsset, testFunding))
	}

	bus := event.NewMemoryBus()
	rec := newEventRecorder(bus)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	return &fixture{
		svc:    NewService(ledger, vault, concurrency.NewLockManager(), bus, clock),
		ledger: ledger,
		vault:  vault,
		clock:  clock,
		events: rec,
	}
}

// newMarket creates a market as the deployer
func (f *fixture) newMarket(t *testing.T) *domain.Market {
	t.Helper()
	m, err := f.svc.CreateMarket(context.Background(), deployer, CreateMarketRequest{
		Asset:       testAsset,
		MaxBet:      testMaxBet,
		RoundLength: testRoundLength,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) bet(t *testing.T, who domain.Identity, marketID, round, outcome, amount uint64) *domain.Position {
	t.Helper()
	p, err := f.svc.PlaceBet(context.Background(), who, PlaceBetRequest{
		MarketID:  marketID,
		RoundID:   round,
		OutcomeID: outcome,
		Amount:    amount,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) balance(t *testing.T, who domain.Identity) uint64 {
	t.Helper()
	b, err := f.vault.Balance(context.Background(), who, testAsset)
	require.NoError(t, err)
	return b
}

func (f *fixture) pool(t *testing.T, marketID uint64) uint64 {
	t.Helper()
	return f.balance(t, domain.PoolIdentity(marketID))
}

type eventRecorder struct {
	mu     sync.Mutex
	events []event.Event
}

func newEventRecorder(bus event.Bus) *eventRecorder {
	r := &eventRecorder{}
	for _, typ := range event.AllTypes {
		bus.Subscribe(typ, func(ctx context.Context, e event.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		})
	}
	return r
}

func (r *eventRecorder) count(typ event.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

// failingCommitLedger opens real transactions whose Commit always fails
type failingCommitLedger struct {
	*memory.Ledger
}

func (l failingCommitLedger) BeginLedgerTx(ctx context.Context) (repository.LedgerTx, error) {
	tx, err := l.Ledger.BeginLedgerTx(ctx)
	if err != nil {
		return nil, err
	}
	return failingCommitTx{tx}, nil
}

type failingCommitTx struct {
	repository.LedgerTx
}

var errCommitFailed = errors.New("disk on fire")

func (t failingCommitTx) Commit(ctx context.Context) error {
	_ = t.LedgerTx.Rollback(ctx)
	return errCommitFailed
}
