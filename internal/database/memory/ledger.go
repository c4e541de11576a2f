// Package memory is an in-process Entity Store. Transactions are serialized
// and work on private copies, so a discarded transaction leaves no trace.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/repository"
)

// Ledger implements repository.Ledger in memory
type Ledger struct {
	sem chan struct{} // held by the open transaction

	mu             sync.RWMutex
	gov            *domain.Governance
	markets        map[uint64]*domain.Market
	positions      map[uint64]*domain.Position
	byHolder       map[domain.Identity][]uint64
	nextMarketID   uint64
	nextPositionID uint64
}

// NewLedger creates an empty ledger governed by gov
func NewLedger(gov *domain.Governance) *Ledger {
	return &Ledger{
		sem:       make(chan struct{}, 1),
		gov:       gov.Clone(),
		markets:   make(map[uint64]*domain.Market),
		positions: make(map[uint64]*domain.Position),
		byHolder:  make(map[domain.Identity][]uint64),
	}
}

// GetGovernance returns a copy of the governance record
func (l *Ledger) GetGovernance(ctx context.Context) (*domain.Governance, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gov.Clone(), nil
}

// GetMarket returns a copy of the market, or nil if it does not exist
func (l *Ledger) GetMarket(ctx context.Context, id uint64) (*domain.Market, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.markets[id].Clone(), nil
}

// GetPosition returns a copy of the position, or nil if it does not exist
func (l *Ledger) GetPosition(ctx context.Context, id uint64) (*domain.Position, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return clonePosition(l.positions[id]), nil
}

// ListPositionsByHolder returns the holder's positions in id order
func (l *Ledger) ListPositionsByHolder(ctx context.Context, holder domain.Identity) ([]domain.Position, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.byHolder[holder]
	out := make([]domain.Position, 0, len(ids))
	for _, id := range ids {
		out = append(out, *l.positions[id])
	}
	return out, nil
}

// ListMarkets returns every market in id order
func (l *Ledger) ListMarkets(ctx context.Context) ([]domain.Market, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Market, 0, len(l.markets))
	for id := uint64(0); id < l.nextMarketID; id++ {
		if m, ok := l.markets[id]; ok {
			out = append(out, *m.Clone())
		}
	}
	return out, nil
}

// BeginLedgerTx waits for exclusive access and opens a transaction
func (l *Ledger) BeginLedgerTx(ctx context.Context) (repository.LedgerTx, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to begin ledger transaction: %w", ctx.Err())
	}

	l.mu.RLock()
	nextMarket, nextPosition := l.nextMarketID, l.nextPositionID
	l.mu.RUnlock()

	return &ledgerTx{
		l:              l,
		markets:        make(map[uint64]*domain.Market),
		positions:      make(map[uint64]*domain.Position),
		nextMarketID:   nextMarket,
		nextPositionID: nextPosition,
	}, nil
}

// ledgerTx buffers every touched record until Commit
type ledgerTx struct {
	l      *Ledger
	closed bool

	gov            *domain.Governance
	markets        map[uint64]*domain.Market
	positions      map[uint64]*domain.Position
	newPositions   []uint64
	nextMarketID   uint64
	nextPositionID uint64
}

func (t *ledgerTx) GetGovernanceForUpdate(ctx context.Context) (*domain.Governance, error) {
	if t.closed {
		return nil, repository.ErrTxClosed
	}
	if t.gov == nil {
		t.l.mu.RLock()
		t.gov = t.l.gov.Clone()
		t.l.mu.RUnlock()
	}
	return t.gov, nil
}

func (t *ledgerTx) SaveGovernance(ctx context.Context, gov *domain.Governance) error {
	if t.closed {
		return repository.ErrTxClosed
	}
	t.gov = gov
	return nil
}

func (t *ledgerTx) GetMarketForUpdate(ctx context.Context, id uint64) (*domain.Market, error) {
	if t.closed {
		return nil, repository.ErrTxClosed
	}
	if m, ok := t.markets[id]; ok {
		return m, nil
	}
	t.l.mu.RLock()
	m := t.l.markets[id].Clone()
	t.l.mu.RUnlock()
	if m == nil {
		return nil, nil
	}
	t.markets[id] = m
	return m, nil
}

func (t *ledgerTx) CreateMarket(ctx context.Context, market *domain.Market) error {
	if t.closed {
		return repository.ErrTxClosed
	}
	market.ID = t.nextMarketID
	t.nextMarketID++
	t.markets[market.ID] = market
	return nil
}

func (t *ledgerTx) SaveMarket(ctx context.Context, market *domain.Market) error {
	if t.closed {
		return repository.ErrTxClosed
	}
	t.markets[market.ID] = market
	return nil
}

func (t *ledgerTx) GetPositionForUpdate(ctx context.Context, id uint64) (*domain.Position, error) {
	if t.closed {
		return nil, repository.ErrTxClosed
	}
	if p, ok := t.positions[id]; ok {
		return p, nil
	}
	t.l.mu.RLock()
	p := clonePosition(t.l.positions[id])
	t.l.mu.RUnlock()
	if p == nil {
		return nil, nil
	}
	t.positions[id] = p
	return p, nil
}

func (t *ledgerTx) CreatePosition(ctx context.Context, position *domain.Position) error {
	if t.closed {
		return repository.ErrTxClosed
	}
	position.ID = t.nextPositionID
	t.nextPositionID++
	t.positions[position.ID] = position
	t.newPositions = append(t.newPositions, position.ID)
	return nil
}

func (t *ledgerTx) SavePosition(ctx context.Context, position *domain.Position) error {
	if t.closed {
		return repository.ErrTxClosed
	}
	t.positions[position.ID] = position
	return nil
}

// Commit publishes every buffered record atomically
func (t *ledgerTx) Commit(ctx context.Context) error {
	if t.closed {
		return repository.ErrTxClosed
	}
	t.closed = true
	defer t.release()

	l := t.l
	l.mu.Lock()
	defer l.mu.Unlock()

	if t.gov != nil {
		l.gov = t.gov.Clone()
	}
	for id, m := range t.markets {
		l.markets[id] = m.Clone()
	}
	for id, p := range t.positions {
		l.positions[id] = clonePosition(p)
	}
	for _, id := range t.newPositions {
		holder := t.positions[id].Holder
		l.byHolder[holder] = append(l.byHolder[holder], id)
	}
	l.nextMarketID = t.nextMarketID
	l.nextPositionID = t.nextPositionID
	return nil
}

// Rollback discards the transaction
func (t *ledgerTx) Rollback(ctx context.Context) error {
	if t.closed {
		return repository.ErrTxClosed
	}
	t.closed = true
	t.release()
	return nil
}

func (t *ledgerTx) release() {
	<-t.l.sem
}

func clonePosition(p *domain.Position) *domain.Position {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Compile-time interface check.
var _ repository.Ledger = (*Ledger)(nil)
