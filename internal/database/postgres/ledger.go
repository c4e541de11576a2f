// Package postgres is the PostgreSQL Entity Store. Writers lock the rows they
// touch with SELECT ... FOR UPDATE inside one database transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/repository"
)

// Ledger implements repository.Ledger for PostgreSQL
type Ledger struct {
	db    *pgxpool.Pool
	q     *Queries
	cache *govCache
}

// NewLedger creates a ledger store. Plain governance reads are cached for
// govTTL; zero disables the cache. Markets and positions are always read
// from the database.
func NewLedger(db *pgxpool.Pool, govTTL time.Duration) *Ledger {
	return &Ledger{
		db:    db,
		q:     New(db),
		cache: newGovCache(govTTL),
	}
}

// EnsureGovernance stores gov unless a governance record already exists
func (l *Ledger) EnsureGovernance(ctx context.Context, gov *domain.Governance) error {
	return wrap("bootstrap governance", l.q.insertGovernanceIfAbsent(ctx, gov))
}

// GetGovernance returns the governance record
func (l *Ledger) GetGovernance(ctx context.Context) (*domain.Governance, error) {
	if g, ok := l.cache.get(); ok {
		return g, nil
	}
	gen := l.cache.generation()
	g, err := l.q.getGovernance(ctx, getGovernance)
	if err != nil {
		return nil, wrap("get governance", err)
	}
	l.cache.set(g, gen)
	return g, nil
}

// GetMarket returns the market, or nil if it does not exist
func (l *Ledger) GetMarket(ctx context.Context, id uint64) (*domain.Market, error) {
	m, err := notFound(l.q.getMarket(ctx, getMarket, id))
	return m, wrap("get market", err)
}

// GetPosition returns the position, or nil if it does not exist
func (l *Ledger) GetPosition(ctx context.Context, id uint64) (*domain.Position, error) {
	p, err := notFound(l.q.getPosition(ctx, getPosition, id))
	return p, wrap("get position", err)
}

// ListPositionsByHolder returns the holder's positions in id order
func (l *Ledger) ListPositionsByHolder(ctx context.Context, holder domain.Identity) ([]domain.Position, error) {
	ps, err := l.q.listPositionsByHolder(ctx, holder)
	return ps, wrap("list positions", err)
}

// ListMarkets returns every market in id order
func (l *Ledger) ListMarkets(ctx context.Context) ([]domain.Market, error) {
	ms, err := l.q.listMarkets(ctx)
	return ms, wrap("list markets", err)
}

// BeginLedgerTx starts a transaction and returns a LedgerTx
func (l *Ledger) BeginLedgerTx(ctx context.Context) (repository.LedgerTx, error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	return &ledgerTx{
		tx:    tx,
		q:     l.q.WithTx(tx),
		cache: l.cache,
	}, nil
}

// ledgerTx implements repository.LedgerTx
type ledgerTx struct {
	tx         pgx.Tx
	q          *Queries
	cache      *govCache
	govTouched bool
}

// Commit commits the transaction and drops the cached governance row if the
// transaction wrote it
func (t *ledgerTx) Commit(ctx context.Context) error {
	err := t.tx.Commit(ctx)
	if t.govTouched {
		t.cache.invalidate()
	}
	if errors.Is(err, pgx.ErrTxClosed) {
		return repository.ErrTxClosed
	}
	return err
}

// Rollback rolls back the transaction
func (t *ledgerTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return repository.ErrTxClosed
	}
	return err
}

func (t *ledgerTx) GetGovernanceForUpdate(ctx context.Context) (*domain.Governance, error) {
	g, err := t.q.getGovernance(ctx, getGovernanceForUpdate)
	return g, wrap("lock governance", err)
}

func (t *ledgerTx) SaveGovernance(ctx context.Context, gov *domain.Governance) error {
	t.govTouched = true
	return wrap("save governance", t.q.upsertGovernance(ctx, gov))
}

func (t *ledgerTx) GetMarketForUpdate(ctx context.Context, id uint64) (*domain.Market, error) {
	m, err := notFound(t.q.getMarket(ctx, getMarketForUpdate, id))
	return m, wrap("lock market", err)
}

func (t *ledgerTx) CreateMarket(ctx context.Context, market *domain.Market) error {
	id, err := t.q.nextID(ctx, counterMarket)
	if err != nil {
		return wrap("allocate market id", err)
	}
	market.ID = id
	if err := t.q.insertMarket(ctx, market); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("market %d: %w", id, domain.ErrAlreadyExists)
		}
		return wrap("create market", err)
	}
	return nil
}

func (t *ledgerTx) SaveMarket(ctx context.Context, market *domain.Market) error {
	if err := t.q.updateMarket(ctx, market); err != nil {
		if errors.Is(err, domain.ErrMarketNotFound) {
			return err
		}
		return wrap("save market", err)
	}
	return nil
}

func (t *ledgerTx) GetPositionForUpdate(ctx context.Context, id uint64) (*domain.Position, error) {
	p, err := notFound(t.q.getPosition(ctx, getPositionForUpdate, id))
	return p, wrap("lock position", err)
}

func (t *ledgerTx) CreatePosition(ctx context.Context, position *domain.Position) error {
	id, err := t.q.nextID(ctx, counterPosition)
	if err != nil {
		return wrap("allocate position id", err)
	}
	position.ID = id
	return wrap("create position", t.q.insertPosition(ctx, position))
}

func (t *ledgerTx) SavePosition(ctx context.Context, position *domain.Position) error {
	if err := t.q.updatePosition(ctx, position); err != nil {
		if errors.Is(err, domain.ErrPositionNotFound) {
			return err
		}
		return wrap("save position", err)
	}
	return nil
}

// Compile-time interface check.
var _ repository.Ledger = (*Ledger)(nil)
