package repository

import (
	"context"

	"github.com/osse101/roundpool/internal/domain"
)

// Ledger defines the data access required by the wager service.
// Reads outside a transaction return copies; mutating them has no effect on
// stored state.
type Ledger interface {
	GetGovernance(ctx context.Context) (*domain.Governance, error)
	GetMarket(ctx context.Context, id uint64) (*domain.Market, error)
	GetPosition(ctx context.Context, id uint64) (*domain.Position, error)
	ListPositionsByHolder(ctx context.Context, holder domain.Identity) ([]domain.Position, error)
	ListMarkets(ctx context.Context) ([]domain.Market, error)

	// Transaction support
	BeginLedgerTx(ctx context.Context) (LedgerTx, error)
}

// LedgerTx groups every read-for-update and write of one ledger operation so
// that it commits or discards as a unit.
type LedgerTx interface {
	Tx // Commit, Rollback

	GetGovernanceForUpdate(ctx context.Context) (*domain.Governance, error)
	SaveGovernance(ctx context.Context, gov *domain.Governance) error

	GetMarketForUpdate(ctx context.Context, id uint64) (*domain.Market, error)
	// CreateMarket allocates the next market id from the market counter,
	// assigns it to market.ID and stores the market.
	CreateMarket(ctx context.Context, market *domain.Market) error
	SaveMarket(ctx context.Context, market *domain.Market) error

	GetPositionForUpdate(ctx context.Context, id uint64) (*domain.Position, error)
	// CreatePosition allocates the next position id and stores the position
	CreatePosition(ctx context.Context, position *domain.Position) error
	SavePosition(ctx context.Context, position *domain.Position) error
}
