// Package custody holds the asset balances the ledger moves value between.
// The ledger never holds value itself: a market's pool is an account in the
// custodian keyed by domain.PoolIdentity.
package custody

import (
	"context"

	"github.com/osse101/roundpool/internal/domain"
)

// Coin is a withdrawn amount of one asset, in transit between two accounts
type Coin struct {
	Asset  string
	Amount uint64
}

// Custody is the asset custody collaborator
type Custody interface {
	// Balance returns what holder owns of asset; unknown accounts hold 0
	Balance(ctx context.Context, holder domain.Identity, asset string) (uint64, error)
	// Withdraw removes amount from holder, failing with domain.ErrBalanceTooLow
	Withdraw(ctx context.Context, holder domain.Identity, asset string, amount uint64) (Coin, error)
	// Deposit credits a coin to holder
	Deposit(ctx context.Context, holder domain.Identity, coin Coin) error
}

// Transfer moves amount of asset from one account to another
func Transfer(ctx context.Context, c Custody, from, to domain.Identity, asset string, amount uint64) error {
	coin, err := c.Withdraw(ctx, from, asset, amount)
	if err != nil {
		return err
	}
	if err := c.Deposit(ctx, to, coin); err != nil {
		// put the coin back where it came from
		if rerr := c.Deposit(ctx, from, coin); rerr != nil {
			return rerr
		}
		return err
	}
	return nil
}
