package custody

import (
	"context"
	"sync"

	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/utils"
)

// MemoryVault is an in-process Custody
type MemoryVault struct {
	mu       sync.Mutex
	balances map[string]map[domain.Identity]uint64
}

// NewMemoryVault creates an empty vault
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{balances: make(map[string]map[domain.Identity]uint64)}
}

// Mint creates amount of asset out of nothing and credits it to holder
func (v *MemoryVault) Mint(holder domain.Identity, asset string, amount uint64) error {
	return v.Deposit(context.Background(), holder, Coin{Asset: asset, Amount: amount})
}

func (v *MemoryVault) Balance(ctx context.Context, holder domain.Identity, asset string) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balances[asset][holder], nil
}

func (v *MemoryVault) Withdraw(ctx context.Context, holder domain.Identity, asset string, amount uint64) (Coin, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	bal := v.balances[asset][holder]
	if bal < amount {
		return Coin{}, domain.ErrBalanceTooLow
	}
	if amount > 0 {
		v.balances[asset][holder] = bal - amount
	}
	return Coin{Asset: asset, Amount: amount}, nil
}

func (v *MemoryVault) Deposit(ctx context.Context, holder domain.Identity, coin Coin) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	accounts, ok := v.balances[coin.Asset]
	if !ok {
		accounts = make(map[domain.Identity]uint64)
		v.balances[coin.Asset] = accounts
	}
	sum, err := utils.CheckedAdd(accounts[holder], coin.Amount)
	if err != nil {
		return domain.ErrOverflow
	}
	accounts[holder] = sum
	return nil
}

// Supply returns the total of asset across every account
func (v *MemoryVault) Supply(asset string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	var total uint64
	for _, bal := range v.balances[asset] {
		total += bal
	}
	return total
}

// Compile-time interface check.
var _ Custody = (*MemoryVault)(nil)
