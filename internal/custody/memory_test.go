package custody

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/roundpool/internal/domain"
)

var (
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
)

func TestMemoryVault_WithdrawDeposit(t *testing.T) {
	ctx := context.Background()
	v := NewMemoryVault()
	require.NoError(t, v.Mint(alice, "USDC", 100))

	coin, err := v.Withdraw(ctx, alice, "USDC", 40)
	require.NoError(t, err)
	assert.Equal(t, Coin{Asset: "USDC", Amount: 40}, coin)

	require.NoError(t, v.Deposit(ctx, bob, coin))

	bal, _ := v.Balance(ctx, alice, "USDC")
	assert.Equal(t, uint64(60), bal)
	bal, _ = v.Balance(ctx, bob, "USDC")
	assert.Equal(t, uint64(40), bal)
	assert.Equal(t, uint64(100), v.Supply("USDC"))
}

func TestMemoryVault_WithdrawTooMuch(t *testing.T) {
	v := NewMemoryVault()
	require.NoError(t, v.Mint(alice, "USDC", 10))

	_, err := v.Withdraw(context.Background(), alice, "USDC", 11)
	assert.ErrorIs(t, err, domain.ErrBalanceTooLow)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestMemoryVault_AssetsAreSeparate(t *testing.T) {
	v := NewMemoryVault()
	require.NoError(t, v.Mint(alice, "USDC", 10))

	bal, err := v.Balance(context.Background(), alice, "DAI")
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	v := NewMemoryVault()
	require.NoError(t, v.Mint(alice, "USDC", 10))

	require.NoError(t, Transfer(ctx, v, alice, bob, "USDC", 7))
	bal, _ := v.Balance(ctx, bob, "USDC")
	assert.Equal(t, uint64(7), bal)

	err := Transfer(ctx, v, alice, bob, "USDC", 7)
	assert.ErrorIs(t, err, domain.ErrBalanceTooLow)
}
