package scenario

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// PoolFlow records value that entered and left one market pool
type PoolFlow struct {
	MarketID uint64 `json:"market_id"`
	In       uint64 `json:"in"`
	Out      uint64 `json:"out"`
	Balance  uint64 `json:"balance"`
}

// Flows tracks pool inflows and outflows across a session
type Flows struct {
	mu    sync.Mutex
	pools map[uint64]*PoolFlow
}

// NewFlows creates an empty tracker
func NewFlows() *Flows {
	return &Flows{pools: make(map[uint64]*PoolFlow)}
}

func (f *Flows) pool(marketID uint64) *PoolFlow {
	p, ok := f.pools[marketID]
	if !ok {
		p = &PoolFlow{MarketID: marketID}
		f.pools[marketID] = p
	}
	return p
}

// Track registers a market with no flows yet
func (f *Flows) Track(marketID uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pool(marketID)
}

// In records amount entering the pool (bets, emergency deposits)
func (f *Flows) In(marketID, amount uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pool(marketID).In += amount
}

// Out records amount leaving the pool (payouts with fees, emergency withdrawals)
func (f *Flows) Out(marketID, amount uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pool(marketID).Out += amount
}

// Snapshot returns the tracked pools ordered by market id
func (f *Flows) Snapshot() []PoolFlow {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]PoolFlow, 0, len(f.pools))
	for _, p := range f.pools {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MarketID < out[j].MarketID })
	return out
}

// PoolBalancer reports the custody balance of a market pool
type PoolBalancer interface {
	PoolBalance(ctx context.Context, marketID uint64) (uint64, error)
}

// CheckConservation verifies balance == in - out for every tracked pool and
// returns the pools with their observed balances
func CheckConservation(ctx context.Context, b PoolBalancer, f *Flows) ([]PoolFlow, error) {
	pools := f.Snapshot()
	for i := range pools {
		p := &pools[i]
		balance, err := b.PoolBalance(ctx, p.MarketID)
		if err != nil {
			return nil, fmt.Errorf("failed to read pool %d: %w", p.MarketID, err)
		}
		p.Balance = balance
		if p.Out > p.In || balance != p.In-p.Out {
			return pools, fmt.Errorf("%w: market %d in=%d out=%d balance=%d", ErrConservation, p.MarketID, p.In, p.Out, balance)
		}
	}
	return pools, nil
}
