package concurrency

import (
	"context"
	"fmt"
	"sync"
)

// Locker hands out exclusive access to named keys. The returned unlock
// function is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// LockManager handles named locks inside one process
type LockManager struct {
	locks sync.Map // key -> chan struct{}
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

func (lm *LockManager) slot(key string) chan struct{} {
	ch, _ := lm.locks.LoadOrStore(key, make(chan struct{}, 1))
	return ch.(chan struct{})
}

// Lock blocks until key is free or ctx is done
func (lm *LockManager) Lock(ctx context.Context, key string) (func(), error) {
	ch := lm.slot(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to lock %q: %w", key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}

// Compile-time interface check.
var _ Locker = (*LockManager)(nil)
