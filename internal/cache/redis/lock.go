package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/osse101/roundpool/internal/concurrency"
	"github.com/osse101/roundpool/internal/logger"
)

// Lock defaults
const (
	DefaultLockTTL      = 30 * time.Second
	DefaultPollInterval = 20 * time.Millisecond
	unlockTimeout       = 5 * time.Second
	lockKeyPrefix       = "lock:"
)

// deletes the key only while it still holds the caller's token
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// ErrLockNotAcquired is returned by TryLock when the key is held elsewhere
var ErrLockNotAcquired = errors.New("redis: lock held")

// LockManager is a concurrency.Locker backed by SET NX with a TTL
type LockManager struct {
	rdb      *redis.Client
	unlockSc *redis.Script
	ttl      time.Duration
	poll     time.Duration
}

// NewLockManager creates a LockManager. A zero ttl uses DefaultLockTTL.
func NewLockManager(c *Client, ttl time.Duration) *LockManager {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &LockManager{
		rdb:      c.rdb,
		unlockSc: redis.NewScript(unlockLua),
		ttl:      ttl,
		poll:     DefaultPollInterval,
	}
}

// TryLock makes a single acquisition attempt
func (lm *LockManager) TryLock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	lk := lockKeyPrefix + key

	ok, err := lm.rdb.SetNX(ctx, lk, token, lm.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			unlockCtx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
			defer cancel()
			if err := lm.unlockSc.Run(unlockCtx, lm.rdb, []string{lk}, token).Err(); err != nil {
				logger.FromContext(ctx).Warn("Failed to release lock", "key", key, "error", err)
			}
		})
	}, nil
}

// Lock polls until the key is acquired or ctx is done
func (lm *LockManager) Lock(ctx context.Context, key string) (func(), error) {
	ticker := time.NewTicker(lm.poll)
	defer ticker.Stop()

	for {
		unlock, err := lm.TryLock(ctx, key)
		if err == nil {
			return unlock, nil
		}
		if !errors.Is(err, ErrLockNotAcquired) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to lock %q: %w", key, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Compile-time interface check.
var _ concurrency.Locker = (*LockManager)(nil)
