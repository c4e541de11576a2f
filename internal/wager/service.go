// Package wager implements the round-based parimutuel ledger: market
// governance, bet placement, round resolution, payouts and claims.
package wager

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jonboulle/clockwork"

	"github.com/osse101/roundpool/internal/concurrency"
	"github.com/osse101/roundpool/internal/custody"
	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/event"
	"github.com/osse101/roundpool/internal/logger"
	"github.com/osse101/roundpool/internal/repository"
	"github.com/osse101/roundpool/internal/validation"
)

// Service defines the interface for ledger operations
type Service interface {
	// Governance
	CreateMarket(ctx context.Context, caller domain.Identity, req CreateMarketRequest) (*domain.Market, error)
	SetPaused(ctx context.Context, caller domain.Identity, marketID uint64, paused bool) error
	SetMaxBet(ctx context.Context, caller domain.Identity, marketID, maxBet uint64) error
	SetRoundLength(ctx context.Context, caller domain.Identity, marketID uint64, length int64) error
	SetCurrentRound(ctx context.Context, caller domain.Identity, marketID, round uint64) error
	SetRoundWeight(ctx context.Context, caller domain.Identity, marketID, round, weight uint64) error
	SetRoundWeights(ctx context.Context, caller domain.Identity, marketID uint64, rounds, weights []uint64) error
	SetFeeRate(ctx context.Context, caller domain.Identity, rate uint64) error
	AddAdmin(ctx context.Context, caller, admin domain.Identity) error
	RemoveAdmin(ctx context.Context, caller, admin domain.Identity) error
	SetTreasury(ctx context.Context, caller, treasury domain.Identity) error
	EmergencyWithdraw(ctx context.Context, caller domain.Identity, marketID, amount uint64) error
	EmergencyDeposit(ctx context.Context, caller domain.Identity, marketID, amount uint64) error

	// Betting and settlement
	PlaceBet(ctx context.Context, caller domain.Identity, req PlaceBetRequest) (*domain.Position, error)
	Resolve(ctx context.Context, caller domain.Identity, marketID, roundID uint64, winners []uint64) error
	ComputePayout(ctx context.Context, positionID uint64) (uint64, error)
	Claim(ctx context.Context, caller domain.Identity, positionID uint64) (*domain.Settlement, error)

	// Queries
	GetMarket(ctx context.Context, marketID uint64) (*domain.Market, error)
	GetPosition(ctx context.Context, positionID uint64) (*domain.Position, error)
	GetGovernance(ctx context.Context) (*domain.Governance, error)
	ListPositions(ctx context.Context, holder domain.Identity) ([]domain.Position, error)
	RoundStatus(ctx context.Context, marketID, roundID uint64) (*domain.RoundStatus, error)
	PoolBalance(ctx context.Context, marketID uint64) (uint64, error)
	IsAdmin(ctx context.Context, id domain.Identity) (bool, error)
}

// Option configures the service
type Option func(*service)

// WithDefaultRoundLength sets the round length used when CreateMarket omits one
func WithDefaultRoundLength(seconds int64) Option {
	return func(s *service) {
		if seconds > 0 {
			s.defaultRoundLength = seconds
		}
	}
}

// WithLockNamespace prefixes every lock key, so services over separate
// ledgers can share one Locker without contending
func WithLockNamespace(ns string) Option {
	return func(s *service) {
		s.lockNamespace = ns
	}
}

// WithValidator replaces the shared request validator
func WithValidator(v *validation.Validator) Option {
	return func(s *service) {
		s.validator = v
	}
}

type service struct {
	repo      repository.Ledger
	vault     custody.Custody
	locker    concurrency.Locker
	eventBus  event.Bus
	clock     clockwork.Clock
	validator *validation.Validator

	defaultRoundLength int64
	lockNamespace      string
}

// NewService creates a new ledger service. bus may be nil.
func NewService(repo repository.Ledger, vault custody.Custody, locker concurrency.Locker, bus event.Bus, clock clockwork.Clock, opts ...Option) Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if locker == nil {
		locker = concurrency.NewLockManager()
	}
	s := &service{
		repo:               repo,
		vault:              vault,
		locker:             locker,
		eventBus:           bus,
		clock:              clock,
		validator:          validation.Default(),
		defaultRoundLength: domain.DefaultRoundLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) now() int64 {
	return s.clock.Now().Unix()
}

func marketLockKey(marketID uint64) string {
	return domain.LockKeyMarketPrefix + strconv.FormatUint(marketID, 10)
}

func (s *service) lock(ctx context.Context, key string) (func(), error) {
	if s.lockNamespace != "" {
		key = s.lockNamespace + "/" + key
	}
	unlock, err := s.locker.Lock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", ErrContextFailedToLock, key, err)
	}
	return unlock, nil
}

// begin opens a ledger transaction; callers defer repository.SafeRollback
func (s *service) begin(ctx context.Context) (repository.LedgerTx, error) {
	tx, err := s.repo.BeginLedgerTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	return tx, nil
}

// commit commits tx. On failure every custody move recorded in j is reversed.
func (s *service) commit(ctx context.Context, tx repository.LedgerTx, j *journal) error {
	if err := tx.Commit(ctx); err != nil {
		if j != nil {
			j.revert(ctx)
		}
		return fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}
	return nil
}

func loadGovernance(ctx context.Context, tx repository.LedgerTx) (*domain.Governance, error) {
	gov, err := tx.GetGovernanceForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetGovernance, err)
	}
	if gov == nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetGovernance, domain.ErrNotFound)
	}
	return gov, nil
}

func loadMarket(ctx context.Context, tx repository.LedgerTx, marketID uint64) (*domain.Market, error) {
	market, err := tx.GetMarketForUpdate(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetMarket, err)
	}
	if market == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrMarketNotFound, marketID)
	}
	return market, nil
}

func requireAdmin(gov *domain.Governance, caller domain.Identity) error {
	if caller == domain.ZeroIdentity || !gov.IsAdmin(caller) {
		return fmt.Errorf("%w: %s", domain.ErrNotAdmin, caller.Hex())
	}
	return nil
}

func requireDeployer(gov *domain.Governance, caller domain.Identity) error {
	if caller == domain.ZeroIdentity || caller != gov.Deployer {
		return fmt.Errorf("%w: %s", domain.ErrNotDeployer, caller.Hex())
	}
	return nil
}

func (s *service) publish(ctx context.Context, evt event.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", evt.Type, "error", err)
	}
}
