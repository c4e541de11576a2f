package wager

import (
	"context"
	"fmt"

	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/event"
	"github.com/osse101/roundpool/internal/logger"
	"github.com/osse101/roundpool/internal/repository"
)

// ComputePayout returns the payout a position would receive if claimed now
func (s *service) ComputePayout(ctx context.Context, positionID uint64) (uint64, error) {
	position, err := s.GetPosition(ctx, positionID)
	if err != nil {
		return 0, err
	}
	market, err := s.GetMarket(ctx, position.MarketID)
	if err != nil {
		return 0, err
	}
	return ComputePayout(market, position)
}

// Claim settles a position for its holder. The position closes even when
// it pays nothing, so every position settles at most once.
func (s *service) Claim(ctx context.Context, caller domain.Identity, positionID uint64) (*domain.Settlement, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgClaimCalled, "caller", caller.Hex(), "position_id", positionID)

	snapshot, err := s.GetPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, marketLockKey(snapshot.MarketID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer repository.SafeRollback(ctx, tx)

	market, err := loadMarket(ctx, tx, snapshot.MarketID)
	if err != nil {
		return nil, err
	}
	position, err := tx.GetPositionForUpdate(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetPosition, err)
	}
	if position == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrPositionNotFound, positionID)
	}

	payout, err := ComputePayout(market, position)
	if err != nil {
		return nil, err
	}

	if caller == domain.ZeroIdentity || caller != position.Holder {
		return nil, fmt.Errorf("%w: position %d", domain.ErrNotPositionHolder, positionID)
	}
	if !position.Open {
		return nil, fmt.Errorf("%w: position %d", domain.ErrPositionSettled, positionID)
	}
	if market.Paused {
		return nil, fmt.Errorf("%w: market %d", domain.ErrMarketPaused, market.ID)
	}

	gov, err := loadGovernance(ctx, tx)
	if err != nil {
		return nil, err
	}
	fee, err := Fee(payout, position.Amount, gov.FeeRate)
	if err != nil {
		return nil, err
	}

	pool := domain.PoolIdentity(market.ID)
	j := newJournal(s.vault)
	if payout > 0 {
		balance, err := s.vault.Balance(ctx, pool, market.Asset)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetBalance, err)
		}
		if balance < payout {
			return nil, fmt.Errorf("%w: pool holds %d, owes %d", domain.ErrPoolBalanceTooLow, balance, payout)
		}
		if err := j.transfer(ctx, pool, gov.Treasury, market.Asset, fee); err != nil {
			return nil, err
		}
		if err := j.transfer(ctx, pool, position.Holder, market.Asset, payout-fee); err != nil {
			return nil, err
		}
	}

	position.Open = false
	if err := tx.SavePosition(ctx, position); err != nil {
		j.revert(ctx)
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSavePosition, err)
	}
	if err := s.commit(ctx, tx, j); err != nil {
		return nil, err
	}

	now := s.now()
	settlement := &domain.Settlement{
		PositionID:   position.ID,
		Holder:       position.Holder,
		Payout:       payout,
		Fee:          fee,
		HolderAmount: payout - fee,
		SettledAt:    now,
	}

	log.Info(LogMsgPositionSettled, "position_id", position.ID, "payout", payout, "fee", fee)
	s.publish(ctx, event.NewPositionSettledEvent(domain.PositionSettledPayload{
		PositionID:   position.ID,
		MarketID:     market.ID,
		Payout:       payout,
		Fee:          fee,
		HolderAmount: settlement.HolderAmount,
		Caller:       caller,
		Timestamp:    now,
	}))
	return settlement, nil
}
