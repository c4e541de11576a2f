package wager

import (
	"context"
	"fmt"

	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/event"
	"github.com/osse101/roundpool/internal/logger"
	"github.com/osse101/roundpool/internal/repository"
	"github.com/osse101/roundpool/internal/utils"
)

// PlaceBet stakes caller's funds on an outcome of a round. Every check runs
// before the stake moves into the market pool.
func (s *service) PlaceBet(ctx context.Context, caller domain.Identity, req PlaceBetRequest) (*domain.Position, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgPlaceBetCalled, "caller", caller.Hex(), "market_id", req.MarketID,
		"round_id", req.RoundID, "outcome_id", req.OutcomeID, "amount", req.Amount)

	if caller == domain.ZeroIdentity {
		return nil, domain.ErrZeroIdentity
	}
	if req.Amount == 0 {
		return nil, domain.ErrZeroAmount
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, marketLockKey(req.MarketID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer repository.SafeRollback(ctx, tx)

	market, err := loadMarket(ctx, tx, req.MarketID)
	if err != nil {
		return nil, err
	}
	if market.Paused {
		return nil, fmt.Errorf("%w: market %d", domain.ErrMarketPaused, market.ID)
	}
	if req.Amount > market.MaxBet {
		return nil, fmt.Errorf("%w: %d > %d", domain.ErrBetAboveMax, req.Amount, market.MaxBet)
	}

	balance, err := s.vault.Balance(ctx, caller, market.Asset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetBalance, err)
	}
	if balance < req.Amount {
		return nil, fmt.Errorf("%w: have %d, need %d", domain.ErrBalanceTooLow, balance, req.Amount)
	}

	now := s.now()
	if now >= market.RoundDeadline(req.RoundID) {
		return nil, fmt.Errorf("%w: round %d closed at %d", domain.ErrRoundEnded, req.RoundID, market.RoundDeadline(req.RoundID))
	}
	if market.IsResolved(req.RoundID) {
		return nil, fmt.Errorf("%w: round %d", domain.ErrRoundResolved, req.RoundID)
	}

	outcomeTotal, err := utils.CheckedAdd(market.OutcomeTotals[req.OutcomeID], req.Amount)
	if err != nil {
		return nil, domain.ErrOverflow
	}
	roundTotal, err := utils.CheckedAdd(market.RoundTotals[req.RoundID], req.Amount)
	if err != nil {
		return nil, domain.ErrOverflow
	}

	j := newJournal(s.vault)
	if err := j.transfer(ctx, caller, domain.PoolIdentity(market.ID), market.Asset, req.Amount); err != nil {
		return nil, err
	}

	if !market.HasOutcome(req.OutcomeID) {
		market.Outcomes = append(market.Outcomes, req.OutcomeID)
	}
	market.OutcomeTotals[req.OutcomeID] = outcomeTotal
	market.RoundTotals[req.RoundID] = roundTotal

	position := &domain.Position{
		MarketID:  market.ID,
		OutcomeID: req.OutcomeID,
		RoundID:   req.RoundID,
		Amount:    req.Amount,
		Holder:    caller,
		PlacedAt:  now,
		Open:      true,
	}
	if err := tx.CreatePosition(ctx, position); err != nil {
		j.revert(ctx)
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSavePosition, err)
	}
	if err := tx.SaveMarket(ctx, market); err != nil {
		j.revert(ctx)
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSaveMarket, err)
	}

	if err := s.commit(ctx, tx, j); err != nil {
		return nil, err
	}

	log.Info(LogMsgBetPlaced, "position_id", position.ID, "market_id", market.ID)
	s.publish(ctx, event.NewBetPlacedEvent(domain.BetPlacedPayload{
		MarketID:   market.ID,
		RoundID:    req.RoundID,
		OutcomeID:  req.OutcomeID,
		Amount:     req.Amount,
		PositionID: position.ID,
		Caller:     caller,
		Timestamp:  now,
	}))
	return position, nil
}
