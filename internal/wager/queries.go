package wager

import (
	"context"
	"fmt"

	"github.com/osse101/roundpool/internal/domain"
)

func (s *service) GetMarket(ctx context.Context, marketID uint64) (*domain.Market, error) {
	market, err := s.repo.GetMarket(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetMarket, err)
	}
	if market == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrMarketNotFound, marketID)
	}
	return market, nil
}

func (s *service) GetPosition(ctx context.Context, positionID uint64) (*domain.Position, error) {
	position, err := s.repo.GetPosition(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetPosition, err)
	}
	if position == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrPositionNotFound, positionID)
	}
	return position, nil
}

func (s *service) GetGovernance(ctx context.Context) (*domain.Governance, error) {
	gov, err := s.repo.GetGovernance(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetGovernance, err)
	}
	if gov == nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetGovernance, domain.ErrNotFound)
	}
	return gov, nil
}

// ListPositions returns every position held by holder, oldest first
func (s *service) ListPositions(ctx context.Context, holder domain.Identity) ([]domain.Position, error) {
	positions, err := s.repo.ListPositionsByHolder(ctx, holder)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToListPositions, err)
	}
	return positions, nil
}

// RoundStatus summarizes one round of a market
func (s *service) RoundStatus(ctx context.Context, marketID, roundID uint64) (*domain.RoundStatus, error) {
	market, err := s.GetMarket(ctx, marketID)
	if err != nil {
		return nil, err
	}
	weight, explicit := market.Weight(roundID)
	status := &domain.RoundStatus{
		MarketID:  marketID,
		RoundID:   roundID,
		Total:     market.RoundTotals[roundID],
		Weight:    weight,
		WeightSet: explicit,
		Deadline:  market.RoundDeadline(roundID),
		Resolved:  market.IsResolved(roundID),
	}
	if status.Resolved {
		status.ResolvedAt = market.Resolutions[roundID]
		status.Winners = market.WinningOutcomes[roundID]
	}
	return status, nil
}

// PoolBalance returns the custody balance of a market's pool account
func (s *service) PoolBalance(ctx context.Context, marketID uint64) (uint64, error) {
	market, err := s.GetMarket(ctx, marketID)
	if err != nil {
		return 0, err
	}
	balance, err := s.vault.Balance(ctx, domain.PoolIdentity(marketID), market.Asset)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextFailedToGetBalance, err)
	}
	return balance, nil
}

func (s *service) IsAdmin(ctx context.Context, id domain.Identity) (bool, error) {
	gov, err := s.GetGovernance(ctx)
	if err != nil {
		return false, err
	}
	return gov.IsAdmin(id), nil
}
