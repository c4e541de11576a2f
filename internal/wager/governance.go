package wager

import (
	"context"
	"fmt"
	"slices"

	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/event"
	"github.com/osse101/roundpool/internal/logger"
	"github.com/osse101/roundpool/internal/repository"
)

// CreateMarket registers a market for an asset. Admin only.
func (s *service) CreateMarket(ctx context.Context, caller domain.Identity, req CreateMarketRequest) (*domain.Market, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgCreateMarketCalled, "caller", caller.Hex(), "asset", req.Asset, "max_bet", req.MaxBet)

	if req.Asset == "" {
		return nil, domain.ErrEmptyAsset
	}
	if req.MaxBet == 0 {
		return nil, domain.ErrZeroMaxBet
	}
	if req.RoundLength < 0 {
		return nil, domain.ErrZeroRoundLength
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	roundLength := req.RoundLength
	if roundLength == 0 {
		roundLength = s.defaultRoundLength
	}

	unlock, err := s.lock(ctx, domain.LockKeyGovernance)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer repository.SafeRollback(ctx, tx)

	gov, err := loadGovernance(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(gov, caller); err != nil {
		return nil, err
	}

	now := s.now()
	market := domain.NewMarket(0, req.Asset, req.MaxBet, now, roundLength)
	if err := tx.CreateMarket(ctx, market); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCreateMarket, err)
	}

	if err := s.commit(ctx, tx, nil); err != nil {
		return nil, err
	}

	log.Info("Market created", "market_id", market.ID, "asset", market.Asset)
	s.publish(ctx, event.NewMarketCreatedEvent(domain.MarketCreatedPayload{
		MarketID:    market.ID,
		Asset:       market.Asset,
		MaxBet:      market.MaxBet,
		RoundLength: market.RoundLength,
		Creator:     caller,
		Timestamp:   now,
	}))
	return market, nil
}

// SetPaused toggles bet acceptance on a market. Claims are unaffected.
func (s *service) SetPaused(ctx context.Context, caller domain.Identity, marketID uint64, paused bool) error {
	return s.updateMarket(ctx, caller, marketID, FieldPaused, paused, func(m *domain.Market) error {
		m.Paused = paused
		return nil
	})
}

func (s *service) SetMaxBet(ctx context.Context, caller domain.Identity, marketID, maxBet uint64) error {
	return s.updateMarket(ctx, caller, marketID, FieldMaxBet, maxBet, func(m *domain.Market) error {
		if maxBet == 0 {
			return domain.ErrZeroMaxBet
		}
		m.MaxBet = maxBet
		return nil
	})
}

// SetRoundLength changes the round length. Deadlines of every round,
// past ones included, are recomputed from the new value.
func (s *service) SetRoundLength(ctx context.Context, caller domain.Identity, marketID uint64, length int64) error {
	return s.updateMarket(ctx, caller, marketID, FieldRoundLength, length, func(m *domain.Market) error {
		if length <= 0 {
			return domain.ErrZeroRoundLength
		}
		m.RoundLength = length
		return nil
	})
}

// SetCurrentRound records the advertised round. It gates nothing.
func (s *service) SetCurrentRound(ctx context.Context, caller domain.Identity, marketID, round uint64) error {
	return s.updateMarket(ctx, caller, marketID, FieldCurrentRound, round, func(m *domain.Market) error {
		m.CurrentRound = round
		return nil
	})
}

func (s *service) SetRoundWeight(ctx context.Context, caller domain.Identity, marketID, round, weight uint64) error {
	return s.SetRoundWeights(ctx, caller, marketID, []uint64{round}, []uint64{weight})
}

// SetRoundWeights sets several weights at once. Either every pair is
// applied or none is.
func (s *service) SetRoundWeights(ctx context.Context, caller domain.Identity, marketID uint64, rounds, weights []uint64) error {
	value := map[string][]uint64{"rounds": rounds, "weights": weights}
	return s.updateMarket(ctx, caller, marketID, FieldRoundWeight, value, func(m *domain.Market) error {
		if len(rounds) != len(weights) {
			return fmt.Errorf("%w: %d rounds, %d weights", domain.ErrLengthMismatch, len(rounds), len(weights))
		}
		for i, w := range weights {
			if w < domain.MinRoundWeight {
				return fmt.Errorf("%w: round %d weight %d", domain.ErrWeightBelowFloor, rounds[i], w)
			}
		}
		for i, r := range rounds {
			m.RoundWeights[r] = weights[i]
		}
		return nil
	})
}

func (s *service) updateMarket(ctx context.Context, caller domain.Identity, marketID uint64, field string, value any, apply func(*domain.Market) error) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgUpdateMarketCalled, "caller", caller.Hex(), "market_id", marketID, "field", field)

	unlock, err := s.lock(ctx, marketLockKey(marketID))
	if err != nil {
		return err
	}
	defer unlock()

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer repository.SafeRollback(ctx, tx)

	gov, err := loadGovernance(ctx, tx)
	if err != nil {
		return err
	}
	if err := requireAdmin(gov, caller); err != nil {
		return err
	}

	market, err := loadMarket(ctx, tx, marketID)
	if err != nil {
		return err
	}
	if err := apply(market); err != nil {
		return err
	}
	if err := tx.SaveMarket(ctx, market); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToSaveMarket, err)
	}

	if err := s.commit(ctx, tx, nil); err != nil {
		return err
	}

	s.publish(ctx, event.NewMarketUpdatedEvent(domain.MarketUpdatedPayload{
		MarketID:  marketID,
		Field:     field,
		Value:     value,
		Caller:    caller,
		Timestamp: s.now(),
	}))
	return nil
}

// SetFeeRate sets the protocol fee charged on profit. Admin only.
func (s *service) SetFeeRate(ctx context.Context, caller domain.Identity, rate uint64) error {
	return s.updateGovernance(ctx, caller, false, FieldFeeRate, rate, func(g *domain.Governance) error {
		if rate == 0 || rate > domain.MaxFeeRate {
			return fmt.Errorf("%w: %d", domain.ErrFeeRateOutOfRange, rate)
		}
		g.FeeRate = rate
		return nil
	})
}

// AddAdmin grants admin rights. Deployer only.
func (s *service) AddAdmin(ctx context.Context, caller, admin domain.Identity) error {
	return s.updateGovernance(ctx, caller, true, FieldAdminAdded, admin, func(g *domain.Governance) error {
		if admin == domain.ZeroIdentity {
			return domain.ErrZeroIdentity
		}
		if g.IsAdmin(admin) {
			return fmt.Errorf("%w: %s", domain.ErrAdminExists, admin.Hex())
		}
		g.Admins = append(g.Admins, admin)
		return nil
	})
}

// RemoveAdmin revokes admin rights. Deployer only. The deployer keeps its
// deployer-only powers even after removing itself from the admin set.
func (s *service) RemoveAdmin(ctx context.Context, caller, admin domain.Identity) error {
	return s.updateGovernance(ctx, caller, true, FieldAdminRemoved, admin, func(g *domain.Governance) error {
		idx := slices.Index(g.Admins, admin)
		if idx < 0 {
			return fmt.Errorf("%w: %s", domain.ErrAdminNotFound, admin.Hex())
		}
		g.Admins = slices.Delete(g.Admins, idx, idx+1)
		return nil
	})
}

// SetTreasury changes the fee recipient. Deployer only.
func (s *service) SetTreasury(ctx context.Context, caller, treasury domain.Identity) error {
	return s.updateGovernance(ctx, caller, true, FieldTreasury, treasury, func(g *domain.Governance) error {
		if treasury == domain.ZeroIdentity {
			return domain.ErrZeroIdentity
		}
		g.Treasury = treasury
		return nil
	})
}

func (s *service) updateGovernance(ctx context.Context, caller domain.Identity, deployerOnly bool, field string, value any, apply func(*domain.Governance) error) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgUpdateGovernanceCalled, "caller", caller.Hex(), "field", field)

	unlock, err := s.lock(ctx, domain.LockKeyGovernance)
	if err != nil {
		return err
	}
	defer unlock()

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer repository.SafeRollback(ctx, tx)

	gov, err := loadGovernance(ctx, tx)
	if err != nil {
		return err
	}
	if deployerOnly {
		err = requireDeployer(gov, caller)
	} else {
		err = requireAdmin(gov, caller)
	}
	if err != nil {
		return err
	}

	if err := apply(gov); err != nil {
		return err
	}
	if err := tx.SaveGovernance(ctx, gov); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToSaveGov, err)
	}

	if err := s.commit(ctx, tx, nil); err != nil {
		return err
	}

	s.publish(ctx, event.NewGovernanceUpdatedEvent(domain.GovernanceUpdatedPayload{
		Field:     field,
		Value:     value,
		Caller:    caller,
		Timestamp: s.now(),
	}))
	return nil
}

// EmergencyWithdraw moves amount out of a market's pool to the deployer
func (s *service) EmergencyWithdraw(ctx context.Context, caller domain.Identity, marketID, amount uint64) error {
	return s.emergencyMove(ctx, caller, marketID, amount, DirectionWithdraw)
}

// EmergencyDeposit moves amount from the deployer into a market's pool
func (s *service) EmergencyDeposit(ctx context.Context, caller domain.Identity, marketID, amount uint64) error {
	return s.emergencyMove(ctx, caller, marketID, amount, DirectionDeposit)
}

func (s *service) emergencyMove(ctx context.Context, caller domain.Identity, marketID, amount uint64, direction string) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgEmergencyMoveCalled, "caller", caller.Hex(), "market_id", marketID, "amount", amount, "direction", direction)

	unlock, err := s.lock(ctx, marketLockKey(marketID))
	if err != nil {
		return err
	}
	defer unlock()

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer repository.SafeRollback(ctx, tx)

	gov, err := loadGovernance(ctx, tx)
	if err != nil {
		return err
	}
	if err := requireDeployer(gov, caller); err != nil {
		return err
	}
	if amount == 0 {
		return domain.ErrZeroAmount
	}
	market, err := loadMarket(ctx, tx, marketID)
	if err != nil {
		return err
	}

	pool := domain.PoolIdentity(marketID)
	from, to := pool, gov.Deployer
	shortfall := domain.ErrPoolBalanceTooLow
	if direction == DirectionDeposit {
		from, to = gov.Deployer, pool
		shortfall = domain.ErrBalanceTooLow
	}

	balance, err := s.vault.Balance(ctx, from, market.Asset)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToGetBalance, err)
	}
	if balance < amount {
		return fmt.Errorf("%w: have %d, need %d", shortfall, balance, amount)
	}

	j := newJournal(s.vault)
	if err := j.transfer(ctx, from, to, market.Asset, amount); err != nil {
		return err
	}
	if err := s.commit(ctx, tx, j); err != nil {
		return err
	}

	s.publish(ctx, event.NewPoolEmergencyEvent(domain.PoolEmergencyPayload{
		MarketID:  marketID,
		Direction: direction,
		Amount:    amount,
		Caller:    caller,
		Timestamp: s.now(),
	}))
	return nil
}
