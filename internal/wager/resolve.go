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

// Resolve declares the winning outcomes of a round. Resolving again replaces
// the previous winners; positions already claimed keep what they were paid.
// Winner ids are not checked against the market's outcomes.
func (s *service) Resolve(ctx context.Context, caller domain.Identity, marketID, roundID uint64, winners []uint64) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgResolveCalled, "caller", caller.Hex(), "market_id", marketID, "round_id", roundID, "winners", winners)

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

	now := s.now()
	overwrote := market.IsResolved(roundID)
	market.Resolutions[roundID] = now
	market.WinningOutcomes[roundID] = dedupe(winners)

	if err := tx.SaveMarket(ctx, market); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToSaveMarket, err)
	}
	if err := s.commit(ctx, tx, nil); err != nil {
		return err
	}

	if overwrote {
		log.Warn(LogMsgRoundResolutionReplaced, "market_id", marketID, "round_id", roundID)
	}
	log.Info(LogMsgRoundResolved, "market_id", marketID, "round_id", roundID)

	s.publish(ctx, event.NewRoundResolvedEvent(domain.RoundResolvedPayload{
		MarketID:  marketID,
		RoundID:   roundID,
		Winners:   market.WinningOutcomes[roundID],
		Overwrote: overwrote,
		Caller:    caller,
		Timestamp: now,
	}))
	return nil
}

// dedupe keeps the first occurrence of each id, preserving order
func dedupe(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
