package wager

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/utils"
)

// ComputePayout returns what a position is owed once its round is resolved.
//
//	pool       = sum of RoundTotals[r] for r <= round (earlier rounds carry forward)
//	winnerSum  = sum of OutcomeTotals[o] over the round's winners
//	payout     = floor(pool * weight/Scale * amount/winnerSum)
//
// OutcomeTotals are all-time totals, so an outcome id reused in an earlier
// round inflates winnerSum for a later one. Losing positions and rounds whose
// winners carry no stake pay 0.
func ComputePayout(market *domain.Market, position *domain.Position) (uint64, error) {
	if market == nil || position == nil || market.ID != position.MarketID {
		return 0, fmt.Errorf("%w: position does not belong to market", domain.ErrInvalidArgument)
	}
	if !market.IsResolved(position.RoundID) {
		return 0, fmt.Errorf("%w: round %d", domain.ErrRoundNotResolved, position.RoundID)
	}
	if !market.IsWinner(position.RoundID, position.OutcomeID) {
		return 0, nil
	}

	pool := new(uint256.Int)
	for r, total := range market.RoundTotals {
		if r <= position.RoundID {
			pool.Add(pool, uint256.NewInt(total))
		}
	}

	winnerSum := new(uint256.Int)
	for _, o := range market.WinningOutcomes[position.RoundID] {
		winnerSum.Add(winnerSum, uint256.NewInt(market.OutcomeTotals[o]))
	}
	if winnerSum.IsZero() {
		return 0, nil
	}
	if !pool.IsUint64() || !winnerSum.IsUint64() {
		return 0, domain.ErrOverflow
	}

	weight, _ := market.Weight(position.RoundID)

	adjusted, err := utils.Whole(pool.Uint64()).Mul(utils.NewRatio(weight, domain.Scale))
	if err != nil {
		return 0, domain.ErrOverflow
	}
	share, err := adjusted.Mul(utils.NewRatio(position.Amount, winnerSum.Uint64()))
	if err != nil {
		return 0, domain.ErrOverflow
	}
	payout, err := share.Floor()
	if err != nil {
		return 0, domain.ErrOverflow
	}
	return payout, nil
}

// Fee returns the protocol cut of a payout. Only profit above the stake is
// charged; principal comes back untouched.
func Fee(payout, amount, feeRate uint64) (uint64, error) {
	if payout <= amount {
		return 0, nil
	}
	fee, err := utils.MulDiv(payout-amount, feeRate, domain.Scale)
	if err != nil {
		return 0, domain.ErrOverflow
	}
	return fee, nil
}
