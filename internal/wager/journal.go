package wager

import (
	"context"
	"fmt"

	"github.com/osse101/roundpool/internal/custody"
	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/logger"
)

type move struct {
	from, to domain.Identity
	asset    string
	amount   uint64
}

// journal records custody moves made inside one operation so they can be
// reversed if the ledger transaction fails to commit
type journal struct {
	vault custody.Custody
	moves []move
}

func newJournal(vault custody.Custody) *journal {
	return &journal{vault: vault}
}

// transfer moves value and records it. Zero amounts are skipped.
func (j *journal) transfer(ctx context.Context, from, to domain.Identity, asset string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := custody.Transfer(ctx, j.vault, from, to, asset, amount); err != nil {
		j.revert(ctx)
		return fmt.Errorf("%s: %w", ErrContextFailedToMoveFunds, err)
	}
	j.moves = append(j.moves, move{from: from, to: to, asset: asset, amount: amount})
	return nil
}

// revert undoes recorded moves, newest first
func (j *journal) revert(ctx context.Context) {
	if len(j.moves) == 0 {
		return
	}
	log := logger.FromContext(ctx)
	log.Warn(LogMsgCompensating, "moves", len(j.moves))
	for i := len(j.moves) - 1; i >= 0; i-- {
		m := j.moves[i]
		if err := custody.Transfer(ctx, j.vault, m.to, m.from, m.asset, m.amount); err != nil {
			log.Error(LogMsgCompensationFailed, "from", m.to.Hex(), "to", m.from.Hex(), "asset", m.asset, "amount", m.amount, "error", err)
		}
	}
	j.moves = nil
}
