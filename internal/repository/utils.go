package repository

import (
	"context"
	"errors"

	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/logger"
)

// ErrTxClosed is returned by stores when Commit or Rollback runs on a finished tx
var ErrTxClosed = errors.New(domain.ErrMsgStoreTxClosed)

// SafeRollback rolls back a transaction and logs any error
func SafeRollback(ctx context.Context, tx Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, ErrTxClosed) {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}
