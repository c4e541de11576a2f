package domain

import (
	"errors"
	"fmt"
)

// Error kind messages. Every ledger error wraps exactly one kind so callers can
// branch with errors.Is without knowing the specific failure.
const (
	ErrMsgUnauthorized      = "unauthorized"
	ErrMsgInvalidArgument   = "invalid argument"
	ErrMsgNotFound          = "not found"
	ErrMsgAlreadyExists     = "already exists"
	ErrMsgStateConflict     = "state conflict"
	ErrMsgInsufficientFunds = "insufficient funds"
)

// Error kinds
var (
	ErrUnauthorized      = errors.New(ErrMsgUnauthorized)
	ErrInvalidArgument   = errors.New(ErrMsgInvalidArgument)
	ErrNotFound          = errors.New(ErrMsgNotFound)
	ErrAlreadyExists     = errors.New(ErrMsgAlreadyExists)
	ErrStateConflict     = errors.New(ErrMsgStateConflict)
	ErrInsufficientFunds = errors.New(ErrMsgInsufficientFunds)
)

// Specific error messages - use these in assert.Contains() checks
const (
	ErrMsgNotAdmin           = "caller is not an admin"
	ErrMsgNotDeployer        = "caller is not the deployer"
	ErrMsgNotPositionHolder  = "caller does not hold this position"
	ErrMsgZeroMaxBet         = "max bet must be positive"
	ErrMsgZeroRoundLength    = "round length must be positive"
	ErrMsgZeroAmount         = "amount must be positive"
	ErrMsgWeightBelowFloor   = "round weight below minimum"
	ErrMsgFeeRateOutOfRange  = "fee rate out of range"
	ErrMsgLengthMismatch     = "rounds and weights length mismatch"
	ErrMsgZeroIdentity       = "identity must not be the zero address"
	ErrMsgEmptyAsset         = "asset must not be empty"
	ErrMsgMarketNotFound     = "market not found"
	ErrMsgPositionNotFound   = "position not found"
	ErrMsgAdminExists        = "admin already present"
	ErrMsgAdminNotFound      = "admin not present"
	ErrMsgMarketPaused       = "market is paused"
	ErrMsgRoundEnded         = "round has ended"
	ErrMsgRoundResolved      = "round already resolved"
	ErrMsgRoundNotResolved   = "round not resolved"
	ErrMsgPositionSettled    = "position already settled"
	ErrMsgBetAboveMax        = "amount exceeds max bet"
	ErrMsgBalanceTooLow      = "balance below amount"
	ErrMsgPoolBalanceTooLow  = "pool balance below amount"
	ErrMsgStoreTxClosed      = "tx is closed"
	ErrMsgArithmeticOverflow = "arithmetic overflow"
)

// Specific ledger errors. Wrap with fmt.Errorf("%w: ...", domain.ErrXxx, details)
// for additional context.
var (
	ErrNotAdmin          = kindError(ErrMsgNotAdmin, ErrUnauthorized)
	ErrNotDeployer       = kindError(ErrMsgNotDeployer, ErrUnauthorized)
	ErrNotPositionHolder = kindError(ErrMsgNotPositionHolder, ErrUnauthorized)

	ErrZeroMaxBet        = kindError(ErrMsgZeroMaxBet, ErrInvalidArgument)
	ErrZeroRoundLength   = kindError(ErrMsgZeroRoundLength, ErrInvalidArgument)
	ErrZeroAmount        = kindError(ErrMsgZeroAmount, ErrInvalidArgument)
	ErrWeightBelowFloor  = kindError(ErrMsgWeightBelowFloor, ErrInvalidArgument)
	ErrFeeRateOutOfRange = kindError(ErrMsgFeeRateOutOfRange, ErrInvalidArgument)
	ErrLengthMismatch    = kindError(ErrMsgLengthMismatch, ErrInvalidArgument)
	ErrZeroIdentity      = kindError(ErrMsgZeroIdentity, ErrInvalidArgument)
	ErrEmptyAsset        = kindError(ErrMsgEmptyAsset, ErrInvalidArgument)
	ErrOverflow          = kindError(ErrMsgArithmeticOverflow, ErrInvalidArgument)

	ErrMarketNotFound   = kindError(ErrMsgMarketNotFound, ErrNotFound)
	ErrPositionNotFound = kindError(ErrMsgPositionNotFound, ErrNotFound)
	ErrAdminNotFound    = kindError(ErrMsgAdminNotFound, ErrNotFound)

	ErrAdminExists = kindError(ErrMsgAdminExists, ErrAlreadyExists)

	ErrMarketPaused     = kindError(ErrMsgMarketPaused, ErrStateConflict)
	ErrRoundEnded       = kindError(ErrMsgRoundEnded, ErrStateConflict)
	ErrRoundResolved    = kindError(ErrMsgRoundResolved, ErrStateConflict)
	ErrRoundNotResolved = kindError(ErrMsgRoundNotResolved, ErrStateConflict)
	ErrPositionSettled  = kindError(ErrMsgPositionSettled, ErrStateConflict)

	ErrBetAboveMax       = kindError(ErrMsgBetAboveMax, ErrInsufficientFunds)
	ErrBalanceTooLow     = kindError(ErrMsgBalanceTooLow, ErrInsufficientFunds)
	ErrPoolBalanceTooLow = kindError(ErrMsgPoolBalanceTooLow, ErrInsufficientFunds)
)

func kindError(msg string, kind error) error {
	return fmt.Errorf("%s: %w", msg, kind)
}

// Kind names used in reports and scenario expectations
const (
	KindUnauthorized      = "unauthorized"
	KindInvalidArgument   = "invalid_argument"
	KindNotFound          = "not_found"
	KindAlreadyExists     = "already_exists"
	KindStateConflict     = "state_conflict"
	KindInsufficientFunds = "insufficient_funds"
	KindInternal          = "internal"
)

// KindOf names the error kind err wraps. Errors outside the ledger taxonomy
// report KindInternal; nil reports "".
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrStateConflict):
		return KindStateConflict
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	default:
		return KindInternal
	}
}
