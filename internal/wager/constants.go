package wager

// ============================================================================
// Market Update Fields
// ============================================================================

// Field names carried by market.updated and governance.updated events
const (
	FieldPaused       = "paused"
	FieldMaxBet       = "max_bet"
	FieldRoundLength  = "round_length"
	FieldCurrentRound = "current_round"
	FieldRoundWeight  = "round_weight"
	FieldFeeRate      = "fee_rate"
	FieldAdminAdded   = "admin_added"
	FieldAdminRemoved = "admin_removed"
	FieldTreasury     = "treasury"
)

// Emergency move directions
const (
	DirectionWithdraw = "withdraw"
	DirectionDeposit  = "deposit"
)

// ============================================================================
// Log Messages
// ============================================================================

// Log operation identifiers
const (
	LogMsgCreateMarketCalled      = "CreateMarket called"
	LogMsgUpdateMarketCalled      = "UpdateMarket called"
	LogMsgUpdateGovernanceCalled  = "UpdateGovernance called"
	LogMsgEmergencyMoveCalled     = "EmergencyMove called"
	LogMsgPlaceBetCalled          = "PlaceBet called"
	LogMsgResolveCalled           = "Resolve called"
	LogMsgClaimCalled             = "Claim called"
	LogMsgBetPlaced               = "Bet placed"
	LogMsgRoundResolved           = "Round resolved"
	LogMsgRoundResolutionReplaced = "Round resolution overwritten"
	LogMsgPositionSettled         = "Position settled"
	LogMsgCompensating            = "Commit failed, reversing custody moves"
	LogMsgCompensationFailed      = "Failed to reverse custody move"
	LogMsgPublishFailed           = "Failed to publish event"
)

// ============================================================================
// Error Context Messages
// ============================================================================

const (
	ErrContextFailedToLock          = "failed to acquire ledger lock"
	ErrContextFailedToBeginTx       = "failed to begin transaction"
	ErrContextFailedToCommitTx      = "failed to commit transaction"
	ErrContextFailedToGetGovernance = "failed to get governance"
	ErrContextFailedToSaveGov       = "failed to save governance"
	ErrContextFailedToGetMarket     = "failed to get market"
	ErrContextFailedToCreateMarket  = "failed to create market"
	ErrContextFailedToSaveMarket    = "failed to save market"
	ErrContextFailedToGetPosition   = "failed to get position"
	ErrContextFailedToSavePosition  = "failed to save position"
	ErrContextFailedToListPositions = "failed to list positions"
	ErrContextFailedToGetBalance    = "failed to get balance"
	ErrContextFailedToMoveFunds     = "failed to move funds"
	ErrContextFailedToComputePayout = "failed to compute payout"
)
