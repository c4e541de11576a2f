package domain

import "math"

// Fixed-point scale shared by round weights and the fee rate.
// A value equal to Scale represents a 1.0 multiplier (100%).
const Scale uint64 = 10_000

// Governance bounds
const (
	// MinRoundWeight is the floor for an explicit round weight (0.5x)
	MinRoundWeight uint64 = Scale / 2

	// MaxFeeRate caps the protocol fee at 40% of profit
	MaxFeeRate uint64 = Scale * 40 / 100

	// DefaultFeeRate is applied until governance changes it (10%)
	DefaultFeeRate uint64 = Scale / 10
)

// Market defaults
const (
	// DefaultRoundLength is the round length in seconds for new markets
	DefaultRoundLength int64 = 86_400

	// NoDeadline marks a round whose close lies beyond the representable range
	NoDeadline int64 = math.MaxInt64
)

// Lock keys used to serialize ledger operations
const (
	LockKeyGovernance   = "roundpool:governance"
	LockKeyMarketPrefix = "roundpool:market:"
)
