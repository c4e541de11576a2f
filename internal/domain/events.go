package domain

// Event type constants published on the event bus after a ledger operation
// commits. Event types follow the pattern: <entity>.<action>
const (
	// EventTypeMarketCreated is published when an admin registers a market
	EventTypeMarketCreated = "market.created"

	// EventTypeMarketUpdated is published when a governance setter changes a market
	EventTypeMarketUpdated = "market.updated"

	// EventTypeBetPlaced is published for every accepted bet
	EventTypeBetPlaced = "bet.placed"

	// EventTypeRoundResolved is published on each (re-)resolution of a round
	EventTypeRoundResolved = "round.resolved"

	// EventTypePositionSettled is published when a position is claimed
	EventTypePositionSettled = "position.settled"

	// EventTypeGovernanceUpdated is published on fee, admin or treasury changes
	EventTypeGovernanceUpdated = "governance.updated"

	// EventTypePoolEmergency is published on emergency withdraw or deposit
	EventTypePoolEmergency = "pool.emergency"
)
