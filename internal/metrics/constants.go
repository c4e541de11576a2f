package metrics

// Metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"

	MetricNameBetsPlaced     = "bets_placed_total"
	MetricNameStakeVolume    = "stake_volume_total"
	MetricNameClaimsSettled  = "claims_settled_total"
	MetricNamePayoutVolume   = "payout_volume_total"
	MetricNameFeesCollected  = "fees_collected_total"
	MetricNameRoundsResolved = "rounds_resolved_total"
	MetricNameEmergencyMoves = "pool_emergency_total"
)

// Metric help text
const (
	HelpTextEventsPublished    = "Total number of ledger events observed, by type"
	HelpTextEventHandlerErrors = "Total number of ledger events the collector could not decode"

	HelpTextBetsPlaced     = "Total number of accepted bets"
	HelpTextStakeVolume    = "Total stake accepted, in asset base units"
	HelpTextClaimsSettled  = "Total number of settled positions, by result"
	HelpTextPayoutVolume   = "Total gross payout released from pools"
	HelpTextFeesCollected  = "Total protocol fees routed to the treasury"
	HelpTextRoundsResolved = "Total number of round resolutions, including overwrites"
	HelpTextEmergencyMoves = "Total number of emergency pool movements, by direction"
)

// Label names
const (
	LabelType      = "type"
	LabelMarket    = "market"
	LabelResult    = "result"
	LabelDirection = "direction"
)

// Label values
const (
	ResultWin  = "win"
	ResultLoss = "loss"
)

// Log messages
const (
	LogMsgMetricsRecorded = "Metrics recorded for event"
	LogMsgPayloadDecode   = "Failed to decode event payload for metrics"
)
