package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Ledger Metrics
var (
	BetsPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBetsPlaced,
			Help: HelpTextBetsPlaced,
		},
		[]string{LabelMarket},
	)

	StakeVolume = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameStakeVolume,
			Help: HelpTextStakeVolume,
		},
		[]string{LabelMarket},
	)

	ClaimsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameClaimsSettled,
			Help: HelpTextClaimsSettled,
		},
		[]string{LabelResult},
	)

	PayoutVolume = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePayoutVolume,
			Help: HelpTextPayoutVolume,
		},
	)

	FeesCollected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameFeesCollected,
			Help: HelpTextFeesCollected,
		},
	)

	RoundsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRoundsResolved,
			Help: HelpTextRoundsResolved,
		},
		[]string{LabelMarket},
	)

	EmergencyMoves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEmergencyMoves,
			Help: HelpTextEmergencyMoves,
		},
		[]string{LabelDirection},
	)
)
