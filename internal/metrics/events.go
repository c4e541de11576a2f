package metrics

import (
	"context"
	"strconv"

	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/event"
	"github.com/osse101/roundpool/internal/logger"
)

// EventMetricsCollector subscribes to ledger events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to every ledger event type
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	for _, eventType := range event.AllTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}
	return nil
}

// HandleEvent updates metrics for one event. Decode failures are counted and
// swallowed so a bad payload never fails the publisher.
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	if err := record(evt); err != nil {
		EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		log.Debug(LogMsgPayloadDecode, "type", evt.Type, "error", err)
		return nil
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}

func record(evt event.Event) error {
	switch evt.Type {
	case event.BetPlaced:
		p, err := event.DecodePayload[domain.BetPlacedPayload](evt.Payload)
		if err != nil {
			return err
		}
		market := marketLabel(p.MarketID)
		BetsPlaced.WithLabelValues(market).Inc()
		StakeVolume.WithLabelValues(market).Add(float64(p.Amount))

	case event.PositionSettled:
		p, err := event.DecodePayload[domain.PositionSettledPayload](evt.Payload)
		if err != nil {
			return err
		}
		result := ResultLoss
		if p.Payout > 0 {
			result = ResultWin
		}
		ClaimsSettled.WithLabelValues(result).Inc()
		PayoutVolume.Add(float64(p.Payout))
		FeesCollected.Add(float64(p.Fee))

	case event.RoundResolved:
		p, err := event.DecodePayload[domain.RoundResolvedPayload](evt.Payload)
		if err != nil {
			return err
		}
		RoundsResolved.WithLabelValues(marketLabel(p.MarketID)).Inc()

	case event.PoolEmergency:
		p, err := event.DecodePayload[domain.PoolEmergencyPayload](evt.Payload)
		if err != nil {
			return err
		}
		EmergencyMoves.WithLabelValues(p.Direction).Inc()
	}
	return nil
}

func marketLabel(id uint64) string {
	return strconv.FormatUint(id, 10)
}
