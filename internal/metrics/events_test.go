package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/event"
)

func TestEventMetricsCollector_BetPlaced(t *testing.T) {
	bus := event.NewMemoryBus()
	require.NoError(t, NewEventMetricsCollector().Register(bus))

	bets := testutil.ToFloat64(BetsPlaced.WithLabelValues("41"))
	stake := testutil.ToFloat64(StakeVolume.WithLabelValues("41"))

	evt := event.NewBetPlacedEvent(domain.BetPlacedPayload{MarketID: 41, Amount: 250})
	require.NoError(t, bus.Publish(context.Background(), evt))

	assert.Equal(t, bets+1, testutil.ToFloat64(BetsPlaced.WithLabelValues("41")))
	assert.Equal(t, stake+250, testutil.ToFloat64(StakeVolume.WithLabelValues("41")))
}

func TestEventMetricsCollector_PositionSettled(t *testing.T) {
	bus := event.NewMemoryBus()
	require.NoError(t, NewEventMetricsCollector().Register(bus))

	wins := testutil.ToFloat64(ClaimsSettled.WithLabelValues(ResultWin))
	losses := testutil.ToFloat64(ClaimsSettled.WithLabelValues(ResultLoss))
	fees := testutil.ToFloat64(FeesCollected)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, event.NewPositionSettledEvent(domain.PositionSettledPayload{Payout: 200, Fee: 10})))
	require.NoError(t, bus.Publish(ctx, event.NewPositionSettledEvent(domain.PositionSettledPayload{})))

	assert.Equal(t, wins+1, testutil.ToFloat64(ClaimsSettled.WithLabelValues(ResultWin)))
	assert.Equal(t, losses+1, testutil.ToFloat64(ClaimsSettled.WithLabelValues(ResultLoss)))
	assert.Equal(t, fees+10, testutil.ToFloat64(FeesCollected))
}

func TestEventMetricsCollector_BadPayloadIsCounted(t *testing.T) {
	c := NewEventMetricsCollector()
	before := testutil.ToFloat64(EventHandlerErrors.WithLabelValues(string(event.RoundResolved)))

	err := c.HandleEvent(context.Background(), event.Event{Type: event.RoundResolved, Payload: "garbage"})
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(EventHandlerErrors.WithLabelValues(string(event.RoundResolved))))
}
