package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/roundpool/internal/domain"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	var got Event

	bus.Subscribe(BetPlaced, func(ctx context.Context, e Event) error {
		got = e
		return nil
	})

	evt := NewBetPlacedEvent(domain.BetPlacedPayload{MarketID: 1, Amount: 100})
	require.NoError(t, bus.Publish(context.Background(), evt))

	assert.Equal(t, BetPlaced, got.Type)
	assert.Equal(t, EventSchemaVersion, got.Version)
	payload, err := DecodePayload[domain.BetPlacedPayload](got.Payload)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), payload.Amount)
}

func TestMemoryBus_NoSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	assert.NoError(t, bus.Publish(context.Background(), Event{Type: RoundResolved}))
}

func TestMemoryBus_HandlerErrorsAreJoined(t *testing.T) {
	bus := NewMemoryBus()
	boom := errors.New("boom")
	calls := 0

	bus.Subscribe(MarketCreated, func(ctx context.Context, e Event) error {
		calls++
		return boom
	})
	bus.Subscribe(MarketCreated, func(ctx context.Context, e Event) error {
		calls++
		return nil
	})

	err := bus.Publish(context.Background(), Event{Type: MarketCreated})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestDecodePayload_FromMap(t *testing.T) {
	raw := map[string]any{"position_id": 7, "payout": 200, "fee": 10}

	p, err := DecodePayload[domain.PositionSettledPayload](raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), p.PositionID)
	assert.Equal(t, uint64(200), p.Payout)
	assert.Equal(t, uint64(10), p.Fee)
}

func TestConstructors_SetMetadata(t *testing.T) {
	e := NewMarketUpdatedEvent(domain.MarketUpdatedPayload{Field: "paused", Value: true})
	assert.Equal(t, "paused", e.Metadata["field"])

	e = NewPoolEmergencyEvent(domain.PoolEmergencyPayload{Direction: "withdraw"})
	assert.Equal(t, "withdraw", e.Metadata["direction"])
}

func TestCalculateRetryDelay(t *testing.T) {
	assert.Equal(t, RetryInitialDelay, CalculateRetryDelay(RetryInitialDelay, 1))
	assert.Equal(t, 4*RetryInitialDelay, CalculateRetryDelay(RetryInitialDelay, 3))
}
