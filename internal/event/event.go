package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/osse101/roundpool/internal/domain"
)

// Type represents the type of an event
type Type string

// Ledger event types
const (
	MarketCreated     Type = domain.EventTypeMarketCreated
	MarketUpdated     Type = domain.EventTypeMarketUpdated
	BetPlaced         Type = domain.EventTypeBetPlaced
	RoundResolved     Type = domain.EventTypeRoundResolved
	PositionSettled   Type = domain.EventTypePositionSettled
	GovernanceUpdated Type = domain.EventTypeGovernanceUpdated
	PoolEmergency     Type = domain.EventTypePoolEmergency
)

// AllTypes lists every ledger event type
var AllTypes = []Type{
	MarketCreated,
	MarketUpdated,
	BetPlaced,
	RoundResolved,
	PositionSettled,
	GovernanceUpdated,
	PoolEmergency,
}

// Event is a ledger notification published after a commit
type Event struct {
	Version  string         `json:"version"`
	Type     Type           `json:"type"`
	Payload  any            `json:"payload"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of Bus. Handlers run synchronously
// in subscription order.
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish delivers the event to every subscriber of its type
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errors.Join(errs...))
	}
	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func newEvent(t Type, payload any) Event {
	return Event{Version: EventSchemaVersion, Type: t, Payload: payload}
}

// NewMarketCreatedEvent creates a market.created event
func NewMarketCreatedEvent(p domain.MarketCreatedPayload) Event {
	return newEvent(MarketCreated, p)
}

// NewMarketUpdatedEvent creates a market.updated event
func NewMarketUpdatedEvent(p domain.MarketUpdatedPayload) Event {
	e := newEvent(MarketUpdated, p)
	e.Metadata = map[string]any{"field": p.Field}
	return e
}

// NewBetPlacedEvent creates a bet.placed event
func NewBetPlacedEvent(p domain.BetPlacedPayload) Event {
	return newEvent(BetPlaced, p)
}

// NewRoundResolvedEvent creates a round.resolved event
func NewRoundResolvedEvent(p domain.RoundResolvedPayload) Event {
	return newEvent(RoundResolved, p)
}

// NewPositionSettledEvent creates a position.settled event
func NewPositionSettledEvent(p domain.PositionSettledPayload) Event {
	return newEvent(PositionSettled, p)
}

// NewGovernanceUpdatedEvent creates a governance.updated event
func NewGovernanceUpdatedEvent(p domain.GovernanceUpdatedPayload) Event {
	e := newEvent(GovernanceUpdated, p)
	e.Metadata = map[string]any{"field": p.Field}
	return e
}

// NewPoolEmergencyEvent creates a pool.emergency event
func NewPoolEmergencyEvent(p domain.PoolEmergencyPayload) Event {
	e := newEvent(PoolEmergency, p)
	e.Metadata = map[string]any{"direction": p.Direction}
	return e
}
