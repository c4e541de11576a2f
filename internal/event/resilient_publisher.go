package event

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/roundpool/internal/logger"
)

type retryItem struct {
	event    Event
	attempts int
	lastErr  error
}

// ResilientPublisher wraps a Bus. A failed first delivery is retried in the
// background with exponential backoff and ends in the dead-letter file when
// every attempt fails. Publish itself never returns a delivery error.
type ResilientPublisher struct {
	inner      Bus
	maxRetries int
	baseDelay  time.Duration
	deadLetter *DeadLetterWriter

	queue chan retryItem
	done  chan struct{}
	wg    sync.WaitGroup
}

// NewResilientPublisher starts the retry worker
func NewResilientPublisher(inner Bus, maxRetries int, baseDelay time.Duration, deadLetterPath string) (*ResilientPublisher, error) {
	dlw, err := NewDeadLetterWriter(deadLetterPath)
	if err != nil {
		return nil, err
	}

	p := &ResilientPublisher{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		deadLetter: dlw,
		queue:      make(chan retryItem, RetryQueueBufferSize),
		done:       make(chan struct{}),
	}
	p.wg.Add(1)
	go p.worker()
	return p, nil
}

// Publish delivers the event, queuing it for retry on failure
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	err := p.inner.Publish(ctx, event)
	if err == nil {
		return nil
	}

	log := logger.FromContext(ctx)
	log.Warn(LogMsgEventPublishFailed, "event_type", event.Type, "error", err)

	select {
	case p.queue <- retryItem{event: event, attempts: 1, lastErr: err}:
	default:
		log.Error(LogMsgRetryQueueFull, "event_type", event.Type)
		p.writeDeadLetter(retryItem{event: event, attempts: 1, lastErr: err})
	}
	return nil
}

// Subscribe delegates to the inner bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.inner.Subscribe(eventType, handler)
}

// Shutdown stops the worker. Events still queued are dead-lettered.
func (p *ResilientPublisher) Shutdown(ctx context.Context) error {
	close(p.done)

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		logger.FromContext(ctx).Warn(LogMsgShutdownTimeout)
		return ctx.Err()
	}

	for {
		select {
		case item := <-p.queue:
			p.writeDeadLetter(item)
		default:
			return p.deadLetter.Close()
		}
	}
}

func (p *ResilientPublisher) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			return
		case item := <-p.queue:
			if !p.retry(item) {
				return
			}
		}
	}
}

// retry runs the remaining attempts for one event. It returns false when
// shutdown interrupted the backoff.
func (p *ResilientPublisher) retry(item retryItem) bool {
	ctx := context.Background()
	log := logger.FromContext(ctx)

	for item.attempts <= p.maxRetries {
		timer := time.NewTimer(CalculateRetryDelay(p.baseDelay, item.attempts))
		select {
		case <-p.done:
			timer.Stop()
			p.writeDeadLetter(item)
			return false
		case <-timer.C:
		}

		item.attempts++
		err := p.inner.Publish(ctx, item.event)
		if err == nil {
			log.Info(LogMsgEventRetrySucceeded, "event_type", item.event.Type, "attempt", item.attempts)
			return true
		}
		item.lastErr = err
	}

	log.Error(LogMsgEventRetryExhausted, "event_type", item.event.Type, "attempts", item.attempts)
	p.writeDeadLetter(item)
	return true
}

func (p *ResilientPublisher) writeDeadLetter(item retryItem) {
	if err := p.deadLetter.Write(item.event, item.attempts, item.lastErr); err != nil {
		logger.FromContext(context.Background()).Error(LogMsgDeadLetterWriteFailed, "error", err)
	}
}
