package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/procurio/backend/internal/domain/shared"
)

// InMemoryEventBus delivers domain events to subscribed handlers in
// process, synchronously. A failing handler never fails the publish:
// order state has already been persisted by the time events go out, so
// delivery problems are logged and swallowed.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	wildcard []shared.EventHandler
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the event types it declares.
// A handler declaring no event types receives every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	types := handler.EventTypes()
	if len(types) == 0 {
		b.wildcard = append(b.wildcard, handler)
	} else {
		for _, t := range types {
			b.handlers[t] = append(b.handlers[t], handler)
		}
	}

	b.logger.Debug("event handler subscribed", zap.Strings("event_types", types))
}

// Publish dispatches events to all matching handlers
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		for _, handler := range b.handlersFor(evt.EventType()) {
			if err := b.dispatch(ctx, handler, evt); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	typed := b.handlers[eventType]
	result := make([]shared.EventHandler, 0, len(typed)+len(b.wildcard))
	result = append(result, typed...)
	result = append(result, b.wildcard...)
	return result
}

// dispatch invokes one handler, containing panics
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", evt.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, evt)
}

// Ensure InMemoryEventBus implements EventPublisher
var _ shared.EventPublisher = (*InMemoryEventBus)(nil)
