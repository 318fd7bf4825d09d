// internal/service/event_bus.go
package service

import (
	"sync"

	"go.uber.org/zap"

	"rotator-service/internal/model"
)

// AllEvents subscribes to every event type
const AllEvents model.EventType = "*"

// EventBus manages event distribution
type EventBus struct {
	subscribers map[model.EventType][]chan model.RotatorEvent
	events      chan model.RotatorEvent
	mutex       sync.RWMutex
	logger      *zap.Logger
	stopOnce    sync.Once
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[model.EventType][]chan model.RotatorEvent),
		events:      make(chan model.RotatorEvent, 1000),
		logger:      logger,
	}
}

// Start distributes events until Stop is called
func (eb *EventBus) Start() {
	for event := range eb.events {
		eb.distributeEvent(event)
	}
}

// Stop stops distribution. Publish must not be called afterwards.
func (eb *EventBus) Stop() {
	eb.stopOnce.Do(func() {
		close(eb.events)
	})
}

// Publish publishes an event without blocking
func (eb *EventBus) Publish(event model.RotatorEvent) {
	select {
	case eb.events <- event:
	default:
		eb.logger.Warn("Event bus full, dropping event",
			zap.String("event_type", string(event.EventType)),
		)
	}
}

// Subscribe subscribes to events of a specific type, or AllEvents
func (eb *EventBus) Subscribe(eventType model.EventType) <-chan model.RotatorEvent {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan model.RotatorEvent, 100)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
	return subscriber
}

// Unsubscribe removes a subscription and closes its channel
func (eb *EventBus) Unsubscribe(ch <-chan model.RotatorEvent) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	for eventType, subscribers := range eb.subscribers {
		for i, subscriber := range subscribers {
			if subscriber == ch {
				eb.subscribers[eventType] = append(subscribers[:i], subscribers[i+1:]...)
				close(subscriber)
				return
			}
		}
	}
}

// distributeEvent distributes an event to subscribers
func (eb *EventBus) distributeEvent(event model.RotatorEvent) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	for _, eventType := range []model.EventType{event.EventType, AllEvents} {
		for _, subscriber := range eb.subscribers[eventType] {
			select {
			case subscriber <- event:
			default:
				// Subscriber is slow, skip
			}
		}
	}
}
