package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Handler processes one published payload.
type Handler func(ctx context.Context, payload any) error

// Queue interface
type Queue interface {
	Publish(ctx context.Context, topic string, payload any) error
	Subscribe(topic string, handler Handler) error
}

// InMemoryQueue delivers each message synchronously to every subscriber of
// its topic, in subscription order. Handlers are never retried.
type InMemoryQueue struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]Handler),
	}
}

// ErrNoSubscribers is returned when publishing to a topic nobody listens on.
var ErrNoSubscribers = errors.New("no subscribers")

// Publish sends a message to all subscribers and joins their errors.
func (q *InMemoryQueue) Publish(ctx context.Context, topic string, payload any) error {
	q.mu.RLock()
	handlers := q.handlers[topic]
	q.mu.RUnlock()

	if len(handlers) == 0 {
		return fmt.Errorf("topic %s: %w", topic, ErrNoSubscribers)
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("nil handler for topic %s", topic)
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}
