// Package pubsub provides a keyed, coalescing publish/subscribe broker. A
// subscriber that falls behind only ever sees the latest event per key.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Event represents a published event with a typed key and payload.
type Event[K comparable, T any] struct {
	Type      EventType
	Key       K
	Payload   T
	Seq       uint64 // broker-wide publish order
	Timestamp time.Time
}

// Subscriber provides a coalescing subscription.
type Subscriber[K comparable, T any] interface {
	Subscribe(ctx context.Context) *Subscription[K, T]
}

// Publisher allows publishing events with a typed key and payload.
type Publisher[K comparable, T any] interface {
	Publish(eventType EventType, key K, payload T)
}
