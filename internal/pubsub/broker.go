package pubsub

import (
	"context"
	"sync"
	"time"
)

// Broker is a generic keyed pub/sub broker. Publishing never blocks: each
// subscription keeps at most one pending event per key, and a newer event for
// the same key replaces the pending one.
type Broker[K comparable, T any] struct {
	subs map[*Subscription[K, T]]struct{}
	mu   sync.RWMutex
	done chan struct{}
	seq  uint64
}

// NewBroker creates a new broker.
func NewBroker[K comparable, T any]() *Broker[K, T] {
	return &Broker[K, T]{
		subs: make(map[*Subscription[K, T]]struct{}),
		done: make(chan struct{}),
	}
}

// Subscribe creates a new subscription.
// The subscription is automatically closed when ctx is cancelled.
func (b *Broker[K, T]) Subscribe(ctx context.Context) *Subscription[K, T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := newSubscription[K, T]()

	// Check if broker is closed
	select {
	case <-b.done:
		sub.close()
		return sub
	default:
	}

	b.subs[sub] = struct{}{}

	// Cleanup goroutine
	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return // Already closed
		}
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
		sub.close()
	}()

	return sub
}

// Publish queues an event for every subscriber, superseding any undelivered
// event with the same key.
func (b *Broker[K, T]) Publish(eventType EventType, key K, payload T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return
	default:
	}

	b.seq++
	event := Event[K, T]{
		Type:      eventType,
		Key:       key,
		Payload:   payload,
		Seq:       b.seq,
		Timestamp: time.Now(),
	}
	for sub := range b.subs {
		sub.push(event)
	}
}

// Close shuts down the broker and all subscriptions.
func (b *Broker[K, T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return // Already closed
	default:
	}

	close(b.done)
	for sub := range b.subs {
		sub.close()
	}
	b.subs = nil
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker[K, T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Subscription buffers the latest undelivered event per key.
type Subscription[K comparable, T any] struct {
	mu         sync.Mutex
	pending    map[K]Event[K, T]
	order      []K // keys in first-pending order
	notify     chan struct{}
	done       chan struct{}
	closed     bool
	superseded int
}

func newSubscription[K comparable, T any]() *Subscription[K, T] {
	return &Subscription[K, T]{
		pending: make(map[K]Event[K, T]),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (s *Subscription[K, T]) push(e Event[K, T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, ok := s.pending[e.Key]; ok {
		s.superseded++
	} else {
		s.order = append(s.order, e.Key)
	}
	s.pending[e.Key] = e

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription[K, T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

// Drain returns and clears the pending events, ordered by the first time each
// key became pending.
func (s *Subscription[K, T]) Drain() []Event[K, T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return nil
	}
	out := make([]Event[K, T], 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.pending[k])
	}
	s.pending = make(map[K]Event[K, T])
	s.order = nil
	return out
}

// Next blocks until events are pending, then drains them. It returns false
// once ctx is done or the subscription is closed with nothing left.
func (s *Subscription[K, T]) Next(ctx context.Context) ([]Event[K, T], bool) {
	for {
		if events := s.Drain(); len(events) > 0 {
			return events, true
		}
		select {
		case <-ctx.Done():
			return nil, false
		case <-s.done:
			if events := s.Drain(); len(events) > 0 {
				return events, true
			}
			return nil, false
		case <-s.notify:
		}
	}
}

// Superseded returns how many events were replaced before delivery.
func (s *Subscription[K, T]) Superseded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.superseded
}

// Closed reports whether the subscription has been closed.
func (s *Subscription[K, T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
