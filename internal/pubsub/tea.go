package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// BatchMsg carries every event drained in one wake-up, at most one per key.
type BatchMsg[K comparable, T any] struct {
	Events []Event[K, T]
}

// ListenCmd creates a Bubble Tea command that waits for pending events.
// Returns the drained events as a BatchMsg.
// Returns nil if the context is cancelled or the subscription is closed.
func ListenCmd[K comparable, T any](ctx context.Context, sub *Subscription[K, T]) tea.Cmd {
	return func() tea.Msg {
		events, ok := sub.Next(ctx)
		if !ok {
			return nil
		}
		return BatchMsg[K, T]{Events: events}
	}
}

// ContinuousListener maintains subscription state for the Bubble Tea update loop.
type ContinuousListener[K comparable, T any] struct {
	ctx context.Context
	sub *Subscription[K, T]
}

// NewContinuousListener creates a new listener that subscribes to the broker.
// The subscription is automatically cleaned up when the context is cancelled.
func NewContinuousListener[K comparable, T any](ctx context.Context, s Subscriber[K, T]) *ContinuousListener[K, T] {
	return &ContinuousListener[K, T]{
		ctx: ctx,
		sub: s.Subscribe(ctx),
	}
}

// Listen returns a tea.Cmd that waits for the next batch.
// Call this method in your Update function after handling a batch
// to continue receiving events.
func (l *ContinuousListener[K, T]) Listen() tea.Cmd {
	return ListenCmd(l.ctx, l.sub)
}
