package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBroker_Subscribe(t *testing.T) {
	broker := NewBroker[string, string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := broker.Subscribe(ctx)
	broker.Publish(UpdatedEvent, "button", "hello")

	events, ok := sub.Next(ctx)
	require.True(t, ok)
	require.Len(t, events, 1)
	require.Equal(t, "hello", events[0].Payload)
	require.Equal(t, "button", events[0].Key)
	require.Equal(t, UpdatedEvent, events[0].Type)
	require.False(t, events[0].Timestamp.IsZero())
}

func TestBroker_MultipleSubscribers(t *testing.T) {
	broker := NewBroker[string, int]()
	defer broker.Close()

	ctx := context.Background()
	subs := []*Subscription[string, int]{
		broker.Subscribe(ctx),
		broker.Subscribe(ctx),
		broker.Subscribe(ctx),
	}
	require.Equal(t, 3, broker.SubscriberCount())

	broker.Publish(CreatedEvent, "k", 42)

	for i, sub := range subs {
		events := sub.Drain()
		require.Len(t, events, 1, "subscriber %d", i)
		require.Equal(t, 42, events[0].Payload, "subscriber %d", i)
	}
}

func TestBroker_SupersededEventsAreDropped(t *testing.T) {
	broker := NewBroker[string, int]()
	defer broker.Close()

	sub := broker.Subscribe(context.Background())
	broker.Publish(UpdatedEvent, "a", 1)
	broker.Publish(UpdatedEvent, "b", 10)
	broker.Publish(UpdatedEvent, "a", 2)
	broker.Publish(UpdatedEvent, "a", 3)

	events := sub.Drain()
	require.Len(t, events, 2)
	require.Equal(t, "a", events[0].Key, "keys keep their first-pending order")
	require.Equal(t, 3, events[0].Payload, "only the latest event for a key is delivered")
	require.Equal(t, 10, events[1].Payload)
	require.Greater(t, events[0].Seq, events[1].Seq)
	require.Equal(t, 2, sub.Superseded())

	require.Nil(t, sub.Drain())
}

func TestBroker_ContextCancellation(t *testing.T) {
	broker := NewBroker[string, string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()
	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	require.True(t, sub.Closed())

	_, ok := sub.Next(context.Background())
	require.False(t, ok, "closed subscription with nothing pending")
}

func TestBroker_NextWaitsForPublish(t *testing.T) {
	broker := NewBroker[int, string]()
	defer broker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sub := broker.Subscribe(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	var got []Event[int, string]
	go func() {
		defer wg.Done()
		got, _ = sub.Next(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	broker.Publish(UpdatedEvent, 7, "late")
	wg.Wait()

	require.Len(t, got, 1)
	require.Equal(t, "late", got[0].Payload)
}

func TestBroker_Close(t *testing.T) {
	broker := NewBroker[string, string]()
	sub := broker.Subscribe(context.Background())

	broker.Publish(UpdatedEvent, "k", "pending")
	broker.Close()
	broker.Close() // idempotent

	events, ok := sub.Next(context.Background())
	require.True(t, ok, "pending events survive close")
	require.Len(t, events, 1)

	_, ok = sub.Next(context.Background())
	require.False(t, ok)

	broker.Publish(UpdatedEvent, "k", "ignored")
	require.Equal(t, 0, broker.SubscriberCount())

	late := broker.Subscribe(context.Background())
	require.True(t, late.Closed())
}
