package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListenCmd_ReceivesBatch(t *testing.T) {
	broker := NewBroker[string, string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := broker.Subscribe(ctx)
	broker.Publish(UpdatedEvent, "button", "first")
	broker.Publish(UpdatedEvent, "button", "second")

	msg := ListenCmd(ctx, sub)()

	batch, ok := msg.(BatchMsg[string, string])
	require.True(t, ok, "msg should be BatchMsg[string, string]")
	require.Len(t, batch.Events, 1)
	require.Equal(t, "second", batch.Events[0].Payload)
}

func TestListenCmd_ContextCancelled(t *testing.T) {
	broker := NewBroker[string, string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := broker.Subscribe(ctx)
	cancel()

	require.Nil(t, ListenCmd(ctx, sub)(), "should return nil when context cancelled")
}

func TestContinuousListener(t *testing.T) {
	broker := NewBroker[int, string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewContinuousListener[int, string](ctx, broker)
	require.Equal(t, 1, broker.SubscriberCount())

	broker.Publish(CreatedEvent, 1, "mounted")
	batch, ok := listener.Listen()().(BatchMsg[int, string])
	require.True(t, ok)
	require.Equal(t, CreatedEvent, batch.Events[0].Type)

	broker.Publish(DeletedEvent, 1, "unmounted")
	batch, ok = listener.Listen()().(BatchMsg[int, string])
	require.True(t, ok)
	require.Equal(t, DeletedEvent, batch.Events[0].Type)
}
