package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client
}

func TestNotifierDeliversChangeEvents(t *testing.T) {
	client := setupTestRedis(t)
	n := NewChangeNotifier(client, "")

	ctx := context.Background()
	changes := make(chan struct{}, 4)

	unsubscribe, err := n.Subscribe(ctx, func() { changes <- struct{}{} }, nil)
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, n.NotifyChanged(ctx))
	require.NoError(t, n.NotifyChanged(ctx))

	for i := 0; i < 2; i++ {
		select {
		case <-changes:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for change event %d", i+1)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	client := setupTestRedis(t)
	n := NewChangeNotifier(client, "test:changed")

	ctx := context.Background()
	changes := make(chan struct{}, 4)

	unsubscribe, err := n.Subscribe(ctx, func() { changes <- struct{}{} }, nil)
	require.NoError(t, err)

	unsubscribe()
	// Calling twice must be safe.
	unsubscribe()

	require.NoError(t, n.NotifyChanged(ctx))

	select {
	case <-changes:
		t.Fatal("received change event after unsubscribe")
	case <-time.After(200 * time.Millisecond):
	}
}
