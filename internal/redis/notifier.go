package redisclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultChangeChannel carries record-change events for the appointment book.
const DefaultChangeChannel = "clinicbook:records:changed"

var ErrFeedClosed = errors.New("change feed closed")

// Notifier is the collection change feed: the lifecycle service publishes one
// event per committed mutation, and read-side subscribers treat each event as
// a cue to reload a full snapshot. Payloads carry no diff on purpose.
type Notifier interface {
	NotifyChanged(ctx context.Context) error
	Subscribe(ctx context.Context, onChange func(), onError func(error)) (unsubscribe func(), err error)
}

type changeNotifier struct {
	client  *redis.Client
	channel string
}

// NewChangeNotifier creates a pub/sub backed Notifier on the given channel.
// An empty channel name selects DefaultChangeChannel.
func NewChangeNotifier(client *redis.Client, channel string) Notifier {
	if channel == "" {
		channel = DefaultChangeChannel
	}
	return &changeNotifier{client: client, channel: channel}
}

func (n *changeNotifier) NotifyChanged(ctx context.Context) error {
	if err := n.client.Publish(ctx, n.channel, "changed").Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

func (n *changeNotifier) Subscribe(ctx context.Context, onChange func(), onError func(error)) (func(), error) {
	sub := n.client.Subscribe(ctx, n.channel)

	// Force the SUBSCRIBE handshake so a dead connection fails here, not later.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe change feed: %w", err)
	}

	done := make(chan struct{})

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case _, ok := <-ch:
				if !ok {
					if onError != nil {
						onError(ErrFeedClosed)
					}
					return
				}
				onChange()
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}

	return unsubscribe, nil
}
