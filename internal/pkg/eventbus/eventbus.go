package eventbus

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Bus is a thin wrapper over watermill's in-process gochannel pub/sub, scoped
// to callback-style consumers with explicit unsubscribe handles.
type Bus struct {
	pubSub *gochannel.GoChannel
}

func New() *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
	}
}

func (b *Bus) Publish(topic string, payload []byte) error {
	return b.pubSub.Publish(topic, message.NewMessage(watermill.NewUUID(), payload))
}

// Subscribe registers fn for every message on topic. The returned subscription
// must be released exactly once on teardown; releasing it stops further
// callbacks.
func (b *Bus) Subscribe(topic string, fn func(payload []byte)) (*Subscription, error) {
	ctx, cancel := context.WithCancel(context.Background())

	messages, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		cancel()
		return nil, err
	}

	go func() {
		for msg := range messages {
			fn(msg.Payload)
			msg.Ack()
		}
	}()

	return &Subscription{cancel: cancel}, nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}

// Subscription is an unsubscribe handle. Unsubscribe is idempotent; only the
// first call releases the callback.
type Subscription struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}
