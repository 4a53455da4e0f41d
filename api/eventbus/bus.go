package eventbus

import (
	"github.com/cskr/pubsub/v2"
	"go.uber.org/atomic"
)

// DefaultCapacity is the default buffer size of each subscriber channel.
const DefaultCapacity = 16

// Bus represents an event stream which is owned by a single engine.
// A nil or closed Bus accepts publications and returns inactive subscriptions.
type Bus struct {
	ps     *pubsub.PubSub[uint, any]
	closed atomic.Bool
}

// New returns a new event stream, where each subscriber channel is
// buffered with the provided capacity.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Bus{ps: pubsub.New[uint, any](capacity)}
}

// Publish publishes an event to the event stream.
// Publishing never blocks; events are dropped for subscribers whose buffers are full.
func (b *Bus) Publish(id EventID, data any) {
	if b == nil || id == nil || b.closed.Load() {
		return
	}

	b.ps.TryPub(data, id.Value())
}

// Subscribe subscribes to an event from the event stream.
func (b *Bus) Subscribe(id EventID) Subscription {
	if b == nil || id == nil || b.closed.Load() {
		ch := make(chan any)
		close(ch)

		return Subscription{C: ch}
	}

	ch := b.ps.Sub(id.Value())

	return Subscription{
		C:      ch,
		active: true,
		unsub: func() {
			go b.ps.Unsub(ch, id.Value())
		},
	}
}

// Close shuts down the event stream, and closes all subscriber channels.
func (b *Bus) Close() {
	if b == nil || !b.closed.CompareAndSwap(false, true) {
		return
	}

	b.ps.Shutdown()
}
