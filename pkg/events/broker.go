// Package events fans out discovery and progress events to any number of
// subscribers without blocking the publisher.
package events

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/urmzd/commissioner/pkg/device"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

// Broker implements device.EventPublisher and device.EventSubscriber.
//
// Publish is serialized under the broker lock, so every subscriber sees
// events in publish order. There is no replay: a subscriber only receives
// events published after Subscribe returns. A subscriber whose buffer is
// full misses the event; the publisher never waits.
type Broker struct {
	mu          sync.Mutex
	subscribers []chan device.Event
	buffer      int
	logger      zerolog.Logger
}

var (
	_ device.EventPublisher  = (*Broker)(nil)
	_ device.EventSubscriber = (*Broker)(nil)
)

// NewBroker creates a Broker. A non-positive buffer selects DefaultBuffer.
func NewBroker(buffer int, logger zerolog.Logger) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker{
		buffer: buffer,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// Subscribe registers a new subscriber.
func (b *Broker) Subscribe() chan device.Event {
	ch := make(chan device.Event, b.buffer)
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel. Unknown
// channels are ignored.
func (b *Broker) Unsubscribe(ch chan device.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// Publish delivers the event to every current subscriber.
func (b *Broker) Publish(evt device.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			b.logger.Warn().Str("kind", string(evt.Kind)).Msg("subscriber buffer full, event dropped")
		}
	}
}

// Subscribers returns the current subscriber count.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Discard is a publisher that drops every event.
type Discard struct{}

// Publish implements device.EventPublisher.
func (Discard) Publish(device.Event) {}
