// Package bus provides an in-process implementation of domain.SignalBus for
// demo mode, where no Redis instance is available. Semantics mirror the
// Redis pub/sub adapter: publishing with no subscribers succeeds, slow
// subscribers drop messages rather than block the publisher, and a
// subscription closes with its context.
package bus

import (
	"context"
	"sync"

	"github.com/patrickmak/papertrader/internal/domain"
)

const subscriberBuffer = 128

// Bus fans published payloads out to channel subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]chan []byte
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]chan []byte)}
}

// Publish delivers the payload to every subscriber of the channel. It never
// blocks: a subscriber with a full buffer misses the message.
func (b *Bus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

// Subscribe returns a read-only channel of payloads published to the given
// channel. The subscription is removed and the channel closed when the
// context is cancelled.
func (b *Bus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, subscriberBuffer)

	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		subs := b.subs[channel]
		for i, c := range subs {
			if c == ch {
				b.subs[channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Compile-time interface check.
var _ domain.SignalBus = (*Bus)(nil)
