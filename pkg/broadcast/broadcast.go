// Package broadcast provides a small in-memory publish/subscribe
// broadcaster with an explicit subscribe/unsubscribe contract. Sends are
// non-blocking: slow subscribers drop messages instead of stalling the
// publisher.
package broadcast

import (
	"context"
	"sync"
)

// Broadcaster fans values out to all active subscribers.
// All methods are safe for concurrent use.
type Broadcaster[T any] struct {
	mu          sync.RWMutex
	subscribers map[chan T]struct{}
	bufferSize  int
	closed      bool
}

// New creates a broadcaster whose subscribers buffer up to bufferSize
// pending values. A minimum of 1 is enforced so sends stay non-blocking.
func New[T any](bufferSize int) *Broadcaster[T] {
	return &Broadcaster[T]{
		subscribers: make(map[chan T]struct{}),
		bufferSize:  max(bufferSize, 1),
	}
}

// Subscribe registers a new subscriber channel. The subscription is
// removed and the channel closed when ctx is cancelled or the
// broadcaster is closed.
func (b *Broadcaster[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, b.bufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			b.unsubscribe(ch)
		}()
	}

	return ch
}

// Publish delivers a value to every subscriber whose buffer has room.
// Values are dropped for full buffers.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for ch := range b.subscribers {
		select {
		case ch <- v:
		default:
		}
	}
}

// Close shuts down the broadcaster and closes all subscriber channels.
// Safe to call repeatedly.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for ch := range b.subscribers {
		close(ch)
	}
	clear(b.subscribers)
}

func (b *Broadcaster[T]) unsubscribe(ch chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)
}
