package broadcast

import (
	"context"
	"sync"
)

// Subscription receives values published on a Bus.
type Subscription[T any] struct {
	ch     chan T
	mu     sync.RWMutex
	closed bool
	bus    *Bus[T]
}

// C returns the receive channel. It is closed when the subscription ends.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Close ends the subscription. It is idempotent.
func (s *Subscription[T]) Close() {
	if s.bus != nil {
		s.bus.unsubscribe(s)
		return
	}
	s.close()
}

func (s *Subscription[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
}

func (s *Subscription[T]) send(v T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- v:
		return true
	default:
		return false
	}
}

// Bus is an in-process typed broadcaster. Publishing never blocks: a value
// is dropped for a subscriber whose buffer is full, and the subscriber stays
// registered. All methods are safe for concurrent use.
type Bus[T any] struct {
	mu          sync.RWMutex
	subscribers map[*Subscription[T]]struct{}
	bufferSize  int
	closed      bool
}

// New creates a bus whose subscribers buffer up to bufferSize values (at least 1).
func New[T any](bufferSize int) *Bus[T] {
	return &Bus[T]{
		subscribers: make(map[*Subscription[T]]struct{}),
		bufferSize:  max(bufferSize, 1),
	}
}

// Subscribe registers a subscriber that lives until ctx is cancelled,
// Close is called on it, or the bus is closed. Subscribing to a closed
// bus returns an already closed subscription.
func (b *Bus[T]) Subscribe(ctx context.Context) *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription[T]{ch: make(chan T, b.bufferSize)}
	if b.closed {
		sub.close()
		return sub
	}

	sub.bus = b
	b.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			b.unsubscribe(sub)
		}()
	}

	return sub
}

// Publish offers v to every subscriber and returns how many accepted it.
func (b *Bus[T]) Publish(_ context.Context, v T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0
	}

	delivered := 0
	for sub := range b.subscribers {
		if sub.send(v) {
			delivered++
		}
	}
	return delivered
}

// Len returns the number of active subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscription. It is safe to call Close multiple times.
// Subscriptions whose context never ends keep a cleanup goroutine that
// Close does not wait for.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for sub := range b.subscribers {
		sub.close()
	}
	clear(b.subscribers)
	b.mu.Unlock()
}

func (b *Bus[T]) unsubscribe(sub *Subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	sub.close()
}
