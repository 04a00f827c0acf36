// Package queue provides a growable in-memory buffer that decouples
// stream ingestion from downstream consumers. Producers never block:
// the buffer doubles its capacity whenever it reaches 70% full, so a
// slow database or a flush stall absorbs into memory instead of
// backpressuring the websocket read loop.
package queue

import (
	"sync"
)

// Buffer is a thread-safe FIFO ring that grows instead of blocking
// producers. It doubles capacity when it reaches 70% full.
type Buffer[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	ring     []T
	head     int // next read position
	tail     int // next write position
	count    int
	capacity int
	closed   bool

	ready chan struct{}

	enqueued int64
	dequeued int64
	grows    int
}

// Stats is a point-in-time snapshot of buffer activity.
type Stats struct {
	Depth    int
	Capacity int
	Enqueued int64
	Dequeued int64
	Grows    int
}

// New creates a buffer with the given initial capacity.
func New[T any](initialCapacity int) *Buffer[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	b := &Buffer[T]{
		ring:     make([]T, initialCapacity),
		capacity: initialCapacity,
		ready:    make(chan struct{}, 1),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Push appends an item, growing the ring if it would reach 70% full.
// Returns false if the buffer is closed.
func (b *Buffer[T]) Push(item T) bool {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return false
	}

	threshold := (b.capacity * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if b.count+1 >= threshold {
		b.grow()
	}

	b.ring[b.tail] = item
	b.tail = (b.tail + 1) % b.capacity
	b.count++
	b.enqueued++

	b.cond.Signal()
	b.mu.Unlock()

	// Nudge any select-based consumer without blocking the producer.
	select {
	case b.ready <- struct{}{}:
	default:
	}

	return true
}

// Pop removes and returns the oldest item, blocking until one is
// available or the buffer is closed. Returns false once the buffer is
// closed and fully drained.
func (b *Buffer[T]) Pop() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.count == 0 && !b.closed {
		b.cond.Wait()
	}

	if b.count == 0 {
		var zero T
		return zero, false
	}

	return b.popLocked(), true
}

// TryPop removes and returns the oldest item without blocking.
func (b *Buffer[T]) TryPop() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		var zero T
		return zero, false
	}

	return b.popLocked(), true
}

// Drain removes up to max items in FIFO order. max <= 0 drains
// everything. Returns nil when the buffer is empty.
func (b *Buffer[T]) Drain(max int) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}

	n := b.count
	if max > 0 && max < n {
		n = max
	}

	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = b.popLocked()
	}

	return out
}

// Ready returns a channel that receives a nudge after pushes. It is
// coalescing: a single receive may stand for many pushes, so consumers
// should drain with Drain or Len rather than count nudges.
func (b *Buffer[T]) Ready() <-chan struct{} {
	return b.ready
}

// Close marks the buffer closed. Pushes are rejected afterwards;
// consumers can still drain whatever is buffered.
func (b *Buffer[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}

// Closed reports whether Close has been called.
func (b *Buffer[T]) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Len returns the number of buffered items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Cap returns the current ring capacity.
func (b *Buffer[T]) Cap() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.capacity
}

// Stats returns a snapshot of buffer counters.
func (b *Buffer[T]) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Depth:    b.count,
		Capacity: b.capacity,
		Enqueued: b.enqueued,
		Dequeued: b.dequeued,
		Grows:    b.grows,
	}
}

// popLocked removes the head item. Caller holds the lock and has
// checked count > 0.
func (b *Buffer[T]) popLocked() T {
	item := b.ring[b.head]
	var zero T
	b.ring[b.head] = zero
	b.head = (b.head + 1) % b.capacity
	b.count--
	b.dequeued++
	return item
}

// grow doubles the ring capacity. Caller holds the lock.
func (b *Buffer[T]) grow() {
	next := make([]T, b.capacity*2)

	if b.count > 0 {
		if b.head < b.tail {
			copy(next, b.ring[b.head:b.tail])
		} else {
			n := copy(next, b.ring[b.head:])
			copy(next[n:], b.ring[:b.tail])
		}
	}

	b.ring = next
	b.head = 0
	b.tail = b.count
	b.capacity = len(next)
	b.grows++
}
