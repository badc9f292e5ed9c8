// Package mailbox implements an unbounded multi-producer, single-consumer
// queue used for the miner<->controller message channels (Design Notes
// §9: "Unbounded MPSC in both directions. Back-pressure is unnecessary
// because message rates are low"). A fixed-capacity Go channel would
// reintroduce exactly the back-pressure/drop risk that note rules out;
// this type grows a plain slice under a mutex instead, the same way
// teranode's subtreeprocessor queue.go decouples enqueue from dequeue,
// but with a condition variable standing in for its atomic pointer
// chain since a receiver here needs to block until work arrives.
package mailbox

import "sync"

// Mailbox is an unbounded FIFO queue. Send never blocks and never
// drops: the backing slice grows to hold every pending message. Recv
// blocks until a message is available or the mailbox is closed.
type Mailbox[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

// New returns an empty, open Mailbox.
func New[T any]() *Mailbox[T] {
	m := &Mailbox[T]{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Send appends msg to the queue and wakes one blocked receiver, if
// any. Safe to call from any number of goroutines; never blocks.
func (m *Mailbox[T]) Send(msg T) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.items = append(m.items, msg)
	m.mu.Unlock()
	m.cond.Signal()
}

// Recv blocks until a message is available, returning it along with
// true, or returns the zero value and false once the mailbox has been
// closed and drained.
func (m *Mailbox[T]) Recv() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.items) == 0 && !m.closed {
		m.cond.Wait()
	}
	var zero T
	if len(m.items) == 0 {
		return zero, false
	}
	msg := m.items[0]
	m.items = m.items[1:]
	return msg, true
}

// TryRecv removes and returns the oldest queued message without
// blocking. ok is false if the queue is currently empty.
func (m *Mailbox[T]) TryRecv() (msg T, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) == 0 {
		return msg, false
	}
	msg = m.items[0]
	m.items = m.items[1:]
	return msg, true
}

// Close marks the mailbox closed and wakes every blocked receiver.
// Messages already queued are still delivered by Recv/TryRecv before
// they start returning ok=false; Send after Close is a no-op.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()
	m.cond.Broadcast()
}
