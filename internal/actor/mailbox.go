package actor

import "sync"

// mailbox is an unbounded FIFO ring. It doubles when full, so push never
// blocks and never drops while open.
type mailbox[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   []T
	head   int
	count  int
	closed bool

	resizes int
}

func newMailbox[T any](capacity int) *mailbox[T] {
	if capacity < 1 {
		capacity = 1
	}
	m := &mailbox[T]{ring: make([]T, capacity)}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// push appends item. Returns false once closed.
func (m *mailbox[T]) push(item T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}
	if m.count == len(m.ring) {
		m.resize(len(m.ring) * 2)
	}

	m.ring[(m.head+m.count)%len(m.ring)] = item
	m.count++
	m.cond.Signal()
	return true
}

// pop blocks until an item is available. After close, remaining items are
// still returned; false means closed and empty.
func (m *mailbox[T]) pop() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.count == 0 && !m.closed {
		m.cond.Wait()
	}

	var zero T
	if m.count == 0 {
		return zero, false
	}

	item := m.ring[m.head]
	m.ring[m.head] = zero
	m.head = (m.head + 1) % len(m.ring)
	m.count--
	return item, true
}

func (m *mailbox[T]) close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.cond.Broadcast()
}

func (m *mailbox[T]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

func (m *mailbox[T]) stats() (queued, capacity, resizes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count, len(m.ring), m.resizes
}

// resize moves the live window to the front of a new ring. Lock must be held.
func (m *mailbox[T]) resize(capacity int) {
	next := make([]T, capacity)
	n := copy(next, m.ring[m.head:])
	if n < m.count {
		copy(next[n:], m.ring[:m.count-n])
	}
	m.ring = next
	m.head = 0
	m.resizes++
}
