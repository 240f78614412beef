// Package sse fans out per-user events to live Server-Sent Events streams.
package sse

import (
	"sync"
)

// Hub keeps the open streams of every user. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Hub[T any] struct {
	mu          sync.RWMutex
	buffer      int
	subscribers map[string]map[chan T]struct{}
}

// NewHub creates a Hub whose subscriber channels hold buffer events.
func NewHub[T any](buffer int) *Hub[T] {
	if buffer <= 0 {
		buffer = 10
	}
	return &Hub[T]{
		buffer:      buffer,
		subscribers: make(map[string]map[chan T]struct{}),
	}
}

// Subscribe registers a stream for userID. The returned cleanup removes it
// and closes the channel; it is safe to call more than once.
func (h *Hub[T]) Subscribe(userID string) (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan T, h.buffer)
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan T]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[userID], ch)
			close(ch)
			if len(h.subscribers[userID]) == 0 {
				delete(h.subscribers, userID)
			}
		})
	}
	return ch, cleanup
}

// Publish sends event to every stream of userID and returns how many took it.
func (h *Hub[T]) Publish(userID string, event T) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
			delivered++
		default:
		}
	}
	return delivered
}

// SubscriberCount returns the number of open streams of userID.
func (h *Hub[T]) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

// TotalSubscribers returns the number of open streams across all users.
func (h *Hub[T]) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
