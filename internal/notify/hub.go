package notify

import (
	"context"
	"sync"

	"minishop/internal/cart"
)

// Hub fans notifications out to in-process subscribers such as SSE streams.
// A subscriber that falls behind loses notifications rather than blocking the cart.
type Hub struct {
	mu      sync.RWMutex
	nextID  int
	subs    map[int]chan cart.Notification
	buffer  int
	dropped uint64
}

// NewHub creates a hub whose subscriber channels hold buffer notifications.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[int]chan cart.Notification), buffer: buffer}
}

// Subscribe registers a listener. The returned cancel func unregisters it and
// closes the channel.
func (h *Hub) Subscribe() (<-chan cart.Notification, func()) {
	ch := make(chan cart.Notification, h.buffer)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers n to every subscriber with room for it.
func (h *Hub) Publish(_ context.Context, n cart.Notification) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- n:
		default:
			h.dropped++
		}
	}
	return nil
}

// Subscribers returns the number of active listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped because a listener was full.
func (h *Hub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}
