package subscription

import (
	"sync"

	"tasktracker/domain"
)

const defaultBuffer = 64

// Hub fans out board events to connected subscribers. Delivery is at-most-once
// and keeps no backlog: a subscriber that cannot drain its buffer loses events
// and must refetch full board state. Within one subscriber's stream, events
// arrive in publish order.
type Hub struct {
	buffer int

	mu   sync.Mutex
	subs map[chan domain.Event]struct{}
}

// NewHub creates a hub whose subscribers each get a buffer of the given size.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{buffer: buffer, subs: make(map[chan domain.Event]struct{})}
}

// Subscribe registers a new client and returns its event channel.
func (h *Hub) Subscribe() chan domain.Event {
	ch := make(chan domain.Event, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a client. Its channel is left open; pending events may
// still be drained.
func (h *Hub) Unsubscribe(ch chan domain.Event) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// Publish delivers ev to every subscriber without blocking. A subscriber with
// a full buffer is skipped.
func (h *Hub) Publish(ev domain.Event) {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	h.mu.Unlock()
}
