// Package events is an in-process change-notification hub. Mutating
// operations broadcast an Event after committing; presentation code
// subscribes to refresh whatever it is showing.
package events

import "sync"

// Event identifies a committed change to one record.
type Event struct {
	Entity   string `json:"entity"`
	Action   string `json:"action"`
	RecordID string `json:"record_id"`
}

// Hub fans events out to subscribers. Safe for concurrent use. A nil Hub
// drops everything.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber and returns its channel. The channel
// is buffered; a subscriber that stops draining loses events rather than
// blocking publishers.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Broadcast delivers e to every subscriber without blocking.
func (h *Hub) Broadcast(e Event) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
