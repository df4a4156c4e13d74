package portal

import (
	"sync"
)

// Hub fans out "schedule changed" signals per competition. It stands in
// for the hosted realtime feed the portal UI subscribes to: delivery is
// at-least-once and coalescing, and a signal never carries data — every
// receiver reacts by re-querying, never by applying a delta.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan struct{} // competition ID -> subscriber set
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan struct{})}
}

// Subscribe registers interest in schedule changes for a competition.
// PRE: competitionID is non-empty
// POST: returns a signal channel and a cancel func that must be called
// when the subscriber goes away
func (h *Hub) Subscribe(competitionID string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Buffer of one: a pending signal coalesces further publishes.
	ch := make(chan struct{}, 1)
	id := h.nextID
	h.nextID++

	if h.subs[competitionID] == nil {
		h.subs[competitionID] = make(map[int]chan struct{})
	}
	h.subs[competitionID][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[competitionID], id)
		if len(h.subs[competitionID]) == 0 {
			delete(h.subs, competitionID)
		}
	}
	return ch, cancel
}

// Publish signals every subscriber of a competition that its schedule
// changed. Non-blocking: a subscriber with a signal already pending is
// skipped (the pending signal covers this change too).
// PRE: competitionID is non-empty
// POST: every subscriber has at least one signal pending
func (h *Hub) Publish(competitionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[competitionID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
