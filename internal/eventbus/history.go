package eventbus

import (
	"sync"

	"quarkgrid/internal/domain"
)

// DefaultHistoryLimit is how many events a History keeps unless told otherwise
const DefaultHistoryLimit = 100

// History is a capped, emission-ordered event log kept for debugging
type History struct {
	mu     sync.RWMutex
	limit  int
	events []domain.Event
}

// NewHistory creates a log holding at most limit events.
// A non-positive limit falls back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Append records e, evicting the oldest entries beyond the limit
func (h *History) Append(e domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, e.Clone())
	if over := len(h.events) - h.limit; over > 0 {
		// Copy down instead of reslicing so the backing array doesn't grow forever
		n := copy(h.events, h.events[over:])
		clear(h.events[n:])
		h.events = h.events[:n]
	}
}

// Events returns copies of the logged events in emission order. An empty
// contextID returns everything, otherwise only that context's events.
// Services reject empty context ids, so "" never names a real context.
func (h *History) Events(contextID string) []domain.Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.Event, 0, len(h.events))
	for _, e := range h.events {
		if contextID == "" || e.ContextID == contextID {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Len returns the number of logged events
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events)
}

// Limit returns the capacity of the log
func (h *History) Limit() int {
	return h.limit
}

// Reset empties the log
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
}
