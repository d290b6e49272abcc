package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"quarkgrid/internal/domain"
)

// ErrInvalidListener is returned when a listener has no OnPageChange callback
var ErrInvalidListener = errors.New("listener must provide OnPageChange")

// Registry keeps listeners per context in registration order and
// dispatches events to them synchronously
type Registry struct {
	mu        sync.RWMutex
	listeners map[string][]*domain.Listener
	logger    *slog.Logger

	// OnFailure is called after a listener panic has been recovered
	OnFailure func(contextID string, eventType domain.EventType)
}

// NewRegistry creates an empty listener registry
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		listeners: make(map[string][]*domain.Listener),
		logger:    logger,
	}
}

// Add registers l for contextID. The same pointer may be registered twice
// and will then be notified twice.
func (r *Registry) Add(contextID string, l *domain.Listener) error {
	if l == nil || l.OnPageChange == nil {
		return fmt.Errorf("add listener to %q: %w", contextID, ErrInvalidListener)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[contextID] = append(r.listeners[contextID], l)
	return nil
}

// Remove drops the first registration of l for contextID.
// Returns false if l was not registered.
func (r *Registry) Remove(contextID string, l *domain.Listener) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ls := r.listeners[contextID]
	for i, existing := range ls {
		if existing == l {
			r.listeners[contextID] = append(ls[:i:i], ls[i+1:]...)
			if len(r.listeners[contextID]) == 0 {
				delete(r.listeners, contextID)
			}
			return true
		}
	}
	return false
}

// Count returns the number of registrations for contextID
func (r *Registry) Count(contextID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners[contextID])
}

// Drop removes every listener of contextID
func (r *Registry) Drop(contextID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.listeners, contextID)
}

// Reset removes all listeners
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = make(map[string][]*domain.Listener)
}

// Notify calls the matching callback of every listener registered for the
// event's context. Each listener gets its own copy of the event. Listeners run outside the lock, so they may add or remove
// listeners; changes take effect on the next event.
func (r *Registry) Notify(event domain.Event) {
	r.mu.RLock()
	ls := make([]*domain.Listener, len(r.listeners[event.ContextID]))
	copy(ls, r.listeners[event.ContextID])
	r.mu.RUnlock()

	for _, l := range ls {
		h := l.Handler(event.Type)
		if h == nil {
			continue
		}
		r.call(h, event.Clone())
	}
}

func (r *Registry) call(h func(domain.Event), event domain.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("pagination listener panicked",
				"context", event.ContextID,
				"event", event.Type,
				"panic", rec,
				"stack", string(debug.Stack()))
			if r.OnFailure != nil {
				r.OnFailure(event.ContextID, event.Type)
			}
		}
	}()
	h(event)
}
