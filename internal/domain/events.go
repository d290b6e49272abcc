package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of pagination event
type EventType string

// Event types
const (
	EventPageChanged     EventType = "PageChanged"
	EventPaginationReady EventType = "PaginationReady"
	// EventPageLoaded is reserved for lazy-loaded pages. Nothing emits it yet.
	EventPageLoaded EventType = "PageLoaded"
)

// Metadata keys carried on events
const (
	MetaPreviousPage     = "previousPage"
	MetaPreviousPosition = "previousPosition"
	MetaPageTitle        = "pageTitle"
	MetaPageID           = "pageId"
	MetaReason           = "reason"
)

// Values for MetaReason
const (
	ReasonUser      = "user"
	ReasonRecovered = "recovered"
)

// Event is a pagination event delivered to listeners and kept in the history
type Event struct {
	ID        uuid.UUID
	Type      EventType
	ContextID string
	PageIndex int       // linear contexts, 1-based
	Position  *Position // grid contexts
	Timestamp time.Time
	Metadata  map[string]any
}

// Clone returns a copy of e that shares no map or pointer with it
func (e Event) Clone() Event {
	if e.Position != nil {
		p := *e.Position
		e.Position = &p
	}
	e.Metadata = maps.Clone(e.Metadata)
	return e
}

// Listener receives pagination events for one context.
// OnPageChange is required; the other callbacks may be nil.
type Listener struct {
	OnPageChange      func(Event)
	OnPageLoad        func(Event)
	OnPaginationReady func(Event)
}

// Handler returns the callback responsible for t, or nil
func (l *Listener) Handler(t EventType) func(Event) {
	switch t {
	case EventPageChanged:
		return l.OnPageChange
	case EventPageLoaded:
		return l.OnPageLoad
	case EventPaginationReady:
		return l.OnPaginationReady
	}
	return nil
}
