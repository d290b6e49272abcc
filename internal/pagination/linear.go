package pagination

import (
	"fmt"
	"sort"
	"sync"

	"quarkgrid/internal/domain"
	"quarkgrid/internal/metrics"
)

// PageStateUpdate sets the state of the page at Index (1-based)
type PageStateUpdate struct {
	Index int
	State domain.PageState
}

// LinearService owns linear pagination contexts. One instance is meant to be
// shared by every consumer in the process.
type LinearService struct {
	*emitter

	mu       sync.Mutex
	contexts map[string]*domain.Context
}

// NewLinearService creates an empty linear service
func NewLinearService(opts ...Option) *LinearService {
	return &LinearService{
		emitter:  newEmitter(metrics.KindLinear, opts),
		contexts: make(map[string]*domain.Context),
	}
}

// CreateContext builds a context from pages, replacing any context with the
// same id. Indices are assigned in input order and the first selectable page
// becomes active. Emits PaginationReady.
func (s *LinearService) CreateContext(contextID string, pages []domain.PageInput, initialState domain.PageState) (*domain.Context, error) {
	if contextID == "" {
		return nil, fmt.Errorf("create context: %w", ErrEmptyContextID)
	}
	if initialState == "" {
		initialState = domain.StateActive
	}
	if !initialState.Valid() {
		return nil, fmt.Errorf("create context %q: %w: %q", contextID, ErrInvalidState, initialState)
	}

	ctx := &domain.Context{
		ID:         contextID,
		Pages:      make([]domain.Page, 0, len(pages)),
		TotalPages: len(pages),
		State:      initialState,
	}
	seen := make(map[string]bool, len(pages))
	for i, in := range pages {
		if seen[in.ID] {
			return nil, fmt.Errorf("create context %q: %w: %q", contextID, ErrDuplicatePage, in.ID)
		}
		seen[in.ID] = true
		state := in.State
		if state == "" {
			state = domain.StateActive
		}
		if !state.Valid() {
			return nil, fmt.Errorf("create context %q page %q: %w: %q", contextID, in.ID, ErrInvalidState, state)
		}
		ctx.Pages = append(ctx.Pages, domain.Page{
			ID:    in.ID,
			Title: in.Title,
			State: state,
			Index: i + 1,
		})
	}

	if target, forced := activeTarget(linearStates(ctx.Pages), -1); target >= 0 {
		if forced {
			s.logger.Warn("no selectable page, forcing first page active", "context", contextID)
		}
		ctx.Pages[target].IsActive = true
		ctx.CurrentPageIndex = target + 1
	}

	if !s.claim(contextID) {
		s.reject(metrics.ReasonReentrant, "create context rejected", "context", contextID)
		return nil, fmt.Errorf("create context %q: %w", contextID, ErrReentrantMutation)
	}
	defer s.release(contextID)

	s.mu.Lock()
	s.contexts[contextID] = ctx
	s.metrics.SetContexts(s.kind, len(s.contexts))
	snapshot := ctx.Clone()
	s.mu.Unlock()

	s.dispatch(contextID, domain.Event{
		Type:      domain.EventPaginationReady,
		ContextID: contextID,
		PageIndex: snapshot.CurrentPageIndex,
		Metadata:  map[string]any{"totalPages": snapshot.TotalPages},
	})
	return snapshot, nil
}

// GetContext returns a copy of the context
func (s *LinearService) GetContext(contextID string) (*domain.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, ok := s.contexts[contextID]
	if !ok {
		return nil, false
	}
	return ctx.Clone(), true
}

// ContextIDs returns the ids of all contexts, sorted
func (s *LinearService) ContextIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.contexts))
	for id := range s.contexts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ChangePage makes the page at pageIndex (1-based) active. It returns false
// for an unknown context, an index outside [1, totalPages], a disabled or
// unavailable target, or a call made from the context's own listener.
func (s *LinearService) ChangePage(contextID string, pageIndex int) bool {
	if !s.claim(contextID) {
		return s.reject(metrics.ReasonReentrant, "page change rejected", "context", contextID, "page", pageIndex)
	}
	defer s.release(contextID)

	s.mu.Lock()
	ctx, ok := s.contexts[contextID]
	if !ok {
		s.mu.Unlock()
		return s.reject(metrics.ReasonUnknownContext, "page change rejected", "context", contextID, "page", pageIndex)
	}
	if pageIndex < 1 || pageIndex > ctx.TotalPages {
		s.mu.Unlock()
		return s.reject(metrics.ReasonOutOfRange, "page change rejected", "context", contextID, "page", pageIndex, "total", ctx.TotalPages)
	}
	target := ctx.Pages[pageIndex-1]
	if !target.State.Selectable() {
		s.mu.Unlock()
		return s.reject(metrics.ReasonNotSelectable, "page change rejected", "context", contextID, "page", pageIndex, "state", target.State)
	}

	ev := s.activate(ctx, pageIndex-1, domain.ReasonUser)
	s.mu.Unlock()

	s.dispatch(contextID, ev)
	return true
}

// activate flags pages[i] as the only active page and builds the event.
// Caller holds s.mu.
func (s *LinearService) activate(ctx *domain.Context, i int, reason string) domain.Event {
	previous := ctx.CurrentPageIndex
	for j := range ctx.Pages {
		ctx.Pages[j].IsActive = j == i
	}
	ctx.CurrentPageIndex = i + 1
	return domain.Event{
		Type:      domain.EventPageChanged,
		ContextID: ctx.ID,
		PageIndex: i + 1,
		Metadata: map[string]any{
			domain.MetaPreviousPage: previous,
			domain.MetaPageTitle:    ctx.Pages[i].Title,
			domain.MetaPageID:       ctx.Pages[i].ID,
			domain.MetaReason:       reason,
		},
	}
}

// UpdateState replaces the context's overall state. Pages are untouched.
func (s *LinearService) UpdateState(contextID string, state domain.PageState) bool {
	if !state.Valid() {
		s.logger.Warn("ignoring invalid context state", "context", contextID, "state", state)
		return false
	}
	if !s.claim(contextID) {
		return s.reject(metrics.ReasonReentrant, "state update rejected", "context", contextID)
	}
	defer s.release(contextID)

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, ok := s.contexts[contextID]
	if !ok {
		return s.reject(metrics.ReasonUnknownContext, "state update rejected", "context", contextID)
	}
	ctx.State = state
	return true
}

// UpdatePageStates applies each update to the page at its index and then
// repairs the active page if the update left it unselectable. A repair emits
// PageChanged with reason "recovered".
func (s *LinearService) UpdatePageStates(contextID string, updates []PageStateUpdate) bool {
	if !s.claim(contextID) {
		return s.reject(metrics.ReasonReentrant, "page state update rejected", "context", contextID)
	}
	defer s.release(contextID)

	s.mu.Lock()
	ctx, ok := s.contexts[contextID]
	if !ok {
		s.mu.Unlock()
		return s.reject(metrics.ReasonUnknownContext, "page state update rejected", "context", contextID)
	}

	for _, u := range updates {
		if u.Index < 1 || u.Index > len(ctx.Pages) {
			s.logger.Warn("skipping page state update", "context", contextID, "page", u.Index, "reason", "out_of_range")
			continue
		}
		if !u.State.Valid() {
			s.logger.Warn("skipping page state update", "context", contextID, "page", u.Index, "state", u.State)
			continue
		}
		ctx.Pages[u.Index-1].State = u.State
	}

	ev, moved := s.ensureActivePage(ctx)
	if !moved {
		s.mu.Unlock()
		return true
	}
	s.mu.Unlock()

	s.dispatch(contextID, ev)
	return true
}

// ensureActivePage restores the single-active invariant. Caller holds s.mu.
func (s *LinearService) ensureActivePage(ctx *domain.Context) (domain.Event, bool) {
	active := -1
	for i, p := range ctx.Pages {
		if p.IsActive {
			active = i
			break
		}
	}
	target, forced := activeTarget(linearStates(ctx.Pages), active)
	if target < 0 || target == active {
		return domain.Event{}, false
	}
	if forced {
		s.recovered(ctx.ID, "no selectable page, forcing first page active")
	} else {
		s.recovered(ctx.ID, "active page no longer selectable, moving", "from", active+1, "to", target+1)
	}
	return s.activate(ctx, target, domain.ReasonRecovered), true
}

// RemoveContext drops a context and its listeners
func (s *LinearService) RemoveContext(contextID string) bool {
	if !s.claim(contextID) {
		return s.reject(metrics.ReasonReentrant, "remove context rejected", "context", contextID)
	}
	defer s.release(contextID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contexts[contextID]; !ok {
		return false
	}
	delete(s.contexts, contextID)
	s.listeners.Drop(contextID)
	s.metrics.SetContexts(s.kind, len(s.contexts))
	return true
}

// AddListener subscribes l to events of contextID. The context does not
// have to exist yet.
func (s *LinearService) AddListener(contextID string, l *domain.Listener) error {
	return s.listeners.Add(contextID, l)
}

// RemoveListener unsubscribes l, matched by pointer
func (s *LinearService) RemoveListener(contextID string, l *domain.Listener) bool {
	return s.listeners.Remove(contextID, l)
}

// EventHistory returns logged events, all of them when contextID is empty
func (s *LinearService) EventHistory(contextID string) []domain.Event {
	return s.history.Events(contextID)
}

// Clear drops all contexts, listeners and history
func (s *LinearService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts = make(map[string]*domain.Context)
	s.reset()
	s.metrics.SetContexts(s.kind, 0)
}

func linearStates(pages []domain.Page) []domain.PageState {
	states := make([]domain.PageState, len(pages))
	for i, p := range pages {
		states[i] = p.State
	}
	return states
}

// activeTarget picks which page should be active given the currently active
// one (-1 for none): keep it if selectable, else the first selectable page,
// else the first page (forced). Returns -1 for no pages.
func activeTarget(states []domain.PageState, active int) (target int, forced bool) {
	if len(states) == 0 {
		return -1, false
	}
	if active >= 0 && states[active].Selectable() {
		return active, false
	}
	for i, st := range states {
		if st.Selectable() {
			return i, false
		}
	}
	return 0, true
}
