package pagination

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"quarkgrid/internal/domain"
	"quarkgrid/internal/metrics"
)

// GridPageStateUpdate sets the state of the page at Position
type GridPageStateUpdate struct {
	Position domain.Position
	State    domain.PageState
}

// GridService owns grid pagination contexts
type GridService struct {
	*emitter

	mu       sync.Mutex
	contexts map[string]*domain.GridContext
}

// NewGridService creates an empty grid service
func NewGridService(opts ...Option) *GridService {
	return &GridService{
		emitter:  newEmitter(metrics.KindGrid, opts),
		contexts: make(map[string]*domain.GridContext),
	}
}

// CreateContext builds a grid context, replacing any context with the same
// id. The first selectable page in input order becomes active.
func (s *GridService) CreateContext(contextID string, pages []domain.GridPage, dims domain.Dimensions, initialState domain.PageState, rules *domain.NavigationRules) (*domain.GridContext, error) {
	if contextID == "" {
		return nil, fmt.Errorf("create grid: %w", ErrEmptyContextID)
	}
	if initialState == "" {
		initialState = domain.StateActive
	}
	if !initialState.Valid() {
		return nil, fmt.Errorf("create grid %q: %w: %q", contextID, ErrInvalidState, initialState)
	}
	if dims.Width <= 0 || dims.Height <= 0 {
		return nil, fmt.Errorf("create grid %q: %w: %dx%d", contextID, ErrInvalidDimensions, dims.Width, dims.Height)
	}
	if rules != nil {
		for _, p := range rules.ValidPositions {
			if !dims.Contains(p) {
				return nil, fmt.Errorf("create grid %q valid position %s: %w", contextID, p, ErrOutOfBounds)
			}
		}
	}

	ctx := &domain.GridContext{
		ID:         contextID,
		Pages:      make([]domain.GridPage, 0, len(pages)),
		Dimensions: dims,
		State:      initialState,
		Rules:      rules,
	}
	ids := make(map[string]bool, len(pages))
	taken := make(map[domain.Position]bool, len(pages))
	for _, in := range pages {
		switch {
		case ids[in.ID]:
			return nil, fmt.Errorf("create grid %q: %w: %q", contextID, ErrDuplicatePage, in.ID)
		case !dims.Contains(in.Position):
			return nil, fmt.Errorf("create grid %q page %q at %s: %w", contextID, in.ID, in.Position, ErrOutOfBounds)
		case taken[in.Position]:
			return nil, fmt.Errorf("create grid %q at %s: %w", contextID, in.Position, ErrDuplicatePosition)
		}
		ids[in.ID] = true
		taken[in.Position] = true

		if in.State == "" {
			in.State = domain.StateActive
		}
		if !in.State.Valid() {
			return nil, fmt.Errorf("create grid %q page %q: %w: %q", contextID, in.ID, ErrInvalidState, in.State)
		}
		in.IsActive = false
		ctx.Pages = append(ctx.Pages, in)
	}
	// Detach caller-owned maps and slices
	ctx = ctx.Clone()

	if target, forced := activeTarget(gridStates(ctx.Pages), -1); target >= 0 {
		if forced {
			s.logger.Warn("no selectable page, forcing first page active", "context", contextID)
		}
		ctx.Pages[target].IsActive = true
		ctx.CurrentPosition = ctx.Pages[target].Position
	}

	if !s.claim(contextID) {
		s.reject(metrics.ReasonReentrant, "create grid rejected", "context", contextID)
		return nil, fmt.Errorf("create grid %q: %w", contextID, ErrReentrantMutation)
	}
	defer s.release(contextID)

	s.mu.Lock()
	s.contexts[contextID] = ctx
	s.metrics.SetContexts(s.kind, len(s.contexts))
	snapshot := ctx.Clone()
	s.mu.Unlock()

	pos := snapshot.CurrentPosition
	s.dispatch(contextID, domain.Event{
		Type:      domain.EventPaginationReady,
		ContextID: contextID,
		Position:  &pos,
		Metadata:  map[string]any{"totalPages": len(snapshot.Pages)},
	})
	return snapshot, nil
}

// GetContext returns a copy of the context
func (s *GridService) GetContext(contextID string) (*domain.GridContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, ok := s.contexts[contextID]
	if !ok {
		return nil, false
	}
	return ctx.Clone(), true
}

// ContextIDs returns the ids of all contexts, sorted
func (s *GridService) ContextIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.contexts))
	for id := range s.contexts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ChangePosition makes the page at target active. It fails when no page is
// there or the page is disabled or unavailable.
func (s *GridService) ChangePosition(contextID string, target domain.Position) bool {
	if !s.claim(contextID) {
		return s.reject(metrics.ReasonReentrant, "position change rejected", "context", contextID, "position", target)
	}
	defer s.release(contextID)

	s.mu.Lock()
	ctx, ok := s.contexts[contextID]
	if !ok {
		s.mu.Unlock()
		return s.reject(metrics.ReasonUnknownContext, "position change rejected", "context", contextID, "position", target)
	}
	i := indexAt(ctx.Pages, target)
	if i < 0 {
		s.mu.Unlock()
		return s.reject(metrics.ReasonOutOfRange, "position change rejected", "context", contextID, "position", target)
	}
	if st := ctx.Pages[i].State; !st.Selectable() {
		s.mu.Unlock()
		return s.reject(metrics.ReasonNotSelectable, "position change rejected", "context", contextID, "position", target, "state", st)
	}

	ev := s.activate(ctx, i, domain.ReasonUser)
	s.mu.Unlock()

	s.dispatch(contextID, ev)
	return true
}

func (s *GridService) activate(ctx *domain.GridContext, i int, reason string) domain.Event {
	previous := ctx.CurrentPosition
	for j := range ctx.Pages {
		ctx.Pages[j].IsActive = j == i
	}
	pos := ctx.Pages[i].Position
	ctx.CurrentPosition = pos
	return domain.Event{
		Type:      domain.EventPageChanged,
		ContextID: ctx.ID,
		Position:  &pos,
		Metadata: map[string]any{
			domain.MetaPreviousPosition: previous,
			domain.MetaPageTitle:        ctx.Pages[i].Title,
			domain.MetaPageID:           ctx.Pages[i].ID,
			domain.MetaReason:           reason,
		},
	}
}

// Navigate resolves dir from the current position without moving. A custom
// navigation rule wins when present; otherwise the neighbouring cell is used,
// clamped to the grid, and only if a page occupies it.
func (s *GridService) Navigate(contextID string, dir domain.Direction) (domain.Position, bool) {
	s.mu.Lock()
	ctx, ok := s.contexts[contextID]
	if !ok {
		s.mu.Unlock()
		return domain.Position{}, s.reject(metrics.ReasonUnknownContext, "navigate rejected", "context", contextID, "direction", dir)
	}
	from := ctx.CurrentPosition
	var custom domain.CustomNavigation
	if ctx.Rules != nil {
		custom = ctx.Rules.CustomNavigation
	}
	if custom != nil {
		s.mu.Unlock()
		// Run caller code without the lock so it can query the service
		return custom(from, dir)
	}
	defer s.mu.Unlock()

	dx, dy := dir.Delta()
	if dx == 0 && dy == 0 {
		s.logger.Warn("unknown direction", "context", contextID, "direction", dir)
		return domain.Position{}, false
	}
	to := ctx.Dimensions.Clamp(domain.Position{X: from.X + dx, Y: from.Y + dy})
	if to == from {
		return domain.Position{}, false
	}
	if ctx.Rules != nil && len(ctx.Rules.ValidPositions) > 0 && !slices.Contains(ctx.Rules.ValidPositions, to) {
		return domain.Position{}, false
	}
	if indexAt(ctx.Pages, to) < 0 {
		return domain.Position{}, false
	}
	return to, true
}

// Move navigates in dir and activates the resulting page
func (s *GridService) Move(contextID string, dir domain.Direction) bool {
	to, ok := s.Navigate(contextID, dir)
	if !ok {
		s.metrics.ChangeRejected(s.kind, metrics.ReasonNoMovement)
		return false
	}
	return s.ChangePosition(contextID, to)
}

// UpdateState replaces the context's overall state
func (s *GridService) UpdateState(contextID string, state domain.PageState) bool {
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

// UpdatePageStates applies the updates by position and repairs the active
// page when needed
func (s *GridService) UpdatePageStates(contextID string, updates []GridPageStateUpdate) bool {
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
		i := indexAt(ctx.Pages, u.Position)
		if i < 0 || !u.State.Valid() {
			s.logger.Warn("skipping page state update", "context", contextID, "position", u.Position, "state", u.State)
			continue
		}
		ctx.Pages[i].State = u.State
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

func (s *GridService) ensureActivePage(ctx *domain.GridContext) (domain.Event, bool) {
	active := -1
	for i, p := range ctx.Pages {
		if p.IsActive {
			active = i
			break
		}
	}
	target, forced := activeTarget(gridStates(ctx.Pages), active)
	if target < 0 || target == active {
		return domain.Event{}, false
	}
	if forced {
		s.recovered(ctx.ID, "no selectable page, forcing first page active")
	} else {
		s.recovered(ctx.ID, "active page no longer selectable, moving", "to", ctx.Pages[target].Position)
	}
	return s.activate(ctx, target, domain.ReasonRecovered), true
}

// RemoveContext drops a context and its listeners
func (s *GridService) RemoveContext(contextID string) bool {
	if !s.claim(contextID) {
		return s.reject(metrics.ReasonReentrant, "remove grid rejected", "context", contextID)
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

// AddListener subscribes l to events of contextID
func (s *GridService) AddListener(contextID string, l *domain.Listener) error {
	return s.listeners.Add(contextID, l)
}

// RemoveListener unsubscribes l, matched by pointer
func (s *GridService) RemoveListener(contextID string, l *domain.Listener) bool {
	return s.listeners.Remove(contextID, l)
}

// EventHistory returns logged events, all of them when contextID is empty
func (s *GridService) EventHistory(contextID string) []domain.Event {
	return s.history.Events(contextID)
}

// Clear drops all contexts, listeners and history
func (s *GridService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts = make(map[string]*domain.GridContext)
	s.reset()
	s.metrics.SetContexts(s.kind, 0)
}

// SkipGaps returns a navigation rule that keeps stepping in the requested
// direction until it reaches an occupied cell or leaves the grid. Useful for
// layouts like the periodic table where neighbours are often empty.
func SkipGaps(occupied []domain.Position, dims domain.Dimensions) domain.CustomNavigation {
	cells := make(map[domain.Position]bool, len(occupied))
	for _, p := range occupied {
		cells[p] = true
	}
	return func(from domain.Position, dir domain.Direction) (domain.Position, bool) {
		dx, dy := dir.Delta()
		if dx == 0 && dy == 0 {
			return domain.Position{}, false
		}
		for p := (domain.Position{X: from.X + dx, Y: from.Y + dy}); dims.Contains(p); p = (domain.Position{X: p.X + dx, Y: p.Y + dy}) {
			if cells[p] {
				return p, true
			}
		}
		return domain.Position{}, false
	}
}

func indexAt(pages []domain.GridPage, p domain.Position) int {
	for i, page := range pages {
		if page.Position == p {
			return i
		}
	}
	return -1
}

func gridStates(pages []domain.GridPage) []domain.PageState {
	states := make([]domain.PageState, len(pages))
	for i, p := range pages {
		states[i] = p.State
	}
	return states
}
