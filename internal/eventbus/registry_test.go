package eventbus

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarkgrid/internal/domain"
)

func TestRegistryNotifiesInRegistrationOrder(t *testing.T) {
	r := NewRegistry(slog.New(slog.DiscardHandler))
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		require.NoError(t, r.Add("ctx", &domain.Listener{
			OnPageChange: func(domain.Event) { order = append(order, name) },
		}))
	}
	require.NoError(t, r.Add("other", &domain.Listener{
		OnPageChange: func(domain.Event) { order = append(order, "other") },
	}))

	r.Notify(domain.Event{Type: domain.EventPageChanged, ContextID: "ctx"})
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestRegistryDispatchesByType(t *testing.T) {
	r := NewRegistry(slog.New(slog.DiscardHandler))
	var got []domain.EventType
	require.NoError(t, r.Add("ctx", &domain.Listener{
		OnPageChange:      func(e domain.Event) { got = append(got, e.Type) },
		OnPageLoad:        func(e domain.Event) { got = append(got, e.Type) },
		OnPaginationReady: func(e domain.Event) { got = append(got, e.Type) },
	}))
	require.NoError(t, r.Add("ctx", &domain.Listener{
		OnPageChange: func(domain.Event) {},
	}))

	for _, typ := range []domain.EventType{domain.EventPaginationReady, domain.EventPageLoaded, domain.EventPageChanged} {
		r.Notify(domain.Event{Type: typ, ContextID: "ctx"})
	}
	assert.Equal(t, []domain.EventType{domain.EventPaginationReady, domain.EventPageLoaded, domain.EventPageChanged}, got)
}

func TestRegistryRecoversPanics(t *testing.T) {
	r := NewRegistry(slog.New(slog.DiscardHandler))
	var failures []string
	r.OnFailure = func(contextID string, _ domain.EventType) { failures = append(failures, contextID) }

	reached := false
	require.NoError(t, r.Add("ctx", &domain.Listener{OnPageChange: func(domain.Event) { panic("listener bug") }}))
	require.NoError(t, r.Add("ctx", &domain.Listener{OnPageChange: func(domain.Event) { reached = true }}))

	assert.NotPanics(t, func() {
		r.Notify(domain.Event{Type: domain.EventPageChanged, ContextID: "ctx"})
	})
	assert.True(t, reached)
	assert.Equal(t, []string{"ctx"}, failures)
}

func TestRegistryRemoveByIdentity(t *testing.T) {
	r := NewRegistry(nil)
	calls := 0
	fn := func(domain.Event) { calls++ }
	a := &domain.Listener{OnPageChange: fn}
	b := &domain.Listener{OnPageChange: fn}
	require.NoError(t, r.Add("ctx", a))
	require.NoError(t, r.Add("ctx", b))
	require.NoError(t, r.Add("ctx", a))
	assert.Equal(t, 3, r.Count("ctx"))

	assert.True(t, r.Remove("ctx", a))
	assert.Equal(t, 2, r.Count("ctx"))
	assert.False(t, r.Remove("elsewhere", b))

	r.Notify(domain.Event{Type: domain.EventPageChanged, ContextID: "ctx"})
	assert.Equal(t, 2, calls)

	r.Drop("ctx")
	assert.Zero(t, r.Count("ctx"))
}

func TestRegistryRejectsListenerWithoutPageChange(t *testing.T) {
	r := NewRegistry(nil)
	assert.ErrorIs(t, r.Add("ctx", &domain.Listener{OnPageLoad: func(domain.Event) {}}), ErrInvalidListener)
	assert.ErrorIs(t, r.Add("ctx", nil), ErrInvalidListener)
	assert.Zero(t, r.Count("ctx"))
}

func TestRegistryListenerMayUnsubscribeDuringNotify(t *testing.T) {
	r := NewRegistry(nil)
	calls := 0
	var self *domain.Listener
	self = &domain.Listener{OnPageChange: func(domain.Event) {
		calls++
		r.Remove("ctx", self)
	}}
	require.NoError(t, r.Add("ctx", self))

	r.Notify(domain.Event{Type: domain.EventPageChanged, ContextID: "ctx"})
	r.Notify(domain.Event{Type: domain.EventPageChanged, ContextID: "ctx"})
	assert.Equal(t, 1, calls)
}

func TestRegistryListenersCannotSeeEachOthersEdits(t *testing.T) {
	r := NewRegistry(slog.New(slog.DiscardHandler))
	var got []any
	require.NoError(t, r.Add("ctx", &domain.Listener{
		OnPageChange: func(e domain.Event) { e.Metadata["n"] = 2 },
	}))
	require.NoError(t, r.Add("ctx", &domain.Listener{
		OnPageChange: func(e domain.Event) { got = append(got, e.Metadata["n"]) },
	}))

	event := domain.Event{Type: domain.EventPageChanged, ContextID: "ctx", Metadata: map[string]any{"n": 1}}
	r.Notify(event)
	assert.Equal(t, []any{1}, got)
	assert.Equal(t, 1, event.Metadata["n"])
}
