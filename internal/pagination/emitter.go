// Package pagination owns linear and grid pagination contexts, keeps their
// active-page invariants, and notifies listeners synchronously on change.
package pagination

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"quarkgrid/internal/domain"
	"quarkgrid/internal/eventbus"
	"quarkgrid/internal/metrics"
)

// Errors for structurally invalid input
var (
	ErrDuplicatePage     = errors.New("duplicate page id")
	ErrDuplicatePosition = errors.New("two pages share a grid position")
	ErrInvalidDimensions = errors.New("grid dimensions must be positive")
	ErrOutOfBounds       = errors.New("position outside grid")
	ErrInvalidState      = errors.New("invalid page state")
	ErrReentrantMutation = errors.New("context is being modified from one of its own listeners")
	ErrEmptyContextID    = errors.New("context id must not be empty")
)

type options struct {
	logger       *slog.Logger
	historyLimit int
	metrics      *metrics.Metrics
	now          func() time.Time
}

// Option configures a service
type Option func(*options)

// WithLogger sets the logger used for warnings and listener failures
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHistoryLimit caps the event log (default 100)
func WithHistoryLimit(n int) Option {
	return func(o *options) { o.historyLimit = n }
}

// WithMetrics instruments the service
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides the event timestamp source
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// emitter holds what both services share: listeners, the capped log,
// metrics and the per-context claims taken by mutating goroutines.
type emitter struct {
	kind      string
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	listeners *eventbus.Registry
	history   *eventbus.History

	mu       sync.Mutex
	released *sync.Cond
	owners   map[string]uint64 // context id -> goroutine mutating it
}

func newEmitter(kind string, opts []Option) *emitter {
	o := options{
		logger:       slog.Default(),
		historyLimit: eventbus.DefaultHistoryLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("service", kind)

	e := &emitter{
		kind:      kind,
		logger:    logger,
		metrics:   o.metrics,
		now:       o.now,
		listeners: eventbus.NewRegistry(logger),
		history:   eventbus.NewHistory(o.historyLimit),
		owners:    make(map[string]uint64),
	}
	e.released = sync.NewCond(&e.mu)
	e.listeners.OnFailure = func(string, domain.EventType) {
		e.metrics.ListenerPanicked(kind)
	}
	return e
}

// claim reserves contextID for a mutation by the calling goroutine and
// holds it until release, listener notification included. Other goroutines
// wait for the holder to finish. A call from inside the holder's own
// listeners returns false.
func (e *emitter) claim(contextID string) bool {
	me := goroutineID()
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		owner, held := e.owners[contextID]
		if !held {
			e.owners[contextID] = me
			return true
		}
		if owner == me {
			return false
		}
		e.released.Wait()
	}
}

func (e *emitter) release(contextID string) {
	e.mu.Lock()
	delete(e.owners, contextID)
	e.mu.Unlock()
	e.released.Broadcast()
}

// dispatch stamps the events, logs them and notifies listeners in order.
// The caller holds the claim on contextID.
func (e *emitter) dispatch(contextID string, events ...domain.Event) {
	for _, ev := range events {
		ev.ID = uuid.New()
		ev.Timestamp = e.now()
		e.history.Append(ev)
		e.metrics.EventEmitted(e.kind, string(ev.Type))
		e.listeners.Notify(ev)
	}
}

func (e *emitter) reject(reason, msg string, args ...any) bool {
	e.logger.Warn(msg, append(args, "reason", reason)...)
	e.metrics.ChangeRejected(e.kind, reason)
	return false
}

func (e *emitter) recovered(contextID string, msg string, args ...any) {
	e.logger.Warn(msg, append([]any{"context", contextID}, args...)...)
	e.metrics.ActivePageRecovered(e.kind)
}

func (e *emitter) reset() {
	e.listeners.Reset()
	e.history.Reset()
}
