package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Service kinds used as the "service" label
const (
	KindLinear = "linear"
	KindGrid   = "grid"
)

// Rejection reasons used as the "reason" label
const (
	ReasonUnknownContext = "unknown_context"
	ReasonOutOfRange     = "out_of_range"
	ReasonNotSelectable  = "not_selectable"
	ReasonReentrant      = "reentrant"
	ReasonNoMovement     = "no_movement"
)

// Metrics instruments the pagination services. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	eventsTotal     *prometheus.CounterVec
	rejectionsTotal *prometheus.CounterVec
	recoveriesTotal *prometheus.CounterVec
	listenerPanics  *prometheus.CounterVec
	contexts        *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quarkgrid",
				Name:      "pagination_events_total",
				Help:      "Pagination events emitted, by service and event type.",
			},
			[]string{"service", "type"},
		),
		rejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quarkgrid",
				Name:      "pagination_rejections_total",
				Help:      "Page or position changes refused, by service and reason.",
			},
			[]string{"service", "reason"},
		),
		recoveriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quarkgrid",
				Name:      "pagination_recoveries_total",
				Help:      "Active-page repairs performed after state updates.",
			},
			[]string{"service"},
		),
		listenerPanics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quarkgrid",
				Name:      "pagination_listener_panics_total",
				Help:      "Listener callbacks that panicked and were recovered.",
			},
			[]string{"service"},
		),
		contexts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "quarkgrid",
				Name:      "pagination_contexts",
				Help:      "Contexts currently held by each service.",
			},
			[]string{"service"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.eventsTotal, m.rejectionsTotal, m.recoveriesTotal, m.listenerPanics, m.contexts)
	}
	return m
}

// EventEmitted counts one emitted event. Safe on a nil *Metrics.
func (m *Metrics) EventEmitted(service, eventType string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(service, eventType).Inc()
}

// ChangeRejected counts a refused mutation by reason
func (m *Metrics) ChangeRejected(service, reason string) {
	if m == nil {
		return
	}
	m.rejectionsTotal.WithLabelValues(service, reason).Inc()
}

// ActivePageRecovered counts a repair of the active page
func (m *Metrics) ActivePageRecovered(service string) {
	if m == nil {
		return
	}
	m.recoveriesTotal.WithLabelValues(service).Inc()
}

// ListenerPanicked counts a recovered listener panic
func (m *Metrics) ListenerPanicked(service string) {
	if m == nil {
		return
	}
	m.listenerPanics.WithLabelValues(service).Inc()
}

// SetContexts records how many contexts the service holds
func (m *Metrics) SetContexts(service string, n int) {
	if m == nil {
		return
	}
	m.contexts.WithLabelValues(service).Set(float64(n))
}
